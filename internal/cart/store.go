package cart

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/telemart/telemart/internal/domain"
)

// Store is one cart: current state plus synchronous persistence. Every
// mutation runs the reducer and writes the full state to storage before
// returning, so a crash loses at most the transition in flight.
//
// A Store serializes its own transitions with a mutex. The reference client
// applied mutations from a single UI event loop; behind an HTTP server the
// same user's requests can arrive concurrently, so the lock restores the
// one-at-a-time ordering the state machine assumes.
type Store struct {
	mu      sync.Mutex
	key     string
	state   domain.CartState
	storage Storage
	logger  *slog.Logger
}

// NewStore creates a cart store for the given storage key, restoring
// persisted state when present. Missing or corrupt blobs reset to the empty
// cart; corruption is logged and never surfaced.
func NewStore(key string, storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		key:     key,
		state:   Empty(),
		storage: storage,
		logger:  logger,
	}

	data, err := storage.Load(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("failed to load cart state, starting empty",
				"key", key,
				"error", err,
			)
		}
		return s
	}

	var state domain.CartState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("corrupt cart state, resetting to empty",
			"key", key,
			"error", err,
		)
		return s
	}
	if state.Items == nil {
		state.Items = []domain.CartItem{}
	}
	s.state = state

	return s
}

// Add merges a product into the cart and returns the new state.
func (s *Store) Add(product domain.Product, quantity int, addons map[string]string) domain.CartState {
	return s.dispatch(Add{Product: product, Quantity: quantity, Addons: addons})
}

// UpdateQuantity sets a line's quantity, removing it at zero or below.
func (s *Store) UpdateQuantity(itemID string, quantity int) domain.CartState {
	return s.dispatch(UpdateQuantity{ItemID: itemID, Quantity: quantity})
}

// Remove deletes a line by ID.
func (s *Store) Remove(itemID string) domain.CartState {
	return s.dispatch(Remove{ItemID: itemID})
}

// Clear resets the cart to empty.
func (s *Store) Clear() domain.CartState {
	return s.dispatch(Clear{})
}

// State returns a snapshot of the current cart state.
func (s *Store) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.state)
}

func (s *Store) dispatch(action Action) domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Apply(s.state, action)
	s.persist()

	return snapshot(s.state)
}

// persist writes the full state under the store's key. Failures are logged
// and the in-memory state keeps serving; the next successful write catches
// storage back up.
func (s *Store) persist() {
	data, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Error("failed to serialize cart state", "key", s.key, "error", err)
		return
	}
	if err := s.storage.Save(s.key, data); err != nil {
		s.logger.Error("failed to persist cart state", "key", s.key, "error", err)
	}
}

// snapshot copies the state so callers can't alias the store's items slice.
func snapshot(state domain.CartState) domain.CartState {
	state.Items = cloneItems(state.Items)
	return state
}

// Manager hands out one Store per cart key (one key per Telegram user),
// lazily restoring each from shared storage.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*Store
	storage Storage
	logger  *slog.Logger
}

// NewManager creates a Manager over the given storage.
func NewManager(storage Storage, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		stores:  make(map[string]*Store),
		storage: storage,
		logger:  logger,
	}
}

// For returns the cart store for a key, creating it on first use.
func (m *Manager) For(key string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[key]; ok {
		return s
	}

	s := NewStore(key, m.storage, m.logger)
	m.stores[key] = s
	return s
}

// Clear empties the cart for a key and releases its in-memory store. Carts
// are only cleared at checkout or on request, so dropping the slot here
// keeps the manager from retaining one store per user for the life of the
// server. The next For restores the persisted empty state.
func (m *Manager) Clear(key string) domain.CartState {
	m.mu.Lock()
	s, ok := m.stores[key]
	delete(m.stores, key)
	m.mu.Unlock()

	if !ok {
		s = NewStore(key, m.storage, m.logger)
	}
	return s.Clear()
}
