package cart

import (
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Storage.Load when no blob exists for a key.
var ErrNotFound = fmt.Errorf("cart: state not found")

// Storage persists serialized cart state blobs under well-known keys.
type Storage interface {
	// Load returns the blob stored under key, or ErrNotFound.
	Load(key string) ([]byte, error)

	// Save writes the blob for key, replacing any previous value.
	Save(key string, data []byte) error
}

// FileStorage implements Storage on the local filesystem, one JSON file per
// key. This is the durable local storage used by the server-side cart; each
// device/session key maps to its own file.
type FileStorage struct {
	basePath string
}

// NewFileStorage creates a filesystem-backed storage rooted at basePath,
// creating the directory if needed.
func NewFileStorage(basePath string) (*FileStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cart storage directory: %w", err)
	}
	return &FileStorage{basePath: basePath}, nil
}

// Load reads the blob for key.
func (s *FileStorage) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cart state: %w", err)
	}
	return data, nil
}

// Save writes the blob for key. The write goes to a temp file first and is
// renamed into place so a crash mid-write cannot corrupt the stored state.
func (s *FileStorage) Save(key string, data []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cart state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace cart state: %w", err)
	}
	return nil
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.basePath, key+".json")
}

// MemoryStorage implements Storage in memory. Used in tests and as a
// fallback when no storage path is configured.
type MemoryStorage struct {
	blobs map[string][]byte
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

// Load returns the blob for key, or ErrNotFound.
func (s *MemoryStorage) Load(key string) ([]byte, error) {
	data, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

// Save stores a copy of the blob for key.
func (s *MemoryStorage) Save(key string, data []byte) error {
	cloned := make([]byte, len(data))
	copy(cloned, data)
	s.blobs[key] = cloned
	return nil
}
