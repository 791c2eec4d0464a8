// Package cart implements the shopping cart state machine: a pure reducer
// over cart state plus a persistent store that applies transitions.
//
// Line-item identity is addon-aware: two entries are the same line iff the
// product matches and the addon selection is structurally equal. The addon
// mapping is canonicalized (keys sorted) before comparison so key order can
// never split or merge lines.
package cart

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/telemart/telemart/internal/domain"
)

// Action is one of the four cart transitions. Apply treats any other
// implementation as an unknown action and returns the state unchanged.
type Action interface {
	isCartAction()
}

// Add puts a product in the cart, merging into an existing line when the
// product and addon selection match. The product's name, price, image and
// description are snapshotted onto the line at add-time.
type Add struct {
	Product  domain.Product
	Quantity int
	Addons   map[string]string
}

// UpdateQuantity replaces a line's quantity. Zero or negative removes the
// line; an unknown item ID is a no-op.
type UpdateQuantity struct {
	ItemID   string
	Quantity int
}

// Remove deletes a line by ID; unknown IDs are a no-op.
type Remove struct {
	ItemID string
}

// Clear resets the cart to its empty initial state.
type Clear struct{}

func (Add) isCartAction()            {}
func (UpdateQuantity) isCartAction() {}
func (Remove) isCartAction()         {}
func (Clear) isCartAction()          {}

// Empty returns the initial cart state.
func Empty() domain.CartState {
	return domain.CartState{Items: []domain.CartItem{}}
}

// Apply is the cart transition function. It is total: every (state, action)
// pair yields a new state, and malformed inputs degrade to no-ops rather
// than errors. The input state is never mutated.
func Apply(state domain.CartState, action Action) domain.CartState {
	switch a := action.(type) {
	case Add:
		return applyAdd(state, a)
	case UpdateQuantity:
		if a.Quantity <= 0 {
			return applyRemove(state, Remove{ItemID: a.ItemID})
		}
		return applyUpdateQuantity(state, a)
	case Remove:
		return applyRemove(state, a)
	case Clear:
		return Empty()
	default:
		return state
	}
}

func applyAdd(state domain.CartState, a Add) domain.CartState {
	quantity := a.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	key := addonKey(a.Addons)
	items := cloneItems(state.Items)

	for i, item := range items {
		if item.ProductID == a.Product.ID.String() && addonKey(item.Addons) == key {
			// A merge keeps the line's snapshotted price even when the
			// catalog price has moved since the first add.
			items[i].Quantity += quantity
			return recalc(state, items, quantity, items[i].PriceCents*int64(quantity))
		}
	}

	items = append(items, domain.CartItem{
		ID:          uuid.New().String(),
		ProductID:   a.Product.ID.String(),
		Name:        a.Product.Name,
		PriceCents:  a.Product.PriceCents,
		ImageURL:    a.Product.ImageURL,
		Description: a.Product.Description,
		Quantity:    quantity,
		Addons:      cloneAddons(a.Addons),
	})
	return recalc(state, items, quantity, a.Product.PriceCents*int64(quantity))
}

func applyUpdateQuantity(state domain.CartState, a UpdateQuantity) domain.CartState {
	items := cloneItems(state.Items)
	for i, item := range items {
		if item.ID == a.ItemID {
			delta := a.Quantity - item.Quantity
			items[i].Quantity = a.Quantity
			return recalc(state, items, delta, item.PriceCents*int64(delta))
		}
	}
	return state
}

func applyRemove(state domain.CartState, a Remove) domain.CartState {
	for i, item := range state.Items {
		if item.ID == a.ItemID {
			items := cloneItems(state.Items)
			items = append(items[:i], items[i+1:]...)
			return recalc(state, items, -item.Quantity, -item.LineSubtotal())
		}
	}
	return state
}

func recalc(state domain.CartState, items []domain.CartItem, itemDelta int, amountDelta int64) domain.CartState {
	return domain.CartState{
		Items:            items,
		TotalItems:       state.TotalItems + itemDelta,
		TotalAmountCents: state.TotalAmountCents + amountDelta,
	}
}

// addonKey renders an addon selection in canonical form. JSON marshaling
// sorts map keys and escapes values, so the encoding is injective: two
// selections share a key iff they are structurally equal, regardless of
// what characters the option values contain.
func addonKey(addons map[string]string) string {
	if len(addons) == 0 {
		return ""
	}
	encoded, _ := json.Marshal(addons)
	return string(encoded)
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	cloned := make([]domain.CartItem, len(items))
	copy(cloned, items)
	return cloned
}

func cloneAddons(addons map[string]string) map[string]string {
	cloned := make(map[string]string, len(addons))
	for k, v := range addons {
		cloned[k] = v
	}
	return cloned
}
