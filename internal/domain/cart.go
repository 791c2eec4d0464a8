package domain

// CartItem is one line in a shopping cart: a product plus a specific addon
// selection, carrying its own quantity. Name, price, image and description
// are snapshotted from the product at add-time; later catalog changes do not
// retroactively change cart totals.
type CartItem struct {
	ID          string            `json:"id"`
	ProductID   string            `json:"productId"`
	Name        string            `json:"name"`
	PriceCents  int64             `json:"price"`
	ImageURL    string            `json:"image_url"`
	Description string            `json:"description"`
	Quantity    int               `json:"quantity"`
	Addons      map[string]string `json:"addons"`
}

// LineSubtotal returns the item's contribution to the cart total.
func (i CartItem) LineSubtotal() int64 {
	return i.PriceCents * int64(i.Quantity)
}

// CartState is the full state of one shopping cart. The totals are derived:
// after every transition TotalItems equals the sum of item quantities and
// TotalAmountCents equals the sum of line subtotals.
type CartState struct {
	Items            []CartItem `json:"items"`
	TotalItems       int        `json:"totalItems"`
	TotalAmountCents int64      `json:"totalAmount"`
}
