package model

// Product types sold by the store
const (
	ProductTypeEssential     = "essential"
	ProductTypeEssentialPlus = "essential_plus"
)

// CartItem is a single selected package in a visitor's cart.
// Cart state lives only in the session store, it is never persisted.
type CartItem struct {
	ID            string   `json:"id" validate:"required"`
	ProductName   string   `json:"productName" validate:"required"`
	ProductType   string   `json:"productType" validate:"required,oneof=essential essential_plus"`
	Quantity      int      `json:"quantity" validate:"gte=1"`
	UnitPrice     float64  `json:"unitPrice" validate:"gt=0"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Savings       *float64 `json:"savings,omitempty"`
	Image         string   `json:"image,omitempty"`
}

// CartState is the full cart with derived totals. Totals are recomputed
// by the reducer on every action, never mutated directly.
type CartState struct {
	Items        []CartItem `json:"items"`
	TotalItems   int        `json:"totalItems"`
	Subtotal     float64    `json:"subtotal"`
	TotalSavings float64    `json:"totalSavings"`
}
