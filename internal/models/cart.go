package models

import "time"

// CartItem is one (user, product) quantity entry in a shopping cart. At most
// one item exists per pair; repeated adds merge into the existing quantity.
type CartItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`

	// Product is the joined catalog row, populated on reads.
	Product *Product `json:"product,omitempty"`
}

// CartSummary is a user's cart with its subtotal quoted at current prices.
// Cart totals are quotes, not locked-in amounts; the authoritative price is
// captured at checkout.
type CartSummary struct {
	Items    []*CartItem `json:"items"`
	Subtotal Money       `json:"subtotal"`
}
