package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// OrderStatusPending is the state a freshly checked-out order starts in.
	OrderStatusPending OrderStatus = "pending"
)

// Order is an immutable purchase record materialized from a cart at
// checkout. Nothing in this service updates an order after creation.
type Order struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	Status    OrderStatus `json:"status"`
	Total     Money       `json:"total_amount"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []*OrderItem `json:"items"`
}

// OrderItem is a per-product line of an order. UnitPrice is the product's
// price captured at checkout time; later catalog price changes never touch it.
type OrderItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"-"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice Money `json:"unit_price"`
}

// CalculateTotal recomputes the order total from its lines.
func (o *Order) CalculateTotal() {
	var total Money
	for _, item := range o.Items {
		total = total.Add(item.UnitPrice.Mul(item.Quantity))
	}
	o.Total = total
}
