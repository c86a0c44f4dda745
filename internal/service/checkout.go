package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/store"
)

// OrderService handles checkout and order retrieval.
type OrderService struct {
	store     store.Store
	publisher events.Publisher
	config    *config.Config
}

// NewOrderService creates a new order service.
func NewOrderService(st store.Store, publisher events.Publisher, cfg *config.Config) *OrderService {
	return &OrderService{store: st, publisher: publisher, config: cfg}
}

// Checkout converts the user's entire cart into an order in one atomic
// session. For every cart line it captures the product's current price,
// reserves the quantity against stock, and removes the line; the order total
// is the sum of the captured prices. If any line fails, most commonly on
// insufficient stock, the whole session rolls back: no order, no inventory
// change, cart untouched. There are no partial checkouts.
func (s *OrderService) Checkout(ctx context.Context, userID int64) (*models.Order, error) {
	var order *models.Order
	err := withSession(ctx, s.store, func(sess store.Session) error {
		items, err := sess.CartItems(ctx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return errors.ErrEmptyCart
		}

		// Price capture happens on this session's reads, so every line is
		// priced from the same snapshot.
		var total models.Money
		for _, item := range items {
			if item.Product == nil {
				return errors.ErrProductNotFound
			}
			total = total.Add(item.Product.Price.Mul(item.Quantity))
		}

		order = &models.Order{
			UserID:    userID,
			Status:    models.OrderStatusPending,
			Total:     total,
			CreatedAt: time.Now(),
			Items:     make([]*models.OrderItem, 0, len(items)),
		}
		if err := sess.InsertOrder(ctx, order); err != nil {
			return err
		}

		// Items arrive ordered by product ID, so concurrent checkouts reserve
		// stock in the same order.
		for _, item := range items {
			if err := sess.ReserveInventory(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}

			orderItem := &models.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.Product.Price,
			}
			if err := sess.InsertOrderItem(ctx, orderItem); err != nil {
				return err
			}
			order.Items = append(order.Items, orderItem)

			if err := sess.DeleteCartItem(ctx, item.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues(checkoutFailureReason(err)).Inc()
		if errors.IsInsufficientInventory(err) {
			metrics.InventoryConflicts.Inc()
		}
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	slog.Info("Order created",
		"order_id", order.ID,
		"user_id", userID,
		"total", order.Total.String(),
		"item_count", len(order.Items))

	// The order is durable at this point; a publish failure is logged and
	// never unwinds it.
	if s.config.Features.EnableOrderEvents && s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
			slog.Error("Failed to publish order created event",
				"order_id", order.ID,
				"error", err)
		}
	}

	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	var orders []*models.Order
	err := withSession(ctx, s.store, func(sess store.Session) error {
		var err error
		orders, err = sess.OrdersByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns one of the user's orders. Orders belonging to other users
// are reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	var order *models.Order
	err := withSession(ctx, s.store, func(sess store.Session) error {
		var err error
		order, err = sess.Order(ctx, userID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func checkoutFailureReason(err error) string {
	switch {
	case errors.IsInsufficientInventory(err):
		return "insufficient_inventory"
	case err == errors.ErrEmptyCart:
		return "empty_cart"
	default:
		return "internal"
	}
}
