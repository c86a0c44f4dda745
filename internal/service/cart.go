package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/store"
)

// CartService handles cart aggregation. Each user has at most one cart line
// per product; adds merge into the existing line, updates replace its
// quantity outright.
type CartService struct {
	store store.Store
}

// NewCartService creates a new cart service.
func NewCartService(st store.Store) *CartService {
	return &CartService{store: st}
}

// AddItem adds a product to the user's cart. If a line for the product
// already exists, the quantities merge: the requested quantity is added on
// top of what is already there. The merged quantity is checked against
// current stock; cart contents never exceed the inventory visible at add
// time. That bound is advisory, the binding check happens at checkout.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64, qty int) (*models.CartItem, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}

	var result *models.CartItem
	err := withSession(ctx, s.store, func(sess store.Session) error {
		product, err := sess.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if !product.IsActive {
			return errors.ErrProductInactive
		}

		existing, err := sess.CartItemByProduct(ctx, userID, productID)
		if err != nil && err != errors.ErrCartItemNotFound {
			return err
		}

		newQty := qty
		if existing != nil {
			newQty += existing.Quantity
		}
		if newQty > product.InventoryCount {
			metrics.InventoryConflicts.Inc()
			return &errors.InsufficientInventoryError{
				ProductID: productID,
				Requested: newQty,
				Available: product.InventoryCount,
			}
		}

		if existing != nil {
			if err := sess.UpdateCartItemQuantity(ctx, existing.ID, newQty); err != nil {
				return err
			}
			existing.Quantity = newQty
			existing.Product = product
			result = existing
			return nil
		}

		item := &models.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  newQty,
			AddedAt:   time.Now(),
		}
		if err := sess.InsertCartItem(ctx, item); err != nil {
			return err
		}
		item.Product = product
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Cart item added",
		"user_id", userID,
		"product_id", productID,
		"quantity", result.Quantity)
	return result, nil
}

// UpdateItem sets a cart line to an exact quantity, replacing whatever was
// there. Unlike AddItem it never merges.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID int64, qty int) (*models.CartItem, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}

	var result *models.CartItem
	err := withSession(ctx, s.store, func(sess store.Session) error {
		item, err := sess.CartItem(ctx, userID, itemID)
		if err != nil {
			return err
		}

		product, err := sess.GetProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if qty > product.InventoryCount {
			metrics.InventoryConflicts.Inc()
			return &errors.InsufficientInventoryError{
				ProductID: product.ID,
				Requested: qty,
				Available: product.InventoryCount,
			}
		}

		if err := sess.UpdateCartItemQuantity(ctx, item.ID, qty); err != nil {
			return err
		}
		item.Quantity = qty
		item.Product = product
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem deletes one line from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int64) error {
	return withSession(ctx, s.store, func(sess store.Session) error {
		if _, err := sess.CartItem(ctx, userID, itemID); err != nil {
			return err
		}
		return sess.DeleteCartItem(ctx, itemID)
	})
}

// GetCart returns the user's cart with a subtotal quoted at current catalog
// prices. The subtotal is informational; the price actually charged is
// captured at checkout.
func (s *CartService) GetCart(ctx context.Context, userID int64) (*models.CartSummary, error) {
	var summary *models.CartSummary
	err := withSession(ctx, s.store, func(sess store.Session) error {
		items, err := sess.CartItems(ctx, userID)
		if err != nil {
			return err
		}

		var subtotal models.Money
		for _, item := range items {
			if item.Product != nil {
				subtotal = subtotal.Add(item.Product.Price.Mul(item.Quantity))
			}
		}
		summary = &models.CartSummary{Items: items, Subtotal: subtotal}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
