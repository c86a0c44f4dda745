// Package store provides the transactional storage layer for the storefront.
// Every core operation runs against a Session obtained from a Store. The
// Session is the unit of atomicity: either everything done through it
// commits, or nothing does.
package store

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// Store hands out transactional sessions. Implementations: Postgres for
// deployments, the in-memory store for local development and tests.
type Store interface {
	// Begin opens a new atomic session. The caller must finish it with
	// exactly one Commit or Rollback.
	Begin(ctx context.Context) (Session, error)
	Close() error
}

// Session is one atomic unit of work. Reads observe a consistent snapshot;
// ReserveInventory and AdminIDsForUpdate additionally guarantee that concurrent
// sessions touching the same rows serialize (see each method).
type Session interface {
	// Products.

	ListProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	InsertProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	// ReserveInventory decrements the product's stock by qty only if enough
	// stock remains; otherwise it returns InsufficientInventoryError and
	// changes nothing. The check and the decrement are indivisible with
	// respect to concurrent reservations on the same product.
	ReserveInventory(ctx context.Context, productID int64, qty int) error

	// Cart.

	// CartItems returns the user's cart lines joined with their products,
	// ordered by product ID so concurrent checkouts acquire product rows in
	// the same order.
	CartItems(ctx context.Context, userID int64) ([]*models.CartItem, error)
	CartItemByProduct(ctx context.Context, userID, productID int64) (*models.CartItem, error)
	CartItem(ctx context.Context, userID, itemID int64) (*models.CartItem, error)
	InsertCartItem(ctx context.Context, item *models.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, itemID int64, qty int) error
	DeleteCartItem(ctx context.Context, itemID int64) error

	// Orders.

	InsertOrder(ctx context.Context, o *models.Order) error
	InsertOrderItem(ctx context.Context, item *models.OrderItem) error
	Order(ctx context.Context, userID, orderID int64) (*models.Order, error)
	OrdersByUser(ctx context.Context, userID int64) ([]*models.Order, error)

	// Users.

	UserByID(ctx context.Context, id int64) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]*models.User, error)

	// AdminIDsForUpdate returns the IDs of all administrators and locks
	// their rows for the remainder of the session, so two demotions can
	// never both observe the same admin count.
	AdminIDsForUpdate(ctx context.Context) ([]int64, error)
	SetAdminFlag(ctx context.Context, userID int64, isAdmin bool) error

	Commit() error
	Rollback() error
}
