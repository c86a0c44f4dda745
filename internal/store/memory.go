package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// MemoryStore implements Store with in-memory state. It backs local
// development and the test suite. Begin acquires a store-wide mutex held
// until Commit or Rollback, so sessions are fully serialized; each session
// works on a deep copy of the state, and Commit swaps the copy in. That
// gives the same all-or-nothing and no-interleaving guarantees the Postgres
// backend gets from transactions and row locks.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

type memoryState struct {
	users     map[int64]*models.User
	products  map[int64]*models.Product
	cartItems map[int64]*models.CartItem
	orders    map[int64]*models.Order

	nextUserID      int64
	nextProductID   int64
	nextCartItemID  int64
	nextOrderID     int64
	nextOrderItemID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{
			users:           make(map[int64]*models.User),
			products:        make(map[int64]*models.Product),
			cartItems:       make(map[int64]*models.CartItem),
			orders:          make(map[int64]*models.Order),
			nextUserID:      1,
			nextProductID:   1,
			nextCartItemID:  1,
			nextOrderID:     1,
			nextOrderItemID: 1,
		},
	}
}

// Begin locks the store and hands out a session over a private copy of the
// state. The lock is released when the session finishes.
func (s *MemoryStore) Begin(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &memSession{store: s, state: s.state.clone()}, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func (st *memoryState) clone() *memoryState {
	c := &memoryState{
		users:           make(map[int64]*models.User, len(st.users)),
		products:        make(map[int64]*models.Product, len(st.products)),
		cartItems:       make(map[int64]*models.CartItem, len(st.cartItems)),
		orders:          make(map[int64]*models.Order, len(st.orders)),
		nextUserID:      st.nextUserID,
		nextProductID:   st.nextProductID,
		nextCartItemID:  st.nextCartItemID,
		nextOrderID:     st.nextOrderID,
		nextOrderItemID: st.nextOrderItemID,
	}
	for id, u := range st.users {
		cu := *u
		c.users[id] = &cu
	}
	for id, p := range st.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, item := range st.cartItems {
		ci := *item
		ci.Product = nil // reattached from the clone's products on read
		c.cartItems[id] = &ci
	}
	for id, o := range st.orders {
		co := *o
		co.Items = make([]*models.OrderItem, len(o.Items))
		for i, item := range o.Items {
			cit := *item
			co.Items[i] = &cit
		}
		c.orders[id] = &co
	}
	return c
}

type memSession struct {
	store *MemoryStore
	state *memoryState
	done  bool
}

// Reads hand out copies so pointers escaping a finished session can never
// reach back into committed state.

func copyProduct(p *models.Product) *models.Product {
	cp := *p
	return &cp
}

func copyUser(u *models.User) *models.User {
	cu := *u
	return &cu
}

func (s *memSession) copyCartItem(item *models.CartItem) *models.CartItem {
	ci := *item
	if p, ok := s.state.products[item.ProductID]; ok {
		ci.Product = copyProduct(p)
	}
	return &ci
}

func copyOrder(o *models.Order) *models.Order {
	co := *o
	co.Items = make([]*models.OrderItem, len(o.Items))
	for i, item := range o.Items {
		cit := *item
		co.Items[i] = &cit
	}
	return &co
}

func (s *memSession) Commit() error {
	if s.done {
		return nil
	}
	s.done = true
	s.store.state = s.state
	s.store.mu.Unlock()
	return nil
}

func (s *memSession) Rollback() error {
	if s.done {
		return nil
	}
	s.done = true
	s.store.mu.Unlock()
	return nil
}

func (s *memSession) ListProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error) {
	products := make([]*models.Product, 0, len(s.state.products))
	for _, p := range s.state.products {
		if activeOnly && !p.IsActive {
			continue
		}
		products = append(products, copyProduct(p))
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (s *memSession) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := s.state.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	return copyProduct(p), nil
}

func (s *memSession) InsertProduct(ctx context.Context, p *models.Product) error {
	p.ID = s.state.nextProductID
	s.state.nextProductID++
	cp := *p
	s.state.products[p.ID] = &cp
	return nil
}

func (s *memSession) UpdateProduct(ctx context.Context, p *models.Product) error {
	if _, ok := s.state.products[p.ID]; !ok {
		return errors.ErrProductNotFound
	}
	cp := *p
	s.state.products[p.ID] = &cp
	return nil
}

func (s *memSession) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := s.state.products[id]; !ok {
		return errors.ErrProductNotFound
	}
	delete(s.state.products, id)
	for itemID, item := range s.state.cartItems {
		if item.ProductID == id {
			delete(s.state.cartItems, itemID)
		}
	}
	return nil
}

func (s *memSession) ReserveInventory(ctx context.Context, productID int64, qty int) error {
	p, ok := s.state.products[productID]
	if !ok {
		return errors.ErrProductNotFound
	}
	if p.InventoryCount < qty {
		return &errors.InsufficientInventoryError{
			ProductID: productID,
			Requested: qty,
			Available: p.InventoryCount,
		}
	}
	p.InventoryCount -= qty
	return nil
}

func (s *memSession) CartItems(ctx context.Context, userID int64) ([]*models.CartItem, error) {
	items := make([]*models.CartItem, 0)
	for _, item := range s.state.cartItems {
		if item.UserID != userID {
			continue
		}
		items = append(items, s.copyCartItem(item))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items, nil
}

func (s *memSession) CartItemByProduct(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	for _, item := range s.state.cartItems {
		if item.UserID == userID && item.ProductID == productID {
			return s.copyCartItem(item), nil
		}
	}
	return nil, errors.ErrCartItemNotFound
}

func (s *memSession) CartItem(ctx context.Context, userID, itemID int64) (*models.CartItem, error) {
	item, ok := s.state.cartItems[itemID]
	if !ok || item.UserID != userID {
		return nil, errors.ErrCartItemNotFound
	}
	return s.copyCartItem(item), nil
}

func (s *memSession) InsertCartItem(ctx context.Context, item *models.CartItem) error {
	item.ID = s.state.nextCartItemID
	s.state.nextCartItemID++
	ci := *item
	ci.Product = nil
	s.state.cartItems[item.ID] = &ci
	return nil
}

func (s *memSession) UpdateCartItemQuantity(ctx context.Context, itemID int64, qty int) error {
	item, ok := s.state.cartItems[itemID]
	if !ok {
		return errors.ErrCartItemNotFound
	}
	item.Quantity = qty
	return nil
}

func (s *memSession) DeleteCartItem(ctx context.Context, itemID int64) error {
	if _, ok := s.state.cartItems[itemID]; !ok {
		return errors.ErrCartItemNotFound
	}
	delete(s.state.cartItems, itemID)
	return nil
}

func (s *memSession) InsertOrder(ctx context.Context, o *models.Order) error {
	o.ID = s.state.nextOrderID
	s.state.nextOrderID++
	co := *o
	co.Items = make([]*models.OrderItem, 0)
	s.state.orders[o.ID] = &co
	return nil
}

func (s *memSession) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	o, ok := s.state.orders[item.OrderID]
	if !ok {
		return errors.ErrOrderNotFound
	}
	item.ID = s.state.nextOrderItemID
	s.state.nextOrderItemID++
	ci := *item
	o.Items = append(o.Items, &ci)
	return nil
}

func (s *memSession) Order(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	o, ok := s.state.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, errors.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (s *memSession) OrdersByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	orders := make([]*models.Order, 0)
	for _, o := range s.state.orders {
		if o.UserID == userID {
			orders = append(orders, copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *memSession) UserByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := s.state.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (s *memSession) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.state.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (s *memSession) InsertUser(ctx context.Context, u *models.User) error {
	for _, existing := range s.state.users {
		if existing.Email == u.Email {
			return errors.ErrEmailTaken
		}
	}
	u.ID = s.state.nextUserID
	s.state.nextUserID++
	cu := *u
	s.state.users[u.ID] = &cu
	return nil
}

func (s *memSession) ListUsers(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0, len(s.state.users))
	for _, u := range s.state.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *memSession) AdminIDsForUpdate(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0)
	for _, u := range s.state.users {
		if u.IsAdmin {
			ids = append(ids, u.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *memSession) SetAdminFlag(ctx context.Context, userID int64, isAdmin bool) error {
	u, ok := s.state.users[userID]
	if !ok {
		return errors.ErrUserNotFound
	}
	u.IsAdmin = isAdmin
	return nil
}
