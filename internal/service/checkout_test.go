package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/store"
)

func newTestStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	return store.NewMemoryStore()
}

func testConfig() *config.Config {
	return &config.Config{}
}

func createProduct(t *testing.T, st store.Store, name string, priceCents int64, inventory int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:           name,
		Description:    "test product",
		Price:          models.NewMoney(priceCents, "USD"),
		InventoryCount: inventory,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	sess, err := st.Begin(context.Background())
	if err != nil {
		t.Fatalf("Failed to begin session: %v", err)
	}
	if err := sess.InsertProduct(context.Background(), p); err != nil {
		t.Fatalf("Failed to insert product: %v", err)
	}
	if err := sess.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
	return p
}

func createUser(t *testing.T, st store.Store, email string, isAdmin bool) *models.User {
	t.Helper()
	u := &models.User{
		Email:          email,
		HashedPassword: "not-a-real-hash",
		IsAdmin:        isAdmin,
		CreatedAt:      time.Now(),
	}
	sess, err := st.Begin(context.Background())
	if err != nil {
		t.Fatalf("Failed to begin session: %v", err)
	}
	if err := sess.InsertUser(context.Background(), u); err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}
	if err := sess.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
	return u
}

func getProduct(t *testing.T, st store.Store, id int64) *models.Product {
	t.Helper()
	sess, err := st.Begin(context.Background())
	if err != nil {
		t.Fatalf("Failed to begin session: %v", err)
	}
	defer sess.Rollback()
	p, err := sess.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("Failed to get product: %v", err)
	}
	return p
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := createUser(t, st, "shopper@example.com", false)
	product := createProduct(t, st, "Widget", 2000, 5)

	carts := NewCartService(st)
	orders := NewOrderService(st, events.NewMockPublisher(), &config.Config{})

	if _, err := carts.AddItem(ctx, user.ID, product.ID, 3); err != nil {
		t.Fatalf("Failed to add item: %v", err)
	}

	// Adding 3 more would push the cart to 6 against 5 in stock.
	_, err := carts.AddItem(ctx, user.ID, product.ID, 3)
	if !errors.IsInsufficientInventory(err) {
		t.Fatalf("Expected insufficient inventory error, got %v", err)
	}

	order, err := orders.Checkout(ctx, user.ID)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if order.Total.Amount != 6000 {
		t.Errorf("Expected total 6000, got %d", order.Total.Amount)
	}
	if len(order.Items) != 1 {
		t.Fatalf("Expected 1 order item, got %d", len(order.Items))
	}
	if order.Items[0].Quantity != 3 {
		t.Errorf("Expected quantity 3, got %d", order.Items[0].Quantity)
	}
	if order.Items[0].UnitPrice.Amount != 2000 {
		t.Errorf("Expected unit price 2000, got %d", order.Items[0].UnitPrice.Amount)
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("Expected status pending, got %s", order.Status)
	}

	if got := getProduct(t, st, product.ID).InventoryCount; got != 2 {
		t.Errorf("Expected inventory 2 after checkout, got %d", got)
	}

	summary, err := carts.GetCart(ctx, user.ID)
	if err != nil {
		t.Fatalf("Failed to get cart: %v", err)
	}
	if len(summary.Items) != 0 {
		t.Errorf("Expected empty cart after checkout, got %d items", len(summary.Items))
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := createUser(t, st, "shopper@example.com", false)

	orders := NewOrderService(st, events.NewMockPublisher(), &config.Config{})

	_, err := orders.Checkout(ctx, user.ID)
	if err != errors.ErrEmptyCart {
		t.Errorf("Expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutUsesPriceAtCheckoutTime(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := createUser(t, st, "shopper@example.com", false)
	product := createProduct(t, st, "Widget", 1000, 10)

	carts := NewCartService(st)
	catalog := NewCatalogService(st, nil, &config.Config{})
	orders := NewOrderService(st, events.NewMockPublisher(), &config.Config{})

	if _, err := carts.AddItem(ctx, user.ID, product.ID, 2); err != nil {
		t.Fatalf("Failed to add item: %v", err)
	}

	// Price changes between add-to-cart and checkout.
	newPrice := models.NewMoney(1500, "USD")
	if _, err := catalog.UpdateProduct(ctx, product.ID, &models.ProductUpdate{Price: &newPrice}); err != nil {
		t.Fatalf("Failed to update price: %v", err)
	}

	order, err := orders.Checkout(ctx, user.ID)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if order.Items[0].UnitPrice.Amount != 1500 {
		t.Errorf("Expected captured unit price 1500, got %d", order.Items[0].UnitPrice.Amount)
	}
	if order.Total.Amount != 3000 {
		t.Errorf("Expected total 3000, got %d", order.Total.Amount)
	}

	// A later price change never touches the recorded order.
	finalPrice := models.NewMoney(9900, "USD")
	if _, err := catalog.UpdateProduct(ctx, product.ID, &models.ProductUpdate{Price: &finalPrice}); err != nil {
		t.Fatalf("Failed to update price: %v", err)
	}
	stored, err := orders.GetOrder(ctx, user.ID, order.ID)
	if err != nil {
		t.Fatalf("Failed to get order: %v", err)
	}
	if stored.Items[0].UnitPrice.Amount != 1500 {
		t.Errorf("Expected recorded unit price 1500, got %d", stored.Items[0].UnitPrice.Amount)
	}
}

func TestCheckoutRollsBackOnInsufficientStock(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := createUser(t, st, "alice@example.com", false)
	bob := createUser(t, st, "bob@example.com", false)
	plenty := createProduct(t, st, "Plentiful", 1000, 5)
	scarce := createProduct(t, st, "Scarce", 2000, 1)

	carts := NewCartService(st)
	orders := NewOrderService(st, events.NewMockPublisher(), &config.Config{})

	if _, err := carts.AddItem(ctx, alice.ID, plenty.ID, 2); err != nil {
		t.Fatalf("Failed to add item: %v", err)
	}
	if _, err := carts.AddItem(ctx, alice.ID, scarce.ID, 1); err != nil {
		t.Fatalf("Failed to add item: %v", err)
	}
	if _, err := carts.AddItem(ctx, bob.ID, scarce.ID, 1); err != nil {
		t.Fatalf("Failed to add item: %v", err)
	}

	// Bob takes the last unit of the scarce product.
	if _, err := orders.Checkout(ctx, bob.ID); err != nil {
		t.Fatalf("Bob's checkout failed: %v", err)
	}

	// Alice's checkout fails on the scarce line after the plentiful line was
	// already reserved in-session; the whole thing must roll back.
	_, err := orders.Checkout(ctx, alice.ID)
	if !errors.IsInsufficientInventory(err) {
		t.Fatalf("Expected insufficient inventory error, got %v", err)
	}

	if got := getProduct(t, st, plenty.ID).InventoryCount; got != 5 {
		t.Errorf("Expected plentiful inventory untouched at 5, got %d", got)
	}

	summary, err := carts.GetCart(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Failed to get cart: %v", err)
	}
	if len(summary.Items) != 2 {
		t.Errorf("Expected Alice's cart intact with 2 items, got %d", len(summary.Items))
	}

	aliceOrders, err := orders.ListOrders(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Failed to list orders: %v", err)
	}
	if len(aliceOrders) != 0 {
		t.Errorf("Expected no orders for Alice, got %d", len(aliceOrders))
	}
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	product := createProduct(t, st, "Hot Item", 500, 10)

	carts := NewCartService(st)
	orders := NewOrderService(st, events.NewMockPublisher(), &config.Config{})

	const shoppers = 20
	users := make([]*models.User, shoppers)
	for i := range users {
		users[i] = createUser(t, st, "shopper"+string(rune('a'+i))+"@example.com", false)
		if _, err := carts.AddItem(ctx, users[i].ID, product.ID, 1); err != nil {
			t.Fatalf("Failed to add item: %v", err)
		}
	}

	var wg sync.WaitGroup
	results := make(chan error, shoppers)
	for i := 0; i < shoppers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := orders.Checkout(ctx, userID)
			results <- err
		}(users[i].ID)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.IsInsufficientInventory(err) {
			t.Errorf("Unexpected checkout error: %v", err)
		}
	}

	if succeeded != 10 {
		t.Errorf("Expected exactly 10 successful checkouts, got %d", succeeded)
	}
	if got := getProduct(t, st, product.ID).InventoryCount; got != 0 {
		t.Errorf("Expected inventory 0, got %d", got)
	}
}

func TestCheckoutPublishesEvent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := createUser(t, st, "shopper@example.com", false)
	product := createProduct(t, st, "Widget", 1000, 5)

	publisher := events.NewMockPublisher()
	cfg := &config.Config{}
	cfg.Features.EnableOrderEvents = true

	carts := NewCartService(st)
	orders := NewOrderService(st, publisher, cfg)

	if _, err := carts.AddItem(ctx, user.ID, product.ID, 1); err != nil {
		t.Fatalf("Failed to add item: %v", err)
	}
	order, err := orders.Checkout(ctx, user.ID)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if len(publisher.Events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(publisher.Events))
	}
	if publisher.Events[0].Type != events.EventTypeOrderCreated {
		t.Errorf("Expected order.created event, got %s", publisher.Events[0].Type)
	}
	if publisher.Events[0].OrderID != order.ID {
		t.Errorf("Expected event for order %d, got %d", order.ID, publisher.Events[0].OrderID)
	}
}

func TestGetOrderScopedToUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := createUser(t, st, "alice@example.com", false)
	bob := createUser(t, st, "bob@example.com", false)
	product := createProduct(t, st, "Widget", 1000, 5)

	carts := NewCartService(st)
	orders := NewOrderService(st, events.NewMockPublisher(), &config.Config{})

	if _, err := carts.AddItem(ctx, alice.ID, product.ID, 1); err != nil {
		t.Fatalf("Failed to add item: %v", err)
	}
	order, err := orders.Checkout(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if _, err := orders.GetOrder(ctx, bob.ID, order.ID); err != errors.ErrOrderNotFound {
		t.Errorf("Expected ErrOrderNotFound for another user's order, got %v", err)
	}
}
