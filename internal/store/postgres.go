package store

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// PostgresStore implements Store on top of PostgreSQL. One Session maps to
// one sql.Tx; row locks and conditional updates provide the isolation the
// checkout and role-guard paths require.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// RunMigrations applies any pending schema migrations.
func (s *PostgresStore) RunMigrations() error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migration source: %w", err)
	}

	driver, err := migratepg.WithInstance(s.db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	slog.Info("Database schema up to date")
	return nil
}

// Begin opens a transaction-backed session.
func (s *PostgresStore) Begin(ctx context.Context) (Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	return &pgSession{tx: tx}, nil
}

// Close closes the underlying database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type pgSession struct {
	tx *sql.Tx
}

func (s *pgSession) Commit() error {
	return s.tx.Commit()
}

func (s *pgSession) Rollback() error {
	return s.tx.Rollback()
}

const productColumns = `id, name, description, price_amount, price_currency,
       inventory_count, image_url, is_active, created_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	var imageURL sql.NullString
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price.Amount,
		&p.Price.Currency,
		&p.InventoryCount,
		&imageURL,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		p.ImageURL = imageURL.String
	}
	return &p, nil
}

func (s *pgSession) ListProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := s.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *pgSession) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(s.tx.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrProductNotFound
	}
	return p, err
}

func (s *pgSession) InsertProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, description, price_amount, price_currency,
		                      inventory_count, image_url, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
		RETURNING id
	`
	return s.tx.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price.Amount, p.Price.Currency,
		p.InventoryCount, p.ImageURL, p.IsActive, p.CreatedAt,
	).Scan(&p.ID)
}

func (s *pgSession) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price_amount = $4, price_currency = $5,
		    inventory_count = $6, image_url = NULLIF($7, ''), is_active = $8
		WHERE id = $1
	`
	result, err := s.tx.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Price.Amount, p.Price.Currency,
		p.InventoryCount, p.ImageURL, p.IsActive,
	)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.ErrProductNotFound
	}
	return nil
}

func (s *pgSession) DeleteProduct(ctx context.Context, id int64) error {
	result, err := s.tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.ErrProductNotFound
	}
	return nil
}

// ReserveInventory is a single conditional UPDATE, so the stock check and
// the decrement cannot interleave with another reservation on the same row.
func (s *pgSession) ReserveInventory(ctx context.Context, productID int64, qty int) error {
	query := `
		UPDATE products
		SET inventory_count = inventory_count - $2
		WHERE id = $1 AND inventory_count >= $2
	`
	result, err := s.tx.ExecContext(ctx, query, productID, qty)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Reservation was rejected: distinguish a missing product from a stock
	// shortfall for the error report.
	var available int
	err = s.tx.QueryRowContext(ctx,
		`SELECT inventory_count FROM products WHERE id = $1`, productID,
	).Scan(&available)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.ErrProductNotFound
	}
	if err != nil {
		return err
	}
	return &errors.InsufficientInventoryError{
		ProductID: productID,
		Requested: qty,
		Available: available,
	}
}

const cartItemColumns = `ci.id, ci.user_id, ci.product_id, ci.quantity, ci.added_at,
       p.id, p.name, p.description, p.price_amount, p.price_currency,
       p.inventory_count, p.image_url, p.is_active, p.created_at`

func scanCartItem(row interface{ Scan(...any) error }) (*models.CartItem, error) {
	var item models.CartItem
	var p models.Product
	var imageURL sql.NullString
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.AddedAt,
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price.Amount,
		&p.Price.Currency,
		&p.InventoryCount,
		&imageURL,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		p.ImageURL = imageURL.String
	}
	item.Product = &p
	return &item, nil
}

func (s *pgSession) CartItems(ctx context.Context, userID int64) ([]*models.CartItem, error) {
	query := `
		SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY p.id
	`
	rows, err := s.tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.CartItem, 0)
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *pgSession) CartItemByProduct(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	query := `
		SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1 AND ci.product_id = $2
	`
	item, err := scanCartItem(s.tx.QueryRowContext(ctx, query, userID, productID))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrCartItemNotFound
	}
	return item, err
}

func (s *pgSession) CartItem(ctx context.Context, userID, itemID int64) (*models.CartItem, error) {
	query := `
		SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1 AND ci.id = $2
	`
	item, err := scanCartItem(s.tx.QueryRowContext(ctx, query, userID, itemID))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrCartItemNotFound
	}
	return item, err
}

func (s *pgSession) InsertCartItem(ctx context.Context, item *models.CartItem) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return s.tx.QueryRowContext(ctx, query,
		item.UserID, item.ProductID, item.Quantity, item.AddedAt,
	).Scan(&item.ID)
}

func (s *pgSession) UpdateCartItemQuantity(ctx context.Context, itemID int64, qty int) error {
	result, err := s.tx.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, qty)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.ErrCartItemNotFound
	}
	return nil
}

func (s *pgSession) DeleteCartItem(ctx context.Context, itemID int64) error {
	result, err := s.tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.ErrCartItemNotFound
	}
	return nil
}

func (s *pgSession) InsertOrder(ctx context.Context, o *models.Order) error {
	query := `
		INSERT INTO orders (user_id, status, total_amount, total_currency, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return s.tx.QueryRowContext(ctx, query,
		o.UserID, o.Status, o.Total.Amount, o.Total.Currency, o.CreatedAt,
	).Scan(&o.ID)
}

func (s *pgSession) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price_amount, unit_price_currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return s.tx.QueryRowContext(ctx, query,
		item.OrderID, item.ProductID, item.Quantity,
		item.UnitPrice.Amount, item.UnitPrice.Currency,
	).Scan(&item.ID)
}

func (s *pgSession) Order(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	query := `
		SELECT id, user_id, status, total_amount, total_currency, created_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`
	var o models.Order
	err := s.tx.QueryRowContext(ctx, query, orderID, userID).Scan(
		&o.ID, &o.UserID, &o.Status, &o.Total.Amount, &o.Total.Currency, &o.CreatedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadOrderItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *pgSession) OrdersByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT id, user_id, status, total_amount, total_currency, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		var o models.Order
		err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.Total.Amount, &o.Total.Currency, &o.CreatedAt)
		if err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if err := s.loadOrderItems(ctx, o); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *pgSession) loadOrderItems(ctx context.Context, o *models.Order) error {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price_amount, unit_price_currency
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := s.tx.QueryContext(ctx, query, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	o.Items = make([]*models.OrderItem, 0)
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.UnitPrice.Amount, &item.UnitPrice.Currency)
		if err != nil {
			return err
		}
		o.Items = append(o.Items, &item)
	}
	return rows.Err()
}

const userColumns = `id, email, hashed_password, full_name, is_admin, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var fullName sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &fullName, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if fullName.Valid {
		u.FullName = fullName.String
	}
	return &u, nil
}

func (s *pgSession) UserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(s.tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrUserNotFound
	}
	return u, err
}

func (s *pgSession) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrUserNotFound
	}
	return u, err
}

func (s *pgSession) InsertUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (email, hashed_password, full_name, is_admin, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING id
	`
	err := s.tx.QueryRowContext(ctx, query,
		u.Email, u.HashedPassword, u.FullName, u.IsAdmin, u.CreatedAt,
	).Scan(&u.ID)
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return errors.ErrEmailTaken
	}
	return err
}

func (s *pgSession) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.tx.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AdminIDsForUpdate locks every admin row until the transaction ends.
// Concurrent demotions all contend for the same locks, so only one at a
// time can evaluate the admin count.
func (s *pgSession) AdminIDsForUpdate(ctx context.Context) ([]int64, error) {
	rows, err := s.tx.QueryContext(ctx,
		`SELECT id FROM users WHERE is_admin = TRUE ORDER BY id FOR UPDATE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *pgSession) SetAdminFlag(ctx context.Context, userID int64, isAdmin bool) error {
	result, err := s.tx.ExecContext(ctx,
		`UPDATE users SET is_admin = $2 WHERE id = $1`, userID, isAdmin)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

// OpenDatabase opens and verifies a Postgres connection with the pool
// settings applied.
func OpenDatabase(connString string, maxOpen, maxIdle int, maxLifetime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
