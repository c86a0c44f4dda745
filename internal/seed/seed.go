// Package seed populates a fresh store with a default admin account and a
// small sample catalog for local development.
package seed

import (
	"context"
	"log/slog"
	"time"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/auth"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/store"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin123"
)

// Run seeds the default admin and sample products. It is idempotent: an
// existing admin account means the store is already seeded and nothing is
// touched.
func Run(ctx context.Context, st store.Store) error {
	sess, err := st.Begin(ctx)
	if err != nil {
		return err
	}
	defer sess.Rollback()

	if _, err := sess.UserByEmail(ctx, adminEmail); err == nil {
		return nil
	} else if err != errors.ErrUserNotFound {
		return err
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:          adminEmail,
		FullName:       "Store Admin",
		HashedPassword: hash,
		IsAdmin:        true,
		CreatedAt:      time.Now(),
	}
	if err := sess.InsertUser(ctx, admin); err != nil {
		return err
	}

	for _, p := range sampleProducts() {
		if err := sess.InsertProduct(ctx, p); err != nil {
			return err
		}
	}

	if err := sess.Commit(); err != nil {
		return err
	}

	slog.Info("Seeded default admin and sample catalog", "admin_email", adminEmail)
	return nil
}

func sampleProducts() []*models.Product {
	now := time.Now()
	return []*models.Product{
		{
			Name:           "Acme Rocket Skates",
			Description:    "Jet-propelled skates. Helmet strongly recommended.",
			Price:          models.NewMoney(19999, models.DefaultCurrency),
			InventoryCount: 12,
			IsActive:       true,
			CreatedAt:      now,
		},
		{
			Name:           "Invisibility Cloak",
			Description:    "Limited run. Returns accepted only if you can find it.",
			Price:          models.NewMoney(34950, models.DefaultCurrency),
			InventoryCount: 5,
			IsActive:       true,
			CreatedAt:      now,
		},
		{
			Name:           "Quantum Coffee Maker",
			Description:    "Brews before you press the button.",
			Price:          models.NewMoney(12900, models.DefaultCurrency),
			InventoryCount: 20,
			IsActive:       true,
			CreatedAt:      now,
		},
	}
}
