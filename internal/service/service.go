// Package service implements the storefront's business logic: catalog
// management, cart aggregation, checkout, and account administration. Every
// operation that mutates state runs inside a single storage session so it
// commits or rolls back as a whole.
package service

import (
	"context"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/store"
)

// withSession runs fn inside one atomic session. The session commits when fn
// returns nil and rolls back otherwise.
func withSession(ctx context.Context, st store.Store, fn func(s store.Session) error) error {
	sess, err := st.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin session: %w", err)
	}
	if err := fn(sess); err != nil {
		_ = sess.Rollback()
		return err
	}
	if err := sess.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}
