package service

import (
	"context"
	"sync"
	"testing"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	accounts := NewAccountService(st)

	user, err := accounts.Register(ctx, "new@example.com", "hunter22hunter22", "New User")
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	if user.IsAdmin {
		t.Error("Expected new accounts to be non-admin")
	}
	if user.HashedPassword == "hunter22hunter22" {
		t.Error("Expected password to be hashed")
	}

	if _, err := accounts.Authenticate(ctx, "new@example.com", "hunter22hunter22"); err != nil {
		t.Errorf("Expected authentication to succeed, got %v", err)
	}
	if _, err := accounts.Authenticate(ctx, "new@example.com", "wrong-password"); err != errors.ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := accounts.Authenticate(ctx, "nobody@example.com", "hunter22hunter22"); err != errors.ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	accounts := NewAccountService(newTestStore(t))

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"missing email", "", "longenoughpassword"},
		{"malformed email", "not-an-email", "longenoughpassword"},
		{"short password", "ok@example.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := accounts.Register(ctx, tt.email, tt.password, "")
			if _, ok := err.(*errors.ValidationError); !ok {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	accounts := NewAccountService(newTestStore(t))

	if _, err := accounts.Register(ctx, "dup@example.com", "longenoughpassword", ""); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	if _, err := accounts.Register(ctx, "dup@example.com", "longenoughpassword", ""); err != errors.ErrEmailTaken {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}
}

func TestSetAdminStatus(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	accounts := NewAccountService(st)

	admin := createUser(t, st, "admin@example.com", true)
	member := createUser(t, st, "member@example.com", false)

	promoted, err := accounts.SetAdminStatus(ctx, admin.ID, member.ID, true)
	if err != nil {
		t.Fatalf("Failed to promote: %v", err)
	}
	if !promoted.IsAdmin {
		t.Error("Expected user to be promoted")
	}

	demoted, err := accounts.SetAdminStatus(ctx, admin.ID, member.ID, false)
	if err != nil {
		t.Fatalf("Failed to demote: %v", err)
	}
	if demoted.IsAdmin {
		t.Error("Expected user to be demoted")
	}
}

func TestSetAdminStatusSelfDemotion(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	accounts := NewAccountService(st)

	admin := createUser(t, st, "admin@example.com", true)
	createUser(t, st, "other-admin@example.com", true)

	// Even with another admin around, self-demotion is refused.
	if _, err := accounts.SetAdminStatus(ctx, admin.ID, admin.ID, false); err != errors.ErrSelfDemotion {
		t.Errorf("Expected ErrSelfDemotion, got %v", err)
	}
}

func TestSetAdminStatusLastAdmin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	accounts := NewAccountService(st)

	admin := createUser(t, st, "admin@example.com", true)
	actor := createUser(t, st, "former-admin@example.com", false)

	if _, err := accounts.SetAdminStatus(ctx, actor.ID, admin.ID, false); err != errors.ErrLastAdmin {
		t.Errorf("Expected ErrLastAdmin, got %v", err)
	}

	// The sole admin keeps the role.
	user, err := accounts.GetUser(ctx, admin.ID)
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if !user.IsAdmin {
		t.Error("Expected admin role to be retained")
	}
}

func TestConcurrentDemotionsKeepOneAdmin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	accounts := NewAccountService(st)

	a := createUser(t, st, "admin-a@example.com", true)
	b := createUser(t, st, "admin-b@example.com", true)
	actor := createUser(t, st, "operator@example.com", false)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, target := range []int64{a.ID, b.ID} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := accounts.SetAdminStatus(ctx, actor.ID, id, false)
			results <- err
		}(target)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if err != errors.ErrLastAdmin {
			t.Errorf("Unexpected demotion error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("Expected exactly 1 successful demotion, got %d", succeeded)
	}

	users, err := accounts.ListUsers(ctx)
	if err != nil {
		t.Fatalf("Failed to list users: %v", err)
	}
	admins := 0
	for _, u := range users {
		if u.IsAdmin {
			admins++
		}
	}
	if admins != 1 {
		t.Errorf("Expected exactly 1 admin remaining, got %d", admins)
	}
}

func TestPromotionNeverBlocked(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	accounts := NewAccountService(st)

	admin := createUser(t, st, "admin@example.com", true)

	// Promoting yourself again is a no-op, not an error.
	user, err := accounts.SetAdminStatus(ctx, admin.ID, admin.ID, true)
	if err != nil {
		t.Fatalf("Expected self-promotion no-op to succeed, got %v", err)
	}
	if !user.IsAdmin {
		t.Error("Expected admin role to be retained")
	}
}
