package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/auth"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/store"
)

// AccountService handles registration, authentication, and admin role
// management.
type AccountService struct {
	store store.Store
}

// NewAccountService creates a new account service.
func NewAccountService(st store.Store) *AccountService {
	return &AccountService{store: st}
}

// Register creates a new non-admin account.
func (s *AccountService) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:          email,
		FullName:       fullName,
		HashedPassword: hash,
		IsAdmin:        false,
		CreatedAt:      time.Now(),
	}
	err = withSession(ctx, s.store, func(sess store.Session) error {
		return sess.InsertUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("User registered", "user_id", user.ID)
	return user, nil
}

// Authenticate verifies credentials and returns the matching user. Unknown
// emails and wrong passwords both come back as ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user *models.User
	err := withSession(ctx, s.store, func(sess store.Session) error {
		var err error
		user, err = sess.UserByEmail(ctx, email)
		return err
	})
	if err != nil {
		if err == errors.ErrUserNotFound {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.HashedPassword, password) {
		return nil, errors.ErrInvalidCredentials
	}
	return user, nil
}

// GetUser returns a user by ID.
func (s *AccountService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := withSession(ctx, s.store, func(sess store.Session) error {
		var err error
		user, err = sess.UserByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail returns a user by email.
func (s *AccountService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := withSession(ctx, s.store, func(sess store.Session) error {
		var err error
		user, err = sess.UserByEmail(ctx, email)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns all accounts.
func (s *AccountService) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := withSession(ctx, s.store, func(sess store.Session) error {
		var err error
		users, err = sess.ListUsers(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// SetAdminStatus grants or revokes a user's admin role on behalf of actorID.
// Two rules guard demotion: an admin can never demote themselves, and the
// last remaining admin can never be demoted. The admin count is checked
// under row locks, so two concurrent demotions cannot both pass it.
func (s *AccountService) SetAdminStatus(ctx context.Context, actorID, targetID int64, isAdmin bool) (*models.User, error) {
	var user *models.User
	err := withSession(ctx, s.store, func(sess store.Session) error {
		var err error
		user, err = sess.UserByID(ctx, targetID)
		if err != nil {
			return err
		}

		if !isAdmin {
			if targetID == actorID {
				return errors.ErrSelfDemotion
			}
			if user.IsAdmin {
				admins, err := sess.AdminIDsForUpdate(ctx)
				if err != nil {
					return err
				}
				if len(admins) <= 1 {
					return errors.ErrLastAdmin
				}
			}
		}

		if user.IsAdmin == isAdmin {
			return nil
		}
		if err := sess.SetAdminFlag(ctx, targetID, isAdmin); err != nil {
			return err
		}
		user.IsAdmin = isAdmin
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Admin status changed",
		"actor_id", actorID,
		"user_id", targetID,
		"is_admin", isAdmin)
	return user, nil
}
