package service

import (
	"strings"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

func validateEmail(email string) error {
	if email == "" {
		return errors.NewValidationError("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return errors.NewValidationError("email", "email is not valid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.NewValidationError("password", "password must be at least 8 characters")
	}
	return nil
}

func validateQuantity(qty int) error {
	if qty < 1 {
		return errors.NewValidationError("quantity", "quantity must be at least 1")
	}
	return nil
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.NewValidationError("name", "name is required")
	}
	if !p.Price.IsPositive() {
		return errors.NewValidationError("price", "price must be greater than zero")
	}
	if p.InventoryCount < 0 {
		return errors.NewValidationError("inventory_count", "inventory count cannot be negative")
	}
	return nil
}
