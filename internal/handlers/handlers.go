// Package handlers contains the gin HTTP handlers for the storefront API.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/service"
)

// Handlers bundles the HTTP handlers with the services they call into.
type Handlers struct {
	accounts *service.AccountService
	catalog  *service.CatalogService
	carts    *service.CartService
	orders   *service.OrderService
	config   *config.Config
}

// New creates the handler set.
func New(
	accounts *service.AccountService,
	catalog *service.CatalogService,
	carts *service.CartService,
	orders *service.OrderService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		accounts: accounts,
		catalog:  catalog,
		carts:    carts,
		orders:   orders,
		config:   cfg,
	}
}

// currentUser returns the authenticated user placed on the context by the
// auth middleware.
func currentUser(c *gin.Context) *models.User {
	v, exists := c.Get(contextKeyUser)
	if !exists {
		return nil
	}
	return v.(*models.User)
}

func handleError(c *gin.Context, err error) {
	switch err {
	case errors.ErrProductNotFound, errors.ErrCartItemNotFound,
		errors.ErrOrderNotFound, errors.ErrUserNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.ErrEmptyCart, errors.ErrProductInactive,
		errors.ErrEmailTaken, errors.ErrSelfDemotion, errors.ErrLastAdmin:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.ErrInvalidCredentials:
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if validationErr, ok := err.(*errors.ValidationError); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	if errors.IsInsufficientInventory(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slog.Error("Request failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
