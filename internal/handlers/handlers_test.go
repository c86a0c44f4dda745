package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/errors"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Health(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}
	if resp["service"] != "storefront-service" {
		t.Errorf("Expected service 'storefront-service', got %v", resp["service"])
	}
}

func TestReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Ready(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"product not found", errors.ErrProductNotFound, http.StatusNotFound},
		{"cart item not found", errors.ErrCartItemNotFound, http.StatusNotFound},
		{"order not found", errors.ErrOrderNotFound, http.StatusNotFound},
		{"user not found", errors.ErrUserNotFound, http.StatusNotFound},
		{"empty cart", errors.ErrEmptyCart, http.StatusBadRequest},
		{"inactive product", errors.ErrProductInactive, http.StatusBadRequest},
		{"email taken", errors.ErrEmailTaken, http.StatusBadRequest},
		{"self demotion", errors.ErrSelfDemotion, http.StatusBadRequest},
		{"last admin", errors.ErrLastAdmin, http.StatusBadRequest},
		{"invalid credentials", errors.ErrInvalidCredentials, http.StatusUnauthorized},
		{
			"validation error",
			errors.NewValidationError("quantity", "quantity must be at least 1"),
			http.StatusBadRequest,
		},
		{
			"insufficient inventory",
			&errors.InsufficientInventoryError{ProductID: 1, Requested: 6, Available: 5},
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handleError(c, tt.err)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}

			var resp map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
			}
			if resp["error"] == "" {
				t.Error("Expected an error message in the response")
			}
		})
	}
}
