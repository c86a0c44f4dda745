package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

// ListProducts handles GET /api/products
func (h *Handlers) ListProducts(c *gin.Context) {
	// Admins can request inactive entries with ?include_inactive=true.
	activeOnly := true
	if c.Query("include_inactive") == "true" {
		if user := currentUser(c); user != nil && user.IsAdmin {
			activeOnly = false
		}
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), activeOnly)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct handles GET /api/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /api/products (admin only)
func (h *Handlers) CreateProduct(c *gin.Context) {
	var req struct {
		Name           string       `json:"name"`
		Description    string       `json:"description"`
		Price          models.Money `json:"price"`
		InventoryCount int          `json:"inventory_count"`
		ImageURL       string       `json:"image_url"`
		IsActive       *bool        `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product := &models.Product{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		InventoryCount: req.InventoryCount,
		ImageURL:       req.ImageURL,
		IsActive:       true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), product)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PATCH /api/products/:id (admin only)
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}

	var update models.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), id, &update)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/products/:id (admin only)
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, err
	}
	return id, nil
}
