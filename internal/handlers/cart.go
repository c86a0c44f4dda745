package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /api/cart
func (h *Handlers) GetCart(c *gin.Context) {
	user := currentUser(c)

	summary, err := h.carts.GetCart(c.Request.Context(), user.ID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// AddCartItem handles POST /api/cart/items
func (h *Handlers) AddCartItem(c *gin.Context) {
	user := currentUser(c)

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.carts.AddItem(c.Request.Context(), user.ID, req.ProductID, req.Quantity)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateCartItem handles PATCH /api/cart/items/:id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	user := currentUser(c)

	itemID, err := parseID(c, "id")
	if err != nil {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.carts.UpdateItem(c.Request.Context(), user.ID, itemID, req.Quantity)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// RemoveCartItem handles DELETE /api/cart/items/:id
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	user := currentUser(c)

	itemID, err := parseID(c, "id")
	if err != nil {
		return
	}

	if err := h.carts.RemoveItem(c.Request.Context(), user.ID, itemID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
