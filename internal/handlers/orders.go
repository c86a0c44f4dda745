package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Checkout handles POST /api/orders
func (h *Handlers) Checkout(c *gin.Context) {
	user := currentUser(c)

	order, err := h.orders.Checkout(c.Request.Context(), user.ID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /api/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	user := currentUser(c)

	orders, err := h.orders.ListOrders(c.Request.Context(), user.ID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder handles GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	user := currentUser(c)

	orderID, err := parseID(c, "id")
	if err != nil {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), user.ID, orderID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
