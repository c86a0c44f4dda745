package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type setAdminRequest struct {
	IsAdmin *bool `json:"is_admin"`
}

// ListUsers handles GET /api/admin/users (admin only)
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.accounts.ListUsers(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// SetAdminStatus handles PATCH /api/admin/users/:id (admin only)
func (h *Handlers) SetAdminStatus(c *gin.Context) {
	actor := currentUser(c)

	targetID, err := parseID(c, "id")
	if err != nil {
		return
	}

	var req setAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAdmin == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_admin is required"})
		return
	}

	user, err := h.accounts.SetAdminStatus(c.Request.Context(), actor.ID, targetID, *req.IsAdmin)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
