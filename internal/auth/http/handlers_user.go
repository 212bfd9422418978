package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drafte-app/drafte-backend/internal/auth"
	"github.com/drafte-app/drafte-backend/internal/users"
)

type UserGetter interface {
	Get(ctx context.Context, id string) (*users.User, error)
}

type Handler struct {
	users UserGetter
}

func New(users UserGetter) *Handler {
	return &Handler{users: users}
}

// GetProfile returns the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	id := auth.UserDBID(c)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}
