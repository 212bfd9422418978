package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drafte-app/drafte-backend/internal/users"
)

type UserEnsurer interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (string, error)
}

// WithUser upserts the authenticated caller and stores its internal id. It
// must run after one of the middlewares that set CtxFirebaseUID.
func WithUser(repo UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		fuid := UserFirebaseUID(c)
		if fuid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
			c.Abort()
			return
		}

		uid, err := repo.EnsureUser(c.Request.Context(), users.UpsertUser{
			FirebaseUID: fuid,
			Email:       c.GetString(CtxEmail),
			DisplayName: c.GetString(CtxDisplayName),
			PhotoURL:    c.GetString(CtxPhotoURL),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user failed"})
			c.Abort()
			return
		}

		c.Set(CtxUserDBID, uid)
		c.Next()
	}
}
