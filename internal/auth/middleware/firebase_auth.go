package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/drafte-app/drafte-backend/internal/auth"
)

// TokenVerifier is satisfied by *fbauth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and extracts user info.
func FirebaseAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		decoded, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(auth.CtxFirebaseUID, decoded.UID)
		for claim, key := range map[string]string{"email": auth.CtxEmail, "name": auth.CtxDisplayName, "picture": auth.CtxPhotoURL} {
			if v, ok := decoded.Claims[claim].(string); ok {
				c.Set(key, v)
			}
		}
		c.Next()
	}
}

// HeaderAuthMiddleware trusts X-User-* headers. Use it only for development
// and behind a gateway that already authenticated the caller.
func HeaderAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = "demo-user"
		}
		c.Set(auth.CtxFirebaseUID, uid)
		c.Set(auth.CtxEmail, c.GetHeader("X-User-Email"))
		c.Set(auth.CtxDisplayName, c.GetHeader("X-User-Name"))
		c.Set(auth.CtxPhotoURL, c.GetHeader("X-User-Photo"))
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
