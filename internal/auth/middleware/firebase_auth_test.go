package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/drafte-app/drafte-backend/internal/auth"
)

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, token string) (*fbauth.Token, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &fbauth.Token{UID: "fb-1", Claims: map[string]interface{}{"email": "a@b.c", "name": "Ada"}}, nil
}

func newEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", mw, func(c *gin.Context) {
		c.String(http.StatusOK, auth.UserFirebaseUID(c)+"|"+c.GetString(auth.CtxEmail)+"|"+c.GetString(auth.CtxDisplayName))
	})
	return r
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	r := newEngine(FirebaseAuthMiddleware(fakeVerifier{}))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"invalid", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid", "Bearer good", http.StatusOK, "fb-1|a@b.c|Ada"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestHeaderAuthMiddleware(t *testing.T) {
	r := newEngine(HeaderAuthMiddleware())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-Id", "dev-1")
	req.Header.Set("X-User-Email", "dev@example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, "dev-1|dev@example.com|", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, "demo-user||", w.Body.String())
}
