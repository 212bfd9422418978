package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func check(t *testing.T, h *HealthHandler) (int, HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	t.Run("all up", func(t *testing.T) {
		code, resp := check(t, NewHealthHandler("drafte-backend", "1.2.3", fakePinger{}, rdb))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "up", resp.DB)
		assert.Equal(t, "up", resp.Redis)
		assert.Equal(t, "1.2.3", resp.Version)
	})

	t.Run("no dependencies", func(t *testing.T) {
		code, resp := check(t, NewHealthHandler("drafte-backend", "dev", nil, nil))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "disabled", resp.DB)
		assert.Equal(t, "disabled", resp.Redis)
	})

	t.Run("db down", func(t *testing.T) {
		code, resp := check(t, NewHealthHandler("drafte-backend", "dev", fakePinger{err: errors.New("refused")}, nil))
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "down", resp.DB)
	})

	t.Run("redis down", func(t *testing.T) {
		dead := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
		t.Cleanup(func() { _ = dead.Close() })
		code, resp := check(t, NewHealthHandler("drafte-backend", "dev", fakePinger{}, dead))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "down", resp.Redis)
	})
}
