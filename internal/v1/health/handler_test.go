package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func doRequest(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health/live", h.Liveness)
	r.GET("/health/ready", h.Readiness)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestLiveness(t *testing.T) {
	h := NewHandler(&fakePinger{})

	w, body := doRequest(t, h, "/health/live")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestReadinessHealthy(t *testing.T) {
	h := NewHandler(&fakePinger{})

	w, body := doRequest(t, h, "/health/ready")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
}

func TestReadinessDatabaseDown(t *testing.T) {
	h := NewHandler(&fakePinger{err: errors.New("locked")})

	w, body := doRequest(t, h, "/health/ready")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unavailable", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "unhealthy", checks["database"])
}

func TestReadinessNilDependency(t *testing.T) {
	h := NewHandler(nil)

	w, _ := doRequest(t, h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
