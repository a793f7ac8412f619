package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/room-orders/pkg/logger"
)

func TestHealthHandler_NoChecks(t *testing.T) {
	h := NewHealthHandler("1.0.0", logger.New("error"))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.Empty(t, resp.Checks)
}

func TestHealthHandler_FailingDependency(t *testing.T) {
	h := NewHealthHandler("1.0.0", logger.New("error"))
	h.Register("redis", func(ctx context.Context) error { return errors.New("connection refused") })
	h.Register("catalog", func(ctx context.Context) error { return nil })

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "unhealthy", resp.Status)
	require.Len(t, resp.Checks, 2)
	assert.Equal(t, CheckResult{Name: "catalog", Status: "up"}, resp.Checks[0])
	assert.Equal(t, CheckResult{Name: "redis", Status: "down", Error: "connection refused"}, resp.Checks[1])
}
