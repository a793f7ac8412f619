package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/Lixing-Zhang/room-orders/pkg/httputil"
)

const healthCheckTimeout = 5 * time.Second

// HealthChecker reports whether a dependency is usable
type HealthChecker func(ctx context.Context) error

// HealthHandler provides health check endpoint
type HealthHandler struct {
	logger  *slog.Logger
	version string

	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger:   logger,
		version:  version,
		checkers: make(map[string]HealthChecker),
	}
}

// Register adds a named dependency check
func (h *HealthHandler) Register(name string, checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version"`
	Checks    []CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one dependency check
type CheckResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ServeHTTP handles health check requests.
// Any failing dependency turns the answer into 503.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	h.mu.RUnlock()
	sort.Strings(names)

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	}
	status := http.StatusOK

	for _, name := range names {
		h.mu.RLock()
		checker := h.checkers[name]
		h.mu.RUnlock()

		result := CheckResult{Name: name, Status: "up"}
		if err := checker(ctx); err != nil {
			h.logger.Warn("health check failed", "check", name, "error", err)
			result.Status = "down"
			result.Error = err.Error()
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
		response.Checks = append(response.Checks, result)
	}

	httputil.WriteJSON(w, status, response, h.logger)
}
