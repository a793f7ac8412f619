package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/room-orders/internal/config"
	"github.com/Lixing-Zhang/room-orders/pkg/httputil"
	"github.com/Lixing-Zhang/room-orders/pkg/logger"
)

// APIKeyHeader carries the client's API key
const APIKeyHeader = "api_key"

// APIKeyAuth middleware validates the API key from the api_key header
func APIKeyAuth(cfg config.AuthConfig, log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)

			if apiKey == "" {
				httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key required", log)
				return
			}

			valid := false
			for _, validKey := range cfg.APIKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(validKey)) == 1 {
					valid = true
					break
				}
			}

			if !valid {
				logger.FromContext(r.Context(), log).WarnContext(r.Context(), "rejected invalid API key", "method", r.Method, "path", r.URL.Path)
				httputil.WriteError(w, http.StatusForbidden, "FORBIDDEN", "Invalid API key", log)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
