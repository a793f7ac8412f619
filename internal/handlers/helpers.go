package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/room-orders/pkg/apperrors"
)

// pathInt64 parses a positive integer URL parameter
func pathInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, apperrors.InvalidInput(fmt.Sprintf("%s is required", name))
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid %s: %q", name, raw))
	}
	return id, nil
}

// roomNumber parses the {room} URL parameter. Range checks happen in the service.
func roomNumber(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "room")

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid room number: %q", raw))
	}
	return n, nil
}
