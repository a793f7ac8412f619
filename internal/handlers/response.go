package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/room-orders/internal/models"
	"github.com/Lixing-Zhang/room-orders/internal/repository"
	"github.com/Lixing-Zhang/room-orders/internal/service"
	"github.com/Lixing-Zhang/room-orders/pkg/apperrors"
	"github.com/Lixing-Zhang/room-orders/pkg/httputil"
	"github.com/Lixing-Zhang/room-orders/pkg/logger"
	"github.com/Lixing-Zhang/room-orders/pkg/validator"
)

// WriteServiceError maps a service or repository error to its HTTP response.
// Unexpected errors are logged with the request logger and reported without details.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	log := logger.FromContext(r.Context(), fallback)
	var valErr *validator.ValidationError

	switch {
	case errors.As(err, &valErr):
		httputil.WriteBody(w, http.StatusBadRequest, httputil.ErrorBody{
			Code:    "VALIDATION_ERROR",
			Message: valErr.Error(),
			Fields:  valErr.Fields(),
		}, log)
	case errors.Is(err, service.ErrUnknownRoom):
		httputil.WriteError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found", log)
	case errors.Is(err, repository.ErrProductNotFound):
		httputil.WriteError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", log)
	case errors.Is(err, models.ErrInvalidProduct):
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_PRODUCT", "Invalid product", log)
	default:
		status := apperrors.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			log.ErrorContext(r.Context(), "request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
			httputil.WriteError(w, status, apperrors.Code(err), "Internal server error", log)
			return
		}

		message := err.Error()
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		httputil.WriteError(w, status, apperrors.Code(err), message, log)
	}
}

// writeDecodeError reports a body that could not be decoded or failed validation
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteServiceError(w, r, err, fallback)
		return
	}

	log := logger.FromContext(r.Context(), fallback)
	log.WarnContext(r.Context(), "failed to decode request body", "error", err)
	httputil.WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body", log)
}
