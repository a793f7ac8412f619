package httputil

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/room-orders/pkg/logger"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusCreated, map[string]int{"room": 3}, logger.New("error"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"room":3}`, w.Body.String())
}

func TestWriteJSON_LogsEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusOK, math.Inf(1), logger.NewWithWriter("error", &buf))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "failed to encode JSON response")
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusForbidden, "FORBIDDEN", "Invalid API key", logger.New("error"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":{"code":"FORBIDDEN","message":"Invalid API key"}}`, w.Body.String())
}

func TestWriteBody_WithFields(t *testing.T) {
	w := httptest.NewRecorder()

	WriteBody(w, http.StatusBadRequest, ErrorBody{
		Code:    "VALIDATION_ERROR",
		Message: "productId is required",
		Fields:  map[string]string{"productId": "is required"},
	}, logger.New("error"))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, map[string]string{"productId": "is required"}, resp.Error.Fields)
}
