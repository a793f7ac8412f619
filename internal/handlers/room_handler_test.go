package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/room-orders/internal/ledger"
	"github.com/Lixing-Zhang/room-orders/internal/repository"
	"github.com/Lixing-Zhang/room-orders/internal/service"
	"github.com/Lixing-Zhang/room-orders/pkg/logger"
)

// roomResponse mirrors the RoomOrder wire format
type roomResponse struct {
	RoomNumber int `json:"roomNumber"`
	Items      []struct {
		ProductID int64 `json:"productId"`
		Quantity  int   `json:"quantity"`
		Product   struct {
			Name string `json:"name"`
		} `json:"product"`
	} `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func newRoomRouter() chi.Router {
	log := logger.New("error")
	rooms := service.NewRoomService(
		service.RoomConfig{RoomCount: 7, CurrencySymbol: "$"},
		ledger.New(),
		repository.NewSeededProductRepository(),
		nil, nil, nil,
		log,
	)
	handler := NewRoomHandler(rooms, log)

	r := chi.NewRouter()
	r.Route("/api/rooms", func(r chi.Router) {
		r.Get("/", handler.ListRooms)
		r.Get("/{room}", handler.GetRoom)
		r.Delete("/{room}", handler.ClearRoom)
		r.Post("/{room}/items", handler.AddItem)
		r.Delete("/{room}/items/{productId}", handler.RemoveItem)
		r.Get("/{room}/bill", handler.GetBill)
		r.Post("/{room}/bill/print", handler.PrintBill)
	})
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeRoom(t *testing.T, w *httptest.ResponseRecorder) roomResponse {
	t.Helper()
	var resp roomResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestRoomHandler_AddAndRemove(t *testing.T) {
	r := newRoomRouter()

	w := do(t, r, http.MethodPost, "/api/rooms/1/items", `{"productId":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodPost, "/api/rooms/1/items", `{"productId":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	room := decodeRoom(t, w)
	assert.Equal(t, 1, room.RoomNumber)
	require.Len(t, room.Items, 1)
	assert.Equal(t, 2, room.Items[0].Quantity)
	assert.Equal(t, "Coffee", room.Items[0].Product.Name)
	assert.True(t, room.TotalAmount.Equal(decimal.RequireFromString("7")))

	w = do(t, r, http.MethodDelete, "/api/rooms/1/items/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	room = decodeRoom(t, w)
	assert.Equal(t, 1, room.Items[0].Quantity)
	assert.True(t, room.TotalAmount.Equal(decimal.RequireFromString("3.5")))
}

func TestRoomHandler_RemoveNoop(t *testing.T) {
	r := newRoomRouter()

	w := do(t, r, http.MethodDelete, "/api/rooms/3/items/2", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"roomNumber":3,"items":[],"totalAmount":"0"}`, w.Body.String())
}

func TestRoomHandler_GetRoom_Absent(t *testing.T) {
	r := newRoomRouter()

	w := do(t, r, http.MethodGet, "/api/rooms/7", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"roomNumber":7,"items":[],"totalAmount":"0"}`, w.Body.String())
}

func TestRoomHandler_ClearRoom(t *testing.T) {
	r := newRoomRouter()

	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/rooms/2/items", `{"productId":4}`).Code)

	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/api/rooms/2", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/api/rooms/2", "").Code)

	w := do(t, r, http.MethodGet, "/api/rooms/2", "")
	room := decodeRoom(t, w)
	assert.Empty(t, room.Items)
	assert.True(t, room.TotalAmount.IsZero())
}

func TestRoomHandler_ListRooms(t *testing.T) {
	r := newRoomRouter()
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/rooms/5/items", `{"productId":3}`).Code)

	w := do(t, r, http.MethodGet, "/api/rooms", "")

	require.Equal(t, http.StatusOK, w.Code)
	var rooms []service.RoomSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rooms))
	require.Len(t, rooms, 7)
	assert.True(t, rooms[4].Active)
	assert.Equal(t, 1, rooms[4].ItemCount)
	assert.True(t, rooms[4].TotalAmount.Equal(decimal.RequireFromString("8")))
	assert.False(t, rooms[0].Active)
}

func TestRoomHandler_Bill(t *testing.T) {
	r := newRoomRouter()
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/rooms/4/items", `{"productId":2}`).Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/rooms/4/items", `{"productId":2}`).Code)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/rooms/4/bill"},
		{http.MethodPost, "/api/rooms/4/bill/print"},
	} {
		t.Run(tc.method, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, "")

			require.Equal(t, http.StatusOK, w.Code)
			var bill service.Bill
			require.NoError(t, json.NewDecoder(w.Body).Decode(&bill))
			assert.Equal(t, 4, bill.RoomNumber)
			assert.Equal(t, "$5.00", bill.Total)
			require.Len(t, bill.Lines, 1)
			assert.Equal(t, "$2.50", bill.Lines[0].UnitPrice)
		})
	}
}

func TestRoomHandler_Errors(t *testing.T) {
	r := newRoomRouter()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"room out of range", http.MethodGet, "/api/rooms/8", "", http.StatusNotFound, "ROOM_NOT_FOUND"},
		{"room zero", http.MethodPost, "/api/rooms/0/items", `{"productId":1}`, http.StatusNotFound, "ROOM_NOT_FOUND"},
		{"room not a number", http.MethodGet, "/api/rooms/abc", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown product", http.MethodPost, "/api/rooms/1/items", `{"productId":99}`, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"missing product id", http.MethodPost, "/api/rooms/1/items", `{}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed body", http.MethodPost, "/api/rooms/1/items", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad product id on remove", http.MethodDelete, "/api/rooms/1/items/x", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"clear unknown room", http.MethodDelete, "/api/rooms/9", "", http.StatusNotFound, "ROOM_NOT_FOUND"},
		{"bill unknown room", http.MethodGet, "/api/rooms/9/bill", "", http.StatusNotFound, "ROOM_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}
