package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/room-orders/internal/service"
	"github.com/Lixing-Zhang/room-orders/pkg/httputil"
	"github.com/Lixing-Zhang/room-orders/pkg/logger"
	"github.com/Lixing-Zhang/room-orders/pkg/validator"
)

// RoomHandler handles room bill HTTP requests
type RoomHandler struct {
	rooms *service.RoomService
	log   *slog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms *service.RoomService, log *slog.Logger) *RoomHandler {
	return &RoomHandler{
		rooms: rooms,
		log:   log,
	}
}

type addItemRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
}

// ListRooms handles GET /api/rooms
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.rooms.ListRooms(r.Context()), h.log)
}

// GetRoom handles GET /api/rooms/{room}
// A room without a bill answers with the empty bill.
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := roomNumber(r)
	if err != nil {
		WriteServiceError(w, r, err, h.log)
		return
	}

	order, err := h.rooms.GetRoom(r.Context(), room)
	if err != nil {
		WriteServiceError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, order, h.log)
}

// AddItem handles POST /api/rooms/{room}/items
func (h *RoomHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	room, err := roomNumber(r)
	if err != nil {
		WriteServiceError(w, r, err, h.log)
		return
	}

	var req addItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		writeDecodeError(w, r, err, h.log)
		return
	}

	order, err := h.rooms.AddItem(r.Context(), room, req.ProductID)
	if err != nil {
		WriteServiceError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, order, h.log)
}

// RemoveItem handles DELETE /api/rooms/{room}/items/{productId}
// Removing something that is not on the bill returns the unchanged bill.
func (h *RoomHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	room, err := roomNumber(r)
	if err != nil {
		WriteServiceError(w, r, err, h.log)
		return
	}

	productID, err := pathInt64(r, "productId")
	if err != nil {
		WriteServiceError(w, r, err, h.log)
		return
	}

	order, err := h.rooms.RemoveItem(r.Context(), room, productID)
	if err != nil {
		WriteServiceError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, order, h.log)
}

// ClearRoom handles DELETE /api/rooms/{room}
func (h *RoomHandler) ClearRoom(w http.ResponseWriter, r *http.Request) {
	room, err := roomNumber(r)
	if err != nil {
		WriteServiceError(w, r, err, h.log)
		return
	}

	if err := h.rooms.ClearRoom(r.Context(), room); err != nil {
		WriteServiceError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetBill handles GET /api/rooms/{room}/bill
func (h *RoomHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	room, err := roomNumber(r)
	if err != nil {
		WriteServiceError(w, r, err, h.log)
		return
	}

	bill, err := h.rooms.Bill(r.Context(), room)
	if err != nil {
		WriteServiceError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, bill, h.log)
}

// PrintBill handles POST /api/rooms/{room}/bill/print
func (h *RoomHandler) PrintBill(w http.ResponseWriter, r *http.Request) {
	room, err := roomNumber(r)
	if err != nil {
		WriteServiceError(w, r, err, h.log)
		return
	}

	bill, err := h.rooms.PrintBill(r.Context(), room)
	if err != nil {
		WriteServiceError(w, r, err, h.log)
		return
	}

	logger.FromContext(r.Context(), h.log).InfoContext(r.Context(), "bill printed", "room", room, "bill_number", bill.Number)
	httputil.WriteJSON(w, http.StatusOK, bill, h.log)
}
