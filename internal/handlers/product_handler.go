package handlers

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/room-orders/internal/service"
	"github.com/Lixing-Zhang/room-orders/pkg/httputil"
	"github.com/Lixing-Zhang/room-orders/pkg/logger"
	"github.com/Lixing-Zhang/room-orders/pkg/validator"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, log *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  log,
	}
}

type createProductRequest struct {
	Name     string           `json:"name" validate:"required,max=100"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
	Category string           `json:"category" validate:"required,max=50"`
}

// ListProducts handles GET /api/product
// Optional query parameters: category (exact match) and q (name search).
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := service.ProductFilter{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
	}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, products, h.logger)
}

// ListCategories handles GET /api/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, categories, h.logger)
}

// GetProduct handles GET /api/product/{productId}
// - 200: successful operation
// - 400: Invalid ID supplied
// - 404: Product not found
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "productId")
	if err != nil {
		logger.FromContext(r.Context(), h.logger).WarnContext(r.Context(), "invalid product ID", "error", err)
		WriteServiceError(w, r, err, h.logger)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, product, h.logger)
}

// CreateProduct handles POST /api/product
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		writeDecodeError(w, r, err, h.logger)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), service.CreateProductInput{
		Name:     req.Name,
		Price:    *req.Price,
		Category: req.Category,
	})
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	logger.FromContext(r.Context(), h.logger).InfoContext(r.Context(), "product created", "product_id", product.ID, "name", product.Name)
	httputil.WriteJSON(w, http.StatusCreated, product, h.logger)
}

// DeleteProduct handles DELETE /api/product/{productId}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "productId")
	if err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		WriteServiceError(w, r, err, h.logger)
		return
	}

	logger.FromContext(r.Context(), h.logger).InfoContext(r.Context(), "product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}
