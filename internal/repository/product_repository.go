package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/room-orders/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	// Create stores p under a newly assigned id and returns the stored product
	Create(ctx context.Context, p models.Product) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

// InMemoryProductRepository implements ProductRepository with in-memory storage
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products map[int64]models.Product
	nextID   int64
}

// NewInMemoryProductRepository creates an empty in-memory product repository
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: make(map[int64]models.Product),
		nextID:   1,
	}
}

// NewSeededProductRepository creates an in-memory repository holding the default menu
func NewSeededProductRepository() *InMemoryProductRepository {
	r := NewInMemoryProductRepository()
	for _, p := range DefaultMenu() {
		r.products[p.ID] = p
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return r
}

// DefaultMenu is the starter catalog used when no catalog database is configured
func DefaultMenu() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Coffee", Price: decimal.RequireFromString("3.50"), Category: "Drinks"},
		{ID: 2, Name: "Tea", Price: decimal.RequireFromString("2.50"), Category: "Drinks"},
		{ID: 3, Name: "Sandwich", Price: decimal.RequireFromString("8.00"), Category: "Food"},
		{ID: 4, Name: "Salad", Price: decimal.RequireFromString("10.00"), Category: "Food"},
	}
}

// List returns all products
func (r *InMemoryProductRepository) List(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	return products, nil
}

// GetByID returns a product by its ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Create assigns the next free ID to p and stores it
func (r *InMemoryProductRepository) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = r.nextID
	r.nextID++
	r.products[p.ID] = p

	return &p, nil
}

// Delete removes a product by its ID
func (r *InMemoryProductRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[id]; !exists {
		return ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}
