package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/room-orders/internal/models"
	"github.com/Lixing-Zhang/room-orders/internal/repository"
	"github.com/Lixing-Zhang/room-orders/pkg/apperrors"
)

type failingRepo struct {
	repository.ProductRepository
	err error
}

func (r failingRepo) List(ctx context.Context) ([]models.Product, error) {
	return nil, r.err
}

func productNames(products []models.Product) []string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return names
}

func TestProductService_ListProducts(t *testing.T) {
	svc := NewProductService(repository.NewSeededProductRepository())

	tests := []struct {
		name   string
		filter ProductFilter
		want   []string
	}{
		{"everything sorted by name", ProductFilter{}, []string{"Coffee", "Salad", "Sandwich", "Tea"}},
		{"category", ProductFilter{Category: "Food"}, []string{"Salad", "Sandwich"}},
		{"category is exact", ProductFilter{Category: "food"}, []string{}},
		{"query ignores case and spaces", ProductFilter{Query: "  TE "}, []string{"Tea"}},
		{"query substring", ProductFilter{Query: "ea"}, []string{"Tea"}},
		{"query and category", ProductFilter{Category: "Drinks", Query: "c"}, []string{"Coffee"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := svc.ListProducts(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, productNames(products))
		})
	}
}

func TestProductService_ListProducts_SameNameOrderedByID(t *testing.T) {
	repo := repository.NewInMemoryProductRepository()
	svc := NewProductService(repo)

	for _, price := range []string{"2", "1"} {
		_, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "Water", Price: decimal.RequireFromString(price), Category: "Drinks"})
		require.NoError(t, err)
	}

	products, err := svc.ListProducts(context.Background(), ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, int64(2), products[1].ID)
}

func TestProductService_ListProducts_RepoError(t *testing.T) {
	svc := NewProductService(failingRepo{err: errors.New("db closed")})

	_, err := svc.ListProducts(context.Background(), ProductFilter{})
	assert.EqualError(t, err, "db closed")

	_, err = svc.Categories(context.Background())
	assert.EqualError(t, err, "db closed")
}

func TestProductService_Categories(t *testing.T) {
	svc := NewProductService(repository.NewSeededProductRepository())

	categories, err := svc.Categories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Drinks", "Food"}, categories)
}

func TestProductService_CreateProduct(t *testing.T) {
	svc := NewProductService(repository.NewSeededProductRepository())

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:     "  Soup ",
		Price:    decimal.RequireFromString("6.75"),
		Category: " Food ",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	assert.Equal(t, "Soup", created.Name)
	assert.Equal(t, "Food", created.Category)

	got, err := svc.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("6.75")))
}

func TestProductService_CreateProduct_Invalid(t *testing.T) {
	svc := NewProductService(repository.NewSeededProductRepository())

	tests := []struct {
		name  string
		input CreateProductInput
	}{
		{"blank name", CreateProductInput{Name: " ", Price: decimal.NewFromInt(1)}},
		{"negative price", CreateProductInput{Name: "Soup", Price: decimal.NewFromInt(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tt.input)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestProductService_DeleteProduct(t *testing.T) {
	svc := NewProductService(repository.NewSeededProductRepository())

	require.NoError(t, svc.DeleteProduct(context.Background(), 1))

	_, err := svc.GetProduct(context.Background(), 1)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), 1), repository.ErrProductNotFound)
}
