package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidProduct is returned when a product snapshot cannot be billed
var ErrInvalidProduct = errors.New("invalid product")

// Product is a catalog item that can be added to a room's bill.
// Price is kept as an exact decimal; display rounding is left to callers.
type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

// Validate reports whether p is a usable snapshot for billing
func (p Product) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: missing id", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: negative price %s for product %d", ErrInvalidProduct, p.Price, p.ID)
	}
	return nil
}
