// Package sqlite stores the product catalog in a SQLite database using the
// pure Go modernc.org/sqlite driver, so the binary builds without cgo.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/Lixing-Zhang/room-orders/internal/models"
	"github.com/Lixing-Zhang/room-orders/internal/repository"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite
const DriverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    price TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);
`

// ProductRepository implements repository.ProductRepository on SQLite.
// Prices are stored as decimal strings so they round-trip exactly.
type ProductRepository struct {
	db *sql.DB
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// Open opens (or creates) the catalog database at dsn and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, dsn string) (*ProductRepository, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	// SQLite has a single writer; one connection also keeps ":memory:" databases alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}

	return &ProductRepository{db: db}, nil
}

// Close closes the database connection
func (r *ProductRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection
func (r *ProductRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SeedIfEmpty inserts products when the catalog has no rows yet.
// It returns the number of rows inserted.
func (r *ProductRepository) SeedIfEmpty(ctx context.Context, products []models.Product) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, p := range products {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO products (name, price, category) VALUES (?, ?, ?)",
			p.Name, p.Price.String(), p.Category,
		); err != nil {
			return 0, fmt.Errorf("insert seed product %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return len(products), nil
}

// List returns all products ordered by name
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, price, category FROM products ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// GetByID returns a product by its ID
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, name, price, category FROM products WHERE id = ?", id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts p and returns it with the assigned ID
func (r *ProductRepository) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO products (name, price, category, created_at) VALUES (?, ?, ?, ?)",
		p.Name, p.Price.String(), p.Category, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read product id: %w", err)
	}

	p.ID = id
	return &p, nil
}

// Delete removes a product by its ID
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return repository.ErrProductNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*models.Product, error) {
	var (
		p     models.Product
		price string
	)
	if err := s.Scan(&p.ID, &p.Name, &price, &p.Category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price of product %d: %w", p.ID, err)
	}
	p.Price = d

	return &p, nil
}
