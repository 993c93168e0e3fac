package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gymhub/internal/adapters/storage"
	domain "gymhub/internal/domain/product"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ProductStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Product by its ID.
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, category, price_cents, stock FROM product WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents, &p.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	return p, err
}

// Save persists a Product.
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, p domain.Product) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO product (id, name, category, price_cents, stock) VALUES (?, ?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET name=excluded.name, category=excluded.category, price_cents=excluded.price_cents, stock=excluded.stock",
		p.ID, p.Name, p.Category, p.PriceCents, p.Stock)
	if err != nil {
		return fmt.Errorf("save product %s: %w", p.ID, err)
	}
	return nil
}

// List returns products ordered by name, optionally limited to one category.
func (s *SQLiteStore) List(ctx context.Context, category string) ([]domain.Product, error) {
	query := "SELECT id, name, category, price_cents, stock FROM product"
	var args []interface{}
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var results []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.PriceCents, &p.Stock); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// Count returns the number of products.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM product").Scan(&count)
	return count, err
}
