package branch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gymhub/internal/adapters/storage"
	domain "gymhub/internal/domain/branch"
)

const selectColumns = `SELECT id, name, street, city, region, postal_code, country, phone, description, status,
	total_members, active_members, total_trainers, rating_average, rating_count FROM branch`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new BranchStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Branch by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Branch, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	b, err := scanBranch(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Branch{}, ErrNotFound
	}
	return b, err
}

// Save persists a Branch.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, b domain.Branch) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO branch (id, name, street, city, region, postal_code, country, phone, description, status,
		total_members, active_members, total_trainers, rating_average, rating_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, street=excluded.street, city=excluded.city,
		region=excluded.region, postal_code=excluded.postal_code, country=excluded.country, phone=excluded.phone,
		description=excluded.description, status=excluded.status, total_members=excluded.total_members,
		active_members=excluded.active_members, total_trainers=excluded.total_trainers,
		rating_average=excluded.rating_average, rating_count=excluded.rating_count`,
		b.ID, b.Name, b.Address.Street, b.Address.City, b.Address.Region, b.Address.PostalCode, b.Address.Country,
		b.Phone, b.Description, b.Status,
		b.Stats.TotalMembers, b.Stats.ActiveMembers, b.Stats.TotalTrainers,
		b.Rating.Average, b.Rating.Count,
	)
	if err != nil {
		return fmt.Errorf("save branch %s: %w", b.ID, err)
	}
	return nil
}

// List returns the whole catalog ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Branch, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()

	var results []domain.Branch
	for rows.Next() {
		b, err := scanBranch(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, rows.Err()
}

// Count returns the number of branches.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM branch").Scan(&count)
	return count, err
}

func scanBranch(scan func(dest ...interface{}) error) (domain.Branch, error) {
	var b domain.Branch
	err := scan(
		&b.ID, &b.Name,
		&b.Address.Street, &b.Address.City, &b.Address.Region, &b.Address.PostalCode, &b.Address.Country,
		&b.Phone, &b.Description, &b.Status,
		&b.Stats.TotalMembers, &b.Stats.ActiveMembers, &b.Stats.TotalTrainers,
		&b.Rating.Average, &b.Rating.Count,
	)
	return b, err
}
