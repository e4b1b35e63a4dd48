// database/school_store.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gewnthar/wiscflow/models"
)

// UpsertSchool returns the id of the school with the given name, creating it if needed.
func (s *Store) UpsertSchool(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf(`
		INSERT INTO schools (id, name, created_at, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		%s`, s.dialect.upsert([]string{"name"}, nil))

	if _, err := s.DB.ExecContext(ctx, query, uuid.NewString(), name); err != nil {
		return "", fmt.Errorf("failed to upsert school %q: %w", name, err)
	}

	var id string
	err := s.DB.QueryRowContext(ctx, `SELECT id FROM schools WHERE name = ?`, name).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to read back school %q: %w", name, err)
	}
	return id, nil
}

// ListSchools returns all schools ordered by name.
func (s *Store) ListSchools(ctx context.Context) ([]models.School, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name FROM schools ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schools: %w", err)
	}
	defer rows.Close()

	var schools []models.School
	for rows.Next() {
		var sc models.School
		if err := rows.Scan(&sc.ID, &sc.Name); err != nil {
			return nil, fmt.Errorf("failed to scan school row: %w", err)
		}
		schools = append(schools, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school rows: %w", err)
	}
	return schools, nil
}

// CountSchools returns the number of school rows.
func (s *Store) CountSchools(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM schools`)
}

func (s *Store) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, query).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return n, nil
}
