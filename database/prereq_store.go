// database/prereq_store.go
package database

import (
	"context"
	"fmt"
)

// ConnectPrerequisites adds course -> prerequisite edges. Existing edges are kept
// and nothing is removed. Returns the number of edges newly written.
func (s *Store) ConnectPrerequisites(ctx context.Context, courseID string, prereqIDs []string) (int, error) {
	if len(prereqIDs) == 0 {
		return 0, nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin prerequisite transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, s.dialect.insertIgnore()+
		` course_prerequisites (course_id, prerequisite_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare prerequisite insert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, pid := range prereqIDs {
		res, err := stmt.ExecContext(ctx, courseID, pid)
		if err != nil {
			return 0, fmt.Errorf("failed to link %s -> %s: %w", courseID, pid, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			written += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prerequisites for %s: %w", courseID, err)
	}
	return written, nil
}

// ListPrerequisiteCodes returns the codes of a course's linked prerequisites, sorted.
func (s *Store) ListPrerequisiteCodes(ctx context.Context, courseID string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT c.code
		FROM course_prerequisites p
		JOIN courses c ON c.id = p.prerequisite_id
		WHERE p.course_id = ?
		ORDER BY c.code`, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query prerequisites: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan prerequisite code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prerequisite codes: %w", err)
	}
	return codes, nil
}

// CountCoursesWithPrerequisites returns the number of courses with at least one edge.
func (s *Store) CountCoursesWithPrerequisites(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(DISTINCT course_id) FROM course_prerequisites`)
}
