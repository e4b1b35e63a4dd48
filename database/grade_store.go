// database/grade_store.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gewnthar/wiscflow/models"
)

// UpsertGradeDistribution writes one (course, term) row, replacing counts on conflict.
func (s *Store) UpsertGradeDistribution(ctx context.Context, d models.GradeDistribution) error {
	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}
	query := fmt.Sprintf(`
		INSERT INTO grade_distributions (
			id, course_id, term,
			a_count, ab_count, b_count, bc_count, c_count, d_count, f_count,
			total_graded, avg_gpa, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		%s`, s.dialect.upsert([]string{"course_id", "term"}, []string{
		"a_count", "ab_count", "b_count", "bc_count", "c_count", "d_count", "f_count",
		"total_graded", "avg_gpa",
	}))

	_, err := s.DB.ExecContext(ctx, query,
		id, d.CourseID, d.Term,
		d.A, d.AB, d.B, d.BC, d.C, d.D, d.F,
		d.TotalGraded, d.AvgGPA,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert grades for course %s term %q: %w", d.CourseID, d.Term, err)
	}
	return nil
}

// ListGradeDistributions returns a course's distributions ordered by term.
func (s *Store) ListGradeDistributions(ctx context.Context, courseID string) ([]models.GradeDistribution, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, course_id, term,
		       a_count, ab_count, b_count, bc_count, c_count, d_count, f_count,
		       total_graded, avg_gpa
		FROM grade_distributions
		WHERE course_id = ?
		ORDER BY term`, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grade distributions: %w", err)
	}
	defer rows.Close()

	var out []models.GradeDistribution
	for rows.Next() {
		var d models.GradeDistribution
		if err := rows.Scan(&d.ID, &d.CourseID, &d.Term,
			&d.A, &d.AB, &d.B, &d.BC, &d.C, &d.D, &d.F,
			&d.TotalGraded, &d.AvgGPA); err != nil {
			return nil, fmt.Errorf("failed to scan grade distribution: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grade distributions: %w", err)
	}
	return out, nil
}

// ListGradeWeights returns, per course id, the (total, gpa) pairs of its distributions.
// Courses without distributions are absent from the map.
func (s *Store) ListGradeWeights(ctx context.Context) (map[string][]models.GradeWeight, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT course_id, total_graded, avg_gpa FROM grade_distributions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query grade weights: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.GradeWeight)
	for rows.Next() {
		var (
			courseID string
			w        models.GradeWeight
		)
		if err := rows.Scan(&courseID, &w.TotalGraded, &w.AvgGPA); err != nil {
			return nil, fmt.Errorf("failed to scan grade weight: %w", err)
		}
		out[courseID] = append(out[courseID], w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grade weights: %w", err)
	}
	return out, nil
}

// CountGradeDistributions returns the number of distribution rows.
func (s *Store) CountGradeDistributions(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM grade_distributions`)
}

// CountCoursesWithGrades returns the number of courses with at least one distribution.
func (s *Store) CountCoursesWithGrades(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(DISTINCT course_id) FROM grade_distributions`)
}
