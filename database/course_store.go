// database/course_store.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gewnthar/wiscflow/models"
)

// ErrCourseNotFound is returned by GetCourseByCode for an unknown code.
var ErrCourseNotFound = errors.New("course not found")

// UpsertCourse inserts or updates the course keyed by its code and returns its id.
// avg_gpa is left untouched; only the grades aggregation writes it.
func (s *Store) UpsertCourse(ctx context.Context, c models.ParsedCourse, schoolID string) (string, error) {
	breadths, err := encodeTags(c.Breadths)
	if err != nil {
		return "", err
	}
	genEds, err := encodeTags(c.GenEds)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`
		INSERT INTO courses (
			id, code, name, description, credits, school_id,
			prerequisite_text, breadths, gen_eds, level, last_offered,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		%s`, s.dialect.upsert([]string{"code"}, []string{
		"name", "description", "credits", "school_id",
		"prerequisite_text", "breadths", "gen_eds", "level", "last_offered",
	}))

	_, err = s.DB.ExecContext(ctx, query,
		uuid.NewString(), c.Code, c.Name, c.Description, c.Credits, schoolID,
		nullString(c.PrerequisiteText), breadths, genEds, string(c.Level), nullString(c.LastOffered),
	)
	if err != nil {
		return "", fmt.Errorf("failed to upsert course %s: %w", c.Code, err)
	}

	var id string
	if err := s.DB.QueryRowContext(ctx, `SELECT id FROM courses WHERE code = ?`, c.Code).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to read back course %s: %w", c.Code, err)
	}
	return id, nil
}

// GetCourseByCode loads one course. Returns ErrCourseNotFound when absent.
func (s *Store) GetCourseByCode(ctx context.Context, code string) (models.Course, error) {
	var (
		c                       models.Course
		prereq, lastOffered     sql.NullString
		breadths, genEds, level string
		avg                     sql.NullFloat64
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, code, name, description, credits, school_id,
		       prerequisite_text, breadths, gen_eds, level, last_offered, avg_gpa
		FROM courses WHERE code = ?`, code).Scan(
		&c.ID, &c.Code, &c.Name, &c.Description, &c.Credits, &c.SchoolID,
		&prereq, &breadths, &genEds, &level, &lastOffered, &avg,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Course{}, fmt.Errorf("%s: %w", code, ErrCourseNotFound)
	}
	if err != nil {
		return models.Course{}, fmt.Errorf("failed to query course %s: %w", code, err)
	}

	if prereq.Valid {
		c.PrerequisiteText = &prereq.String
	}
	if lastOffered.Valid {
		c.LastOffered = &lastOffered.String
	}
	if avg.Valid {
		c.AvgGPA = &avg.Float64
	}
	c.Level = models.Level(level)
	if c.Breadths, err = decodeTags(breadths); err != nil {
		return models.Course{}, err
	}
	if c.GenEds, err = decodeTags(genEds); err != nil {
		return models.Course{}, err
	}
	return c, nil
}

// ListCourseRefs returns every course's id and code, ordered by code.
func (s *Store) ListCourseRefs(ctx context.Context) ([]models.CourseRef, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, code FROM courses ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var refs []models.CourseRef
	for rows.Next() {
		var r models.CourseRef
		if err := rows.Scan(&r.ID, &r.Code); err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}
	return refs, nil
}

// ListCoursesWithPrereqText returns courses whose prerequisite text is set.
func (s *Store) ListCoursesWithPrereqText(ctx context.Context) ([]models.CoursePrereqText, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, code, prerequisite_text
		FROM courses
		WHERE prerequisite_text IS NOT NULL
		ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query prerequisite text: %w", err)
	}
	defer rows.Close()

	var out []models.CoursePrereqText
	for rows.Next() {
		var c models.CoursePrereqText
		if err := rows.Scan(&c.ID, &c.Code, &c.PrerequisiteText); err != nil {
			return nil, fmt.Errorf("failed to scan prerequisite row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prerequisite rows: %w", err)
	}
	return out, nil
}

// FindCoursesByCodes resolves codes by exact, case-sensitive match.
// Unknown codes are simply absent from the result.
func (s *Store) FindCoursesByCodes(ctx context.Context, codes []string) ([]models.CourseRef, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(codes)), ", ")
	args := make([]interface{}, len(codes))
	wanted := make(map[string]struct{}, len(codes))
	for i, c := range codes {
		args[i] = c
		wanted[c] = struct{}{}
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, code FROM courses WHERE code IN (`+placeholders+`) ORDER BY code`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up course codes: %w", err)
	}
	defer rows.Close()

	var refs []models.CourseRef
	for rows.Next() {
		var r models.CourseRef
		if err := rows.Scan(&r.ID, &r.Code); err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}
		// Collations may compare case-insensitively; keep exact matches only.
		if _, ok := wanted[r.Code]; ok {
			refs = append(refs, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}
	return refs, nil
}

// UpdateCourseAvgGPA sets the rolling average. A nil avg stores NULL.
func (s *Store) UpdateCourseAvgGPA(ctx context.Context, courseID string, avg *float64) error {
	var v sql.NullFloat64
	if avg != nil {
		v = sql.NullFloat64{Float64: *avg, Valid: true}
	}
	_, err := s.DB.ExecContext(ctx,
		`UPDATE courses SET avg_gpa = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, v, courseID)
	if err != nil {
		return fmt.Errorf("failed to update avg gpa for course %s: %w", courseID, err)
	}
	return nil
}

// CountCourses returns the number of course rows.
func (s *Store) CountCourses(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM courses`)
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	tags := []string{}
	if raw == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags %q: %w", raw, err)
	}
	return tags, nil
}
