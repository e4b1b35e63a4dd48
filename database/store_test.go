package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/wiscflow/config"
	"github.com/gewnthar/wiscflow/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := Open(ctx, config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(ctx))
	return store
}

func strPtr(s string) *string { return &s }

func sampleCourse(code string) models.ParsedCourse {
	return models.ParsedCourse{
		Code:             code,
		Name:             "Introduction to Algorithms",
		Description:      "Basic paradigms for the design and analysis of efficient algorithms.",
		Credits:          4,
		SchoolName:       "Letters & Science, College of",
		PrerequisiteText: strPtr("COMP SCI 400."),
		Breadths:         []string{"Natural Science"},
		GenEds:           nil,
		Level:            models.LevelAdvanced,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestUpsertSchoolReturnsStableID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertSchool(ctx, "Engineering, College of")
	require.NoError(t, err)
	second, err := store.UpsertSchool(ctx, "Engineering, College of")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	n, err := store.CountSchools(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpsertCourseUpdatesInPlace(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	schoolID, err := store.UpsertSchool(ctx, "Letters & Science, College of")
	require.NoError(t, err)

	c := sampleCourse("COMP SCI 577")
	id1, err := store.UpsertCourse(ctx, c, schoolID)
	require.NoError(t, err)

	c.Credits = 3
	c.PrerequisiteText = nil
	c.LastOffered = strPtr("Fall 2024")
	id2, err := store.UpsertCourse(ctx, c, schoolID)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	n, err := store.CountCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.GetCourseByCode(ctx, "COMP SCI 577")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Credits)
	assert.Nil(t, got.PrerequisiteText)
	require.NotNil(t, got.LastOffered)
	assert.Equal(t, "Fall 2024", *got.LastOffered)
	assert.Equal(t, []string{"Natural Science"}, got.Breadths)
	assert.Equal(t, []string{}, got.GenEds)
	assert.Equal(t, models.LevelAdvanced, got.Level)
	assert.Nil(t, got.AvgGPA)
}

func TestGetCourseByCodeNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetCourseByCode(context.Background(), "NOPE 101")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestGradeDistributionUpsertAndWeights(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	schoolID, err := store.UpsertSchool(ctx, "Letters & Science, College of")
	require.NoError(t, err)
	courseID, err := store.UpsertCourse(ctx, sampleCourse("COMP SCI 577"), schoolID)
	require.NoError(t, err)

	d := models.GradeDistribution{
		CourseID:     courseID,
		Term:         "Fall 2023",
		GradeBuckets: models.GradeBuckets{A: 10},
		TotalGraded:  10,
		AvgGPA:       4.0,
	}
	require.NoError(t, store.UpsertGradeDistribution(ctx, d))

	d.GradeBuckets = models.GradeBuckets{A: 5, F: 5}
	d.AvgGPA = 2.0
	require.NoError(t, store.UpsertGradeDistribution(ctx, d))

	rows, err := store.ListGradeDistributions(ctx, courseID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].F)
	assert.Equal(t, 2.0, rows[0].AvgGPA)

	weights, err := store.ListGradeWeights(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.GradeWeight{{TotalGraded: 10, AvgGPA: 2.0}}, weights[courseID])

	n, err := store.CountGradeDistributions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = store.CountCoursesWithGrades(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpdateCourseAvgGPANullable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	schoolID, err := store.UpsertSchool(ctx, "Letters & Science, College of")
	require.NoError(t, err)
	courseID, err := store.UpsertCourse(ctx, sampleCourse("MATH 222"), schoolID)
	require.NoError(t, err)

	avg := 2.67
	require.NoError(t, store.UpdateCourseAvgGPA(ctx, courseID, &avg))
	got, err := store.GetCourseByCode(ctx, "MATH 222")
	require.NoError(t, err)
	require.NotNil(t, got.AvgGPA)
	assert.Equal(t, 2.67, *got.AvgGPA)

	require.NoError(t, store.UpdateCourseAvgGPA(ctx, courseID, nil))
	got, err = store.GetCourseByCode(ctx, "MATH 222")
	require.NoError(t, err)
	assert.Nil(t, got.AvgGPA)
}

func TestFindCoursesByCodesExactMatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	schoolID, err := store.UpsertSchool(ctx, "Letters & Science, College of")
	require.NoError(t, err)
	for _, code := range []string{"COMP SCI 400", "COMP SCI 577", "MATH 222"} {
		_, err := store.UpsertCourse(ctx, sampleCourse(code), schoolID)
		require.NoError(t, err)
	}

	refs, err := store.FindCoursesByCodes(ctx, []string{"COMP SCI 400", "comp sci 577", "MATH 999"})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "COMP SCI 400", refs[0].Code)

	refs, err = store.FindCoursesByCodes(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestConnectPrerequisitesAddsOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	schoolID, err := store.UpsertSchool(ctx, "Letters & Science, College of")
	require.NoError(t, err)
	target, err := store.UpsertCourse(ctx, sampleCourse("COMP SCI 577"), schoolID)
	require.NoError(t, err)
	p1, err := store.UpsertCourse(ctx, sampleCourse("COMP SCI 400"), schoolID)
	require.NoError(t, err)
	p2, err := store.UpsertCourse(ctx, sampleCourse("MATH 240"), schoolID)
	require.NoError(t, err)

	n, err := store.ConnectPrerequisites(ctx, target, []string{p1})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.ConnectPrerequisites(ctx, target, []string{p1, p2})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "existing edge is not rewritten")

	codes, err := store.ListPrerequisiteCodes(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, []string{"COMP SCI 400", "MATH 240"}, codes)

	linked, err := store.CountCoursesWithPrerequisites(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, linked)
}

func TestDialectClauses(t *testing.T) {
	assert.Equal(t,
		"ON DUPLICATE KEY UPDATE name = VALUES(name), updated_at = CURRENT_TIMESTAMP",
		mysqlDialect{}.upsert([]string{"code"}, []string{"name"}))
	assert.Equal(t,
		"ON DUPLICATE KEY UPDATE name = name",
		mysqlDialect{}.upsert([]string{"name"}, nil))
	assert.Equal(t,
		"ON CONFLICT(course_id, term) DO UPDATE SET avg_gpa = excluded.avg_gpa, updated_at = CURRENT_TIMESTAMP",
		sqliteDialect{}.upsert([]string{"course_id", "term"}, []string{"avg_gpa"}))
	assert.Equal(t, "ON CONFLICT(name) DO NOTHING", sqliteDialect{}.upsert([]string{"name"}, nil))

	_, err := dialectFor("postgres")
	assert.Error(t, err)
}
