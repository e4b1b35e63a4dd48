package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/wiscflow/config"
	"github.com/gewnthar/wiscflow/database"
	"github.com/gewnthar/wiscflow/models"
)

type fakeRunner struct {
	started chan struct{}
	release chan struct{}
	got     []models.Stage
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, stages ...models.Stage) (models.PipelineReport, error) {
	f.got = stages
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	if f.err != nil {
		return models.PipelineReport{}, f.err
	}
	return models.PipelineReport{RunID: "run-1", Stages: stages}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	router := NewRouter(NewAdminHandler(&fakeRunner{}, fakePinger{}, nil), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"ingestion backend is healthy"}`, rec.Body.String())

	router = NewRouter(NewAdminHandler(&fakeRunner{}, fakePinger{err: errors.New("down")}, nil), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRunStage(t *testing.T) {
	runner := &fakeRunner{}
	router := NewRouter(NewAdminHandler(runner, fakePinger{}, nil), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/run/link", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "link", body.Stage)
	assert.Equal(t, []models.Stage{models.StageLink}, body.Report.Stages)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/run/all", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.Stage{models.StageScrape, models.StageGrades, models.StageLink}, runner.got)
}

func TestRunRejectsUnknownStageAndGet(t *testing.T) {
	router := NewRouter(NewAdminHandler(&fakeRunner{}, fakePinger{}, nil), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/run/deploy", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/run/scrape", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRunFailureIsReported(t *testing.T) {
	router := NewRouter(NewAdminHandler(&fakeRunner{err: config.ErrMissingCredential}, fakePinger{}, nil), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/run/grades", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "MADGRADES_API_TOKEN")
}

func TestConcurrentRunIsRejected(t *testing.T) {
	runner := &fakeRunner{started: make(chan struct{}), release: make(chan struct{})}
	router := NewRouter(NewAdminHandler(runner, fakePinger{}, nil), nil)

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/admin/run/scrape", nil))
	}()
	<-runner.started

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/admin/run/link", nil))
	assert.Equal(t, http.StatusConflict, second.Code)

	close(runner.release)
	<-done
	assert.Equal(t, http.StatusOK, first.Code)
}

func TestGetCourse(t *testing.T) {
	ctx := context.Background()
	store, err := database.Open(ctx, config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate(ctx))

	schoolID, err := store.UpsertSchool(ctx, "Letters & Science, College of")
	require.NoError(t, err)
	course := models.ParsedCourse{
		Code:        "COMP SCI 577",
		Name:        "Introduction to Algorithms",
		Description: "Basic paradigms for the design and analysis of efficient algorithms.",
		Credits:     4,
		SchoolName:  "Letters & Science, College of",
		Level:       models.LevelAdvanced,
	}
	_, err = store.UpsertCourse(ctx, course, schoolID)
	require.NoError(t, err)

	router := NewRouter(NewAdminHandler(&fakeRunner{}, store, nil), NewCourseHandler(store, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses/comp%20sci%20577", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.CourseDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "COMP SCI 577", body.Course.Code)
	assert.Empty(t, body.Prerequisites)
	assert.Nil(t, body.Course.AvgGPA)
	assert.NotContains(t, rec.Body.String(), "0001-01-01")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses/MATH%20999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
