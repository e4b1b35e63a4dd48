// services/grades_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gewnthar/wiscflow/config"
	"github.com/gewnthar/wiscflow/fetch"
	"github.com/gewnthar/wiscflow/logger"
	"github.com/gewnthar/wiscflow/models"
	"github.com/gewnthar/wiscflow/utils"
)

// GradesSource returns a course's per-term grade records. A course the source
// does not know yields an error matching fetch.ErrNotFound.
type GradesSource interface {
	CourseGrades(ctx context.Context, subject, number string) ([]models.MadgradesTermGrades, error)
}

// GradesStore is what grades ingestion reads and writes.
type GradesStore interface {
	ListCourseRefs(ctx context.Context) ([]models.CourseRef, error)
	UpsertGradeDistribution(ctx context.Context, d models.GradeDistribution) error
	ListGradeWeights(ctx context.Context) (map[string][]models.GradeWeight, error)
	UpdateCourseAvgGPA(ctx context.Context, courseID string, avg *float64) error
	CountGradeDistributions(ctx context.Context) (int, error)
	CountCoursesWithGrades(ctx context.Context) (int, error)
}

type GradesService struct {
	cfg       config.GradesConfig
	source    GradesSource
	store     GradesStore
	queueOpts fetch.QueueOptions
	log       *logger.Logger
}

// NewGradesService wires the grades stage. Zero queue settings keep
// GradesQueueOptions.
func NewGradesService(cfg config.GradesConfig, source GradesSource, store GradesStore, log *logger.Logger) *GradesService {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 100
	}
	opts := fetch.GradesQueueOptions()
	if cfg.Fetch.Concurrency > 0 {
		opts.Concurrency = cfg.Fetch.Concurrency
	}
	if cfg.Fetch.IntervalCap > 0 {
		opts.IntervalCap = cfg.Fetch.IntervalCap
	}
	if cfg.Fetch.Interval > 0 {
		opts.Interval = cfg.Fetch.Interval
	}
	return &GradesService{
		cfg:       cfg,
		source:    source,
		store:     store,
		queueOpts: opts,
		log:       log.With("stage", models.StageGrades),
	}
}

// Ready fails with config.ErrMissingCredential when no API token is configured.
func (s *GradesService) Ready() error {
	if s.cfg.Token == "" {
		return config.ErrMissingCredential
	}
	return nil
}

type courseResult struct {
	processed   bool
	notFound    bool
	invalidCode bool
	apiError    bool
	inserted    int
	zeroSkipped int
	writeErrors int
	errors      []models.ItemError
}

// Ingest pulls grade distributions for every stored course, then recomputes
// course averages. Per-course failures are counted, never returned.
func (s *GradesService) Ingest(ctx context.Context) (models.GradesReport, error) {
	start := time.Now()
	report := models.GradesReport{RunID: uuid.NewString()}

	if err := s.Ready(); err != nil {
		return report, err
	}

	courses, err := s.store.ListCourseRefs(ctx)
	if err != nil {
		return report, err
	}
	report.CoursesTotal = len(courses)
	s.log.Info("starting grades ingestion", "run_id", report.RunID, "courses", len(courses))

	var (
		mu   sync.Mutex
		done int
	)
	q := fetch.NewQueue(ctx, s.queueOpts)
	for _, course := range courses {
		course := course
		q.Enqueue(func(ctx context.Context) error {
			res := s.processCourse(ctx, course)

			mu.Lock()
			defer mu.Unlock()
			if res.processed {
				report.CoursesProcessed++
			}
			if res.notFound {
				report.CoursesNotFound++
			}
			if res.invalidCode {
				report.InvalidCodes++
			}
			if res.apiError {
				report.APIErrors++
			}
			report.GradesInserted += res.inserted
			report.ZeroTermsSkipped += res.zeroSkipped
			report.WriteErrors += res.writeErrors
			report.Errors = append(report.Errors, res.errors...)

			done++
			if done%s.cfg.ProgressEvery == 0 {
				s.log.Info("progress", "done", done, "total", len(courses))
			}
			return nil
		})
	}
	if err := q.Drain(); err != nil {
		report.Duration = time.Since(start)
		return report, err
	}

	updated, cleared, err := s.RecomputeAverages(ctx)
	if err != nil {
		report.Duration = time.Since(start)
		return report, err
	}
	report.AveragesUpdated = updated
	report.AveragesCleared = cleared

	if n, err := s.store.CountGradeDistributions(ctx); err != nil {
		s.log.Warn("could not count grade distributions", "error", err)
	} else {
		report.TotalDistribution = n
	}
	if n, err := s.store.CountCoursesWithGrades(ctx); err != nil {
		s.log.Warn("could not count courses with grades", "error", err)
	} else {
		report.CoursesWithGrades = n
	}

	report.Duration = time.Since(start)
	s.log.Info("grades ingestion complete",
		"courses_processed", report.CoursesProcessed,
		"grades_inserted", report.GradesInserted,
		"not_found", report.CoursesNotFound,
		"api_errors", report.APIErrors,
		"duration", report.Duration.String(),
	)
	return report, nil
}

func (s *GradesService) processCourse(ctx context.Context, course models.CourseRef) courseResult {
	var res courseResult

	subject, number, ok := utils.SplitCourseCode(course.Code)
	if !ok {
		s.log.Warn("could not parse course code", "code", course.Code)
		res.invalidCode = true
		return res
	}

	grades, err := s.source.CourseGrades(ctx, utils.ToMadgradesSubject(subject), number)
	switch {
	case errors.Is(err, fetch.ErrNotFound):
		res.notFound = true
		return res
	case err != nil:
		s.log.Warn("grades API error", "code", course.Code, "error", err)
		res.apiError = true
		res.errors = append(res.errors, itemError(models.StageGrades, course.Code, models.KindFetch, err))
		return res
	case len(grades) == 0:
		res.notFound = true
		return res
	}

	for _, g := range grades {
		term := strings.TrimSpace(g.TermName)
		buckets := g.Buckets()
		if err := utils.ValidateGradeBuckets(buckets); err != nil {
			s.log.Warn("dropping invalid grade record", "code", course.Code, "term", term, "error", err)
			res.errors = append(res.errors, itemError(models.StageGrades, course.Code+" "+term, models.KindValidation, err))
			continue
		}
		total := buckets.Total()
		if total == 0 {
			res.zeroSkipped++
			continue
		}

		dist := models.GradeDistribution{
			CourseID:     course.ID,
			Term:         term,
			GradeBuckets: buckets,
			TotalGraded:  total,
			AvgGPA:       utils.CalculateGPA(buckets),
		}
		if err := s.store.UpsertGradeDistribution(ctx, dist); err != nil {
			s.log.Warn("error inserting grades", "code", course.Code, "term", term, "error", err)
			res.writeErrors++
			res.errors = append(res.errors, itemError(models.StageGrades, course.Code+" "+term, models.KindPersist, err))
			continue
		}
		res.inserted++
	}
	res.processed = true
	return res
}

// RecomputeAverages sets every course's avg_gpa to the student-weighted mean of
// its distributions. Courses without graded students are set to NULL.
func (s *GradesService) RecomputeAverages(ctx context.Context) (updated, cleared int, err error) {
	courses, err := s.store.ListCourseRefs(ctx)
	if err != nil {
		return 0, 0, err
	}
	weights, err := s.store.ListGradeWeights(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, c := range courses {
		avg, ok := utils.WeightedAverageGPA(weights[c.ID])
		var value *float64
		if ok {
			value = &avg
		}
		if err := s.store.UpdateCourseAvgGPA(ctx, c.ID, value); err != nil {
			s.log.Warn("could not update average gpa", "code", c.Code, "error", err)
			continue
		}
		if ok {
			updated++
		} else {
			cleared++
		}
	}
	s.log.Info("updated course average GPAs", "updated", updated, "cleared", cleared)
	return updated, cleared, nil
}
