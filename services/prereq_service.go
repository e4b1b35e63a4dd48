// services/prereq_service.go
package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gewnthar/wiscflow/logger"
	"github.com/gewnthar/wiscflow/models"
	"github.com/gewnthar/wiscflow/utils"
)

// PrereqStore is what prerequisite linking reads and writes.
type PrereqStore interface {
	ListCoursesWithPrereqText(ctx context.Context) ([]models.CoursePrereqText, error)
	FindCoursesByCodes(ctx context.Context, codes []string) ([]models.CourseRef, error)
	ConnectPrerequisites(ctx context.Context, courseID string, prereqIDs []string) (int, error)
	CountCoursesWithPrerequisites(ctx context.Context) (int, error)
}

// PrereqService turns free-text requisites into course -> prerequisite edges.
// It only adds edges; links no longer named by the text are left in place.
type PrereqService struct {
	store PrereqStore
	log   *logger.Logger
}

// NewPrereqService returns the link stage.
func NewPrereqService(store PrereqStore, log *logger.Logger) *PrereqService {
	if log == nil {
		log = logger.Nop()
	}
	return &PrereqService{store: store, log: log.With("stage", models.StageLink)}
}

// Link resolves every stored prerequisite text into edges. Codes with no
// matching course are reported in NotFoundCodes, sorted.
func (s *PrereqService) Link(ctx context.Context) (models.LinkReport, error) {
	start := time.Now()
	report := models.LinkReport{RunID: uuid.NewString()}

	courses, err := s.store.ListCoursesWithPrereqText(ctx)
	if err != nil {
		return report, err
	}
	report.CoursesScanned = len(courses)
	s.log.Info("linking prerequisites", "run_id", report.RunID, "courses", len(courses))

	notFound := make(map[string]struct{})
	for _, course := range courses {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		codes := utils.ExtractCourseCodesFromPrereqText(course.PrerequisiteText)
		if len(codes) == 0 {
			report.CoursesSkipped++
			continue
		}

		found, err := s.store.FindCoursesByCodes(ctx, codes)
		if err != nil {
			s.log.Warn("error resolving prerequisite codes", "code", course.Code, "error", err)
			report.Errors = append(report.Errors, itemError(models.StageLink, course.Code, models.KindPersist, err))
			continue
		}

		foundCodes := make(map[string]struct{}, len(found))
		ids := make([]string, 0, len(found))
		for _, f := range found {
			foundCodes[f.Code] = struct{}{}
			ids = append(ids, f.ID)
		}
		for _, code := range codes {
			if _, ok := foundCodes[code]; !ok {
				notFound[code] = struct{}{}
			}
		}

		if len(ids) == 0 {
			report.CoursesSkipped++
			continue
		}

		written, err := s.store.ConnectPrerequisites(ctx, course.ID, ids)
		if err != nil {
			s.log.Warn("error linking prerequisites", "code", course.Code, "error", err)
			report.Errors = append(report.Errors, itemError(models.StageLink, course.Code, models.KindPersist, err))
			continue
		}
		report.CoursesLinked++
		report.EdgesWritten += written
		s.log.Debug("linked prerequisites", "code", course.Code, "count", len(ids), "new_edges", written)
	}

	report.NotFoundCodes = make([]string, 0, len(notFound))
	for code := range notFound {
		report.NotFoundCodes = append(report.NotFoundCodes, code)
	}
	sort.Strings(report.NotFoundCodes)

	if n, err := s.store.CountCoursesWithPrerequisites(ctx); err != nil {
		s.log.Warn("could not count linked courses", "error", err)
	} else {
		report.CoursesWithLinks = n
	}

	report.Duration = time.Since(start)
	s.log.Info("prerequisite linking complete",
		"linked", report.CoursesLinked,
		"skipped", report.CoursesSkipped,
		"not_found", len(report.NotFoundCodes),
		"courses_with_links", report.CoursesWithLinks,
	)
	return report, nil
}
