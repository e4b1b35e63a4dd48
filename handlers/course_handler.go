// handlers/course_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gewnthar/wiscflow/database"
	"github.com/gewnthar/wiscflow/logger"
	"github.com/gewnthar/wiscflow/models"
	"github.com/gewnthar/wiscflow/utils"
)

// CourseReader is the read side of the store used by the course endpoint.
type CourseReader interface {
	GetCourseByCode(ctx context.Context, code string) (models.Course, error)
	ListPrerequisiteCodes(ctx context.Context, courseID string) ([]string, error)
	ListGradeDistributions(ctx context.Context, courseID string) ([]models.GradeDistribution, error)
}

type CourseHandler struct {
	store CourseReader
	log   *logger.Logger
}

func NewCourseHandler(store CourseReader, log *logger.Logger) *CourseHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CourseHandler{store: store, log: log}
}

// Get handles GET /api/courses/{code}. The code is normalized, so
// "comp sci 577" finds "COMP SCI 577".
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := utils.NormalizeCourseCode(r.PathValue("code"))
	if code == "" {
		respondWithError(w, h.log, http.StatusBadRequest, "Missing course code")
		return
	}

	course, err := h.store.GetCourseByCode(r.Context(), code)
	if errors.Is(err, database.ErrCourseNotFound) {
		respondWithError(w, h.log, http.StatusNotFound, "Course "+code+" not found")
		return
	}
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, "Failed to load course")
		return
	}

	prereqs, err := h.store.ListPrerequisiteCodes(r.Context(), course.ID)
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, "Failed to load prerequisites")
		return
	}
	grades, err := h.store.ListGradeDistributions(r.Context(), course.ID)
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, "Failed to load grades")
		return
	}
	if prereqs == nil {
		prereqs = []string{}
	}
	if grades == nil {
		grades = []models.GradeDistribution{}
	}

	respondWithJSON(w, http.StatusOK, models.CourseDetailResponse{
		Course:        course,
		Prerequisites: prereqs,
		Grades:        grades,
	})
}
