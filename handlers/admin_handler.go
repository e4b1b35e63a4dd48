// handlers/admin_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gewnthar/wiscflow/logger"
	"github.com/gewnthar/wiscflow/models"
	"github.com/gewnthar/wiscflow/services"
)

// Runner runs pipeline stages. *services.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, stages ...models.Stage) (models.PipelineReport, error)
}

// Pinger checks the store connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AdminHandler serves health and batch-trigger endpoints. At most one run is
// in flight; a second request gets 409.
type AdminHandler struct {
	runner  Runner
	db      Pinger
	running atomic.Bool
	log     *logger.Logger
}

func NewAdminHandler(runner Runner, db Pinger, log *logger.Logger) *AdminHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminHandler{runner: runner, db: db, log: log}
}

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, log *logger.Logger, code int, message string) {
	log.Warn("api error", "status", code, "message", message)
	respondWithJSON(w, code, models.ErrorResponse{Error: message})
}

// Health handles GET /api/health.
func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.log.Error("health check failed", "error", err)
		respondWithJSON(w, http.StatusInternalServerError, models.HealthResponse{Status: "error", Message: "database connection error"})
		return
	}
	respondWithJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Message: "ingestion backend is healthy"})
}

// Run handles POST /api/admin/run/{stage} where stage is scrape, grades, link or all.
// The run is synchronous and its report is the response body.
func (h *AdminHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.PathValue("stage"))
	stages, err := services.ParseStages(name)
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, fmt.Sprintf("Invalid stage '%s'. Use 'scrape', 'grades', 'link', or 'all'.", name))
		return
	}

	if !h.running.CompareAndSwap(false, true) {
		respondWithError(w, h.log, http.StatusConflict, "A pipeline run is already in progress")
		return
	}
	defer h.running.Store(false)

	h.log.Info("admin run requested", "stage", name)
	report, err := h.runner.Run(r.Context(), stages...)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) {
			code = http.StatusServiceUnavailable
		}
		respondWithError(w, h.log, code, fmt.Sprintf("Failed to run %s: %v", name, err))
		return
	}
	respondWithJSON(w, http.StatusOK, models.RunResponse{Stage: name, Report: report})
}
