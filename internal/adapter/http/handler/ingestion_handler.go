package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chronos-erp/flowledger/internal/adapter/http/dto"
	"github.com/chronos-erp/flowledger/internal/domain"
	"github.com/chronos-erp/flowledger/internal/ingest"
)

// IngestionService defines the behavior needed by IngestionHandler.
type IngestionService interface {
	Run(ctx context.Context, input ingest.RunInput) (*domain.MigrationJob, error)
}

// JobReader reads persisted migration job summaries.
type JobReader interface {
	GetByID(ctx context.Context, id string) (*domain.MigrationJob, error)
	List(ctx context.Context, limit, offset int) ([]*domain.MigrationJob, error)
}

// IngestionHandler handles ingestion-related HTTP requests.
type IngestionHandler struct {
	runner IngestionService
	jobs   JobReader
}

// NewIngestionHandler creates a new IngestionHandler.
func NewIngestionHandler(runner IngestionService, jobs JobReader) *IngestionHandler {
	return &IngestionHandler{runner: runner, jobs: jobs}
}

// Create runs a migration job synchronously and returns its summary.
func (h *IngestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.IngestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.Grid) == 0 {
		writeError(w, http.StatusBadRequest, "missing grid", "")
		return
	}

	job, err := h.runner.Run(r.Context(), req.ToRunInput())
	if err != nil && job == nil {
		writeError(w, mapDomainError(err), "ingestion failed", err.Error())
		return
	}

	// A failed or partial run still produced a summary worth returning.
	status := http.StatusCreated
	if job.Status != domain.JobSuccess {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, dto.JobFromDomain(job))
}

// Get retrieves a job summary by ID.
func (h *IngestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing job ID", "")
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get job", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.JobFromDomain(job))
}

// List lists job summaries.
func (h *IngestionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	jobs, err := h.jobs.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list jobs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListJobsResponse{
		Jobs:  dto.JobsFromDomain(jobs),
		Total: int64(len(jobs)),
	})
}
