package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/kitab-khata/internal/api/middleware"
	"github.com/dvloznov/kitab-khata/internal/jobs"
)

// JobsHandler handles export job endpoints.
type JobsHandler struct {
	store     jobs.JobStore
	publisher jobs.Publisher
	targets   TargetChecker
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, publisher jobs.Publisher, targets TargetChecker, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, publisher: publisher, targets: targets, log: log}
}

// EnqueueExport handles POST /api/exports
func (h *JobsHandler) EnqueueExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target jobs.ExportTarget `json:"target"`
		DryRun bool              `json:"dry_run"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Target.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "target must be one of bigquery, notion, gcs_backup")
		return
	}
	if h.targets == nil || !h.targets.Supports(req.Target) {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Export target "+string(req.Target)+" is not configured")
		return
	}

	job := &jobs.ExportJob{Target: req.Target, DryRun: req.DryRun}
	if err := h.publisher.PublishExport(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("target", string(req.Target)).Msg("Failed to enqueue export job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue export job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("target", string(job.Target)).
		Msg("Enqueued export job")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Target: jobs.ExportTarget(query.Get("target")),
		Status: jobs.JobStatus(query.Get("status")),
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(query.Get("offset")); err == nil {
		filter.Offset = offset
	}

	jobList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobList,
		"count": len(jobList),
	})
}
