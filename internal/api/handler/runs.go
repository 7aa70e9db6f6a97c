package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fromscratch/blueprint/internal/api/response"
	"github.com/fromscratch/blueprint/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// listRunsCap bounds GET /api/v1/runs to keep the listing cheap.
const listRunsCap = 1000

// NewGetRunHandler returns the handler for GET /api/v1/runs/{runID}.
// Readers may observe a mid-flight run: status "running" with a partial
// content map is a valid response, never an error.
func NewGetRunHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID, err := uuid.Parse(chi.URLParam(r, "runID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "run id must be a UUID", nil)
			return
		}

		run, err := st.GetRun(r.Context(), runID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "RUN_NOT_FOUND", "Run not found", nil)
			return
		}
		if err != nil {
			slog.Error("get run failed", "run_id", runID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, map[string]any{
			"run_id":     run.ID,
			"project_id": run.ProjectID,
			"status":     run.Status,
			"created_at": run.CreatedAt,
			"updated_at": run.UpdatedAt,
			"content":    run.State.Content(),
		})
	}
}

// NewListRunsHandler returns the handler for GET /api/v1/runs, newest first.
func NewListRunsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := st.ListRuns(r.Context(), listRunsCap)
		if err != nil {
			slog.Error("list runs failed", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		out := make([]map[string]any, 0, len(runs))
		for _, run := range runs {
			out = append(out, map[string]any{
				"run_id":     run.ID,
				"project_id": run.ProjectID,
				"status":     run.Status,
				"created_at": run.CreatedAt,
				"updated_at": run.UpdatedAt,
			})
		}
		response.JSON(w, out)
	}
}
