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

// NewGetProjectHandler returns the handler for GET /api/v1/projects/{projectID}.
func NewGetProjectHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "project id must be a UUID", nil)
			return
		}

		project, err := st.GetProject(r.Context(), projectID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "PROJECT_NOT_FOUND", "Project not found", nil)
			return
		}
		if err != nil {
			slog.Error("get project failed", "project_id", projectID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, project)
	}
}
