package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fromscratch/blueprint/internal/api/response"
	"github.com/fromscratch/blueprint/internal/queue"
	"github.com/fromscratch/blueprint/internal/store"
	"github.com/fromscratch/blueprint/pkg/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// placeholderName is the project name used until the metadata stage renames it.
const placeholderName = "Generating..."

// Enqueuer pushes generation jobs onto the durable queue.
type Enqueuer interface {
	EnqueueGenerate(ctx context.Context, p queue.GeneratePayload) (string, error)
}

// NewGenerateHandler returns the handler for POST /api/v1/idea/generate.
// It decouples the request from execution: the response only promises that a
// run exists and a job is queued.
func NewGenerateHandler(st store.Store, q Enqueuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProjectID  *uuid.UUID `json:"project_id"`
			Idea       string     `json:"idea"`
			WebhookURL string     `json:"webhook_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Idea == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "idea is required", nil)
			return
		}

		var projectID uuid.UUID
		if req.ProjectID != nil {
			projectID = *req.ProjectID
		} else {
			project, err := st.CreateProject(r.Context(), placeholderName,
				"Project being generated from an idea. The name will be updated shortly.")
			if err != nil {
				slog.Error("auto-create project failed", "error", err)
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"Could not create a project for this idea", nil)
				return
			}
			projectID = project.ID
			createPlaceholders(r.Context(), st, projectID)
		}

		run, err := st.CreateRun(r.Context(), projectID)
		if err != nil {
			slog.Error("create run failed", "project_id", projectID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Could not create the run", nil)
			return
		}

		jobID, err := q.EnqueueGenerate(r.Context(), queue.GeneratePayload{
			RunID:      run.ID,
			ProjectID:  projectID,
			Idea:       req.Idea,
			WebhookURL: req.WebhookURL,
		})
		if err != nil {
			slog.Error("enqueue generate job failed", "run_id", run.ID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Could not queue the generation job", nil)
			return
		}

		response.Accepted(w, map[string]any{
			"run_id":        run.ID,
			"project_id":    projectID,
			"status":        models.RunStatusQueued,
			"job_id":        jobID,
			"websocket_url": "/ws/run/" + run.ID.String(),
		})
	}
}

// createPlaceholders creates the three container documents concurrently and
// links their ids back onto the project in one update. The three creations
// are mutually independent. Failure leaves the project without links and is
// logged, never retried; the run proceeds regardless.
func createPlaceholders(ctx context.Context, st store.Store, projectID uuid.UUID) {
	var (
		board  *models.TaskBoard
		coll   *models.DiagramCollection
		folder *models.RequirementFolder
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		board, err = st.CreateTaskBoard(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		coll, err = st.CreateDiagramCollection(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		folder, err = st.CreateRequirementFolder(gctx, projectID)
		return err
	})

	if err := g.Wait(); err != nil {
		slog.Error("create placeholder containers failed", "project_id", projectID, "error", err)
		return
	}

	if err := st.LinkProjectContainers(ctx, projectID, board.ID, coll.ID, folder.ID); err != nil {
		slog.Error("link placeholder containers failed", "project_id", projectID, "error", err)
	}
}
