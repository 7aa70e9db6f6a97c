package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fromscratch/blueprint/internal/events"
	"github.com/fromscratch/blueprint/internal/notify"
	"github.com/fromscratch/blueprint/internal/pipeline"
	"github.com/fromscratch/blueprint/internal/store"
	"github.com/fromscratch/blueprint/pkg/models"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Notifier delivers the best-effort completion webhook.
type Notifier interface {
	Notify(ctx context.Context, url string, payload notify.Payload) error
}

// Worker processes generation jobs. It owns every mutation of a run after
// dequeue: claim, status transitions, state persistence, publishes, and the
// completion webhook.
type Worker struct {
	store    store.Store
	executor *pipeline.Executor
	bus      events.Bus
	notifier Notifier
}

// NewWorker wires the worker's dependencies. The store must be backed by the
// worker process's own connection; workers never share the API process's pool.
func NewWorker(st store.Store, executor *pipeline.Executor, bus events.Bus, notifier Notifier) *Worker {
	return &Worker{store: st, executor: executor, bus: bus, notifier: notifier}
}

// ProcessTask handles one dequeued generation job. Returning an error makes
// the queue record the job itself as failed; the run's own terminal status
// has already been persisted by then.
func (w *Worker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p GeneratePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode generate payload: %w", err)
	}

	log := slog.With("run_id", p.RunID, "project_id", p.ProjectID)

	// Claim the run before doing anything observable. A redelivered job for
	// a run that is already running or terminal is dropped without side
	// effects (at-least-once delivery makes duplicates possible).
	claimed, err := w.store.ClaimRun(ctx, p.RunID)
	if err != nil {
		return fmt.Errorf("claim run: %w", err)
	}
	if !claimed {
		log.Warn("dropping redelivered job: run already claimed or terminal")
		return nil
	}
	w.publish(ctx, p.RunID, events.StatusMessage(models.RunStatusRunning))
	log.Info("run started")

	// The owning project must resolve before the pipeline runs.
	if _, err := w.store.GetProject(ctx, p.ProjectID); err != nil {
		return w.fail(ctx, p, fmt.Errorf("resolve project: %w", err))
	}

	state, err := w.executor.Run(ctx, p.Idea)
	if err != nil {
		// Keep the fragments from the stages that completed; the error text
		// itself goes to the status channel only.
		if state != nil {
			if saveErr := w.store.SaveRunState(ctx, p.RunID, *state); saveErr != nil {
				log.Error("persist partial state failed", "error", saveErr)
			}
		}
		return w.fail(ctx, p, err)
	}

	if err := w.store.SaveRunState(ctx, p.RunID, *state); err != nil {
		return w.fail(ctx, p, fmt.Errorf("persist state: %w", err))
	}
	if err := w.store.SetRunStatus(ctx, p.RunID, models.RunStatusSucceeded); err != nil {
		return w.fail(ctx, p, fmt.Errorf("mark succeeded: %w", err))
	}
	w.publish(ctx, p.RunID, events.StatusMessage(models.RunStatusSucceeded))
	log.Info("run succeeded")

	// The metadata stage named the project; persist that onto the project
	// record. Best effort: the run already succeeded.
	if state.Name != nil {
		desc := ""
		if state.Description != nil {
			desc = *state.Description
		}
		if err := w.store.UpdateProjectMetadata(ctx, p.ProjectID, *state.Name, desc); err != nil {
			log.Error("update project metadata failed", "error", err)
		}
	}

	if p.WebhookURL != "" {
		payload := notify.Payload{
			RunID:     p.RunID.String(),
			ProjectID: p.ProjectID.String(),
			Status:    models.RunStatusSucceeded,
			Result:    state.Content(),
		}
		if err := w.notifier.Notify(ctx, p.WebhookURL, payload); err != nil {
			log.Warn("webhook delivery failed", "url", p.WebhookURL, "error", err)
		}
	}

	return nil
}

// fail flips the run to its terminal failed state, publishes the cause on the
// status channel, and propagates the error to the queue.
func (w *Worker) fail(ctx context.Context, p GeneratePayload, cause error) error {
	if err := w.store.SetRunStatus(ctx, p.RunID, models.RunStatusFailed); err != nil {
		slog.Error("mark failed errored", "run_id", p.RunID, "error", err)
	}
	w.publish(ctx, p.RunID, events.FailureMessage(cause.Error()))
	slog.Error("run failed", "run_id", p.RunID, "error", cause)
	return cause
}

func (w *Worker) publish(ctx context.Context, runID uuid.UUID, message string) {
	if err := w.bus.Publish(ctx, runID, message); err != nil {
		slog.Warn("status publish failed", "run_id", runID, "error", err)
	}
}
