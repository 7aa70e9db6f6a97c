package store

import (
	"context"
	"errors"

	"github.com/fromscratch/blueprint/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")

// ErrTerminalStatus is returned when a status write targets a run that has
// already reached succeeded or failed. Terminal states never transition.
var ErrTerminalStatus = errors.New("run is in a terminal status")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateProject(ctx context.Context, name, description string) (*models.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	LinkProjectContainers(ctx context.Context, id, tasksID, diagramsID, requirementsID uuid.UUID) error
	UpdateProjectMetadata(ctx context.Context, id uuid.UUID, name, description string) error

	CreateTaskBoard(ctx context.Context, projectID uuid.UUID) (*models.TaskBoard, error)
	CreateDiagramCollection(ctx context.Context, projectID uuid.UUID) (*models.DiagramCollection, error)
	CreateRequirementFolder(ctx context.Context, projectID uuid.UUID) (*models.RequirementFolder, error)

	CreateRun(ctx context.Context, projectID uuid.UUID) (*models.Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*models.Run, error)
	// SetRunStatus rejects the write with ErrTerminalStatus once a run has
	// reached succeeded or failed.
	SetRunStatus(ctx context.Context, id uuid.UUID, status string) error
	// ClaimRun atomically flips a run from queued to running. It returns
	// false when the run was already claimed or is terminal, so a redelivered
	// job can be dropped without side effects.
	ClaimRun(ctx context.Context, id uuid.UUID) (bool, error)
	SaveRunState(ctx context.Context, id uuid.UUID, state models.BlueprintState) error
}
