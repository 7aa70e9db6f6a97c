package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fromscratch/blueprint/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Projects ---

func (s *PostgresStore) CreateProject(ctx context.Context, name, description string) (*models.Project, error) {
	p := &models.Project{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO projects (id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, tasks_id, diagrams_id, requirements_id, created_at, updated_at
		 FROM projects WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.TasksID, &p.DiagramsID, &p.RequirementsID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) LinkProjectContainers(ctx context.Context, id, tasksID, diagramsID, requirementsID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects
		 SET tasks_id = $2, diagrams_id = $3, requirements_id = $4, updated_at = NOW()
		 WHERE id = $1`,
		id, tasksID, diagramsID, requirementsID)
	if err != nil {
		return fmt.Errorf("link project containers: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateProjectMetadata(ctx context.Context, id uuid.UUID, name, description string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET name = $2, description = $3, updated_at = NOW() WHERE id = $1`,
		id, name, description)
	if err != nil {
		return fmt.Errorf("update project metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Placeholder containers ---

func (s *PostgresStore) CreateTaskBoard(ctx context.Context, projectID uuid.UUID) (*models.TaskBoard, error) {
	b := &models.TaskBoard{ID: uuid.New(), ProjectID: projectID, CreatedAt: time.Now().UTC()}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO task_boards (id, project_id, created_at) VALUES ($1, $2, $3)`,
		b.ID, b.ProjectID, b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task board: %w", err)
	}
	return b, nil
}

func (s *PostgresStore) CreateDiagramCollection(ctx context.Context, projectID uuid.UUID) (*models.DiagramCollection, error) {
	c := &models.DiagramCollection{ID: uuid.New(), ProjectID: projectID, CreatedAt: time.Now().UTC()}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO diagram_collections (id, project_id, created_at) VALUES ($1, $2, $3)`,
		c.ID, c.ProjectID, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create diagram collection: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) CreateRequirementFolder(ctx context.Context, projectID uuid.UUID) (*models.RequirementFolder, error) {
	f := &models.RequirementFolder{ID: uuid.New(), ProjectID: projectID, CreatedAt: time.Now().UTC()}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO requirement_folders (id, project_id, created_at) VALUES ($1, $2, $3)`,
		f.ID, f.ProjectID, f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create requirement folder: %w", err)
	}
	return f, nil
}

// --- Runs ---

func (s *PostgresStore) CreateRun(ctx context.Context, projectID uuid.UUID) (*models.Run, error) {
	r := &models.Run{
		ID:        uuid.New(),
		ProjectID: projectID,
		Status:    models.RunStatusQueued,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	stateJSON, err := json.Marshal(r.State)
	if err != nil {
		return nil, fmt.Errorf("encode run state: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, project_id, status, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.ProjectID, r.Status, stateJSON, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	var r models.Run
	var stateJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, project_id, status, state, created_at, updated_at FROM runs WHERE id = $1`, id,
	).Scan(&r.ID, &r.ProjectID, &r.Status, &stateJSON, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if err := json.Unmarshal(stateJSON, &r.State); err != nil {
		return nil, fmt.Errorf("decode run state: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, status, state, created_at, updated_at
		 FROM runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		var r models.Run
		var stateJSON []byte
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Status, &stateJSON, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal(stateJSON, &r.State); err != nil {
			return nil, fmt.Errorf("decode run state: %w", err)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) SetRunStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status NOT IN ('succeeded', 'failed')`,
		id, status)
	if err != nil {
		return fmt.Errorf("set run status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// The guarded update matched nothing: either the run does not exist or
	// it already reached a terminal status.
	var current string
	err = s.pool.QueryRow(ctx, `SELECT status FROM runs WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("set run status: %w", err)
	}
	return fmt.Errorf("%w: %s", ErrTerminalStatus, current)
}

func (s *PostgresStore) ClaimRun(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = 'running', updated_at = NOW()
		 WHERE id = $1 AND status = 'queued'`, id)
	if err != nil {
		return false, fmt.Errorf("claim run: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	err = s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM runs WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("claim run: %w", err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (s *PostgresStore) SaveRunState(ctx context.Context, id uuid.UUID, state models.BlueprintState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode run state: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET state = $2, updated_at = NOW() WHERE id = $1`,
		id, stateJSON)
	if err != nil {
		return fmt.Errorf("save run state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
