package store_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/fromscratch/blueprint/internal/store"
	"github.com/fromscratch/blueprint/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool + cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("blueprint_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Run migrations
	err = store.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

// --- Project Tests ---

func TestProject_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	project, err := s.CreateProject(ctx, "Generating...", "placeholder description")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, project.ID)

	got, err := s.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Generating...", got.Name)
	assert.Nil(t, got.TasksID)
	assert.Nil(t, got.DiagramsID)
	assert.Nil(t, got.RequirementsID)
}

func TestProject_GetMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	_, err := s.GetProject(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProject_LinkContainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	project, err := s.CreateProject(ctx, "P", "d")
	require.NoError(t, err)

	board, err := s.CreateTaskBoard(ctx, project.ID)
	require.NoError(t, err)
	coll, err := s.CreateDiagramCollection(ctx, project.ID)
	require.NoError(t, err)
	folder, err := s.CreateRequirementFolder(ctx, project.ID)
	require.NoError(t, err)

	err = s.LinkProjectContainers(ctx, project.ID, board.ID, coll.ID, folder.ID)
	require.NoError(t, err)

	got, err := s.GetProject(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TasksID)
	assert.Equal(t, board.ID, *got.TasksID)
	require.NotNil(t, got.DiagramsID)
	assert.Equal(t, coll.ID, *got.DiagramsID)
	require.NotNil(t, got.RequirementsID)
	assert.Equal(t, folder.ID, *got.RequirementsID)
}

func TestProject_UpdateMetadata(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	project, err := s.CreateProject(ctx, "Generating...", "placeholder")
	require.NoError(t, err)

	err = s.UpdateProjectMetadata(ctx, project.ID, "Recipe Hub", "A site for sharing recipes.")
	require.NoError(t, err)

	got, err := s.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Recipe Hub", got.Name)
	assert.Equal(t, "A site for sharing recipes.", got.Description)
}

// --- Run Tests ---

func TestRun_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusQueued, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, models.RunStatusQueued, got.Status)
	assert.Nil(t, got.State.Name)
}

func TestRun_CreateWithoutExistingProject(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	// A run may reference a project id that has no row yet.
	run, err := s.CreateRun(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, run.ID)
}

func TestRun_StatusLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, uuid.New())
	require.NoError(t, err)

	before, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)

	require.NoError(t, s.SetRunStatus(ctx, run.ID, models.RunStatusRunning))
	require.NoError(t, s.SetRunStatus(ctx, run.ID, models.RunStatusSucceeded))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusSucceeded, got.Status)

	// Every status write refreshes updated_at.
	assert.True(t, got.UpdatedAt.After(before.UpdatedAt))
}

func TestRun_TerminalStatusIsFinal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, uuid.New())
	require.NoError(t, err)
	require.NoError(t, s.SetRunStatus(ctx, run.ID, models.RunStatusFailed))

	err = s.SetRunStatus(ctx, run.ID, models.RunStatusRunning)
	assert.ErrorIs(t, err, store.ErrTerminalStatus)

	// The stored status did not move.
	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, got.Status)
}

func TestRun_SetStatusMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	err := s.SetRunStatus(context.Background(), uuid.New(), models.RunStatusRunning)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRun_Claim(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, uuid.New())
	require.NoError(t, err)

	claimed, err := s.ClaimRun(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusRunning, got.Status)

	// A second claim loses.
	claimed, err = s.ClaimRun(ctx, run.ID)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestRun_ClaimMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	_, err := s.ClaimRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRun_SaveAndLoadState(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, uuid.New())
	require.NoError(t, err)

	name := "Recipe Hub"
	reqs := "## Requirements\n1. Share recipes."
	state := models.BlueprintState{Name: &name, Requirements: &reqs}
	require.NoError(t, s.SaveRunState(ctx, run.ID, state))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got.State.Name)
	assert.Equal(t, "Recipe Hub", *got.State.Name)
	require.NotNil(t, got.State.Requirements)
	assert.Nil(t, got.State.Plan)
}

func TestRun_ListNewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		run, err := s.CreateRun(ctx, uuid.New())
		require.NoError(t, err)
		ids = append(ids, run.ID)
		time.Sleep(5 * time.Millisecond)
	}

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)
}

func TestRun_ListHonorsLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.CreateRun(ctx, uuid.New())
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
