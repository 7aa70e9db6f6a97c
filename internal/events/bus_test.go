package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/fromscratch/blueprint/internal/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisBus spins up a Redis container and returns a connected RedisBus.
func setupRedisBus(t *testing.T) *events.RedisBus {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	bus, err := events.NewRedisBus("redis://" + host + ":" + port.Port())
	require.NoError(t, err)
	t.Cleanup(func() { bus.Close() })

	return bus
}

// receive waits for the next message or fails the test.
func receive(t *testing.T, sub *events.Subscription) string {
	t.Helper()
	select {
	case msg, ok := <-sub.C:
		require.True(t, ok, "subscription closed early")
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a message")
		return ""
	}
}

func TestRunChannel(t *testing.T) {
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	assert.Equal(t, "run:0f8fad5b-d9cb-469f-a165-70867728950e", events.RunChannel(id))
}

func TestMessageFormats(t *testing.T) {
	assert.Equal(t, "STATUS:running", events.StatusMessage("running"))
	assert.Equal(t, "STATUS:failed ERROR:timed out", events.FailureMessage("timed out"))
}

func TestPublishSubscribe_Roundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bus := setupRedisBus(t)
	ctx := context.Background()
	runID := uuid.New()

	sub, err := bus.Subscribe(ctx, runID)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, bus.Publish(ctx, runID, "STATUS:running"))
	require.NoError(t, bus.Publish(ctx, runID, "STATUS:succeeded"))

	assert.Equal(t, "STATUS:running", receive(t, sub))
	assert.Equal(t, "STATUS:succeeded", receive(t, sub))
}

func TestSubscribe_NoReplay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bus := setupRedisBus(t)
	ctx := context.Background()
	runID := uuid.New()

	// Published before anyone subscribes: gone.
	require.NoError(t, bus.Publish(ctx, runID, "STATUS:running"))

	sub, err := bus.Subscribe(ctx, runID)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, bus.Publish(ctx, runID, "STATUS:succeeded"))
	assert.Equal(t, "STATUS:succeeded", receive(t, sub))
}

func TestSubscribe_ChannelsAreIsolated(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bus := setupRedisBus(t)
	ctx := context.Background()

	runA, runB := uuid.New(), uuid.New()
	subA, err := bus.Subscribe(ctx, runA)
	require.NoError(t, err)
	defer subA.Close()

	require.NoError(t, bus.Publish(ctx, runB, "STATUS:running"))
	require.NoError(t, bus.Publish(ctx, runA, "STATUS:failed ERROR:x"))

	// Only runA's message arrives on subA.
	assert.Equal(t, "STATUS:failed ERROR:x", receive(t, subA))
}

func TestSubscribe_MultipleSubscribersEachReceive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bus := setupRedisBus(t)
	ctx := context.Background()
	runID := uuid.New()

	first, err := bus.Subscribe(ctx, runID)
	require.NoError(t, err)
	defer first.Close()
	second, err := bus.Subscribe(ctx, runID)
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, bus.Publish(ctx, runID, "STATUS:running"))

	assert.Equal(t, "STATUS:running", receive(t, first))
	assert.Equal(t, "STATUS:running", receive(t, second))
}

func TestSubscription_CloseEndsChannel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	bus := setupRedisBus(t)
	runID := uuid.New()

	sub, err := bus.Subscribe(context.Background(), runID)
	require.NoError(t, err)

	sub.Close()
	sub.Close() // safe to repeat

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after Close")
	}
}
