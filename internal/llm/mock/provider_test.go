package mock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fromscratch/blueprint/internal/llm/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_DefaultRepliesAreDeterministic(t *testing.T) {
	p := mock.NewProvider()
	ctx := context.Background()

	first, err := p.Generate(ctx, `produce a JSON object {"name": "...", "description": "..."}`)
	require.NoError(t, err)
	second, err := p.Generate(ctx, `produce a JSON object {"name": "...", "description": "..."}`)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "Mock Project")
}

func TestProvider_DiagramReplyMatchesCanned(t *testing.T) {
	p := mock.NewProvider()

	out, err := p.Generate(context.Background(), `top-level keys "class", "sequence", "activity", "usecase"`)
	require.NoError(t, err)
	assert.Equal(t, mock.CannedDiagramJSON, out)
}

func TestFailingProvider(t *testing.T) {
	want := errors.New("boom")
	p := mock.NewFailingProvider(want)

	_, err := p.Generate(context.Background(), "anything")
	assert.ErrorIs(t, err, want)
	assert.Equal(t, "mock-failing", p.Name())
}

func TestScriptedProvider_ReplaysInOrder(t *testing.T) {
	p := mock.NewScriptedProvider("one", "two")
	ctx := context.Background()

	out, _ := p.Generate(ctx, "")
	assert.Equal(t, "one", out)
	out, _ = p.Generate(ctx, "")
	assert.Equal(t, "two", out)

	// Calls past the script repeat the last reply.
	out, _ = p.Generate(ctx, "")
	assert.Equal(t, "two", out)
}

func TestScriptedProvider_EmptyScript(t *testing.T) {
	p := mock.NewScriptedProvider()

	out, err := p.Generate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestTimeoutProvider_HonorsContext(t *testing.T) {
	p := mock.NewTimeoutProvider()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
