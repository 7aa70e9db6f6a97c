// Package mock provides a deterministic LLM provider for tests and local
// development (LLM_PROVIDER=mock). Replies are canned per stage, selected by
// sniffing the prompt, so a full pipeline run completes without network access.
package mock

import (
	"context"
	"strings"

	"github.com/fromscratch/blueprint/pkg/models"
)

// Provider satisfies models.LLMProvider for testing.
type Provider struct {
	Name_        string
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *Provider) Name() string { return m.Name_ }

func (m *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", nil
}

// NewProvider returns a Provider with canned stage-appropriate replies.
func NewProvider() *Provider {
	return &Provider{
		Name_: "mock",
		GenerateFunc: func(_ context.Context, prompt string) (string, error) {
			switch {
			case strings.Contains(prompt, `"usecase"`):
				return CannedDiagramJSON, nil
			case strings.Contains(prompt, `"description"`):
				return cannedMetadataJSON, nil
			case strings.Contains(prompt, "project plan"):
				return "## Phase 1: Foundation\n- Set up repositories and CI\n\n## Phase 2: Core features", nil
			case strings.Contains(prompt, "blueprint document"):
				return "# Blueprint\n\nAssembled blueprint document for testing.", nil
			default:
				return "## Functional Requirements\n\n1. Users can submit a product idea.\n2. The system generates a structured blueprint.", nil
			}
		},
	}
}

// NewFailingProvider returns a Provider that always returns the given error.
func NewFailingProvider(err error) *Provider {
	return &Provider{
		Name_: "mock-failing",
		GenerateFunc: func(_ context.Context, _ string) (string, error) {
			return "", err
		},
	}
}

// NewScriptedProvider returns a Provider that replays the given replies in
// order. Calls beyond the script fall through to the last reply; an empty
// script always replies with the empty string. Not safe for use across
// concurrently executing runs.
func NewScriptedProvider(replies ...string) *Provider {
	i := 0
	return &Provider{
		Name_: "mock-scripted",
		GenerateFunc: func(_ context.Context, _ string) (string, error) {
			if len(replies) == 0 {
				return "", nil
			}
			if i >= len(replies) {
				return replies[len(replies)-1], nil
			}
			r := replies[i]
			i++
			return r, nil
		},
	}
}

// NewTimeoutProvider returns a Provider that blocks until the context is
// cancelled, then reports the context error.
func NewTimeoutProvider() *Provider {
	return &Provider{
		Name_: "mock-timeout",
		GenerateFunc: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

const cannedMetadataJSON = `{"name": "Mock Project", "description": "A project generated by the mock provider."}`

// CannedDiagramJSON is a minimal diagram set that passes the schema
// validator: four diagrams, globally unique node ids, resolvable edges.
const CannedDiagramJSON = `{
  "class": {
    "title": "Class Diagram",
    "type": "class",
    "nodes": [
      {"id": "cls-user", "type": "classNode", "position": {"x": 100, "y": 150}, "data": {"label": "User"}, "width": 200, "height": 153},
      {"id": "cls-project", "type": "classNode", "position": {"x": 400, "y": 150}, "data": {"label": "Project"}, "width": 200, "height": 153}
    ],
    "edges": [
      {"id": "e-cls-1", "source": "cls-user", "target": "cls-project", "type": "smoothstep", "label": "1..*", "style": {"strokeWidth": 3, "stroke": "#B1B1B7"}}
    ]
  },
  "sequence": {
    "title": "Sequence Diagram",
    "type": "sequence",
    "nodes": [
      {"id": "seq-client", "type": "sequenceLifeline", "position": {"x": 120, "y": 40}, "data": {"label": "Client"}, "width": 73, "height": 400},
      {"id": "seq-api", "type": "sequenceLifeline", "position": {"x": 320, "y": 40}, "data": {"label": "API"}, "width": 73, "height": 400}
    ],
    "edges": [
      {"id": "e-seq-1", "source": "seq-client", "target": "seq-api", "type": "smoothstep", "label": "1. request()", "style": {"strokeWidth": 3, "stroke": "#B1B1B7"}}
    ]
  },
  "activity": {
    "title": "Activity Diagram",
    "type": "activity",
    "nodes": [
      {"id": "act-start", "type": "activityNode", "position": {"x": 100, "y": 80}, "data": {"label": "Start"}, "width": 150, "height": 42},
      {"id": "act-done", "type": "activityNode", "position": {"x": 100, "y": 200}, "data": {"label": "Done"}, "width": 150, "height": 42}
    ],
    "edges": [
      {"id": "e-act-1", "source": "act-start", "target": "act-done", "type": "smoothstep", "style": {"strokeWidth": 3, "stroke": "#B1B1B7"}}
    ]
  },
  "usecase": {
    "title": "Use Case Diagram",
    "type": "usecase",
    "nodes": [
      {"id": "uc-actor", "type": "actorNode", "position": {"x": 50, "y": 100}, "data": {"label": "User"}, "width": 100, "height": 120},
      {"id": "uc-generate", "type": "useCaseNode", "position": {"x": 250, "y": 100}, "data": {"label": "Generate blueprint"}, "width": 160, "height": 60}
    ],
    "edges": [
      {"id": "e-uc-1", "source": "uc-actor", "target": "uc-generate", "type": "smoothstep", "style": {"strokeWidth": 3, "stroke": "#B1B1B7"}}
    ]
  }
}`

// Compile-time check that Provider implements LLMProvider.
var _ models.LLMProvider = (*Provider)(nil)
