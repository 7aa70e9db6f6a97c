package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fromscratch/blueprint/internal/diagram"
	"github.com/fromscratch/blueprint/internal/llm"
	"github.com/fromscratch/blueprint/pkg/models"
)

// Stages holds the five content-generation stages. Each stage consumes the
// accumulated state plus the original idea and merges exactly the fields it
// owns. Stages never run concurrently within one run.
type Stages struct {
	provider models.LLMProvider
	timeout  time.Duration
}

// NewStages creates the stage set over an injected provider. timeout bounds
// each individual generation call.
func NewStages(provider models.LLMProvider, timeout time.Duration) *Stages {
	return &Stages{provider: provider, timeout: timeout}
}

// generate runs one bounded generation call, mapping provider failures onto
// the pipeline's transport error.
func (s *Stages) generate(ctx context.Context, prompt string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.provider.Generate(genCtx, prompt)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	return out, nil
}

func (s *Stages) metadata(ctx context.Context, idea string, state *models.BlueprintState) error {
	reply, err := s.generate(ctx, fmt.Sprintf(metadataPrompt, idea))
	if err != nil {
		return err
	}

	var meta struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	cleaned := llm.StripCodeFence(reply)
	if err := json.Unmarshal([]byte(cleaned), &meta); err != nil {
		return &llm.ContentFormatError{Reason: "metadata reply is not a JSON object: " + err.Error()}
	}
	if meta.Name == "" {
		return &llm.ContentFormatError{Reason: "metadata reply is missing a project name"}
	}

	state.Name = &meta.Name
	state.Description = &meta.Description
	return nil
}

func (s *Stages) requirements(ctx context.Context, idea string, state *models.BlueprintState) error {
	reply, err := s.generate(ctx, fmt.Sprintf(requirementsPrompt, idea))
	if err != nil {
		return err
	}
	state.Requirements = &reply
	return nil
}

func (s *Stages) diagrams(ctx context.Context, idea string, state *models.BlueprintState) error {
	reply, err := s.generate(ctx, fmt.Sprintf(diagramsPrompt, idea))
	if err != nil {
		return err
	}

	// The generated set must pass the schema validator before it is merged.
	set, err := diagram.Validate(reply)
	if err != nil {
		return err
	}

	cleaned := llm.StripCodeFence(reply)
	state.DiagramsText = &cleaned
	state.Diagrams = set
	return nil
}

func (s *Stages) planner(ctx context.Context, idea string, state *models.BlueprintState) error {
	reply, err := s.generate(ctx, fmt.Sprintf(plannerPrompt, idea, deref(state.Requirements)))
	if err != nil {
		return err
	}
	state.Plan = &reply
	return nil
}

func (s *Stages) export(ctx context.Context, idea string, state *models.BlueprintState) error {
	reply, err := s.generate(ctx, fmt.Sprintf(exportPrompt,
		deref(state.Name), deref(state.Description),
		deref(state.Requirements), deref(state.Plan)))
	if err != nil {
		return err
	}
	state.Export = &reply
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
