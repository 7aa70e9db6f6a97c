// Package pipeline drives the fixed five-stage blueprint generation state
// machine: METADATA → REQUIREMENTS → DIAGRAMS → PLANNER → EXPORT. Stage order
// never changes and stages never run in parallel; the first failure aborts
// the whole run.
package pipeline

import (
	"context"
	"fmt"

	"github.com/fromscratch/blueprint/pkg/models"
)

// Stage names in execution order.
const (
	StageMetadata     = "METADATA"
	StageRequirements = "REQUIREMENTS"
	StageDiagrams     = "DIAGRAMS"
	StagePlanner      = "PLANNER"
	StageExport       = "EXPORT"
)

// StageOrder is the fixed execution sequence.
var StageOrder = []string{StageMetadata, StageRequirements, StageDiagrams, StagePlanner, StageExport}

type stageFunc func(ctx context.Context, idea string, state *models.BlueprintState) error

// Executor runs the stages strictly in order, threading accumulated state
// from one into the next.
type Executor struct {
	stages *Stages
}

func NewExecutor(stages *Stages) *Executor {
	return &Executor{stages: stages}
}

// Run executes the full pipeline for one idea. On failure the returned state
// still holds the fragments merged by the stages that completed, so callers
// can inspect how far the run got; the error names the failing stage.
func (e *Executor) Run(ctx context.Context, idea string) (*models.BlueprintState, error) {
	steps := []struct {
		name string
		fn   stageFunc
	}{
		{StageMetadata, e.stages.metadata},
		{StageRequirements, e.stages.requirements},
		{StageDiagrams, e.stages.diagrams},
		{StagePlanner, e.stages.planner},
		{StageExport, e.stages.export},
	}

	state := &models.BlueprintState{}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return state, fmt.Errorf("%s stage: %w", step.name, err)
		}
		if err := step.fn(ctx, idea, state); err != nil {
			return state, fmt.Errorf("%s stage: %w", step.name, err)
		}
	}
	return state, nil
}
