// Package models contains shared data models used across the blueprint codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusQueued    = "queued"
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// IsTerminalStatus reports whether a run status permits no further transitions.
func IsTerminalStatus(status string) bool {
	return status == RunStatusSucceeded || status == RunStatusFailed
}

// Run is one end-to-end execution of the generation pipeline. Created by the
// API process in "queued" state, mutated thereafter only by the single worker
// that dequeued its job. Readers must tolerate a partial State while the run
// is still "running".
type Run struct {
	ID        uuid.UUID      `db:"id"         json:"id"`
	ProjectID uuid.UUID      `db:"project_id" json:"project_id"`
	Status    string         `db:"status"     json:"status"`
	State     BlueprintState `db:"state"      json:"state"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// BlueprintState accumulates stage outputs across the pipeline. Exactly one
// stage owns each field; a nil field means the owning stage has not run yet.
// It is persisted as the JSONB state column of a run.
type BlueprintState struct {
	// METADATA stage
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`

	// REQUIREMENTS stage
	Requirements *string `json:"requirements_content,omitempty"`

	// DIAGRAMS stage: the raw (fence-stripped) reply and the validated set.
	DiagramsText *string     `json:"diagrams_content,omitempty"`
	Diagrams     *DiagramSet `json:"diagrams_json_content,omitempty"`

	// PLANNER stage
	Plan *string `json:"planner_content,omitempty"`

	// EXPORT stage: the assembled blueprint document.
	Export *string `json:"export_content,omitempty"`
}

// Content renders the state as the content map exposed by the runs API and
// the completion webhook. Fields for stages that have not run render as null.
func (s BlueprintState) Content() map[string]any {
	return map[string]any{
		"requirements":  s.Requirements,
		"diagrams":      s.DiagramsText,
		"diagrams_json": s.Diagrams,
		"plan":          s.Plan,
		"export":        s.Export,
	}
}
