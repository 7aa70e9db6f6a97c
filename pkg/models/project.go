package models

import (
	"time"

	"github.com/google/uuid"
)

// Project owns every run and the three container documents the pipeline
// populates. An auto-created project starts out with a placeholder name until
// the metadata stage renames it.
type Project struct {
	ID             uuid.UUID  `db:"id"              json:"id"`
	Name           string     `db:"name"            json:"name"`
	Description    string     `db:"description"     json:"description"`
	TasksID        *uuid.UUID `db:"tasks_id"        json:"tasks_id,omitempty"`
	DiagramsID     *uuid.UUID `db:"diagrams_id"     json:"diagrams_id,omitempty"`
	RequirementsID *uuid.UUID `db:"requirements_id" json:"requirements_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"      json:"updated_at"`
}

// TaskBoard is the placeholder tasks container linked onto a project.
type TaskBoard struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	ProjectID uuid.UUID `db:"project_id" json:"project_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DiagramCollection is the placeholder diagrams container linked onto a project.
type DiagramCollection struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	ProjectID uuid.UUID `db:"project_id" json:"project_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RequirementFolder is the placeholder requirements container linked onto a project.
type RequirementFolder struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	ProjectID uuid.UUID `db:"project_id" json:"project_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
