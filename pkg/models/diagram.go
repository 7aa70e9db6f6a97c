package models

import "encoding/json"

// DiagramTypes lists the four diagrams every generated set must contain,
// in canonical order.
var DiagramTypes = []string{"class", "sequence", "activity", "usecase"}

// DiagramSet is the validated four-diagram output of the DIAGRAMS stage.
// Node ids are unique across all four diagrams combined, and every edge
// endpoint resolves to a node somewhere in the set.
type DiagramSet struct {
	Class    Diagram `json:"class"`
	Sequence Diagram `json:"sequence"`
	Activity Diagram `json:"activity"`
	Usecase  Diagram `json:"usecase"`
}

// ByType returns the diagram for one of the four canonical type names.
func (s *DiagramSet) ByType(name string) *Diagram {
	switch name {
	case "class":
		return &s.Class
	case "sequence":
		return &s.Sequence
	case "activity":
		return &s.Activity
	case "usecase":
		return &s.Usecase
	}
	return nil
}

// Diagram is a single React Flow style diagram.
type Diagram struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one positioned element on a diagram canvas.
type Node struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data"`
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
}

// Position is a node's 2D canvas coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge connects two nodes, possibly across handles on either side.
type Edge struct {
	ID           string          `json:"id"`
	Source       string          `json:"source"`
	Target       string          `json:"target"`
	SourceHandle string          `json:"sourceHandle,omitempty"`
	TargetHandle string          `json:"targetHandle,omitempty"`
	Type         string          `json:"type"`
	Label        string          `json:"label,omitempty"`
	Style        json.RawMessage `json:"style"`
}
