// Package diagram validates the machine-generated diagram set before it is
// trusted downstream. Nothing past this gate sees a partially valid set:
// validation either returns the normalized four-diagram structure or fails.
package diagram

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fromscratch/blueprint/internal/llm"
	"github.com/fromscratch/blueprint/pkg/models"
)

var (
	requiredNodeFields = []string{"id", "type", "position", "data", "width", "height"}
	requiredEdgeFields = []string{"id", "source", "target", "type", "style"}
)

// ValidationError reports a structural violation in a generated diagram set.
type ValidationError struct {
	Diagram string // which of the four diagrams, when known
	Kind    string // "node" or "edge" for element-level violations
	Index   int    // element index within the diagram, when Kind is set
	Field   string // missing field name, when field-level
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Kind != "" && e.Field != "" {
		return fmt.Sprintf("%s diagram %s %d missing %q field", e.Diagram, e.Kind, e.Index, e.Field)
	}
	if e.Diagram != "" {
		return fmt.Sprintf("%s diagram: %s", e.Diagram, e.Reason)
	}
	return e.Reason
}

// Validate checks raw text returned by the diagram-generation stage and, on
// full success, returns the normalized diagram set. An enclosing code fence
// is tolerated. Parse failures return *llm.ContentFormatError; structural
// violations return *ValidationError. There is no partial acceptance.
func Validate(raw string) (*models.DiagramSet, error) {
	cleaned := llm.StripCodeFence(raw)

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, contentFormatError(err)
	}

	for _, name := range models.DiagramTypes {
		if _, ok := parsed[name]; !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("missing diagram type: %q", name)}
		}
	}

	allNodeIDs := make(map[string]bool)
	var orderedIDs []string

	for _, name := range models.DiagramTypes {
		var dm map[string]json.RawMessage
		if err := json.Unmarshal(parsed[name], &dm); err != nil {
			return nil, contentFormatError(err)
		}
		for _, field := range []string{"title", "type", "nodes", "edges"} {
			if _, ok := dm[field]; !ok {
				return nil, &ValidationError{Diagram: name, Reason: fmt.Sprintf("missing %q field", field)}
			}
		}

		var nodes, edges []map[string]json.RawMessage
		if err := json.Unmarshal(dm["nodes"], &nodes); err != nil {
			return nil, contentFormatError(err)
		}
		if err := json.Unmarshal(dm["edges"], &edges); err != nil {
			return nil, contentFormatError(err)
		}

		for i, node := range nodes {
			for _, field := range requiredNodeFields {
				if _, ok := node[field]; !ok {
					return nil, &ValidationError{Diagram: name, Kind: "node", Index: i, Field: field}
				}
			}
			var id string
			if err := json.Unmarshal(node["id"], &id); err != nil {
				return nil, contentFormatError(err)
			}
			orderedIDs = append(orderedIDs, id)
		}

		for i, edge := range edges {
			for _, field := range requiredEdgeFields {
				if _, ok := edge[field]; !ok {
					return nil, &ValidationError{Diagram: name, Kind: "edge", Index: i, Field: field}
				}
			}
		}
	}

	// Node ids must be unique across all four diagrams combined.
	for _, id := range orderedIDs {
		if allNodeIDs[id] {
			return nil, &ValidationError{Reason: fmt.Sprintf("duplicate node id %q", id)}
		}
		allNodeIDs[id] = true
	}

	var set models.DiagramSet
	if err := json.Unmarshal([]byte(cleaned), &set); err != nil {
		return nil, contentFormatError(err)
	}

	// Every edge endpoint must resolve to a node somewhere in the set.
	for _, name := range models.DiagramTypes {
		d := set.ByType(name)
		for i, edge := range d.Edges {
			if !allNodeIDs[edge.Source] {
				return nil, &ValidationError{Diagram: name, Reason: fmt.Sprintf("edge %d references unknown source %q", i, edge.Source)}
			}
			if !allNodeIDs[edge.Target] {
				return nil, &ValidationError{Diagram: name, Reason: fmt.Sprintf("edge %d references unknown target %q", i, edge.Target)}
			}
		}
	}

	return &set, nil
}

// contentFormatError converts a json decode error, carrying the offending
// offset when the decoder reported one.
func contentFormatError(err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &llm.ContentFormatError{Offset: syntaxErr.Offset, Reason: syntaxErr.Error()}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &llm.ContentFormatError{Offset: typeErr.Offset, Reason: typeErr.Error()}
	}
	return &llm.ContentFormatError{Reason: err.Error()}
}
