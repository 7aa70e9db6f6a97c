package llm

import "fmt"

// ContentFormatError reports model output that could not be parsed into the
// shape a stage expects. Offset is the byte offset of the parse failure when
// the underlying decoder reported one.
type ContentFormatError struct {
	Offset int64
	Reason string
}

func (e *ContentFormatError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("malformed model output: %s at offset %d", e.Reason, e.Offset)
	}
	return "malformed model output: " + e.Reason
}
