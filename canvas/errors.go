package canvas

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidConcept is returned when submitted concept text is empty.
	ErrInvalidConcept = errors.New("concept text is empty")

	// ErrNodeNotFound is returned when an operation names a node that is not in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned when a node id is already present.
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrDanglingEdge is returned when an edge references a node that does not exist.
	ErrDanglingEdge = errors.New("edge references missing node")

	// ErrHistoryNotFound is returned when restoring an unknown history entry.
	ErrHistoryNotFound = errors.New("history entry not found")
)

// NormalizeConcept trims surrounding whitespace and rejects empty text.
func NormalizeConcept(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrInvalidConcept
	}
	return trimmed, nil
}
