package generator

import "context"

// Candidate is one proposed child concept.
type Candidate struct {
	Concept     string `json:"concept" validate:"required"`
	Translation string `json:"translation"`
	Detail      string `json:"detail,omitempty"`
	HasDetail   bool   `json:"hasDetail,omitempty"`
}

// DetailResult is the elaboration of a single concept. HasDetail is false for abstract
// or categorical concepts that need no elaboration.
type DetailResult struct {
	HasDetail bool   `json:"hasDetail"`
	Detail    string `json:"detail"`
}

// ConceptRef is the minimal view of a node passed to Summarize.
type ConceptRef struct {
	Concept     string `json:"concept"`
	Translation string `json:"translation"`
}

// Generator is the external text-generation capability.
type Generator interface {
	// Children proposes sub-concepts of concept. contextPath lists the ancestors of the
	// concept root first and may be empty. It fails rather than returning no candidates.
	Children(ctx context.Context, concept string, contextPath []string) ([]Candidate, error)

	// Detail elaborates concept within contextPath.
	Detail(ctx context.Context, concept string, contextPath []string) (DetailResult, error)

	// Summarize writes a markdown summary of the given concepts.
	Summarize(ctx context.Context, concepts []ConceptRef) (string, error)
}
