package remote

import "github.com/smallnest/mindcanvas/generator"

// Actions accepted in Request.Action. An empty action asks for children.
const (
	ActionDetail    = "detail"
	ActionSummarize = "summarize"
)

// Word is a concept as it travels over the wire.
type Word struct {
	Chinese   string `json:"chinese" validate:"required"`
	English   string `json:"english"`
	Detail    string `json:"detail,omitempty"`
	HasDetail bool   `json:"hasDetail,omitempty"`
}

// Request is the body of POST /api/generate.
type Request struct {
	Word       string   `json:"word,omitempty" validate:"required_unless=Action summarize"`
	Action     string   `json:"action,omitempty" validate:"omitempty,oneof=detail summarize"`
	AllNodes   []Word   `json:"allNodes,omitempty" validate:"required_if=Action summarize,dive"`
	ParentPath []string `json:"parentPath,omitempty"`
}

// ChildrenResponse answers a request without action.
type ChildrenResponse struct {
	Words []Word `json:"words"`
}

// DetailResponse answers action "detail".
type DetailResponse struct {
	HasDetail bool   `json:"hasDetail"`
	Detail    string `json:"detail"`
}

// SummaryResponse answers action "summarize".
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WordsFromCandidates converts generator candidates to wire words.
func WordsFromCandidates(cs []generator.Candidate) []Word {
	out := make([]Word, len(cs))
	for i, c := range cs {
		out[i] = Word{Chinese: c.Concept, English: c.Translation, Detail: c.Detail, HasDetail: c.HasDetail}
	}
	return out
}

// CandidatesFromWords converts wire words to generator candidates.
func CandidatesFromWords(ws []Word) []generator.Candidate {
	out := make([]generator.Candidate, len(ws))
	for i, w := range ws {
		out[i] = generator.Candidate{Concept: w.Chinese, Translation: w.English, Detail: w.Detail, HasDetail: w.HasDetail}
	}
	return out
}

// ConceptRefsFromWords converts the allNodes field of a summarize request.
func ConceptRefsFromWords(ws []Word) []generator.ConceptRef {
	out := make([]generator.ConceptRef, len(ws))
	for i, w := range ws {
		out[i] = generator.ConceptRef{Concept: w.Chinese, Translation: w.English}
	}
	return out
}
