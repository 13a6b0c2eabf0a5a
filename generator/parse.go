package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	arrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

type candidateList struct {
	Items []Candidate `validate:"min=1,dive"`
}

type detailWire struct {
	HasDetail *bool  `json:"hasDetail" validate:"required"`
	Detail    string `json:"detail"`
}

// ParseCandidates extracts the first JSON array from free-form model text and validates
// it as a non-empty candidate list. Concepts are trimmed.
func ParseCandidates(text string) ([]Candidate, error) {
	raw := arrayPattern.FindString(text)
	if raw == "" {
		return nil, &ParseError{Op: OpChildren, Raw: text, Err: errors.New("no JSON array in response")}
	}

	var items []Candidate
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &ParseError{Op: OpChildren, Raw: text, Err: err}
	}
	return ValidateCandidates(items)
}

// ValidateCandidates trims and validates an already decoded candidate list.
func ValidateCandidates(items []Candidate) ([]Candidate, error) {
	if len(items) == 0 {
		return nil, &ParseError{Op: OpChildren, Err: ErrEmptyResult}
	}
	for i := range items {
		items[i].Concept = strings.TrimSpace(items[i].Concept)
		items[i].Translation = strings.TrimSpace(items[i].Translation)
		items[i].Detail = strings.TrimSpace(items[i].Detail)
		if items[i].Detail == "" {
			items[i].HasDetail = false
		}
	}
	if err := validate.Struct(candidateList{Items: items}); err != nil {
		return nil, &ParseError{Op: OpChildren, Err: formatValidationError(err)}
	}
	return items, nil
}

// ParseDetail extracts the first JSON object from free-form model text and validates it
// as a detail result.
func ParseDetail(text string) (DetailResult, error) {
	raw := objectPattern.FindString(text)
	if raw == "" {
		return DetailResult{}, &ParseError{Op: OpDetail, Raw: text, Err: errors.New("no JSON object in response")}
	}

	var wire detailWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return DetailResult{}, &ParseError{Op: OpDetail, Raw: text, Err: err}
	}
	if err := validate.Struct(wire); err != nil {
		return DetailResult{}, &ParseError{Op: OpDetail, Raw: text, Err: formatValidationError(err)}
	}

	res := DetailResult{HasDetail: *wire.HasDetail, Detail: strings.TrimSpace(wire.Detail)}
	if res.HasDetail && res.Detail == "" {
		return DetailResult{}, &ParseError{Op: OpDetail, Raw: text, Err: errors.New("hasDetail is true but detail is empty")}
	}
	return res, nil
}

// ParseSummary validates summary text.
func ParseSummary(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ParseError{Op: OpSummarize, Err: ErrEmptyResult}
	}
	return text, nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Namespace())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must have at least %s entries", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
