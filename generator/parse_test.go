package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCandidates(t *testing.T) {
	text := "Here you go:\n```json\n[{\"concept\": \" 导数定义 \", \"translation\": \"Definition of derivative\"}," +
		"{\"concept\": \"链式法则\", \"translation\": \"Chain rule\", \"detail\": \"(f∘g)' = f'(g)·g'\", \"hasDetail\": true}]\n```"

	got, err := ParseCandidates(text)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "导数定义", got[0].Concept)
	assert.False(t, got[0].HasDetail)
	assert.Equal(t, "链式法则", got[1].Concept)
	assert.True(t, got[1].HasDetail)
	assert.Equal(t, "(f∘g)' = f'(g)·g'", got[1].Detail)
}

func TestParseCandidates_Malformed(t *testing.T) {
	tests := map[string]string{
		"no array":        "I cannot help with that.",
		"invalid json":    "[{concept: derivative}]",
		"empty list":      "[]",
		"missing concept": `[{"translation": "Chain rule"}]`,
		"blank concept":   `[{"concept": "   "}]`,
		"wrong shape":     `["a", "b"]`,
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCandidates(text)
			require.Error(t, err)
			assert.True(t, IsParseError(err), "got %v", err)
			assert.False(t, IsCallError(err))
		})
	}
}

func TestParseCandidates_HasDetailWithoutTextIsDropped(t *testing.T) {
	got, err := ParseCandidates(`[{"concept": "极限", "hasDetail": true, "detail": " "}]`)
	require.NoError(t, err)
	assert.False(t, got[0].HasDetail)
	assert.Empty(t, got[0].Detail)
}

func TestParseDetail(t *testing.T) {
	got, err := ParseDetail("```json\n{\"hasDetail\": true, \"detail\": \"(x^n)' = nx^(n-1)\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, DetailResult{HasDetail: true, Detail: "(x^n)' = nx^(n-1)"}, got)

	got, err = ParseDetail(`{"hasDetail": false, "detail": ""}`)
	require.NoError(t, err)
	assert.False(t, got.HasDetail)
}

func TestParseDetail_Malformed(t *testing.T) {
	tests := map[string]string{
		"no object":         "nothing here",
		"missing hasDetail": `{"detail": "x"}`,
		"wrong type":        `{"hasDetail": "yes", "detail": "x"}`,
		"detail missing":    `{"hasDetail": true}`,
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDetail(text)
			assert.True(t, IsParseError(err), "got %v", err)
		})
	}
}

func TestParseSummary(t *testing.T) {
	got, err := ParseSummary("\n# Plan\n")
	require.NoError(t, err)
	assert.Equal(t, "# Plan", got)

	_, err = ParseSummary("   ")
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(OpChildren, nil))

	pe := &ParseError{Op: OpDetail, Err: ErrEmptyResult}
	assert.Same(t, pe, Classify(OpChildren, pe))

	err := Classify(OpSummarize, assert.AnError)
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, OpSummarize, ce.Op)
	assert.ErrorIs(t, err, assert.AnError)
}
