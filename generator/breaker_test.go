package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/mindcanvas/log"
)

type stubGenerator struct {
	children    []Candidate
	childrenErr error
	detail      DetailResult
	detailErr   error
	summary     string
	summaryErr  error
	calls       int
}

func (s *stubGenerator) Children(context.Context, string, []string) ([]Candidate, error) {
	s.calls++
	return s.children, s.childrenErr
}

func (s *stubGenerator) Detail(context.Context, string, []string) (DetailResult, error) {
	s.calls++
	return s.detail, s.detailErr
}

func (s *stubGenerator) Summarize(context.Context, []ConceptRef) (string, error) {
	s.calls++
	return s.summary, s.summaryErr
}

func testBreakerConfig() BreakerConfig {
	cfg := DefaultBreakerConfig()
	cfg.MinRequests = 2
	cfg.FailureThreshold = 1
	return cfg
}

func TestBreaker_PassesThrough(t *testing.T) {
	stub := &stubGenerator{
		children: []Candidate{{Concept: "a"}},
		detail:   DetailResult{HasDetail: true, Detail: "x"},
		summary:  "# s",
	}
	b := NewBreaker(stub, testBreakerConfig(), &log.NoOpLogger{})
	ctx := context.Background()

	children, err := b.Children(ctx, "c", nil)
	require.NoError(t, err)
	assert.Equal(t, stub.children, children)

	detail, err := b.Detail(ctx, "c", nil)
	require.NoError(t, err)
	assert.Equal(t, stub.detail, detail)

	summary, err := b.Summarize(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "# s", summary)
}

func TestBreaker_OpensAfterCallFailures(t *testing.T) {
	stub := &stubGenerator{childrenErr: &CallError{Op: OpChildren, Err: errors.New("connection refused")}}
	b := NewBreaker(stub, testBreakerConfig(), &log.NoOpLogger{})
	ctx := context.Background()

	for range 2 {
		_, err := b.Children(ctx, "c", nil)
		assert.True(t, IsCallError(err))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Children(ctx, "c", nil)
	assert.True(t, IsCallError(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, stub.calls, "open breaker must not reach the backend")
}

func TestBreaker_ParseFailuresDoNotTrip(t *testing.T) {
	stub := &stubGenerator{childrenErr: &ParseError{Op: OpChildren, Err: ErrEmptyResult}}
	b := NewBreaker(stub, testBreakerConfig(), &log.NoOpLogger{})

	for range 5 {
		_, err := b.Children(context.Background(), "c", nil)
		assert.True(t, IsParseError(err))
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
