package generator

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/smallnest/mindcanvas/log"
)

// BreakerConfig configures the circuit breaker placed in front of a Generator.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig trips after 80% of at least 5 calls failed and probes again
// after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "generator",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Breaker guards a Generator with a circuit breaker so a dead backend fails fast
// instead of costing the full call timeout on every expansion. Parse failures count as
// successful calls because the backend did answer.
type Breaker struct {
	next Generator
	cb   *gobreaker.CircuitBreaker
}

var _ Generator = (*Breaker)(nil)

// NewBreaker wraps next.
func NewBreaker(next Generator, config BreakerConfig, logger log.Logger) *Breaker {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsParseError(err)
		},
	})
	return &Breaker{next: next, cb: cb}
}

// State exposes the breaker state for diagnostics.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func execute[T any](b *Breaker, op string, fn func() (T, error)) (T, error) {
	var zero T
	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		return zero, Classify(op, err)
	}
	return res.(T), nil
}

// Children implements Generator.
func (b *Breaker) Children(ctx context.Context, concept string, contextPath []string) ([]Candidate, error) {
	return execute(b, OpChildren, func() ([]Candidate, error) {
		return b.next.Children(ctx, concept, contextPath)
	})
}

// Detail implements Generator.
func (b *Breaker) Detail(ctx context.Context, concept string, contextPath []string) (DetailResult, error) {
	return execute(b, OpDetail, func() (DetailResult, error) {
		return b.next.Detail(ctx, concept, contextPath)
	})
}

// Summarize implements Generator.
func (b *Breaker) Summarize(ctx context.Context, concepts []ConceptRef) (string, error) {
	return execute(b, OpSummarize, func() (string, error) {
		return b.next.Summarize(ctx, concepts)
	})
}
