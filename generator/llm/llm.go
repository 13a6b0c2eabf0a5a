package llm

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/mindcanvas/generator"
	"github.com/smallnest/mindcanvas/log"
)

const (
	// DefaultMaxTokens bounds child and summary generation.
	DefaultMaxTokens = 2048
	// DefaultDetailMaxTokens bounds detail generation, which is kept short.
	DefaultDetailMaxTokens = 1024
	// DefaultMaxChildren is the upper end of the number of children requested.
	DefaultMaxChildren = 8
)

// Generator implements generator.Generator on top of a langchaingo model.
type Generator struct {
	model           llms.Model
	maxTokens       int
	detailMaxTokens int
	maxChildren     int
	temperature     float64
	retry           *generator.RetryConfig
	logger          log.Logger
}

var _ generator.Generator = (*Generator)(nil)

// Option configures a Generator.
type Option func(*Generator)

// WithMaxTokens sets the token budget for children and summaries.
func WithMaxTokens(n int) Option {
	return func(g *Generator) {
		g.maxTokens = n
	}
}

// WithDetailMaxTokens sets the token budget for detail requests.
func WithDetailMaxTokens(n int) Option {
	return func(g *Generator) {
		g.detailMaxTokens = n
	}
}

// WithMaxChildren sets how many children are requested per expansion.
func WithMaxChildren(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxChildren = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *Generator) {
		g.temperature = t
	}
}

// WithRetry sets the retry policy wrapped around every model call.
func WithRetry(cfg *generator.RetryConfig) Option {
	return func(g *Generator) {
		g.retry = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// New creates a Generator that prompts model.
func New(model llms.Model, opts ...Option) (*Generator, error) {
	if model == nil {
		return nil, errors.New("llm: model is required")
	}
	g := &Generator{
		model:           model,
		maxTokens:       DefaultMaxTokens,
		detailMaxTokens: DefaultDetailMaxTokens,
		maxChildren:     DefaultMaxChildren,
		temperature:     0.7,
		retry:           generator.DefaultRetryConfig(),
		logger:          log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Generator) complete(ctx context.Context, op, prompt string, maxTokens int) (string, error) {
	text, err := generator.Retry(ctx, g.retry, op, func(ctx context.Context) (string, error) {
		out, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt,
			llms.WithMaxTokens(maxTokens),
			llms.WithTemperature(g.temperature),
		)
		if err != nil {
			g.logger.Warn("llm: %s call failed: %v", op, err)
			return "", &generator.CallError{Op: op, Err: err}
		}
		return out, nil
	})
	if err != nil {
		return "", generator.Classify(op, err)
	}
	g.logger.Debug("llm: %s returned %d bytes", op, len(text))
	return text, nil
}

// Children implements generator.Generator.
func (g *Generator) Children(ctx context.Context, concept string, contextPath []string) ([]generator.Candidate, error) {
	text, err := g.complete(ctx, generator.OpChildren, childrenPrompt(concept, contextPath, g.maxChildren), g.maxTokens)
	if err != nil {
		return nil, err
	}
	return generator.ParseCandidates(text)
}

// Detail implements generator.Generator.
func (g *Generator) Detail(ctx context.Context, concept string, contextPath []string) (generator.DetailResult, error) {
	text, err := g.complete(ctx, generator.OpDetail, detailPrompt(concept, contextPath), g.detailMaxTokens)
	if err != nil {
		return generator.DetailResult{}, err
	}
	return generator.ParseDetail(text)
}

// Summarize implements generator.Generator.
func (g *Generator) Summarize(ctx context.Context, concepts []generator.ConceptRef) (string, error) {
	if len(concepts) == 0 {
		return "", errors.New("llm: no concepts to summarize")
	}
	text, err := g.complete(ctx, generator.OpSummarize, summaryPrompt(concepts), g.maxTokens)
	if err != nil {
		return "", err
	}
	return generator.ParseSummary(text)
}
