package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/mindcanvas/generator"
	"github.com/smallnest/mindcanvas/log"
)

// mockLLM replays responses in order and records the prompts it received.
type mockLLM struct {
	responses []string
	errs      []error
	prompts   []string
	options   []llms.CallOptions
}

func (m *mockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	i := len(m.prompts)
	var prompt strings.Builder
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				prompt.WriteString(text.Text)
			}
		}
	}
	m.prompts = append(m.prompts, prompt.String())

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	m.options = append(m.options, opts)

	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	resp := ""
	if i < len(m.responses) {
		resp = m.responses[i]
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: resp}},
	}, nil
}

func (m *mockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func newTestGenerator(t *testing.T, model llms.Model, opts ...Option) *Generator {
	t.Helper()
	retry := generator.DefaultRetryConfig()
	retry.InitialDelay = time.Millisecond
	opts = append([]Option{WithRetry(retry), WithLogger(&log.NoOpLogger{})}, opts...)
	g, err := New(model, opts...)
	require.NoError(t, err)
	return g
}

func TestNew_RequiresModel(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestGenerator_Children(t *testing.T) {
	model := &mockLLM{responses: []string{
		`Sure! [{"concept": "导数定义", "translation": "Definition"}, {"concept": "链式法则", "translation": "Chain rule"}]`,
	}}
	g := newTestGenerator(t, model, WithMaxChildren(6))

	got, err := g.Children(context.Background(), "导数", []string{"微积分"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "链式法则", got[1].Concept)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], `"导数"`)
	assert.Contains(t, model.prompts[0], "微积分 → 导数")
	assert.Contains(t, model.prompts[0], "5 to 6")
	assert.Equal(t, DefaultMaxTokens, model.options[0].MaxTokens)
}

func TestGenerator_ChildrenWithoutContextOmitsPath(t *testing.T) {
	model := &mockLLM{responses: []string{`[{"concept": "极限"}]`}}
	g := newTestGenerator(t, model)

	_, err := g.Children(context.Background(), "微积分", nil)
	require.NoError(t, err)
	assert.NotContains(t, model.prompts[0], "exploring the path")
}

func TestGenerator_RetriesOnceOnCallFailure(t *testing.T) {
	model := &mockLLM{
		errs:      []error{errors.New("overloaded")},
		responses: []string{"", `{"hasDetail": true, "detail": "(C)' = 0"}`},
	}
	g := newTestGenerator(t, model)

	got, err := g.Detail(context.Background(), "基本导数公式", []string{"微积分", "导数"})
	require.NoError(t, err)
	assert.Equal(t, generator.DetailResult{HasDetail: true, Detail: "(C)' = 0"}, got)
	assert.Len(t, model.prompts, 2)
	assert.Equal(t, DefaultDetailMaxTokens, model.options[1].MaxTokens)
}

func TestGenerator_CallFailureAfterRetries(t *testing.T) {
	model := &mockLLM{errs: []error{errors.New("down"), errors.New("still down")}}
	g := newTestGenerator(t, model)

	_, err := g.Children(context.Background(), "x", nil)
	assert.True(t, generator.IsCallError(err), "got %v", err)
	assert.Len(t, model.prompts, 2)
}

func TestGenerator_MalformedResponseIsParseError(t *testing.T) {
	model := &mockLLM{responses: []string{"I'd rather not."}}
	g := newTestGenerator(t, model)

	_, err := g.Children(context.Background(), "x", nil)
	assert.True(t, generator.IsParseError(err))
	assert.Len(t, model.prompts, 1, "parse failures are not retried")
}

func TestGenerator_Summarize(t *testing.T) {
	model := &mockLLM{responses: []string{"## Framework\n- 导数"}}
	g := newTestGenerator(t, model)

	got, err := g.Summarize(context.Background(), []generator.ConceptRef{
		{Concept: "微积分", Translation: "Calculus"},
		{Concept: "导数"},
	})
	require.NoError(t, err)
	assert.Equal(t, "## Framework\n- 导数", got)
	assert.Contains(t, model.prompts[0], "微积分 (Calculus), 导数")

	_, err = g.Summarize(context.Background(), nil)
	assert.Error(t, err)
}
