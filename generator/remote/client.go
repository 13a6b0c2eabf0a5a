// Package remote implements generator.Generator by calling a mindcanvas generation
// server over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/smallnest/mindcanvas/generator"
	"github.com/smallnest/mindcanvas/log"
)

// GeneratePath is the endpoint served by the generation server.
const GeneratePath = "/api/generate"

// ErrStatus is wrapped by the CallError returned for a non-2xx response.
var ErrStatus = errors.New("unexpected status")

// Client is a generator.Generator backed by a remote generation server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      *generator.RetryConfig
	logger     log.Logger
}

var _ generator.Generator = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRetry sets the retry policy. The server retries model calls itself, so the
// client performs a single attempt by default.
func WithRetry(config *generator.RetryConfig) Option {
	return func(c *Client) {
		c.retry = config
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("remote: base URL is required")
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		retry:      generator.NoRetry(),
		logger:     log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Children implements generator.Generator.
func (c *Client) Children(ctx context.Context, concept string, contextPath []string) ([]generator.Candidate, error) {
	req := Request{Word: concept, ParentPath: contextPath}
	return generator.Retry(ctx, c.retry, generator.OpChildren, func(ctx context.Context) ([]generator.Candidate, error) {
		var resp ChildrenResponse
		if err := c.post(ctx, generator.OpChildren, req, &resp); err != nil {
			return nil, err
		}
		return generator.ValidateCandidates(CandidatesFromWords(resp.Words))
	})
}

// Detail implements generator.Generator.
func (c *Client) Detail(ctx context.Context, concept string, contextPath []string) (generator.DetailResult, error) {
	req := Request{Word: concept, Action: ActionDetail, ParentPath: contextPath}
	return generator.Retry(ctx, c.retry, generator.OpDetail, func(ctx context.Context) (generator.DetailResult, error) {
		var raw json.RawMessage
		if err := c.post(ctx, generator.OpDetail, req, &raw); err != nil {
			return generator.DetailResult{}, err
		}
		return generator.ParseDetail(string(raw))
	})
}

// Summarize implements generator.Generator.
func (c *Client) Summarize(ctx context.Context, concepts []generator.ConceptRef) (string, error) {
	words := make([]Word, len(concepts))
	for i, ref := range concepts {
		words[i] = Word{Chinese: ref.Concept, English: ref.Translation}
	}
	req := Request{Action: ActionSummarize, AllNodes: words}
	return generator.Retry(ctx, c.retry, generator.OpSummarize, func(ctx context.Context) (string, error) {
		var resp SummaryResponse
		if err := c.post(ctx, generator.OpSummarize, req, &resp); err != nil {
			return "", err
		}
		return generator.ParseSummary(resp.Summary)
	})
}

// post sends body to the generate endpoint and decodes a 2xx answer into out.
func (c *Client) post(ctx context.Context, op string, body Request, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &generator.CallError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+GeneratePath, bytes.NewReader(payload))
	if err != nil {
		return &generator.CallError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &generator.CallError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &generator.CallError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return &generator.CallError{Op: op, Err: fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, apiErr.Error)}
		}
		return &generator.CallError{Op: op, Err: fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Debug("remote %s: undecodable body: %s", op, string(data))
		return &generator.ParseError{Op: op, Raw: string(data), Err: err}
	}
	return nil
}
