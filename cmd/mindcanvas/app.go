package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/smallnest/mindcanvas/config"
	"github.com/smallnest/mindcanvas/expand"
	"github.com/smallnest/mindcanvas/generator"
	"github.com/smallnest/mindcanvas/generator/llm"
	"github.com/smallnest/mindcanvas/generator/remote"
	"github.com/smallnest/mindcanvas/llms/openaicompat"
	"github.com/smallnest/mindcanvas/log"
	"github.com/smallnest/mindcanvas/session"
	"github.com/smallnest/mindcanvas/store"
	"github.com/smallnest/mindcanvas/store/file"
	"github.com/smallnest/mindcanvas/store/memory"
	"github.com/smallnest/mindcanvas/store/postgres"
	"github.com/smallnest/mindcanvas/store/redis"
	"github.com/smallnest/mindcanvas/store/sqlite"
)

// app holds what every command needs: configuration, logger and the resources to
// release when the command ends.
type app struct {
	cfg     *config.Config
	logger  *log.GologLogger
	closers []func()
}

func (a *app) named(name string) log.Logger {
	return a.logger.Named(name)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) retryConfig() *generator.RetryConfig {
	g := a.cfg.Generator
	if g.RetryAttempts <= 1 {
		return generator.NoRetry()
	}
	rc := generator.DefaultRetryConfig()
	rc.MaxAttempts = g.RetryAttempts
	if g.RetryDelay.Duration > 0 {
		rc.InitialDelay = g.RetryDelay.Duration
	}
	return rc
}

func (a *app) model() (llms.Model, error) {
	g := a.cfg.Generator
	switch g.Provider {
	case "openai":
		var opts []openai.Option
		if g.Model != "" {
			opts = append(opts, openai.WithModel(g.Model))
		}
		if g.APIKey != "" {
			opts = append(opts, openai.WithToken(g.APIKey))
		}
		if g.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(g.BaseURL))
		}
		return openai.New(opts...)
	case "openaicompat":
		var opts []openaicompat.Option
		if g.Model != "" {
			opts = append(opts, openaicompat.WithModel(g.Model))
		}
		if g.APIKey != "" {
			opts = append(opts, openaicompat.WithAPIKey(g.APIKey))
		}
		if g.BaseURL != "" {
			opts = append(opts, openaicompat.WithBaseURL(g.BaseURL))
		}
		return openaicompat.New(opts...)
	default:
		return nil, fmt.Errorf("provider %q has no language model", g.Provider)
	}
}

// generator builds the configured generator. Model-backed generators are wrapped in a
// circuit breaker when enabled.
func (a *app) generator() (generator.Generator, error) {
	g := a.cfg.Generator
	if g.Provider == "remote" {
		return remote.New(g.BaseURL, remote.WithLogger(a.named("remote")))
	}

	model, err := a.model()
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", g.Provider, err)
	}
	gen, err := llm.New(model,
		llm.WithMaxTokens(g.MaxTokens),
		llm.WithDetailMaxTokens(g.DetailMaxTokens),
		llm.WithMaxChildren(g.MaxChildren),
		llm.WithTemperature(g.Temperature),
		llm.WithRetry(a.retryConfig()),
		llm.WithLogger(a.named("llm")),
	)
	if err != nil {
		return nil, err
	}
	if !g.Breaker {
		return gen, nil
	}
	return generator.NewBreaker(gen, generator.DefaultBreakerConfig(), a.named("breaker")), nil
}

func (a *app) blobStore(ctx context.Context) (store.BlobStore, error) {
	s := a.cfg.Store
	switch s.Backend {
	case "memory":
		return memory.New(), nil
	case "file":
		return file.New(s.Path)
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
			return nil, err
		}
		db, err := sqlite.New(sqlite.Options{Path: s.Path, TableName: s.Table})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		return db, nil
	case "redis":
		rs := redis.New(redis.Options{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
			Prefix:   s.RedisPrefix,
			TTL:      s.RedisTTL.Duration,
		})
		a.closers = append(a.closers, func() { _ = rs.Close() })
		if err := rs.Ping(ctx); err != nil {
			return nil, err
		}
		return rs, nil
	case "postgres":
		pg, err := postgres.New(ctx, postgres.Options{ConnString: s.PostgresDSN, TableName: s.Table})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", s.Backend)
	}
}

// session opens the configured workspace. needGenerator is false for commands that
// never call the generation backend, so they work without credentials.
func (a *app) session(ctx context.Context, needGenerator bool) (*session.Session, error) {
	var gen generator.Generator = offline{}
	if needGenerator {
		var err error
		if gen, err = a.generator(); err != nil {
			return nil, err
		}
	}

	blobs, err := a.blobStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", a.cfg.Store.Backend, err)
	}
	gw := store.NewGateway(blobs, store.WithWorkspace(a.cfg.Workspace), store.WithLogger(a.named("store")))

	c := a.cfg.Canvas
	gc := a.cfg.Generator
	s := session.New(gen,
		session.WithGateway(gw),
		session.WithLogger(a.named("canvas")),
		session.WithNoticeTTL(c.NoticeTTL.Duration),
		session.WithDoubleActivationWindow(c.DoubleClickWindow.Duration),
		session.WithHistoryLimit(c.HistoryLimit),
		session.WithExpandOptions(
			expand.WithRadius(c.Radius),
			expand.WithTimeouts(gc.DetailTimeout.Duration, gc.ChildrenTimeout.Duration, gc.SummaryTimeout.Duration),
		),
	)
	s.Open(ctx)
	a.closers = append(a.closers, s.Close)
	return s, nil
}

// offline is used by commands that only edit the stored canvas.
type offline struct{}

var errOffline = &generator.CallError{Op: "offline", Err: errors.New("no generation backend configured for this command")}

func (offline) Children(context.Context, string, []string) ([]generator.Candidate, error) {
	return nil, errOffline
}

func (offline) Detail(context.Context, string, []string) (generator.DetailResult, error) {
	return generator.DetailResult{}, errOffline
}

func (offline) Summarize(context.Context, []generator.ConceptRef) (string, error) {
	return "", errOffline
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
