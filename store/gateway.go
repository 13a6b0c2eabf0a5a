package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/smallnest/mindcanvas/canvas"
	"github.com/smallnest/mindcanvas/log"
)

// DefaultWorkspace is used when no workspace is configured.
const DefaultWorkspace = "mindcanvas"

// Blob names appended to the workspace.
const (
	KeyNodes   = "nodes"
	KeyEdges   = "edges"
	KeyHistory = "history"
)

// Snapshot is the persisted state of one workspace.
type Snapshot struct {
	Nodes   []canvas.Node
	Edges   []canvas.Edge
	History []canvas.HistoryEntry
}

// IsEmpty reports whether nothing was stored.
func (s Snapshot) IsEmpty() bool {
	return len(s.Nodes) == 0 && len(s.Edges) == 0 && len(s.History) == 0
}

// Gateway loads and writes through the graph and history of one workspace.
type Gateway struct {
	store        BlobStore
	workspace    string
	writeTimeout time.Duration
	logger       log.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithWorkspace sets the key namespace.
func WithWorkspace(ws string) GatewayOption {
	return func(g *Gateway) {
		if ws != "" {
			g.workspace = ws
		}
	}
}

// WithWriteTimeout bounds each write-through.
func WithWriteTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.writeTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// NewGateway creates a Gateway over store.
func NewGateway(store BlobStore, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		store:        store,
		workspace:    DefaultWorkspace,
		writeTimeout: 5 * time.Second,
		logger:       log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Workspace returns the key namespace.
func (g *Gateway) Workspace() string {
	return g.workspace
}

// Key returns the full key of a blob.
func (g *Gateway) Key(name string) string {
	return g.workspace + ":" + name
}

// Load reads the three blobs. Missing blobs are empty. Any other failure is returned
// wrapped in ErrPersistence and no partial snapshot is returned.
func (g *Gateway) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	if err := g.read(ctx, KeyNodes, &snap.Nodes); err != nil {
		return Snapshot{}, err
	}
	if err := g.read(ctx, KeyEdges, &snap.Edges); err != nil {
		return Snapshot{}, err
	}
	if err := g.read(ctx, KeyHistory, &snap.History); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (g *Gateway) read(ctx context.Context, name string, out any) error {
	data, err := g.store.Get(ctx, g.Key(name))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrPersistence, g.Key(name), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrPersistence, g.Key(name), err)
	}
	return nil
}

func (g *Gateway) write(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersistence, g.Key(name), err)
	}
	if err := g.store.Put(ctx, g.Key(name), data); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, g.Key(name), err)
	}
	return nil
}

// Restore loads the workspace into graph, history and ids. A failed load is logged and
// treated as a fresh start. It reports whether prior state was found. The allocator is
// reseeded past every loaded node, history and snapshot id.
func (g *Gateway) Restore(ctx context.Context, graph *canvas.Graph, history *canvas.History, ids *canvas.IDAllocator) bool {
	snap, err := g.Load(ctx)
	if err != nil {
		g.logger.Warn("starting fresh, could not load workspace %s: %v", g.workspace, err)
		return false
	}
	if snap.IsEmpty() {
		g.logger.Debug("workspace %s is empty", g.workspace)
		return false
	}

	graph.ReplaceAll(snap.Nodes, snap.Edges)
	if history != nil {
		history.Load(snap.History)
	}
	if ids != nil {
		ids.Reseed(loadedIDs(snap)...)
	}

	g.logger.Info("restored workspace %s: %d nodes, %d edges, %d history entries",
		g.workspace, len(snap.Nodes), len(snap.Edges), len(snap.History))
	return true
}

func loadedIDs(snap Snapshot) []string {
	ids := make([]string, 0, len(snap.Nodes)+len(snap.History))
	for _, n := range snap.Nodes {
		ids = append(ids, n.ID)
	}
	for _, e := range snap.History {
		ids = append(ids, e.ID)
		for _, n := range e.Nodes {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// SaveGraph writes the node and edge blobs.
func (g *Gateway) SaveGraph(ctx context.Context, nodes []canvas.Node, edges []canvas.Edge) error {
	if err := g.write(ctx, KeyNodes, nodes); err != nil {
		return err
	}
	return g.write(ctx, KeyEdges, edges)
}

// SaveHistory writes the history blob.
func (g *Gateway) SaveHistory(ctx context.Context, entries []canvas.HistoryEntry) error {
	return g.write(ctx, KeyHistory, entries)
}

// Clear deletes all three blobs of the workspace.
func (g *Gateway) Clear(ctx context.Context) error {
	var errs []error
	for _, name := range []string{KeyNodes, KeyEdges, KeyHistory} {
		if err := g.store.Delete(ctx, g.Key(name)); err != nil {
			errs = append(errs, fmt.Errorf("%w: delete %s: %v", ErrPersistence, g.Key(name), err))
		}
	}
	return errors.Join(errs...)
}

// Attach subscribes the gateway to graph and history changes. Write failures are
// logged only.
func (g *Gateway) Attach(graph *canvas.Graph, history *canvas.History) {
	if graph != nil {
		graph.AddListener(canvas.GraphListenerFunc(func(nodes []canvas.Node, edges []canvas.Edge) {
			ctx, cancel := g.writeContext()
			defer cancel()
			if err := g.SaveGraph(ctx, nodes, edges); err != nil {
				g.logger.Error("graph write-through failed: %v", err)
			}
		}))
	}
	if history != nil {
		history.AddListener(canvas.HistoryListenerFunc(func(entries []canvas.HistoryEntry) {
			ctx, cancel := g.writeContext()
			defer cancel()
			if err := g.SaveHistory(ctx, entries); err != nil {
				g.logger.Error("history write-through failed: %v", err)
			}
		}))
	}
}

func (g *Gateway) writeContext() (context.Context, context.CancelFunc) {
	if g.writeTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), g.writeTimeout)
}
