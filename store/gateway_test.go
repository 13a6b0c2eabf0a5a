package store_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/mindcanvas/canvas"
	"github.com/smallnest/mindcanvas/log"
	"github.com/smallnest/mindcanvas/store"
	"github.com/smallnest/mindcanvas/store/memory"
)

type failingStore struct {
	store.BlobStore
	err error
}

func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Put(context.Context, string, []byte) error  { return f.err }

// gatedStore holds the first nodes write until release is closed.
type gatedStore struct {
	*memory.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Put(ctx context.Context, key string, value []byte) error {
	if strings.HasSuffix(key, ":nodes") {
		first := false
		g.once.Do(func() { first = true })
		if first {
			close(g.entered)
			<-g.release
		}
	}
	return g.Store.Put(ctx, key, value)
}

type state struct {
	graph   *canvas.Graph
	history *canvas.History
	ids     *canvas.IDAllocator
}

func newState() state {
	ids := canvas.NewIDAllocator()
	return state{
		graph:   canvas.NewGraph(canvas.WithLogger(&log.NoOpLogger{})),
		history: canvas.NewHistory(ids),
		ids:     ids,
	}
}

// populate builds a root with two generated children and one history entry.
func populate(t *testing.T, s state) {
	t.Helper()
	root := canvas.Node{ID: s.ids.NextNodeID(), Concept: "微积分", IsCenter: true}
	a := canvas.Node{ID: s.ids.NextNodeID(), Concept: "导数", Translation: "Derivative", Position: canvas.Position{X: 0, Y: -200}}
	b := canvas.Node{ID: s.ids.NextNodeID(), Concept: "积分", Detail: "∫", HasDetail: true, Position: canvas.Position{X: 0, Y: 200}}
	require.NoError(t, s.graph.Add(
		[]canvas.Node{root, a, b},
		[]canvas.Edge{
			canvas.NewEdge(root.ID, a.ID, canvas.OriginGenerated),
			canvas.NewEdge(root.ID, b.ID, canvas.OriginGenerated),
		},
	))
	s.history.Record(root.Concept, s.graph.Nodes(), s.graph.Edges())
}

func TestGateway_RoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := memory.New()
	gw := store.NewGateway(blobs, store.WithWorkspace("ws"), store.WithLogger(&log.NoOpLogger{}))

	before := newState()
	gw.Attach(before.graph, before.history)
	populate(t, before)
	require.True(t, before.graph.ToggleSelection("node-2"))

	assert.Equal(t, []string{"ws:edges", "ws:history", "ws:nodes"}, blobs.Keys())

	after := newState()
	require.True(t, gw.Restore(ctx, after.graph, after.history, after.ids))

	if diff := cmp.Diff(before.graph.Nodes(), after.graph.Nodes()); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before.graph.Edges(), after.graph.Edges()); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 1, after.history.Len())
	assert.Equal(t, "微积分", after.history.Entries()[0].TriggerConcept)
	assert.True(t, before.history.Entries()[0].Timestamp.Equal(after.history.Entries()[0].Timestamp))

	// node-1..node-3 and history-4 were loaded.
	next := after.ids.NextNodeID()
	assert.Equal(t, "node-5", next)
	for _, n := range after.graph.Nodes() {
		assert.NotEqual(t, n.ID, next)
	}
}

func TestGateway_MissingBlobsIsFreshStart(t *testing.T) {
	s := newState()
	gw := store.NewGateway(memory.New(), store.WithLogger(&log.NoOpLogger{}))

	assert.False(t, gw.Restore(context.Background(), s.graph, s.history, s.ids))
	assert.Zero(t, s.graph.Len())
	assert.Equal(t, "node-1", s.ids.NextNodeID())
}

func TestGateway_CorruptBlobIsFreshStart(t *testing.T) {
	ctx := context.Background()
	blobs := memory.New()
	require.NoError(t, blobs.Put(ctx, "mindcanvas:nodes", []byte(`[{"id":"node-1"}]`)))
	require.NoError(t, blobs.Put(ctx, "mindcanvas:edges", []byte(`{not json`)))
	gw := store.NewGateway(blobs, store.WithLogger(&log.NoOpLogger{}))

	_, err := gw.Load(ctx)
	assert.ErrorIs(t, err, store.ErrPersistence)

	s := newState()
	assert.False(t, gw.Restore(ctx, s.graph, s.history, s.ids))
	assert.Zero(t, s.graph.Len())
}

func TestGateway_UnavailableStore(t *testing.T) {
	ctx := context.Background()
	rec := &log.Recorder{}
	gw := store.NewGateway(failingStore{err: errors.New("disk gone")}, store.WithLogger(rec))

	_, err := gw.Load(ctx)
	assert.ErrorIs(t, err, store.ErrPersistence)

	err = gw.SaveHistory(ctx, nil)
	assert.ErrorIs(t, err, store.ErrPersistence)

	// Write-through failures do not affect the live graph.
	s := newState()
	gw.Attach(s.graph, s.history)
	populate(t, s)
	assert.Equal(t, 3, s.graph.Len())
	assert.NotEmpty(t, rec.Entries(log.LogLevelError))
}

func TestGateway_DanglingEdgesDroppedOnRestore(t *testing.T) {
	ctx := context.Background()
	blobs := memory.New()
	require.NoError(t, blobs.Put(ctx, "mindcanvas:nodes", []byte(`[{"id":"node-1","position":{"x":0,"y":0},"concept":"a"}]`)))
	require.NoError(t, blobs.Put(ctx, "mindcanvas:edges", []byte(`[{"id":"edge-node-1-node-9","source":"node-1","target":"node-9","originKind":"generated"}]`)))
	gw := store.NewGateway(blobs, store.WithLogger(&log.NoOpLogger{}))

	s := newState()
	require.True(t, gw.Restore(ctx, s.graph, s.history, s.ids))
	assert.Equal(t, 1, s.graph.Len())
	assert.Empty(t, s.graph.Edges())
}

func TestGateway_Clear(t *testing.T) {
	ctx := context.Background()
	blobs := memory.New()
	gw := store.NewGateway(blobs, store.WithLogger(&log.NoOpLogger{}), store.WithWriteTimeout(time.Second))

	s := newState()
	gw.Attach(s.graph, s.history)
	populate(t, s)
	require.Len(t, blobs.Keys(), 3)

	require.NoError(t, gw.Clear(ctx))
	assert.Empty(t, blobs.Keys())
}

func TestGateway_SlowWriteIsNotOverwrittenByOlderSnapshot(t *testing.T) {
	blobs := &gatedStore{Store: memory.New(), entered: make(chan struct{}), release: make(chan struct{})}
	gw := store.NewGateway(blobs, store.WithLogger(&log.NoOpLogger{}))
	live := newState()
	gw.Attach(live.graph, live.history)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, live.graph.AddNodes(canvas.Node{ID: "node-1", Concept: "a"}))
	}()
	<-blobs.entered
	go func() {
		defer wg.Done()
		assert.NoError(t, live.graph.AddNodes(canvas.Node{ID: "node-2", Concept: "b"}))
	}()
	time.Sleep(20 * time.Millisecond)
	close(blobs.release)
	wg.Wait()

	reloaded := newState()
	require.True(t, gw.Restore(context.Background(), reloaded.graph, reloaded.history, reloaded.ids))
	assert.Equal(t, live.graph.Nodes(), reloaded.graph.Nodes())
	assert.Equal(t, 2, reloaded.graph.Len())
}
