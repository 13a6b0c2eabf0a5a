package expand

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/mindcanvas/canvas"
)

func TestConnect_SelectedNodes(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.graph.AddNodes(
		canvas.Node{ID: "node-1", Concept: "微分", Position: canvas.Position{X: 0, Y: 0}},
		canvas.Node{ID: "node-2", Concept: "积分", Position: canvas.Position{X: 100, Y: 50}},
		canvas.Node{ID: "node-3", Concept: "级数", Position: canvas.Position{X: 900, Y: 900}},
	))
	f.ids.Reseed("node-3")
	f.graph.ToggleSelection("node-1")
	f.graph.ToggleSelection("node-2")

	n, err := f.orch.Connect("  对比 ")
	require.NoError(t, err)
	assert.Equal(t, "node-4", n.ID)
	assert.Equal(t, "对比", n.Concept)
	assert.Equal(t, canvas.Position{X: 50 + ConnectOffset, Y: 25}, n.Position)

	edges := f.graph.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, canvas.NewEdge("node-1", "node-4", canvas.OriginManual), edges[0])
	assert.Equal(t, canvas.NewEdge("node-2", "node-4", canvas.OriginManual), edges[1])

	assert.Empty(t, f.graph.Selected())
	assert.Equal(t, 4, f.graph.Len())
	assert.Zero(t, f.history.Len())
}

func TestConnect_KeepsSelectionMadeMeanwhile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.graph.AddNodes(
		canvas.Node{ID: "node-1", Concept: "a"},
		canvas.Node{ID: "node-2", Concept: "b"},
	))
	f.ids.Reseed("node-2")
	f.graph.ToggleSelection("node-1")

	var (
		once    sync.Once
		toggled sync.WaitGroup
	)
	toggled.Add(1)
	f.graph.AddListener(canvas.GraphListenerFunc(func(nodes []canvas.Node, _ []canvas.Edge) {
		if len(nodes) != 3 {
			return
		}
		// Select node-2 while Connect is still running.
		once.Do(func() {
			go func() {
				defer toggled.Done()
				f.graph.ToggleSelection("node-2")
			}()
		})
	}))

	_, err := f.orch.Connect("c")
	require.NoError(t, err)
	toggled.Wait()

	selected := f.graph.Selected()
	require.Len(t, selected, 1)
	assert.Equal(t, "node-2", selected[0].ID)
	assert.Len(t, f.graph.Edges(), 1)
}

func TestConnect_NoSelection(t *testing.T) {
	f := newFixture(t)

	first, err := f.orch.Connect("a")
	require.NoError(t, err)
	assert.Equal(t, canvas.Position{}, first.Position)

	require.True(t, f.graph.Reposition(first.ID, canvas.Position{X: 40, Y: 70}))
	second, err := f.orch.Connect("b")
	require.NoError(t, err)
	assert.Equal(t, canvas.Position{X: 40 + RightmostOffset, Y: 0}, second.Position)
	assert.Empty(t, f.graph.Edges())
}

func TestConnect_RejectsBlankConcept(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Connect(" \t ")
	assert.ErrorIs(t, err, canvas.ErrInvalidConcept)
	assert.Zero(t, f.graph.Len())
}
