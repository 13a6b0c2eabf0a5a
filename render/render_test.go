package render

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/smallnest/mindcanvas/canvas"
)

func plainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{
		Concept: s, Center: s, Selected: s, Translation: s, Detail: s.PaddingLeft(2),
		ID: s, Enumerator: s.MarginRight(1), Manual: s, Muted: s,
	}
}

func TestRenderer_Graph(t *testing.T) {
	nodes := []canvas.Node{
		{ID: "node-1", Concept: "微积分", IsCenter: true},
		{ID: "node-2", Concept: "导数", Translation: "Derivative", IsSelected: true},
		{ID: "node-3", Concept: "积分", Detail: "∫f(x)dx", HasDetail: true},
		{ID: "node-4", Concept: "对比", IsCenter: true},
	}
	edges := []canvas.Edge{
		canvas.NewEdge("node-1", "node-2", canvas.OriginGenerated),
		canvas.NewEdge("node-1", "node-3", canvas.OriginGenerated),
		canvas.NewEdge("node-2", "node-4", canvas.OriginManual),
		canvas.NewEdge("node-3", "node-4", canvas.OriginManual),
	}

	out := New(WithStyles(plainStyles())).Graph(nodes, edges)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "微积分 [node-1]", lines[0])
	assert.Contains(t, out, "* 导数 (Derivative) [node-2]")
	assert.Contains(t, out, "⇢ 对比 [node-4]")
	assert.Contains(t, out, "≡ ∫f(x)dx")
	assert.Contains(t, out, "↺ 对比 [node-4]")
	assert.Equal(t, 1, strings.Count(out, "⇢ 对比"))
}

func TestRenderer_GraphWithoutIDsOrDetail(t *testing.T) {
	nodes := []canvas.Node{
		{ID: "node-1", Concept: "a", Detail: "hidden", HasDetail: true, IsLoading: true},
	}
	out := New(WithStyles(plainStyles()), WithIDs(false), WithDetail(false)).Graph(nodes, nil)
	assert.Equal(t, "a …", out)
}

func TestRenderer_GraphCycle(t *testing.T) {
	nodes := []canvas.Node{{ID: "node-1", Concept: "a"}, {ID: "node-2", Concept: "b"}}
	edges := []canvas.Edge{
		canvas.NewEdge("node-1", "node-2", canvas.OriginManual),
		canvas.NewEdge("node-2", "node-1", canvas.OriginManual),
	}
	out := New(WithStyles(plainStyles())).Graph(nodes, edges)
	assert.True(t, strings.HasPrefix(out, "a [node-1]"))
	assert.Contains(t, out, "↺ a [node-1]")
}

func TestRenderer_Empty(t *testing.T) {
	r := New(WithStyles(plainStyles()))
	assert.Equal(t, "(empty canvas)", r.Graph(nil, nil))
	assert.Equal(t, "(no history)", r.History(nil, time.Now()))
}

func TestRenderer_History(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []canvas.HistoryEntry{
		{ID: "history-9", TriggerConcept: "导数", Timestamp: now.Add(-3 * time.Minute), Nodes: make([]canvas.Node, 4)},
		{ID: "history-2", TriggerConcept: "微积分", Timestamp: now.Add(-2 * time.Hour), Nodes: make([]canvas.Node, 7)},
	}

	out := New(WithStyles(plainStyles())).History(entries, now)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "导数")
	assert.Contains(t, lines[0], "4 nodes")
	assert.Contains(t, lines[1], "微积分")
	assert.Contains(t, lines[1], "7 nodes")
}
