package canvas

import (
	"fmt"
	"slices"
	"sync"

	"github.com/smallnest/mindcanvas/log"
)

// Graph is the authoritative store of the live nodes and edges. It is safe for
// concurrent use. Listeners run after the data lock is released but are delivered one
// mutation at a time, in mutation order, so they must not mutate the graph themselves.
type Graph struct {
	// notifyMu serializes mutations together with their listener delivery.
	notifyMu  sync.Mutex
	mu        sync.RWMutex
	nodes     []Node
	edges     []Edge
	listeners []GraphListener
	logger    log.Logger
}

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithLogger sets the logger used by the graph.
func WithLogger(logger log.Logger) GraphOption {
	return func(g *Graph) {
		g.logger = logger
	}
}

// NewGraph creates an empty graph.
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		nodes:  []Node{},
		edges:  []Edge{},
		logger: log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddListener registers a listener for graph changes.
func (g *Graph) AddListener(l GraphListener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, l)
}

// mutate runs fn under the write lock and notifies listeners when fn reports a change.
// The next mutation starts only after every listener has seen this one.
func (g *Graph) mutate(fn func() (bool, error)) error {
	g.notifyMu.Lock()
	defer g.notifyMu.Unlock()

	g.mu.Lock()
	changed, err := fn()
	if err != nil || !changed {
		g.mu.Unlock()
		return err
	}
	nodes := cloneNodes(g.nodes)
	edges := cloneEdges(g.edges)
	listeners := slices.Clone(g.listeners)
	g.mu.Unlock()

	for _, l := range listeners {
		l.OnGraphChanged(nodes, edges)
	}
	return nil
}

func (g *Graph) indexOf(id string) int {
	return slices.IndexFunc(g.nodes, func(n Node) bool { return n.ID == id })
}

func (g *Graph) hasEdge(id string) bool {
	return slices.ContainsFunc(g.edges, func(e Edge) bool { return e.ID == id })
}

// Add appends nodes and then edges as one mutation. Nothing is applied when a node id
// is duplicated or an edge references a node that exists neither in the graph nor in
// the batch. Edges whose id is already present are skipped.
func (g *Graph) Add(nodes []Node, edges []Edge) error {
	return g.mutate(func() (bool, error) {
		known := make(map[string]bool, len(g.nodes)+len(nodes))
		for _, n := range g.nodes {
			known[n.ID] = true
		}
		for _, n := range nodes {
			if n.ID == "" || known[n.ID] {
				return false, fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID)
			}
			known[n.ID] = true
		}

		seen := make(map[string]bool, len(edges))
		fresh := make([]Edge, 0, len(edges))
		for _, e := range edges {
			if !known[e.Source] || !known[e.Target] {
				return false, fmt.Errorf("%w: %s -> %s", ErrDanglingEdge, e.Source, e.Target)
			}
			if e.ID == "" {
				e.ID = EdgeID(e.Source, e.Target)
			}
			if seen[e.ID] || g.hasEdge(e.ID) {
				continue
			}
			seen[e.ID] = true
			fresh = append(fresh, e)
		}

		if len(nodes) == 0 && len(fresh) == 0 {
			return false, nil
		}
		g.nodes = append(g.nodes, nodes...)
		g.edges = append(g.edges, fresh...)
		return true, nil
	})
}

// AddNodes appends nodes.
func (g *Graph) AddNodes(nodes ...Node) error {
	return g.Add(nodes, nil)
}

// AddEdges appends edges between existing nodes.
func (g *Graph) AddEdges(edges ...Edge) error {
	return g.Add(nil, edges)
}

// UpdateNode applies patch to the node with the given id and reports whether it exists.
// An unknown id is a no-op. Setting IsLoading clears the flag on every other node.
func (g *Graph) UpdateNode(id string, patch NodePatch) bool {
	found := false
	_ = g.mutate(func() (bool, error) {
		i := g.indexOf(id)
		if i < 0 {
			return false, nil
		}
		found = true
		if patch.IsLoading != nil && *patch.IsLoading {
			for j := range g.nodes {
				g.nodes[j].IsLoading = false
			}
		}
		patch.apply(&g.nodes[i])
		return true, nil
	})
	return found
}

// Reposition moves a node, for example after the user dragged it.
func (g *Graph) Reposition(id string, pos Position) bool {
	return g.UpdateNode(id, NodePatch{Position: &pos})
}

// ToggleSelection flips the selection flag of a node.
func (g *Graph) ToggleSelection(id string) bool {
	found := false
	_ = g.mutate(func() (bool, error) {
		i := g.indexOf(id)
		if i < 0 {
			return false, nil
		}
		found = true
		g.nodes[i].IsSelected = !g.nodes[i].IsSelected
		return true, nil
	})
	return found
}

// ClearSelection deselects every node.
func (g *Graph) ClearSelection() {
	_ = g.mutate(func() (bool, error) {
		changed := false
		for i := range g.nodes {
			if g.nodes[i].IsSelected {
				g.nodes[i].IsSelected = false
				changed = true
			}
		}
		return changed, nil
	})
}

// Deselect clears the selection flag of the given nodes only.
func (g *Graph) Deselect(ids ...string) {
	_ = g.mutate(func() (bool, error) {
		changed := false
		for _, id := range ids {
			if i := g.indexOf(id); i >= 0 && g.nodes[i].IsSelected {
				g.nodes[i].IsSelected = false
				changed = true
			}
		}
		return changed, nil
	})
}

// DeleteSubtree removes rootID and every node reachable from it over outgoing edges,
// together with all edges touching a removed node. It returns the removed node ids in
// graph order.
func (g *Graph) DeleteSubtree(rootID string) []string {
	var removed []string
	_ = g.mutate(func() (bool, error) {
		if g.indexOf(rootID) < 0 {
			return false, nil
		}

		marked := map[string]bool{rootID: true}
		for changed := true; changed; {
			changed = false
			for _, e := range g.edges {
				if marked[e.Source] && !marked[e.Target] {
					marked[e.Target] = true
					changed = true
				}
			}
		}

		g.nodes = slices.DeleteFunc(g.nodes, func(n Node) bool {
			if marked[n.ID] {
				removed = append(removed, n.ID)
				return true
			}
			return false
		})
		g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool {
			return marked[e.Source] || marked[e.Target]
		})
		return true, nil
	})
	return removed
}

// DeleteEdge removes a single edge and reports whether it existed. Endpoints are kept.
func (g *Graph) DeleteEdge(id string) bool {
	found := false
	_ = g.mutate(func() (bool, error) {
		before := len(g.edges)
		g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.ID == id })
		found = len(g.edges) != before
		return found, nil
	})
	return found
}

// ReplaceAll swaps in a new node and edge collection, as done by history restore and
// persistence load. Duplicate nodes, duplicate edges and dangling edges are dropped so
// the live invariants hold even for corrupt input; the number dropped is returned.
// Loading flags are cleared.
func (g *Graph) ReplaceAll(nodes []Node, edges []Edge) int {
	dropped := 0
	_ = g.mutate(func() (bool, error) {
		known := make(map[string]bool, len(nodes))
		keptNodes := make([]Node, 0, len(nodes))
		for _, n := range nodes {
			if n.ID == "" || known[n.ID] {
				dropped++
				continue
			}
			known[n.ID] = true
			n.IsLoading = false
			keptNodes = append(keptNodes, n)
		}

		seen := make(map[string]bool, len(edges))
		keptEdges := make([]Edge, 0, len(edges))
		for _, e := range edges {
			if !known[e.Source] || !known[e.Target] || seen[e.ID] {
				dropped++
				continue
			}
			seen[e.ID] = true
			keptEdges = append(keptEdges, e)
		}

		g.nodes = keptNodes
		g.edges = keptEdges
		return true, nil
	})
	if dropped > 0 {
		g.logger.Warn("canvas: dropped %d inconsistent nodes/edges while replacing graph", dropped)
	}
	return dropped
}

// Clear removes every node and edge.
func (g *Graph) Clear() {
	_ = g.mutate(func() (bool, error) {
		if len(g.nodes) == 0 && len(g.edges) == 0 {
			return false, nil
		}
		g.nodes = []Node{}
		g.edges = []Edge{}
		return true, nil
	})
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if i := g.indexOf(id); i >= 0 {
		return g.nodes[i], true
	}
	return Node{}, false
}

// Nodes returns a copy of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return cloneNodes(g.nodes)
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return cloneEdges(g.edges)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Selected returns the selected nodes in insertion order.
func (g *Graph) Selected() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Node
	for _, n := range g.nodes {
		if n.IsSelected {
			out = append(out, n)
		}
	}
	return out
}

// Loading returns the node currently flagged as loading, if any.
func (g *Graph) Loading() (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, n := range g.nodes {
		if n.IsLoading {
			return n, true
		}
	}
	return Node{}, false
}

// Parents returns the sources of all edges pointing at id, in edge order.
func (g *Graph) Parents(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []string
	for _, e := range g.edges {
		if e.Target == id {
			out = append(out, e.Source)
		}
	}
	return out
}

// Children returns the targets of all edges leaving id, in edge order.
func (g *Graph) Children(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []string
	for _, e := range g.edges {
		if e.Source == id {
			out = append(out, e.Target)
		}
	}
	return out
}

// HasGeneratedChildren reports whether id already has children from an expansion.
func (g *Graph) HasGeneratedChildren(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.ContainsFunc(g.edges, func(e Edge) bool {
		return e.Source == id && e.OriginKind == OriginGenerated
	})
}

// ContextPath returns the concepts of the ancestors of id, root first, excluding id
// itself. When a node has several parents the earliest incoming edge is followed. The
// walk stops at a node without parents or when it would revisit a node.
func (g *Graph) ContextPath(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var path []string
	visited := map[string]bool{id: true}
	cur := id
	for {
		i := slices.IndexFunc(g.edges, func(e Edge) bool { return e.Target == cur })
		if i < 0 {
			break
		}
		parent := g.edges[i].Source
		if visited[parent] {
			break
		}
		visited[parent] = true
		if j := g.indexOf(parent); j >= 0 {
			path = append(path, g.nodes[j].Concept)
		}
		cur = parent
	}
	slices.Reverse(path)
	return path
}

// Rightmost returns the node with the largest X coordinate.
func (g *Graph) Rightmost() (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.nodes) == 0 {
		return Node{}, false
	}
	best := g.nodes[0]
	for _, n := range g.nodes[1:] {
		if n.Position.X > best.Position.X {
			best = n
		}
	}
	return best, true
}
