package canvas

import "fmt"

// Position is a point on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// OriginKind records how an edge came to exist.
type OriginKind string

const (
	// OriginGenerated marks parent to child edges created by an expansion.
	OriginGenerated OriginKind = "generated"
	// OriginManual marks edges created by connecting selected nodes to a new concept.
	OriginManual OriginKind = "manual"
)

// Node is one concept on the canvas.
type Node struct {
	ID          string   `json:"id"`
	Position    Position `json:"position"`
	Concept     string   `json:"concept"`
	Translation string   `json:"translation"`
	// Detail is the elaboration text. Empty means absent; once set it is never re-queried.
	Detail     string `json:"detail,omitempty"`
	HasDetail  bool   `json:"hasDetail"`
	IsSelected bool   `json:"isSelected"`
	IsCenter   bool   `json:"isCenter"`
	IsLoading  bool   `json:"isLoading"`
}

// HasDetailText reports whether the node already carries elaboration text.
func (n Node) HasDetailText() bool {
	return n.Detail != ""
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	Target     string     `json:"target"`
	OriginKind OriginKind `json:"originKind"`
}

// EdgeID derives the identifier of the edge from source to target. Regenerating the same
// ordered pair therefore never produces a second edge.
func EdgeID(source, target string) string {
	return fmt.Sprintf("edge-%s-%s", source, target)
}

// NewEdge builds an edge with its derived identifier.
func NewEdge(source, target string, kind OriginKind) Edge {
	return Edge{
		ID:         EdgeID(source, target),
		Source:     source,
		Target:     target,
		OriginKind: kind,
	}
}

// NodePatch is a partial update applied by Graph.UpdateNode. Nil fields are left unchanged.
type NodePatch struct {
	Position    *Position
	Concept     *string
	Translation *string
	Detail      *string
	HasDetail   *bool
	IsSelected  *bool
	IsLoading   *bool
}

func (p NodePatch) apply(n *Node) {
	if p.Position != nil {
		n.Position = *p.Position
	}
	if p.Concept != nil {
		n.Concept = *p.Concept
	}
	if p.Translation != nil {
		n.Translation = *p.Translation
	}
	if p.Detail != nil {
		n.Detail = *p.Detail
	}
	if p.HasDetail != nil {
		n.HasDetail = *p.HasDetail
	}
	if p.IsSelected != nil {
		n.IsSelected = *p.IsSelected
	}
	if p.IsLoading != nil {
		n.IsLoading = *p.IsLoading
	}
}

// Ptr returns a pointer to v. It keeps NodePatch literals short.
func Ptr[T any](v T) *T {
	return &v
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return []Node{}
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}

func cloneEdges(edges []Edge) []Edge {
	if edges == nil {
		return []Edge{}
	}
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// snapshotNodes copies nodes and drops the volatile loading flag.
func snapshotNodes(nodes []Node) []Node {
	out := cloneNodes(nodes)
	for i := range out {
		out[i].IsLoading = false
	}
	return out
}
