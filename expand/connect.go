package expand

import (
	"github.com/smallnest/mindcanvas/canvas"
)

const (
	// ConnectOffset is the horizontal distance between the centroid of the selected
	// nodes and a manually connected concept.
	ConnectOffset = 200.0
	// RightmostOffset places an unconnected concept to the right of the canvas.
	RightmostOffset = 300.0
)

// Connect adds a user-submitted concept. With a selection, the new node is placed
// right of the centroid of the selected nodes and each of them gets a manual edge to
// it; those nodes are then deselected. Without a selection it is placed right of the
// rightmost node, or at the origin on an empty canvas. History is not written.
func (o *Orchestrator) Connect(concept string) (canvas.Node, error) {
	concept, err := canvas.NormalizeConcept(concept)
	if err != nil {
		return canvas.Node{}, err
	}

	selected := o.graph.Selected()
	node := canvas.Node{
		ID:       o.ids.NextNodeID(),
		Concept:  concept,
		IsCenter: true,
	}

	switch {
	case len(selected) > 0:
		var sx, sy float64
		for _, n := range selected {
			sx += n.Position.X
			sy += n.Position.Y
		}
		count := float64(len(selected))
		node.Position = canvas.Position{X: sx/count + o.connectOffset, Y: sy / count}
	default:
		if right, ok := o.graph.Rightmost(); ok {
			node.Position = canvas.Position{X: right.Position.X + o.rightmostOffset, Y: 0}
		}
	}

	edges := make([]canvas.Edge, 0, len(selected))
	for _, n := range selected {
		edges = append(edges, canvas.NewEdge(n.ID, node.ID, canvas.OriginManual))
	}
	if err := o.graph.Add([]canvas.Node{node}, edges); err != nil {
		return canvas.Node{}, err
	}
	sources := make([]string, len(selected))
	for i, n := range selected {
		sources[i] = n.ID
	}
	o.graph.Deselect(sources...)

	o.logger.Info("connected %q as %s to %d selected nodes", concept, node.ID, len(selected))
	return node, nil
}
