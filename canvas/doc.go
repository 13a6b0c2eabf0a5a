// Package canvas holds the graph state engine of mindcanvas: the concept node and edge
// model, the authoritative Graph store, the bounded History of snapshots, the
// identifier allocator and the radial layout used to place generated children.
//
// Everything in this package is deterministic and free of I/O. Generation, persistence
// and input handling live in the expand, store and interaction packages and drive the
// types defined here.
//
// # Graph
//
// A Graph owns the live node and edge collections. Every edge references two existing
// nodes; DeleteSubtree removes a node together with everything reachable from it over
// outgoing edges, computed as a fixed point so that cycles created by manual connections
// terminate.
//
//	ids := canvas.NewIDAllocator()
//	g := canvas.NewGraph()
//	root := canvas.Node{ID: ids.NextNodeID(), Concept: "calculus", IsCenter: true}
//	_ = g.AddNodes(root)
//
// # History
//
// History keeps at most DefaultHistoryLimit full snapshots, most recent first. Restoring
// an entry replaces the live graph atomically.
//
//	entry := h.Record("calculus", g.Nodes(), g.Edges())
//	_ = h.Restore(entry.ID, g)
package canvas
