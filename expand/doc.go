// Package expand turns activations of concept nodes into graph mutations.
//
// An Orchestrator owns the single in-flight expansion token. Expanding a node first
// asks the generator for a detail elaboration and, when there is none, for child
// concepts that are laid out radially around the node:
//
//	orch := expand.New(graph, history, ids, gen)
//	res, err := orch.Expand(ctx, "node-1")
//
// Results that arrive after Cancel are discarded. Nothing is written to the graph until
// a response has been fully parsed and validated.
package expand
