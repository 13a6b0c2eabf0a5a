// MindCanvas - Growing Idea Maps with Language Models in Go
//
// MindCanvas is an interactive idea-exploration canvas. A user seeds a concept, a
// text-generation backend proposes related sub-concepts, and the user grows a directed
// graph by expanding, connecting, editing and pruning nodes. Every successful
// expansion is recorded as a snapshot so the canvas can be rolled back, and the
// whole workspace survives restarts through a pluggable blob store.
//
// # Quick Start
//
// Install the command:
//
//	go install github.com/smallnest/mindcanvas/cmd/mindcanvas@latest
//
// Basic example:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/tmc/langchaingo/llms/openai"
//
//		"github.com/smallnest/mindcanvas/generator/llm"
//		"github.com/smallnest/mindcanvas/render"
//		"github.com/smallnest/mindcanvas/session"
//	)
//
//	func main() {
//		model, _ := openai.New()
//		gen, _ := llm.New(model)
//
//		s := session.New(gen)
//		defer s.Close()
//
//		root, _ := s.Submit("微积分")
//		s.Expand(context.Background(), root.ID)
//
//		fmt.Println(render.New().Graph(s.Graph().Nodes(), s.Graph().Edges()))
//	}
//
// # Core Concepts
//
// # Canvas
//
// The canvas is a graph of concept nodes:
//   - Nodes carry a concept, its translation and optional detail text
//   - Generated edges link a parent to the children an expansion produced
//   - Manual edges link selected nodes to a concept the user typed
//
// Deleting a node removes everything reachable from it. Ids are node-N and
// history-N, drawn from one counter.
//
// # Expansion
//
// Expanding a node first asks for detail text. Concrete concepts get their detail
// and stop there; abstract ones fall through to child generation. Children are laid
// out on a circle around the parent and added in one mutation together with a
// history snapshot. Only one expansion runs at a time and a cancelled expansion
// never touches the graph.
//
// # Interaction
//
// Input arrives as timestamped events. A single press opens the editor once the
// double activation window passes, a second press inside the window expands, and a
// shift press or secondary press toggles the selection.
//
// # Package Structure
//
// canvas/
// Graph store, history log, id allocator and radial layout
//
// interaction/
// The press/edit/expand state machine
//
// expand/
// Expansion orchestrator and manual connection
//
// generator/
// The generation contract, response parsing, retry and circuit breaker
//
//	gen, _ := llm.New(model, llm.WithMaxChildren(6))
//	guarded := generator.NewBreaker(gen, generator.DefaultBreakerConfig(), logger)
//
// generator/llm, generator/remote, llms/openaicompat
// Generators backed by any langchaingo model, by a mindcanvas server, and an
// OpenAI-compatible model client
//
// store/
// Persistence gateway with memory, file, SQLite, Redis and PostgreSQL backends
//
//	db, _ := sqlite.New(sqlite.Options{Path: "./canvas.db"})
//	s := session.New(gen, session.WithGateway(store.NewGateway(db)))
//	s.Open(ctx)
//
// session/
// Wires everything together and posts transient notices for failures
//
// server/
// HTTP generation service with Prometheus metrics
//
// summary/, render/
// Summary rendering to sanitized HTML, and terminal tree rendering
//
// config/, log/
// TOML configuration with environment overrides, and leveled logging
package mindcanvas // import "github.com/smallnest/mindcanvas"
