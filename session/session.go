// Package session assembles the canvas engine into one interactive session.
//
// A Session owns the graph, the history log, the id allocator, the interaction
// machine and the expansion orchestrator, and optionally writes through to a
// store.Gateway. Input events go in through Dispatch and Tick; the resulting machine
// actions are applied to the graph. Expansions triggered by events run in the
// background so that the canvas stays interactive; Wait blocks until they finish.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/smallnest/mindcanvas/canvas"
	"github.com/smallnest/mindcanvas/expand"
	"github.com/smallnest/mindcanvas/generator"
	"github.com/smallnest/mindcanvas/interaction"
	"github.com/smallnest/mindcanvas/log"
	"github.com/smallnest/mindcanvas/store"
	"github.com/smallnest/mindcanvas/summary"
)

// Session is safe for concurrent use.
type Session struct {
	graph   *canvas.Graph
	history *canvas.History
	ids     *canvas.IDAllocator
	orch    *expand.Orchestrator
	gateway *store.Gateway
	logger  log.Logger

	now          func() time.Time
	noticeTTL    time.Duration
	window       time.Duration
	historyLimit int
	expandOpts   []expand.Option

	mu      sync.Mutex
	machine *interaction.Machine
	notices []Notice

	wg sync.WaitGroup
}

// Option configures a Session.
type Option func(*Session)

// WithGateway enables persistence through gw.
func WithGateway(gw *store.Gateway) Option {
	return func(s *Session) {
		s.gateway = gw
	}
}

// WithLogger sets the logger used by the session and its components.
func WithLogger(logger log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock sets the time source for notices and history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithNoticeTTL sets how long notices stay visible.
func WithNoticeTTL(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.noticeTTL = d
		}
	}
}

// WithDoubleActivationWindow sets the double press window of the interaction machine.
func WithDoubleActivationWindow(d time.Duration) Option {
	return func(s *Session) {
		s.window = d
	}
}

// WithHistoryLimit caps the history log.
func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		s.historyLimit = n
	}
}

// WithExpandOptions passes options to the expansion orchestrator.
func WithExpandOptions(opts ...expand.Option) Option {
	return func(s *Session) {
		s.expandOpts = append(s.expandOpts, opts...)
	}
}

// New creates a session that generates concepts with gen.
func New(gen generator.Generator, opts ...Option) *Session {
	s := &Session{
		logger:    log.GetDefaultLogger(),
		now:       time.Now,
		noticeTTL: DefaultNoticeTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ids = canvas.NewIDAllocator()
	s.graph = canvas.NewGraph(canvas.WithLogger(s.logger))

	historyOpts := []canvas.HistoryOption{canvas.WithClock(s.now)}
	if s.historyLimit > 0 {
		historyOpts = append(historyOpts, canvas.WithHistoryLimit(s.historyLimit))
	}
	s.history = canvas.NewHistory(s.ids, historyOpts...)

	expandOpts := append([]expand.Option{expand.WithLogger(s.logger)}, s.expandOpts...)
	s.orch = expand.New(s.graph, s.history, s.ids, gen, expandOpts...)

	s.machine = interaction.New(func(nodeID string) (string, bool) {
		n, ok := s.graph.Node(nodeID)
		return n.Concept, ok
	}, interaction.WithWindow(s.window))
	return s
}

// Open restores the persisted workspace, if any, and starts writing changes through.
// It reports whether a saved workspace was restored.
func (s *Session) Open(ctx context.Context) bool {
	if s.gateway == nil {
		return false
	}
	restored := s.gateway.Restore(ctx, s.graph, s.history, s.ids)
	s.gateway.Attach(s.graph, s.history)
	if restored {
		s.logger.Info("restored workspace %q: %d nodes, %d history entries",
			s.gateway.Workspace(), s.graph.Len(), s.history.Len())
	}
	return restored
}

// Close abandons any pending expansion and waits for background work to finish.
func (s *Session) Close() {
	s.orch.Cancel()
	s.wg.Wait()
}

// Graph returns the live graph.
func (s *Session) Graph() *canvas.Graph {
	return s.graph
}

// History returns the history log.
func (s *Session) History() *canvas.History {
	return s.history
}

// State returns the interaction state and the node it refers to.
func (s *Session) State() (interaction.State, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State(), s.machine.NodeID()
}

// Draft returns the editor text while editing.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Draft()
}

// Dispatch feeds an input event to the interaction machine and applies the actions it
// produces. Expansions are started in the background and outlive ctx cancellation;
// use CancelExpansion to abandon them.
func (s *Session) Dispatch(ctx context.Context, ev interaction.Event) []interaction.Action {
	if ev.At.IsZero() {
		ev.At = s.now()
	}
	s.mu.Lock()
	actions := s.machine.Handle(ev)
	s.mu.Unlock()

	s.apply(ctx, actions)
	return actions
}

// Tick advances time: pending single activations fire and expired notices drop.
func (s *Session) Tick(ctx context.Context, now time.Time) []interaction.Action {
	s.mu.Lock()
	actions := s.machine.Advance(now)
	s.expireLocked(now)
	s.mu.Unlock()

	s.apply(ctx, actions)
	return actions
}

// Wait blocks until background expansions have finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) apply(ctx context.Context, actions []interaction.Action) {
	for _, a := range actions {
		s.logger.Debug("action %s node=%s edge=%s", a.Kind, a.NodeID, a.EdgeID)
		switch a.Kind {
		case interaction.ActionToggleSelect:
			s.graph.ToggleSelection(a.NodeID)
		case interaction.ActionOpenEdit, interaction.ActionCancelEdit:
			// Editor state lives in the machine.
		case interaction.ActionExpand:
			s.startExpansion(ctx, a.NodeID)
		case interaction.ActionCommitEdit:
			_ = s.Edit(a.NodeID, a.Text)
		case interaction.ActionDelete:
			s.Delete(a.NodeID)
		case interaction.ActionDeleteEdge:
			s.DeleteEdge(a.EdgeID)
		case interaction.ActionSubmit:
			_, _ = s.Submit(a.Text)
		case interaction.ActionCancelExpansion:
			s.orch.Cancel()
		}
	}
}

func (s *Session) startExpansion(ctx context.Context, nodeID string) {
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, err := s.expand(ctx, nodeID)
		if errors.Is(err, expand.ErrBusy) {
			// The pending expansion still owns the machine.
			return
		}
		s.mu.Lock()
		s.machine.ExpansionDone(nodeID)
		s.mu.Unlock()
	}()
}

// Expand runs the expansion flow for nodeID and waits for it. Surfaced failures are
// also posted as notices.
func (s *Session) Expand(ctx context.Context, nodeID string) (expand.Result, error) {
	return s.expand(ctx, nodeID)
}

func (s *Session) expand(ctx context.Context, nodeID string) (expand.Result, error) {
	res, err := s.orch.Expand(ctx, nodeID)
	if err != nil {
		s.report("Expansion", err)
		return res, err
	}
	switch res.Outcome {
	case expand.OutcomeDetail:
		s.logger.Info("%s now shows detail", nodeID)
	case expand.OutcomeChildren:
		s.logger.Info("%s expanded into %d concepts", nodeID, len(res.Children))
	}
	return res, nil
}

// InFlight returns the node whose expansion is pending.
func (s *Session) InFlight() (string, bool) {
	return s.orch.InFlight()
}

// CancelExpansion abandons the pending expansion.
func (s *Session) CancelExpansion() bool {
	nodeID, _ := s.orch.InFlight()
	cancelled := s.orch.Cancel()
	s.mu.Lock()
	s.machine.ExpansionDone(nodeID)
	s.mu.Unlock()
	return cancelled
}

// Submit adds a typed concept, connected to the current selection.
func (s *Session) Submit(text string) (canvas.Node, error) {
	node, err := s.orch.Connect(text)
	if err != nil {
		s.report("Adding a concept", err)
		return canvas.Node{}, err
	}
	return node, nil
}

// Select toggles the selection of nodeID.
func (s *Session) Select(nodeID string) error {
	if !s.graph.ToggleSelection(nodeID) {
		return fmt.Errorf("%w: %s", canvas.ErrNodeNotFound, nodeID)
	}
	return nil
}

// Edit replaces the concept text of nodeID.
func (s *Session) Edit(nodeID, text string) error {
	concept, err := canvas.NormalizeConcept(text)
	if err != nil {
		s.report("Editing", err)
		return err
	}
	if !s.graph.UpdateNode(nodeID, canvas.NodePatch{Concept: canvas.Ptr(concept)}) {
		return fmt.Errorf("%w: %s", canvas.ErrNodeNotFound, nodeID)
	}
	return nil
}

// Delete removes nodeID and everything reachable from it. A pending expansion of a
// removed node is abandoned.
func (s *Session) Delete(nodeID string) []string {
	removed := s.graph.DeleteSubtree(nodeID)
	if pending, ok := s.orch.InFlight(); ok {
		for _, id := range removed {
			if id == pending {
				s.CancelExpansion()
				break
			}
		}
	}
	return removed
}

// DeleteEdge removes a single edge.
func (s *Session) DeleteEdge(edgeID string) bool {
	return s.graph.DeleteEdge(edgeID)
}

// Restore replaces the live graph with a history snapshot. A pending expansion is
// abandoned first.
func (s *Session) Restore(entryID string) error {
	s.CancelExpansion()
	if err := s.history.Restore(entryID, s.graph); err != nil {
		s.report("Restoring history", err)
		return err
	}
	return nil
}

// ClearHistory empties the history log. The live graph is kept.
func (s *Session) ClearHistory() {
	s.history.Clear()
}

// Reset empties the canvas, the history and the persisted workspace.
func (s *Session) Reset(ctx context.Context) error {
	s.CancelExpansion()
	s.graph.Clear()
	s.history.Clear()
	if s.gateway == nil {
		return nil
	}
	return s.gateway.Clear(ctx)
}

// Summarize asks for a summary of every concept on the canvas and renders it.
func (s *Session) Summarize(ctx context.Context) (summary.Document, error) {
	text, err := s.orch.Summarize(ctx)
	if err != nil {
		s.report("Summary", err)
		return summary.Document{}, err
	}
	doc, err := summary.Render(text)
	if err != nil {
		s.report("Summary", err)
		return summary.Document{}, err
	}
	return doc, nil
}
