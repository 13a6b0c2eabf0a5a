package expand

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/smallnest/mindcanvas/canvas"
	"github.com/smallnest/mindcanvas/generator"
	"github.com/smallnest/mindcanvas/log"
)

// Default timeouts for the generation calls.
const (
	DefaultDetailTimeout   = 10 * time.Second
	DefaultChildrenTimeout = 15 * time.Second
	DefaultSummaryTimeout  = 15 * time.Second
)

var (
	// ErrBusy is returned when another expansion is already in flight.
	ErrBusy = errors.New("expand: another expansion is in progress")
	// ErrAbandoned is returned when the expansion was cancelled before its result
	// could be applied.
	ErrAbandoned = errors.New("expand: expansion was cancelled")
	// ErrNothingToSummarize is returned by Summarize on an empty graph.
	ErrNothingToSummarize = errors.New("expand: nothing to summarize")
)

// Outcome says what an expansion did to the graph.
type Outcome int

const (
	// OutcomeSkipped means the node already had detail text.
	OutcomeSkipped Outcome = iota
	// OutcomeDetail means the node gained detail text.
	OutcomeDetail
	// OutcomeChildren means child nodes were added.
	OutcomeChildren
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDetail:
		return "detail"
	case OutcomeChildren:
		return "children"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result describes a finished expansion.
type Result struct {
	NodeID    string
	Outcome   Outcome
	Detail    string
	Children  []string
	HistoryID string
}

// request is the in-flight token. Results are applied only while it is current.
type request struct {
	nodeID string
	seq    uint64
	cancel context.CancelFunc
}

// Orchestrator serializes expansions and applies their results to the graph.
type Orchestrator struct {
	graph   *canvas.Graph
	history *canvas.History
	ids     *canvas.IDAllocator
	gen     generator.Generator

	radius          float64
	connectOffset   float64
	rightmostOffset float64
	detailTimeout   time.Duration
	childrenTimeout time.Duration
	summaryTimeout  time.Duration
	logger          log.Logger

	mu       sync.Mutex
	rng      *rand.Rand
	inflight *request
	seq      uint64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRadius sets the distance between a parent and its generated children.
func WithRadius(r float64) Option {
	return func(o *Orchestrator) {
		if r > 0 {
			o.radius = r
		}
	}
}

// WithTimeouts sets the per-call timeouts. Zero values keep the defaults.
func WithTimeouts(detail, children, summary time.Duration) Option {
	return func(o *Orchestrator) {
		if detail > 0 {
			o.detailTimeout = detail
		}
		if children > 0 {
			o.childrenTimeout = children
		}
		if summary > 0 {
			o.summaryTimeout = summary
		}
	}
}

// WithRand sets the source of randomized start angles.
func WithRand(rng *rand.Rand) Option {
	return func(o *Orchestrator) {
		o.rng = rng
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator. history may be nil, in which case expansions are not
// recorded.
func New(graph *canvas.Graph, history *canvas.History, ids *canvas.IDAllocator, gen generator.Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		graph:           graph,
		history:         history,
		ids:             ids,
		gen:             gen,
		radius:          canvas.DefaultRadius,
		connectOffset:   ConnectOffset,
		rightmostOffset: RightmostOffset,
		detailTimeout:   DefaultDetailTimeout,
		childrenTimeout: DefaultChildrenTimeout,
		summaryTimeout:  DefaultSummaryTimeout,
		logger:          log.GetDefaultLogger(),
		rng:             rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.ids == nil {
		o.ids = canvas.NewIDAllocator()
	}
	return o
}

// InFlight returns the node whose expansion is pending.
func (o *Orchestrator) InFlight() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight == nil {
		return "", false
	}
	return o.inflight.nodeID, true
}

// Cancel abandons the pending expansion. The generator call is cancelled and any
// result that still arrives is discarded. It reports whether anything was pending.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	req := o.inflight
	if req == nil {
		return false
	}
	o.inflight = nil
	req.cancel()
	o.graph.UpdateNode(req.nodeID, canvas.NodePatch{IsLoading: canvas.Ptr(false)})
	o.logger.Info("expansion of %s cancelled", req.nodeID)
	return true
}

// acquire takes the expansion token and flags nodeID as loading in one step, so a
// concurrent Cancel always observes the flag it has to clear.
func (o *Orchestrator) acquire(ctx context.Context, nodeID string) (*request, context.Context, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrBusy, o.inflight.nodeID)
	}
	reqCtx, cancel := context.WithCancel(ctx)
	o.seq++
	o.inflight = &request{nodeID: nodeID, seq: o.seq, cancel: cancel}
	o.graph.UpdateNode(nodeID, canvas.NodePatch{IsLoading: canvas.Ptr(true)})
	return o.inflight, reqCtx, nil
}

func (o *Orchestrator) release(req *request) {
	o.mu.Lock()
	defer o.mu.Unlock()
	req.cancel()
	// Cancel has already cleared the flag for an abandoned request.
	if o.inflight == req {
		o.inflight = nil
		o.graph.UpdateNode(req.nodeID, canvas.NodePatch{IsLoading: canvas.Ptr(false)})
	}
}

// applyIfCurrent runs fn while req is still the in-flight request.
func (o *Orchestrator) applyIfCurrent(req *request, fn func() error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight != req {
		return ErrAbandoned
	}
	return fn()
}

// Expand runs the detail-then-children flow for nodeID. A node that already has detail
// text is left alone and yields OutcomeSkipped without any generator call.
func (o *Orchestrator) Expand(ctx context.Context, nodeID string) (Result, error) {
	node, ok := o.graph.Node(nodeID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", canvas.ErrNodeNotFound, nodeID)
	}
	if node.HasDetailText() {
		return Result{NodeID: nodeID, Outcome: OutcomeSkipped}, nil
	}

	req, reqCtx, err := o.acquire(ctx, nodeID)
	if err != nil {
		return Result{}, err
	}
	defer o.release(req)

	contextPath := o.graph.ContextPath(nodeID)
	o.logger.Debug("expanding %s (%q) with context %v", nodeID, node.Concept, contextPath)

	if res, done, err := o.tryDetail(reqCtx, req, node, contextPath); done {
		return res, err
	}

	childCtx, cancel := context.WithTimeout(reqCtx, o.childrenTimeout)
	candidates, err := o.gen.Children(childCtx, node.Concept, contextPath)
	cancel()
	if err != nil {
		if reqCtx.Err() != nil && !o.isCurrent(req) {
			return Result{}, ErrAbandoned
		}
		o.logger.Warn("children of %s failed: %v", nodeID, err)
		return Result{}, generator.Classify(generator.OpChildren, err)
	}
	if len(candidates) == 0 {
		o.logger.Warn("children of %s came back empty", nodeID)
		return Result{}, &generator.ParseError{Op: generator.OpChildren, Err: generator.ErrEmptyResult}
	}

	var res Result
	err = o.applyIfCurrent(req, func() error {
		var err error
		res, err = o.addChildren(nodeID, candidates)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	o.logger.Info("expanded %s into %d children", nodeID, len(res.Children))
	return res, nil
}

// tryDetail asks for detail text. done is false when the flow should fall through to
// children generation.
func (o *Orchestrator) tryDetail(ctx context.Context, req *request, node canvas.Node, contextPath []string) (Result, bool, error) {
	detailCtx, cancel := context.WithTimeout(ctx, o.detailTimeout)
	detail, err := o.gen.Detail(detailCtx, node.Concept, contextPath)
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			if !o.isCurrent(req) {
				return Result{}, true, ErrAbandoned
			}
			return Result{}, true, generator.Classify(generator.OpDetail, ctx.Err())
		}
		o.logger.Info("detail of %s unavailable, generating children: %v", node.ID, err)
		return Result{}, false, nil
	}
	if !detail.HasDetail || detail.Detail == "" {
		return Result{}, false, nil
	}

	err = o.applyIfCurrent(req, func() error {
		if !o.graph.UpdateNode(node.ID, canvas.NodePatch{
			Detail:    canvas.Ptr(detail.Detail),
			HasDetail: canvas.Ptr(true),
		}) {
			return fmt.Errorf("%w: %s", canvas.ErrNodeNotFound, node.ID)
		}
		return nil
	})
	if err != nil {
		return Result{}, true, err
	}
	o.logger.Info("node %s gained detail", node.ID)
	return Result{NodeID: node.ID, Outcome: OutcomeDetail, Detail: detail.Detail}, true, nil
}

func (o *Orchestrator) isCurrent(req *request) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight == req
}

// addChildren lays out candidates around the current position of parentID, adds them
// with generated edges in one mutation and records history. Called with o.mu held.
func (o *Orchestrator) addChildren(parentID string, candidates []generator.Candidate) (Result, error) {
	parent, ok := o.graph.Node(parentID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", canvas.ErrNodeNotFound, parentID)
	}

	angle := canvas.StartAngle(o.graph.HasGeneratedChildren(parentID), o.rng)
	positions := canvas.RadialPositions(parent.Position.X, parent.Position.Y, len(candidates), o.radius, angle)

	nodes := make([]canvas.Node, len(candidates))
	edges := make([]canvas.Edge, len(candidates))
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		id := o.ids.NextNodeID()
		ids[i] = id
		nodes[i] = canvas.Node{
			ID:          id,
			Position:    positions[i],
			Concept:     c.Concept,
			Translation: c.Translation,
			Detail:      c.Detail,
			HasDetail:   c.HasDetail && c.Detail != "",
		}
		edges[i] = canvas.NewEdge(parentID, id, canvas.OriginGenerated)
	}

	if err := o.graph.Add(nodes, edges); err != nil {
		return Result{}, err
	}

	res := Result{NodeID: parentID, Outcome: OutcomeChildren, Children: ids}
	if o.history != nil {
		entry := o.history.Record(parent.Concept, o.graph.Nodes(), o.graph.Edges())
		res.HistoryID = entry.ID
	}
	return res, nil
}

// Summarize asks the generator for a markdown summary of every concept on the canvas.
func (o *Orchestrator) Summarize(ctx context.Context) (string, error) {
	nodes := o.graph.Nodes()
	if len(nodes) == 0 {
		return "", ErrNothingToSummarize
	}
	refs := make([]generator.ConceptRef, len(nodes))
	for i, n := range nodes {
		refs[i] = generator.ConceptRef{Concept: n.Concept, Translation: n.Translation}
	}

	ctx, cancel := context.WithTimeout(ctx, o.summaryTimeout)
	defer cancel()
	text, err := o.gen.Summarize(ctx, refs)
	if err != nil {
		return "", generator.Classify(generator.OpSummarize, err)
	}
	return text, nil
}
