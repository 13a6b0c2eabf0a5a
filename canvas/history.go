package canvas

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// DefaultHistoryLimit is the number of snapshots kept before the oldest is evicted.
const DefaultHistoryLimit = 50

// HistoryEntry is a full copy of the graph taken after a successful expansion.
type HistoryEntry struct {
	ID             string    `json:"id"`
	TriggerConcept string    `json:"triggerConcept"`
	Timestamp      time.Time `json:"timestamp"`
	Nodes          []Node    `json:"nodesSnapshot"`
	Edges          []Edge    `json:"edgesSnapshot"`
}

func (e HistoryEntry) clone() HistoryEntry {
	e.Nodes = cloneNodes(e.Nodes)
	e.Edges = cloneEdges(e.Edges)
	return e
}

// History is the bounded log of graph snapshots, most recent first.
type History struct {
	// notifyMu keeps listener delivery in mutation order.
	notifyMu  sync.Mutex
	mu        sync.RWMutex
	entries   []HistoryEntry
	limit     int
	ids       *IDAllocator
	now       func() time.Time
	listeners []HistoryListener
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithHistoryLimit overrides DefaultHistoryLimit. Values below 1 are ignored.
func WithHistoryLimit(limit int) HistoryOption {
	return func(h *History) {
		if limit > 0 {
			h.limit = limit
		}
	}
}

// WithClock sets the time source used to stamp entries.
func WithClock(now func() time.Time) HistoryOption {
	return func(h *History) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHistory creates an empty history drawing entry ids from ids.
func NewHistory(ids *IDAllocator, opts ...HistoryOption) *History {
	if ids == nil {
		ids = NewIDAllocator()
	}
	h := &History{
		entries: []HistoryEntry{},
		limit:   DefaultHistoryLimit,
		ids:     ids,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddListener registers a listener for history changes.
func (h *History) AddListener(l HistoryListener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, l)
}

func (h *History) notifyLocked() func() {
	entries := h.cloneEntriesLocked()
	listeners := slices.Clone(h.listeners)
	return func() {
		for _, l := range listeners {
			l.OnHistoryChanged(entries)
		}
	}
}

func (h *History) cloneEntriesLocked() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.clone()
	}
	return out
}

// Record prepends a snapshot of nodes and edges and evicts entries beyond the limit.
func (h *History) Record(triggerConcept string, nodes []Node, edges []Edge) HistoryEntry {
	entry := HistoryEntry{
		ID:             h.ids.NextHistoryID(),
		TriggerConcept: triggerConcept,
		Timestamp:      h.now(),
		Nodes:          snapshotNodes(nodes),
		Edges:          cloneEdges(edges),
	}

	h.notifyMu.Lock()
	defer h.notifyMu.Unlock()
	h.mu.Lock()
	h.entries = append([]HistoryEntry{entry}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
	notify := h.notifyLocked()
	h.mu.Unlock()

	notify()
	return entry.clone()
}

// Restore replaces the live graph with the snapshot of entryID and clears selection.
func (h *History) Restore(entryID string, g *Graph) error {
	entry, ok := h.Get(entryID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrHistoryNotFound, entryID)
	}
	nodes := entry.Nodes
	for i := range nodes {
		nodes[i].IsSelected = false
	}
	g.ReplaceAll(nodes, entry.Edges)
	return nil
}

// Get returns a copy of the entry with the given id.
func (h *History) Get(entryID string) (HistoryEntry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, e := range h.entries {
		if e.ID == entryID {
			return e.clone(), true
		}
	}
	return HistoryEntry{}, false
}

// Entries returns copies of all entries, most recent first.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cloneEntriesLocked()
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Clear empties the log.
func (h *History) Clear() {
	h.notifyMu.Lock()
	defer h.notifyMu.Unlock()
	h.mu.Lock()
	if len(h.entries) == 0 {
		h.mu.Unlock()
		return
	}
	h.entries = []HistoryEntry{}
	notify := h.notifyLocked()
	h.mu.Unlock()

	notify()
}

// Load replaces the entries with previously persisted ones without notifying listeners.
// Entries beyond the limit are dropped.
func (h *History) Load(entries []HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = make([]HistoryEntry, 0, min(len(entries), h.limit))
	for _, e := range entries {
		if len(h.entries) == h.limit {
			break
		}
		h.entries = append(h.entries, e.clone())
	}
}

// Label renders the age of an entry the way the history panel lists it.
func Label(entry HistoryEntry, now time.Time) string {
	age := now.Sub(entry.Timestamp)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age/time.Minute))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(age/(24*time.Hour)))
	}
}
