package canvas

// GraphListener is notified after every graph mutation with a copy of the post-mutation
// node and edge collections.
type GraphListener interface {
	OnGraphChanged(nodes []Node, edges []Edge)
}

// GraphListenerFunc is a function adapter for GraphListener
type GraphListenerFunc func(nodes []Node, edges []Edge)

// OnGraphChanged implements the GraphListener interface
func (f GraphListenerFunc) OnGraphChanged(nodes []Node, edges []Edge) {
	f(nodes, edges)
}

// HistoryListener is notified after every history mutation with the entries, most
// recent first.
type HistoryListener interface {
	OnHistoryChanged(entries []HistoryEntry)
}

// HistoryListenerFunc is a function adapter for HistoryListener
type HistoryListenerFunc func(entries []HistoryEntry)

// OnHistoryChanged implements the HistoryListener interface
func (f HistoryListenerFunc) OnHistoryChanged(entries []HistoryEntry) {
	f(entries)
}
