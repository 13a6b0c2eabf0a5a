// Package interaction tells single, double and secondary activations of canvas nodes
// apart.
//
// The Machine is a deterministic finite-state machine. It never reads the wall clock:
// every Event carries its own timestamp and pending timers are flushed by Advance, so
// a driver (or a test) feeds time explicitly.
package interaction

import (
	"fmt"
	"time"
)

// DefaultDoubleActivationWindow is the time within which a second press on the same
// node counts as a double activation.
const DefaultDoubleActivationWindow = 250 * time.Millisecond

// State is the current mode of the Machine.
type State int

const (
	StateIdle State = iota
	StateAwaitingSecondClick
	StateEditing
	StateAwaitingExpansion
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingSecondClick:
		return "awaiting-second-click"
	case StateEditing:
		return "editing"
	case StateAwaitingExpansion:
		return "awaiting-expansion"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EventKind enumerates user input.
type EventKind int

const (
	// EventPress is a primary pointer press on a node.
	EventPress EventKind = iota
	// EventSecondaryPress is a right click or context action on a node.
	EventSecondaryPress
	// EventEdgePress is a press on an edge.
	EventEdgePress
	// EventSubmit submits concept text from the input box.
	EventSubmit
	// EventDraftChange replaces the draft while editing.
	EventDraftChange
	// EventSave commits the draft.
	EventSave
	// EventDelete deletes the node being edited.
	EventDelete
	// EventCancel leaves the editor, or dismisses a pending expansion.
	EventCancel
)

var eventNames = map[EventKind]string{
	EventPress:          "press",
	EventSecondaryPress: "secondary-press",
	EventEdgePress:      "edge-press",
	EventSubmit:         "submit",
	EventDraftChange:    "draft",
	EventSave:           "save",
	EventDelete:         "delete",
	EventCancel:         "cancel",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// ParseEventKind is the inverse of EventKind.String.
func ParseEventKind(s string) (EventKind, error) {
	for k, name := range eventNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("interaction: unknown event %q", s)
}

// Event is one timestamped user input.
type Event struct {
	Kind   EventKind
	At     time.Time
	NodeID string
	EdgeID string
	// Shift reports whether the modifier key was held during a press.
	Shift bool
	// Text carries submitted or draft text.
	Text string
}

// ActionKind enumerates what the Machine asks its driver to do.
type ActionKind int

const (
	ActionToggleSelect ActionKind = iota
	ActionOpenEdit
	ActionExpand
	ActionCommitEdit
	ActionDelete
	ActionCancelEdit
	ActionDeleteEdge
	ActionSubmit
	ActionCancelExpansion
)

func (k ActionKind) String() string {
	switch k {
	case ActionToggleSelect:
		return "toggle-select"
	case ActionOpenEdit:
		return "open-edit"
	case ActionExpand:
		return "expand"
	case ActionCommitEdit:
		return "commit-edit"
	case ActionDelete:
		return "delete"
	case ActionCancelEdit:
		return "cancel-edit"
	case ActionDeleteEdge:
		return "delete-edge"
	case ActionSubmit:
		return "submit"
	case ActionCancelExpansion:
		return "cancel-expansion"
	default:
		return fmt.Sprintf("action(%d)", int(k))
	}
}

// Action is an effect requested by the Machine.
type Action struct {
	Kind   ActionKind
	NodeID string
	EdgeID string
	Text   string
}

// ConceptFunc returns the current concept text of a node.
type ConceptFunc func(nodeID string) (string, bool)

// Machine is the interaction state machine. It is not safe for concurrent use.
type Machine struct {
	window  time.Duration
	concept ConceptFunc

	state    State
	nodeID   string
	deadline time.Time
	shift    bool
	draft    string

	// expanding is the node whose expansion is pending. Presses on other nodes are
	// still handled while it is set.
	expanding string
}

// Option configures a Machine.
type Option func(*Machine)

// WithWindow sets the double activation window.
func WithWindow(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.window = d
		}
	}
}

// New creates a Machine. concept pre-fills the editor draft and may be nil.
func New(concept ConceptFunc, opts ...Option) *Machine {
	m := &Machine{
		window:  DefaultDoubleActivationWindow,
		concept: concept,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state. A pending expansion is reported only while no
// other interaction is in progress.
func (m *Machine) State() State {
	if m.state == StateIdle && m.expanding != "" {
		return StateAwaitingExpansion
	}
	return m.state
}

// NodeID returns the node the current state refers to.
func (m *Machine) NodeID() string {
	if m.state == StateIdle {
		return m.expanding
	}
	return m.nodeID
}

// Draft returns the editor text while editing.
func (m *Machine) Draft() string {
	return m.draft
}

// Expanding returns the node whose expansion is pending.
func (m *Machine) Expanding() (string, bool) {
	return m.expanding, m.expanding != ""
}

// Deadline returns when the pending single activation fires.
func (m *Machine) Deadline() (time.Time, bool) {
	if m.state != StateAwaitingSecondClick {
		return time.Time{}, false
	}
	return m.deadline, true
}

// Advance fires the pending single activation once now has reached its deadline.
func (m *Machine) Advance(now time.Time) []Action {
	if m.state != StateAwaitingSecondClick || now.Before(m.deadline) {
		return nil
	}
	return m.flush()
}

// flush fires the pending single activation immediately.
func (m *Machine) flush() []Action {
	nodeID, shift := m.nodeID, m.shift
	m.toIdle()

	if shift {
		return []Action{{Kind: ActionToggleSelect, NodeID: nodeID}}
	}

	draft := ""
	if m.concept != nil {
		text, ok := m.concept(nodeID)
		if !ok {
			return nil
		}
		draft = text
	}
	m.state = StateEditing
	m.nodeID = nodeID
	m.draft = draft
	return []Action{{Kind: ActionOpenEdit, NodeID: nodeID, Text: draft}}
}

func (m *Machine) toIdle() {
	m.state = StateIdle
	m.nodeID = ""
	m.deadline = time.Time{}
	m.shift = false
	m.draft = ""
}

// ExpansionDone leaves AwaitingExpansion for nodeID.
func (m *Machine) ExpansionDone(nodeID string) {
	if m.expanding == nodeID {
		m.expanding = ""
	}
}

// Handle feeds one event and returns the resulting actions in order. Expired timers
// are flushed first, using the event time.
func (m *Machine) Handle(ev Event) []Action {
	actions := m.Advance(ev.At)

	switch ev.Kind {
	case EventPress:
		actions = append(actions, m.press(ev)...)

	case EventSecondaryPress:
		if ev.NodeID != "" {
			actions = append(actions, Action{Kind: ActionToggleSelect, NodeID: ev.NodeID})
		}

	case EventEdgePress:
		if m.state != StateEditing && ev.EdgeID != "" {
			actions = append(actions, Action{Kind: ActionDeleteEdge, EdgeID: ev.EdgeID})
		}

	case EventSubmit:
		if m.state != StateEditing {
			actions = append(actions, Action{Kind: ActionSubmit, Text: ev.Text})
		}

	case EventDraftChange:
		if m.state == StateEditing {
			m.draft = ev.Text
		}

	case EventSave:
		if m.state == StateEditing {
			nodeID, draft := m.nodeID, m.draft
			m.toIdle()
			actions = append(actions, Action{Kind: ActionCommitEdit, NodeID: nodeID, Text: draft})
		}

	case EventDelete:
		if m.state == StateEditing {
			nodeID := m.nodeID
			m.toIdle()
			actions = append(actions, Action{Kind: ActionDelete, NodeID: nodeID})
		}

	case EventCancel:
		switch {
		case m.state == StateEditing:
			nodeID := m.nodeID
			m.toIdle()
			actions = append(actions, Action{Kind: ActionCancelEdit, NodeID: nodeID})
		case m.expanding != "":
			nodeID := m.expanding
			m.expanding = ""
			actions = append(actions, Action{Kind: ActionCancelExpansion, NodeID: nodeID})
		}
	}
	return actions
}

func (m *Machine) press(ev Event) []Action {
	if ev.NodeID == "" {
		return nil
	}

	var actions []Action
	switch m.state {
	case StateEditing:
		// The editor is modal.
		return nil

	case StateAwaitingSecondClick:
		if m.nodeID == ev.NodeID {
			m.toIdle()
			if m.expanding == "" {
				m.expanding = ev.NodeID
			}
			return []Action{{Kind: ActionExpand, NodeID: ev.NodeID}}
		}
		actions = m.flush()
		if m.state == StateEditing {
			return actions
		}
	}

	m.state = StateAwaitingSecondClick
	m.nodeID = ev.NodeID
	m.deadline = ev.At.Add(m.window)
	m.shift = ev.Shift
	return actions
}
