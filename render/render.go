// Package render draws the canvas graph and its history for a terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/smallnest/mindcanvas/canvas"
)

// Styles used by a Renderer.
type Styles struct {
	Concept     lipgloss.Style
	Center      lipgloss.Style
	Selected    lipgloss.Style
	Translation lipgloss.Style
	Detail      lipgloss.Style
	ID          lipgloss.Style
	Enumerator  lipgloss.Style
	Manual      lipgloss.Style
	Muted       lipgloss.Style
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	return Styles{
		Concept:     lipgloss.NewStyle(),
		Center:      lipgloss.NewStyle().Bold(true),
		Selected:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Translation: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Detail:      lipgloss.NewStyle().Foreground(lipgloss.Color("109")).PaddingLeft(2),
		ID:          lipgloss.NewStyle().Faint(true),
		Enumerator:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginRight(1),
		Manual:      lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		Muted:       lipgloss.NewStyle().Faint(true),
	}
}

// Renderer turns graph snapshots into text.
type Renderer struct {
	styles     Styles
	showIDs    bool
	showDetail bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithStyles replaces the palette.
func WithStyles(s Styles) Option {
	return func(r *Renderer) {
		r.styles = s
	}
}

// WithIDs prints node ids next to concepts.
func WithIDs(show bool) Option {
	return func(r *Renderer) {
		r.showIDs = show
	}
}

// WithDetail prints detail text under nodes that have it.
func WithDetail(show bool) Option {
	return func(r *Renderer) {
		r.showDetail = show
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{styles: DefaultStyles(), showIDs: true, showDetail: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Graph renders the graph as a forest. Roots are nodes without incoming edges, in
// graph order. A node reachable from several parents is drawn in full under the first
// one and as a reference elsewhere. Nodes only reachable through cycles are drawn as
// extra roots.
func (r *Renderer) Graph(nodes []canvas.Node, edges []canvas.Edge) string {
	if len(nodes) == 0 {
		return r.styles.Muted.Render("(empty canvas)")
	}

	byID := make(map[string]canvas.Node, len(nodes))
	children := make(map[string][]canvas.Edge)
	hasParent := make(map[string]bool)
	for _, n := range nodes {
		byID[n.ID] = n
	}
	for _, e := range edges {
		children[e.Source] = append(children[e.Source], e)
		hasParent[e.Target] = true
	}

	drawn := make(map[string]bool, len(nodes))
	var build func(n canvas.Node, via *canvas.Edge) *tree.Tree
	build = func(n canvas.Node, via *canvas.Edge) *tree.Tree {
		drawn[n.ID] = true
		t := tree.Root(r.label(n, via)).
			Enumerator(tree.RoundedEnumerator).
			EnumeratorStyle(r.styles.Enumerator)
		if r.showDetail && n.HasDetailText() {
			t.Child(r.styles.Detail.Render("≡ " + strings.ReplaceAll(n.Detail, "\n", "\n  ")))
		}
		for _, e := range children[n.ID] {
			child, ok := byID[e.Target]
			if !ok {
				continue
			}
			if drawn[child.ID] {
				t.Child(r.styles.Muted.Render("↺ " + child.Concept + r.id(child.ID)))
				continue
			}
			t.Child(build(child, &e))
		}
		return t
	}

	var blocks []string
	for _, n := range nodes {
		if !hasParent[n.ID] && !drawn[n.ID] {
			blocks = append(blocks, build(n, nil).String())
		}
	}
	for _, n := range nodes {
		if !drawn[n.ID] {
			blocks = append(blocks, build(n, nil).String())
		}
	}
	return strings.Join(blocks, "\n")
}

func (r *Renderer) id(id string) string {
	if !r.showIDs {
		return ""
	}
	return " " + r.styles.ID.Render("["+id+"]")
}

func (r *Renderer) label(n canvas.Node, via *canvas.Edge) string {
	style := r.styles.Concept
	switch {
	case n.IsSelected:
		style = r.styles.Selected
	case n.IsCenter:
		style = r.styles.Center
	}

	var b strings.Builder
	if n.IsSelected {
		b.WriteString("* ")
	}
	if via != nil && via.OriginKind == canvas.OriginManual {
		b.WriteString(r.styles.Manual.Render("⇢ "))
	}
	b.WriteString(style.Render(n.Concept))
	if n.Translation != "" {
		b.WriteString(" " + r.styles.Translation.Render("("+n.Translation+")"))
	}
	if n.IsLoading {
		b.WriteString(" " + r.styles.Muted.Render("…"))
	}
	b.WriteString(r.id(n.ID))
	return b.String()
}

// History renders one line per entry, most recent first.
func (r *Renderer) History(entries []canvas.HistoryEntry, now time.Time) string {
	if len(entries) == 0 {
		return r.styles.Muted.Render("(no history)")
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s  %s  %s",
			r.styles.ID.Render(fmt.Sprintf("%-12s", e.ID)),
			r.styles.Center.Render(e.TriggerConcept),
			r.styles.Muted.Render(fmt.Sprintf("%s · %d nodes", canvas.Label(e, now), len(e.Nodes))),
		)
	}
	return strings.Join(lines, "\n")
}
