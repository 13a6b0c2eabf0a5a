package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smallnest/mindcanvas/interaction"
	"github.com/smallnest/mindcanvas/session"
)

// step is one line of an event script:
//
//	<offset> <event> [target] [text...]
//
// offset is a duration from the start of the script. Besides the interaction events
// there are "shift-press <node>", "tick" (advance time only) and "wait" (wait for
// background expansions). Blank lines and lines starting with # are skipped.
type step struct {
	line  int
	at    time.Duration
	tick  bool
	wait  bool
	event interaction.Event
}

func parseScript(r io.Reader) ([]step, error) {
	var steps []step
	sc := bufio.NewScanner(r)
	var last time.Duration
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: want <offset> <event>", n)
		}
		at, err := time.ParseDuration(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if at < last {
			return nil, fmt.Errorf("line %d: offset %s is before %s", n, at, last)
		}
		last = at

		st := step{line: n, at: at}
		name, rest := fields[1], fields[2:]
		switch name {
		case "tick":
			st.tick = true
		case "wait":
			st.wait = true
		case "shift-press":
			st.event = interaction.Event{Kind: interaction.EventPress, Shift: true}
			if len(rest) != 1 {
				return nil, fmt.Errorf("line %d: shift-press needs a node id", n)
			}
			st.event.NodeID = rest[0]
		default:
			kind, err := interaction.ParseEventKind(name)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			st.event = interaction.Event{Kind: kind}
			switch kind {
			case interaction.EventPress, interaction.EventSecondaryPress:
				if len(rest) != 1 {
					return nil, fmt.Errorf("line %d: %s needs a node id", n, name)
				}
				st.event.NodeID = rest[0]
			case interaction.EventEdgePress:
				if len(rest) != 1 {
					return nil, fmt.Errorf("line %d: %s needs an edge id", n, name)
				}
				st.event.EdgeID = rest[0]
			case interaction.EventSubmit, interaction.EventDraftChange:
				st.event.Text = strings.Join(rest, " ")
			}
		}
		steps = append(steps, st)
	}
	return steps, sc.Err()
}

// runScript feeds steps to s on a virtual clock starting at start.
func runScript(ctx context.Context, s *session.Session, steps []step, start time.Time, out io.Writer) {
	for _, st := range steps {
		now := start.Add(st.at)
		var actions []interaction.Action
		switch {
		case st.wait:
			s.Wait()
			actions = s.Tick(ctx, now)
		case st.tick:
			actions = s.Tick(ctx, now)
		default:
			ev := st.event
			ev.At = now
			actions = s.Dispatch(ctx, ev)
		}
		for _, act := range actions {
			fmt.Fprintf(out, "  %6s  %s", st.at, act.Kind)
			if act.NodeID != "" {
				fmt.Fprintf(out, " %s", act.NodeID)
			}
			if act.EdgeID != "" {
				fmt.Fprintf(out, " %s", act.EdgeID)
			}
			if act.Text != "" {
				fmt.Fprintf(out, " %q", act.Text)
			}
			fmt.Fprintln(out)
		}
	}
	s.Wait()
}

func playCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "play <script|->",
		Short: "Replay a timestamped input script against the canvas",
		Long: `Replay a timestamped input script against the canvas.

Each line is "<offset> <event> [target] [text]", for example:

  0ms    press node-1
  120ms  press node-1
  2s     wait
  3s     shift-press node-2
  3.5s   tick
  4s     submit 对比`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			steps, err := parseScript(r)
			if err != nil {
				return err
			}

			s, err := a.session(cmd.Context(), true)
			if err != nil {
				return err
			}
			runScript(cmd.Context(), s, steps, time.Now(), cmd.OutOrStdout())
			printNotices(s.Notices())
			printGraph(s, false)
			return nil
		},
	}
}
