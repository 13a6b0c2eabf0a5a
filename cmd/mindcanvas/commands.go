package main

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/smallnest/mindcanvas/canvas"
	"github.com/smallnest/mindcanvas/config"
	"github.com/smallnest/mindcanvas/expand"
	"github.com/smallnest/mindcanvas/render"
	"github.com/smallnest/mindcanvas/server"
	"github.com/smallnest/mindcanvas/session"
)

func serveCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := a.generator()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			srv := server.New(gen,
				server.WithLogger(a.named("server")),
				server.WithRequestTimeout(a.cfg.Server.RequestTimeout.Duration),
				server.WithAllowedOrigins(a.cfg.Server.AllowedOrigins...),
			)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func addCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <concept...>",
		Short: "Add a concept, connected to the selected concepts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), false)
			if err != nil {
				return err
			}
			n, err := s.Submit(joinArgs(args))
			if err != nil {
				printNotices(s.Notices())
				return err
			}
			okf("added %s %s", n.Concept, subtle.Sprint(n.ID))
			printGraph(s, false)
			return nil
		},
	}
}

func selectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <node-id...>",
		Short: "Toggle the selection of nodes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), false)
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := s.Select(id); err != nil {
					return err
				}
			}
			printGraph(s, false)
			return nil
		},
	}
}

func expandCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <node-id>",
		Short: "Ask for detail or related concepts of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), true)
			if err != nil {
				return err
			}
			res, err := s.Expand(cmd.Context(), args[0])
			if err != nil {
				printNotices(s.Notices())
				return err
			}
			switch res.Outcome {
			case expand.OutcomeSkipped:
				warn.Printf("  %s already has detail\n", res.NodeID)
			case expand.OutcomeDetail:
				okf("%s: %s", res.NodeID, res.Detail)
			case expand.OutcomeChildren:
				okf("%d concepts added %s", len(res.Children), subtle.Sprint(res.HistoryID))
			}
			printGraph(s, false)
			return nil
		},
	}
}

func editCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <node-id> <concept...>",
		Short: "Replace the concept text of a node",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), false)
			if err != nil {
				return err
			}
			if err := s.Edit(args[0], joinArgs(args[1:])); err != nil {
				printNotices(s.Notices())
				return err
			}
			printGraph(s, false)
			return nil
		},
	}
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <node-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a node and everything reachable from it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), false)
			if err != nil {
				return err
			}
			removed := s.Delete(args[0])
			if len(removed) == 0 {
				return fmt.Errorf("%w: %s", canvas.ErrNodeNotFound, args[0])
			}
			okf("removed %d nodes", len(removed))
			printGraph(s, false)
			return nil
		},
	}
}

func unlinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <edge-id> | unlink <source-id> <target-id>",
		Short: "Delete a single edge",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), false)
			if err != nil {
				return err
			}
			id := args[0]
			if len(args) == 2 {
				id = canvas.EdgeID(args[0], args[1])
			}
			if !s.DeleteEdge(id) {
				return fmt.Errorf("edge %s not found", id)
			}
			printGraph(s, false)
			return nil
		},
	}
}

func showCmd(a *app) *cobra.Command {
	var detail bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the canvas as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), false)
			if err != nil {
				return err
			}
			printGraph(s, detail)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&detail, "detail", "d", false, "Show detail text")
	return cmd
}

func historyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List history entries, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), false)
			if err != nil {
				return err
			}
			fmt.Println(render.New().History(s.History().Entries(), time.Now()))
			return nil
		},
	}
}

func restoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <history-id>",
		Short: "Replace the canvas with a history snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), false)
			if err != nil {
				return err
			}
			if err := s.Restore(args[0]); err != nil {
				return err
			}
			okf("restored %s", args[0])
			printGraph(s, false)
			return nil
		},
	}
}

func clearHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-history",
		Short: "Empty the history log and keep the canvas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), false)
			if err != nil {
				return err
			}
			s.ClearHistory()
			okf("history cleared")
			return nil
		},
	}
}

func resetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the canvas and the history of the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), false)
			if err != nil {
				return err
			}
			if err := s.Reset(cmd.Context()); err != nil {
				return err
			}
			okf("workspace %s reset", a.cfg.Workspace)
			return nil
		},
	}
}

func summarizeCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize every concept on the canvas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context(), true)
			if err != nil {
				return err
			}
			doc, err := s.Summarize(cmd.Context())
			if err != nil {
				printNotices(s.Notices())
				return err
			}
			switch format {
			case "markdown":
				fmt.Println(doc.Markdown)
			case "html":
				fmt.Println(doc.HTML)
			case "outline":
				for _, h := range doc.Outline {
					fmt.Printf("%*s%s\n", (h.Level-1)*2, "", h.Text)
				}
			default:
				fmt.Println(doc.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output: text, markdown, html, outline")
	return cmd
}

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return toml.NewEncoder(os.Stdout).Encode(a.cfg)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default configuration file if it does not exist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.EnsureExists(config.Path()); err != nil {
					return err
				}
				okf("config at %s", config.Path())
				return nil
			},
		},
	)
	return cmd
}

func printGraph(s *session.Session, detail bool) {
	r := render.New(render.WithIDs(true), render.WithDetail(detail))
	fmt.Println()
	fmt.Println(r.Graph(s.Graph().Nodes(), s.Graph().Edges()))
}
