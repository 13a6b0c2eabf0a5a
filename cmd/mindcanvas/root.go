package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smallnest/mindcanvas/config"
	"github.com/smallnest/mindcanvas/log"
)

var version = "0.3.0"

type rootFlags struct {
	configPath string
	workspace  string
	storeName  string
	provider   string
	logLevel   string
}

func rootCmd(a *app) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "mindcanvas",
		Short:         "mindcanvas grows idea maps with a language model",
		Long:          brand.Sprint("mindcanvas") + " seeds a concept, asks a model for related concepts and keeps the map\n" + subtle.Sprint("Each command works on the persisted workspace"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, flags)
		},
	}
	cmd.SetVersionTemplate("mindcanvas {{ .Version }}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (default "+config.Path()+")")
	pf.StringVarP(&flags.workspace, "workspace", "w", "", "Workspace name")
	pf.StringVar(&flags.storeName, "store", "", "Store backend: sqlite, file, memory, redis, postgres")
	pf.StringVar(&flags.provider, "provider", "", "Generator provider: openai, openaicompat, remote")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error, none")

	cmd.AddCommand(
		serveCmd(a),
		addCmd(a),
		selectCmd(a),
		expandCmd(a),
		editCmd(a),
		deleteCmd(a),
		unlinkCmd(a),
		showCmd(a),
		historyCmd(a),
		restoreCmd(a),
		clearHistoryCmd(a),
		resetCmd(a),
		summarizeCmd(a),
		playCmd(a),
		configCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command, flags rootFlags) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.workspace != "" {
		cfg.Workspace = flags.workspace
	}
	if flags.storeName != "" {
		cfg.Store.Backend = flags.storeName
	}
	if flags.provider != "" {
		cfg.Generator.Provider = flags.provider
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := log.New(level)
	logger.SetOutput(os.Stderr)
	log.SetDefaultLogger(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}

func execute(ctx context.Context, args []string) error {
	a := &app{}
	defer a.close()

	cmd := rootCmd(a)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, bad.Sprint("error: ")+err.Error())
		return err
	}
	return nil
}
