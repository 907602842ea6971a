package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/internal/config"
	"github.com/bulwarkhq/bulwark/internal/observability"
)

func main() {
	var (
		configPath string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:           "bulwark",
		Short:         "Architectural invariant checker for polyglot codebases",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "bulwark.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	app := &appContext{}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init(cmd.Context(), configPath, logLevel)
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		app.shutdown(cmd.Context())
	}

	rootCmd.AddCommand(
		newScanCmd(app),
		newGraphCmd(app),
		newInferCmd(app),
		newPatternsCmd(app),
		newWatchCmd(app),
		newExportCmd(app),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// appContext carries config, logging, and tracing shared by all commands.
type appContext struct {
	cfg    *config.Config
	log    *slog.Logger
	tracer *observability.TracerProvider
}

func (a *appContext) init(ctx context.Context, configPath, logLevel string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	for _, warning := range cfg.Validate() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	a.log = newLogger(level, cfg.Log.Format)

	tracer, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:    "bulwark",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.tracer = tracer
	return nil
}

func (a *appContext) shutdown(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.log.Warn("tracer shutdown failed", "error", err)
		}
	}
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// stateDir is where per-project bulwark state lives.
func stateDir(root string) string {
	return filepath.Join(root, ".bulwark")
}

// projectRoot resolves the optional positional path argument.
func projectRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project root is not a directory: %s", root)
	}
	return root, nil
}
