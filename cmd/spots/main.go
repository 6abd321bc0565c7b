package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	logFile    string
	configPath string

	// logger is built in PersistentPreRunE. The TUI swaps it for a no-op
	// unless --log-file is set.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "spots",
	Short: "Save Instagram and TikTok posts as places and events",
	Long: `spots keeps the posts you save from Instagram and TikTok as places and
events: categorised, geocoded, on a map and in a calendar.

Run without arguments to open the interactive view.

Quick Start:
  spots add https://www.instagram.com/p/abc/   # save a post
  spots serve                                  # background service + share pages
  spots find tacos                             # fuzzy find a save
  spots export --format yaml                   # export saves`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(cmd)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/spots/config.json)")
}

// newLogger builds the production logger. The root command draws a
// full-screen UI, so it only logs when a log file is given.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	interactive := !cmd.HasParent()
	if interactive && logFile == "" {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if logFile != "" {
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	}
	return cfg.Build()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
