package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/icco/gridseq/internal/config"
)

var (
	configPath string
	logPath    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "gridseq",
	Short: "A mouse-driven step sequencer for the terminal",
	Long: `gridseq is a step sequencer with a note grid you paint with the mouse.

Columns are beats and rows are pitches. Drag across the grid to paint notes
with the selected instrument, start a drag on a note to erase, and let the
playhead loop over the columns at the chosen tempo.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVarP(&logPath, "log", "l", "", "Write debug logs to the given file (empty disables)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// ResolveLogLevel maps a level name to a slog level.
func ResolveLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}
