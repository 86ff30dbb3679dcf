package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pavanmanishd/linalloc/internal/logging"
)

var (
	// Global flags
	logLevel string
	logJSON  bool
	jsonOut  bool

	logger = logging.Discard
)

var rootCmd = &cobra.Command{
	Use:   "linalloc",
	Short: "Replay and inspect linear allocator behaviour",
	Long: `linalloc drives the arena and stack allocators from YAML scripts and
prints the offsets each operation leaves behind. It also computes the
alignment padding the allocators would insert for a given address.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogger builds the stderr logger from the global flags.
func initLogger() error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger = logging.New(logging.Options{Level: level, JSON: logJSON})
	logger.Debug("logger ready", slog.String("level", level.String()))
	return nil
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
