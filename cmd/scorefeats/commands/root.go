package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "scorefeats",
	Short: "Align musical score labels with spectral analysis frames",
	Long: `scorefeats - score-label alignment for singing-voice-synthesis training.

Converts dense per-sample score annotations (note ids, per-sample note
durations, tempo) into either frame-synchronous labels aligned with a
spectral transform's frame axis, or syllable-synchronous segments bounded
by change points in the duration and score streams.

Requests are YAML files; results are printed as JSON. Extracted features
can optionally be written to a local BadgerDB feature cache for reuse by
later data-prep runs.

Examples:
  # Frame-synchronous aggregation
  scorefeats aggregate -f labels.yaml

  # Syllable segmentation, caching the result
  scorefeats segment -f score.yaml --cache-dir ./featcache

  # Inspect the cache
  scorefeats cache list frames --cache-dir ./featcache`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
