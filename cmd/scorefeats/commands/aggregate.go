package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/soratune/scorefeats/pkg/featstore"
	"github.com/soratune/scorefeats/pkg/scorefeats"
)

var (
	aggRequestFile string
	aggCacheDir    string
)

// aggregateRequest is the YAML request for the aggregate command. Items may
// have different lengths; they are padded to a common width before the
// batched call.
type aggregateRequest struct {
	Config scorefeats.Config `yaml:"config"`
	Items  []struct {
		ID     string      `yaml:"id"`
		Labels [][]float64 `yaml:"labels"` // [T][D]
	} `yaml:"items"`
}

// aggregateResult is one item's frame-synchronous output.
type aggregateResult struct {
	ID        string    `json:"id"`
	Frames    []float64 `json:"frames"`
	NumFrames int       `json:"num_frames"`
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate per-sample labels into per-frame labels",
	Long: `Aggregate dense per-sample label sequences into one label per
analysis frame by windowed majority vote.

The request file holds the framing config and a batch of items:

  config:
    win_length: 512
    hop_length: 128
    center: true
  items:
    - id: utt001
      labels: [[60], [60], [62], ...]   # [T][label_dim]

Framing follows the companion spectral transform (same window, hop and
center padding), so output frames line up one-to-one with spectral frames.
Output is JSON on stdout, one row per item, trimmed to the valid frame
count. With --cache-dir the results are also written to the feature cache.`,
	RunE: runAggregate,
}

func runAggregate(cmd *cobra.Command, args []string) error {
	var req aggregateRequest
	if err := loadRequest(aggRequestFile, &req); err != nil {
		return err
	}
	if req.Config == (scorefeats.Config{}) {
		req.Config = scorefeats.DefaultConfig()
	}
	if err := req.Config.Validate(); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("no items in %s", aggRequestFile)
	}

	items := make([][][]float64, len(req.Items))
	for i, it := range req.Items {
		items[i] = it.Labels
	}
	padded, lengths, err := scorefeats.PadLabelRows(items)
	if err != nil {
		return err
	}

	slog.Debug("aggregating", "items", len(items), "config", req.Config.String())

	agg := scorefeats.NewLabelAggregator(req.Config)
	frames, olens, err := agg.Aggregate(padded, lengths)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	results := make([]aggregateResult, len(req.Items))
	for i := range req.Items {
		results[i] = aggregateResult{
			ID:        req.Items[i].ID,
			Frames:    frames[i][:olens[i]],
			NumFrames: olens[i],
		}
	}

	if aggCacheDir != "" {
		cache, err := openCache(aggCacheDir)
		if err != nil {
			return err
		}
		defer cache.Close()
		for _, r := range results {
			rec := &featstore.FrameRecord{
				UtteranceID: r.ID,
				Config:      req.Config,
				Labels:      r.Frames,
				Length:      r.NumFrames,
			}
			if err := cache.PutFrames(context.Background(), rec); err != nil {
				return fmt.Errorf("cache %q: %w", r.ID, err)
			}
			slog.Debug("cached frames", "utterance", r.ID, "write_id", rec.WriteID)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// loadRequest reads and decodes a YAML request file.
func loadRequest(path string, v any) error {
	if path == "" {
		return fmt.Errorf("--file is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse request %s: %w", path, err)
	}
	return nil
}

// openCache opens the BadgerDB-backed feature cache at dir.
func openCache(dir string) (*featstore.Cache, error) {
	store, err := featstore.NewBadger(featstore.BadgerOptions{Dir: dir})
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", dir, err)
	}
	return featstore.NewCache(store), nil
}

func init() {
	aggregateCmd.Flags().StringVarP(&aggRequestFile, "file", "f", "", "YAML request file (required)")
	aggregateCmd.Flags().StringVar(&aggCacheDir, "cache-dir", "", "write results to the feature cache at this directory")
	rootCmd.AddCommand(aggregateCmd)
}
