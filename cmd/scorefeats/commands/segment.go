package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/soratune/scorefeats/pkg/featstore"
	"github.com/soratune/scorefeats/pkg/scorefeats"
)

var (
	segRequestFile string
	segCacheDir    string
)

// segmentRequest is the YAML request for the segment command. The three
// streams of one item share a time axis; lengths default to each stream's
// own sample count and may be overridden when the tail is padding.
type segmentRequest struct {
	Items []struct {
		ID              string  `yaml:"id"`
		Durations       []int64 `yaml:"durations"`
		Score           []int64 `yaml:"score"`
		Tempo           []int64 `yaml:"tempo"`
		DurationsLength *int    `yaml:"durations_length"`
		ScoreLength     *int    `yaml:"score_length"`
		TempoLength     *int    `yaml:"tempo_length"`
	} `yaml:"items"`
}

// segmentResult is one item's syllable-synchronous output.
type segmentResult struct {
	ID          string  `json:"id"`
	Durations   []int64 `json:"durations"`
	Score       []int64 `json:"score"`
	Tempo       []int64 `json:"tempo"`
	NumSegments int     `json:"num_segments"`
}

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Extract syllable segments from duration/score/tempo streams",
	Long: `Collapse parallel piecewise-constant duration, score and tempo
sequences into syllable-level segments.

Boundaries are the union of change points in the duration and score
streams; tempo never splits a segment on its own. Each segment carries one
representative (mode) value per stream.

The request file holds a batch of items:

  items:
    - id: utt001
      durations: [1, 1, 2, 2, 2]
      score:     [9, 9, 9, 8, 8]
      tempo:     [120, 120, 120, 120, 120]

Output is JSON on stdout, one row per item, trimmed to the segment count.
With --cache-dir the results are also written to the feature cache.`,
	RunE: runSegment,
}

func runSegment(cmd *cobra.Command, args []string) error {
	var req segmentRequest
	if err := loadRequest(segRequestFile, &req); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("no items in %s", segRequestFile)
	}

	bs := len(req.Items)
	durations := make([][]int64, bs)
	score := make([][]int64, bs)
	tempo := make([][]int64, bs)
	durLens := make([]int, bs)
	scoreLens := make([]int, bs)
	tempoLens := make([]int, bs)

	for i, it := range req.Items {
		// Pad the item's three streams to one shared capacity.
		capacity := max(len(it.Durations), len(it.Score), len(it.Tempo))
		durations[i] = padStream(it.Durations, capacity)
		score[i] = padStream(it.Score, capacity)
		tempo[i] = padStream(it.Tempo, capacity)
		durLens[i] = streamLength(it.DurationsLength, len(it.Durations))
		scoreLens[i] = streamLength(it.ScoreLength, len(it.Score))
		tempoLens[i] = streamLength(it.TempoLength, len(it.Tempo))
	}

	slog.Debug("segmenting", "items", bs)

	ext := scorefeats.NewSegmentExtractor()
	segs, err := ext.Extract(durations, durLens, score, scoreLens, tempo, tempoLens)
	if err != nil {
		return fmt.Errorf("segment: %w", err)
	}

	results := make([]segmentResult, bs)
	for i := range req.Items {
		n := segs.DurationsLengths[i]
		results[i] = segmentResult{
			ID:          req.Items[i].ID,
			Durations:   segs.Durations[i][:n],
			Score:       segs.Score[i][:n],
			Tempo:       segs.Tempo[i][:n],
			NumSegments: n,
		}
	}

	if segCacheDir != "" {
		cache, err := openCache(segCacheDir)
		if err != nil {
			return err
		}
		defer cache.Close()
		for _, r := range results {
			rec := &featstore.SegmentRecord{
				UtteranceID: r.ID,
				Durations:   r.Durations,
				Score:       r.Score,
				Tempo:       r.Tempo,
				Length:      r.NumSegments,
			}
			if err := cache.PutSegments(context.Background(), rec); err != nil {
				return fmt.Errorf("cache %q: %w", r.ID, err)
			}
			slog.Debug("cached segments", "utterance", r.ID, "write_id", rec.WriteID)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func padStream(xs []int64, n int) []int64 {
	out := make([]int64, n)
	copy(out, xs)
	return out
}

func streamLength(override *int, actual int) int {
	if override != nil {
		return *override
	}
	return actual
}

func init() {
	segmentCmd.Flags().StringVarP(&segRequestFile, "file", "f", "", "YAML request file (required)")
	segmentCmd.Flags().StringVar(&segCacheDir, "cache-dir", "", "write results to the feature cache at this directory")
	rootCmd.AddCommand(segmentCmd)
}
