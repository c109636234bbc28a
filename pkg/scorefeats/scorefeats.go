// Package scorefeats aligns sample-rate musical score annotations with the
// frame axis used by spectral feature extraction in singing-voice-synthesis
// training.
//
// Two transforms are provided:
//
//   - LabelAggregator: collapses a dense per-sample label sequence into one
//     label per analysis frame by windowed majority vote, using the same
//     framing and center-padding convention as a short-time Fourier
//     transform, so label frames line up one-to-one with spectral frames.
//
//   - SegmentExtractor: collapses parallel piecewise-constant duration,
//     score and tempo sequences into syllable-level segments bounded by the
//     union of change points in the duration and score streams, with one
//     representative (mode) value per stream per segment.
//
// Both transforms operate on length-padded batches: items are padded to a
// common width and carry a per-item valid length. Padding beyond the valid
// length never leaks into the output. Both are pure and stateless; batch
// items are processed independently and in parallel.
//
// Example usage:
//
//	agg := scorefeats.NewLabelAggregator(scorefeats.DefaultConfig())
//	labels, lengths, err := agg.Aggregate(input, inputLengths)
//
//	ext := scorefeats.NewSegmentExtractor()
//	segs, err := ext.Extract(durations, durLens, score, scoreLens, tempo, tempoLens)
package scorefeats

import (
	"cmp"
	"errors"
	"slices"
)

// Sentinel errors.
var (
	// ErrWindowTooLong is returned when the window length exceeds an item's
	// padded sequence length. The window is never clamped: clamping would
	// silently break frame-count alignment with the spectral transform.
	ErrWindowTooLong = errors.New("scorefeats: window longer than padded sequence")

	// ErrLengthOutOfRange is returned when a declared valid length exceeds
	// the capacity of the buffer backing it.
	ErrLengthOutOfRange = errors.New("scorefeats: valid length exceeds buffer capacity")

	// ErrShapeMismatch is returned when sequences required to share a time
	// axis are supplied with inconsistent shapes.
	ErrShapeMismatch = errors.New("scorefeats: parallel sequences have mismatched shapes")
)

// mode returns the most frequent value in xs. Ties are broken by the lowest
// value among the tied candidates, so aggregated labels are reproducible.
// xs must be non-empty.
func mode[T cmp.Ordered](xs []T) T {
	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	best := sorted[0]
	bestCount := 0
	runStart := 0
	for i := 1; i <= len(sorted); i++ {
		if i == len(sorted) || sorted[i] != sorted[runStart] {
			// Strict > keeps the lowest value on ties: runs are visited
			// in ascending order.
			if i-runStart > bestCount {
				best = sorted[runStart]
				bestCount = i - runStart
			}
			runStart = i
		}
	}
	return best
}
