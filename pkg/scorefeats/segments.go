package scorefeats

import (
	"fmt"
	"slices"
	"sync"
)

// SegmentBatch holds syllable-level segment sequences extracted from a
// batch, right-padded with zeros to the largest segment count in the batch.
// For every item the three length entries are equal: all streams share one
// boundary list.
type SegmentBatch struct {
	Durations        [][]int64 `json:"durations"`
	DurationsLengths []int     `json:"durations_lengths"`
	Score            [][]int64 `json:"score"`
	ScoreLengths     []int     `json:"score_lengths"`
	Tempo            [][]int64 `json:"tempo"`
	TempoLengths     []int     `json:"tempo_lengths"`
}

// segments is one item's variable-length extraction result.
type segments struct {
	durations []int64
	score     []int64
	tempo     []int64
}

// SegmentExtractor collapses parallel piecewise-constant duration, score
// and tempo sequences into syllable-level segments.
//
// Segment boundaries are the union of change points detected independently
// in the duration and score streams: a syllable boundary may be signaled by
// a duration change or a score change without the other changing, so the
// union misses no true boundary. Tempo never contributes boundaries of its
// own; it is summarized over whichever segments the other two streams
// dictate.
type SegmentExtractor struct{}

// NewSegmentExtractor creates a SegmentExtractor.
func NewSegmentExtractor() *SegmentExtractor {
	return &SegmentExtractor{}
}

// Extract segments a batch. durations, score and tempo are padded [B][T]
// sequences sharing one time axis per item; the three length vectors hold
// each stream's valid length and may disagree per item (the streams can
// come from different upstream alignments).
//
// Each segment is summarized by the mode of every stream over the segment's
// index range, with ties going to the lowest value. An item whose streams
// all have valid length zero yields zero segments.
func (e *SegmentExtractor) Extract(
	durations [][]int64, durationsLengths []int,
	score [][]int64, scoreLengths []int,
	tempo [][]int64, tempoLengths []int,
) (*SegmentBatch, error) {
	bs := len(durations)
	if len(score) != bs || len(tempo) != bs {
		return nil, fmt.Errorf("%w: batch sizes differ (durations %d, score %d, tempo %d)",
			ErrShapeMismatch, bs, len(score), len(tempo))
	}
	if len(durationsLengths) != bs || len(scoreLengths) != bs || len(tempoLengths) != bs {
		return nil, fmt.Errorf("%w: length vectors must have one entry per item",
			ErrShapeMismatch)
	}
	for i := range durations {
		if len(score[i]) != len(durations[i]) || len(tempo[i]) != len(durations[i]) {
			return nil, fmt.Errorf("%w: item %d stream capacities differ (durations %d, score %d, tempo %d)",
				ErrShapeMismatch, i, len(durations[i]), len(score[i]), len(tempo[i]))
		}
		capacity := len(durations[i])
		for _, s := range []struct {
			name string
			n    int
		}{
			{"durations", durationsLengths[i]},
			{"score", scoreLengths[i]},
			{"tempo", tempoLengths[i]},
		} {
			if s.n < 0 || s.n > capacity {
				return nil, fmt.Errorf("%w: %s length %d for item %d, capacity %d",
					ErrLengthOutOfRange, s.name, s.n, i, capacity)
			}
		}
	}

	// Phase 1: per-item variable-length extraction, fanned out across the
	// batch. Each goroutine writes only its own slot.
	results := make([]segments, bs)
	var wg sync.WaitGroup
	for i := range durations {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = extractItem(
				durations[i], durationsLengths[i],
				score[i], scoreLengths[i],
				tempo[i])
		}()
	}
	wg.Wait()

	// Phase 2: re-batch with right-padding to the widest item.
	out := &SegmentBatch{
		Durations:        make([][]int64, bs),
		DurationsLengths: make([]int, bs),
		Score:            make([][]int64, bs),
		ScoreLengths:     make([]int, bs),
		Tempo:            make([][]int64, bs),
		TempoLengths:     make([]int, bs),
	}
	maxSegs := 0
	for _, r := range results {
		if len(r.durations) > maxSegs {
			maxSegs = len(r.durations)
		}
	}
	for i, r := range results {
		out.Durations[i] = padTo(r.durations, maxSegs)
		out.Score[i] = padTo(r.score, maxSegs)
		out.Tempo[i] = padTo(r.tempo, maxSegs)
		n := len(r.durations)
		out.DurationsLengths[i] = n
		out.ScoreLengths[i] = n
		out.TempoLengths[i] = n
	}
	return out, nil
}

// extractItem segments a single item. Boundary detection compares each
// element to the value at the most recently recorded boundary, not to its
// immediate predecessor, so a plateau boundary is recorded once even if the
// new plateau repeats the probe value.
func extractItem(durations []int64, durLen int, score []int64, scoreLen int, tempo []int64) segments {
	boundaries := []int{0}
	for i := 0; i < durLen; i++ {
		if durations[boundaries[len(boundaries)-1]] != durations[i] {
			boundaries = append(boundaries, i)
		}
	}
	boundaries = append(boundaries, durLen)

	// Score pass restarts from index 0 with its own end sentinel.
	boundaries = append(boundaries, 0)
	for i := 0; i < scoreLen; i++ {
		if score[boundaries[len(boundaries)-1]] != score[i] {
			boundaries = append(boundaries, i)
		}
	}
	boundaries = append(boundaries, scoreLen)

	slices.Sort(boundaries)
	boundaries = slices.Compact(boundaries)

	n := len(boundaries) - 1
	segs := segments{
		durations: make([]int64, n),
		score:     make([]int64, n),
		tempo:     make([]int64, n),
	}
	for i := 0; i < n; i++ {
		l, r := boundaries[i], boundaries[i+1]
		segs.durations[i] = mode(durations[l:r])
		segs.score[i] = mode(score[l:r])
		segs.tempo[i] = mode(tempo[l:r])
	}
	return segs
}

// padTo right-pads xs with zeros to length n.
func padTo(xs []int64, n int) []int64 {
	out := make([]int64, n)
	copy(out, xs)
	return out
}
