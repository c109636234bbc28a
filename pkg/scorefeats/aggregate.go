package scorefeats

import (
	"fmt"
	"sync"
)

// LabelAggregator converts per-sample label sequences into per-frame label
// sequences by windowed majority vote. Framing follows the companion
// spectral transform exactly: the same window length, hop length and center
// padding yield the same frame count, so output frames are index-aligned
// with spectral frames.
type LabelAggregator struct {
	cfg Config
}

// NewLabelAggregator creates a LabelAggregator with the given config.
func NewLabelAggregator(cfg Config) *LabelAggregator {
	return &LabelAggregator{cfg: cfg}
}

// Config returns the aggregator's configuration.
func (a *LabelAggregator) Config() Config { return a.cfg }

// Aggregate reduces a padded [B][T][D] label batch to one label per
// analysis frame, producing a [B][F] batch.
//
// Per sample, the D label channels are summed to a single scalar; per
// frame, the window's scalars are reduced by statistical mode (ties go to
// the lowest value). This tolerates multi-hot and multi-channel label
// encodings.
//
// lengths may be nil. When given, it must hold one valid length per item;
// the output lengths hold the per-item valid frame counts and every output
// frame at or beyond an item's valid frame count is zero. When nil, no
// output lengths are produced and no masking is applied.
//
// All items must share the same padded length T and label dimension D.
func (a *LabelAggregator) Aggregate(input [][][]float64, lengths []int) ([][]float64, []int, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	bs := len(input)
	if bs == 0 {
		if lengths == nil {
			return [][]float64{}, nil, nil
		}
		return [][]float64{}, []int{}, nil
	}

	maxLen := len(input[0])
	dim := 0
	if maxLen > 0 {
		dim = len(input[0][0])
	}
	for i, item := range input {
		if len(item) != maxLen {
			return nil, nil, fmt.Errorf("%w: item %d has %d samples, want %d",
				ErrShapeMismatch, i, len(item), maxLen)
		}
		for t, row := range item {
			if len(row) != dim {
				return nil, nil, fmt.Errorf("%w: item %d sample %d has label dim %d, want %d",
					ErrShapeMismatch, i, t, len(row), dim)
			}
		}
	}
	if err := checkLengths(lengths, bs, maxLen, "input"); err != nil {
		return nil, nil, err
	}

	pad := a.cfg.pad()
	paddedLen := maxLen + 2*pad
	if paddedLen < a.cfg.WinLength {
		return nil, nil, fmt.Errorf("%w: padded length %d < win_length %d",
			ErrWindowTooLong, paddedLen, a.cfg.WinLength)
	}
	nframe := (paddedLen-a.cfg.WinLength)/a.cfg.HopLength + 1

	// Valid lengths shorter than the window would need clamping to frame;
	// reject instead (a zero valid length is fine and yields zero frames).
	var olens []int
	if lengths != nil {
		olens = make([]int, bs)
		for i, n := range lengths {
			if n == 0 {
				continue
			}
			if n+2*pad < a.cfg.WinLength {
				return nil, nil, fmt.Errorf("%w: item %d valid length %d (+%d pad) < win_length %d",
					ErrWindowTooLong, i, n, 2*pad, a.cfg.WinLength)
			}
			olens[i] = a.cfg.NumFrames(n)
		}
	}

	output := make([][]float64, bs)
	var wg sync.WaitGroup
	for i := range input {
		wg.Add(1)
		go func() {
			defer wg.Done()
			olen := nframe
			if olens != nil {
				olen = olens[i]
			}
			output[i] = a.aggregateItem(input[i], nframe, olen)
		}()
	}
	wg.Wait()

	return output, olens, nil
}

// aggregateItem frames and reduces one item. olen caps the number of valid
// output frames; frames at or beyond it stay zero so padding never leaks a
// non-zero label.
func (a *LabelAggregator) aggregateItem(item [][]float64, nframe, olen int) []float64 {
	sums := sumAndPad(item, a.cfg.pad())

	out := make([]float64, nframe)
	for f := 0; f < olen; f++ {
		start := f * a.cfg.HopLength
		out[f] = mode(sums[start : start+a.cfg.WinLength])
	}
	return out
}

// sumAndPad collapses each sample's label channels to one scalar and
// center-pads the series by pad samples per side with edge reflection: the
// pad samples adjacent to each boundary are replicated into the pad region,
// matching the companion spectral transform's edge behavior.
func sumAndPad(item [][]float64, pad int) []float64 {
	n := len(item)
	sums := make([]float64, n+2*pad)
	for t, row := range item {
		s := 0.0
		for _, v := range row {
			s += v
		}
		sums[pad+t] = s
	}
	if pad > 0 {
		copy(sums[:pad], sums[pad:2*pad])
		copy(sums[n+pad:], sums[n:n+pad])
	}
	return sums
}
