package scorefeats

import (
	"errors"
	"testing"
)

func TestExtractUnionBoundaries(t *testing.T) {
	// Duration changes at {0,2,5}, score changes at {0,3,5}; the union
	// {0,2,3,5} yields three segments.
	durations := [][]int64{{1, 1, 2, 2, 2}}
	score := [][]int64{{9, 9, 9, 8, 8}}
	tempo := [][]int64{{120, 120, 120, 120, 120}}
	lens := []int{5}

	out, err := NewSegmentExtractor().Extract(durations, lens, score, lens, tempo, lens)
	if err != nil {
		t.Fatal(err)
	}
	if out.DurationsLengths[0] != 3 || out.ScoreLengths[0] != 3 || out.TempoLengths[0] != 3 {
		t.Fatalf("segment counts = %d/%d/%d, want 3/3/3",
			out.DurationsLengths[0], out.ScoreLengths[0], out.TempoLengths[0])
	}
	wantDur := []int64{1, 2, 2}
	wantScore := []int64{9, 9, 8}
	wantTempo := []int64{120, 120, 120}
	for i := 0; i < 3; i++ {
		if out.Durations[0][i] != wantDur[i] {
			t.Errorf("seg %d duration = %d, want %d", i, out.Durations[0][i], wantDur[i])
		}
		if out.Score[0][i] != wantScore[i] {
			t.Errorf("seg %d score = %d, want %d", i, out.Score[0][i], wantScore[i])
		}
		if out.Tempo[0][i] != wantTempo[i] {
			t.Errorf("seg %d tempo = %d, want %d", i, out.Tempo[0][i], wantTempo[i])
		}
	}
}

func TestExtractIdempotent(t *testing.T) {
	// Segmenting the representative values of a previous extraction must
	// yield exactly one segment per input value.
	durations := [][]int64{{1, 2, 2}}
	score := [][]int64{{9, 9, 8}}
	tempo := [][]int64{{120, 120, 120}}
	lens := []int{3}

	out, err := NewSegmentExtractor().Extract(durations, lens, score, lens, tempo, lens)
	if err != nil {
		t.Fatal(err)
	}
	if out.DurationsLengths[0] != 3 {
		t.Fatalf("segment count = %d, want 3", out.DurationsLengths[0])
	}
	for i := 0; i < 3; i++ {
		if out.Durations[0][i] != durations[0][i] || out.Score[0][i] != score[0][i] || out.Tempo[0][i] != tempo[0][i] {
			t.Errorf("seg %d = (%d,%d,%d), want (%d,%d,%d)", i,
				out.Durations[0][i], out.Score[0][i], out.Tempo[0][i],
				durations[0][i], score[0][i], tempo[0][i])
		}
	}
}

func TestExtractLastRecordedBoundaryRule(t *testing.T) {
	// Boundary detection compares against the value at the last recorded
	// boundary. A single-sample blip produces boundaries on both sides.
	durations := [][]int64{{1, 1, 2, 1, 1}}
	score := [][]int64{{9, 9, 9, 9, 9}}
	tempo := [][]int64{{100, 100, 100, 100, 100}}
	lens := []int{5}

	out, err := NewSegmentExtractor().Extract(durations, lens, score, lens, tempo, lens)
	if err != nil {
		t.Fatal(err)
	}
	if out.DurationsLengths[0] != 3 {
		t.Fatalf("segment count = %d, want 3 (boundaries {0,2,3,5})", out.DurationsLengths[0])
	}
	want := []int64{1, 2, 1}
	for i, w := range want {
		if out.Durations[0][i] != w {
			t.Errorf("seg %d duration = %d, want %d", i, out.Durations[0][i], w)
		}
	}
}

func TestExtractTempoNeverSplits(t *testing.T) {
	// A tempo change alone does not create a boundary; tempo is summarized
	// over the segments duration and score dictate, ties to the lowest.
	durations := [][]int64{{1, 1}}
	score := [][]int64{{3, 3}}
	tempo := [][]int64{{9, 7}}
	lens := []int{2}

	out, err := NewSegmentExtractor().Extract(durations, lens, score, lens, tempo, lens)
	if err != nil {
		t.Fatal(err)
	}
	if out.TempoLengths[0] != 1 {
		t.Fatalf("segment count = %d, want 1", out.TempoLengths[0])
	}
	if out.Tempo[0][0] != 7 {
		t.Errorf("tempo mode = %d, want 7 (tie-break to lowest)", out.Tempo[0][0])
	}
}

func TestExtractIndependentStreamLengths(t *testing.T) {
	// The three streams may have different valid lengths; boundaries use
	// each stream's own end sentinel.
	durations := [][]int64{{1, 1, 1, 0, 0}}
	score := [][]int64{{9, 9, 9, 9, 9}}
	tempo := [][]int64{{100, 100, 100, 100, 100}}

	out, err := NewSegmentExtractor().Extract(durations, []int{3}, score, []int{5}, tempo, []int{5})
	if err != nil {
		t.Fatal(err)
	}
	// Boundaries: durations {0,3}, score {0,5} => union {0,3,5}.
	if out.DurationsLengths[0] != 2 {
		t.Fatalf("segment count = %d, want 2", out.DurationsLengths[0])
	}
	if out.Score[0][0] != 9 || out.Score[0][1] != 9 {
		t.Errorf("score segments = %v, want [9 9]", out.Score[0])
	}
}

func TestExtractEmptyItem(t *testing.T) {
	durations := [][]int64{{0, 0, 0}}
	score := [][]int64{{0, 0, 0}}
	tempo := [][]int64{{0, 0, 0}}
	zero := []int{0}

	out, err := NewSegmentExtractor().Extract(durations, zero, score, zero, tempo, zero)
	if err != nil {
		t.Fatal(err)
	}
	if out.DurationsLengths[0] != 0 {
		t.Fatalf("segment count = %d, want 0 for empty item", out.DurationsLengths[0])
	}
	if len(out.Durations[0]) != 0 {
		t.Errorf("padded width = %d, want 0", len(out.Durations[0]))
	}
}

func TestExtractBatchPadding(t *testing.T) {
	durations := [][]int64{
		{1, 1, 2, 2, 3},
		{4, 4, 4, 4, 4},
	}
	score := [][]int64{
		{9, 9, 9, 9, 9},
		{6, 6, 6, 6, 6},
	}
	tempo := [][]int64{
		{100, 100, 100, 100, 100},
		{90, 90, 90, 90, 90},
	}
	lens := []int{5, 5}

	out, err := NewSegmentExtractor().Extract(durations, lens, score, lens, tempo, lens)
	if err != nil {
		t.Fatal(err)
	}
	if out.DurationsLengths[0] != 3 || out.DurationsLengths[1] != 1 {
		t.Fatalf("segment counts = %v, want [3 1]", out.DurationsLengths)
	}
	// Item 1 is right-padded with zeros to the batch max of 3.
	if len(out.Durations[1]) != 3 {
		t.Fatalf("padded width = %d, want 3", len(out.Durations[1]))
	}
	if out.Durations[1][0] != 4 || out.Durations[1][1] != 0 || out.Durations[1][2] != 0 {
		t.Errorf("item 1 durations = %v, want [4 0 0]", out.Durations[1])
	}
	if out.Tempo[1][1] != 0 || out.Score[1][2] != 0 {
		t.Errorf("item 1 padding leaked: score=%v tempo=%v", out.Score[1], out.Tempo[1])
	}
}

func TestExtractErrors(t *testing.T) {
	ext := NewSegmentExtractor()

	// Valid length beyond buffer capacity.
	_, err := ext.Extract(
		[][]int64{{1, 1, 1}}, []int{9},
		[][]int64{{2, 2, 2}}, []int{3},
		[][]int64{{3, 3, 3}}, []int{3})
	if !errors.Is(err, ErrLengthOutOfRange) {
		t.Errorf("length > capacity: err = %v, want ErrLengthOutOfRange", err)
	}

	// Streams with different backing capacities.
	_, err = ext.Extract(
		[][]int64{{1, 1, 1}}, []int{3},
		[][]int64{{2, 2}}, []int{2},
		[][]int64{{3, 3, 3}}, []int{3})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("capacity mismatch: err = %v, want ErrShapeMismatch", err)
	}

	// Mismatched batch sizes.
	_, err = ext.Extract(
		[][]int64{{1}, {1}}, []int{1, 1},
		[][]int64{{2}}, []int{1},
		[][]int64{{3}}, []int{1})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("batch mismatch: err = %v, want ErrShapeMismatch", err)
	}
}

func BenchmarkExtract(b *testing.B) {
	ext := NewSegmentExtractor()

	// 8 items of 4096 samples with plateaus of ~32 samples.
	bs, n := 8, 4096
	durations := make([][]int64, bs)
	score := make([][]int64, bs)
	tempo := make([][]int64, bs)
	lens := make([]int, bs)
	for i := range durations {
		d := make([]int64, n)
		s := make([]int64, n)
		tp := make([]int64, n)
		for t := range d {
			d[t] = int64(t / 32)
			s[t] = int64(60 + (t/48)%12)
			tp[t] = 120
		}
		durations[i], score[i], tempo[i] = d, s, tp
		lens[i] = n
	}

	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		if _, err := ext.Extract(durations, lens, score, lens, tempo, lens); err != nil {
			b.Fatal(err)
		}
	}
}
