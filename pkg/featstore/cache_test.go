package featstore_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/soratune/scorefeats/pkg/featstore"
	"github.com/soratune/scorefeats/pkg/scorefeats"
)

func newTestCache(t *testing.T) *featstore.Cache {
	t.Helper()
	c := featstore.NewCache(featstore.NewMemory())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFramesRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	_, err := c.Frames(ctx, "utt001")
	if !errors.Is(err, featstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rec := &featstore.FrameRecord{
		UtteranceID: "utt001",
		Config:      scorefeats.DefaultConfig(),
		Labels:      []float64{60, 60, 62, 0},
		Length:      3,
	}
	if err := c.PutFrames(ctx, rec); err != nil {
		t.Fatalf("PutFrames: %v", err)
	}
	if rec.WriteID == "" {
		t.Fatal("PutFrames did not assign a write id")
	}

	got, err := c.Frames(ctx, "utt001")
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if got.WriteID != rec.WriteID {
		t.Errorf("write id = %q, want %q", got.WriteID, rec.WriteID)
	}
	if got.Config != rec.Config {
		t.Errorf("config = %+v, want %+v", got.Config, rec.Config)
	}
	if !slices.Equal(got.Labels, rec.Labels) || got.Length != 3 {
		t.Errorf("labels = %v (len %d), want %v (len 3)", got.Labels, got.Length, rec.Labels)
	}

	// Overwrites get a fresh write id.
	first := rec.WriteID
	if err := c.PutFrames(ctx, rec); err != nil {
		t.Fatalf("PutFrames overwrite: %v", err)
	}
	if rec.WriteID == first {
		t.Error("overwrite kept the old write id")
	}
}

func TestSegmentsRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	rec := &featstore.SegmentRecord{
		UtteranceID: "utt002",
		Durations:   []int64{1, 2, 2},
		Score:       []int64{9, 9, 8},
		Tempo:       []int64{120, 120, 120},
		Length:      3,
	}
	if err := c.PutSegments(ctx, rec); err != nil {
		t.Fatalf("PutSegments: %v", err)
	}
	got, err := c.Segments(ctx, "utt002")
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if !slices.Equal(got.Durations, rec.Durations) ||
		!slices.Equal(got.Score, rec.Score) ||
		!slices.Equal(got.Tempo, rec.Tempo) {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if err := c.Delete(ctx, featstore.KindSegments, "utt002"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Segments(ctx, "utt002"); !errors.Is(err, featstore.ErrNotFound) {
		t.Fatalf("after delete: err = %v, want ErrNotFound", err)
	}
}

func TestListUtterances(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	for _, utt := range []string{"utt0003", "utt0001", "utt0002"} {
		rec := &featstore.FrameRecord{UtteranceID: utt, Labels: []float64{1}, Length: 1}
		if err := c.PutFrames(ctx, rec); err != nil {
			t.Fatalf("PutFrames(%s): %v", utt, err)
		}
	}
	// A segment record under another kind must not show up.
	seg := &featstore.SegmentRecord{UtteranceID: "utt0009", Durations: []int64{1}, Length: 1}
	if err := c.PutSegments(ctx, seg); err != nil {
		t.Fatalf("PutSegments: %v", err)
	}

	var utts []string
	for utt, err := range c.ListUtterances(ctx, featstore.KindFrames) {
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		utts = append(utts, utt)
	}
	want := []string{"utt0001", "utt0002", "utt0003"}
	if !slices.Equal(utts, want) {
		t.Fatalf("utterances = %v, want %v", utts, want)
	}
}

func TestBadUtteranceID(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	rec := &featstore.FrameRecord{UtteranceID: "", Labels: []float64{1}}
	if err := c.PutFrames(ctx, rec); err == nil {
		t.Error("empty utterance id accepted")
	}
	rec.UtteranceID = "bad:id"
	if err := c.PutFrames(ctx, rec); err == nil {
		t.Error("utterance id with separator accepted")
	}
}
