package featstore

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/soratune/scorefeats/pkg/scorefeats"
)

// FrameRecord is one utterance's aggregated frame-level labels together
// with the config that produced them, so a cache hit can be rejected when
// the framing parameters change.
type FrameRecord struct {
	UtteranceID string            `msgpack:"utterance_id"`
	WriteID     string            `msgpack:"write_id"`
	Config      scorefeats.Config `msgpack:"config"`
	Labels      []float64         `msgpack:"labels"`
	Length      int               `msgpack:"length"`
}

// SegmentRecord is one utterance's extracted syllable segments.
type SegmentRecord struct {
	UtteranceID string  `msgpack:"utterance_id"`
	WriteID     string  `msgpack:"write_id"`
	Durations   []int64 `msgpack:"durations"`
	Score       []int64 `msgpack:"score"`
	Tempo       []int64 `msgpack:"tempo"`
	Length      int     `msgpack:"length"`
}

// Cache is a typed feature cache over a Store. Records are encoded with
// msgpack; each write is stamped with a fresh write id for provenance.
type Cache struct {
	store Store
}

// NewCache creates a Cache over the given store.
func NewCache(store Store) *Cache {
	return &Cache{store: store}
}

// PutFrames stores an utterance's frame record, assigning a new write id.
func (c *Cache) PutFrames(ctx context.Context, rec *FrameRecord) error {
	rec.WriteID = uuid.NewString()
	b, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("featstore: encode frames %q: %w", rec.UtteranceID, err)
	}
	return c.store.Set(ctx, KindFrames, rec.UtteranceID, b)
}

// Frames loads an utterance's frame record.
func (c *Cache) Frames(ctx context.Context, utterance string) (*FrameRecord, error) {
	b, err := c.store.Get(ctx, KindFrames, utterance)
	if err != nil {
		return nil, err
	}
	var rec FrameRecord
	if err := msgpack.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("featstore: decode frames %q: %w", utterance, err)
	}
	return &rec, nil
}

// PutSegments stores an utterance's segment record, assigning a new write id.
func (c *Cache) PutSegments(ctx context.Context, rec *SegmentRecord) error {
	rec.WriteID = uuid.NewString()
	b, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("featstore: encode segments %q: %w", rec.UtteranceID, err)
	}
	return c.store.Set(ctx, KindSegments, rec.UtteranceID, b)
}

// Segments loads an utterance's segment record.
func (c *Cache) Segments(ctx context.Context, utterance string) (*SegmentRecord, error) {
	b, err := c.store.Get(ctx, KindSegments, utterance)
	if err != nil {
		return nil, err
	}
	var rec SegmentRecord
	if err := msgpack.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("featstore: decode segments %q: %w", utterance, err)
	}
	return &rec, nil
}

// Delete removes an utterance's record of the given kind.
func (c *Cache) Delete(ctx context.Context, kind Kind, utterance string) error {
	return c.store.Delete(ctx, kind, utterance)
}

// ListUtterances iterates over the utterance ids stored under a kind, in
// lexicographic order.
func (c *Cache) ListUtterances(ctx context.Context, kind Kind) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for e, err := range c.store.List(ctx, kind) {
			if err != nil {
				if !yield("", err) {
					return
				}
				continue
			}
			if !yield(e.Utterance, nil) {
				return
			}
		}
	}
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}
