// Package featstore persists aligned score features produced during dataset
// preparation, keyed by utterance id. Data prep is the expensive phase of
// singing-voice training; caching the aggregated label frames and extracted
// segments lets later epochs and reruns skip it.
//
// The package includes a BadgerDB-backed store for production use and an
// in-memory store for testing. Cache is the typed layer most callers want;
// it encodes records with msgpack over a plain Store.
package featstore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// Kind names a record family within the store.
type Kind string

// Record kinds.
const (
	KindFrames   Kind = "frames"
	KindSegments Kind = "segments"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when no record exists for an utterance.
	ErrNotFound = errors.New("featstore: not found")
)

// Entry is one stored record as raw bytes, returned by List.
type Entry struct {
	Utterance string
	Value     []byte
}

// Store is the raw byte-level store beneath Cache. Implementations must be
// safe for concurrent use.
type Store interface {
	// Get retrieves the record for an utterance. Returns ErrNotFound if
	// not present.
	Get(ctx context.Context, kind Kind, utterance string) ([]byte, error)

	// Set stores a record, overwriting any existing one.
	Set(ctx context.Context, kind Kind, utterance string, value []byte) error

	// Delete removes a record. No error if it does not exist.
	Delete(ctx context.Context, kind Kind, utterance string) error

	// List iterates over all records of a kind in lexicographic utterance
	// order.
	List(ctx context.Context, kind Kind) iter.Seq2[Entry, error]

	// Close releases any resources held by the store.
	Close() error
}

// keySep separates the kind from the utterance id in encoded keys.
// Utterance ids must not contain it.
const keySep = ":"

func encodeKey(kind Kind, utterance string) ([]byte, error) {
	if utterance == "" {
		return nil, errors.New("featstore: empty utterance id")
	}
	if strings.Contains(utterance, keySep) {
		return nil, fmt.Errorf("featstore: utterance id %q contains %q", utterance, keySep)
	}
	return []byte(string(kind) + keySep + utterance), nil
}

func kindPrefix(kind Kind) []byte {
	return []byte(string(kind) + keySep)
}

func decodeUtterance(key []byte, kind Kind) string {
	return strings.TrimPrefix(string(key), string(kind)+keySep)
}
