package featstore

import (
	"bytes"
	"context"
	"iter"
	"sort"
	"sync"
)

// Memory is an in-memory Store backed by a map. It is safe for concurrent
// use and intended primarily for testing.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates a new in-memory Store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, kind Kind, utterance string) ([]byte, error) {
	k, err := encodeKey(kind, utterance)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	v, ok := m.data[string(k)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	// Return a copy to prevent mutation.
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (m *Memory) Set(_ context.Context, kind Kind, utterance string, value []byte) error {
	k, err := encodeKey(kind, utterance)
	if err != nil {
		return err
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.mu.Lock()
	m.data[string(k)] = cp
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, kind Kind, utterance string) error {
	k, err := encodeKey(kind, utterance)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.data, string(k))
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context, kind Kind) iter.Seq2[Entry, error] {
	prefix := kindPrefix(kind)

	// Snapshot matching entries under read lock.
	m.mu.RLock()
	var matches []Entry
	for k, v := range m.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			cp := make([]byte, len(v))
			copy(cp, v)
			matches = append(matches, Entry{
				Utterance: decodeUtterance([]byte(k), kind),
				Value:     cp,
			})
		}
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Utterance < matches[j].Utterance
	})

	return func(yield func(Entry, error) bool) {
		for _, e := range matches {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (m *Memory) Close() error {
	return nil
}
