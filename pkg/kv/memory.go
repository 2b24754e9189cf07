package kv

import (
	"bytes"
	"context"
	"iter"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Memory keeps the whole store in a map. Safe for concurrent use; meant
// for tests and ephemeral setups.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
	opts *Options
}

// NewMemory creates an in-memory Store. A nil opts uses defaults.
func NewMemory(opts *Options) *Memory {
	return &Memory{data: map[string][]byte{}, opts: opts}
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	v, ok := m.data[string(m.opts.encode(key))]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (m *Memory) Set(_ context.Context, key Key, value []byte) error {
	m.mu.Lock()
	m.data[string(m.opts.encode(key))] = bytes.Clone(value)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	delete(m.data, string(m.opts.encode(key)))
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	// A non-empty prefix is terminated with the separator so that
	// listing ["a","b"] never picks up "a:bc". An empty prefix walks
	// the whole store.
	var want string
	if p := m.opts.encode(prefix); len(p) > 0 {
		want = string(append(p, m.opts.sep()))
	}

	return func(yield func(Entry, error) bool) {
		m.mu.RLock()
		keys := slices.Sorted(maps.Keys(m.data))
		snapshot := make(map[string][]byte, len(keys))
		for _, k := range keys {
			if strings.HasPrefix(k, want) {
				snapshot[k] = bytes.Clone(m.data[k])
			}
		}
		m.mu.RUnlock()

		for _, k := range keys {
			v, ok := snapshot[k]
			if !ok {
				continue
			}
			if !yield(Entry{Key: m.opts.decode([]byte(k)), Value: v}, nil) {
				return
			}
		}
	}
}

func (m *Memory) BatchSet(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	for _, e := range entries {
		m.data[string(m.opts.encode(e.Key))] = bytes.Clone(e.Value)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) DropAll(_ context.Context) error {
	m.mu.Lock()
	clear(m.data)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
