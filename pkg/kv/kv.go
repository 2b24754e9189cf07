// Package kv provides the key-value substrate underneath the note graph.
// Keys are hierarchical paths represented as string slices (e.g.
// ["u1", "n", "7f3a..."]) and encoded with a configurable separator byte.
//
// Two implementations are provided: a BadgerDB-backed store for durable
// deployments and an in-memory store for tests. Per-key writes are atomic
// in both, which is what gives the temporal hierarchy its merge-by-key
// upsert semantics.
package kv

import (
	"context"
	"errors"
	"iter"
	"strings"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a key does not exist in the store.
	ErrNotFound = errors.New("kv: not found")
)

// Key is a hierarchical path represented as a slice of string segments.
// Key{"u1", "n", "abc"} encodes to "u1:n:abc" with the default separator.
//
// Segments must not contain the configured separator character.
type Key []string

// String returns the key as a human-readable string joined with ':'.
// For display and debugging only; storage encoding uses Options.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Child returns a new Key with the given segments appended.
func (k Key) Child(segs ...string) Key {
	out := make(Key, 0, len(k)+len(segs))
	out = append(out, k...)
	out = append(out, segs...)
	return out
}

// Entry is a key-value pair returned by List and consumed by BatchSet.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is the interface for a key-value store with path-based keys.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a key-value pair. Overwrites any existing value, so
	// setting the same key twice is an idempotent merge, not a duplicate.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key Key) error

	// List iterates over all entries whose key starts with the given prefix,
	// in lexicographic order of the encoded key.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// BatchSet atomically stores multiple key-value pairs.
	BatchSet(ctx context.Context, entries []Entry) error

	// DropAll removes every key in the store. This is the destructive
	// whole-store reset; there is no partial undo.
	DropAll(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// DefaultSeparator is the default separator byte used to encode key segments.
const DefaultSeparator byte = ':'

// Options configures store behavior.
type Options struct {
	// Separator is the byte used to join key segments when encoding to
	// storage. Default is ':' if zero.
	Separator byte
}

// sep returns the effective separator.
func (o *Options) sep() byte {
	if o != nil && o.Separator != 0 {
		return o.Separator
	}
	return DefaultSeparator
}

// encode converts a Key to its byte representation using the separator.
func (o *Options) encode(k Key) []byte {
	s := o.sep()
	n := 0
	for i, seg := range k {
		if i > 0 {
			n++ // separator
		}
		n += len(seg)
	}
	buf := make([]byte, n)
	pos := 0
	for i, seg := range k {
		if i > 0 {
			buf[pos] = s
			pos++
		}
		pos += copy(buf[pos:], seg)
	}
	return buf
}

// decode converts a byte representation back to a Key using the separator.
func (o *Options) decode(b []byte) Key {
	s := o.sep()
	n := 1
	for _, c := range b {
		if c == s {
			n++
		}
	}
	k := make(Key, 0, n)
	start := 0
	for i, c := range b {
		if c == s {
			k = append(k, string(b[start:i]))
			start = i + 1
		}
	}
	k = append(k, string(b[start:]))
	return k
}
