package kv_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/mindbook/mindbook/pkg/kv"
)

// newTestStore creates a new Store for testing. Tests in this file use the
// Memory implementation; badger_test.go runs the same operations against
// an in-memory badger engine.
func newTestStore(t *testing.T, opts *kv.Options) kv.Store {
	t.Helper()
	s := kv.NewMemory(opts)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	key := kv.Key{"u1", "n", "7f3a"}
	val := []byte("hello")

	// Get non-existent key.
	_, err := s.Get(ctx, key)
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Set and Get.
	if err := s.Set(ctx, key, val); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(val) {
		t.Fatalf("Get = %q, want %q", got, val)
	}

	// Overwrite is a merge, not a duplicate.
	val2 := []byte("world")
	if err := s.Set(ctx, key, val2); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err = s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after overwrite: %v", err)
	}
	if string(got) != string(val2) {
		t.Fatalf("Get = %q, want %q", got, val2)
	}

	// Delete.
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = s.Get(ctx, key)
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Delete non-existent key should not error.
	if err := s.Delete(ctx, kv.Key{"no", "such", "key"}); err != nil {
		t.Fatalf("Delete non-existent: %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	entries := []kv.Entry{
		{Key: kv.Key{"u1", "n", "a1"}, Value: []byte("note a")},
		{Key: kv.Key{"u1", "n", "b2"}, Value: []byte("note b")},
		{Key: kv.Key{"u1", "d", "2024", "January", "5", "a1"}, Value: nil},
		{Key: kv.Key{"u1", "r", "a1", "b2"}, Value: []byte("0.8")},
		{Key: kv.Key{"u2", "n", "c3"}, Value: []byte("note c")},
	}
	if err := s.BatchSet(ctx, entries); err != nil {
		t.Fatalf("BatchSet: %v", err)
	}

	// List u1:n: both of u1's notes, no bleed from u2.
	var got []string
	for entry, err := range s.List(ctx, kv.Key{"u1", "n"}) {
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		got = append(got, entry.Key.String()+"="+string(entry.Value))
	}
	want := []string{"u1:n:a1=note a", "u1:n:b2=note b"}
	if !slices.Equal(got, want) {
		t.Fatalf("List(u1:n) = %v, want %v", got, want)
	}

	// List u1: all of u1's keys, lexicographic order.
	got = nil
	for entry, err := range s.List(ctx, kv.Key{"u1"}) {
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		got = append(got, entry.Key.String())
	}
	if len(got) != 4 {
		t.Fatalf("List(u1) returned %d entries, want 4: %v", len(got), got)
	}
	if !slices.IsSorted(got) {
		t.Fatalf("List(u1) not sorted: %v", got)
	}

	// Empty prefix scans everything.
	count := 0
	for _, err := range s.List(ctx, nil) {
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		count++
	}
	if count != len(entries) {
		t.Fatalf("List(nil) returned %d entries, want %d", count, len(entries))
	}
}

func TestList_PrefixBoundary(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	// "u1" must not match "u10".
	if err := s.Set(ctx, kv.Key{"u1", "n", "x"}, []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, kv.Key{"u10", "n", "y"}, []byte("2")); err != nil {
		t.Fatal(err)
	}

	var got []string
	for entry, err := range s.List(ctx, kv.Key{"u1"}) {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, entry.Key.String())
	}
	want := []string{"u1:n:x"}
	if !slices.Equal(got, want) {
		t.Fatalf("List(u1) = %v, want %v", got, want)
	}
}

func TestList_EarlyStop(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	for _, id := range []string{"a", "b", "c", "d"} {
		if err := s.Set(ctx, kv.Key{"u1", "n", id}, []byte(id)); err != nil {
			t.Fatal(err)
		}
	}

	// Break out after the first entry; the iterator must stop cleanly.
	count := 0
	for _, err := range s.List(ctx, kv.Key{"u1", "n"}) {
		if err != nil {
			t.Fatal(err)
		}
		count++
		break
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestDropAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Set(ctx, kv.Key{"u1", "n", id}, []byte(id)); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.DropAll(ctx); err != nil {
		t.Fatalf("DropAll: %v", err)
	}

	for _, err := range s.List(ctx, nil) {
		if err != nil {
			t.Fatal(err)
		}
		t.Fatal("expected empty store after DropAll")
	}

	// Store is still usable after the wipe.
	if err := s.Set(ctx, kv.Key{"u1", "n", "fresh"}, []byte("x")); err != nil {
		t.Fatalf("Set after DropAll: %v", err)
	}
}

func TestCustomSeparator(t *testing.T) {
	ctx := context.Background()
	// 0x1F lets segments contain ':'.
	s := newTestStore(t, &kv.Options{Separator: 0x1F})

	key := kv.Key{"u1", "n", "note:with:colons"}
	if err := s.Set(ctx, key, []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	for entry, err := range s.List(ctx, kv.Key{"u1", "n"}) {
		if err != nil {
			t.Fatal(err)
		}
		if entry.Key[2] != "note:with:colons" {
			t.Fatalf("segment = %q, want %q", entry.Key[2], "note:with:colons")
		}
	}
}

func TestKeyChild(t *testing.T) {
	base := kv.Key{"u1", "d"}
	child := base.Child("2024", "January")
	if got, want := child.String(), "u1:d:2024:January"; got != want {
		t.Fatalf("Child = %q, want %q", got, want)
	}
	// The parent must not be mutated.
	if got, want := base.String(), "u1:d"; got != want {
		t.Fatalf("base = %q, want %q", got, want)
	}
}

func TestKeyString(t *testing.T) {
	k := kv.Key{"a", "b", "c"}
	if got := k.String(); got != "a:b:c" {
		t.Fatalf("String = %q, want %q", got, "a:b:c")
	}
	if got := strings.Count(k.String(), ":"); got != 2 {
		t.Fatalf("separator count = %d, want 2", got)
	}
}
