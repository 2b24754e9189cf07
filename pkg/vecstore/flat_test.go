package vecstore_test

import (
	"math"
	"testing"

	"github.com/mindbook/mindbook/pkg/vecstore"
)

func TestCosineScore(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.5},
		{"scaled", []float32{2, 0}, []float32{5, 0}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"dim mismatch", []float32{1, 0, 0}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		got := vecstore.CosineScore(tt.a, tt.b)
		if math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("%s: CosineScore = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFlatSearch(t *testing.T) {
	f := vecstore.NewFlat()

	if err := f.Insert("east", []float32{1, 0}); err != nil {
		t.Fatal(err)
	}
	if err := f.Insert("north", []float32{0, 1}); err != nil {
		t.Fatal(err)
	}
	if err := f.Insert("northeast", []float32{1, 1}); err != nil {
		t.Fatal(err)
	}

	matches, err := f.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	if matches[0].ID != "east" {
		t.Fatalf("matches[0] = %q, want east", matches[0].ID)
	}
	if matches[0].Score != 1 {
		t.Fatalf("matches[0].Score = %v, want 1", matches[0].Score)
	}
	if matches[1].ID != "northeast" {
		t.Fatalf("matches[1] = %q, want northeast", matches[1].ID)
	}
	if matches[2].ID != "north" || matches[2].Score != 0.5 {
		t.Fatalf("matches[2] = %+v, want north/0.5", matches[2])
	}
}

func TestFlatSearch_TopK(t *testing.T) {
	f := vecstore.NewFlat()
	for i, v := range [][]float32{{1, 0}, {0, 1}, {1, 1}, {-1, 0}} {
		if err := f.Insert(string(rune('a'+i)), v); err != nil {
			t.Fatal(err)
		}
	}

	matches, err := f.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}

	matches, err = f.Search([]float32{1, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if matches != nil {
		t.Fatalf("topK=0 should return nil, got %v", matches)
	}
}

func TestFlatSearch_TieKeepsInsertionOrder(t *testing.T) {
	f := vecstore.NewFlat()
	// Same vector twice: identical scores, older entry must rank first.
	if err := f.Insert("older", []float32{3, 4}); err != nil {
		t.Fatal(err)
	}
	if err := f.Insert("newer", []float32{3, 4}); err != nil {
		t.Fatal(err)
	}

	matches, err := f.Search([]float32{3, 4}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if matches[0].ID != "older" || matches[1].ID != "newer" {
		t.Fatalf("tie order = [%s %s], want [older newer]", matches[0].ID, matches[1].ID)
	}
}

func TestFlatInsert_Update(t *testing.T) {
	f := vecstore.NewFlat()
	if err := f.Insert("x", []float32{1, 0}); err != nil {
		t.Fatal(err)
	}
	if err := f.Insert("x", []float32{0, 1}); err != nil {
		t.Fatal(err)
	}
	if f.Len() != 1 {
		t.Fatalf("Len = %d, want 1", f.Len())
	}

	matches, err := f.Search([]float32{0, 1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if matches[0].ID != "x" || matches[0].Score != 1 {
		t.Fatalf("match = %+v, want x/1", matches[0])
	}
}

func TestFlatDelete(t *testing.T) {
	f := vecstore.NewFlat()
	if err := f.Insert("a", []float32{1, 0}); err != nil {
		t.Fatal(err)
	}
	if err := f.Insert("b", []float32{0, 1}); err != nil {
		t.Fatal(err)
	}

	if err := f.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if f.Len() != 1 {
		t.Fatalf("Len = %d, want 1", f.Len())
	}

	matches, err := f.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ID != "b" {
		t.Fatalf("matches = %v, want only b", matches)
	}

	// Deleting a missing ID is a no-op.
	if err := f.Delete("ghost"); err != nil {
		t.Fatal(err)
	}
}

func TestFlatBatchInsert(t *testing.T) {
	f := vecstore.NewFlat()
	err := f.BatchInsert([]string{"a", "b"}, [][]float32{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatalf("BatchInsert: %v", err)
	}
	if f.Len() != 2 {
		t.Fatalf("Len = %d, want 2", f.Len())
	}

	err = f.BatchInsert([]string{"a"}, [][]float32{{1, 0}, {0, 1}})
	if err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func BenchmarkFlatSearch(b *testing.B) {
	f := vecstore.NewFlat()
	dim := 128
	for i := 0; i < 1000; i++ {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = float32((i*31 + j*7) % 17)
		}
		_ = f.Insert(string(rune('a'+i%26))+string(rune('0'+i%10)), vec)
	}
	query := make([]float32, dim)
	for j := range query {
		query[j] = float32(j % 13)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = f.Search(query, 10)
	}
}
