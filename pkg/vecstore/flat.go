package vecstore

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Flat is an exact brute-force Index. Vectors are scanned in insertion
// order, so equal scores rank older vectors first; search results are
// fully deterministic.
//
// It is safe for concurrent use.
type Flat struct {
	mu      sync.RWMutex
	ids     []string // insertion order
	pos     map[string]int
	vectors [][]float32
}

// NewFlat creates a new empty flat index.
func NewFlat() *Flat {
	return &Flat{pos: make(map[string]int)}
}

func (f *Flat) Insert(id string, vector []float32) error {
	cp := make([]float32, len(vector))
	copy(cp, vector)
	f.mu.Lock()
	defer f.mu.Unlock()
	if i, ok := f.pos[id]; ok {
		f.vectors[i] = cp
		return nil
	}
	f.pos[id] = len(f.ids)
	f.ids = append(f.ids, id)
	f.vectors = append(f.vectors, cp)
	return nil
}

func (f *Flat) BatchInsert(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("vecstore: BatchInsert length mismatch: %d ids, %d vectors", len(ids), len(vectors))
	}
	for i, id := range ids {
		if err := f.Insert(id, vectors[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *Flat) Search(query []float32, topK int) ([]Match, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.ids) == 0 || topK <= 0 {
		return nil, nil
	}

	matches := make([]Match, 0, len(f.ids))
	for i, id := range f.ids {
		if f.vectors[i] == nil {
			continue // deleted slot
		}
		matches = append(matches, Match{ID: id, Score: CosineScore(query, f.vectors[i])})
	}

	// Stable keeps insertion order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (f *Flat) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i, ok := f.pos[id]; ok {
		// Tombstone the slot so insertion order of the rest is preserved.
		f.vectors[i] = nil
		delete(f.pos, id)
	}
	return nil
}

func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.pos)
}

func (f *Flat) Close() error {
	return nil
}

// CosineScore computes the normalized cosine similarity (1+cos)/2 between
// two vectors, clamped to [0, 1]. Mismatched dimensions or zero-norm
// vectors score 0.
func CosineScore(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}

	if normA == 0 || normB == 0 {
		return 0 // zero vector has no direction
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [-1, 1] to absorb floating point error.
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	return float32((1 + cos) / 2)
}
