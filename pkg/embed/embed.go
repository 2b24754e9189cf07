// Package embed converts note and query text into dense vector
// representations for semantic indexing and search.
//
// An [Embedder] turns text into float32 vectors of a fixed dimension.
// Two remote API implementations are provided:
//
//   - [OpenAI]: OpenAI text-embedding-3-small / text-embedding-3-large
//   - [Gemini]: Google gemini-embedding-001
//
// Notes and queries must be embedded by the same Embedder with the same
// model and dimension, or similarity scores between them are meaningless.
//
// # Quick Start
//
//	e := embed.NewOpenAI("sk-xxx", embed.WithDimension(1536))
//	vec, err := e.Embed(ctx, "met alice for coffee")
//
//	vecs, err := e.EmbedBatch(ctx, []string{"hello", "world"})
package embed

import (
	"context"
	"errors"
)

// Embedder converts text into dense float32 vectors.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns embedding vectors for multiple texts.
	// Implementations may split large batches into smaller API calls
	// transparently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of the output vectors.
	Dimension() int
}

// Common errors.
var (
	// ErrEmptyInput is returned when the input text is empty.
	ErrEmptyInput = errors.New("embed: empty input")
)

// float64sToFloat32s converts a []float64 to []float32.
func float64sToFloat32s(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
