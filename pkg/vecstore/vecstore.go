// Package vecstore provides the similarity index over note embeddings.
//
// The [Index] interface defines the contract for vector storage and
// nearest-neighbor search. The built-in [Flat] implementation does exact
// brute-force search, which is the right trade-off at personal-memory
// scale (hundreds to low thousands of notes per owner). Deployments that
// outgrow it can swap in a client for a dedicated vector database without
// touching the callers.
package vecstore

// Index is the interface for nearest-neighbor search over dense float32
// vectors.
//
// All implementations must be safe for concurrent use.
type Index interface {
	// Insert adds or updates a vector with the given ID.
	Insert(id string, vector []float32) error

	// BatchInsert adds or updates multiple vectors at once.
	// ids and vectors must have the same length.
	BatchInsert(ids []string, vectors [][]float32) error

	// Search returns the top-k most similar vectors to the query,
	// ordered by descending score. Ties keep insertion order.
	Search(query []float32, topK int) ([]Match, error)

	// Delete removes a vector by ID. No error if ID does not exist.
	Delete(id string) error

	// Len returns the number of vectors in the index.
	Len() int

	// Close releases resources held by the index.
	Close() error
}

// Match is a single result from a similarity search.
type Match struct {
	// ID is the identifier of the matched vector.
	ID string

	// Score is the normalized cosine similarity in [0, 1]:
	// (1+cos)/2, so 1 means identical direction, 0.5 orthogonal,
	// 0 opposite. This is the same normalization graph databases
	// report from their cosine vector indexes, which keeps stored
	// relation scores comparable across backends.
	Score float32
}
