// Package graph provides a labeled-node graph interface and a KV-backed
// implementation. Nodes are identified by unique string labels and carry
// arbitrary key-value attributes. Edges connect two nodes with a kind and
// an optional score, and are stored with forward and reverse indexes for
// efficient traversal in both directions.
//
// The note store builds two structures on this package: the temporal
// hierarchy (year, month, and day marker nodes chained by containment
// edges) and the similarity web (note-to-note edges scored by embedding
// similarity).
package graph

import (
	"context"
	"errors"
	"iter"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a node does not exist.
	ErrNotFound = errors.New("graph: not found")

	// ErrInvalidLabel is returned when a label or edge kind contains the
	// KV separator character, which would corrupt key encoding. Labels
	// and kinds are used as KV key segments and must not contain the
	// separator.
	ErrInvalidLabel = errors.New("graph: label contains separator")
)

// Node is a vertex in the graph identified by a unique label.
type Node struct {
	// Label is the unique identifier for this node.
	Label string `json:"label"`

	// Attrs holds arbitrary key-value attributes associated with the node.
	// Values must be JSON-serializable.
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Edge is a directed edge between two nodes with a kind and a score.
type Edge struct {
	// From is the source node label.
	From string `json:"from"`

	// To is the target node label.
	To string `json:"to"`

	// Kind is the edge kind (e.g., "contains", "related").
	Kind string `json:"kind"`

	// Score is an optional weight. Similarity edges store the embedding
	// similarity here; structural edges leave it zero.
	Score float32 `json:"score,omitempty"`
}

// Graph is the interface for a labeled-node graph.
type Graph interface {
	// --- Node operations ---

	// GetNode retrieves a node by label. Returns ErrNotFound if not present.
	GetNode(ctx context.Context, label string) (*Node, error)

	// PutNode creates or overwrites a node. The Label field must be set.
	PutNode(ctx context.Context, n Node) error

	// MergeNode creates the node if it does not exist and leaves an
	// existing node untouched. Returns true if the node was created.
	MergeNode(ctx context.Context, n Node) (bool, error)

	// DeleteNode removes a node and all its edges (both directions).
	DeleteNode(ctx context.Context, label string) error

	// ListNodes iterates over nodes whose label starts with prefix.
	// Pass "" to list all nodes.
	ListNodes(ctx context.Context, prefix string) iter.Seq2[Node, error]

	// --- Edge operations ---

	// AddEdge creates a directed edge. If the same (from, to, kind)
	// already exists its score is overwritten.
	AddEdge(ctx context.Context, e Edge) error

	// RemoveEdge removes a specific edge. No error if it does not exist.
	RemoveEdge(ctx context.Context, from, to, kind string) error

	// Edges returns all edges where the given label is either the source
	// or the target.
	Edges(ctx context.Context, label string) ([]Edge, error)

	// Out returns the outgoing edges of a node. If kinds is non-empty,
	// only edges of those kinds are returned.
	Out(ctx context.Context, label string, kinds ...string) ([]Edge, error)

	// --- Traversal ---

	// Neighbors returns the labels of nodes directly connected to the
	// given label, from both directions. If kinds is non-empty, only
	// edges of those kinds are considered.
	Neighbors(ctx context.Context, label string, kinds ...string) ([]string, error)

	// Expand performs a multi-hop breadth-first expansion from the given
	// seed labels, returning all discovered labels (including seeds).
	// hops controls the maximum traversal depth (0 returns only the
	// seeds). If kinds is non-empty, only edges of those kinds are
	// followed.
	Expand(ctx context.Context, labels []string, hops int, kinds ...string) ([]string, error)
}
