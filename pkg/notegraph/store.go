package notegraph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mindbook/mindbook/pkg/embed"
	"github.com/mindbook/mindbook/pkg/graph"
	"github.com/mindbook/mindbook/pkg/kv"
	"github.com/mindbook/mindbook/pkg/vecstore"
)

// Default tuning values, matching the similarity web's design point:
// relations are only worth storing when notes are clearly similar, while
// query recall tolerates looser matches.
const (
	// DefaultRelateThreshold is the minimum similarity for linking two
	// notes in the similarity web.
	DefaultRelateThreshold = 0.7

	// DefaultSearchThreshold is the minimum similarity for a query hit.
	DefaultSearchThreshold = 0.6

	// DefaultTopK bounds both relation candidates and search hits.
	DefaultTopK = 10
)

// Config configures a [Store].
type Config struct {
	// Store is the shared KV store. Required. It must be opened with
	// [GraphSeparator] as its separator.
	Store kv.Store

	// Embedder converts note and query text to vectors. Required.
	Embedder embed.Embedder

	// RelateThreshold is the minimum similarity for creating a relation
	// between two notes. Zero means DefaultRelateThreshold.
	RelateThreshold float32

	// SearchThreshold is the minimum similarity for a search hit.
	// Zero means DefaultSearchThreshold.
	SearchThreshold float32

	// TopK bounds relation candidates and search hits.
	// Zero means DefaultTopK.
	TopK int

	// Symmetric stores each relation in both directions. Off by
	// default: the reverse index already makes relations traversable
	// from either end.
	Symmetric bool

	// Logger receives diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Store is the process-level entry point for the note system. It manages
// a Partition per owner, all sharing one KV store and embedder.
//
// Store is safe for concurrent use.
type Store struct {
	cfg Config

	mu         sync.Mutex
	partitions map[string]*Partition
}

// NewStore creates a Store. The KV store and embedder are required.
func NewStore(cfg Config) *Store {
	if cfg.Store == nil {
		panic("notegraph: Config.Store is required")
	}
	if cfg.Embedder == nil {
		panic("notegraph: Config.Embedder is required")
	}
	if cfg.RelateThreshold == 0 {
		cfg.RelateThreshold = DefaultRelateThreshold
	}
	if cfg.SearchThreshold == 0 {
		cfg.SearchThreshold = DefaultSearchThreshold
	}
	if cfg.TopK == 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Store{
		cfg:        cfg,
		partitions: make(map[string]*Partition),
	}
}

// Open returns the Partition for an owner, creating it on first call.
// Opening rebuilds the owner's in-memory vector index from persisted
// notes. Subsequent calls with the same owner return the same Partition.
func (s *Store) Open(ctx context.Context, owner string) (*Partition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.partitions[owner]; ok {
		return p, nil
	}

	prefix := kv.Key{owner}
	p := &Partition{
		owner:  owner,
		cfg:    &s.cfg,
		store:  s.cfg.Store,
		graph:  graph.NewKVGraph(s.cfg.Store, graphPrefix(prefix), GraphSeparator),
		vec:    vecstore.NewFlat(),
		prefix: prefix,
	}
	if err := p.loadVectors(ctx); err != nil {
		return nil, fmt.Errorf("open partition %q: %w", owner, err)
	}

	s.partitions[owner] = p
	return p, nil
}

// Wipe removes every note, marker, and relation for every owner, and
// discards all cached partitions. This is the whole-store destructive
// reset behind the confirmed delete operation.
func (s *Store) Wipe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cfg.Store.DropAll(ctx); err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	for _, p := range s.partitions {
		p.reset()
	}
	s.partitions = make(map[string]*Partition)
	s.cfg.Logger.Info("note store wiped")
	return nil
}

// Close releases all partitions. The underlying KV store is not closed;
// its lifetime belongs to the caller.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.partitions {
		p.reset()
	}
	s.partitions = nil
	return nil
}
