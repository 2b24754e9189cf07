package notegraph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mindbook/mindbook/pkg/graph"
	"github.com/mindbook/mindbook/pkg/kv"
	"github.com/mindbook/mindbook/pkg/vecstore"
)

// Partition is one owner's slice of the note store. All keys live under
// the owner prefix and the vector index holds only the owner's notes, so
// nothing in a lookup or search can cross owners.
//
// Partition is safe for concurrent use. Captures are serialized; reads
// run concurrently.
type Partition struct {
	owner  string
	cfg    *Config
	store  kv.Store
	graph  graph.Graph
	vec    vecstore.Index
	prefix kv.Key

	mu sync.Mutex // serializes Add
}

// Owner returns the partition's owner identifier.
func (p *Partition) Owner() string {
	return p.owner
}

// loadVectors rebuilds the in-memory vector index from persisted notes.
func (p *Partition) loadVectors(ctx context.Context) error {
	var ids []string
	var vecs [][]float32
	for entry, err := range p.store.List(ctx, notePrefix(p.prefix)) {
		if err != nil {
			return err
		}
		var n Note
		if err := msgpack.Unmarshal(entry.Value, &n); err != nil {
			p.cfg.Logger.Warn("skipping unreadable note record",
				"owner", p.owner, "key", entry.Key.String(), "err", err)
			continue
		}
		ids = append(ids, n.ID)
		vecs = append(vecs, n.Embedding)
	}
	return p.vec.BatchInsert(ids, vecs)
}

// reset drops the in-memory vector index.
func (p *Partition) reset() {
	p.vec.Close()
	p.vec = vecstore.NewFlat()
}

// AddResult reports the outcome of a capture.
type AddResult struct {
	// Note is the captured note.
	Note *Note

	// Linked is the number of similarity relations created.
	Linked int

	// LinkErr is set when relation building failed. The note is still
	// captured; the caller decides whether the degradation matters.
	LinkErr error
}

// Add captures a note dated to the given calendar day.
//
// The text is embedded, the note is persisted, and the note is merged
// into the day's hierarchy (creating year, month, and day markers as
// needed; re-capturing on the same day reuses them). Finally the note is
// linked to its most similar existing notes.
//
// Relation building is best effort: a failure there is logged and
// surfaced on the result, and the note is still captured.
func (p *Partition) Add(ctx context.Context, text string, date Date) (*AddResult, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := date.Validate(); err != nil {
		return nil, err
	}

	vec, err := p.cfg.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed note: %w", err)
	}

	note := &Note{
		ID:        uuid.NewString(),
		Text:      text,
		Embedding: vec,
		Year:      date.Year,
		Month:     date.Month.String(),
		Day:       date.Day,
		DayName:   date.Weekday(),
		CreatedAt: time.Now().UTC(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.persist(ctx, note); err != nil {
		return nil, err
	}
	if err := p.vec.Insert(note.ID, vec); err != nil {
		return nil, fmt.Errorf("index note vector: %w", err)
	}

	res := &AddResult{Note: note}
	res.Linked, res.LinkErr = p.relate(ctx, note)
	if res.LinkErr != nil {
		p.cfg.Logger.Warn("relation building failed, note captured without links",
			"owner", p.owner, "note", note.ID, "err", res.LinkErr)
	}

	return res, nil
}

// persist writes the note record and merges it into the temporal
// hierarchy in one batch.
func (p *Partition) persist(ctx context.Context, n *Note) error {
	data, err := msgpack.Marshal(n)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, noteKey(p.prefix, n.ID), data); err != nil {
		return fmt.Errorf("persist note: %w", err)
	}

	yl := yearLabel(n.Year)
	ml := monthLabel(n.Year, n.Month)
	dl := dayLabel(n.Year, n.Month, n.Day)

	// MERGE semantics: markers are created once and reused, so capturing
	// two notes on the same day yields one day node with two notes.
	if _, err := p.graph.MergeNode(ctx, graph.Node{Label: yl}); err != nil {
		return fmt.Errorf("merge year marker: %w", err)
	}
	if _, err := p.graph.MergeNode(ctx, graph.Node{Label: ml}); err != nil {
		return fmt.Errorf("merge month marker: %w", err)
	}
	if _, err := p.graph.MergeNode(ctx, graph.Node{Label: dl, Attrs: map[string]any{"name": n.DayName}}); err != nil {
		return fmt.Errorf("merge day marker: %w", err)
	}
	if err := p.graph.PutNode(ctx, graph.Node{Label: n.ID}); err != nil {
		return fmt.Errorf("put note node: %w", err)
	}

	for _, e := range []graph.Edge{
		{From: yl, To: ml, Kind: edgeContains},
		{From: ml, To: dl, Kind: edgeContains},
		{From: dl, To: n.ID, Kind: edgeContains},
	} {
		if err := p.graph.AddEdge(ctx, e); err != nil {
			return fmt.Errorf("chain hierarchy: %w", err)
		}
	}
	return nil
}

// relate links the note to its most similar existing notes, returning
// how many relations were created.
func (p *Partition) relate(ctx context.Context, n *Note) (int, error) {
	matches, err := p.vec.Search(n.Embedding, p.cfg.TopK+1) // +1: the note matches itself
	if err != nil {
		return 0, err
	}
	linked := 0
	for _, m := range matches {
		if m.ID == n.ID || m.Score < p.cfg.RelateThreshold {
			continue
		}
		if err := p.graph.AddEdge(ctx, graph.Edge{
			From: n.ID, To: m.ID, Kind: edgeRelated, Score: m.Score,
		}); err != nil {
			return linked, err
		}
		if p.cfg.Symmetric {
			if err := p.graph.AddEdge(ctx, graph.Edge{
				From: m.ID, To: n.ID, Kind: edgeRelated, Score: m.Score,
			}); err != nil {
				return linked, err
			}
		}
		linked++
	}
	return linked, nil
}

// Get retrieves a note by ID.
func (p *Partition) Get(ctx context.Context, id string) (*Note, error) {
	data, err := p.store.Get(ctx, noteKey(p.prefix, id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var n Note
	if err := msgpack.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("decode note %q: %w", id, err)
	}
	return &n, nil
}

// Notes returns all of the owner's notes, oldest capture first.
func (p *Partition) Notes(ctx context.Context) ([]Note, error) {
	var notes []Note
	for entry, err := range p.store.List(ctx, notePrefix(p.prefix)) {
		if err != nil {
			return nil, err
		}
		var n Note
		if err := msgpack.Unmarshal(entry.Value, &n); err != nil {
			continue // skip malformed entries
		}
		notes = append(notes, n)
	}
	sortNotes(notes)
	return notes, nil
}

// Len returns the number of notes in the partition.
func (p *Partition) Len() int {
	return p.vec.Len()
}
