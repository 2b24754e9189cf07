package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mindbook/mindbook/pkg/kv"
)

// KV key layout (relative to the configured prefix):
//
//	{prefix}:e:{label}               → JSON-encoded Node.Attrs
//	{prefix}:r:{from}:{kind}:{to}    → msgpack edge value (forward index)
//	{prefix}:ri:{to}:{kind}:{from}   → msgpack edge value (reverse index)

// edgeVal is the stored edge payload, duplicated on both indexes so a
// reverse scan sees the score without a second lookup.
type edgeVal struct {
	Score float32 `msgpack:"s"`
}

// KVGraph is a Graph implementation backed by a kv.Store.
// All keys are scoped under a configurable prefix, allowing multiple
// independent graphs to share a single KV store.
type KVGraph struct {
	store  kv.Store
	prefix kv.Key
	sep    byte
}

var _ Graph = (*KVGraph)(nil)

// NewKVGraph creates a new KVGraph using the given store and key prefix.
// The prefix is prepended to all keys, e.g. prefix = {"u1", "g"} results
// in node keys like "u1:g:e:abc".
//
// sep must match the separator of the backing store. Labels that need to
// contain ':' (such as date markers) require a store opened with a
// non-default separator like 0x1F.
func NewKVGraph(store kv.Store, prefix kv.Key, sep byte) *KVGraph {
	if sep == 0 {
		sep = kv.DefaultSeparator
	}
	return &KVGraph{store: store, prefix: prefix, sep: sep}
}

// validateSegments checks that none of the given strings contain the KV
// separator character. Labels and edge kinds are used as kv.Key segments;
// if they contain the separator the encoded key would be corrupted.
func (g *KVGraph) validateSegments(segs ...string) error {
	sep := string(g.sep)
	for _, s := range segs {
		if strings.Contains(s, sep) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidLabel, s, sep)
		}
	}
	return nil
}

// --- key helpers ---

func (g *KVGraph) nodeKey(label string) kv.Key {
	return g.prefix.Child("e", label)
}

func (g *KVGraph) nodePrefix() kv.Key {
	return g.prefix.Child("e")
}

func (g *KVGraph) fwdKey(from, kind, to string) kv.Key {
	return g.prefix.Child("r", from, kind, to)
}

func (g *KVGraph) fwdPrefix(from string) kv.Key {
	return g.prefix.Child("r", from)
}

func (g *KVGraph) revKey(to, kind, from string) kv.Key {
	return g.prefix.Child("ri", to, kind, from)
}

func (g *KVGraph) revPrefix(to string) kv.Key {
	return g.prefix.Child("ri", to)
}

// --- Node operations ---

func (g *KVGraph) GetNode(ctx context.Context, label string) (*Node, error) {
	if err := g.validateSegments(label); err != nil {
		return nil, err
	}
	data, err := g.store.Get(ctx, g.nodeKey(label))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	n := &Node{Label: label}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Attrs); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (g *KVGraph) PutNode(ctx context.Context, n Node) error {
	if err := g.validateSegments(n.Label); err != nil {
		return err
	}
	data, err := json.Marshal(n.Attrs)
	if err != nil {
		return err
	}
	return g.store.Set(ctx, g.nodeKey(n.Label), data)
}

func (g *KVGraph) MergeNode(ctx context.Context, n Node) (bool, error) {
	if err := g.validateSegments(n.Label); err != nil {
		return false, err
	}
	_, err := g.store.Get(ctx, g.nodeKey(n.Label))
	if err == nil {
		return false, nil // already present, leave untouched
	}
	if !errors.Is(err, kv.ErrNotFound) {
		return false, err
	}
	if err := g.PutNode(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

func (g *KVGraph) DeleteNode(ctx context.Context, label string) error {
	if err := g.validateSegments(label); err != nil {
		return err
	}
	edges, err := g.Edges(ctx, label)
	if err != nil {
		return err
	}

	keys := make([]kv.Key, 0, 1+len(edges)*2)
	keys = append(keys, g.nodeKey(label))
	for _, e := range edges {
		keys = append(keys, g.fwdKey(e.From, e.Kind, e.To))
		keys = append(keys, g.revKey(e.To, e.Kind, e.From))
	}

	for _, k := range keys {
		if err := g.store.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (g *KVGraph) ListNodes(ctx context.Context, prefix string) iter.Seq2[Node, error] {
	// Always scan all nodes and filter client-side. We cannot use a more
	// specific KV prefix because kv.List appends a separator, so "e:Ali"
	// would match "e:Ali:*" but not "e:Alice". Node keys have exactly one
	// segment after "e", so client-side filtering is correct.
	kvPrefix := g.nodePrefix()

	return func(yield func(Node, error) bool) {
		for entry, err := range g.store.List(ctx, kvPrefix) {
			if err != nil {
				yield(Node{}, err)
				return
			}
			// Extract label: last segment of the key.
			label := entry.Key[len(entry.Key)-1]

			if prefix != "" && !strings.HasPrefix(label, prefix) {
				continue
			}

			n := Node{Label: label}
			if len(entry.Value) > 0 {
				if err := json.Unmarshal(entry.Value, &n.Attrs); err != nil {
					if !yield(Node{}, err) {
						return
					}
					continue
				}
			}
			if !yield(n, nil) {
				return
			}
		}
	}
}

// --- Edge operations ---

func (g *KVGraph) AddEdge(ctx context.Context, e Edge) error {
	if err := g.validateSegments(e.From, e.To, e.Kind); err != nil {
		return err
	}
	val, err := msgpack.Marshal(edgeVal{Score: e.Score})
	if err != nil {
		return err
	}
	return g.store.BatchSet(ctx, []kv.Entry{
		{Key: g.fwdKey(e.From, e.Kind, e.To), Value: val},
		{Key: g.revKey(e.To, e.Kind, e.From), Value: val},
	})
}

func (g *KVGraph) RemoveEdge(ctx context.Context, from, to, kind string) error {
	if err := g.validateSegments(from, to, kind); err != nil {
		return err
	}
	if err := g.store.Delete(ctx, g.fwdKey(from, kind, to)); err != nil {
		return err
	}
	return g.store.Delete(ctx, g.revKey(to, kind, from))
}

func (g *KVGraph) Edges(ctx context.Context, label string) ([]Edge, error) {
	if err := g.validateSegments(label); err != nil {
		return nil, err
	}
	out, err := g.Out(ctx, label)
	if err != nil {
		return nil, err
	}

	edges := out

	// Reverse: edges where label is the target.
	for entry, err := range g.store.List(ctx, g.revPrefix(label)) {
		if err != nil {
			return nil, err
		}
		// Key: {prefix}:ri:{to}:{kind}:{from}
		k := entry.Key
		plen := len(g.prefix)
		if len(k) != plen+4 {
			continue // malformed key, skip
		}
		from := k[plen+3]
		// Skip self-loops: already captured by the forward scan above.
		if from == label {
			continue
		}
		edges = append(edges, Edge{
			From:  from,
			Kind:  k[plen+2],
			To:    k[plen+1],
			Score: decodeScore(entry.Value),
		})
	}

	return edges, nil
}

func (g *KVGraph) Out(ctx context.Context, label string, kinds ...string) ([]Edge, error) {
	if err := g.validateSegments(label); err != nil {
		return nil, err
	}
	if err := g.validateSegments(kinds...); err != nil {
		return nil, err
	}
	kindSet := makeSet(kinds)

	var edges []Edge
	for entry, err := range g.store.List(ctx, g.fwdPrefix(label)) {
		if err != nil {
			return nil, err
		}
		// Key: {prefix}:r:{from}:{kind}:{to}
		k := entry.Key
		plen := len(g.prefix)
		if len(k) != plen+4 {
			continue
		}
		kind := k[plen+2]
		if kindSet != nil {
			if _, ok := kindSet[kind]; !ok {
				continue
			}
		}
		edges = append(edges, Edge{
			From:  k[plen+1],
			Kind:  kind,
			To:    k[plen+3],
			Score: decodeScore(entry.Value),
		})
	}
	return edges, nil
}

// decodeScore unpacks the stored edge value. Unreadable values score 0
// rather than failing the whole scan.
func decodeScore(data []byte) float32 {
	if len(data) == 0 {
		return 0
	}
	var v edgeVal
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return 0
	}
	return v.Score
}

func makeSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

// --- Traversal ---

func (g *KVGraph) Neighbors(ctx context.Context, label string, kinds ...string) ([]string, error) {
	if err := g.validateSegments(label); err != nil {
		return nil, err
	}
	if err := g.validateSegments(kinds...); err != nil {
		return nil, err
	}
	kindSet := makeSet(kinds)

	seen := make(map[string]struct{})

	// Outgoing neighbors.
	for entry, err := range g.store.List(ctx, g.fwdPrefix(label)) {
		if err != nil {
			return nil, err
		}
		k := entry.Key
		plen := len(g.prefix)
		if len(k) != plen+4 {
			continue
		}
		if kindSet != nil {
			if _, ok := kindSet[k[plen+2]]; !ok {
				continue
			}
		}
		seen[k[plen+3]] = struct{}{}
	}

	// Incoming neighbors.
	for entry, err := range g.store.List(ctx, g.revPrefix(label)) {
		if err != nil {
			return nil, err
		}
		k := entry.Key
		plen := len(g.prefix)
		if len(k) != plen+4 {
			continue
		}
		if kindSet != nil {
			if _, ok := kindSet[k[plen+2]]; !ok {
				continue
			}
		}
		seen[k[plen+3]] = struct{}{}
	}

	result := make([]string, 0, len(seen))
	for lbl := range seen {
		result = append(result, lbl)
	}
	sort.Strings(result)
	return result, nil
}

func (g *KVGraph) Expand(ctx context.Context, labels []string, hops int, kinds ...string) ([]string, error) {
	if err := g.validateSegments(labels...); err != nil {
		return nil, err
	}
	visited := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		visited[l] = struct{}{}
	}

	frontier := make([]string, len(labels))
	copy(frontier, labels)

	for hop := 0; hop < hops && len(frontier) > 0; hop++ {
		var next []string
		for _, label := range frontier {
			neighbors, err := g.Neighbors(ctx, label, kinds...)
			if err != nil {
				return nil, err
			}
			for _, n := range neighbors {
				if _, ok := visited[n]; !ok {
					visited[n] = struct{}{}
					next = append(next, n)
				}
			}
		}
		frontier = next
	}

	result := make([]string, 0, len(visited))
	for lbl := range visited {
		result = append(result, lbl)
	}
	sort.Strings(result)
	return result, nil
}
