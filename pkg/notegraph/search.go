package notegraph

import (
	"context"
	"fmt"
)

// Search finds notes similar to the query text.
//
// The query is embedded and matched against the owner's notes. Matches
// at or above the search threshold become hits, ordered by descending
// similarity. Each hit is then expanded one hop through the similarity
// web: neighbors that are not hits themselves are attached as related
// notes. A related note appears under at most one hit, the first that
// reaches it.
//
// No matching notes is an empty result, not an error.
func (p *Partition) Search(ctx context.Context, query string) ([]Hit, error) {
	if query == "" {
		return nil, ErrEmptyText
	}

	vec, err := p.cfg.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := p.vec.Search(vec, p.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	var hits []Hit
	primary := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if m.Score < p.cfg.SearchThreshold {
			continue
		}
		n, err := p.Get(ctx, m.ID)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		hits = append(hits, Hit{Note: *n, Score: m.Score})
		primary[m.ID] = struct{}{}
	}

	// Expand each hit one hop through the similarity web.
	claimed := make(map[string]struct{})
	for i := range hits {
		neighbors, err := p.graph.Neighbors(ctx, hits[i].ID, edgeRelated)
		if err != nil {
			return nil, fmt.Errorf("expand relations: %w", err)
		}
		for _, id := range neighbors {
			if _, ok := primary[id]; ok {
				continue
			}
			if _, ok := claimed[id]; ok {
				continue
			}
			claimed[id] = struct{}{}

			n, err := p.Get(ctx, id)
			if err != nil {
				if err == ErrNotFound {
					continue
				}
				return nil, err
			}
			hits[i].Related = append(hits[i].Related, *n)
		}
	}

	return hits, nil
}
