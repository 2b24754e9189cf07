package notegraph

import (
	"context"
	"sort"
	"strconv"
	"strings"
)

// TemporalLookup returns notes whose capture date satisfies the
// constraints. Nil fields are unconstrained: {Month: "January"} matches
// January of every year. Month names compare case-insensitively.
//
// No matching notes is an empty result, not an error. An entirely empty
// constraint matches every note.
func (p *Partition) TemporalLookup(ctx context.Context, tc TimeConstraints) ([]Note, error) {
	wantYear, err := atoiConstraint(tc.Year)
	if err != nil {
		return nil, err
	}
	wantDay, err := atoiConstraint(tc.Day)
	if err != nil {
		return nil, err
	}

	var notes []Note
	for node, err := range p.graph.ListNodes(ctx, "d:") {
		if err != nil {
			return nil, err
		}
		year, month, day, ok := parseDayLabel(node.Label)
		if !ok {
			continue
		}
		if wantYear != 0 && year != wantYear {
			continue
		}
		if tc.Month != nil && !strings.EqualFold(month, *tc.Month) {
			continue
		}
		if wantDay != 0 && day != wantDay {
			continue
		}

		contained, err := p.graph.Out(ctx, node.Label, edgeContains)
		if err != nil {
			return nil, err
		}
		for _, e := range contained {
			n, err := p.Get(ctx, e.To)
			if err != nil {
				if err == ErrNotFound {
					continue // marker points at a vanished note
				}
				return nil, err
			}
			notes = append(notes, *n)
		}
	}

	sortNotes(notes)
	return notes, nil
}

// atoiConstraint parses an optional numeric constraint. Nil means
// unconstrained and parses to 0.
func atoiConstraint(s *string) (int, error) {
	if s == nil {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		return 0, ErrInvalidDate
	}
	return n, nil
}

// sortNotes orders notes by capture time, oldest first, breaking ties
// by ID so results are deterministic.
func sortNotes(notes []Note) {
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.Before(notes[j].CreatedAt)
		}
		return notes[i].ID < notes[j].ID
	})
}
