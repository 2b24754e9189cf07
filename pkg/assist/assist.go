// Package assist is the conversational surface over the note store. It
// turns free-form capture text and questions into note-store operations
// using a language model for date normalization, query classification,
// and answer synthesis.
//
// The pipeline for a question: normalize relative dates, classify the
// question as temporal ("what happened on January 5th") or semantic
// ("what do I know about alice"), retrieve notes through the matching
// index, then synthesize an answer grounded in the retrieved context.
package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mindbook/mindbook/pkg/notegraph"
	"github.com/mindbook/mindbook/pkg/textgen"
)

// CancelledMessage is returned by DeleteAllData when the confirmation
// token does not match.
const CancelledMessage = "Operation cancelled. Please pass 'delete' to confirm data deletion."

// ErrBadDecision is returned when the classifier model emits output that
// cannot be interpreted as a routing decision. Callers must not guess a
// route from garbage.
var ErrBadDecision = errors.New("assist: unusable classifier decision")

// Config configures an [Assistant].
type Config struct {
	// Store is the note store. Required.
	Store *notegraph.Store

	// Completer is the language model behind normalization,
	// classification, and answering. Required.
	Completer textgen.Completer

	// Now supplies the current time. Nil means time.Now. Tests inject a
	// fixed clock here.
	Now func() time.Time

	// Logger receives diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Assistant exposes the user-facing operations: capture a note, answer a
// question, and wipe everything.
type Assistant struct {
	store     *notegraph.Store
	completer textgen.Completer
	now       func() time.Time
	logger    *slog.Logger

	normalizer *Normalizer
	classifier *Classifier
}

// New creates an Assistant.
func New(cfg Config) *Assistant {
	if cfg.Store == nil {
		panic("assist: Config.Store is required")
	}
	if cfg.Completer == nil {
		panic("assist: Config.Completer is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Assistant{
		store:      cfg.Store,
		completer:  cfg.Completer,
		now:        cfg.Now,
		logger:     cfg.Logger,
		normalizer: &Normalizer{Completer: cfg.Completer, Now: cfg.Now},
		classifier: &Classifier{Completer: cfg.Completer, Now: cfg.Now},
	}
}

// AddNote captures a note for the owner, dated today. Relative date
// references in the text are rewritten to absolute dates first. The
// returned status reports where the note landed and how it was linked.
func (a *Assistant) AddNote(ctx context.Context, owner, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", notegraph.ErrEmptyText
	}

	normalized, err := a.normalizer.NormalizeNote(ctx, text)
	if err != nil {
		return "", fmt.Errorf("normalize note: %w", err)
	}

	p, err := a.store.Open(ctx, owner)
	if err != nil {
		return "", err
	}

	date := notegraph.DateOf(a.now().UTC())
	res, err := p.Add(ctx, normalized, date)
	if err != nil {
		return "", err
	}

	if res.LinkErr != nil {
		return fmt.Sprintf("Note saved under %s; similarity linking failed, saved without links.", date), nil
	}
	switch res.Linked {
	case 0:
		return fmt.Sprintf("Note saved under %s.", date), nil
	case 1:
		return fmt.Sprintf("Note saved under %s, linked to 1 similar note.", date), nil
	default:
		return fmt.Sprintf("Note saved under %s, linked to %d similar notes.", date, res.Linked), nil
	}
}

// Query answers a question from the owner's stored notes.
//
// Temporal questions go through the date hierarchy; everything else goes
// through similarity search. A temporal lookup that finds nothing falls
// back to similarity search, so a misjudged date never produces a silent
// empty answer.
func (a *Assistant) Query(ctx context.Context, owner, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", notegraph.ErrEmptyText
	}

	normalized, err := a.normalizer.NormalizeQuery(ctx, question)
	if err != nil {
		return "", fmt.Errorf("normalize query: %w", err)
	}

	decision, err := a.classifier.Classify(ctx, normalized)
	if err != nil {
		return "", err
	}

	p, err := a.store.Open(ctx, owner)
	if err != nil {
		return "", err
	}

	var blocks []string
	if decision.Type == DecisionTemporal {
		notes, err := p.TemporalLookup(ctx, decision.Time)
		if err != nil {
			return "", err
		}
		blocks = temporalBlocks(notes)
		if len(blocks) == 0 {
			a.logger.Debug("temporal lookup empty, falling back to similarity",
				"owner", owner, "query", normalized)
		}
	}
	if len(blocks) == 0 {
		hits, err := p.Search(ctx, normalized)
		if err != nil {
			return "", err
		}
		blocks = similarityBlocks(hits)
	}

	return a.answer(ctx, normalized, blocks)
}

// DeleteAllData wipes every note, marker, and relation for every owner.
// The confirmation must be the literal word "delete" (case-insensitive);
// anything else cancels without touching the store.
func (a *Assistant) DeleteAllData(ctx context.Context, confirmation string) (string, error) {
	if strings.ToLower(confirmation) != "delete" {
		return CancelledMessage, nil
	}
	if err := a.store.Wipe(ctx); err != nil {
		return "", err
	}
	return "success", nil
}
