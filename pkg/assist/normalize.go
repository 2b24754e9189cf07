package assist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mindbook/mindbook/pkg/textgen"
)

const normalizeTemperature = 0.7

const noteInstruction = `Current date is %s.
1. Convert any relative date references (today, tomorrow, next week, etc.) in this text to their actual dates.
2. Add 'on [date]' where appropriate but don't change any other information like the actual text.

Original text: "%s"
Only output the converted text with NO EXPLANATION or additional text.`

const queryInstruction = `Current date is %s.
Convert any relative date references (today, tomorrow, next week, etc.) in this query to actual dates. If there is nothing relative, ignore the date provided, and just provide the query as it is.
Original query: "%s"
Only output the converted query with no explanations or additional text.`

// Normalizer rewrites relative date references ("yesterday", "next
// Friday") into absolute dates so stored text and queries are stable
// over time.
type Normalizer struct {
	Completer textgen.Completer
	Now       func() time.Time
}

// NormalizeNote rewrites a note before capture, anchoring relative dates
// and inserting "on [date]" phrases where appropriate.
func (n *Normalizer) NormalizeNote(ctx context.Context, text string) (string, error) {
	return n.run(ctx, noteInstruction, text)
}

// NormalizeQuery rewrites a question before classification. Questions
// without relative references pass through unchanged.
func (n *Normalizer) NormalizeQuery(ctx context.Context, text string) (string, error) {
	return n.run(ctx, queryInstruction, text)
}

func (n *Normalizer) run(ctx context.Context, instruction, text string) (string, error) {
	now := n.Now().UTC().Format("Monday, 2 January 2006")
	out, err := n.Completer.Complete(ctx, textgen.Request{
		System:      fmt.Sprintf(instruction, now, text),
		User:        text,
		Temperature: normalizeTemperature,
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", textgen.ErrNoCompletion
	}
	return out, nil
}
