package assist_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mindbook/mindbook/pkg/assist"
	"github.com/mindbook/mindbook/pkg/kv"
	"github.com/mindbook/mindbook/pkg/notegraph"
	"github.com/mindbook/mindbook/pkg/textgen"
)

// stubEmbedder maps known texts to fixed 2D vectors.
type stubEmbedder struct {
	vecs map[string][]float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := s.vecs[text]
	if !ok {
		return nil, fmt.Errorf("stub: no vector for %q", text)
	}
	cp := make([]float32, len(v))
	copy(cp, v)
	return cp, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int { return 2 }

// stubCompleter plays all three model roles: normalization echoes the
// input, classification returns the scripted decision, and answering
// echoes the full user prompt so tests can inspect the built context.
type stubCompleter struct {
	decision string
}

func (s *stubCompleter) Complete(_ context.Context, req textgen.Request) (string, error) {
	switch {
	case strings.Contains(req.System, "Convert any relative date references"):
		return req.User, nil
	case strings.Contains(req.System, "route a question"):
		return s.decision, nil
	case strings.Contains(req.System, "personal AI assistant"):
		return req.User, nil
	default:
		return "", fmt.Errorf("stub: unexpected system prompt %q", req.System)
	}
}

var testVecs = map[string][]float32{
	"met alice for coffee":    {1, 0},
	"had tea with alice":      {1, 0.5},
	"launched a model rocket": {-1, 0.2},
	"what did i drink":        {1, 0.1},
}

// testClock is the fixed "today" for every test.
var testClock = time.Date(2024, time.January, 5, 12, 0, 0, 0, time.UTC)

func newTestAssistant(t *testing.T, completer *stubCompleter, opts ...func(*notegraph.Config)) (*assist.Assistant, *notegraph.Store) {
	t.Helper()
	kvs := kv.NewMemory(&kv.Options{Separator: notegraph.GraphSeparator})
	t.Cleanup(func() { kvs.Close() })

	cfg := notegraph.Config{
		Store:    kvs,
		Embedder: &stubEmbedder{vecs: testVecs},
	}
	for _, o := range opts {
		o(&cfg)
	}
	store := notegraph.NewStore(cfg)
	t.Cleanup(func() { store.Close() })

	a := assist.New(assist.Config{
		Store:     store,
		Completer: completer,
		Now:       func() time.Time { return testClock },
	})
	return a, store
}

func similarityDecision() string {
	return `{"query": "q", "query_type": "similarity", "time": {"year": null, "month": null, "day": null}}`
}

func TestAddNote(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAssistant(t, &stubCompleter{})

	status, err := a.AddNote(ctx, "u1", "met alice for coffee")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if status != "Note saved under 5 January 2024." {
		t.Fatalf("status = %q", status)
	}

	// The second note is similar enough to link to the first.
	status, err = a.AddNote(ctx, "u1", "had tea with alice")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if status != "Note saved under 5 January 2024, linked to 1 similar note." {
		t.Fatalf("status = %q", status)
	}
}

func TestAddNote_Empty(t *testing.T) {
	a, _ := newTestAssistant(t, &stubCompleter{})
	if _, err := a.AddNote(context.Background(), "u1", "   "); !errors.Is(err, notegraph.ErrEmptyText) {
		t.Fatalf("got %v, want ErrEmptyText", err)
	}
}

func TestQuery_Similarity(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAssistant(t, &stubCompleter{decision: similarityDecision()})

	if _, err := a.AddNote(ctx, "u1", "met alice for coffee"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddNote(ctx, "u1", "launched a model rocket"); err != nil {
		t.Fatal(err)
	}

	answer, err := a.Query(ctx, "u1", "what did i drink")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !strings.Contains(answer, "met alice for coffee") {
		t.Fatalf("answer context missing matching note: %q", answer)
	}
	if strings.Contains(answer, "model rocket") {
		t.Fatalf("answer context contains dissimilar note: %q", answer)
	}
	if !strings.Contains(answer, "Question: what did i drink") {
		t.Fatalf("answer prompt missing question: %q", answer)
	}
}

func TestQuery_SimilarityIncludesRelated(t *testing.T) {
	ctx := context.Background()
	// High search threshold: only the coffee note is a direct hit, the
	// tea note must ride along through its relation.
	a, _ := newTestAssistant(t, &stubCompleter{decision: similarityDecision()},
		func(c *notegraph.Config) { c.SearchThreshold = 0.99 })

	if _, err := a.AddNote(ctx, "u1", "met alice for coffee"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddNote(ctx, "u1", "had tea with alice"); err != nil {
		t.Fatal(err)
	}

	answer, err := a.Query(ctx, "u1", "what did i drink")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(answer, "Related context:\nhad tea with alice") {
		t.Fatalf("answer context missing related section: %q", answer)
	}
}

func TestQuery_Temporal(t *testing.T) {
	ctx := context.Background()
	decision := `{"query": "q", "query_type": "general", "time": {"year": "2024", "month": "January", "day": "5"}}`
	a, _ := newTestAssistant(t, &stubCompleter{decision: decision})

	if _, err := a.AddNote(ctx, "u1", "met alice for coffee"); err != nil {
		t.Fatal(err)
	}

	answer, err := a.Query(ctx, "u1", "what did i drink")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !strings.Contains(answer, "met alice for coffee") {
		t.Fatalf("temporal context missing note: %q", answer)
	}
}

func TestQuery_TemporalEmptyFallsBackToSimilarity(t *testing.T) {
	ctx := context.Background()
	decision := `{"query": "q", "query_type": "general", "time": {"year": "1999", "month": null, "day": null}}`
	a, _ := newTestAssistant(t, &stubCompleter{decision: decision})

	if _, err := a.AddNote(ctx, "u1", "met alice for coffee"); err != nil {
		t.Fatal(err)
	}

	answer, err := a.Query(ctx, "u1", "what did i drink")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(answer, "met alice for coffee") {
		t.Fatalf("fallback context missing note: %q", answer)
	}
}

func TestQuery_GeneralWithoutConstraintsUsesSimilarity(t *testing.T) {
	ctx := context.Background()
	decision := `{"query": "q", "query_type": "general", "time": {"year": null, "month": null, "day": null}}`
	a, _ := newTestAssistant(t, &stubCompleter{decision: decision})

	if _, err := a.AddNote(ctx, "u1", "met alice for coffee"); err != nil {
		t.Fatal(err)
	}

	answer, err := a.Query(ctx, "u1", "what did i drink")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(answer, "met alice for coffee") {
		t.Fatalf("context missing note: %q", answer)
	}
}

func TestQuery_FutureDateUsesSimilarity(t *testing.T) {
	ctx := context.Background()
	decision := `{"query": "q", "query_type": "general", "time": {"year": "2999", "month": "January", "day": "1"}}`
	a, _ := newTestAssistant(t, &stubCompleter{decision: decision})

	if _, err := a.AddNote(ctx, "u1", "met alice for coffee"); err != nil {
		t.Fatal(err)
	}

	answer, err := a.Query(ctx, "u1", "what did i drink")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(answer, "met alice for coffee") {
		t.Fatalf("context missing note: %q", answer)
	}
}

func TestQuery_BadDecision(t *testing.T) {
	ctx := context.Background()
	decision := `{"query": "q", "query_type": "nonsense", "time": {"year": null, "month": null, "day": null}}`
	a, _ := newTestAssistant(t, &stubCompleter{decision: decision})

	if _, err := a.AddNote(ctx, "u1", "met alice for coffee"); err != nil {
		t.Fatal(err)
	}

	_, err := a.Query(ctx, "u1", "what did i drink")
	if !errors.Is(err, assist.ErrBadDecision) {
		t.Fatalf("got %v, want ErrBadDecision", err)
	}
}

func TestQuery_RepairsAlmostJSON(t *testing.T) {
	ctx := context.Background()
	// Fenced output with a trailing comma, the classic model tics.
	decision := "```json\n{\"query\": \"q\", \"query_type\": \"similarity\", \"time\": {\"year\": null, \"month\": null, \"day\": null,}}\n```"
	a, _ := newTestAssistant(t, &stubCompleter{decision: decision})

	if _, err := a.AddNote(ctx, "u1", "met alice for coffee"); err != nil {
		t.Fatal(err)
	}

	if _, err := a.Query(ctx, "u1", "what did i drink"); err != nil {
		t.Fatalf("Query with repairable JSON: %v", err)
	}
}

func TestDeleteAllData(t *testing.T) {
	ctx := context.Background()
	a, store := newTestAssistant(t, &stubCompleter{decision: similarityDecision()})

	if _, err := a.AddNote(ctx, "u1", "met alice for coffee"); err != nil {
		t.Fatal(err)
	}

	// Anything but the literal token cancels without touching data.
	msg, err := a.DeleteAllData(ctx, "yes please")
	if err != nil {
		t.Fatalf("DeleteAllData: %v", err)
	}
	if msg != assist.CancelledMessage {
		t.Fatalf("msg = %q, want cancellation message", msg)
	}
	p, err := store.Open(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 1 {
		t.Fatalf("cancelled delete removed data: Len = %d", p.Len())
	}

	// Case-insensitive confirmation wipes everything.
	msg, err = a.DeleteAllData(ctx, "DELETE")
	if err != nil {
		t.Fatalf("DeleteAllData: %v", err)
	}
	if msg != "success" {
		t.Fatalf("msg = %q, want success", msg)
	}
	p, err = store.Open(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 0 {
		t.Fatalf("Len after delete = %d, want 0", p.Len())
	}
}
