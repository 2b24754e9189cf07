package assist

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mindbook/mindbook/pkg/notegraph"
	"github.com/mindbook/mindbook/pkg/textgen"
)

// Decision routing outcomes.
const (
	// DecisionTemporal routes through the date hierarchy.
	DecisionTemporal = "temporal"

	// DecisionSimilarity routes through similarity search.
	DecisionSimilarity = "similarity"
)

// classifyTemperature is kept low: routing should be deterministic.
const classifyTemperature = 0.1

const classifyInstruction = `Current date is %s.
You route a question about personal memories. Output strict JSON, nothing else:
{"query": "<the question>", "query_type": "general" or "similarity", "time": {"year": "<4-digit year or null>", "month": "<English month name or null>", "day": "<day of month or null>"}}
Use "general" only when the question asks what happened at a particular time and contains explicit date references; fill in the time fields you can extract and set the rest to null.
Use "similarity" when the question is about content, people, places, or meaning; set every time field to null.`

// Decision is the classifier's routing verdict.
type Decision struct {
	// Type is DecisionTemporal or DecisionSimilarity.
	Type string

	// Time holds the extracted date constraints. Only meaningful for
	// temporal decisions.
	Time notegraph.TimeConstraints
}

// rawDecision is the JSON shape the model is asked to produce.
type rawDecision struct {
	Query     string `json:"query"`
	QueryType string `json:"query_type"`
	Time      struct {
		Year  *string `json:"year"`
		Month *string `json:"month"`
		Day   *string `json:"day"`
	} `json:"time"`
}

// Classifier decides whether a question is answered through the date
// hierarchy or through similarity search.
type Classifier struct {
	Completer textgen.Completer
	Now       func() time.Time
}

// Classify routes a normalized question.
//
// Model output that cannot be decoded or names an unknown query type is
// ErrBadDecision: a wrong route through someone's memories is worse than
// a retried request. Two verdicts are corrected rather than rejected: a
// "general" claim with no date constraints becomes a similarity search,
// and constraints pointing at a future date (nothing can be stored
// there) also fall back to similarity.
func (c *Classifier) Classify(ctx context.Context, question string) (*Decision, error) {
	now := c.Now().UTC()
	out, err := c.Completer.Complete(ctx, textgen.Request{
		System:      fmt.Sprintf(classifyInstruction, now.Format("Monday, 2 January 2006")),
		User:        question,
		Temperature: classifyTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("classify query: %w", err)
	}

	var raw rawDecision
	if err := unmarshalJSON([]byte(strings.TrimSpace(out)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDecision, err)
	}

	tc := notegraph.TimeConstraints{Year: raw.Time.Year, Month: raw.Time.Month, Day: raw.Time.Day}
	switch raw.QueryType {
	case "general":
		if tc.Empty() {
			// A time-based claim without any date to look up.
			return &Decision{Type: DecisionSimilarity}, nil
		}
		if futureConstraints(tc, now) {
			return &Decision{Type: DecisionSimilarity}, nil
		}
		return &Decision{Type: DecisionTemporal, Time: tc}, nil
	case "similarity":
		return &Decision{Type: DecisionSimilarity}, nil
	default:
		return nil, fmt.Errorf("%w: query_type %q", ErrBadDecision, raw.QueryType)
	}
}

// futureConstraints reports whether the earliest date satisfying the
// constraints is after today. Unset fields resolve to their minimum
// (current year, January, day 1).
func futureConstraints(tc notegraph.TimeConstraints, now time.Time) bool {
	year := now.Year()
	if tc.Year != nil {
		y, err := strconv.Atoi(strings.TrimSpace(*tc.Year))
		if err != nil {
			return false
		}
		year = y
	}
	month := time.January
	if tc.Month != nil {
		m, ok := parseMonth(*tc.Month)
		if !ok {
			return false
		}
		month = m
	}
	day := 1
	if tc.Day != nil {
		d, err := strconv.Atoi(strings.TrimSpace(*tc.Day))
		if err != nil {
			return false
		}
		day = d
	}

	earliest := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return earliest.After(today)
}

func parseMonth(name string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, true
		}
	}
	return 0, false
}
