// Package notegraph stores personal notes under a dual index: a temporal
// hierarchy (year, month, day) and a similarity web of embedding-scored
// note-to-note edges.
//
// A [Store] hosts one [Partition] per owner, all sharing a single KV
// store and embedder. Each partition keeps its own in-memory vector
// index, rebuilt from persisted notes when the partition is opened, so
// every lookup and search is inherently scoped to one owner.
//
// [Partition.Add] captures a note: it embeds the text, persists the
// record, merges the note into the day's hierarchy, and links it to
// similar existing notes. [Partition.TemporalLookup] retrieves notes by
// date constraints; [Partition.Search] retrieves them by meaning.
package notegraph

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a note does not exist.
	ErrNotFound = errors.New("notegraph: note not found")

	// ErrEmptyText is returned when a note or query has no text.
	ErrEmptyText = errors.New("notegraph: empty text")

	// ErrInvalidDate is returned when a capture date is not a real
	// calendar date.
	ErrInvalidDate = errors.New("notegraph: invalid date")
)

// Note is a single captured memory.
type Note struct {
	// ID is the unique identifier, assigned at capture.
	ID string `msgpack:"id"`

	// Text is the note content.
	Text string `msgpack:"text"`

	// Embedding is the vector representation of Text.
	Embedding []float32 `msgpack:"emb"`

	// Year, Month, Day locate the note in the temporal hierarchy.
	// Month is the English month name ("January").
	Year  int    `msgpack:"y"`
	Month string `msgpack:"m"`
	Day   int    `msgpack:"d"`

	// DayName is the weekday of the capture date ("Friday").
	DayName string `msgpack:"day_name"`

	// CreatedAt is when the note was captured.
	CreatedAt time.Time `msgpack:"created_at"`
}

// Date is a calendar date for note capture.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the Date from a time.Time.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Validate reports whether d is a real calendar date.
func (d Date) Validate() error {
	if d.Year < 1 || d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return fmt.Errorf("%w: %d-%d-%d", ErrInvalidDate, d.Year, d.Month, d.Day)
	}
	// Roll-over check: time.Date normalizes "31 February" to March.
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != d.Year || t.Month() != d.Month || t.Day() != d.Day {
		return fmt.Errorf("%w: %d-%d-%d", ErrInvalidDate, d.Year, d.Month, d.Day)
	}
	return nil
}

// Weekday returns the weekday name of the date ("Friday").
func (d Date) Weekday() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday().String()
}

// String formats the date as "5 January 2024".
func (d Date) String() string {
	return fmt.Sprintf("%d %s %d", d.Day, d.Month, d.Year)
}

// TimeConstraints restrict a temporal lookup. Nil fields are
// unconstrained: {Month: "January"} matches January of every year.
type TimeConstraints struct {
	// Year is the four-digit year as a string ("2024").
	Year *string

	// Month is the English month name ("January"), case-insensitive.
	Month *string

	// Day is the day of month as a string ("5").
	Day *string
}

// Empty reports whether no constraint is set.
func (tc TimeConstraints) Empty() bool {
	return tc.Year == nil && tc.Month == nil && tc.Day == nil
}

// Hit is a similarity search result: a directly matching note plus its
// neighborhood in the similarity web.
type Hit struct {
	Note

	// Score is the normalized cosine similarity to the query in [0, 1].
	Score float32

	// Related are notes linked to this hit in the similarity web that
	// are not themselves hits. Each related note appears under at most
	// one hit.
	Related []Note
}
