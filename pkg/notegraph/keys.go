package notegraph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mindbook/mindbook/pkg/kv"
)

// Key layout (relative to the partition prefix, one prefix per owner):
//
//	{owner}:n:{id}   → msgpack-encoded Note
//	{owner}:g:...    → graph sub-store (hierarchy markers + edges)
//
// Graph node labels:
//
//	y:{year}                  year marker
//	m:{year}:{month}          month marker
//	d:{year}:{month}:{day}    day marker
//	{id}                      note node
//
// Marker labels contain ':', so the backing store must be opened with a
// separator that cannot appear in labels (0x1F).

// GraphSeparator is the KV separator for stores backing a notegraph.
// The default ':' would collide with date marker labels.
const GraphSeparator byte = 0x1F

// Edge kinds.
const (
	// edgeContains chains the hierarchy: year→month→day→note.
	edgeContains = "contains"

	// edgeRelated links similar notes, scored by embedding similarity.
	edgeRelated = "related"
)

func noteKey(prefix kv.Key, id string) kv.Key {
	return prefix.Child("n", id)
}

func notePrefix(prefix kv.Key) kv.Key {
	return prefix.Child("n")
}

func graphPrefix(prefix kv.Key) kv.Key {
	return prefix.Child("g")
}

// --- marker labels ---

func yearLabel(year int) string {
	return fmt.Sprintf("y:%d", year)
}

func monthLabel(year int, month string) string {
	return fmt.Sprintf("m:%d:%s", year, month)
}

func dayLabel(year int, month string, day int) string {
	return fmt.Sprintf("d:%d:%s:%d", year, month, day)
}

// parseDayLabel splits a day marker label back into its parts.
func parseDayLabel(label string) (year int, month string, day int, ok bool) {
	parts := strings.Split(label, ":")
	if len(parts) != 4 || parts[0] != "d" {
		return 0, "", 0, false
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, "", 0, false
	}
	d, err := strconv.Atoi(parts[3])
	if err != nil {
		return 0, "", 0, false
	}
	return y, parts[2], d, true
}
