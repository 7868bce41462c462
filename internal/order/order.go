package order

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"playlist-player/internal/catalog"
)

// SortKey names the field entries are ordered by.
type SortKey string

const (
	ByName       SortKey = "name"
	ByUploadedAt SortKey = "uploadedAt"
	BySize       SortKey = "sizeBytes"
	ByDuration   SortKey = "durationSeconds"
)

// Direction is ascending or descending.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortSpec selects the key and direction used by SortedView.
type SortSpec struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultSortSpec is name ascending.
func DefaultSortSpec() SortSpec {
	return SortSpec{Key: ByName, Direction: Ascending}
}

func (s SortSpec) String() string {
	return string(s.Key) + " " + string(s.Direction)
}

// ParseSortKey accepts the canonical key names and the short forms used by
// the sort selector ("date", "size", "duration").
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "":
		return ByName, nil
	case "uploadedat", "uploaddate", "date":
		return ByUploadedAt, nil
	case "sizebytes", "size":
		return BySize, nil
	case "durationseconds", "duration":
		return ByDuration, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// ParseDirection accepts "asc"/"ascending" and "desc"/"descending".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}

// ParseSortSpec parses a key and direction pair.
func ParseSortSpec(key, direction string) (SortSpec, error) {
	k, err := ParseSortKey(key)
	if err != nil {
		return SortSpec{}, err
	}
	d, err := ParseDirection(direction)
	if err != nil {
		return SortSpec{}, err
	}
	return SortSpec{Key: k, Direction: d}, nil
}

func compareBy(key SortKey) func(a, b catalog.MediaEntry) int {
	switch key {
	case ByUploadedAt:
		// Zero time is the earliest value, which matches "missing means epoch".
		return func(a, b catalog.MediaEntry) int {
			return cmp.Compare(unixNano(a), unixNano(b))
		}
	case BySize:
		return func(a, b catalog.MediaEntry) int {
			return cmp.Compare(max(a.SizeBytes, 0), max(b.SizeBytes, 0))
		}
	case ByDuration:
		return func(a, b catalog.MediaEntry) int {
			return cmp.Compare(a.KnownDuration(), b.KnownDuration())
		}
	default:
		// A Caser is stateful, so each comparator gets its own.
		folder := cases.Fold()
		return func(a, b catalog.MediaEntry) int {
			return strings.Compare(folder.String(a.Name), folder.String(b.Name))
		}
	}
}

func unixNano(e catalog.MediaEntry) int64 {
	if e.UploadedAt.IsZero() {
		return 0
	}
	return e.UploadedAt.UnixNano()
}

// SortedView returns entries ordered by spec.
func SortedView(entries []catalog.MediaEntry, spec SortSpec) []catalog.MediaEntry {
	out := slices.Clone(entries)
	less := compareBy(spec.Key)
	if spec.Direction == Descending {
		asc := less
		less = func(a, b catalog.MediaEntry) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, less)
	return out
}

// ShuffledView returns a uniformly random permutation of entries using the
// Fisher-Yates algorithm. A nil rng uses the package-level source.
func ShuffledView(entries []catalog.MediaEntry, rng *rand.Rand) []catalog.MediaEntry {
	out := slices.Clone(entries)
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// FilteredView returns the entries whose name contains query, ignoring case.
// An empty query matches everything.
func FilteredView(entries []catalog.MediaEntry, query string) []catalog.MediaEntry {
	query = strings.TrimSpace(query)
	if query == "" {
		return slices.Clone(entries)
	}

	folder := cases.Fold()
	needle := folder.String(query)
	out := make([]catalog.MediaEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(folder.String(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}
