package order

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"playlist-player/internal/catalog"
)

func ids(entries []catalog.MediaEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestSortedViewNameTiesStable(t *testing.T) {
	entries := []catalog.MediaEntry{
		{ID: "A", Name: "b"},
		{ID: "B", Name: "a"},
		{ID: "C", Name: "a"},
	}

	asc := SortedView(entries, SortSpec{Key: ByName, Direction: Ascending})
	if diff := cmp.Diff([]string{"B", "C", "A"}, ids(asc)); diff != "" {
		t.Errorf("ascending mismatch (-want +got):\n%s", diff)
	}

	desc := SortedView(entries, SortSpec{Key: ByName, Direction: Descending})
	if diff := cmp.Diff([]string{"A", "B", "C"}, ids(desc)); diff != "" {
		t.Errorf("descending mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"A", "B", "C"}, ids(entries)); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestSortedViewKeys(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	entries := []catalog.MediaEntry{
		{ID: "1", Name: "Zebra", SizeBytes: 300, DurationSeconds: 20, UploadedAt: base.Add(time.Hour)},
		{ID: "2", Name: "apple", SizeBytes: 0, DurationSeconds: math.NaN()},
		{ID: "3", Name: "Mango", SizeBytes: 100, DurationSeconds: 5, UploadedAt: base},
		{ID: "4", Name: "banana", SizeBytes: 100, DurationSeconds: 20, UploadedAt: base.Add(-time.Hour)},
	}

	tests := []struct {
		name string
		spec SortSpec
		want []string
	}{
		{"name asc", SortSpec{ByName, Ascending}, []string{"2", "4", "3", "1"}},
		{"name desc", SortSpec{ByName, Descending}, []string{"1", "3", "4", "2"}},
		{"date asc missing first", SortSpec{ByUploadedAt, Ascending}, []string{"2", "4", "3", "1"}},
		{"date desc", SortSpec{ByUploadedAt, Descending}, []string{"1", "3", "4", "2"}},
		{"size asc ties stable", SortSpec{BySize, Ascending}, []string{"2", "3", "4", "1"}},
		{"size desc ties stable", SortSpec{BySize, Descending}, []string{"1", "3", "4", "2"}},
		{"duration asc NaN as zero", SortSpec{ByDuration, Ascending}, []string{"2", "3", "1", "4"}},
		{"duration desc ties stable", SortSpec{ByDuration, Descending}, []string{"1", "4", "3", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(SortedView(entries, tt.spec))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SortedView(%v) mismatch (-want +got):\n%s", tt.spec, diff)
			}
		})
	}
}

func TestSortedViewEmpty(t *testing.T) {
	if got := SortedView(nil, DefaultSortSpec()); len(got) != 0 {
		t.Errorf("SortedView(nil) = %v", got)
	}
}

func TestShuffledViewIsPermutation(t *testing.T) {
	entries := make([]catalog.MediaEntry, 20)
	for i := range entries {
		entries[i] = catalog.MediaEntry{ID: string(rune('a' + i))}
	}

	got := ShuffledView(entries, rand.New(rand.NewPCG(1, 2)))
	if len(got) != len(entries) {
		t.Fatalf("len = %d, want %d", len(got), len(entries))
	}
	seen := map[string]int{}
	for _, e := range got {
		seen[e.ID]++
	}
	for _, e := range entries {
		if seen[e.ID] != 1 {
			t.Errorf("id %s appears %d times", e.ID, seen[e.ID])
		}
	}
}

func TestShuffledViewUniform(t *testing.T) {
	entries := []catalog.MediaEntry{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	rng := rand.New(rand.NewPCG(42, 7))

	const rounds = 60000
	counts := map[string]int{}
	for range rounds {
		p := ids(ShuffledView(entries, rng))
		counts[p[0]+p[1]+p[2]]++
	}

	if len(counts) != 6 {
		t.Fatalf("saw %d permutations, want 6", len(counts))
	}
	expected := float64(rounds) / 6
	for perm, n := range counts {
		if math.Abs(float64(n)-expected)/expected > 0.05 {
			t.Errorf("permutation %s seen %d times, expected about %.0f", perm, n, expected)
		}
	}
}

func TestShuffledViewNilRand(t *testing.T) {
	entries := []catalog.MediaEntry{{ID: "a"}, {ID: "b"}}
	if got := ShuffledView(entries, nil); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestFilteredView(t *testing.T) {
	entries := []catalog.MediaEntry{
		{ID: "1", Name: "Summer Holiday.mp4"},
		{ID: "2", Name: "birthday.webm"},
		{ID: "3", Name: "HOLIDAY recap.mkv"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3"}},
		{"   ", []string{"1", "2", "3"}},
		{"holiday", []string{"1", "3"}},
		{"DAY", []string{"1", "2", "3"}},
		{".webm", []string{"2"}},
		{"nothing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := ids(FilteredView(entries, tt.query))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilteredView(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestParseSortSpec(t *testing.T) {
	tests := []struct {
		key, dir string
		want     SortSpec
		wantErr  bool
	}{
		{"name", "asc", SortSpec{ByName, Ascending}, false},
		{"date", "desc", SortSpec{ByUploadedAt, Descending}, false},
		{"size", "", SortSpec{BySize, Ascending}, false},
		{"durationSeconds", "descending", SortSpec{ByDuration, Descending}, false},
		{"color", "asc", SortSpec{}, true},
		{"name", "sideways", SortSpec{}, true},
	}

	for _, tt := range tests {
		got, err := ParseSortSpec(tt.key, tt.dir)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSortSpec(%q, %q) error = %v, wantErr %v", tt.key, tt.dir, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSortSpec(%q, %q) = %v, want %v", tt.key, tt.dir, got, tt.want)
		}
	}
}
