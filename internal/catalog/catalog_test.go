package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type memStore struct {
	data    []byte
	saveErr error
	loadErr error
	saves   int
}

func (m *memStore) Load(context.Context) ([]byte, error) {
	return m.data, m.loadErr
}

func (m *memStore) Save(_ context.Context, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data = append([]byte(nil), data...)
	return nil
}

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) OnAppended(index int) {
	r.events = append(r.events, fmt.Sprintf("appended:%d", index))
}

func (r *recordingObserver) OnEntryRemoved(id string, index int) {
	r.events = append(r.events, fmt.Sprintf("removed:%s@%d", id, index))
}

func (r *recordingObserver) OnSequenceReplaced(previous, current []MediaEntry) {
	r.events = append(r.events, fmt.Sprintf("replaced:%d->%d", len(previous), len(current)))
}

func (r *recordingObserver) OnCleared() {
	r.events = append(r.events, "cleared")
}

func entry(id, name string, size int64) MediaEntry {
	return MediaEntry{ID: id, Name: name, SizeBytes: size, MimeType: "video/mp4"}
}

func ids(entries []MediaEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func assertUniqueIDs(t *testing.T, c *Catalog) {
	t.Helper()
	seen := map[string]bool{}
	for _, e := range c.Entries() {
		if seen[e.ID] {
			t.Fatalf("duplicate id %q in %v", e.ID, ids(c.Entries()))
		}
		seen[e.ID] = true
	}
}

func TestAppendRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	c := New(&memStore{})

	if err := c.Append(ctx, entry("a", "one", 1)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	err := c.Append(ctx, entry("a", "again", 2))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Append() error = %v, want ErrDuplicateID", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestAppendRejectsEmptyID(t *testing.T) {
	c := New(nil)
	if err := c.Append(context.Background(), entry("", "x", 0)); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("Append() error = %v, want ErrInvariantViolation", err)
	}
}

func TestNoDuplicatesAcrossOperations(t *testing.T) {
	ctx := context.Background()
	c := New(&memStore{})

	ops := []struct {
		append bool
		id     string
	}{
		{true, "a"}, {true, "b"}, {true, "a"}, {false, "a"}, {true, "a"},
		{false, "zzz"}, {true, "c"}, {true, "b"}, {false, "b"}, {false, "b"}, {true, "b"},
	}

	for _, op := range ops {
		if op.append {
			_ = c.Append(ctx, entry(op.id, op.id, 1))
		} else if err := c.RemoveByID(ctx, op.id); err != nil {
			t.Fatalf("RemoveByID(%q) error = %v", op.id, err)
		}
		assertUniqueIDs(t, c)
	}

	if diff := cmp.Diff([]string{"a", "c", "b"}, ids(c.Entries())); diff != "" {
		t.Errorf("final order mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	obs := &recordingObserver{}
	c := New(store)
	c.SetObserver(obs)

	if err := c.Append(ctx, entry("a", "a", 1)); err != nil {
		t.Fatal(err)
	}
	saves := store.saves

	if err := c.RemoveByID(ctx, "missing"); err != nil {
		t.Fatalf("RemoveByID() error = %v", err)
	}
	if store.saves != saves {
		t.Errorf("store written on no-op remove")
	}
	if diff := cmp.Diff([]string{"appended:0"}, obs.events); diff != "" {
		t.Errorf("observer events mismatch (-want +got):\n%s", diff)
	}
}

func TestObserverNotifications(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	c := New(&memStore{})
	c.SetObserver(obs)

	_ = c.Append(ctx, entry("a", "a", 1))
	_ = c.Append(ctx, entry("b", "b", 1))
	_ = c.RemoveByID(ctx, "a")
	_ = c.ReplaceAll(ctx, c.Entries())
	_ = c.Clear(ctx)

	want := []string{"appended:0", "appended:1", "removed:a@0", "replaced:1->1", "cleared"}
	if diff := cmp.Diff(want, obs.events); diff != "" {
		t.Errorf("observer events mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateStats(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		c := New(nil)
		if got := c.AggregateStats(); got != (Stats{}) {
			t.Errorf("AggregateStats() = %+v, want zero", got)
		}
		if math.IsNaN(c.AggregateStats().AverageSizeBytes) {
			t.Error("average is NaN")
		}
	})

	t.Run("populated", func(t *testing.T) {
		c := New(nil)
		a := entry("a", "a", 100)
		a.DurationSeconds = 10
		b := entry("b", "b", 300)
		b.DurationSeconds = math.NaN()
		_ = c.Append(ctx, a)
		_ = c.Append(ctx, b)

		want := Stats{Count: 2, TotalSizeBytes: 400, TotalDurationSeconds: 10, AverageSizeBytes: 200}
		if got := c.AggregateStats(); got != want {
			t.Errorf("AggregateStats() = %+v, want %+v", got, want)
		}
	})

	t.Run("after clear", func(t *testing.T) {
		c := New(nil)
		_ = c.Append(ctx, entry("a", "a", 100))
		_ = c.Clear(ctx)
		if got := c.AggregateStats(); got != (Stats{}) {
			t.Errorf("AggregateStats() = %+v, want zero", got)
		}
	})
}

func TestReplaceAllRequiresPermutation(t *testing.T) {
	ctx := context.Background()
	c := New(&memStore{})
	for _, id := range []string{"a", "b", "c"} {
		_ = c.Append(ctx, entry(id, id, 1))
	}

	tests := []struct {
		name string
		seq  []string
	}{
		{"too short", []string{"a", "b"}},
		{"unknown id", []string{"a", "b", "x"}},
		{"repeated id", []string{"a", "a", "b"}},
		{"too long", []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := make([]MediaEntry, len(tt.seq))
			for i, id := range tt.seq {
				seq[i] = entry(id, id, 1)
			}
			if err := c.ReplaceAll(ctx, seq); !errors.Is(err, ErrInvariantViolation) {
				t.Errorf("ReplaceAll() error = %v, want ErrInvariantViolation", err)
			}
			if diff := cmp.Diff([]string{"a", "b", "c"}, ids(c.Entries())); diff != "" {
				t.Errorf("order changed (-want +got):\n%s", diff)
			}
		})
	}

	reversed := []MediaEntry{entry("c", "c", 1), entry("b", "b", 1), entry("a", "a", 1)}
	if err := c.ReplaceAll(ctx, reversed); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, ids(c.Entries())); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	obs := &recordingObserver{}
	c := New(store)
	_ = c.Append(ctx, entry("a", "a", 10))
	_ = c.Append(ctx, entry("b", "b", 20))
	c.SetObserver(obs)

	before := c.Entries()
	stats := c.AggregateStats()
	store.saveErr = errors.New("disk full")

	checks := []struct {
		name string
		fn   func() error
	}{
		{"append", func() error { return c.Append(ctx, entry("c", "c", 1)) }},
		{"remove", func() error { return c.RemoveByID(ctx, "a") }},
		{"replace", func() error { return c.ReplaceAll(ctx, []MediaEntry{before[1], before[0]}) }},
		{"clear", func() error { return c.Clear(ctx) }},
		{"set duration", func() error { _, err := c.SetDuration(ctx, "a", 5); return err }},
	}

	for _, tt := range checks {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrPersistenceWrite) {
				t.Fatalf("error = %v, want ErrPersistenceWrite", err)
			}
			if diff := cmp.Diff(before, c.Entries()); diff != "" {
				t.Errorf("entries changed (-want +got):\n%s", diff)
			}
			if c.AggregateStats() != stats {
				t.Errorf("stats changed")
			}
		})
	}

	if len(obs.events) != 0 {
		t.Errorf("observer notified on failed mutations: %v", obs.events)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	c := New(store)

	uploaded := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	want := []MediaEntry{
		{ID: "1", Name: "Holiday.mp4", SizeBytes: 1024, MimeType: "video/mp4", DurationSeconds: 61.5, UploadedAt: uploaded, SourceRef: "/api/media/1/stream"},
		{ID: "2", Name: "clip.webm", SizeBytes: 0, MimeType: "video/webm", SourceRef: "/api/media/2/stream"},
		{ID: "3", Name: "talk.mkv", SizeBytes: 9, MimeType: "video/mkv", DurationSeconds: 3600, UploadedAt: uploaded.Add(time.Hour)},
	}
	for _, e := range want {
		if err := c.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	restored := New(store)
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if diff := cmp.Diff(want, restored.Entries()); diff != "" {
		t.Errorf("restored entries mismatch (-want +got):\n%s", diff)
	}
	if restored.AggregateStats() != c.AggregateStats() {
		t.Errorf("stats = %+v, want %+v", restored.AggregateStats(), c.AggregateStats())
	}
}

func TestRestoreDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		loadErr error
		wantErr bool
	}{
		{"nothing stored", "", nil, false},
		{"invalid json", "{not json", nil, false},
		{"not an array", `{"id":"a"}`, nil, false},
		{"missing id", `[{"name":"a","size":1}]`, nil, false},
		{"negative size", `[{"id":"a","size":-4}]`, nil, false},
		{"duplicate ids", `[{"id":"a"},{"id":"a"}]`, nil, false},
		{"store unreachable", "", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordingObserver{}
			c := New(&memStore{data: []byte(tt.data), loadErr: tt.loadErr})
			c.SetObserver(obs)

			err := c.Restore(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Restore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrPersistenceRead) {
				t.Errorf("Restore() error = %v, want ErrPersistenceRead", err)
			}
			if c.Len() != 0 {
				t.Errorf("Len() = %d, want 0", c.Len())
			}
			if diff := cmp.Diff([]string{"cleared"}, obs.events); diff != "" {
				t.Errorf("observer events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetDuration(t *testing.T) {
	ctx := context.Background()
	c := New(&memStore{})
	_ = c.Append(ctx, entry("a", "a", 1))
	_ = c.Append(ctx, entry("b", "b", 1))

	ok, err := c.SetDuration(ctx, "b", 42.5)
	if err != nil || !ok {
		t.Fatalf("SetDuration() = %v, %v", ok, err)
	}
	got, _ := c.At(1)
	if got.DurationSeconds != 42.5 {
		t.Errorf("DurationSeconds = %v, want 42.5", got.DurationSeconds)
	}
	if diff := cmp.Diff([]string{"a", "b"}, ids(c.Entries())); diff != "" {
		t.Errorf("order changed (-want +got):\n%s", diff)
	}

	ok, err = c.SetDuration(ctx, "gone", 1)
	if err != nil || ok {
		t.Errorf("SetDuration(unknown) = %v, %v, want false, nil", ok, err)
	}

	if _, err := c.SetDuration(ctx, "a", -3); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.At(0); got.DurationSeconds != 0 {
		t.Errorf("negative duration stored as %v, want 0", got.DurationSeconds)
	}
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("Encode(nil) = %s, want []", data)
	}
}

func TestAtBounds(t *testing.T) {
	c := New(nil)
	_ = c.Append(context.Background(), entry("a", "a", 1))

	for _, i := range []int{-1, 1, 5} {
		if _, ok := c.At(i); ok {
			t.Errorf("At(%d) ok = true, want false", i)
		}
	}
	if e, ok := c.At(0); !ok || e.ID != "a" {
		t.Errorf("At(0) = %v, %v", e, ok)
	}
}
