package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"playlist-player/internal/logging"
	"playlist-player/internal/metrics"
)

// Store persists the serialized catalog. Load returns (nil, nil) when
// nothing has been stored yet.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Observer is notified after each committed mutation, before the mutating
// call returns.
type Observer interface {
	// OnAppended is called with the index of the new entry.
	OnAppended(index int)
	// OnEntryRemoved is called with the id and the index it occupied.
	OnEntryRemoved(id string, index int)
	// OnSequenceReplaced is called with the order before and after.
	OnSequenceReplaced(previous, current []MediaEntry)
	// OnCleared is called after Clear and Restore.
	OnCleared()
}

// Stats summarises the catalog.
type Stats struct {
	Count                int     `json:"count"`
	TotalSizeBytes       int64   `json:"totalSizeBytes"`
	TotalDurationSeconds float64 `json:"totalDurationSeconds"`
	AverageSizeBytes     float64 `json:"averageSizeBytes"`
}

// Catalog is the ordered, persisted collection of media entries.
type Catalog struct {
	entries  []MediaEntry
	store    Store
	observer Observer
	stats    Stats
}

// New creates an empty catalog backed by store. A nil store keeps the
// catalog in memory only.
func New(store Store) *Catalog {
	return &Catalog{store: store}
}

// SetObserver registers the observer notified on every mutation.
func (c *Catalog) SetObserver(o Observer) {
	c.observer = o
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// At returns the entry at index i.
func (c *Catalog) At(i int) (MediaEntry, bool) {
	if i < 0 || i >= len(c.entries) {
		return MediaEntry{}, false
	}
	return c.entries[i], true
}

// IndexOf returns the position of id, or -1.
func (c *Catalog) IndexOf(id string) int {
	return indexOf(c.entries, id)
}

// Entries returns a copy of the current sequence.
func (c *Catalog) Entries() []MediaEntry {
	return slices.Clone(c.entries)
}

// AggregateStats returns the statistics computed after the last mutation.
func (c *Catalog) AggregateStats() Stats {
	return c.stats
}

// Append inserts entry at the end.
func (c *Catalog) Append(ctx context.Context, entry MediaEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvariantViolation)
	}
	if c.IndexOf(entry.ID) >= 0 {
		recordMutation("append", ErrDuplicateID)
		return fmt.Errorf("%w: %s", ErrDuplicateID, entry.ID)
	}

	next := make([]MediaEntry, len(c.entries), len(c.entries)+1)
	copy(next, c.entries)
	next = append(next, entry)

	if err := c.commit(ctx, "append", next); err != nil {
		return err
	}
	if c.observer != nil {
		c.observer.OnAppended(len(c.entries) - 1)
	}
	return nil
}

// RemoveByID removes the entry with the given id. Removing an id that is
// not present is a no-op.
func (c *Catalog) RemoveByID(ctx context.Context, id string) error {
	idx := c.IndexOf(id)
	if idx < 0 {
		logging.Debug("Catalog: remove of unknown id %s ignored", id)
		return nil
	}

	next := slices.Delete(slices.Clone(c.entries), idx, idx+1)
	if err := c.commit(ctx, "remove", next); err != nil {
		return err
	}
	if c.observer != nil {
		c.observer.OnEntryRemoved(id, idx)
	}
	return nil
}

// ReplaceAll installs a reordering of the current entries. The new sequence
// must contain exactly the current id set.
func (c *Catalog) ReplaceAll(ctx context.Context, sequence []MediaEntry) error {
	if err := c.checkPermutation(sequence); err != nil {
		recordMutation("replace", err)
		return err
	}

	previous := c.entries
	if err := c.commit(ctx, "replace", slices.Clone(sequence)); err != nil {
		return err
	}
	if c.observer != nil {
		c.observer.OnSequenceReplaced(previous, c.Entries())
	}
	return nil
}

// Clear removes every entry.
func (c *Catalog) Clear(ctx context.Context) error {
	if err := c.commit(ctx, "clear", nil); err != nil {
		return err
	}
	if c.observer != nil {
		c.observer.OnCleared()
	}
	return nil
}

// SetDuration records the duration reported once media metadata has loaded.
// It never reorders entries. Unknown ids are ignored and reported as false.
func (c *Catalog) SetDuration(ctx context.Context, id string, seconds float64) (bool, error) {
	idx := c.IndexOf(id)
	if idx < 0 {
		return false, nil
	}

	next := slices.Clone(c.entries)
	next[idx].DurationSeconds = seconds
	next[idx].DurationSeconds = next[idx].KnownDuration()
	if err := c.commit(ctx, "set_duration", next); err != nil {
		return false, err
	}
	return true, nil
}

// Restore loads the persisted sequence. Unreadable or malformed data yields
// an empty catalog; the failure is logged, not returned. Only a store that
// cannot be reached at all produces an error, and the catalog is still
// left empty and usable.
func (c *Catalog) Restore(ctx context.Context) error {
	var loadErr error
	var entries []MediaEntry

	if c.store != nil {
		data, err := c.store.Load(ctx)
		switch {
		case err != nil:
			loadErr = fmt.Errorf("%w: %v", ErrPersistenceRead, err)
		case len(data) > 0:
			entries, err = Decode(data)
			if err != nil {
				logging.Warn("Catalog: discarding stored playlist: %v", err)
				entries = nil
			}
		}
	}

	c.entries = entries
	c.recompute()
	recordMutation("restore", loadErr)
	if c.observer != nil {
		c.observer.OnCleared()
	}

	if loadErr != nil {
		logging.Warn("Catalog: %v, starting with an empty playlist", loadErr)
		return loadErr
	}
	logging.Info("Catalog: restored %d entries", len(c.entries))
	return nil
}

// Encode serializes a sequence in the persisted layout.
func Encode(entries []MediaEntry) ([]byte, error) {
	if entries == nil {
		entries = []MediaEntry{}
	}
	return json.Marshal(entries)
}

// Decode parses the persisted layout and validates every record. Any invalid
// record rejects the whole payload.
func Decode(data []byte) ([]MediaEntry, error) {
	var entries []MediaEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceRead, err)
	}

	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		switch {
		case e.ID == "":
			return nil, fmt.Errorf("%w: entry %d has no id", ErrPersistenceRead, i)
		case e.SizeBytes < 0:
			return nil, fmt.Errorf("%w: entry %s has negative size", ErrPersistenceRead, e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("%w: id %s repeats", ErrPersistenceRead, e.ID)
		}
		seen[e.ID] = struct{}{}
		entries[i].DurationSeconds = e.KnownDuration()
	}
	return entries, nil
}

// commit persists next and, on success, installs it.
func (c *Catalog) commit(ctx context.Context, op string, next []MediaEntry) error {
	if c.store != nil {
		start := time.Now()
		data, err := Encode(next)
		if err == nil {
			err = c.store.Save(ctx, data)
		}
		metrics.CatalogPersistDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			err = fmt.Errorf("%w: %s: %v", ErrPersistenceWrite, op, err)
			recordMutation(op, err)
			logging.Error("Catalog: %v", err)
			return err
		}
	}

	c.entries = next
	c.recompute()
	recordMutation(op, nil)
	return nil
}

func (c *Catalog) checkPermutation(sequence []MediaEntry) error {
	if len(sequence) != len(c.entries) {
		return fmt.Errorf("%w: replacement has %d entries, catalog has %d",
			ErrInvariantViolation, len(sequence), len(c.entries))
	}

	remaining := make(map[string]struct{}, len(c.entries))
	for _, e := range c.entries {
		remaining[e.ID] = struct{}{}
	}
	for _, e := range sequence {
		if _, ok := remaining[e.ID]; !ok {
			return fmt.Errorf("%w: id %q is unknown or repeated", ErrInvariantViolation, e.ID)
		}
		delete(remaining, e.ID)
	}
	return nil
}

func (c *Catalog) recompute() {
	c.stats = computeStats(c.entries)

	metrics.CatalogEntries.Set(float64(c.stats.Count))
	metrics.CatalogSizeBytes.Set(float64(c.stats.TotalSizeBytes))
	metrics.CatalogDurationSeconds.Set(c.stats.TotalDurationSeconds)
}

func computeStats(entries []MediaEntry) Stats {
	var s Stats
	s.Count = len(entries)
	for _, e := range entries {
		if e.SizeBytes > 0 {
			s.TotalSizeBytes += e.SizeBytes
		}
		s.TotalDurationSeconds += e.KnownDuration()
	}
	if s.Count > 0 {
		s.AverageSizeBytes = float64(s.TotalSizeBytes) / float64(s.Count)
	}
	return s
}

func indexOf(entries []MediaEntry, id string) int {
	return slices.IndexFunc(entries, func(e MediaEntry) bool { return e.ID == id })
}

func recordMutation(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.CatalogMutationsTotal.WithLabelValues(op, status).Inc()
}
