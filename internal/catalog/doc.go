// Package catalog owns the ordered collection of media entries that make up
// the playlist.
//
// Insertion order is the canonical order. The sequence is only ever changed
// by four operations:
//   - [Catalog.Append]: add an entry at the end
//   - [Catalog.RemoveByID]: drop an entry (idempotent)
//   - [Catalog.ReplaceAll]: install a permutation produced by sort or shuffle
//   - [Catalog.Clear]: empty the playlist
//
// Every mutation is written to the configured [Store] before it becomes
// visible in memory, and the registered [Observer] (the playback session) is
// notified in the same call so that the active entry is never observed out of
// bounds. A failed write leaves both the catalog and the observer untouched.
//
// The persisted form is a JSON array whose field names match the browser
// player's local storage layout (id, name, url, size, type, duration,
// uploadDate).
//
// A Catalog is not safe for concurrent use; callers serialize access.
package catalog
