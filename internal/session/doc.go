// Package session tracks which catalog entry is active on the playback
// surface.
//
// The Controller is a small state machine over the active index: Empty
// (index -1) or Active(i) with 0 <= i < catalog length. It is registered as
// the catalog's Observer, so every committed mutation re-derives the active
// index before the mutating call returns and no caller can observe an index
// that is out of bounds or points at a different entry.
//
// Each transition yields an Effect describing what the playback surface
// must do: nothing, load the active entry, load and play it, or clear.
// Transitions driven by catalog callbacks leave their effect pending until
// the owner collects it with TakeEffect.
//
// The Controller holds only the index. The active entry is always read back
// from the catalog.
package session
