// Package player wires the catalog, the session controller and the playback
// surface into one command processor.
//
// Every command runs to completion under a single mutex, so catalog
// mutations and the session transitions they trigger are never interleaved
// with another command. The resulting surface effect is dispatched after
// the lock is released.
//
// Background work for an entry (duration probing, thumbnails) reports back
// through MetadataLoaded and ThumbnailReady. Both re-validate the entry id
// and silently drop results for entries that were removed in the meantime.
package player
