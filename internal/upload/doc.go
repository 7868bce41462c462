// Package upload validates incoming videos, stores them in the data
// directory and hands the resulting entries to the player.
//
// Validation happens before anything is written or appended: a rejected
// file never reaches the catalog. Accepted files are stored as
// <dir>/<id><ext> and served back through the entry's source reference.
//
// After an entry is appended the service schedules a probe for its
// duration and a thumbnail on the worker pool, keyed by the entry id. When
// the player removes the entry, the service cancels those jobs and deletes
// the stored file and thumbnail.
//
// Watcher adds drop-folder ingestion on top of the same service.
package upload
