// Package database provides the SQLite-backed playlist store.
//
// The database holds a single key/value metadata table. The serialized
// playlist lives under the PlaylistKey entry, and Database implements
// catalog.Store so the catalog can persist through it directly.
//
// The database uses WAL mode for improved concurrent read performance
// and includes automatic schema initialization.
package database
