// Package storage selects and opens the playlist store.
//
// Four backends implement catalog.Store:
//   - sqlite: the metadata table in internal/database (default)
//   - bolt: a single bbolt bucket
//   - file: a JSON file replaced atomically on every save
//   - redis: one key in a Redis database
//
// Every backend reports StoreOperationsTotal and StoreOperationDuration
// under its own backend label.
package storage
