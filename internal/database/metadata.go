package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PlaylistKey is the metadata key holding the serialized playlist.
const PlaylistKey = "videoPlayerPlaylist"

// GetMetadata retrieves a metadata value by key.
// Returns sql.ErrNoRows if the key doesn't exist.
func (d *Database) GetMetadata(ctx context.Context, key string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value sql.NullString
	err := d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value.String, nil
}

// SetMetadata sets a metadata key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().Unix())
	return err
}

// UpdatedAt returns when key was last written. Zero time if never.
func (d *Database) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ts int64
	err := d.db.QueryRowContext(ctx, "SELECT updated_at FROM metadata WHERE key = ?", key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	if ts == 0 {
		return time.Time{}, nil
	}
	return time.Unix(ts, 0), nil
}

// Load returns the stored playlist, or nil when nothing has been saved yet.
func (d *Database) Load(ctx context.Context) ([]byte, error) {
	start := time.Now()
	var err error
	defer func() { recordOp("load", start, err) }()

	var value string
	value, err = d.GetMetadata(ctx, PlaylistKey)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", PlaylistKey, err)
	}
	return []byte(value), nil
}

// Save replaces the stored playlist.
func (d *Database) Save(ctx context.Context, data []byte) error {
	start := time.Now()
	err := d.SetMetadata(ctx, PlaylistKey, string(data))
	recordOp("save", start, err)
	if err != nil {
		return fmt.Errorf("write %s: %w", PlaylistKey, err)
	}
	return nil
}
