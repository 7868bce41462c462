package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"playlist-player/internal/catalog"
	"playlist-player/internal/database"
	"playlist-player/internal/metrics"
)

// Backend names accepted by Open.
const (
	BackendSQLite = database.Backend
	BackendBolt   = "bolt"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store is a catalog.Store that owns a connection or file handle.
type Store interface {
	catalog.Store
	Close() error
}

// Config selects a backend and where it keeps its data.
type Config struct {
	Backend   string
	DataDir   string
	RedisAddr string
	RedisDB   int
}

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendSQLite, BackendBolt, BackendFile, BackendRedis}
}

// Open opens the configured backend. File based backends are created
// under DataDir, which must exist.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendSQLite:
		return database.New(ctx, filepath.Join(cfg.DataDir, "playlist.db"))
	case BackendBolt:
		return OpenBolt(filepath.Join(cfg.DataDir, "playlist.bolt"))
	case BackendFile:
		return NewFileStore(filepath.Join(cfg.DataDir, "playlist.json")), nil
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBackend, cfg.Backend, strings.Join(Backends(), ", "))
	}
}

// Name normalizes a backend name for metrics labels.
func Name(backend string) string {
	b := strings.ToLower(strings.TrimSpace(backend))
	if b == "" {
		return BackendSQLite
	}
	return b
}

func record(backend, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StoreOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	metrics.StoreOperationDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
