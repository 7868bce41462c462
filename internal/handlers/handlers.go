package handlers

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"playlist-player/internal/catalog"
	"playlist-player/internal/order"
	"playlist-player/internal/player"
	"playlist-player/internal/session"
)

// Player is the playlist core the API drives.
type Player interface {
	Snapshot(query string) player.Snapshot
	Stats() catalog.Stats
	Entry(id string) (catalog.MediaEntry, bool)
	Entries() []catalog.MediaEntry
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Sort(ctx context.Context, spec order.SortSpec) error
	Shuffle(ctx context.Context) error
	Load(id string) bool
	NaturalEnd(id string) session.State
}

// Uploads stores incoming files and locates stored ones.
type Uploads interface {
	MaxSize() int64
	Ingest(ctx context.Context, name, mimeType string, size int64, body io.Reader) (catalog.MediaEntry, error)
	Path(entry catalog.MediaEntry) (string, bool)
}

// Thumbnails renders preview frames.
type Thumbnails interface {
	Enabled() bool
	Generate(ctx context.Context, key, path string) ([]byte, bool)
}

// HealthChecker is implemented by stores that can report reachability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handlers struct {
	player  Player
	uploads Uploads
	thumbs  Thumbnails
	surface http.Handler
	store   HealthChecker

	started time.Time
	ready   atomic.Bool
	now     func() time.Time
}

// New wires the API. thumbs, surface and store may be nil.
func New(p Player, uploads Uploads, thumbs Thumbnails, surface http.Handler, store HealthChecker) *Handlers {
	return &Handlers{
		player:  p,
		uploads: uploads,
		thumbs:  thumbs,
		surface: surface,
		store:   store,
		started: time.Now(),
		now:     time.Now,
	}
}

// SetReady marks the service as ready to take traffic.
func (h *Handlers) SetReady(ready bool) {
	h.ready.Store(ready)
}
