package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"playlist-player/internal/catalog"
	"playlist-player/internal/logging"
	"playlist-player/internal/mediatypes"
	"playlist-player/internal/metrics"
	"playlist-player/internal/thumbnail"
	"playlist-player/internal/workers"
)

// DefaultMaxSize is the largest accepted upload, 500 MiB.
const DefaultMaxSize int64 = 500 * 1024 * 1024

// Player is what the upload service needs from the player.
type Player interface {
	Append(ctx context.Context, entry catalog.MediaEntry) error
	MetadataLoaded(ctx context.Context, id string, seconds float64) (bool, error)
	ThumbnailReady(id string) bool
	OnRemoved(fn func(catalog.MediaEntry))
}

// Config configures a Service.
type Config struct {
	// Dir holds stored uploads.
	Dir string
	// MaxSize caps a single upload in bytes. Zero means DefaultMaxSize.
	MaxSize int64
}

// Service ingests uploads.
type Service struct {
	dir     string
	maxSize int64
	player  Player
	pool    *workers.Pool
	thumbs  *thumbnail.Generator
	now     func() time.Time
	newID   func() string
}

// NewService creates the upload directory and registers the removal hook
// with p. pool and thumbs may be nil, which disables background probing.
func NewService(cfg Config, p Player, pool *workers.Pool, thumbs *thumbnail.Generator) (*Service, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	s := &Service{
		dir:     cfg.Dir,
		maxSize: cfg.MaxSize,
		player:  p,
		pool:    pool,
		thumbs:  thumbs,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	p.OnRemoved(s.release)
	return s, nil
}

// MaxSize returns the size limit in bytes.
func (s *Service) MaxSize() int64 {
	return s.maxSize
}

// Validate checks type and size without touching anything.
func (s *Service) Validate(name, mimeType string, size int64) error {
	if !mediatypes.IsAllowed(mimeType) {
		return &ValidationError{Name: name, Reason: ErrUnsupportedType, Detail: mimeType}
	}
	if size > s.maxSize {
		return &ValidationError{
			Name:   name,
			Reason: ErrTooLarge,
			Detail: "maximum size is " + humanize.IBytes(uint64(s.maxSize)),
		}
	}
	return nil
}

// Ingest validates, stores and appends one upload. size is the declared
// size; a body longer than the limit is rejected even if size lied.
func (s *Service) Ingest(ctx context.Context, name, mimeType string, size int64, body io.Reader) (catalog.MediaEntry, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if err := s.Validate(name, mimeType, size); err != nil {
		recordUpload(err)
		logging.Info("Upload: rejected %v", err)
		return catalog.MediaEntry{}, err
	}

	id := s.newID()
	mimeType = mediatypes.Normalize(mimeType)
	path := s.path(id, mimeType)

	written, err := s.store(path, body)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			err = &ValidationError{Name: name, Reason: ErrTooLarge,
				Detail: "maximum size is " + humanize.IBytes(uint64(s.maxSize))}
		}
		recordUpload(err)
		return catalog.MediaEntry{}, err
	}

	entry := catalog.MediaEntry{
		ID:         id,
		Name:       name,
		SizeBytes:  written,
		MimeType:   mimeType,
		UploadedAt: s.now().UTC(),
		SourceRef:  SourceRef(id),
	}

	if err := s.player.Append(ctx, entry); err != nil {
		_ = os.Remove(path)
		recordUpload(err)
		return catalog.MediaEntry{}, fmt.Errorf("adding %s to playlist: %w", name, err)
	}

	recordUpload(nil)
	logging.Info("Upload: stored %s (%s, %s)", name, mimeType, humanize.IBytes(uint64(written)))
	s.schedule(entry)
	return entry, nil
}

// Path returns the stored file for entry.
func (s *Service) Path(entry catalog.MediaEntry) (string, bool) {
	path := s.path(entry.ID, entry.MimeType)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Backfill schedules probing and thumbnails for restored entries that
// lack a duration or a cached thumbnail.
func (s *Service) Backfill(entries []catalog.MediaEntry) {
	if s.pool == nil || s.thumbs == nil || !s.thumbs.Enabled() {
		return
	}
	n := 0
	for _, e := range entries {
		if _, cached := s.thumbs.Cached(e.ID); cached && e.KnownDuration() > 0 {
			continue
		}
		s.schedule(e)
		n++
	}
	if n > 0 {
		logging.Info("Upload: scheduled background work for %d restored entries", n)
	}
}

// SourceRef is the URL a surface loads to play entry id.
func SourceRef(id string) string {
	return "/api/media/" + id + "/stream"
}

func (s *Service) path(id, mimeType string) string {
	return filepath.Join(s.dir, id+mediatypes.ExtForMime(mimeType))
}

// store copies body to path through a temp file, enforcing the size limit.
func (s *Service) store(path string, body io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, io.LimitReader(body, s.maxSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("writing upload: %w", err)
	}
	if written > s.maxSize {
		return 0, ErrTooLarge
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("storing upload: %w", err)
	}
	return written, nil
}

func (s *Service) schedule(entry catalog.MediaEntry) {
	if s.pool == nil || s.thumbs == nil || !s.thumbs.Enabled() {
		return
	}
	path, ok := s.Path(entry)
	if !ok {
		logging.Warn("Upload: no stored file for %s, skipping background work", entry.ID)
		return
	}

	s.pool.Submit(entry.ID, func(ctx context.Context) {
		if entry.KnownDuration() == 0 {
			if d, err := s.thumbs.Probe(ctx, path); err != nil {
				logging.Debug("Upload: probe failed for %s: %v", entry.ID, err)
			} else if _, err := s.player.MetadataLoaded(ctx, entry.ID, d); err != nil {
				logging.Warn("Upload: saving duration for %s: %v", entry.ID, err)
			}
		}
		if ctx.Err() != nil {
			return
		}
		if _, ok := s.thumbs.Generate(ctx, entry.ID, path); ok {
			if !s.player.ThumbnailReady(entry.ID) {
				s.thumbs.Remove(entry.ID)
			}
		}
	})
}

// release runs after the player removed entry.
func (s *Service) release(entry catalog.MediaEntry) {
	if s.pool != nil {
		s.pool.Cancel(entry.ID)
	}
	if s.thumbs != nil {
		s.thumbs.Remove(entry.ID)
	}
	if err := os.Remove(s.path(entry.ID, entry.MimeType)); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Upload: failed to delete %s: %v", entry.ID, err)
	}
}

func recordUpload(err error) {
	status := "accepted"
	switch {
	case err == nil:
	case errors.Is(err, ErrUnsupportedType):
		status = "unsupported_type"
	case errors.Is(err, ErrTooLarge):
		status = "too_large"
	default:
		status = "error"
	}
	metrics.UploadsTotal.WithLabelValues(status).Inc()
}
