package thumbnail

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"

	"playlist-player/internal/logging"
	"playlist-player/internal/metrics"
)

const (
	// Width and Height are the thumbnail dimensions.
	Width  = 160
	Height = 100

	// DefaultTimeout bounds a single generation.
	DefaultTimeout = 10 * time.Second

	jpegQuality = 70
	maxOffset   = 5 * time.Second
)

// Generator produces cached JPEG thumbnails.
type Generator struct {
	cacheDir  string
	timeout   time.Duration
	extractor Extractor
	group     singleflight.Group
}

// NewGenerator returns a generator writing to cacheDir. A nil extractor
// disables generation; cached thumbnails are still served.
func NewGenerator(cacheDir string, extractor Extractor, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		logging.Warn("Thumbnail: failed to create cache dir: %v", err)
	}
	if extractor == nil {
		logging.Warn("Thumbnail: no extractor available, thumbnails and probing disabled")
	}
	return &Generator{
		cacheDir:  cacheDir,
		timeout:   timeout,
		extractor: extractor,
	}
}

// Enabled reports whether new thumbnails can be generated.
func (g *Generator) Enabled() bool {
	return g.extractor != nil
}

// CaptureOffset picks the frame position: 10% into the video, at most five
// seconds. Unknown durations use the first frame.
func CaptureOffset(durationSeconds float64) time.Duration {
	if !(durationSeconds > 0) {
		return 0
	}
	return min(time.Duration(durationSeconds*0.1*float64(time.Second)), maxOffset)
}

// Cached returns a previously generated thumbnail for key.
func (g *Generator) Cached(key string) ([]byte, bool) {
	data, err := os.ReadFile(g.cachePath(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Remove deletes the cached thumbnail for key.
func (g *Generator) Remove(key string) {
	if err := os.Remove(g.cachePath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Thumbnail: failed to remove %s: %v", key, err)
	}
}

// Generate returns the JPEG thumbnail for the video at path, keyed by key.
// It reports false on any failure, including the timeout.
func (g *Generator) Generate(ctx context.Context, key, path string) ([]byte, bool) {
	if data, ok := g.Cached(key); ok {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("cache_hit").Inc()
		return data, true
	}
	if g.extractor == nil {
		return nil, false
	}

	// Generation is shared by every caller of key, so it is bounded only by
	// the generator timeout. Each caller stops waiting when its own ctx ends.
	ch := g.group.DoChan(key, func() (interface{}, error) {
		return g.generate(context.WithoutCancel(ctx), key, path)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			logging.Debug("Thumbnail: no thumbnail for %s: %v", key, res.Err)
			return nil, false
		}
		if res.Shared {
			logging.Debug("Thumbnail: shared result for %s", key)
		}
		return res.Val.([]byte), true
	case <-ctx.Done():
		return nil, false
	}
}

func (g *Generator) generate(ctx context.Context, key, path string) ([]byte, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	data, err := g.render(ctx, path)
	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		metrics.ThumbnailGenerationsTotal.WithLabelValues("timeout").Inc()
		return nil, fmt.Errorf("timed out after %s", g.timeout)
	case err != nil:
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ThumbnailGenerationsTotal.WithLabelValues("success").Inc()

	if err := os.WriteFile(g.cachePath(key), data, 0o644); err != nil {
		logging.Warn("Thumbnail: failed to cache %s: %v", key, err)
	}
	return data, nil
}

func (g *Generator) render(ctx context.Context, path string) ([]byte, error) {
	duration, err := g.extractor.Duration(ctx, path)
	if err != nil {
		logging.Debug("Thumbnail: duration unknown for %s: %v", path, err)
		duration = 0
	}

	img, err := g.extractor.Frame(ctx, path, CaptureOffset(duration))
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errors.New("extractor returned nil image")
	}

	thumb := imaging.Resize(img, Width, Height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// Probe returns the duration of the video at path in seconds, bounded by
// the generator timeout.
func (g *Generator) Probe(ctx context.Context, path string) (float64, error) {
	if g.extractor == nil {
		return 0, errors.New("probing disabled")
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.extractor.Duration(ctx, path)
}

func (g *Generator) cachePath(key string) string {
	return filepath.Join(g.cacheDir, fmt.Sprintf("%x.jpg", md5.Sum([]byte(key))))
}
