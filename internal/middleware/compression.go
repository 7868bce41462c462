package middleware

import (
	"compress/gzip"
	"io"
	"mime"
	"net/http"
	"slices"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the minimum response size in bytes before compression is applied
	MinSize int
	// Level is the gzip compression level (gzip.BestSpeed to gzip.BestCompression)
	Level int
	// CompressibleTypes is a list of content types that should be compressed
	CompressibleTypes []string
	// SkipPrefixes bypass compression entirely (range-served media).
	SkipPrefixes []string
}

// DefaultCompressionConfig compresses API documents and exports
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Level:   gzip.DefaultCompression,
		CompressibleTypes: []string{
			"text/plain",
			"text/csv",
			"application/json",
		},
		SkipPrefixes: []string{"/api/media/", "/ws"},
	}
}

// newGzipPool returns a pool of writers at level. An invalid level falls
// back to the default.
func newGzipPool(level int) *sync.Pool {
	if _, err := gzip.NewWriterLevel(io.Discard, level); err != nil {
		level = gzip.DefaultCompression
	}
	return &sync.Pool{
		New: func() interface{} {
			w, _ := gzip.NewWriterLevel(io.Discard, level)
			return w
		},
	}
}

// gzipResponseWriter buffers up to MinSize bytes, then commits to either
// a gzip or a plain body.
type gzipResponseWriter struct {
	http.ResponseWriter
	config     CompressionConfig
	pool       *sync.Pool
	gzipWriter *gzip.Writer
	buffer     []byte
	statusCode int
	committed  bool
}

func newGzipResponseWriter(w http.ResponseWriter, config CompressionConfig, pool *sync.Pool) *gzipResponseWriter {
	return &gzipResponseWriter{
		ResponseWriter: w,
		config:         config,
		pool:           pool,
		statusCode:     http.StatusOK,
		buffer:         make([]byte, 0, config.MinSize+1),
	}
}

// WriteHeader records the status until the body decision is made.
func (g *gzipResponseWriter) WriteHeader(statusCode int) {
	if g.committed {
		return
	}
	g.statusCode = statusCode
}

func (g *gzipResponseWriter) Write(data []byte) (int, error) {
	if g.committed {
		if g.gzipWriter != nil {
			return g.gzipWriter.Write(data)
		}
		return g.ResponseWriter.Write(data)
	}

	g.buffer = append(g.buffer, data...)
	if len(g.buffer) > g.config.MinSize {
		if err := g.commit(); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}

func (g *gzipResponseWriter) compressible() bool {
	mediaType, _, err := mime.ParseMediaType(g.Header().Get("Content-Type"))
	if err != nil {
		return false
	}
	return slices.Contains(g.config.CompressibleTypes, mediaType)
}

// commit writes the header and the buffered bytes.
func (g *gzipResponseWriter) commit() error {
	if g.committed {
		return nil
	}
	g.committed = true

	data := g.buffer
	g.buffer = nil

	if len(data) < g.config.MinSize || !g.compressible() || g.Header().Get("Content-Encoding") != "" {
		g.ResponseWriter.WriteHeader(g.statusCode)
		_, err := g.ResponseWriter.Write(data)
		return err
	}

	g.Header().Del("Content-Length")
	g.Header().Set("Content-Encoding", "gzip")
	g.Header().Add("Vary", "Accept-Encoding")

	g.gzipWriter = g.pool.Get().(*gzip.Writer)
	g.gzipWriter.Reset(g.ResponseWriter)

	g.ResponseWriter.WriteHeader(g.statusCode)
	_, err := g.gzipWriter.Write(data)
	return err
}

// Close flushes the response and returns the gzip writer to the pool.
func (g *gzipResponseWriter) Close() error {
	err := g.commit()

	if g.gzipWriter != nil {
		if cerr := g.gzipWriter.Close(); err == nil {
			err = cerr
		}
		g.pool.Put(g.gzipWriter)
		g.gzipWriter = nil
	}
	return err
}

// Flush implements http.Flusher
func (g *gzipResponseWriter) Flush() {
	_ = g.commit()

	if g.gzipWriter != nil {
		_ = g.gzipWriter.Flush()
	}
	if flusher, ok := g.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Compression returns a middleware that compresses responses using gzip
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	pool := newGzipPool(config.Level)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !acceptsGzip(r) || r.Header.Get("Upgrade") != "" || hasPrefix(r.URL.Path, config.SkipPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			gzw := newGzipResponseWriter(w, config, pool)
			defer func() {
				_ = gzw.Close()
			}()

			next.ServeHTTP(gzw, r)
		})
	}
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		coding, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(coding, "gzip") {
			return true
		}
	}
	return false
}

func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
