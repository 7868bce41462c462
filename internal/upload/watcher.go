package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"playlist-player/internal/logging"
	"playlist-player/internal/mediatypes"
)

// DefaultSettle is how long a dropped file must go without writes before it
// is ingested.
const DefaultSettle = 2 * time.Second

// Watcher ingests videos copied into a drop folder. Ingested files are
// removed from the folder; rejected files are left in place.
type Watcher struct {
	dir    string
	svc    *Service
	settle time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// NewWatcher watches dir for new files.
func NewWatcher(dir string, svc *Service, settle time.Duration) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		dir:     dir,
		svc:     svc,
		settle:  settle,
		pending: make(map[string]*time.Timer),
	}
}

// Run ingests files already in the folder, then watches it until ctx is
// cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating ingest dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() {
		_ = fw.Close()
	}()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logging.Info("Ingest: watching %s", w.dir)

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", w.dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.touch(ctx, filepath.Join(w.dir, e.Name()))
		}
	}

	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			// A file may produce many write events while it is copied in;
			// each one pushes ingestion back.
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.touch(ctx, event.Name)
			} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.forget(event.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Ingest: watcher error: %v", err)
		}
	}
}

func (w *Watcher) touch(ctx context.Context, path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}
	if mediatypes.MimeForExt(filepath.Ext(path)) == "" {
		logging.Debug("Ingest: ignoring %s", path)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		t.Reset(w.settle)
		return
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err := w.ingest(ctx, path); err != nil {
			logging.Warn("Ingest: %v", err)
		}
	})
	w.pending[path] = t
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok && t.Stop() {
		delete(w.pending, path)
		w.wg.Done()
	}
}

// stop cancels timers that have not fired and waits for running ingests.
func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) ingest(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	mimeType := mediatypes.MimeForExt(filepath.Ext(path))
	if _, err := w.svc.Ingest(ctx, info.Name(), mimeType, info.Size(), f); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		logging.Warn("Ingest: ingested %s but could not remove it: %v", path, err)
	}
	return nil
}
