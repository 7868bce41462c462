package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/google/renameio/v2"
)

// FileStore keeps the playlist in a single JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store writing to path. Nothing is touched until
// the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		record(BackendFile, "load", start, nil)
		return nil, nil
	}
	record(BackendFile, "load", start, err)
	return data, err
}

// Save fsyncs a temp file and renames it over the previous playlist.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.write(data)
	record(BackendFile, "save", start, err)
	return err
}

func (s *FileStore) write(data []byte) error {
	if err := ensureDir(s.path); err != nil {
		return err
	}

	pendingFile, err := renameio.NewPendingFile(s.path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending playlist file: %w", err)
	}
	defer func() { _ = pendingFile.Cleanup() }()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write playlist data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace playlist file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
