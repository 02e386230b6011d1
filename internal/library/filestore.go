package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/renameio/v2"
)

// FileStore keeps the library as a single JSON file. Writes go through
// renameio so a crash mid-write can never leave a partial payload on disk;
// readers either see the old sequence or the new one.
type FileStore struct {
	mu      sync.Mutex
	path    string
	seq     sequence
	watcher *fsnotify.Watcher
}

// NewFileStore loads path, substituting the default library when the file is
// missing or its payload does not parse. A missing or corrupt file is not an
// error; the child-facing grid must come up regardless.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("library: unreadable file, using default library", "path", path, "error", err)
		}
		s.seq.reset()
		return s, nil
	}

	entries, err := decodePayload(payload)
	if err != nil {
		slog.Warn("library: corrupt payload, using default library", "path", path, "error", err)
		s.seq.reset()
		return s, nil
	}

	s.seq.entries = entries
	return s, nil
}

func (s *FileStore) List() []VideoEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.list()
}

func (s *FileStore) Get(id string) (VideoEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.get(id)
}

func (s *FileStore) Add(entry VideoEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seq.add(entry); err != nil {
		return err
	}
	return s.persistLocked()
}

func (s *FileStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seq.remove(id); err != nil {
		return err
	}
	return s.persistLocked()
}

func (s *FileStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq.reset()
	return s.persistLocked()
}

// persistLocked rewrites the full sequence. Temp file, fsync, atomic rename.
func (s *FileStore) persistLocked() error {
	payload, err := encodePayload(s.seq.entries)
	if err != nil {
		return fmt.Errorf("encode library: %w", err)
	}

	pending, err := renameio.NewPendingFile(s.path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending library file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			slog.Debug("library: cleanup pending file", "error", err)
		}
	}()

	if _, err := pending.Write(payload); err != nil {
		return fmt.Errorf("write library payload: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace library file: %w", err)
	}
	return nil
}

// Watch reloads the sequence when the file changes on disk, so a parent can
// edit the JSON by hand without restarting the server. A payload that fails
// to parse leaves the current in-memory sequence untouched; unlike startup,
// a live reload must not wipe a working library over a typo.
func (s *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create library watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch library directory: %w", err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	go func() {
		defer watcher.Close()
		var last time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != s.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				// Editors fire bursts of events per save; debounce them.
				if time.Since(last) < 100*time.Millisecond {
					continue
				}
				last = time.Now()
				s.reloadFromDisk()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("library: watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (s *FileStore) reloadFromDisk() {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		slog.Warn("library: reload read failed", "path", s.path, "error", err)
		return
	}
	entries, err := decodePayload(payload)
	if err != nil {
		slog.Warn("library: reload rejected, keeping current sequence", "error", err)
		return
	}
	s.mu.Lock()
	s.seq.entries = entries
	s.mu.Unlock()
	slog.Info("library: reloaded from disk", "entries", len(entries))
}

func (s *FileStore) Close() error {
	return nil
}
