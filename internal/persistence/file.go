package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore mirrors browser local storage on disk: the whole origin lives in
// one JSON object, rewritten atomically on every mutation.
type FileStore struct {
	path    string
	logger  *zap.Logger
	mu      sync.RWMutex
	entries map[string]string
}

// NewFileStore loads path, creating its directory when needed. An unreadable
// document is moved aside to <path>.corrupt and the store starts empty.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	fs := &FileStore{path: path, logger: logger, entries: make(map[string]string)}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (f *FileStore) load() error {
	content, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read storage file: %w", err)
	}
	if len(content) == 0 {
		return nil
	}

	var entries map[string]string
	if err := json.Unmarshal(content, &entries); err != nil {
		f.logger.Warn("storage file unreadable; starting empty",
			zap.String("path", f.path), zap.Error(err))
		if err := os.Rename(f.path, f.path+".corrupt"); err != nil {
			return fmt.Errorf("move corrupt storage file: %w", err)
		}
		return nil
	}
	if entries != nil {
		f.entries = entries
	}
	return nil
}

func (f *FileStore) Get(_ context.Context, key string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	val, ok := f.entries[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.entries[key]
	f.entries[key] = value
	if err := f.flush(); err != nil {
		if existed {
			f.entries[key] = prev
		} else {
			delete(f.entries, key)
		}
		return err
	}
	return nil
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.entries[key]
	if !existed {
		return nil
	}
	delete(f.entries, key)
	if err := f.flush(); err != nil {
		f.entries[key] = prev
		return err
	}
	return nil
}

// flush must be called with f.mu held.
func (f *FileStore) flush() error {
	payload, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}
