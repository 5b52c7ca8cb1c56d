// Package settings implements the persisted key/value preference store.
package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Store is a flat key->string map persisted to a YAML file. Keys are read
// lazily on first access and every Set is written to disk immediately.
type Store struct {
	path  string
	cache *valueCache
	log   logger.Logger

	// writeMu serializes read-modify-write cycles on the file.
	writeMu sync.Mutex
}

// Open returns a store backed by path. The file does not need to exist.
func Open(path string, log logger.Logger) *Store {
	return &Store{
		path:  path,
		cache: newValueCache(),
		log:   log,
	}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value for key. An absent key, a missing file or an
// unreadable file all report ok=false.
func (s *Store) Get(key string) (string, bool) {
	if v, hit := s.cache.Get(key); hit {
		return v.Value, v.Present
	}

	values, err := s.load()
	if err != nil {
		s.log.Warning(fmt.Sprintf("[settings] treating %s as unset: %v", key, err))
		values = nil
	}
	v, ok := values[key]
	s.cache.Set(key, v, ok)
	return v, ok
}

// Set stores value under key and writes the file before returning.
func (s *Store) Set(key, value string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	values, err := s.load()
	if err != nil {
		// An unparsable file is overwritten rather than blocking every write.
		s.log.Warning(fmt.Sprintf("[settings] discarding unreadable %s: %v", s.path, err))
		values = nil
	}
	if values == nil {
		values = make(map[string]string)
	}
	values[key] = value

	if err := s.save(values); err != nil {
		return err
	}
	s.cache.Set(key, value, true)
	return nil
}

// Keys returns all persisted keys, sorted.
func (s *Store) Keys() ([]string, error) {
	values, err := s.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Invalidate drops every cached value so the next Get re-reads the file.
func (s *Store) Invalidate() {
	s.cache.Clear()
}

// Watch invalidates the cache whenever the backing file changes on disk and
// calls onChange afterwards. It blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	// Editors and atomic writers replace the file, so watch the directory.
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	name := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			s.Invalidate()
			if onChange != nil {
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warning(fmt.Sprintf("[settings] watch error: %v", err))
		}
	}
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read file %s: %w", s.path, err)
	}
	var values map[string]string
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse YAML from %s: %w", s.path, err)
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", s.path, err)
	}
	return nil
}
