// Package store keeps the two ordered screenshot queues: main (new
// question) and extra (error/debug captures). Entries are file paths; a
// path is only valid while the file exists, so every read filters out
// entries whose backing file is gone.
package store

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Queue names the two independent capture sequences.
type Queue string

const (
	QueueMain  Queue = "main"
	QueueExtra Queue = "extra"
)

type Store struct {
	mu    sync.Mutex
	dir   string
	main  []string
	extra []string
}

// New creates a store writing captures under dir. The directory is created
// lazily on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Add appends an existing image file to a queue.
func (s *Store) Add(q Queue, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q == QueueExtra {
		s.extra = append(s.extra, path)
		return
	}
	s.main = append(s.main, path)
}

// SaveCapture writes PNG bytes to a new file in the store directory and
// appends it to the queue.
func (s *Store) SaveCapture(q Queue, png []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshot dir: %v", err)
	}
	name := fmt.Sprintf("%s_%d.png", q, time.Now().UnixNano())
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %v", err)
	}
	s.Add(q, path)
	return path, nil
}

// List returns the live entries of a queue, pruning paths whose files have
// been removed from disk since capture.
func (s *Store) List(q Queue) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := &s.main
	if q == QueueExtra {
		src = &s.extra
	}
	live := (*src)[:0]
	for _, p := range *src {
		if _, err := os.Stat(p); err != nil {
			log.Printf("Dropping missing screenshot %s", p)
			continue
		}
		live = append(live, p)
	}
	*src = live
	return append([]string(nil), live...)
}

// RemoveLast drops the most recent entry of a queue and deletes its file.
func (s *Store) RemoveLast(q Queue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := &s.main
	if q == QueueExtra {
		src = &s.extra
	}
	if n := len(*src); n > 0 {
		s.removeFile((*src)[n-1])
		*src = (*src)[:n-1]
	}
}

// Clear empties a queue and deletes its files.
func (s *Store) Clear(q Queue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q == QueueExtra {
		for _, p := range s.extra {
			s.removeFile(p)
		}
		s.extra = nil
		return
	}
	for _, p := range s.main {
		s.removeFile(p)
	}
	s.main = nil
}

// ReadBytes loads one image.
func (s *Store) ReadBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read screenshot %s: %v", path, err)
	}
	return data, nil
}

// removeFile deletes only captures the store wrote itself; externally added
// paths are dropped from the queue but left on disk.
func (s *Store) removeFile(p string) {
	rel, err := filepath.Rel(s.dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to remove screenshot %s: %v", p, err)
	}
}
