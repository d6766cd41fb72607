package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Store owns the persisted settings file and fans out change notifications.
// Reads are cheap snapshots; writes go through Update which validates,
// persists, then notifies subscribers (adapter rebuilds hang off those).
type Store struct {
	mu      sync.Mutex
	path    string
	cfg     Config
	subs    []func(Config)
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStore loads credentials from the environment and settings from the
// JSON file at path. A missing or unreadable file yields defaults; invalid
// fields fall back silently.
func NewStore(path string) (*Store, error) {
	cfg := loadEnv()
	cfg.Settings = DefaultSettings()

	if data, err := os.ReadFile(path); err == nil {
		var s Settings
		if err := json.Unmarshal(data, &s); err != nil {
			log.Printf("Settings file %s is not valid JSON, using defaults: %v", path, err)
		} else {
			cfg.Settings = s
		}
	}
	normalize(&cfg.Settings)

	return &Store{path: path, cfg: cfg, done: make(chan struct{})}, nil
}

// Load returns a snapshot of the current configuration.
func (s *Store) Load() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Update applies a mutation to the settings, re-validates, persists, and
// notifies subscribers. The returned Config is the post-validation state.
func (s *Store) Update(apply func(*Settings)) (Config, error) {
	s.mu.Lock()
	next := s.cfg
	apply(&next.Settings)
	normalize(&next.Settings)
	s.cfg = next
	subs := append([]func(Config){}, s.subs...)
	s.mu.Unlock()

	if err := s.persist(next.Settings); err != nil {
		return next, err
	}
	for _, fn := range subs {
		fn(next)
	}
	return next, nil
}

// OnChange registers a subscriber invoked after every successful Update and
// after external edits picked up by Watch. Subscribers run on the caller's
// goroutine for Update and on the watcher goroutine for file edits.
func (s *Store) OnChange(fn func(Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) persist(set Settings) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0644)
}

// Watch starts picking up external edits to the settings file. Edited
// settings go through the same validate-and-notify path as Update.
func (s *Store) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace files, which drops a file watch.
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return err
	}
	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				s.reloadFromDisk()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("Settings watcher error: %v", err)
			case <-s.done:
				return
			}
		}
	}()
	return nil
}

func (s *Store) reloadFromDisk() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var set Settings
	if err := json.Unmarshal(data, &set); err != nil {
		log.Printf("Ignoring invalid settings edit: %v", err)
		return
	}
	normalize(&set)

	s.mu.Lock()
	if s.cfg.Settings == set {
		s.mu.Unlock()
		return
	}
	s.cfg.Settings = set
	cfg := s.cfg
	subs := append([]func(Config){}, s.subs...)
	s.mu.Unlock()

	log.Printf("Settings reloaded from %s", s.path)
	for _, fn := range subs {
		fn(cfg)
	}
}

// Close stops the watcher, if running.
func (s *Store) Close() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		close(s.done)
		w.Close()
	}
}
