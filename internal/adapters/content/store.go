package content

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	domain "breakthebeat/internal/domain/content"
)

// Document file names inside a content directory.
const (
	NavbarFile   = "navbar.json"
	FooterFile   = "footer.json"
	ProjectsFile = "projects.json"
	ServicesFile = "services.json"
)

// DefaultDebounce coalesces bursts of editor writes into one reload.
const DefaultDebounce = 250 * time.Millisecond

//go:embed data/*.json
var embedded embed.FS

// Embedded returns the content documents compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory exists
	}
	return sub
}

// Store serves the current Site and swaps it atomically on reload.
type Store struct {
	fsys fs.FS

	mu   sync.RWMutex
	site domain.Site
}

// NewStore creates a store reading documents from fsys. Call Load before Site.
func NewStore(fsys fs.FS) *Store {
	return &Store{fsys: fsys}
}

// Site returns the most recently loaded content.
// INVARIANT: callers must treat the returned slices as read-only
func (s *Store) Site() domain.Site {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.site
}

// Load reads and validates all four documents concurrently.
// PRE: fsys contains navbar.json, footer.json, projects.json, services.json
// POST: On success the new Site replaces the old one; on error the old Site is kept
func (s *Store) Load(ctx context.Context) error {
	var site domain.Site
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return s.decode(NavbarFile, &site.Navbar) })
	g.Go(func() error { return s.decode(FooterFile, &site.Footer) })
	g.Go(func() error { return s.decode(ProjectsFile, &site.Projects) })
	g.Go(func() error { return s.decode(ServicesFile, &site.Services) })
	if err := g.Wait(); err != nil {
		return err
	}
	if err := site.Validate(); err != nil {
		return fmt.Errorf("content invalid: %w", err)
	}

	s.mu.Lock()
	s.site = site
	s.mu.Unlock()

	slog.Info("content_loaded", "projects", len(site.Projects), "services", len(site.Services.Items))
	return nil
}

func (s *Store) decode(name string, v any) error {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Watch reloads the store whenever a JSON document in dir changes.
// It blocks until ctx is cancelled. A failed reload is logged and the previous content kept.
// PRE: dir is the directory backing fsys
// POST: Returns nil on cancellation, or an error if the watcher could not start
func (s *Store) Watch(ctx context.Context, dir string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("content watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	slog.Info("content_watch_started", "dir", dir)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".json") {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			timer.Reset(debounce)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("content_watch_error", "error", werr)
		case <-timer.C:
			if err := s.Load(ctx); err != nil {
				slog.Error("content_reload_failed", "error", err)
			}
		}
	}
}
