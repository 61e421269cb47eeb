// Package registry discovers themes under the host themes root and keeps the
// result memoized until it is explicitly reset.
package registry

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	terrors "github.com/conneroisu/multitenancy/internal/errors"
	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/logging"
	"github.com/conneroisu/multitenancy/internal/theme"
)

// ThemeRegistry manages all discovered themes
type ThemeRegistry struct {
	app      *host.App
	logger   logging.Logger
	mutex    sync.RWMutex
	set      *Set
	errors   *terrors.ErrorCollector
	watchers []chan ThemeEvent
}

// ThemeEvent represents a change in the theme registry
type ThemeEvent struct {
	Type      EventType
	Theme     *theme.Theme
	Timestamp time.Time
}

// EventType represents the type of theme event
type EventType int

const (
	EventTypeDiscovered EventType = iota
	EventTypeReset
)

// String returns the string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventTypeDiscovered:
		return "discovered"
	case EventTypeReset:
		return "reset"
	default:
		return "unknown"
	}
}

// New creates a registry scanning app.ThemesRoot().
func New(app *host.App, logger logging.Logger) *ThemeRegistry {
	if logger == nil {
		logger = app.Log()
	}
	return &ThemeRegistry{
		app:      app,
		logger:   logger.WithComponent("registry"),
		errors:   terrors.NewErrorCollector(),
		watchers: make([]chan ThemeEvent, 0),
	}
}

// App returns the host application the registry scans for.
func (r *ThemeRegistry) App() *host.App { return r.app }

// Themes returns the discovered themes. The first call scans disk; later
// calls return the identical *Set until Reset is called.
func (r *ThemeRegistry) Themes() *Set {
	r.mutex.RLock()
	set := r.set
	r.mutex.RUnlock()
	if set != nil {
		return set
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.set != nil {
		return r.set
	}

	r.set = r.scan()
	for _, t := range r.set.themes {
		r.notify(ThemeEvent{Type: EventTypeDiscovered, Theme: t, Timestamp: time.Now()})
	}
	return r.set
}

// Find returns the discovered theme with the given slug.
func (r *ThemeRegistry) Find(name string) (*theme.Theme, error) {
	if t, ok := r.Themes().Find(name); ok {
		return t, nil
	}
	return nil, terrors.ErrThemeNotFound(name)
}

// Reset drops the cached set. Themes handed out earlier keep their state; the
// next Themes call builds new ones from disk.
func (r *ThemeRegistry) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.set = nil
	r.errors.Clear()
	r.notify(ThemeEvent{Type: EventTypeReset, Timestamp: time.Now()})
}

// Errors returns the entries skipped by the most recent scan.
func (r *ThemeRegistry) Errors() []terrors.DiscoveryError {
	return r.errors.GetErrors()
}

// Watch returns a channel that receives registry events
func (r *ThemeRegistry) Watch() <-chan ThemeEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan ThemeEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *ThemeRegistry) UnWatch(ch <-chan ThemeEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// notify must be called with the write lock held.
func (r *ThemeRegistry) notify(event ThemeEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

func (r *ThemeRegistry) scan() *Set {
	ctx := context.Background()
	root := r.app.ThemesRoot()
	perf := logging.StartOperation(r.logger, "theme_scan")

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug(ctx, "Themes root does not exist", "root", root)
		} else {
			r.errors.Add(root, err, terrors.ErrorSeverityError)
			r.logger.Error(ctx, err, "Failed to read themes root", "root", root)
		}
		perf.End(ctx)
		return newSet(nil)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	themes := make([]*theme.Theme, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())

		// Stat follows symlinked theme directories.
		info, err := os.Stat(path)
		if err != nil {
			r.errors.Add(path, err, terrors.ErrorSeverityWarning)
			r.logger.Warn(ctx, err, "Skipping unreadable themes entry", "path", path)
			continue
		}
		if !info.IsDir() {
			continue
		}

		desc, err := theme.FromDirectory(path, r.app.Root)
		if err != nil {
			r.errors.Add(path, err, terrors.ErrorSeverityWarning)
			r.logger.Warn(ctx, err, "Skipping theme directory", "path", path)
			continue
		}
		themes = append(themes, theme.New(desc))
	}

	perf.End(ctx)
	r.logger.Info(ctx, "Themes discovered", "root", root, "count", len(themes))
	return newSet(themes)
}
