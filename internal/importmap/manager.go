package importmap

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	terrors "github.com/conneroisu/multitenancy/internal/errors"
	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/logging"
	"github.com/conneroisu/multitenancy/internal/registry"
	"github.com/conneroisu/multitenancy/internal/theme"
)

// DefaultPinFile is the conventional pin file inside a theme.
const DefaultPinFile = "config/importmap.yml"

// Manager owns the per-theme scopes. Scopes live here rather than on the
// shared host configuration.
type Manager struct {
	app      *host.App
	registry *registry.ThemeRegistry
	pinFile  string
	logger   logging.Logger

	mu     sync.RWMutex
	scopes map[*theme.Theme]*Scope
	order  []*Scope
	done   bool
}

// NewManager creates a manager drawing each theme's pinFile, relative to the
// theme directory. An empty pinFile uses DefaultPinFile.
func NewManager(app *host.App, reg *registry.ThemeRegistry, pinFile string) *Manager {
	if pinFile == "" {
		pinFile = DefaultPinFile
	}
	return &Manager{
		app:      app,
		registry: reg,
		pinFile:  pinFile,
		logger:   app.Log().WithComponent("importmap"),
		scopes:   make(map[*theme.Theme]*Scope),
	}
}

// BootstrapAll builds one scope per theme, registers development reloaders,
// then removes every themes-root path from the host's shared pin list. It
// runs once; later calls return nil. Every theme must already be
// bootstrapped.
//
// Scopes draw only the host's own pin files: paths under the themes root are
// skipped both here and on reload, so one theme never sees another's pins.
// Reloaders are registered only after every scope has been built, so a
// failed call leaves nothing behind and may be retried.
func (m *Manager) BootstrapAll(ctx context.Context) error {
	if m.app.ImportMap == nil || m.app.ImportMap.Paths == nil {
		m.logger.Debug(ctx, "Host has no import map, skipping")
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return nil
	}

	var built []*Scope
	for _, t := range m.registry.Themes().All() {
		if !t.Bootstrapped() {
			return terrors.ErrNotBootstrapped(t.Name())
		}

		scope := newScope(t, m.pinFile, m.hostDrawPaths)
		if err := scope.Rebuild(); err != nil {
			return err
		}
		built = append(built, scope)
		m.logger.Debug(ctx, "Import map scope built",
			"theme", t.Name(), "pins", scope.Map().Len(), "watched_dirs", len(scope.sweepers))
	}

	if !m.app.CacheClasses {
		if err := m.registerReloaders(built); err != nil {
			return err
		}
	}

	removed := m.app.ImportMap.Paths.DeleteIf(m.underThemesRoot)

	for _, s := range built {
		m.scopes[s.theme] = s
	}
	m.order = built
	m.done = true

	m.logger.Info(ctx, "Import maps bootstrapped", "themes", len(built), "host_paths_removed", len(removed))
	return nil
}

// hostDrawPaths is the host part of every scope's draw sequence: the shared
// pin list without anything under the themes root.
func (m *Manager) hostDrawPaths() []string {
	all := m.app.ImportMap.Paths.All()
	out := make([]string, 0, len(all))
	for _, p := range all {
		if !m.underThemesRoot(p) {
			out = append(out, p)
		}
	}
	return out
}

// registerReloaders creates one updater per scope and adds them to the host
// only once all were created. Updaters already created are closed on error.
func (m *Manager) registerReloaders(scopes []*Scope) error {
	if m.app.FileWatcher == nil || m.app.Reloaders == nil {
		return nil
	}
	updaters := make([]host.Updater, 0, len(scopes))
	for _, scope := range scopes {
		updater, err := m.app.FileWatcher(scope.PinFiles(), scope.watchDirs(), scope.Rebuild)
		if err != nil {
			for _, u := range updaters {
				if c, ok := u.(io.Closer); ok {
					_ = c.Close()
				}
			}
			return fmt.Errorf("theme %s: import map watcher: %w", scope.theme.Name(), err)
		}
		updaters = append(updaters, updater)
	}
	for _, u := range updaters {
		m.app.Reloaders.Add(u)
	}
	return nil
}

func (m *Manager) underThemesRoot(path string) bool {
	root := m.app.ThemesRoot()
	p := path
	if !filepath.IsAbs(p) {
		p = filepath.Join(m.app.Root, p)
	}
	return strings.HasPrefix(filepath.Clean(p), root+string(filepath.Separator))
}

// ScopeFor returns the scope of t.
func (m *Manager) ScopeFor(t *theme.Theme) (*Scope, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scopes[t]
	return s, ok
}

// ScopeByName returns the scope of the theme with the given slug.
func (m *Manager) ScopeByName(name string) (*Scope, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.order {
		if s.theme.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Scopes returns every scope in theme order.
func (m *Manager) Scopes() []*Scope {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Scope, len(m.order))
	copy(out, m.order)
	return out
}
