package importmap

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/conneroisu/multitenancy/internal/theme"
)

// Scope is the import map of one theme. Rebuilds draw into a fresh Map and
// publish it with a single atomic swap; readers never observe a partial map.
type Scope struct {
	theme     *theme.Theme
	pinFiles  []string
	sweepers  []string
	hostPaths func() []string

	current atomic.Pointer[Map]
	mu      sync.Mutex
}

func newScope(t *theme.Theme, pinFile string, hostPaths func() []string) *Scope {
	s := &Scope{
		theme:     t,
		pinFiles:  []string{t.Descriptor().Join(pinFile)},
		sweepers:  []string{},
		hostPaths: hostPaths,
	}
	if scripts := t.Engine().Paths(theme.Scripts); len(scripts) > 0 {
		s.sweepers = append(s.sweepers, scripts[0])
	}
	s.current.Store(NewMap())
	return s
}

// Theme returns the owning theme.
func (s *Scope) Theme() *theme.Theme { return s.theme }

// Map returns the currently published map.
func (s *Scope) Map() *Map { return s.current.Load() }

// PinFiles returns the theme's own pin files.
func (s *Scope) PinFiles() []string {
	out := make([]string, len(s.pinFiles))
	copy(out, s.pinFiles)
	return out
}

// WatchedDirectories returns the script directories whose changes trigger a
// rebuild. It is empty for a theme without app/javascript.
func (s *Scope) WatchedDirectories() []string {
	out := make([]string, len(s.sweepers))
	copy(out, s.sweepers)
	return out
}

// Rebuild draws the host pin files in order, then the theme's own, and
// publishes the result. On error the previous map stays published.
func (s *Scope) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := NewMap()
	for _, path := range s.hostPaths() {
		if err := m.Draw(path); err != nil {
			return fmt.Errorf("theme %s: host pins: %w", s.theme.Name(), err)
		}
	}
	for _, path := range s.pinFiles {
		if err := m.Draw(path); err != nil {
			return fmt.Errorf("theme %s: theme pins: %w", s.theme.Name(), err)
		}
	}
	s.current.Store(m)
	return nil
}

// watchDirs is the directory argument handed to the host file watcher.
func (s *Scope) watchDirs() map[string][]string {
	dirs := make(map[string][]string, len(s.sweepers))
	for _, d := range s.sweepers {
		dirs[d] = []string{"js"}
	}
	return dirs
}
