package host

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/conneroisu/multitenancy/internal/namespace"
)

// Autoloader is the host's code loader. Directories pushed under a namespace
// define symbols inside that namespace instead of the host's root.
type Autoloader interface {
	PushDir(dir string, ns *namespace.Handle) error
}

// Root is one directory registered with an Autoloader.
type Root struct {
	Dir       string
	Namespace *namespace.Handle
}

// MemoryAutoloader records autoload roots in memory. It is the loader used by
// the CLI and by tests; embedding hosts pass their own.
type MemoryAutoloader struct {
	mu    sync.RWMutex
	roots []Root
}

// NewAutoloader creates an empty in-memory autoloader.
func NewAutoloader() *MemoryAutoloader {
	return &MemoryAutoloader{}
}

// PushDir registers dir under ns. Pushing the same directory under the same
// namespace again is a no-op; under a different namespace it is an error.
func (a *MemoryAutoloader) PushDir(dir string, ns *namespace.Handle) error {
	if ns == nil {
		return fmt.Errorf("autoload %s: nil namespace", dir)
	}
	clean := filepath.Clean(dir)

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.roots {
		if r.Dir != clean {
			continue
		}
		if r.Namespace == ns {
			return nil
		}
		return fmt.Errorf("autoload %s: already managed under %s", clean, r.Namespace.Path())
	}
	a.roots = append(a.roots, Root{Dir: clean, Namespace: ns})
	return nil
}

// Roots returns the registered roots in push order.
func (a *MemoryAutoloader) Roots() []Root {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Root, len(a.roots))
	copy(out, a.roots)
	return out
}

// NamespaceFor returns the namespace that owns file, picking the deepest
// registered root that contains it.
func (a *MemoryAutoloader) NamespaceFor(file string) (*namespace.Handle, bool) {
	clean := filepath.Clean(file)

	a.mu.RLock()
	defer a.mu.RUnlock()
	var best Root
	for _, r := range a.roots {
		if clean != r.Dir && !strings.HasPrefix(clean, r.Dir+string(filepath.Separator)) {
			continue
		}
		if len(r.Dir) > len(best.Dir) {
			best = r
		}
	}
	return best.Namespace, best.Namespace != nil
}
