// Package namespace provides the process-wide tree of named containers that
// keeps one theme's symbols apart from another's and from the host's.
//
// A Handle is addressed by a dotted path such as "Themes.Acme". Resolving the
// same path twice yields the same *Handle, so callers may compare handles with
// ==. Handles are never removed during normal operation; Registry.Remove and
// Registry.Reset exist for tests and process resets.
package namespace

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Separator joins namespace segments.
const Separator = "."

// Handle is one container in the namespace tree.
type Handle struct {
	name   string
	path   string
	parent *Handle

	mu       sync.RWMutex
	children map[string]*Handle
	consts   map[string]interface{}
	owner    string
}

func newHandle(name string, parent *Handle) *Handle {
	path := name
	if parent != nil && parent.path != "" {
		path = parent.path + Separator + name
	}
	return &Handle{
		name:     name,
		path:     path,
		parent:   parent,
		children: make(map[string]*Handle),
		consts:   make(map[string]interface{}),
	}
}

// Name returns the last segment of the handle's path.
func (h *Handle) Name() string { return h.name }

// Path returns the full dotted path.
func (h *Handle) Path() string { return h.path }

// Parent returns the enclosing handle, or nil for a top-level handle.
func (h *Handle) Parent() *Handle {
	if h.parent == nil || h.parent.path == "" {
		return nil
	}
	return h.parent
}

// String implements fmt.Stringer.
func (h *Handle) String() string { return h.path }

// Child returns the direct child with the given name.
func (h *Handle) Child(name string) (*Handle, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.children[name]
	return c, ok
}

// Children returns the direct children sorted by name.
func (h *Handle) Children() []*Handle {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Handle, 0, len(h.children))
	for _, c := range h.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Define binds a value to a name inside the handle, replacing any previous
// binding.
func (h *Handle) Define(name string, value interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.consts[name] = value
}

// Const returns the value bound to name.
func (h *Handle) Const(name string) (interface{}, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.consts[name]
	return v, ok
}

// Claim records owner as the exclusive owner of the handle. Claiming again
// with the same owner succeeds; a different owner gets the current owner back
// with ok == false.
func (h *Handle) Claim(owner string) (current string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.owner == "" || h.owner == owner {
		h.owner = owner
		return owner, true
	}
	return h.owner, false
}

// Owner returns the current claim holder, if any.
func (h *Handle) Owner() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.owner
}

// Underscore returns the handle path in lower snake case joined by "/",
// e.g. "Themes.MyTheme" becomes "themes/my_theme".
func (h *Handle) Underscore() string {
	return UnderscorePath(h.path)
}

// Registry owns a namespace tree.
type Registry struct {
	mu   sync.Mutex
	root *Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{root: newHandle("", nil)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Resolve returns the handle for dotted, creating any missing containers.
func (r *Registry) Resolve(dotted string) (*Handle, error) {
	segments, err := split(dotted)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.root
	for _, seg := range segments {
		current.mu.Lock()
		next, ok := current.children[seg]
		if !ok {
			next = newHandle(seg, current)
			current.children[seg] = next
		}
		current.mu.Unlock()
		current = next
	}
	return current, nil
}

// Lookup returns an existing handle without creating anything.
func (r *Registry) Lookup(dotted string) (*Handle, bool) {
	segments, err := split(dotted)
	if err != nil {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.root
	for _, seg := range segments {
		next, ok := current.Child(seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Remove detaches the handle at dotted along with its descendants. Parents
// left without children are removed as well. It reports whether anything was
// removed.
func (r *Registry) Remove(dotted string) bool {
	segments, err := split(dotted)
	if err != nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := make([]*Handle, 0, len(segments)+1)
	path = append(path, r.root)
	for _, seg := range segments {
		next, ok := path[len(path)-1].Child(seg)
		if !ok {
			return false
		}
		path = append(path, next)
	}

	for i := len(path) - 1; i > 0; i-- {
		parent, child := path[i-1], path[i]
		parent.mu.Lock()
		child.mu.RLock()
		keep := i < len(path)-1 && len(child.children) > 0
		child.mu.RUnlock()
		if !keep {
			delete(parent.children, child.name)
		}
		parent.mu.Unlock()
		if keep {
			break
		}
	}
	return true
}

// Reset drops the whole tree.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root = newHandle("", nil)
}

func split(dotted string) ([]string, error) {
	if dotted == "" {
		return nil, fmt.Errorf("empty namespace name")
	}
	segments := strings.Split(dotted, Separator)
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("namespace %q has an empty segment", dotted)
		}
	}
	return segments, nil
}
