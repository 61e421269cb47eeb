package theme

import (
	"sync/atomic"

	"github.com/conneroisu/multitenancy/internal/namespace"
)

// ResourceKind names a class of theme resources with its own search path.
type ResourceKind string

const (
	Views   ResourceKind = "views"
	Assets  ResourceKind = "assets"
	Locales ResourceKind = "locales"
	Scripts ResourceKind = "scripts"
)

// ResourceKinds lists every kind in bootstrap order.
var ResourceKinds = []ResourceKind{Views, Assets, Locales, Scripts}

// Subpath returns the conventional directory for the kind inside a theme.
func (k ResourceKind) Subpath() string {
	switch k {
	case Views:
		return "app/views"
	case Assets:
		return "app/assets"
	case Locales:
		return "config/locales"
	case Scripts:
		return "app/javascript"
	default:
		return ""
	}
}

// EngineConst is the name an engine is bound to inside its namespace.
const EngineConst = "Engine"

var engineSeq atomic.Uint64

// Engine is the mountable unit of one bootstrapped theme. Its path table is
// filled during bootstrap and never changes afterwards.
type Engine struct {
	id        uint64
	namespace *namespace.Handle
	root      string
	mountPath string
	paths     map[ResourceKind][]string
}

func newEngine(ns *namespace.Handle, root, mountPath string) *Engine {
	return &Engine{
		id:        engineSeq.Add(1),
		namespace: ns,
		root:      root,
		mountPath: mountPath,
		paths:     make(map[ResourceKind][]string, len(ResourceKinds)),
	}
}

// ID returns the engine identity. No two engines share an ID.
func (e *Engine) ID() uint64 { return e.id }

// Namespace returns the handle the engine is bound to.
func (e *Engine) Namespace() *namespace.Handle { return e.namespace }

// Root returns the theme directory.
func (e *Engine) Root() string { return e.root }

// MountPath returns where the engine is mounted in the host router.
func (e *Engine) MountPath() string { return e.mountPath }

// Paths returns the search path for kind, most specific first.
func (e *Engine) Paths(kind ResourceKind) []string {
	p := e.paths[kind]
	out := make([]string, len(p))
	copy(out, p)
	return out
}

// HasPath reports whether the theme provides a directory for kind.
func (e *Engine) HasPath(kind ResourceKind) bool {
	return len(e.paths[kind]) > 0
}

// PathTable returns a copy of the whole resource-path table.
func (e *Engine) PathTable() map[ResourceKind][]string {
	out := make(map[ResourceKind][]string, len(e.paths))
	for k := range e.paths {
		out[k] = e.Paths(k)
	}
	return out
}

func (e *Engine) setPath(kind ResourceKind, dir string) {
	e.paths[kind] = []string{dir}
}
