package theme

import (
	"context"
	"fmt"
	"os"
	"sync"

	terrors "github.com/conneroisu/multitenancy/internal/errors"
	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/namespace"
)

// Theme is one discovered theme. It is inert until Bootstrap wires it into a
// host application.
type Theme struct {
	desc *Descriptor

	mu           sync.Mutex
	bootstrapped bool
	namespace    *namespace.Handle
	engine       *Engine
}

// New wraps a descriptor. Nothing is touched on disk or in the host.
func New(desc *Descriptor) *Theme {
	return &Theme{desc: desc}
}

// Descriptor returns the naming data shared with the registry.
func (t *Theme) Descriptor() *Descriptor { return t.desc }

// Name returns the theme slug.
func (t *Theme) Name() string { return t.desc.Name() }

// Path returns the absolute theme directory.
func (t *Theme) Path() string { return t.desc.Path() }

// RelativePath returns the theme directory relative to the application root.
func (t *Theme) RelativePath() string { return t.desc.RelativePath() }

// MountPath returns "/" + Name().
func (t *Theme) MountPath() string { return t.desc.MountPath() }

// Namespace returns the theme namespace, nil before bootstrap.
func (t *Theme) Namespace() *namespace.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.namespace
}

// Engine returns the theme engine, nil before bootstrap.
func (t *Theme) Engine() *Engine {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine
}

// Bootstrapped reports whether Bootstrap has completed.
func (t *Theme) Bootstrapped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bootstrapped
}

// Bootstrap wires the theme into app. It runs at most once per Theme; later
// calls return nil without side effects.
//
// Only directories that exist now are registered. A resource directory
// created after bootstrap is not picked up.
func (t *Theme) Bootstrap(app *host.App) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bootstrapped {
		return nil
	}

	ctx := context.Background()
	log := app.Log().WithComponent("theme").With("theme", t.desc.Name())

	registry := app.Namespaces
	if registry == nil {
		registry = namespace.Default()
	}

	ns, err := registry.Resolve(t.desc.NamespaceName())
	if err != nil {
		return terrors.Wrap(err, terrors.ErrorTypeNaming, terrors.ErrCodeInvalidThemeName,
			"cannot resolve theme namespace").WithTheme(t.desc.Name())
	}
	if owner, ok := ns.Claim(t.desc.Path()); !ok {
		return &terrors.ThemeConflictError{
			Namespace: ns.Path(),
			Existing:  owner,
			Incoming:  t.desc.Path(),
		}
	}

	engine := newEngine(ns, t.desc.Path(), t.desc.MountPath())
	for _, kind := range ResourceKinds {
		dir := t.desc.Join(kind.Subpath())
		if isDir(dir) {
			engine.setPath(kind, dir)
		}
	}
	ns.Define(EngineConst, engine)

	for _, entry := range app.AutoloadPaths {
		dir := t.desc.Join(entry)
		if !isDir(dir) {
			continue
		}
		if app.Autoloader == nil {
			continue
		}
		if err := app.Autoloader.PushDir(dir, ns); err != nil {
			return fmt.Errorf("theme %s: autoload %s: %w", t.desc.Name(), entry, err)
		}
		log.Debug(ctx, "Registered autoload root", "dir", dir, "namespace", ns.Path())
	}

	if scripts := engine.Paths(Scripts); len(scripts) > 0 && app.Assets != nil && app.Assets.Paths != nil {
		app.Assets.Paths.Append(scripts[0])
	}

	t.namespace = ns
	t.engine = engine
	t.bootstrapped = true

	log.Info(ctx, "Theme bootstrapped", "namespace", ns.Path(), "mount_path", t.desc.MountPath())
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
