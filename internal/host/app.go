// Package host models the parts of a host application the theming core reads
// and writes: its root directory, code loader, shared asset and import-map
// path lists, reloaders, and the optional tool integrations.
//
// Optional collaborators are pointer fields. A nil field means the host does
// not provide that tool and the matching integration is skipped.
package host

import (
	"path/filepath"

	"github.com/conneroisu/multitenancy/internal/logging"
	"github.com/conneroisu/multitenancy/internal/namespace"
)

// DefaultThemesDir is the themes root relative to the application root.
const DefaultThemesDir = "themes"

// DefaultAutoloadPaths are probed inside every theme and pushed to the
// autoloader under the theme's namespace.
var DefaultAutoloadPaths = []string{
	"app/controllers",
	"app/channels",
	"app/helpers",
	"app/services",
	"app/structs",
	"app/models",
	"app/mailers",
	"lib",
}

// Assets is the host asset pipeline configuration.
type Assets struct {
	Paths         *PathList
	ExcludedPaths *PathList
}

// ImportMap is the host's shared import-map configuration.
type ImportMap struct {
	Paths *PathList
}

// Fixtures is the host's fixture/factory loader configuration.
type Fixtures struct {
	DefinitionPaths *PathList
}

// TestRunner is the subset of the host test runner's state that theme spec
// paths are merged into.
type TestRunner struct {
	FilesToRun  []string
	DefaultPath string
}

// Tailwind describes an available stylesheet build tool.
type Tailwind struct {
	Executable string
}

// App is the host application.
type App struct {
	// Root is the absolute application root.
	Root string
	// ThemesDir overrides the themes root; relative values are joined to Root.
	ThemesDir string

	AutoloadPaths []string
	Namespaces    *namespace.Registry
	Autoloader    Autoloader
	Assets        *Assets

	ImportMap  *ImportMap
	Fixtures   *Fixtures
	TestRunner *TestRunner
	Tailwind   *Tailwind

	// CacheClasses is true when code is frozen (production); reloaders are
	// only registered when it is false.
	CacheClasses bool
	FileWatcher  FileWatcherFactory
	Reloaders    *Reloaders

	Logger logging.Logger
}

// NewApp creates an App rooted at root with the default autoload paths, an
// in-memory autoloader and the process-wide namespace registry.
func NewApp(root string) *App {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	paths := make([]string, len(DefaultAutoloadPaths))
	copy(paths, DefaultAutoloadPaths)

	return &App{
		Root:          root,
		AutoloadPaths: paths,
		Namespaces:    namespace.Default(),
		Autoloader:    NewAutoloader(),
		Assets: &Assets{
			Paths:         NewPathList(),
			ExcludedPaths: NewPathList(),
		},
		CacheClasses: true,
		Reloaders:    NewReloaders(),
	}
}

// ThemesRoot returns the absolute themes root directory.
func (a *App) ThemesRoot() string {
	dir := a.ThemesDir
	if dir == "" {
		dir = DefaultThemesDir
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(a.Root, dir)
}

// Log returns the app logger, or a no-op logger when none is set.
func (a *App) Log() logging.Logger {
	if a.Logger == nil {
		return logging.NewNop()
	}
	return a.Logger
}
