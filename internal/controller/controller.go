// Package controller holds the behavior a theme's base controller composes
// in: theme-first view paths, the "application" layout, and template lookup
// prefixes stripped of the theme namespace.
package controller

import (
	"os"
	"path/filepath"
	"strings"

	terrors "github.com/conneroisu/multitenancy/internal/errors"
	"github.com/conneroisu/multitenancy/internal/namespace"
	"github.com/conneroisu/multitenancy/internal/theme"
)

// DefaultLayout is the layout every theme controller renders with.
const DefaultLayout = "application"

// DefaultExtensions are tried, in order, when resolving a template name.
var DefaultExtensions = []string{".html.tmpl", ".html", ".tmpl"}

// Base is the per-theme controller state. Build it once at dispatch setup
// with Include.
type Base struct {
	theme     *theme.Theme
	viewPaths []string
	layout    string
	prefix    string
}

// Include binds a controller to a bootstrapped theme. The theme's view root
// is placed ahead of hostViewPaths, so theme templates win.
func Include(t *theme.Theme, hostViewPaths []string) (*Base, error) {
	engine := t.Engine()
	if engine == nil {
		return nil, terrors.ErrNotBootstrapped(t.Name())
	}

	views := engine.Paths(theme.Views)
	paths := make([]string, 0, len(hostViewPaths)+len(views))
	paths = append(paths, views...)
	for _, p := range hostViewPaths {
		if len(views) > 0 && filepath.Clean(p) == views[0] {
			continue
		}
		paths = append(paths, p)
	}

	return &Base{
		theme:     t,
		viewPaths: paths,
		layout:    DefaultLayout,
		prefix:    namespace.UnderscorePath(engine.Namespace().Path()) + "/",
	}, nil
}

// Theme returns the owning theme.
func (b *Base) Theme() *theme.Theme { return b.theme }

// ViewPaths returns the search path, theme first.
func (b *Base) ViewPaths() []string {
	out := make([]string, len(b.viewPaths))
	copy(out, b.viewPaths)
	return out
}

// Layout returns the layout name.
func (b *Base) Layout() string { return b.layout }

// Prefixes strips the theme namespace prefix, for example "themes/acme/",
// from each inherited prefix and drops the ones left empty.
func (b *Base) Prefixes(inherited []string) []string {
	out := make([]string, 0, len(inherited))
	for _, p := range inherited {
		p = strings.TrimPrefix(p, b.prefix)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Lookup finds the template name under the first matching prefix, trying the
// view paths in order for each prefix. Extensions default to
// DefaultExtensions.
func (b *Base) Lookup(name string, prefixes []string, exts ...string) (string, bool) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, prefix := range prefixes {
		for _, root := range b.viewPaths {
			for _, ext := range exts {
				candidate := filepath.Join(root, filepath.FromSlash(prefix), name+ext)
				if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
					return candidate, true
				}
			}
		}
	}
	return "", false
}

// LayoutTemplate resolves the layout through the same view paths.
func (b *Base) LayoutTemplate(exts ...string) (string, bool) {
	return b.Lookup(b.layout, []string{"layouts"}, exts...)
}

// Path converts a qualified controller type name to its template prefix.
//
//	Themes.Acme.HomeController    -> themes/acme/home
//	Themes::Acme::HomeController  -> themes/acme/home
func Path(typeName string) string {
	return strings.TrimSuffix(namespace.UnderscorePath(typeName), "_controller")
}

// InheritedPrefixes returns the lookup prefixes for a controller and its
// ancestors, most specific first, before namespace stripping.
func InheritedPrefixes(typeNames ...string) []string {
	out := make([]string, 0, len(typeNames))
	for _, name := range typeNames {
		out = append(out, Path(name))
	}
	return out
}
