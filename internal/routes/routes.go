// Package routes mounts theme engines into a chi router and reports the
// resulting mount table.
package routes

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	terrors "github.com/conneroisu/multitenancy/internal/errors"
	"github.com/conneroisu/multitenancy/internal/registry"
	"github.com/conneroisu/multitenancy/internal/theme"
)

// HandlerFunc returns the handler serving a theme, or nil to leave the theme
// unmounted.
type HandlerFunc func(t *theme.Theme) http.Handler

// Entry is one row of the mount table.
type Entry struct {
	Pattern string   `json:"pattern" yaml:"pattern"`
	Methods []string `json:"methods" yaml:"methods"`
}

// Mount mounts the handler of every theme in set at the theme's engine mount
// path. Every theme must be bootstrapped. It returns the mount paths used, in
// set order.
func Mount(r chi.Router, set *registry.Set, handlerFor HandlerFunc) ([]string, error) {
	var mounted []string
	err := set.Each(func(t *theme.Theme) error {
		engine := t.Engine()
		if engine == nil {
			return terrors.ErrNotBootstrapped(t.Name())
		}
		h := handlerFor(t)
		if h == nil {
			return nil
		}
		r.Mount(engine.MountPath(), h)
		mounted = append(mounted, engine.MountPath())
		return nil
	})
	return mounted, err
}

// Table walks r and groups its routes by pattern. Entries are sorted by
// pattern, methods alphabetically.
func Table(r chi.Routes) ([]Entry, error) {
	byPattern := make(map[string]map[string]struct{})
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		methods, ok := byPattern[route]
		if !ok {
			methods = make(map[string]struct{})
			byPattern[route] = methods
		}
		methods[strings.ToUpper(method)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(byPattern))
	for pattern, methods := range byPattern {
		e := Entry{Pattern: pattern}
		for m := range methods {
			e.Methods = append(e.Methods, m)
		}
		sort.Strings(e.Methods)
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Pattern < entries[j].Pattern })
	return entries, nil
}

type themeInfo struct {
	Name      string              `json:"name"`
	Namespace string              `json:"namespace"`
	MountPath string              `json:"mount_path"`
	Paths     map[string][]string `json:"paths"`
}

// InfoHandler serves a JSON description of t at GET /. The CLI mounts it for
// every theme to show the mount table.
func InfoHandler(t *theme.Theme) http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		info := themeInfo{
			Name:      t.Name(),
			MountPath: t.MountPath(),
			Paths:     make(map[string][]string),
		}
		if ns := t.Namespace(); ns != nil {
			info.Namespace = ns.Path()
		}
		if engine := t.Engine(); engine != nil {
			for kind, paths := range engine.PathTable() {
				info.Paths[string(kind)] = paths
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(info); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return r
}
