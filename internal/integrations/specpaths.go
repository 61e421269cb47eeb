package integrations

import (
	"context"
	"os"
	"strings"

	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/registry"
	"github.com/conneroisu/multitenancy/internal/theme"
)

// DefaultSpecPath is the test directory name used when the runner has none.
const DefaultSpecPath = "spec"

// SpecPaths rewrites the test runner's target list so theme test
// directories run alongside the host's.
type SpecPaths struct{}

// Name implements Integration.
func (SpecPaths) Name() string { return "spec_paths" }

// Call implements Integration.
func (SpecPaths) Call(ctx context.Context, app *host.App, reg *registry.ThemeRegistry) error {
	if app.TestRunner == nil {
		return nil
	}
	defaultPath := app.TestRunner.DefaultPath
	if defaultPath == "" {
		defaultPath = DefaultSpecPath
	}
	app.TestRunner.FilesToRun = RewriteSpecPaths(reg.Themes(), app.TestRunner.FilesToRun, defaultPath)
	app.Log().WithComponent("integrations").Debug(ctx, "Test paths rewritten",
		"files_to_run", app.TestRunner.FilesToRun)
	return nil
}

// RewriteSpecPaths computes the runner targets.
//
// When toRun is exactly [defaultPath], every theme's existing
// <relativePath>/<defaultPath> is appended. Otherwise each entry equal to a
// theme's relative path is replaced by the existing test directories of that
// theme and of its nested themes; other entries pass through. The result is
// de-duplicated in order.
func RewriteSpecPaths(set *registry.Set, toRun []string, defaultPath string) []string {
	var out []string

	if len(toRun) == 1 && toRun[0] == defaultPath {
		out = append(out, toRun...)
		for _, t := range set.All() {
			if p, ok := specDir(t, defaultPath); ok {
				out = append(out, p)
			}
		}
		return dedupe(out)
	}

	themes := set.All()
	for _, entry := range toRun {
		parent := findByRelativePath(themes, entry)
		if parent == nil {
			out = append(out, entry)
			continue
		}
		for _, t := range append([]*theme.Theme{parent}, nestedThemes(themes, parent)...) {
			if p, ok := specDir(t, defaultPath); ok {
				out = append(out, p)
			}
		}
	}
	return dedupe(out)
}

// nestedThemes returns the themes whose name contains parent's name, such as
// alpha-v2 for alpha.
func nestedThemes(themes []*theme.Theme, parent *theme.Theme) []*theme.Theme {
	var out []*theme.Theme
	for _, t := range themes {
		if t.Name() != parent.Name() && strings.Contains(t.Name(), parent.Name()) {
			out = append(out, t)
		}
	}
	return out
}

func findByRelativePath(themes []*theme.Theme, entry string) *theme.Theme {
	entry = strings.TrimSuffix(entry, "/")
	for _, t := range themes {
		if t.RelativePath() == entry {
			return t
		}
	}
	return nil
}

func specDir(t *theme.Theme, defaultPath string) (string, bool) {
	info, err := os.Stat(t.Descriptor().Join(defaultPath))
	if err != nil || !info.IsDir() {
		return "", false
	}
	return t.Descriptor().RelativeJoin(defaultPath), true
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
