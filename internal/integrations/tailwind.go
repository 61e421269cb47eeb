package integrations

import (
	"context"
	"os"

	terrors "github.com/conneroisu/multitenancy/internal/errors"
	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/registry"
)

// DefaultTailwindExecutable is used when the host does not name one.
const DefaultTailwindExecutable = "tailwindcss"

// Target is one stylesheet compilation: a theme's Tailwind input and the
// file the build tool writes.
type Target struct {
	Theme  string `json:"theme" yaml:"theme"`
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

// Tailwind keeps raw Tailwind sources out of the asset pipeline and makes
// sure each theme's build directory exists.
type Tailwind struct{}

// Name implements Integration.
func (Tailwind) Name() string { return "tailwind" }

// Call implements Integration.
func (Tailwind) Call(ctx context.Context, app *host.App, reg *registry.ThemeRegistry) error {
	if app.Tailwind == nil {
		return nil
	}
	log := app.Log().WithComponent("integrations")

	for _, t := range reg.Themes().All() {
		sources := t.Descriptor().Join("app/assets/tailwind")
		if info, err := os.Stat(sources); err != nil || !info.IsDir() {
			continue
		}
		if app.Assets != nil && app.Assets.ExcludedPaths != nil {
			app.Assets.ExcludedPaths.Append(sources)
		}

		builds := t.Descriptor().Join("app/assets/builds", t.Name())
		if err := os.MkdirAll(builds, 0755); err != nil {
			return terrors.NewIOError(terrors.ErrCodeScanFailed, "cannot create build directory", err).
				WithTheme(t.Name()).
				WithPath(builds)
		}
		log.Debug(ctx, "Tailwind sources excluded", "theme", t.Name(), "builds", builds)
	}
	return nil
}

// CompilationTargets lists a target for every theme with
// app/assets/tailwind/<name>/application.css. It is empty when the host has
// no Tailwind tool.
func CompilationTargets(app *host.App, set *registry.Set) []Target {
	if app.Tailwind == nil {
		return nil
	}
	var targets []Target
	for _, t := range set.All() {
		input := t.Descriptor().Join("app/assets/tailwind", t.Name(), "application.css")
		if _, err := os.Stat(input); err != nil {
			continue
		}
		targets = append(targets, Target{
			Theme:  t.Name(),
			Input:  input,
			Output: t.Descriptor().Join("app/assets/builds", t.Name(), "application.css"),
		})
	}
	return targets
}

// CompileCommand returns the argv that builds target. Output is minified
// unless debug is set.
func CompileCommand(target Target, executable string, debug bool) []string {
	if executable == "" {
		executable = DefaultTailwindExecutable
	}
	args := []string{executable, "--input", target.Input, "--output", target.Output}
	if !debug {
		args = append(args, "--minify")
	}
	return args
}

// WatchCommand is CompileCommand plus --watch.
func WatchCommand(target Target, executable string, debug bool) []string {
	return append(CompileCommand(target, executable, debug), "--watch")
}
