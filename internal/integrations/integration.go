// Package integrations wires discovered themes into the host tools: the code
// loader and engines, fixtures, the test runner, import maps and the
// stylesheet build tool. Each integration probes for its host collaborator
// and does nothing when the host does not provide it.
package integrations

import (
	"context"
	"fmt"

	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/logging"
	"github.com/conneroisu/multitenancy/internal/registry"
	"github.com/conneroisu/multitenancy/internal/theme"
)

// Integration is one lifecycle step run against every discovered theme.
type Integration interface {
	// Name returns the unique name of the integration
	Name() string

	// Call applies the integration to app
	Call(ctx context.Context, app *host.App, reg *registry.ThemeRegistry) error
}

// Func adapts a function to the Integration interface.
type Func struct {
	name string
	fn   func(ctx context.Context, app *host.App, reg *registry.ThemeRegistry) error
}

// NewFunc creates a named Integration from fn.
func NewFunc(name string, fn func(ctx context.Context, app *host.App, reg *registry.ThemeRegistry) error) *Func {
	return &Func{name: name, fn: fn}
}

// Name implements Integration.
func (f *Func) Name() string { return f.name }

// Call implements Integration.
func (f *Func) Call(ctx context.Context, app *host.App, reg *registry.ThemeRegistry) error {
	return f.fn(ctx, app, reg)
}

// Bootstrap bootstraps every discovered theme into the host. A naming
// conflict aborts the run.
type Bootstrap struct{}

// Name implements Integration.
func (Bootstrap) Name() string { return "bootstrap" }

// Call implements Integration.
func (Bootstrap) Call(ctx context.Context, app *host.App, reg *registry.ThemeRegistry) error {
	log := app.Log().WithComponent("integrations")
	perf := logging.StartOperation(log, "bootstrap_themes")

	err := reg.Themes().Each(func(t *theme.Theme) error {
		if err := t.Bootstrap(app); err != nil {
			return fmt.Errorf("bootstrap theme %s: %w", t.Name(), err)
		}
		return nil
	})
	if err != nil {
		perf.EndWithError(ctx, err)
		return err
	}
	perf.End(ctx)
	return nil
}

// Fixtures registers each theme's spec/factories directory with the host
// fixture loader.
type Fixtures struct{}

// Name implements Integration.
func (Fixtures) Name() string { return "fixtures" }

// Call implements Integration.
func (Fixtures) Call(ctx context.Context, app *host.App, reg *registry.ThemeRegistry) error {
	if app.Fixtures == nil || app.Fixtures.DefinitionPaths == nil {
		return nil
	}
	for _, t := range reg.Themes().All() {
		app.Fixtures.DefinitionPaths.Append(t.Descriptor().RelativeJoin("spec", "factories"))
	}
	app.Log().WithComponent("integrations").Debug(ctx, "Fixture paths registered",
		"count", app.Fixtures.DefinitionPaths.Len())
	return nil
}
