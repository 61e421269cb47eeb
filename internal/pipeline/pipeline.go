// Package pipeline runs the theme integrations at the two host lifecycle
// hooks: before configuration (discovery and bootstrap) and after
// initialization (import maps and stylesheets).
package pipeline

import (
	"context"
	"fmt"
	"sync"

	terrors "github.com/conneroisu/multitenancy/internal/errors"
	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/integrations"
	"github.com/conneroisu/multitenancy/internal/logging"
	"github.com/conneroisu/multitenancy/internal/registry"
)

// Phase is a host lifecycle hook.
type Phase int

const (
	PhaseBeforeConfiguration Phase = iota
	PhaseAfterInitialize
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseBeforeConfiguration:
		return "before_configuration"
	case PhaseAfterInitialize:
		return "after_initialize"
	default:
		return "unknown"
	}
}

// LoadHook lets other tools act on the registry once every theme is
// bootstrapped.
type LoadHook func(ctx context.Context, reg *registry.ThemeRegistry) error

// Pipeline is the ordered set of integrations for one host app.
type Pipeline struct {
	app      *host.App
	registry *registry.ThemeRegistry
	logger   logging.Logger

	before []integrations.Integration
	after  []integrations.Integration

	importMap *integrations.ImportMap

	mu    sync.Mutex
	hooks []LoadHook
	ran   map[Phase]bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPinFile sets the theme pin file used by the import map step.
func WithPinFile(pinFile string) Option {
	return func(p *Pipeline) {
		p.importMap.PinFile = pinFile
	}
}

// WithIntegration appends an extra integration to a phase.
func WithIntegration(phase Phase, integration integrations.Integration) Option {
	return func(p *Pipeline) {
		switch phase {
		case PhaseBeforeConfiguration:
			p.before = append(p.before, integration)
		case PhaseAfterInitialize:
			p.after = append(p.after, integration)
		}
	}
}

// New creates the standard pipeline: Bootstrap, Fixtures and SpecPaths
// before configuration; ImportMap and Tailwind after initialization.
func New(app *host.App, reg *registry.ThemeRegistry, opts ...Option) *Pipeline {
	im := integrations.NewImportMap("")
	p := &Pipeline{
		app:       app,
		registry:  reg,
		logger:    app.Log().WithComponent("pipeline"),
		before:    []integrations.Integration{integrations.Bootstrap{}, integrations.Fixtures{}, integrations.SpecPaths{}},
		after:     []integrations.Integration{im, integrations.Tailwind{}},
		importMap: im,
		ran:       make(map[Phase]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the theme registry the pipeline drives.
func (p *Pipeline) Registry() *registry.ThemeRegistry { return p.registry }

// ImportMaps returns the import map step. Its Manager is nil until after
// initialization.
func (p *Pipeline) ImportMaps() *integrations.ImportMap { return p.importMap }

// OnLoad registers a hook run at the end of the before-configuration phase.
// Hooks registered after that phase ran are called immediately.
func (p *Pipeline) OnLoad(ctx context.Context, hook LoadHook) error {
	p.mu.Lock()
	ran := p.ran[PhaseBeforeConfiguration]
	if !ran {
		p.hooks = append(p.hooks, hook)
	}
	p.mu.Unlock()

	if ran {
		return hook(ctx, p.registry)
	}
	return nil
}

// RunBeforeConfiguration discovers and bootstraps every theme, registers
// fixtures and test paths, then runs the load hooks. It runs at most once.
func (p *Pipeline) RunBeforeConfiguration(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ran[PhaseBeforeConfiguration] {
		return nil
	}
	if err := p.runPhase(ctx, PhaseBeforeConfiguration, p.before); err != nil {
		return err
	}
	for i, hook := range p.hooks {
		if err := hook(ctx, p.registry); err != nil {
			return fmt.Errorf("load hook %d: %w", i, err)
		}
	}
	p.ran[PhaseBeforeConfiguration] = true
	return nil
}

// RunAfterInitialize builds import maps and prepares stylesheet builds. It
// fails when RunBeforeConfiguration has not completed, and runs at most once.
func (p *Pipeline) RunAfterInitialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ran[PhaseBeforeConfiguration] {
		return terrors.NewOrderingError(terrors.ErrCodePhaseOrder,
			"after_initialize requires before_configuration to complete first")
	}
	if p.ran[PhaseAfterInitialize] {
		return nil
	}
	if err := p.runPhase(ctx, PhaseAfterInitialize, p.after); err != nil {
		return err
	}
	p.ran[PhaseAfterInitialize] = true
	return nil
}

// Run executes both phases in order.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.RunBeforeConfiguration(ctx); err != nil {
		return err
	}
	return p.RunAfterInitialize(ctx)
}

// Ran reports whether phase completed.
func (p *Pipeline) Ran(phase Phase) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ran[phase]
}

func (p *Pipeline) runPhase(ctx context.Context, phase Phase, steps []integrations.Integration) error {
	perf := logging.StartOperation(p.logger, phase.String())
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			perf.EndWithError(ctx, err)
			return err
		}
		p.logger.Debug(ctx, "Running integration", "phase", phase.String(), "integration", step.Name())
		if err := step.Call(ctx, p.app, p.registry); err != nil {
			perf.EndWithError(ctx, err)
			return fmt.Errorf("%s: %s: %w", phase, step.Name(), err)
		}
	}
	perf.End(ctx)
	return nil
}
