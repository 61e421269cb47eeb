package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/multitenancy/internal/config"
	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/pipeline"
	"github.com/conneroisu/multitenancy/internal/registry"
)

// environment is a fully booted host application: every theme discovered
// and bootstrapped, import maps built.
type environment struct {
	cfg      *config.Config
	app      *host.App
	registry *registry.ThemeRegistry
	pipeline *pipeline.Pipeline
}

// bootEnvironment loads the configuration and runs both lifecycle phases.
// Themes skipped during discovery are reported as warnings.
func bootEnvironment(cmd *cobra.Command) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := cfg.NewLogger(cmd.ErrOrStderr()).WithComponent("cli")
	app := config.NewApp(ctx, cfg, logger)
	reg := registry.New(app, logger)
	p := pipeline.New(app, reg, pipeline.WithPinFile(cfg.ImportMap.ThemePinFile))

	if err := p.Run(ctx); err != nil {
		return nil, err
	}

	for _, discoveryErr := range reg.Errors() {
		logger.Warn(ctx, discoveryErr.Err, "Skipped theme directory", "path", discoveryErr.Path)
	}

	return &environment{
		cfg:      cfg,
		app:      app,
		registry: reg,
		pipeline: p,
	}, nil
}
