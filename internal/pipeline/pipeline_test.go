package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	terrors "github.com/conneroisu/multitenancy/internal/errors"
	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/integrations"
	"github.com/conneroisu/multitenancy/internal/logging"
	"github.com/conneroisu/multitenancy/internal/registry"
	"github.com/conneroisu/multitenancy/internal/testutils"
)

type recorder struct {
	name  string
	calls *[]string
	err   error
}

func (r recorder) Name() string { return r.name }

func (r recorder) Call(ctx context.Context, app *host.App, reg *registry.ThemeRegistry) error {
	*r.calls = append(*r.calls, r.name)
	return r.err
}

type staticUpdater struct{}

func (staticUpdater) Updated() bool                   { return false }
func (staticUpdater) Execute() error                  { return nil }
func (staticUpdater) ExecuteIfUpdated() (bool, error) { return false, nil }

func newPipeline(t *testing.T, opts ...Option) (string, *host.App, *Pipeline) {
	t.Helper()
	root := testutils.CreateAppRoot(t)
	app := testutils.NewTestApp(t, root)
	return root, app, New(app, registry.New(app, logging.NewNop()), opts...)
}

func TestAfterInitializeRequiresBeforeConfiguration(t *testing.T) {
	_, _, p := newPipeline(t)

	err := p.RunAfterInitialize(context.Background())
	require.Error(t, err)

	var te *terrors.ThemeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, terrors.ErrorTypeOrdering, te.Type)
	assert.Equal(t, terrors.ErrCodePhaseOrder, te.Code)
	assert.False(t, p.Ran(PhaseAfterInitialize))
}

func TestPhaseOrderAndOnce(t *testing.T) {
	var calls []string
	_, _, p := newPipeline(t,
		WithIntegration(PhaseBeforeConfiguration, recorder{name: "before", calls: &calls}),
		WithIntegration(PhaseAfterInitialize, recorder{name: "after", calls: &calls}),
	)
	require.NoError(t, p.OnLoad(context.Background(), func(ctx context.Context, reg *registry.ThemeRegistry) error {
		calls = append(calls, "hook")
		return nil
	}))

	require.NoError(t, p.Run(context.Background()))
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, []string{"before", "hook", "after"}, calls)
	assert.True(t, p.Ran(PhaseBeforeConfiguration))
	assert.True(t, p.Ran(PhaseAfterInitialize))
}

func TestOnLoadAfterPhaseRunsImmediately(t *testing.T) {
	_, _, p := newPipeline(t)
	require.NoError(t, p.RunBeforeConfiguration(context.Background()))

	called := false
	require.NoError(t, p.OnLoad(context.Background(), func(ctx context.Context, reg *registry.ThemeRegistry) error {
		called = reg == p.Registry()
		return nil
	}))
	assert.True(t, called)
}

func TestFailedPhaseCanBeRetried(t *testing.T) {
	var calls []string
	_, _, p := newPipeline(t,
		WithIntegration(PhaseBeforeConfiguration, recorder{name: "flaky", calls: &calls, err: assert.AnError}))

	err := p.RunBeforeConfiguration(context.Background())
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "before_configuration: flaky")
	assert.False(t, p.Ran(PhaseBeforeConfiguration))

	require.Error(t, p.RunAfterInitialize(context.Background()))
}

func TestHookErrorStopsPhase(t *testing.T) {
	_, _, p := newPipeline(t)
	require.NoError(t, p.OnLoad(context.Background(), func(ctx context.Context, reg *registry.ThemeRegistry) error {
		return assert.AnError
	}))

	err := p.RunBeforeConfiguration(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, p.Ran(PhaseBeforeConfiguration))
}

func TestCancelledContext(t *testing.T) {
	_, _, p := newPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Run(ctx), context.Canceled)
}

func TestFullRun(t *testing.T) {
	root, app, p := newPipeline(t, WithPinFile("config/pins.toml"))
	app.CacheClasses = false
	app.ImportMap = &host.ImportMap{Paths: host.NewPathList()}
	app.Fixtures = &host.Fixtures{DefinitionPaths: host.NewPathList()}
	app.TestRunner = &host.TestRunner{FilesToRun: []string{"spec"}, DefaultPath: "spec"}
	app.Tailwind = &host.Tailwind{}

	var reloaders int
	app.FileWatcher = func(files []string, dirs map[string][]string, cb func() error) (host.Updater, error) {
		reloaders++
		return staticUpdater{}, nil
	}

	alpha := testutils.CreateThemeDir(t, root, "alpha", "spec", "app/javascript", "app/assets/tailwind")
	testutils.WriteFile(t, filepath.Join(alpha, "config", "pins.toml"), "[[pin]]\nname = \"alpha\"\n")
	themePins := filepath.Join(alpha, "config", "pins.toml")
	app.ImportMap.Paths.Append(themePins)

	require.NoError(t, p.Run(context.Background()))

	th, err := p.Registry().Find("alpha")
	require.NoError(t, err)
	assert.True(t, th.Bootstrapped())
	assert.Equal(t, []string{"themes/alpha/spec/factories"}, app.Fixtures.DefinitionPaths.All())
	assert.Equal(t, []string{"spec", "themes/alpha/spec"}, app.TestRunner.FilesToRun)
	assert.Equal(t, []string{filepath.Join(alpha, "app", "javascript")}, app.Assets.Paths.All())
	assert.Equal(t, []string{filepath.Join(alpha, "app", "assets", "tailwind")}, app.Assets.ExcludedPaths.All())
	assert.Empty(t, app.ImportMap.Paths.All())
	assert.Equal(t, 1, reloaders)

	scope, ok := p.ImportMaps().Manager().ScopeFor(th)
	require.True(t, ok)
	_, ok = scope.Map().Lookup("alpha")
	assert.True(t, ok)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "before_configuration", PhaseBeforeConfiguration.String())
	assert.Equal(t, "after_initialize", PhaseAfterInitialize.String())
	assert.Equal(t, "unknown", Phase(7).String())
}

var _ integrations.Integration = recorder{}
