package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	terrors "github.com/conneroisu/multitenancy/internal/errors"
	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/logging"
	"github.com/conneroisu/multitenancy/internal/testutils"
)

func TestLoadDefaults(t *testing.T) {
	config, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ".", config.Root)
	assert.Equal(t, "themes", config.Themes.Root)
	assert.Equal(t, host.DefaultAutoloadPaths, config.Autoload.Paths)
	assert.True(t, config.ImportMap.Enabled)
	assert.Equal(t, []string{"config/importmap.yml"}, config.ImportMap.Paths)
	assert.Equal(t, "config/importmap.yml", config.ImportMap.ThemePinFile)
	assert.False(t, config.Tailwind.Enabled)
	assert.Equal(t, "tailwindcss", config.Tailwind.Executable)
	assert.True(t, config.Specs.Enabled)
	assert.Equal(t, "spec", config.Specs.DefaultPath)
	assert.Equal(t, []string{"spec"}, config.Specs.FilesToRun)
	assert.True(t, config.Fixtures.Enabled)
	assert.True(t, config.Development.CacheClasses)
	assert.Equal(t, 100*time.Millisecond, config.Development.Debounce)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
}

func TestLoadGlobalViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("themes.root", "skins")

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "skins", config.Themes.Root)
}

func TestLoadExplicitValuesWin(t *testing.T) {
	v := viper.New()
	v.Set("importmap.enabled", false)
	v.Set("specs.enabled", false)
	v.Set("fixtures.enabled", false)
	v.Set("development.cache_classes", false)
	v.Set("autoload.paths", []string{})
	v.Set("importmap.paths", []string{})
	v.Set("specs.default_path", "test")

	config, err := LoadFrom(v)
	require.NoError(t, err)

	assert.False(t, config.ImportMap.Enabled)
	assert.False(t, config.Specs.Enabled)
	assert.False(t, config.Fixtures.Enabled)
	assert.False(t, config.Development.CacheClasses)
	assert.Empty(t, config.Autoload.Paths)
	assert.Empty(t, config.ImportMap.Paths)
	assert.Equal(t, []string{"test"}, config.Specs.FilesToRun)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := testutils.WriteFile(t, filepath.Join(dir, ".multitenancy.yml"), `
themes:
  root: skins
importmap:
  theme_pin_file: config/pins.toml
  paths:
    - config/importmap.yml
    - vendor/pins.yml
tailwind:
  enabled: true
  executable: bin/tailwindcss
development:
  cache_classes: false
  debounce: 250ms
logging:
  level: debug
  format: json
`)

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	config, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "skins", config.Themes.Root)
	assert.Equal(t, "config/pins.toml", config.ImportMap.ThemePinFile)
	assert.Equal(t, []string{"config/importmap.yml", "vendor/pins.yml"}, config.ImportMap.Paths)
	assert.True(t, config.Tailwind.Enabled)
	assert.Equal(t, "bin/tailwindcss", config.Tailwind.Executable)
	assert.False(t, config.Development.CacheClasses)
	assert.Equal(t, 250*time.Millisecond, config.Development.Debounce)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
}

func TestLoadWithEnvironment(t *testing.T) {
	t.Setenv("MULTITENANCY_THEMES_ROOT", "brands")
	t.Setenv("MULTITENANCY_TAILWIND_ENABLED", "true")
	t.Setenv("MULTITENANCY_FIXTURES_ENABLED", "false")
	t.Setenv("MULTITENANCY_SPECS_FILES_TO_RUN", "spec/models,themes/alpha")

	v := viper.New()
	require.NoError(t, BindEnv(v))

	config, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "brands", config.Themes.Root)
	assert.True(t, config.Tailwind.Enabled)
	assert.False(t, config.Fixtures.Enabled)
	assert.Equal(t, []string{"spec/models", "themes/alpha"}, config.Specs.FilesToRun)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
		field string
	}{
		{"themes root traversal", "themes.root", "../other", "themes.root"},
		{"autoload absolute", "autoload.paths", []string{"/etc"}, "autoload.paths"},
		{"importmap traversal", "importmap.paths", []string{"config/../../pins.yml"}, "importmap.paths"},
		{"pin file absolute", "importmap.theme_pin_file", "/pins.yml", "importmap.theme_pin_file"},
		{"pin file extension", "importmap.theme_pin_file", "config/pins.json", "importmap.theme_pin_file"},
		{"asset dangerous char", "assets.paths", []string{"app/$(rm)"}, "assets.paths"},
		{"fixtures traversal", "fixtures.paths", []string{".."}, "fixtures.paths"},
		{"spec path traversal", "specs.default_path", "../spec", "specs.default_path"},
		{"tailwind metacharacters", "tailwind.executable", "tailwindcss; rm -rf", "tailwind.executable"},
		{"log level", "logging.level", "verbose", "logging.level"},
		{"log format", "logging.format", "xml", "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			config, err := LoadFrom(v)
			require.Error(t, err)
			assert.Nil(t, config)

			var te *terrors.ThemeError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, terrors.ErrorTypeConfig, te.Type)
			assert.Equal(t, terrors.ErrCodeConfigInvalid, te.Code)
			assert.Equal(t, tt.field, te.Context["field"])
		})
	}
}

func TestValidationAllowsAbsoluteRoots(t *testing.T) {
	v := viper.New()
	v.Set("themes.root", "/srv/themes")
	v.Set("assets.paths", []string{"/srv/shared/js"})
	v.Set("autoload.paths", []string{"app/../lib"})

	_, err := LoadFrom(v)
	assert.NoError(t, err)
}

func TestNewApp(t *testing.T) {
	root := testutils.CreateAppRoot(t)
	v := viper.New()
	v.Set("root", root)
	v.Set("tailwind.enabled", true)
	v.Set("assets.paths", []string{"app/javascript"})
	v.Set("fixtures.paths", []string{"spec/factories"})
	config, err := LoadFrom(v)
	require.NoError(t, err)

	app := NewApp(context.Background(), config, logging.NewNop())

	assert.Equal(t, root, app.Root)
	assert.Equal(t, filepath.Join(root, "themes"), app.ThemesRoot())
	assert.Equal(t, []string{"app/javascript"}, app.Assets.Paths.All())
	require.NotNil(t, app.ImportMap)
	assert.Equal(t, []string{filepath.Join(root, "config", "importmap.yml")}, app.ImportMap.Paths.All())
	require.NotNil(t, app.Fixtures)
	assert.Equal(t, []string{"spec/factories"}, app.Fixtures.DefinitionPaths.All())
	require.NotNil(t, app.TestRunner)
	assert.Equal(t, []string{"spec"}, app.TestRunner.FilesToRun)
	require.NotNil(t, app.Tailwind)
	assert.Equal(t, "tailwindcss", app.Tailwind.Executable)
	assert.True(t, app.CacheClasses)
	assert.Nil(t, app.FileWatcher)
}

func TestNewAppDisabledCollaborators(t *testing.T) {
	v := viper.New()
	v.Set("root", t.TempDir())
	v.Set("importmap.enabled", false)
	v.Set("specs.enabled", false)
	v.Set("fixtures.enabled", false)
	v.Set("development.cache_classes", false)
	config, err := LoadFrom(v)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app := NewApp(ctx, config, logging.NewNop())

	assert.Nil(t, app.ImportMap)
	assert.Nil(t, app.TestRunner)
	assert.Nil(t, app.Fixtures)
	assert.Nil(t, app.Tailwind)
	assert.False(t, app.CacheClasses)
	assert.NotNil(t, app.FileWatcher)
}

func TestNewLogger(t *testing.T) {
	config, err := LoadFrom(viper.New())
	require.NoError(t, err)
	assert.NotNil(t, config.NewLogger(nil))
}
