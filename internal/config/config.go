// Package config loads multitenancy settings using Viper, from a
// .multitenancy.yml file, MULTITENANCY_ environment variables and
// command-line flags.
//
// Defaults are applied after unmarshalling so that an explicit false or an
// empty list in the file is distinguishable from an unset key. The loaded
// Config is validated before use and turned into the host application the
// theme core runs against by NewApp.
package config

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	terrors "github.com/conneroisu/multitenancy/internal/errors"
	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/importmap"
	"github.com/conneroisu/multitenancy/internal/integrations"
	"github.com/conneroisu/multitenancy/internal/logging"
	"github.com/conneroisu/multitenancy/internal/watcher"
)

// EnvPrefix is the environment variable prefix, e.g. MULTITENANCY_THEMES_ROOT.
const EnvPrefix = "MULTITENANCY"

// FileName is the default config file name, without extension.
const FileName = ".multitenancy"

type Config struct {
	Root        string            `mapstructure:"root" yaml:"root" json:"root"`
	Themes      ThemesConfig      `mapstructure:"themes" yaml:"themes" json:"themes"`
	Autoload    AutoloadConfig    `mapstructure:"autoload" yaml:"autoload" json:"autoload"`
	ImportMap   ImportMapConfig   `mapstructure:"importmap" yaml:"importmap" json:"importmap"`
	Assets      AssetsConfig      `mapstructure:"assets" yaml:"assets" json:"assets"`
	Tailwind    TailwindConfig    `mapstructure:"tailwind" yaml:"tailwind" json:"tailwind"`
	Specs       SpecsConfig       `mapstructure:"specs" yaml:"specs" json:"specs"`
	Fixtures    FixturesConfig    `mapstructure:"fixtures" yaml:"fixtures" json:"fixtures"`
	Development DevelopmentConfig `mapstructure:"development" yaml:"development" json:"development"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging" json:"logging"`
}

type ThemesConfig struct {
	Root string `mapstructure:"root" yaml:"root" json:"root"`
}

type AutoloadConfig struct {
	Paths []string `mapstructure:"paths" yaml:"paths" json:"paths"`
}

type ImportMapConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Paths        []string `mapstructure:"paths" yaml:"paths" json:"paths"`
	ThemePinFile string   `mapstructure:"theme_pin_file" yaml:"theme_pin_file" json:"theme_pin_file"`
}

type AssetsConfig struct {
	Paths []string `mapstructure:"paths" yaml:"paths" json:"paths"`
}

type TailwindConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Executable string `mapstructure:"executable" yaml:"executable" json:"executable"`
}

type SpecsConfig struct {
	Enabled     bool     `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	DefaultPath string   `mapstructure:"default_path" yaml:"default_path" json:"default_path"`
	FilesToRun  []string `mapstructure:"files_to_run" yaml:"files_to_run" json:"files_to_run"`
}

type FixturesConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Paths   []string `mapstructure:"paths" yaml:"paths" json:"paths"`
}

type DevelopmentConfig struct {
	// CacheClasses freezes code; import-map reloaders are only registered
	// when it is false.
	CacheClasses bool          `mapstructure:"cache_classes" yaml:"cache_classes" json:"cache_classes"`
	Debounce     time.Duration `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Keys lists every configuration key. Viper only unmarshals environment
// variables for keys it knows about, so BindEnv binds each one explicitly.
var Keys = []string{
	"root",
	"themes.root",
	"autoload.paths",
	"importmap.enabled",
	"importmap.paths",
	"importmap.theme_pin_file",
	"assets.paths",
	"tailwind.enabled",
	"tailwind.executable",
	"specs.enabled",
	"specs.default_path",
	"specs.files_to_run",
	"fixtures.enabled",
	"fixtures.paths",
	"development.cache_classes",
	"development.debounce",
	"logging.level",
	"logging.format",
}

// BindEnv enables MULTITENANCY_<SECTION>_<OPTION> overrides on v.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range Keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v, applies defaults and validates
// the result.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, terrors.Wrap(err, terrors.ErrorTypeConfig, terrors.ErrCodeConfigInvalid,
			"cannot decode configuration")
	}

	if config.Root == "" {
		config.Root = "."
	}
	if config.Themes.Root == "" {
		config.Themes.Root = host.DefaultThemesDir
	}
	if !v.IsSet("autoload.paths") {
		config.Autoload.Paths = append([]string(nil), host.DefaultAutoloadPaths...)
	}

	if !v.IsSet("importmap.enabled") {
		config.ImportMap.Enabled = true
	}
	if config.ImportMap.ThemePinFile == "" {
		config.ImportMap.ThemePinFile = importmap.DefaultPinFile
	}
	if !v.IsSet("importmap.paths") && len(config.ImportMap.Paths) == 0 {
		config.ImportMap.Paths = []string{importmap.DefaultPinFile}
	}

	if config.Tailwind.Executable == "" {
		config.Tailwind.Executable = integrations.DefaultTailwindExecutable
	}

	if !v.IsSet("specs.enabled") {
		config.Specs.Enabled = true
	}
	if config.Specs.DefaultPath == "" {
		config.Specs.DefaultPath = integrations.DefaultSpecPath
	}
	if len(config.Specs.FilesToRun) == 0 {
		config.Specs.FilesToRun = []string{config.Specs.DefaultPath}
	}

	if !v.IsSet("fixtures.enabled") {
		config.Fixtures.Enabled = true
	}

	// The CLI runs once and exits, so code is frozen unless asked otherwise.
	if !v.IsSet("development.cache_classes") {
		config.Development.CacheClasses = true
	}
	if config.Development.Debounce <= 0 {
		config.Development.Debounce = watcher.DefaultDebounce
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validatePath(config.Themes.Root, true); err != nil {
		return invalid("themes.root", err)
	}
	for _, p := range config.Autoload.Paths {
		if err := validatePath(p, false); err != nil {
			return invalid("autoload.paths", err)
		}
	}
	for _, p := range config.ImportMap.Paths {
		if err := validatePath(p, true); err != nil {
			return invalid("importmap.paths", err)
		}
	}
	if err := validatePath(config.ImportMap.ThemePinFile, false); err != nil {
		return invalid("importmap.theme_pin_file", err)
	}
	if ext := strings.ToLower(filepath.Ext(config.ImportMap.ThemePinFile)); !knownPinExt(ext) {
		return invalid("importmap.theme_pin_file", fmt.Errorf("unsupported pin file extension %q", ext))
	}
	for _, p := range config.Assets.Paths {
		if err := validatePath(p, true); err != nil {
			return invalid("assets.paths", err)
		}
	}
	for _, p := range config.Fixtures.Paths {
		if err := validatePath(p, false); err != nil {
			return invalid("fixtures.paths", err)
		}
	}
	if err := validatePath(config.Specs.DefaultPath, false); err != nil {
		return invalid("specs.default_path", err)
	}
	if strings.ContainsAny(config.Tailwind.Executable, ";&|$`<>") {
		return invalid("tailwind.executable", fmt.Errorf("contains shell metacharacters"))
	}

	if _, err := logging.ParseLevel(config.Logging.Level); err != nil {
		return invalid("logging.level", err)
	}
	switch config.Logging.Format {
	case "text", "json":
	default:
		return invalid("logging.format", fmt.Errorf("unknown log format %q", config.Logging.Format))
	}
	return nil
}

// validatePath rejects empty paths, relative paths that climb out of the
// application root and paths with shell metacharacters. Absolute paths are
// only accepted when allowAbs is set.
func validatePath(path string, allowAbs bool) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)
	if filepath.IsAbs(cleanPath) {
		if !allowAbs {
			return fmt.Errorf("path must be relative: %s", path)
		}
	} else if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}
	return nil
}

func knownPinExt(ext string) bool {
	switch ext {
	case ".yml", ".yaml", ".toml", ".lua":
		return true
	}
	return false
}

func invalid(field string, err error) error {
	return terrors.Wrap(err, terrors.ErrorTypeConfig, terrors.ErrCodeConfigInvalid,
		"invalid "+field).WithContext("field", field)
}

// NewLogger builds the logger described by the logging section.
func (c *Config) NewLogger(out io.Writer) *logging.StructuredLogger {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: c.Logging.Format,
		Output: out,
	})
}

// NewApp builds the host application described by cfg. Disabled
// collaborators are left nil. When code is not frozen, import-map
// reloaders watch the filesystem until ctx is cancelled.
func NewApp(ctx context.Context, cfg *Config, logger logging.Logger) *host.App {
	app := host.NewApp(cfg.Root)
	app.ThemesDir = cfg.Themes.Root
	app.AutoloadPaths = append([]string(nil), cfg.Autoload.Paths...)
	app.Assets.Paths.Append(cfg.Assets.Paths...)
	app.CacheClasses = cfg.Development.CacheClasses
	app.Logger = logger

	if cfg.ImportMap.Enabled {
		app.ImportMap = &host.ImportMap{Paths: host.NewPathList(absPaths(app.Root, cfg.ImportMap.Paths)...)}
	}
	if cfg.Fixtures.Enabled {
		app.Fixtures = &host.Fixtures{DefinitionPaths: host.NewPathList(cfg.Fixtures.Paths...)}
	}
	if cfg.Specs.Enabled {
		app.TestRunner = &host.TestRunner{
			FilesToRun:  append([]string(nil), cfg.Specs.FilesToRun...),
			DefaultPath: cfg.Specs.DefaultPath,
		}
	}
	if cfg.Tailwind.Enabled {
		app.Tailwind = &host.Tailwind{Executable: cfg.Tailwind.Executable}
	}
	if !cfg.Development.CacheClasses {
		app.FileWatcher = watcher.Factory(ctx, cfg.Development.Debounce, logger)
	}
	return app
}

func absPaths(root string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			out[i] = filepath.Clean(p)
		} else {
			out[i] = filepath.Join(root, p)
		}
	}
	return out
}
