package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/multitenancy/internal/integrations"
	"github.com/conneroisu/multitenancy/internal/routes"
	"github.com/conneroisu/multitenancy/internal/testutils"
	"github.com/conneroisu/multitenancy/internal/version"
)

// setupProject creates an application with two themes and returns the path
// of its config file.
func setupProject(t *testing.T) (string, string) {
	t.Helper()
	root := testutils.CreateAppRoot(t)

	testutils.WriteFile(t, filepath.Join(root, "config", "importmap.yml"), `
pins:
  - name: application
    preload: true
  - name: stimulus
    to: https://cdn.example.com/stimulus.js
`)

	alpha := testutils.CreateThemeDir(t, root, "alpha", "app/views", "app/javascript", "spec")
	testutils.WriteFile(t, filepath.Join(alpha, "config", "importmap.yml"), `
pins:
  - name: stimulus
    to: vendor/stimulus.js
  - name: alpha
`)
	testutils.WriteFile(t, filepath.Join(alpha, "app", "assets", "tailwind", "alpha", "application.css"),
		`@import "tailwindcss";`)
	testutils.CreateThemeDir(t, root, "beta")

	cfgPath := testutils.WriteFile(t, filepath.Join(root, ".multitenancy.yml"), `
root: `+root+`
tailwind:
  enabled: true
logging:
  level: error
`)
	return root, cfgPath
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	listFormat, tailwindFormat, routesFormat = "table", "table", "table"
	importmapTags, importmapEntry = false, "application"
	tailwindDebug, tailwindWatch = false, false
	versionFormat, versionShort = "text", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

func TestListJSON(t *testing.T) {
	root, cfg := setupProject(t)

	out, err := execute(t, cfg, "list", "-o", "json")
	require.NoError(t, err)

	var rows []themeRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, "alpha", rows[0].Name)
	assert.Equal(t, "/alpha", rows[0].MountPath)
	assert.Equal(t, "themes/alpha", rows[0].RelativePath)
	assert.Equal(t, "Themes.Alpha", rows[0].Namespace)
	assert.Equal(t, []string{filepath.Join(root, "themes", "alpha", "app", "views")}, rows[0].Paths["views"])
	assert.Equal(t, "beta", rows[1].Name)
	assert.Empty(t, rows[1].Paths)
}

func TestListYAMLAndTable(t *testing.T) {
	_, cfg := setupProject(t)

	out, err := execute(t, cfg, "list", "-o", "yaml")
	require.NoError(t, err)
	var rows []themeRow
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 2)

	out, err = execute(t, cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Themes.Beta")
	assert.Contains(t, out, "assets,scripts,views")
}

func TestListRejectsUnknownFormat(t *testing.T) {
	_, cfg := setupProject(t)
	_, err := execute(t, cfg, "list", "-o", "csv")
	assert.Error(t, err)
}

func TestImportmapJSON(t *testing.T) {
	_, cfg := setupProject(t)

	out, err := execute(t, cfg, "importmap", "alpha")
	require.NoError(t, err)

	var doc struct {
		Imports map[string]string `json:"imports"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, map[string]string{
		"application": "application.js",
		"stimulus":    "vendor/stimulus.js",
		"alpha":       "alpha.js",
	}, doc.Imports)

	out, err = execute(t, cfg, "importmap", "beta")
	require.NoError(t, err)
	assert.Contains(t, out, "https://cdn.example.com/stimulus.js")
}

func TestImportmapTags(t *testing.T) {
	_, cfg := setupProject(t)

	out, err := execute(t, cfg, "importmap", "alpha", "--tags", "--entry", "alpha")
	require.NoError(t, err)
	assert.Contains(t, out, `<script type="importmap"`)
	assert.Contains(t, out, `rel="modulepreload"`)
	assert.Contains(t, out, `import "alpha"`)
}

func TestImportmapUnknownTheme(t *testing.T) {
	_, cfg := setupProject(t)
	_, err := execute(t, cfg, "importmap", "gamma")
	assert.Error(t, err)
}

func TestTailwindTargets(t *testing.T) {
	root, cfg := setupProject(t)

	out, err := execute(t, cfg, "tailwind", "targets", "-o", "json")
	require.NoError(t, err)

	var targets []integrations.Target
	require.NoError(t, json.Unmarshal([]byte(out), &targets))
	require.Len(t, targets, 1)
	assert.Equal(t, "alpha", targets[0].Theme)
	assert.Equal(t,
		filepath.Join(root, "themes", "alpha", "app", "assets", "builds", "alpha", "application.css"),
		targets[0].Output)
	assert.DirExists(t, filepath.Join(root, "themes", "alpha", "app", "assets", "builds", "alpha"))
}

func TestTailwindCommand(t *testing.T) {
	_, cfg := setupProject(t)

	out, err := execute(t, cfg, "tailwind", "command", "alpha")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "tailwindcss --input "))
	assert.Contains(t, out, "--minify")

	out, err = execute(t, cfg, "tailwind", "command", "alpha", "--debug", "--watch")
	require.NoError(t, err)
	assert.NotContains(t, out, "--minify")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "--watch"))

	_, err = execute(t, cfg, "tailwind", "command", "beta")
	assert.Error(t, err)
}

func TestSpecPaths(t *testing.T) {
	_, cfg := setupProject(t)

	out, err := execute(t, cfg, "spec-paths")
	require.NoError(t, err)
	assert.Equal(t, "spec\nthemes/alpha/spec\n", out)

	out, err = execute(t, cfg, "spec-paths", "themes/alpha", "spec/models")
	require.NoError(t, err)
	assert.Equal(t, "themes/alpha/spec\nspec/models\n", out)
}

func TestRoutes(t *testing.T) {
	_, cfg := setupProject(t)

	out, err := execute(t, cfg, "routes", "-o", "json")
	require.NoError(t, err)

	var table []routes.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &table))
	patterns := make([]string, len(table))
	for i, e := range table {
		patterns[i] = e.Pattern
	}
	assert.Contains(t, patterns, "/alpha/")
	assert.Contains(t, patterns, "/beta/")
}

func TestVersion(t *testing.T) {
	_, cfg := setupProject(t)

	out, err := execute(t, cfg, "version", "--format", "json")
	require.NoError(t, err)
	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	out, err = execute(t, cfg, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Get().Short()+"\n", out)

	_, err = execute(t, cfg, "version", "--format", "xml")
	assert.Error(t, err)
}

func TestInvalidConfiguration(t *testing.T) {
	root := testutils.CreateAppRoot(t)
	cfg := testutils.WriteFile(t, filepath.Join(root, ".multitenancy.yml"), "themes:\n  root: ../elsewhere\n")

	_, err := execute(t, cfg, "list")
	assert.Error(t, err)
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("JSON", listFormats))
	assert.Error(t, validateFormat("csv", listFormats))
}
