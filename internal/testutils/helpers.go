package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/namespace"
)

// CreateAppRoot creates a temporary application root with an empty themes
// directory and returns its absolute path.
func CreateAppRoot(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, host.DefaultThemesDir), 0755))
	return root
}

// CreateThemeDir creates themes/<name> under root plus the given
// slash-separated subdirectories, and returns the theme path.
func CreateThemeDir(t testing.TB, root, name string, subdirs ...string) string {
	t.Helper()
	themePath := filepath.Join(root, host.DefaultThemesDir, name)
	require.NoError(t, os.MkdirAll(themePath, 0755))
	for _, sub := range subdirs {
		require.NoError(t, os.MkdirAll(filepath.Join(themePath, filepath.FromSlash(sub)), 0755))
	}
	return themePath
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// NewTestApp returns a host app rooted at root with its own namespace
// registry, so tests never share namespace state.
func NewTestApp(t testing.TB, root string) *host.App {
	t.Helper()
	app := host.NewApp(root)
	app.Namespaces = namespace.NewRegistry()
	return app
}
