package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withBuildVars(t *testing.T, version, commit, built string) {
	t.Helper()
	oldVersion, oldCommit, oldTime := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = version, commit, built
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldTime })
}

func TestGetUsesLdflags(t *testing.T) {
	withBuildVars(t, "v1.2.3", "0123456789abcdef", "2026-01-02T03:04:05Z")

	info := Get()
	assert.Equal(t, "v1.2.3", info.Version)
	assert.Equal(t, "0123456789abcdef", info.GitCommit)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), info.BuildTime)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
	assert.True(t, info.IsRelease())
	assert.Equal(t, "v1.2.3 (0123456)", info.Short())
	assert.Contains(t, info.String(), "Commit: 0123456789abcdef")
	assert.Contains(t, info.String(), "Built: 2026-01-02T03:04:05Z")
}

func TestInfoFormatting(t *testing.T) {
	tests := []struct {
		name    string
		info    Info
		short   string
		release bool
	}{
		{"dev without commit", Info{Version: "dev", GitCommit: "unknown"}, "dev", false},
		{"dev build from commit", Info{Version: "dev-abcdef0", GitCommit: "abcdef0123"}, "dev-abcdef0", false},
		{"release", Info{Version: "v0.4.0", GitCommit: "abcdef0123"}, "v0.4.0 (abcdef0)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.short, tt.info.Short())
			assert.Equal(t, tt.release, tt.info.IsRelease())
		})
	}
}

func TestParseTime(t *testing.T) {
	assert.True(t, parseTime("unknown").IsZero())
	assert.True(t, parseTime("yesterday").IsZero())
	assert.Equal(t, 2026, parseTime("2026-10-15 12:00:00").Year())
}
