package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/multitenancy/internal/logging"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestFilters(t *testing.T) {
	js := ExtensionFilter("js", ".mjs")
	assert.True(t, js("app/javascript/index.js"))
	assert.True(t, js("app/javascript/lib.mjs"))
	assert.False(t, js("app/javascript/style.css"))

	assert.True(t, NoHiddenFilter("pins.yml"))
	assert.False(t, NoHiddenFilter("/x/.pins.yml.swp"))
	assert.False(t, NoHiddenFilter("/x/pins.yml~"))

	assert.True(t, NoGitFilter("themes/acme/config/importmap.yml"))
	assert.False(t, NoGitFilter("/repo/.git/HEAD"))
}

func TestDebouncerDeduplicatesByPath(t *testing.T) {
	d := &Debouncer{
		delay:  time.Hour,
		output: make(chan []ChangeEvent, 1),
	}
	d.pending = []ChangeEvent{
		{Type: EventTypeCreated, Path: "a.js"},
		{Type: EventTypeCreated, Path: "b.js"},
		{Type: EventTypeModified, Path: "a.js"},
	}
	d.flush()

	events := <-d.output
	require.Len(t, events, 2)
	assert.Equal(t, "a.js", events[0].Path)
	assert.Equal(t, EventTypeModified, events[0].Type)
	assert.Equal(t, "b.js", events[1].Path)
	assert.Empty(t, d.pending)
}

func TestUpdaterMatches(t *testing.T) {
	dir := t.TempDir()
	pin := filepath.Join(dir, "config", "importmap.yml")
	scripts := filepath.Join(dir, "app", "javascript")
	assets := filepath.Join(dir, "app", "assets")

	u := newMatcher([]string{pin}, map[string][]string{scripts: {"js"}, assets: nil}, nil)

	assert.True(t, u.Matches(pin))
	assert.True(t, u.Matches(filepath.Join(scripts, "controllers", "hello.js")))
	assert.False(t, u.Matches(filepath.Join(scripts, "hello.ts")))
	assert.False(t, u.Matches(scripts+"-other/x.js"))
	assert.True(t, u.Matches(filepath.Join(assets, "anything.css")))
	assert.False(t, u.Matches(filepath.Join(dir, "config", "routes.yml")))
}

func TestUpdaterExecuteIfUpdated(t *testing.T) {
	var calls int
	u := newMatcher(nil, nil, func() error {
		calls++
		return nil
	})

	ran, err := u.ExecuteIfUpdated()
	require.NoError(t, err)
	assert.False(t, ran)

	u.dirty.Store(true)
	assert.True(t, u.Updated())
	ran, err = u.ExecuteIfUpdated()
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, u.Updated())
	assert.Equal(t, 1, calls)

	require.NoError(t, u.Execute())
	assert.Equal(t, 2, calls)
}

func TestUpdaterExecutePropagatesCallbackError(t *testing.T) {
	u := newMatcher(nil, nil, func() error { return assert.AnError })
	u.dirty.Store(true)

	ran, err := u.ExecuteIfUpdated()
	assert.True(t, ran)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestUpdaterRetriesFailedCallback(t *testing.T) {
	fail := true
	var calls int
	u := newMatcher(nil, nil, func() error {
		calls++
		if fail {
			return assert.AnError
		}
		return nil
	})
	u.dirty.Store(true)

	_, err := u.ExecuteIfUpdated()
	require.ErrorIs(t, err, assert.AnError)
	assert.True(t, u.Updated(), "a failed rebuild stays pending")

	fail = false
	ran, err := u.ExecuteIfUpdated()
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, u.Updated())
	assert.Equal(t, 2, calls)
}

func TestUpdaterDetectsPinFileChange(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, "config")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	pin := filepath.Join(configDir, "importmap.yml")

	var calls atomic.Int32
	u, err := NewUpdater(context.Background(), []string{pin}, nil, func() error {
		calls.Add(1)
		return nil
	}, 10*time.Millisecond, logging.NewNop())
	require.NoError(t, err)
	defer u.Close()

	require.NoError(t, os.WriteFile(filepath.Join(configDir, "routes.yml"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(pin, []byte("pins: []\n"), 0644))

	require.Eventually(t, u.Updated, 2*time.Second, 10*time.Millisecond)
	ran, err := u.ExecuteIfUpdated()
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUpdaterWatchesNewSubdirectories(t *testing.T) {
	scripts := filepath.Join(t.TempDir(), "app", "javascript")
	require.NoError(t, os.MkdirAll(scripts, 0755))

	u, err := NewUpdater(context.Background(), nil, map[string][]string{scripts: {"js"}}, nil,
		10*time.Millisecond, logging.NewNop())
	require.NoError(t, err)
	defer u.Close()

	nested := filepath.Join(scripts, "controllers")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.Eventually(t, func() bool {
		for _, w := range u.fw.WatchList() {
			if w == nested {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(nested, "hello.js"), []byte("export {}"), 0644))
	require.Eventually(t, u.Updated, 2*time.Second, 10*time.Millisecond)
}

func TestUpdaterSkipsMissingDirectories(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	u, err := NewUpdater(context.Background(), []string{filepath.Join(missing, "pins.yml")},
		map[string][]string{missing: {"js"}}, nil, 10*time.Millisecond, nil)
	require.NoError(t, err)
	defer u.Close()

	assert.Empty(t, u.fw.WatchList())
	assert.False(t, u.Updated())
}

func TestFactory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := Factory(ctx, 0, logging.NewNop())
	updater, err := factory(nil, nil, func() error { return nil })
	require.NoError(t, err)
	require.IsType(t, &Updater{}, updater)
	defer updater.(*Updater).Close()

	assert.False(t, updater.Updated())
}

func TestFileWatcherHandlersReceiveBatches(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWatcher(20*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	var mu sync.Mutex
	var got []ChangeEvent
	fw.AddFilter(ExtensionFilter("js"))
	fw.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, events...)
		return nil
	})
	require.NoError(t, fw.AddPath(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("2"), 0644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, e := range got {
		assert.Equal(t, ".js", filepath.Ext(e.Path))
	}
}
