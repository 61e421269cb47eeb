package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/logging"
)

// DefaultDebounce is the delay used by Factory when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// Updater marks itself dirty when a watched file or a matching file under a
// watched directory changes, and runs its callback on demand. It implements
// host.Updater.
type Updater struct {
	files    map[string]struct{}
	dirs     map[string]FileFilter
	callback func() error

	fw     *FileWatcher
	cancel context.CancelFunc
	dirty  atomic.Bool
	mu     sync.Mutex
}

var _ host.Updater = (*Updater)(nil)

// NewUpdater watches files (which need not exist yet) and every directory in
// dirs, restricted to the listed extensions. An empty extension list accepts
// every file under that directory.
func NewUpdater(ctx context.Context, files []string, dirs map[string][]string, callback func() error, debounce time.Duration, logger logging.Logger) (*Updater, error) {
	u := newMatcher(files, dirs, callback)

	fw, err := NewFileWatcher(debounce, logger)
	if err != nil {
		return nil, err
	}
	fw.AddFilter(NoHiddenFilter)
	fw.AddFilter(NoGitFilter)
	fw.AddFilter(u.Matches)
	fw.AddHandler(func(events []ChangeEvent) error {
		u.dirty.Store(true)
		return nil
	})

	// Files are watched through their parent so a pin file created or
	// replaced later is still seen.
	for file := range u.files {
		parent := filepath.Dir(file)
		if !isDir(parent) {
			continue
		}
		if err := fw.AddPath(parent); err != nil {
			fw.Stop()
			return nil, err
		}
	}
	for dir := range u.dirs {
		if !isDir(dir) {
			continue
		}
		if err := fw.AddRecursive(dir); err != nil {
			fw.Stop()
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := fw.Start(ctx); err != nil {
		cancel()
		fw.Stop()
		return nil, err
	}
	u.fw = fw
	u.cancel = cancel
	return u, nil
}

func newMatcher(files []string, dirs map[string][]string, callback func() error) *Updater {
	u := &Updater{
		files:    make(map[string]struct{}, len(files)),
		dirs:     make(map[string]FileFilter, len(dirs)),
		callback: callback,
	}
	for _, f := range files {
		u.files[absClean(f)] = struct{}{}
	}
	for dir, exts := range dirs {
		var filter FileFilter
		if len(exts) > 0 {
			filter = ExtensionFilter(exts...)
		}
		u.dirs[absClean(dir)] = filter
	}
	return u
}

// Matches reports whether a change to path should mark the updater dirty.
func (u *Updater) Matches(path string) bool {
	clean := absClean(path)
	if _, ok := u.files[clean]; ok {
		return true
	}
	for dir, filter := range u.dirs {
		if !strings.HasPrefix(clean, dir+string(filepath.Separator)) {
			continue
		}
		if filter == nil || filter(clean) {
			return true
		}
	}
	return false
}

// Updated reports whether a watched change is pending.
func (u *Updater) Updated() bool {
	return u.dirty.Load()
}

// Execute clears the pending flag and runs the callback. A failed callback
// leaves the flag set so the next poll tries again.
func (u *Updater) Execute() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.dirty.Store(false)
	if u.callback == nil {
		return nil
	}
	if err := u.callback(); err != nil {
		u.dirty.Store(true)
		return err
	}
	return nil
}

// ExecuteIfUpdated runs the callback only when a change is pending.
func (u *Updater) ExecuteIfUpdated() (bool, error) {
	if !u.dirty.Load() {
		return false, nil
	}
	return true, u.Execute()
}

// Close stops watching.
func (u *Updater) Close() error {
	if u.cancel != nil {
		u.cancel()
	}
	if u.fw != nil {
		return u.fw.Stop()
	}
	return nil
}

// Factory returns a host.FileWatcherFactory producing fsnotify-backed
// updaters that live until ctx is cancelled.
func Factory(ctx context.Context, debounce time.Duration, logger logging.Logger) host.FileWatcherFactory {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return func(files []string, dirs map[string][]string, callback func() error) (host.Updater, error) {
		return NewUpdater(ctx, files, dirs, callback, debounce, logger)
	}
}

func absClean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
