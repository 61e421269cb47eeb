package host

import "sync"

// PathList is an ordered list of paths shared by the host and every theme.
// All methods are safe for concurrent use; All returns a copy.
type PathList struct {
	mu    sync.RWMutex
	paths []string
}

// NewPathList creates a list seeded with paths.
func NewPathList(paths ...string) *PathList {
	l := &PathList{paths: make([]string, 0, len(paths))}
	l.paths = append(l.paths, paths...)
	return l
}

// Append adds paths to the end of the list.
func (l *PathList) Append(paths ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = append(l.paths, paths...)
}

// All returns a snapshot of the list.
func (l *PathList) All() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.paths))
	copy(out, l.paths)
	return out
}

// Contains reports whether path is in the list.
func (l *PathList) Contains(path string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, p := range l.paths {
		if p == path {
			return true
		}
	}
	return false
}

// DeleteIf removes every path for which match returns true and returns the
// removed paths in their original order.
func (l *PathList) DeleteIf(match func(string) bool) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var removed []string
	kept := l.paths[:0]
	for _, p := range l.paths {
		if match(p) {
			removed = append(removed, p)
			continue
		}
		kept = append(kept, p)
	}
	l.paths = kept
	return removed
}

// Len returns the number of paths.
func (l *PathList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.paths)
}
