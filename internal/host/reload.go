package host

import (
	"errors"
	"sync"
)

// Updater is a change-watcher registered with the host's reloader. The host
// polls it between requests; ExecuteIfUpdated runs the callback only when a
// watched file changed since the last run.
type Updater interface {
	Updated() bool
	Execute() error
	ExecuteIfUpdated() (bool, error)
}

// FileWatcherFactory builds an Updater watching files and, for each directory
// key in dirs, files below it with one of the listed extensions.
type FileWatcherFactory func(files []string, dirs map[string][]string, callback func() error) (Updater, error)

// Reloaders is the host's list of registered updaters.
type Reloaders struct {
	mu   sync.RWMutex
	list []Updater
}

// NewReloaders creates an empty reloader list.
func NewReloaders() *Reloaders {
	return &Reloaders{}
}

// Add registers an updater.
func (r *Reloaders) Add(u Updater) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, u)
}

// Len returns the number of registered updaters.
func (r *Reloaders) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.list)
}

// RunIfUpdated gives every updater a chance to run and reports how many did.
// Errors from individual updaters are joined.
func (r *Reloaders) RunIfUpdated() (int, error) {
	r.mu.RLock()
	list := make([]Updater, len(r.list))
	copy(list, r.list)
	r.mu.RUnlock()

	var (
		ran  int
		errs []error
	)
	for _, u := range list {
		executed, err := u.ExecuteIfUpdated()
		if executed {
			ran++
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return ran, errors.Join(errs...)
}
