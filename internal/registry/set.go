package registry

import "github.com/conneroisu/multitenancy/internal/theme"

// Set is an immutable, ordered snapshot of discovered themes.
type Set struct {
	themes []*theme.Theme
}

func newSet(themes []*theme.Theme) *Set {
	return &Set{themes: themes}
}

// Len returns the number of themes.
func (s *Set) Len() int { return len(s.themes) }

// All returns the themes in discovery order.
func (s *Set) All() []*theme.Theme {
	out := make([]*theme.Theme, len(s.themes))
	copy(out, s.themes)
	return out
}

// Names returns the theme slugs in discovery order.
func (s *Set) Names() []string {
	names := make([]string, len(s.themes))
	for i, t := range s.themes {
		names[i] = t.Name()
	}
	return names
}

// Find returns the first theme whose slug is name.
func (s *Set) Find(name string) (*theme.Theme, bool) {
	for _, t := range s.themes {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Each calls fn for every theme in order and stops at the first error.
func (s *Set) Each(fn func(*theme.Theme) error) error {
	for _, t := range s.themes {
		if err := fn(t); err != nil {
			return err
		}
	}
	return nil
}
