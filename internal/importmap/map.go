// Package importmap keeps one independent script import map per theme. Each
// map inherits the host's shared pins and is overridden by the theme's own.
package importmap

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Pin maps a module specifier to a script path.
type Pin struct {
	Name    string `json:"name" yaml:"name"`
	To      string `json:"to" yaml:"to"`
	Preload bool   `json:"preload,omitempty" yaml:"preload,omitempty"`
}

// Map is an ordered set of pins keyed by name. Re-pinning a name replaces the
// target in place, so later draws win without reordering the map.
//
// A Map is built by one goroutine and only read once published.
type Map struct {
	pins  []Pin
	index map[string]int
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

// Pin adds or replaces name. An empty to defaults to name + ".js".
func (m *Map) Pin(name, to string, preload bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if to == "" {
		to = name + ".js"
	}
	p := Pin{Name: name, To: to, Preload: preload}
	if i, ok := m.index[name]; ok {
		m.pins[i] = p
		return
	}
	m.index[name] = len(m.pins)
	m.pins = append(m.pins, p)
}

// Lookup returns the pin for name.
func (m *Map) Lookup(name string) (Pin, bool) {
	i, ok := m.index[name]
	if !ok {
		return Pin{}, false
	}
	return m.pins[i], true
}

// Pins returns every pin in first-pinned order.
func (m *Map) Pins() []Pin {
	out := make([]Pin, len(m.pins))
	copy(out, m.pins)
	return out
}

// Preloads returns the pins marked for module preloading.
func (m *Map) Preloads() []Pin {
	var out []Pin
	for _, p := range m.pins {
		if p.Preload {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of pins.
func (m *Map) Len() int { return len(m.pins) }

// JSON renders the browser import map, {"imports": {...}}, keeping pin order.
func (m *Map) JSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"imports":{`)
	for i, p := range m.pins {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.To)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}
