package integrations

import (
	"context"
	"sync"

	"github.com/conneroisu/multitenancy/internal/host"
	"github.com/conneroisu/multitenancy/internal/importmap"
	"github.com/conneroisu/multitenancy/internal/registry"
)

// ImportMap builds the per-theme import maps. The manager it creates stays
// available for rendering after the call.
type ImportMap struct {
	// PinFile is the theme pin file, relative to each theme directory.
	PinFile string

	mu      sync.Mutex
	manager *importmap.Manager
}

// NewImportMap creates the integration for the given theme pin file.
func NewImportMap(pinFile string) *ImportMap {
	return &ImportMap{PinFile: pinFile}
}

// Name implements Integration.
func (i *ImportMap) Name() string { return "importmap" }

// Call implements Integration.
func (i *ImportMap) Call(ctx context.Context, app *host.App, reg *registry.ThemeRegistry) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.manager == nil {
		i.manager = importmap.NewManager(app, reg, i.PinFile)
	}
	return i.manager.BootstrapAll(ctx)
}

// Manager returns the manager, nil before Call.
func (i *ImportMap) Manager() *importmap.Manager {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.manager
}
