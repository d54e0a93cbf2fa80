package feeds

import (
	"fmt"
	"sort"
	"sync"

	"github.com/artpricematcher/price-matcher/config"
	"github.com/artpricematcher/price-matcher/internal/parsers/xlsx"
	"github.com/artpricematcher/price-matcher/internal/storage"
)

// Registry maps source names to sources. It is filled once at startup;
// configuration only ever selects among registered names.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds or replaces a source under its name
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

// Get retrieves a source by name
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[name]
	return s, ok
}

// List returns the registered names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// For returns the source configured for a competitor
func (r *Registry) For(cfg config.FeedsConfig, competitor string) (Source, error) {
	name := cfg.SourceFor(competitor)
	s, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("feed source %q for competitor %s is not registered", name, competitor)
	}
	return s, nil
}

// InitializeDefaultSources registers the local, CSV download and XLSX download sources
func InitializeDefaultSources(r *Registry, store storage.FeedStorage, client Downloader) {
	r.Register(NewLocalSource(store))
	r.Register(NewHTTPCSVSource(client, store))
	r.Register(NewHTTPXLSXSource(client, store, xlsx.Options{}))
}

// Selector binds a registry to the feeds configuration
type Selector struct {
	registry *Registry
	cfg      config.FeedsConfig
}

// Bind returns a selector resolving sources with cfg
func (r *Registry) Bind(cfg config.FeedsConfig) *Selector {
	return &Selector{registry: r, cfg: cfg}
}

// SourceFor returns the source configured for a competitor
func (s *Selector) SourceFor(competitor string) (Source, error) {
	return s.registry.For(s.cfg, competitor)
}
