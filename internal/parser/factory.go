package parser

import (
	"fmt"
	"sort"
	"sync"

	"tradelens/internal/config"
	"tradelens/internal/domain"
	"tradelens/internal/port"
)

// Schema lists the source field names to extract for each document type.
type Schema map[domain.DocumentType][]string

// Fields returns the expected field names for t.
func (s Schema) Fields(t domain.DocumentType) []string {
	return s[t]
}

// ProviderFactory creates a DocumentExtractor from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig, schema Schema) (port.DocumentExtractor, error)

var (
	providersMu sync.RWMutex
	// registry of extraction provider factories, populated via RegisterProvider at startup.
	providers = map[string]ProviderFactory{}
)

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewExtractor creates a DocumentExtractor from a provider config using the registered factory.
func NewExtractor(cfg *config.ParserProviderConfig, schema Schema) (port.DocumentExtractor, error) {
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
	return factory(cfg, schema)
}

// NewFromConfig builds the primary extractor, chained with the secondary in a
// FallbackExtractor when one is configured.
func NewFromConfig(cfg *config.ParserConfig, schema Schema) (port.DocumentExtractor, error) {
	primary, err := NewExtractor(&cfg.Primary, schema)
	if err != nil {
		return nil, fmt.Errorf("primary extractor: %w", err)
	}
	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}
	secondary, err := NewExtractor(secondaryCfg, schema)
	if err != nil {
		return nil, fmt.Errorf("secondary extractor: %w", err)
	}
	return NewFallbackExtractor(
		[]port.DocumentExtractor{primary, secondary},
		[]string{cfg.Primary.Provider, secondaryCfg.Provider},
	), nil
}
