package analyzer

import (
	"fmt"

	"labvista/internal/config"
	"labvista/internal/port"
)

// ProviderFactory is a function that creates a ReportAnalyzer from a provider config.
type ProviderFactory func(cfg *config.AnalyzerProviderConfig) (port.ReportAnalyzer, error)

// registry of analyzer provider factories, populated by init() in each
// provider package.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an analyzer provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewAnalyzer creates a ReportAnalyzer from a provider config using the
// registered factory.
func NewAnalyzer(cfg *config.AnalyzerProviderConfig) (port.ReportAnalyzer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
