package config

import (
	"sync"

	"github.com/phrazzld/cardlink/internal/domain"
)

// Provider is the process-wide store for the SDK configuration and client
// token. Flows read it through flow.ConfigurationProvider; the host updates
// it when a new configuration or token arrives.
type Provider struct {
	mu          sync.RWMutex
	config      *domain.Configuration
	clientToken string
}

// NewProvider creates a Provider. Either value may be empty and set later.
func NewProvider(cfg *domain.Configuration, clientToken string) *Provider {
	p := &Provider{}
	p.SetConfiguration(cfg)
	p.SetClientToken(clientToken)
	return p
}

// ProviderFromConfig seeds a Provider from the loaded application config.
func ProviderFromConfig(cfg *Config) *Provider {
	if cfg == nil {
		return NewProvider(nil, "")
	}
	sdk := cfg.SDK
	if len(sdk.PaymentMethods) == 0 {
		return NewProvider(nil, cfg.Scheme.ClientToken)
	}
	return NewProvider(&sdk, cfg.Scheme.ClientToken)
}

// CurrentConfiguration returns a copy of the stored configuration.
func (p *Provider) CurrentConfiguration() (*domain.Configuration, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.config == nil {
		return nil, false
	}
	return cloneConfiguration(p.config), true
}

// CurrentClientToken returns the stored client token.
func (p *Provider) CurrentClientToken() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clientToken, p.clientToken != ""
}

// SetConfiguration stores a copy of cfg. nil clears it.
func (p *Provider) SetConfiguration(cfg *domain.Configuration) {
	var stored *domain.Configuration
	if cfg != nil {
		stored = cloneConfiguration(cfg)
	}
	p.mu.Lock()
	p.config = stored
	p.mu.Unlock()
}

// SetClientToken stores token. An empty token clears it.
func (p *Provider) SetClientToken(token string) {
	p.mu.Lock()
	p.clientToken = token
	p.mu.Unlock()
}

func cloneConfiguration(cfg *domain.Configuration) *domain.Configuration {
	c := *cfg
	c.PaymentMethods = append([]domain.PaymentMethodConfig(nil), cfg.PaymentMethods...)
	return &c
}
