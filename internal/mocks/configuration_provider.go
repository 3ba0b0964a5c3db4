package mocks

import (
	"sync"

	"github.com/phrazzld/cardlink/internal/domain"
)

// Default values used by NewMockConfigurationProvider.
const (
	DefaultClientToken   = "test-client-token"
	DefaultMerchantAppID = "merchant-app-1"
	DefaultEnvironment   = "sandbox"
)

// MockConfigurationProvider implements flow.ConfigurationProvider for
// testing. A nil Configuration or an empty ClientToken is reported as absent.
type MockConfigurationProvider struct {
	mu            sync.Mutex
	Configuration *domain.Configuration
	ClientToken   string
}

// NewMockConfigurationProvider returns a provider with a usable card scheme
// configuration and client token.
func NewMockConfigurationProvider() *MockConfigurationProvider {
	return &MockConfigurationProvider{
		Configuration: ValidConfiguration(),
		ClientToken:   DefaultClientToken,
	}
}

// ValidConfiguration returns a configuration with a card scheme payment method.
func ValidConfiguration() *domain.Configuration {
	return &domain.Configuration{
		Environment: DefaultEnvironment,
		PaymentMethods: []domain.PaymentMethodConfig{
			{
				ID:            "pm-card-scheme",
				Type:          domain.PaymentMethodCardScheme,
				MerchantAppID: DefaultMerchantAppID,
			},
		},
	}
}

// CurrentConfiguration implements flow.ConfigurationProvider.
func (m *MockConfigurationProvider) CurrentConfiguration() (*domain.Configuration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Configuration, m.Configuration != nil
}

// CurrentClientToken implements flow.ConfigurationProvider.
func (m *MockConfigurationProvider) CurrentClientToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ClientToken, m.ClientToken != ""
}

// SetClientToken replaces the client token.
func (m *MockConfigurationProvider) SetClientToken(token string) {
	m.mu.Lock()
	m.ClientToken = token
	m.mu.Unlock()
}

// SetConfiguration replaces the configuration.
func (m *MockConfigurationProvider) SetConfiguration(cfg *domain.Configuration) {
	m.mu.Lock()
	m.Configuration = cfg
	m.mu.Unlock()
}
