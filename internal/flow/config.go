package flow

import (
	"strings"

	"github.com/phrazzld/cardlink/internal/domain"
)

// ConfigurationProvider gives synchronous access to the SDK configuration
// and client token loaded earlier in the SDK lifecycle.
type ConfigurationProvider interface {
	CurrentConfiguration() (*domain.Configuration, bool)
	CurrentClientToken() (string, bool)
}

// Session is what Start captured from the ConfigurationProvider. It is passed
// to every collaborator request of the flow.
type Session struct {
	ClientToken   string
	Environment   string
	MerchantAppID string
}

// resolveSession reads the provider and checks that everything a flow needs
// is present. operation names the caller for error reporting.
func resolveSession(provider ConfigurationProvider, operation string) (Session, *domain.DomainError) {
	cfg, ok := provider.CurrentConfiguration()
	if !ok || cfg == nil {
		return Session{}, domain.NewConfigurationMissingError(operation)
	}

	token, ok := provider.CurrentClientToken()
	if !ok || strings.TrimSpace(token) == "" {
		return Session{}, domain.NewClientTokenMissingError(operation)
	}

	pm, ok := cfg.PaymentMethod(domain.PaymentMethodCardScheme)
	if !ok {
		return Session{}, domain.NewPaymentMethodNotConfiguredError(operation,
			"configuration has no "+domain.PaymentMethodCardScheme+" payment method")
	}
	if strings.TrimSpace(pm.MerchantAppID) == "" {
		return Session{}, domain.NewPaymentMethodNotConfiguredError(operation,
			domain.PaymentMethodCardScheme+" payment method has no merchant app id")
	}

	return Session{
		ClientToken:   token,
		Environment:   cfg.Environment,
		MerchantAppID: pm.MerchantAppID,
	}, nil
}
