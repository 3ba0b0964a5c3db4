package domain

import "strings"

// PaymentMethodCardScheme is the payment method type handled by this engine.
const PaymentMethodCardScheme = "CARD_SCHEME"

// PaymentMethodConfig is the backend configuration of one payment method.
type PaymentMethodConfig struct {
	ID            string `json:"id" mapstructure:"id"`
	Type          string `json:"type" mapstructure:"type"`
	MerchantAppID string `json:"merchant_app_id" mapstructure:"merchant_app_id"`
}

// Configuration is the SDK configuration snapshot a flow reads at start.
type Configuration struct {
	Environment    string                `json:"environment" mapstructure:"environment"`
	PaymentMethods []PaymentMethodConfig `json:"payment_methods" mapstructure:"payment_methods"`
}

// PaymentMethod returns the first payment method of the given type.
func (c *Configuration) PaymentMethod(methodType string) (PaymentMethodConfig, bool) {
	if c == nil {
		return PaymentMethodConfig{}, false
	}
	for _, pm := range c.PaymentMethods {
		if strings.EqualFold(pm.Type, methodType) {
			return pm, true
		}
	}
	return PaymentMethodConfig{}, false
}
