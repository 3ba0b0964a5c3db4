package domain

import "strings"

// FlowState accumulates the values a single flow has collected so far. It is
// owned by exactly one orchestrator and copied by value when handed out.
type FlowState struct {
	MobileNumber             string
	PhoneCountryDiallingCode string
	OTPCode                  string
	CardNumber               string
	ExpiredTime              string
	LinkToken                string
}

// Apply writes every string carried by data into the state, valid or not.
// Surrounding whitespace is dropped so the stored value is the one the field
// rules check and the one sent to the scheme.
func (s *FlowState) Apply(data CollectableData) {
	t := strings.TrimSpace
	switch d := data.(type) {
	case PhoneData:
		s.MobileNumber = t(d.MobileNumber)
		s.PhoneCountryDiallingCode = t(d.PhoneCountryDiallingCode)
	case OTPData:
		s.OTPCode = t(d.OTPCode)
	case CardAndPhoneData:
		s.CardNumber = t(d.Card.CardNumber)
		s.ExpiredTime = t(d.Card.ExpiredTime)
		s.MobileNumber = t(d.Phone.MobileNumber)
		s.PhoneCountryDiallingCode = t(d.Phone.PhoneCountryDiallingCode)
	case PaymentData:
		s.CardNumber = t(d.CardNumber)
		s.MobileNumber = t(d.MobileNumber)
	}
}

// Value returns the stored value of field.
func (s FlowState) Value(field Field) string {
	switch field {
	case FieldMobileNumber:
		return s.MobileNumber
	case FieldPhoneCountryDiallingCode:
		return s.PhoneCountryDiallingCode
	case FieldOTPCode:
		return s.OTPCode
	case FieldCardNumber:
		return s.CardNumber
	case FieldExpiredTime:
		return s.ExpiredTime
	case FieldLinkToken:
		return s.LinkToken
	default:
		return ""
	}
}

// Missing returns the fields, in the order given, whose value is empty or
// whitespace only.
func (s FlowState) Missing(fields ...Field) []Field {
	var missing []Field
	for _, f := range fields {
		if strings.TrimSpace(s.Value(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// FullPhoneNumber joins the dialling code and mobile number.
func (s FlowState) FullPhoneNumber() string {
	return s.PhoneCountryDiallingCode + s.MobileNumber
}
