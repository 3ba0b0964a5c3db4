package validation

import "github.com/phrazzld/cardlink/internal/domain"

var defaultValidator = New()

// Default returns the shared Validator without a phone normalizer.
func Default() *Validator {
	return defaultValidator
}

// ValidateData validates every string carried by data using the default
// Validator. See (*Validator).ValidateData.
func ValidateData(data domain.CollectableData) []domain.ValidationError {
	return defaultValidator.ValidateData(data)
}

// ValidateData runs the field rules for each value carried by data and
// returns the failures in a fixed order: card number, then mobile number,
// then dialling code. It returns an empty, non-nil slice when everything is
// valid. It never touches flow state.
func (v *Validator) ValidateData(data domain.CollectableData) []domain.ValidationError {
	switch d := data.(type) {
	case domain.PhoneData:
		return collect(
			v.MobileNumber(d.MobileNumber),
			v.DiallingCode(d.PhoneCountryDiallingCode),
		)
	case domain.OTPData:
		return collect(v.OTPCode(d.OTPCode))
	case domain.CardAndPhoneData:
		return collect(
			v.CardNumber(d.Card.CardNumber),
			v.MobileNumber(d.Phone.MobileNumber),
			v.DiallingCode(d.Phone.PhoneCountryDiallingCode),
		)
	case domain.PaymentData:
		return collect(
			v.CardNumber(d.CardNumber),
			v.MobileNumber(d.MobileNumber),
		)
	default:
		return []domain.ValidationError{}
	}
}

// ValidateFields runs the format rule of each field that has one against the
// value stored in state. Fields without a rule are skipped.
func (v *Validator) ValidateFields(state domain.FlowState, fields ...domain.Field) []domain.ValidationError {
	results := make([]*domain.ValidationError, 0, len(fields))
	for _, f := range fields {
		results = append(results, v.check(f, state.Value(f)))
	}
	return collect(results...)
}

func collect(results ...*domain.ValidationError) []domain.ValidationError {
	errs := make([]domain.ValidationError, 0, len(results))
	for _, r := range results {
		if r != nil {
			errs = append(errs, *r)
		}
	}
	return errs
}
