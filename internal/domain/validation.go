package domain

// Field identifies one value a flow collects from the user or the scheme.
type Field string

// Fields tracked by FlowState.
const (
	FieldMobileNumber             Field = "mobileNumber"
	FieldPhoneCountryDiallingCode Field = "phoneCountryDiallingCode"
	FieldOTPCode                  Field = "otpCode"
	FieldCardNumber               Field = "cardNumber"
	FieldExpiredTime              Field = "expiredTime"
	FieldLinkToken                Field = "linkToken"
)

// ValidationCode is the stable identifier of a ValidationError.
type ValidationCode string

// Validation codes, one per validated field kind.
const (
	CodeInvalidPhoneNumber            ValidationCode = "invalid-phone-number"
	CodeInvalidPhoneNumberCountryCode ValidationCode = "invalid-phone-number-country-code"
	CodeInvalidOTPCode                ValidationCode = "invalid-otp-code"
	CodeInvalidCardNumber             ValidationCode = "invalid-card-number"
)

// ValidationError describes a single user input problem. It is recoverable
// by correcting the input and is passed around as data, never returned as
// an error value.
type ValidationError struct {
	Code    ValidationCode `json:"code"`
	Message string         `json:"message"`
	Field   Field          `json:"field"`
}
