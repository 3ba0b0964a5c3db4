package validation

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/cardlink/internal/domain"
)

var (
	mobilePattern      = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	mobileShapePattern = regexp.MustCompile(`^\+?[0-9]+$`)
	dialCodePattern    = regexp.MustCompile(`^\+[0-9]{1,3}$`)
	otpPattern         = regexp.MustCompile(`^[0-9]{4,6}$`)
	cardNumberPattern  = regexp.MustCompile(`^[0-9]{8,19}$`)
)

// Tags registered on the underlying validator.
const (
	tagMobile   = "mobile"
	tagDialCode = "dialcode"
	tagOTP      = "otp"
	tagPAN      = "pan"
	tagRequired = "required"
)

// PhoneNormalizer checks a mobile number against a numbering plan.
type PhoneNormalizer interface {
	// Normalize returns the canonical form of number, or an error when the
	// number is not valid. Validator only uses the error.
	Normalize(number string) (string, error)
}

// Option configures a Validator.
type Option func(*Validator)

// WithPhoneNormalizer delegates mobile number checks to n. The number the
// caller collected is still the one stored and sent to the scheme; the
// canonical form n returns is not substituted for it.
func WithPhoneNormalizer(n PhoneNormalizer) Option {
	return func(v *Validator) {
		v.normalizer = n
	}
}

// Validator runs the field rules. It holds no per-call state and is safe
// for concurrent use.
type Validator struct {
	validate   *validator.Validate
	normalizer PhoneNormalizer
}

// New creates a Validator with the field rules registered.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}

	v.validate = validator.New()
	mustRegister(v.validate, tagMobile, v.isMobileNumber)
	mustRegister(v.validate, tagDialCode, matches(dialCodePattern))
	mustRegister(v.validate, tagOTP, matches(otpPattern))
	mustRegister(v.validate, tagPAN, matches(cardNumberPattern))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn func(string) bool) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
	if err != nil {
		panic("validation: register " + tag + ": " + err.Error())
	}
}

func matches(re *regexp.Regexp) func(string) bool {
	return re.MatchString
}

func (v *Validator) isMobileNumber(value string) bool {
	if v.normalizer == nil {
		return mobilePattern.MatchString(value)
	}
	if !mobileShapePattern.MatchString(value) {
		return false
	}
	// Only validity matters here; the collected value is kept as entered
	_, err := v.normalizer.Normalize(value)
	return err == nil
}

// rule describes how one field kind is checked and reported.
type rule struct {
	tag        string
	code       domain.ValidationCode
	field      domain.Field
	emptyMsg   string
	invalidMsg string
}

var rules = map[domain.Field]rule{
	domain.FieldMobileNumber: {
		tag:        tagMobile,
		code:       domain.CodeInvalidPhoneNumber,
		field:      domain.FieldMobileNumber,
		emptyMsg:   "Mobile number cannot be empty",
		invalidMsg: "Mobile number is not valid",
	},
	domain.FieldPhoneCountryDiallingCode: {
		tag:        tagDialCode,
		code:       domain.CodeInvalidPhoneNumberCountryCode,
		field:      domain.FieldPhoneCountryDiallingCode,
		emptyMsg:   "Country dialling code cannot be empty",
		invalidMsg: "Country dialling code is not valid",
	},
	domain.FieldOTPCode: {
		tag:        tagOTP,
		code:       domain.CodeInvalidOTPCode,
		field:      domain.FieldOTPCode,
		emptyMsg:   "OTP code cannot be empty",
		invalidMsg: "OTP code is not valid",
	},
	domain.FieldCardNumber: {
		tag:        tagPAN,
		code:       domain.CodeInvalidCardNumber,
		field:      domain.FieldCardNumber,
		emptyMsg:   "Card number cannot be empty",
		invalidMsg: "Card number is not valid",
	},
}

func (v *Validator) check(field domain.Field, value string) *domain.ValidationError {
	r, ok := rules[field]
	if !ok {
		return nil
	}

	err := v.validate.Var(strings.TrimSpace(value), tagRequired+","+r.tag)
	if err == nil {
		return nil
	}

	msg := r.invalidMsg
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Tag() == tagRequired {
		msg = r.emptyMsg
	}
	return &domain.ValidationError{
		Code:    r.code,
		Message: msg,
		Field:   r.field,
	}
}

// MobileNumber validates a mobile number.
func (v *Validator) MobileNumber(value string) *domain.ValidationError {
	return v.check(domain.FieldMobileNumber, value)
}

// DiallingCode validates a country dialling code such as "+971".
func (v *Validator) DiallingCode(value string) *domain.ValidationError {
	return v.check(domain.FieldPhoneCountryDiallingCode, value)
}

// OTPCode validates a one-time code.
func (v *Validator) OTPCode(value string) *domain.ValidationError {
	return v.check(domain.FieldOTPCode, value)
}

// CardNumber validates a scheme card number. Luhn and brand checks are not
// applied here.
func (v *Validator) CardNumber(value string) *domain.ValidationError {
	return v.check(domain.FieldCardNumber, value)
}

// HasRule reports whether field has a format rule.
func HasRule(field domain.Field) bool {
	_, ok := rules[field]
	return ok
}
