package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors describing the kind of a DomainError. Callers match them
// with errors.Is; the DomainError that carries them also unwraps to the
// collaborator error that caused it, if any.
var (
	// ErrConfigurationMissing is returned when no SDK configuration has been loaded.
	ErrConfigurationMissing = errors.New("sdk configuration is missing")

	// ErrClientTokenMissing is returned when no client token is available.
	ErrClientTokenMissing = errors.New("client token is missing")

	// ErrPaymentMethodNotConfigured is returned when the configuration has no
	// usable entry for the card scheme payment method.
	ErrPaymentMethodNotConfigured = errors.New("card scheme payment method is not configured")

	// ErrMissingField is returned by submit when a field required by the
	// current step has not been collected.
	ErrMissingField = errors.New("required field is missing")

	// ErrInvalidInput is returned by submit when collected fields are present
	// but fail format validation.
	ErrInvalidInput = errors.New("collected data is invalid")

	// ErrOperationInProgress is returned when submit is called while a
	// previous collaborator call is still outstanding.
	ErrOperationInProgress = errors.New("operation already in progress")

	// ErrCollaborator is returned when the scheme collaborator reports a failure.
	ErrCollaborator = errors.New("collaborator operation failed")

	// ErrFlowNotStarted is returned when submit is called before a successful start.
	ErrFlowNotStarted = errors.New("flow has not been started")

	// ErrFlowCompleted is returned when submit is called on a finished flow.
	ErrFlowCompleted = errors.New("flow already completed")
)

// Stable codes carried by DomainError.
const (
	CodeConfigurationMissing       = "missing-configuration"
	CodeClientTokenMissing         = "missing-client-token"
	CodePaymentMethodNotConfigured = "missing-payment-method-configuration"
	CodeMissingField               = "missing-field"
	CodeInvalidInput               = "invalid-collected-data"
	CodeOperationInProgress        = "operation-in-progress"
	CodeCollaboratorFailure        = "collaborator-failure"
	CodeFlowNotStarted             = "flow-not-started"
	CodeFlowCompleted              = "flow-completed"
)

// DomainError is a flow-fatal error. It is always delivered through the
// error delegate and never resets flow state on its own.
type DomainError struct {
	// Code is a stable identifier, one of the Code* constants.
	Code string
	// Operation names the flow operation that failed, e.g. "link.submit".
	Operation string
	// Field is set for missing-field errors.
	Field Field
	// Message is a human readable description.
	Message string
	// Validations holds the validation failures behind an invalid-input error.
	Validations []ValidationError

	kind error
	// Err is the underlying cause, e.g. the collaborator error, unchanged.
	Err error
}

// Error implements the error interface for DomainError.
func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString(e.Operation)
	b.WriteString(" failed: ")
	b.WriteString(e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the sentinel kind and the underlying cause so that
// errors.Is works for either.
func (e *DomainError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Kind returns the sentinel error describing this DomainError.
func (e *DomainError) Kind() error {
	return e.kind
}

func newDomainError(kind error, code, operation, message string) *DomainError {
	return &DomainError{
		Code:      code,
		Operation: operation,
		Message:   message,
		kind:      kind,
	}
}

// NewConfigurationMissingError reports an absent SDK configuration.
func NewConfigurationMissingError(operation string) *DomainError {
	return newDomainError(ErrConfigurationMissing, CodeConfigurationMissing, operation,
		"sdk configuration has not been loaded")
}

// NewClientTokenMissingError reports an absent client token.
func NewClientTokenMissingError(operation string) *DomainError {
	return newDomainError(ErrClientTokenMissing, CodeClientTokenMissing, operation,
		"client token has not been set")
}

// NewPaymentMethodNotConfiguredError reports a configuration without a usable
// card scheme payment method.
func NewPaymentMethodNotConfiguredError(operation string, detail string) *DomainError {
	return newDomainError(ErrPaymentMethodNotConfigured, CodePaymentMethodNotConfigured, operation, detail)
}

// NewMissingFieldError reports a required field that was never collected.
func NewMissingFieldError(operation string, field Field) *DomainError {
	err := newDomainError(ErrMissingField, CodeMissingField, operation,
		fmt.Sprintf("required field %q is missing", field))
	err.Field = field
	return err
}

// NewInvalidInputError reports present but malformed fields.
func NewInvalidInputError(operation string, validations []ValidationError) *DomainError {
	codes := make([]string, 0, len(validations))
	for _, v := range validations {
		codes = append(codes, string(v.Code))
	}
	err := newDomainError(ErrInvalidInput, CodeInvalidInput, operation,
		"collected data is invalid: "+strings.Join(codes, ", "))
	err.Validations = append([]ValidationError(nil), validations...)
	if len(validations) > 0 {
		err.Field = validations[0].Field
	}
	return err
}

// NewOperationInProgressError reports a submit issued while another is pending.
func NewOperationInProgressError(operation string) *DomainError {
	return newDomainError(ErrOperationInProgress, CodeOperationInProgress, operation,
		"a previous operation has not completed yet")
}

// NewCollaboratorError wraps a collaborator failure unchanged.
func NewCollaboratorError(operation string, cause error) *DomainError {
	err := newDomainError(ErrCollaborator, CodeCollaboratorFailure, operation,
		"card scheme operation failed")
	err.Err = cause
	return err
}

// NewFlowNotStartedError reports a submit issued before start succeeded.
func NewFlowNotStartedError(operation string) *DomainError {
	return newDomainError(ErrFlowNotStarted, CodeFlowNotStarted, operation,
		"start must succeed before data can be submitted")
}

// NewFlowCompletedError reports a submit issued after the flow finished.
func NewFlowCompletedError(operation string) *DomainError {
	return newDomainError(ErrFlowCompleted, CodeFlowCompleted, operation,
		"flow has already reached its final step")
}
