package flow

import "github.com/phrazzld/cardlink/internal/domain"

// ValidationDelegate receives live, non-fatal validation feedback. It is
// called exactly once per UpdateCollectedData call; an empty slice means the
// supplied fields are currently valid.
type ValidationDelegate interface {
	DidReceiveValidations(errs []domain.ValidationError)
}

// ErrorDelegate receives flow-fatal errors from Start and Submit. The flow is
// never reset automatically; the caller decides whether to retry, abandon or
// build a new flow.
type ErrorDelegate interface {
	DidReceiveError(err *domain.DomainError)
}

// StepDelegate is told whenever the flow moves to a new step, including the
// initial step set by Start and the terminal Completed step.
type StepDelegate interface {
	DidReceiveStep(step domain.NextDataStep)
}

// ValidationDelegateFunc adapts a function to ValidationDelegate.
type ValidationDelegateFunc func(errs []domain.ValidationError)

// DidReceiveValidations calls f(errs).
func (f ValidationDelegateFunc) DidReceiveValidations(errs []domain.ValidationError) { f(errs) }

// ErrorDelegateFunc adapts a function to ErrorDelegate.
type ErrorDelegateFunc func(err *domain.DomainError)

// DidReceiveError calls f(err).
func (f ErrorDelegateFunc) DidReceiveError(err *domain.DomainError) { f(err) }

// StepDelegateFunc adapts a function to StepDelegate.
type StepDelegateFunc func(step domain.NextDataStep)

// DidReceiveStep calls f(step).
func (f StepDelegateFunc) DidReceiveStep(step domain.NextDataStep) { f(step) }
