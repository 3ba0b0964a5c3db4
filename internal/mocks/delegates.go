package mocks

import (
	"sync"

	"github.com/phrazzld/cardlink/internal/domain"
)

// RecordingDelegate implements flow.ValidationDelegate, flow.ErrorDelegate
// and flow.StepDelegate and records every call.
type RecordingDelegate struct {
	mu          sync.Mutex
	validations [][]domain.ValidationError
	errors      []*domain.DomainError
	steps       []domain.NextDataStep
}

// NewRecordingDelegate creates an empty RecordingDelegate.
func NewRecordingDelegate() *RecordingDelegate {
	return &RecordingDelegate{}
}

// DidReceiveValidations implements flow.ValidationDelegate.
func (d *RecordingDelegate) DidReceiveValidations(errs []domain.ValidationError) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.validations = append(d.validations, errs)
}

// DidReceiveError implements flow.ErrorDelegate.
func (d *RecordingDelegate) DidReceiveError(err *domain.DomainError) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors = append(d.errors, err)
}

// DidReceiveStep implements flow.StepDelegate.
func (d *RecordingDelegate) DidReceiveStep(step domain.NextDataStep) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.steps = append(d.steps, step)
}

// Validations returns every validation report in order.
func (d *RecordingDelegate) Validations() [][]domain.ValidationError {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]domain.ValidationError(nil), d.validations...)
}

// Errors returns every reported error in order.
func (d *RecordingDelegate) Errors() []*domain.DomainError {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*domain.DomainError(nil), d.errors...)
}

// LastError returns the most recent error, or nil.
func (d *RecordingDelegate) LastError() *domain.DomainError {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.errors) == 0 {
		return nil
	}
	return d.errors[len(d.errors)-1]
}

// Steps returns every reported step in order.
func (d *RecordingDelegate) Steps() []domain.NextDataStep {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.NextDataStep(nil), d.steps...)
}

// LastStep returns the most recent step, or nil.
func (d *RecordingDelegate) LastStep() domain.NextDataStep {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.steps) == 0 {
		return nil
	}
	return d.steps[len(d.steps)-1]
}

// Reset clears all recorded calls.
func (d *RecordingDelegate) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.validations = nil
	d.errors = nil
	d.steps = nil
}
