package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/events"
	"github.com/phrazzld/cardlink/internal/redact"
	"github.com/phrazzld/cardlink/internal/validation"
)

// Constructor errors.
var (
	ErrNilClient   = errors.New("flow: client cannot be nil")
	ErrNilProvider = errors.New("flow: configuration provider cannot be nil")
	ErrNilLogger   = errors.New("flow: logger cannot be nil")
)

// ErrEmptyToken is passed to the error delegate, wrapped in a collaborator
// DomainError, when the scheme accepts an OTP request but returns no token.
var ErrEmptyToken = errors.New("scheme returned an empty token")

// stepResult is what a collaborator call produced for the step just submitted.
type stepResult struct {
	linkToken  string
	linkedCard *domain.LinkedCard
	payment    *domain.PaymentReceipt
}

// performer issues the collaborator call for step and reports through done.
// It must call done exactly once, possibly on another goroutine.
type performer func(
	ctx context.Context,
	session Session,
	state domain.FlowState,
	step domain.StepKind,
	done func(stepResult, error),
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithValidator replaces the default field validator.
func WithValidator(v *validation.Validator) Option {
	return func(o *Orchestrator) {
		if v != nil {
			o.validator = v
		}
	}
}

// WithEventEmitter publishes flow lifecycle events to emitter.
func WithEventEmitter(emitter events.EventEmitter) Option {
	return func(o *Orchestrator) {
		o.emitter = emitter
	}
}

// WithValidationDelegate sets the initial validation delegate.
func WithValidationDelegate(d ValidationDelegate) Option {
	return func(o *Orchestrator) {
		o.validationDelegate = d
	}
}

// WithErrorDelegate sets the initial error delegate.
func WithErrorDelegate(d ErrorDelegate) Option {
	return func(o *Orchestrator) {
		o.errorDelegate = d
	}
}

// WithStepDelegate sets the initial step delegate.
func WithStepDelegate(d StepDelegate) Option {
	return func(o *Orchestrator) {
		o.stepDelegate = d
	}
}

// Orchestrator drives one run of a link, unlink or payment flow. The zero
// value is not usable; build one with NewLink, NewUnlink or NewPayment.
//
// All methods are safe to call from multiple goroutines, but a flow is meant
// to be driven by a single caller. Delegates are never called while the
// internal lock is held, so they may call back into the Orchestrator.
type Orchestrator struct {
	id        uuid.UUID
	sequence  StepSequence
	provider  ConfigurationProvider
	perform   performer
	validator *validation.Validator
	emitter   events.EventEmitter
	logger    *slog.Logger

	// startRequires lists fields that must be in state before Start succeeds.
	startRequires []domain.Field

	mu                 sync.Mutex
	state              domain.FlowState
	step               domain.NextDataStep
	session            Session
	inFlight           bool
	validationDelegate ValidationDelegate
	errorDelegate      ErrorDelegate
	stepDelegate       StepDelegate
}

func newOrchestrator(
	sequence StepSequence,
	provider ConfigurationProvider,
	perform performer,
	logger *slog.Logger,
	opts ...Option,
) (*Orchestrator, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	o := &Orchestrator{
		id:        uuid.New(),
		sequence:  sequence,
		provider:  provider,
		perform:   perform,
		validator: validation.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logger.With(
		"component", string(sequence.Kind())+"_flow",
		"flow_id", o.id.String(),
	)
	return o, nil
}

// ID identifies this flow run in logs and events.
func (o *Orchestrator) ID() uuid.UUID { return o.id }

// Kind returns the flow kind.
func (o *Orchestrator) Kind() Kind { return o.sequence.Kind() }

// Sequence returns the step sequence the flow follows.
func (o *Orchestrator) Sequence() StepSequence { return o.sequence }

// CurrentStep returns the step the flow is waiting on, or nil before a
// successful Start.
func (o *Orchestrator) CurrentStep() domain.NextDataStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

// State returns a copy of the collected values.
func (o *Orchestrator) State() domain.FlowState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// InFlight reports whether a collaborator call is outstanding.
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// SetValidationDelegate replaces the validation delegate. nil clears it.
func (o *Orchestrator) SetValidationDelegate(d ValidationDelegate) {
	o.mu.Lock()
	o.validationDelegate = d
	o.mu.Unlock()
}

// SetErrorDelegate replaces the error delegate. nil clears it.
func (o *Orchestrator) SetErrorDelegate(d ErrorDelegate) {
	o.mu.Lock()
	o.errorDelegate = d
	o.mu.Unlock()
}

// SetStepDelegate replaces the step delegate. nil clears it.
func (o *Orchestrator) SetStepDelegate(d StepDelegate) {
	o.mu.Lock()
	o.stepDelegate = d
	o.mu.Unlock()
}

// Start reads the configuration and client token and, when both are usable,
// moves the flow to its initial step. Failures go to the error delegate and
// leave the step unset. Calling Start on a started flow refreshes the session
// and reports the current step again without resetting collected data.
func (o *Orchestrator) Start(ctx context.Context) {
	op := o.operation("start")

	session, derr := resolveSession(o.provider, op)
	if derr != nil {
		o.fail(ctx, derr)
		return
	}

	o.mu.Lock()
	if missing := o.state.Missing(o.startRequires...); len(missing) > 0 {
		o.mu.Unlock()
		o.fail(ctx, domain.NewMissingFieldError(op, missing[0]))
		return
	}
	o.session = session
	restarted := o.step != nil
	if !restarted {
		o.step = o.sequence.StepFor(o.sequence.Initial(), o.state)
	}
	step := o.step
	o.mu.Unlock()

	if restarted {
		o.logger.DebugContext(ctx, "flow already started, reporting current step",
			"step", step.String())
	} else {
		o.logger.InfoContext(ctx, "flow started",
			"step", step.String(),
			"environment", session.Environment)
		o.emit(ctx, events.EventFlowStarted, step, nil)
	}
	o.notifyStep(step)
}

// UpdateCollectedData stores every value carried by data, valid or not, and
// reports the validation result for data to the validation delegate exactly
// once. It never calls the collaborator and never reports to the error
// delegate.
func (o *Orchestrator) UpdateCollectedData(data domain.CollectableData) {
	var errs []domain.ValidationError
	if data != nil {
		errs = o.validator.ValidateData(data)
	} else {
		errs = []domain.ValidationError{}
	}

	o.mu.Lock()
	if data != nil {
		o.state.Apply(data)
	}
	delegate := o.validationDelegate
	o.mu.Unlock()

	o.logger.Debug("collected data updated",
		"data_step", stepOf(data),
		"validation_errors", len(errs))

	if delegate != nil {
		delegate.DidReceiveValidations(errs)
	}
}

// Submit sends the data collected for the current step to the scheme. The
// collaborator is only called when every required field is present and
// valid and no earlier call is outstanding; otherwise a DomainError goes to
// the error delegate. The outcome of the call arrives later, either as a new
// step on the step delegate or as a DomainError on the error delegate.
func (o *Orchestrator) Submit(ctx context.Context) {
	op := o.operation("submit")

	o.mu.Lock()
	if derr := o.checkSubmittable(op); derr != nil {
		o.mu.Unlock()
		o.fail(ctx, derr)
		return
	}
	kind := o.step.Kind()
	state := o.state
	session := o.session
	o.inFlight = true
	o.mu.Unlock()

	o.logger.InfoContext(ctx, "submitting step",
		"step", string(kind),
		"card_number", redact.CardNumber(state.CardNumber),
		"mobile_number", redact.PhoneNumber(state.FullPhoneNumber()))

	var once sync.Once
	o.perform(ctx, session, state, kind, func(res stepResult, err error) {
		once.Do(func() {
			o.complete(ctx, op, kind, res, err)
		})
	})
}

// checkSubmittable must be called with o.mu held.
func (o *Orchestrator) checkSubmittable(op string) *domain.DomainError {
	if o.inFlight {
		return domain.NewOperationInProgressError(op)
	}
	if o.step == nil {
		return domain.NewFlowNotStartedError(op)
	}
	if domain.IsTerminal(o.step) {
		return domain.NewFlowCompletedError(op)
	}

	required := o.sequence.Required(o.step.Kind())
	if missing := o.state.Missing(required...); len(missing) > 0 {
		return domain.NewMissingFieldError(op, missing[0])
	}
	if invalid := o.validator.ValidateFields(o.state, required...); len(invalid) > 0 {
		return domain.NewInvalidInputError(op, invalid)
	}
	return nil
}

func (o *Orchestrator) complete(ctx context.Context, op string, kind domain.StepKind, res stepResult, err error) {
	o.mu.Lock()
	o.inFlight = false
	if err != nil {
		o.mu.Unlock()
		o.logger.WarnContext(ctx, "collaborator call failed",
			"step", string(kind),
			"error", redact.Error(err))
		o.fail(ctx, domain.NewCollaboratorError(op, err))
		return
	}

	if res.linkToken != "" {
		o.state.LinkToken = res.linkToken
	}

	var next domain.NextDataStep
	if nextKind, ok := o.sequence.Next(kind); ok {
		next = o.sequence.StepFor(nextKind, o.state)
	} else {
		next = domain.Completed{
			Outcome:    o.sequence.Outcome(),
			LinkedCard: res.linkedCard,
			Payment:    res.payment,
		}
	}
	o.step = next
	o.mu.Unlock()

	if domain.IsTerminal(next) {
		o.logger.InfoContext(ctx, "flow completed", "outcome", string(o.sequence.Outcome()))
		o.emit(ctx, events.EventFlowCompleted, next, map[string]string{
			"outcome": string(o.sequence.Outcome()),
		})
	} else {
		o.logger.InfoContext(ctx, "flow advanced",
			"from", string(kind),
			"to", next.String())
		o.emit(ctx, events.EventFlowStepAdvanced, next, map[string]string{
			"from": string(kind),
		})
	}
	o.notifyStep(next)
}

// fail reports err to the error delegate. It must not be called with o.mu held.
func (o *Orchestrator) fail(ctx context.Context, err *domain.DomainError) {
	o.mu.Lock()
	delegate := o.errorDelegate
	step := o.step
	o.mu.Unlock()

	o.logger.WarnContext(ctx, "flow operation failed",
		"operation", err.Operation,
		"code", err.Code,
		"field", string(err.Field))
	o.emit(ctx, events.EventFlowFailed, step, map[string]string{
		"operation": err.Operation,
		"code":      err.Code,
	})

	if delegate != nil {
		delegate.DidReceiveError(err)
	}
}

func (o *Orchestrator) notifyStep(step domain.NextDataStep) {
	o.mu.Lock()
	delegate := o.stepDelegate
	o.mu.Unlock()
	if delegate != nil {
		delegate.DidReceiveStep(step)
	}
}

// emit publishes an event if an emitter is configured. Emission failures are
// logged and otherwise ignored.
func (o *Orchestrator) emit(ctx context.Context, eventType events.EventType, step domain.NextDataStep, payload interface{}) {
	if o.emitter == nil {
		return
	}
	var stepName string
	if step != nil {
		stepName = string(step.Kind())
	}

	event, err := events.NewFlowEvent(eventType, o.id, string(o.sequence.Kind()), stepName, payload)
	if err != nil {
		o.logger.Error("failed to build flow event", "error", err, "event_type", eventType)
		return
	}
	if err := o.emitter.EmitEvent(context.WithoutCancel(ctx), event); err != nil {
		o.logger.Error("failed to emit flow event",
			"error", err,
			"event_type", eventType,
			"event_id", event.ID)
	}
}

func (o *Orchestrator) operation(name string) string {
	return fmt.Sprintf("%s.%s", o.sequence.Kind(), name)
}

func stepOf(data domain.CollectableData) string {
	if data == nil {
		return ""
	}
	return string(data.Step())
}
