package domain

import "fmt"

// StepKind names a step without its payload.
type StepKind string

// Step kinds. StepCompleted is terminal.
const (
	StepCollectPhoneData        StepKind = "collect-phone-data"
	StepCollectOTPData          StepKind = "collect-otp-data"
	StepCollectCardAndPhoneData StepKind = "collect-card-and-phone-data"
	StepCollectPaymentData      StepKind = "collect-payment-data"
	StepCompleted               StepKind = "completed"
)

// Outcome is the result recorded by a terminal step.
type Outcome string

// Flow outcomes.
const (
	OutcomeLinked    Outcome = "linked"
	OutcomeUnlinked  Outcome = "unlinked"
	OutcomeSubmitted Outcome = "submitted"
)

// NextDataStep tells the caller which CollectableData variant the flow
// expects next. Steps only move forward within a flow run.
type NextDataStep interface {
	Kind() StepKind
	fmt.Stringer
	isNextDataStep()
}

// CollectPhoneData asks for the phone the given card will be linked to.
type CollectPhoneData struct {
	CardNumber string
}

// CollectOTPData asks for the code the scheme sent to PhoneNumber.
type CollectOTPData struct {
	PhoneNumber string
}

// CollectCardAndPhoneData asks for a linked card and its phone.
type CollectCardAndPhoneData struct{}

// CollectPaymentData asks for the card to charge and the payer's mobile number.
type CollectPaymentData struct{}

// Completed marks the end of a flow.
type Completed struct {
	Outcome Outcome
	// LinkedCard is set when a link flow completes.
	LinkedCard *LinkedCard
	// Payment is set when a payment flow completes.
	Payment *PaymentReceipt
}

func (CollectPhoneData) Kind() StepKind        { return StepCollectPhoneData }
func (CollectOTPData) Kind() StepKind          { return StepCollectOTPData }
func (CollectCardAndPhoneData) Kind() StepKind { return StepCollectCardAndPhoneData }
func (CollectPaymentData) Kind() StepKind      { return StepCollectPaymentData }
func (Completed) Kind() StepKind               { return StepCompleted }

func (s CollectPhoneData) String() string        { return string(s.Kind()) }
func (s CollectOTPData) String() string          { return string(s.Kind()) }
func (s CollectCardAndPhoneData) String() string { return string(s.Kind()) }
func (s CollectPaymentData) String() string      { return string(s.Kind()) }
func (s Completed) String() string               { return string(s.Kind()) + "(" + string(s.Outcome) + ")" }

func (CollectPhoneData) isNextDataStep()        {}
func (CollectOTPData) isNextDataStep()          {}
func (CollectCardAndPhoneData) isNextDataStep() {}
func (CollectPaymentData) isNextDataStep()      {}
func (Completed) isNextDataStep()               {}

// IsTerminal reports whether step ends the flow.
func IsTerminal(step NextDataStep) bool {
	return step != nil && step.Kind() == StepCompleted
}
