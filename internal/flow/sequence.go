package flow

import (
	"github.com/phrazzld/cardlink/internal/domain"
)

// Kind names a flow.
type Kind string

// Flow kinds.
const (
	KindLink    Kind = "link"
	KindUnlink  Kind = "unlink"
	KindPayment Kind = "payment"
)

// StepSequence is the fixed, ordered list of steps of one flow kind together
// with the fields each step needs before it can be submitted.
type StepSequence struct {
	kind     Kind
	steps    []domain.StepKind
	required map[domain.StepKind][]domain.Field
	outcome  domain.Outcome
}

// LinkSequence: phone data, then OTP, then linked.
func LinkSequence() StepSequence {
	return StepSequence{
		kind:  KindLink,
		steps: []domain.StepKind{domain.StepCollectPhoneData, domain.StepCollectOTPData},
		required: map[domain.StepKind][]domain.Field{
			domain.StepCollectPhoneData: {
				domain.FieldCardNumber,
				domain.FieldMobileNumber,
				domain.FieldPhoneCountryDiallingCode,
			},
			domain.StepCollectOTPData: {
				domain.FieldOTPCode,
				domain.FieldLinkToken,
			},
		},
		outcome: domain.OutcomeLinked,
	}
}

// UnlinkSequence: card and phone data, then OTP, then unlinked.
func UnlinkSequence() StepSequence {
	return StepSequence{
		kind:  KindUnlink,
		steps: []domain.StepKind{domain.StepCollectCardAndPhoneData, domain.StepCollectOTPData},
		required: map[domain.StepKind][]domain.Field{
			domain.StepCollectCardAndPhoneData: {
				domain.FieldCardNumber,
				domain.FieldMobileNumber,
				domain.FieldPhoneCountryDiallingCode,
			},
			domain.StepCollectOTPData: {
				domain.FieldOTPCode,
				domain.FieldCardNumber,
				domain.FieldLinkToken,
			},
		},
		outcome: domain.OutcomeUnlinked,
	}
}

// PaymentSequence: payment data, then submitted.
func PaymentSequence() StepSequence {
	return StepSequence{
		kind:  KindPayment,
		steps: []domain.StepKind{domain.StepCollectPaymentData},
		required: map[domain.StepKind][]domain.Field{
			domain.StepCollectPaymentData: {
				domain.FieldCardNumber,
				domain.FieldMobileNumber,
			},
		},
		outcome: domain.OutcomeSubmitted,
	}
}

// Kind returns the flow kind.
func (s StepSequence) Kind() Kind { return s.kind }

// Outcome returns the outcome recorded by the terminal step.
func (s StepSequence) Outcome() domain.Outcome { return s.outcome }

// Steps returns the non-terminal steps in order.
func (s StepSequence) Steps() []domain.StepKind {
	return append([]domain.StepKind(nil), s.steps...)
}

// Initial returns the first step.
func (s StepSequence) Initial() domain.StepKind {
	return s.steps[0]
}

// Contains reports whether step is one of the non-terminal steps.
func (s StepSequence) Contains(step domain.StepKind) bool {
	return s.index(step) >= 0
}

// Next returns the step after current. The second result is false when
// current is the last step, meaning the flow completes.
func (s StepSequence) Next(current domain.StepKind) (domain.StepKind, bool) {
	i := s.index(current)
	if i < 0 || i+1 >= len(s.steps) {
		return domain.StepCompleted, false
	}
	return s.steps[i+1], true
}

// Required returns the fields that must be present before step is submitted.
func (s StepSequence) Required(step domain.StepKind) []domain.Field {
	return append([]domain.Field(nil), s.required[step]...)
}

// StepFor builds the NextDataStep value for kind from the collected state.
func (s StepSequence) StepFor(kind domain.StepKind, state domain.FlowState) domain.NextDataStep {
	switch kind {
	case domain.StepCollectPhoneData:
		return domain.CollectPhoneData{CardNumber: state.CardNumber}
	case domain.StepCollectOTPData:
		return domain.CollectOTPData{PhoneNumber: state.FullPhoneNumber()}
	case domain.StepCollectCardAndPhoneData:
		return domain.CollectCardAndPhoneData{}
	case domain.StepCollectPaymentData:
		return domain.CollectPaymentData{}
	default:
		return domain.Completed{Outcome: s.outcome}
	}
}

func (s StepSequence) index(step domain.StepKind) int {
	for i, k := range s.steps {
		if k == step {
			return i
		}
	}
	return -1
}
