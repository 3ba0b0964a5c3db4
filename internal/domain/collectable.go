package domain

// CollectableData is the input a user supplies for one step. The set of
// variants is closed; switch on the concrete type to handle each one.
type CollectableData interface {
	// Step names the step kind this data belongs to.
	Step() StepKind
	isCollectableData()
}

// PhoneData carries a mobile number and its dialling code.
type PhoneData struct {
	MobileNumber             string
	PhoneCountryDiallingCode string
}

// OTPData carries the one-time code sent by the scheme.
type OTPData struct {
	OTPCode string
}

// Card identifies a physical scheme card.
type Card struct {
	CardNumber  string
	ExpiredTime string
}

// CardAndPhoneData carries a card together with the phone it is linked to.
type CardAndPhoneData struct {
	Card  Card
	Phone PhoneData
}

// PaymentData carries the card to charge and the payer's mobile number.
type PaymentData struct {
	CardNumber   string
	MobileNumber string
}

func (PhoneData) Step() StepKind        { return StepCollectPhoneData }
func (OTPData) Step() StepKind          { return StepCollectOTPData }
func (CardAndPhoneData) Step() StepKind { return StepCollectCardAndPhoneData }
func (PaymentData) Step() StepKind      { return StepCollectPaymentData }

func (PhoneData) isCollectableData()        {}
func (OTPData) isCollectableData()          {}
func (CardAndPhoneData) isCollectableData() {}
func (PaymentData) isCollectableData()      {}
