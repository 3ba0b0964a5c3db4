package domain

import "time"

// LinkedCard is a scheme card linked to a phone number.
type LinkedCard struct {
	CardNumber  string    `json:"card_number"`
	ExpiredTime string    `json:"expired_time,omitempty"`
	LinkedAt    time.Time `json:"linked_at"`
}

// PaymentReceipt is returned by the scheme when a payment request is accepted.
type PaymentReceipt struct {
	PaymentID  string    `json:"payment_id"`
	CardNumber string    `json:"card_number"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
