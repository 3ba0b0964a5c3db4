package store

import (
	"errors"
	"fmt"
)

// Sentinels shared by the memory and PostgreSQL stores. Entity specific
// errors wrap the generic ones, so errors.Is(err, ErrNotFound) holds for
// ErrChallengeNotFound as well.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrDuplicate     = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	ErrChallengeNotFound = fmt.Errorf("%w: otp challenge", ErrNotFound)
	ErrCardNotFound      = fmt.Errorf("%w: linked card", ErrNotFound)
	ErrPaymentNotFound   = fmt.Errorf("%w: payment", ErrNotFound)

	ErrChallengeExists   = fmt.Errorf("%w: otp challenge", ErrDuplicate)
	ErrCardAlreadyLinked = fmt.Errorf("%w: linked card", ErrDuplicate)
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError adds the entity and operation to a failure inside a store.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Entity, e.Operation, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError builds a StoreError for entity (e.g. "challenge") and
// operation (e.g. "create").
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
