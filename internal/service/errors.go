package service

import (
	"errors"
	"fmt"

	"tillpos/internal/money"
)

// Domain errors. Validation errors (ErrInvalidAmount, ErrInvalidDiscount,
// PaymentMismatchError) are caller contract violations: rejected synchronously
// and never retried. PersistenceError is transient — the caller may retry the
// same request because no in-memory state is mutated until the store accepts
// the write.
var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidDiscount = errors.New("discount exceeds item value")
	ErrRegisterClosed  = errors.New("register is closed")
	ErrNoOpenRegister  = errors.New("no open register")
	ErrRegisterAlreadyOpen = errors.New("operator already has an open register")
	ErrSaleNotCompleted    = errors.New("sale is not completed")
	ErrUnknownTender       = errors.New("unknown payment method")
)

// PaymentMismatchError is returned when the tender sum does not exactly equal
// the sale total. Both amounts are carried so the operator sees a precise
// message.
type PaymentMismatchError struct {
	Expected money.Money
	Actual   money.Money
}

func (e *PaymentMismatchError) Error() string {
	return fmt.Sprintf("payment mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// PersistenceError wraps a failed write to the durable store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
