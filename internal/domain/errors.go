// Package domain holds the business rules shared by every caller of the
// core: the error taxonomy, the quote and bill status machines, and the
// mutation gates each status permits.
//
// All failures are local validation failures returned as typed errors so
// the calling UI can render inline messages; nothing here is retried.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match these with errors.Is.
var (
	// ErrInvalidQuantity is returned for line quantities below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrDiscountExceedsLineValue signals that a per-line discount was
	// larger than the line amount and has been clamped. It is a
	// recoverable warning: the returned totals are valid.
	ErrDiscountExceedsLineValue = errors.New("discount exceeds line value")

	// ErrInvalidStatusTransition is returned for transitions the status
	// tables do not allow.
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrBillClosed is returned when applying a payment to a paid or
	// cancelled bill.
	ErrBillClosed = errors.New("bill is closed")

	// ErrInvalidAmount is returned for zero or negative money amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrPaymentExceedsBalance is returned when a payment is larger than
	// the bill's outstanding balance. The payment is not clamped; the
	// caller must resubmit a smaller amount.
	ErrPaymentExceedsBalance = errors.New("payment exceeds outstanding balance")

	// ErrInvalidConversionSource is returned when converting a quote that
	// is not in accepted status.
	ErrInvalidConversionSource = errors.New("only accepted quotes can be converted")

	// ErrNotFound is returned by storage lookups for missing records.
	ErrNotFound = errors.New("not found")

	// ErrEditNotAllowed is returned for item/discount/tax edits in a
	// status that does not permit them.
	ErrEditNotAllowed = errors.New("document status does not permit edits")

	// ErrDeleteNotAllowed is returned for deletes in a status that does
	// not permit them.
	ErrDeleteNotAllowed = errors.New("document status does not permit delete")
)

// ValidationError wraps a sentinel error with human-readable details.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransitionError reports an illegal status transition. It unwraps to
// ErrInvalidStatusTransition.
type TransitionError struct {
	Entity string // "quote" or "bill"
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot transition from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidStatusTransition
}
