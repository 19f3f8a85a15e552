/*
errors.go - Centralized error types for the schedule engine

PURPOSE:
  All engine error types in one place. Callers branch with errors.Is on the
  sentinels; the structured types carry the context a UI needs to render a
  useful message.

ERROR CATEGORIES:
  1. Generation errors - malformed schedule parameters
  2. Payment errors    - cascade preconditions not met

USAGE:
  if errors.Is(err, schedule.ErrAlreadySettled) {
      // "this installment is already settled"
  }

SEE ALSO:
  - generate.go: Returns InvalidScheduleError
  - cascade.go:  Returns the payment error types
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidSchedule is returned for out-of-range or malformed
	// generation parameters.
	ErrInvalidSchedule = errors.New("invalid schedule parameters")

	// ErrItemNotFound is returned when a payment targets an installment
	// that is not in the schedule. Usually means the caller's view is stale.
	ErrItemNotFound = errors.New("schedule item not found")

	// ErrAlreadySettled is returned when a payment targets an installment
	// that is already PAID or CANCELLED.
	ErrAlreadySettled = errors.New("installment already settled")

	// ErrOverpaymentExceedsSchedule is returned when a payment is larger
	// than the outstanding balance of the entire remaining schedule.
	ErrOverpaymentExceedsSchedule = errors.New("payment exceeds outstanding schedule balance")

	// ErrInvalidPayment is returned for a non-positive payment amount.
	ErrInvalidPayment = errors.New("payment amount must be positive")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidScheduleError names the offending parameter.
type InvalidScheduleError struct {
	Field  string
	Reason string
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("invalid schedule: %s %s", e.Field, e.Reason)
}

func (e *InvalidScheduleError) Unwrap() error { return ErrInvalidSchedule }

// ItemNotFoundError identifies the missing installment.
type ItemNotFoundError struct {
	ItemID ItemID
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("schedule item %s not found", e.ItemID)
}

func (e *ItemNotFoundError) Unwrap() error { return ErrItemNotFound }

// AlreadySettledError reports the settled installment and its status.
type AlreadySettledError struct {
	ItemID ItemID
	Status PaymentStatus
}

func (e *AlreadySettledError) Error() string {
	return fmt.Sprintf("installment %s is already %s", e.ItemID, e.Status)
}

func (e *AlreadySettledError) Unwrap() error { return ErrAlreadySettled }

// OverpaymentError reports how far the payment exceeded the outstanding total.
type OverpaymentError struct {
	Requested   string
	Outstanding string
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment %s exceeds outstanding balance %s", e.Requested, e.Outstanding)
}

func (e *OverpaymentError) Unwrap() error { return ErrOverpaymentExceedsSchedule }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// and the caller can recover by correcting it.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrAlreadySettled) ||
		errors.Is(err, ErrOverpaymentExceedsSchedule) ||
		errors.Is(err, ErrInvalidPayment)
}

// IsNotFound returns true if the error indicates a missing installment.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}
