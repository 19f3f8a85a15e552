/*
store.go - Persistence interface for payment plans and history

PURPOSE:
  Defines the boundary between the plan service and the database. The
  engine itself never touches storage; the service loads a plan, runs the
  pure computation, and writes the result back through this interface.

PAYMENT HISTORY CONTRACT:
  Payment records are APPEND-ONLY. No Update, no Delete. Every cascade
  appends one record per breakdown line; the records are the audit trail
  that explains how each installment reached its paid amount.

IMPLEMENTATIONS:
  - store/sqlite:       production store (WAL, transactional writes)
  - payables/store:     in-memory store for tests and dev

SEE ALSO:
  - service.go: The only consumer of this interface
*/
package payables

import (
	"context"
	"errors"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrPlanNotFound is returned when a plan ID does not exist.
	ErrPlanNotFound = errors.New("payment plan not found")

	// ErrPlanHasPayments is returned when regeneration is attempted on a
	// plan that has already received money. The schedule is locked once
	// the first payment lands.
	ErrPlanHasPayments = errors.New("plan already has recorded payments")

	// ErrItemNotEditable is returned when cancelling or rescheduling an
	// installment that has received a payment.
	ErrItemNotEditable = errors.New("installment is no longer editable")

	// ErrNoOpenInstallments is returned when a cancellation has no open
	// installment left to absorb the cancelled balance.
	ErrNoOpenInstallments = errors.New("no open installments to absorb the balance")

	// ErrScheduleCorrupted is returned when a post-operation validation
	// fails. This is an internal invariant breach, not caller error.
	ErrScheduleCorrupted = errors.New("schedule failed invariant validation")
)

// =============================================================================
// PLAN STORE
// =============================================================================

// PlanStore persists plans and their append-only payment history.
type PlanStore interface {
	// SavePlan inserts or replaces a plan together with its schedule items.
	SavePlan(ctx context.Context, plan *PaymentPlan) error

	// GetPlan returns the plan with its items in installment order.
	// Returns ErrPlanNotFound if absent.
	GetPlan(ctx context.Context, id PlanID) (*PaymentPlan, error)

	// ListPlans returns all plans, newest first.
	ListPlans(ctx context.Context) ([]*PaymentPlan, error)

	// AppendPayments appends history records. Append-only: implementations
	// must not expose update or delete for payment records.
	AppendPayments(ctx context.Context, records []PaymentRecord) error

	// Payments returns a plan's history, chronologically.
	Payments(ctx context.Context, planID PlanID) ([]PaymentRecord, error)
}

// TxPlanStore adds atomic multi-write support. RecordPayment uses it to
// persist the updated schedule and its history records all-or-nothing.
type TxPlanStore interface {
	PlanStore

	// WithTx executes fn within a transaction. fn's error rolls back.
	WithTx(ctx context.Context, fn func(PlanStore) error) error
}

// runInTx uses WithTx when the store supports it, otherwise falls back to
// direct writes. The in-memory store is already atomic under its lock.
func runInTx(ctx context.Context, s PlanStore, fn func(PlanStore) error) error {
	if tx, ok := s.(TxPlanStore); ok {
		return tx.WithTx(ctx, fn)
	}
	return fn(s)
}
