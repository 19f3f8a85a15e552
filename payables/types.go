/*
Package payables implements prepaid/reimbursable expense payment plans on
top of the schedule engine.

PURPOSE:
  Where package schedule is pure math, payables knows what the money is
  FOR: administrative expenses paid in advance, operational expense
  reimbursements, and payroll-adjacent schedules. It owns the PaymentPlan
  aggregate (payable metadata + its installment schedule), the immutable
  payment history built from cascade breakdowns, and the plan lifecycle
  rules (when a schedule may be regenerated, cancelled, or moved).

KEY CONCEPTS IN THIS FILE (types.go):
  - PaymentPlan:   A payable and its installment schedule
  - PaymentRecord: One immutable audit row per breakdown line
  - PlanSummary:   Paid/remaining/overdue roll-up for dashboards

SEE ALSO:
  - service.go: Plan lifecycle operations
  - store.go:   Persistence interface
  - presets.go: Canned plan definitions for common FTMS flows
*/
package payables

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Joel-EstradaJr/ftms-deployed-sub000/schedule"
)

// =============================================================================
// PAYABLE KIND
// =============================================================================

// PayableKind identifies which expense workflow a plan belongs to.
type PayableKind string

const (
	KindAdministrativeExpense    PayableKind = "administrative_expense"
	KindOperationalReimbursement PayableKind = "operational_reimbursement"
	KindPayrollAdjustment        PayableKind = "payroll_adjustment"
)

func (k PayableKind) IsValid() bool {
	switch k {
	case KindAdministrativeExpense, KindOperationalReimbursement, KindPayrollAdjustment:
		return true
	default:
		return false
	}
}

// =============================================================================
// PAYMENT PLAN - A payable and its installment schedule
// =============================================================================

type PlanID string

// PaymentPlan ties a parent payable to its generated schedule.
// Items are always held in installment order.
type PaymentPlan struct {
	ID          PlanID
	Kind        PayableKind
	ReferenceNo string // external voucher / payable number
	Description string

	TotalAmount decimal.Decimal
	Frequency   schedule.Frequency
	StartDate   time.Time
	NumPayments int

	Items []schedule.ScheduleItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPayments reports whether any installment has received money.
// Plans with payments can no longer be regenerated wholesale.
func (p *PaymentPlan) HasPayments() bool {
	for _, it := range p.Items {
		if it.PaidAmount.IsPositive() {
			return true
		}
	}
	return false
}

// Item returns the installment with the given ID, or nil.
func (p *PaymentPlan) Item(id schedule.ItemID) *schedule.ScheduleItem {
	for i := range p.Items {
		if p.Items[i].ID == id {
			return &p.Items[i]
		}
	}
	return nil
}

// Clone returns a deep copy. ScheduleItems are value types, so copying the
// slice is enough.
func (p *PaymentPlan) Clone() *PaymentPlan {
	cp := *p
	cp.Items = make([]schedule.ScheduleItem, len(p.Items))
	copy(cp.Items, p.Items)
	return &cp
}

// =============================================================================
// PAYMENT RECORD - Immutable audit row
// =============================================================================

// PaymentRecord is one line of payment history: a single application of
// money to a single installment, as reported by a cascade breakdown.
// Records are append-only; corrections happen as new payments, not edits.
type PaymentRecord struct {
	ID                string
	PlanID            PlanID
	ItemID            schedule.ItemID
	InstallmentNumber int
	AmountApplied     decimal.Decimal

	// CarriedOver marks amounts that cascaded in from an earlier
	// installment's overpayment.
	CarriedOver bool

	PaymentDate time.Time
	MethodCode  string
	RecordedBy  string
	CreatedAt   time.Time
}

// =============================================================================
// PLAN SUMMARY - Dashboard roll-up
// =============================================================================

// PlanSummary aggregates a schedule for list views and headers.
type PlanSummary struct {
	TotalInstallments int
	PaidInstallments  int
	OverdueCount      int
	CancelledCount    int

	TotalDue        decimal.Decimal
	TotalPaid       decimal.Decimal
	RemainingAmount decimal.Decimal
	OverdueAmount   decimal.Decimal

	NextDueDate *time.Time
}

// Summarize rolls up a plan's schedule as of the given date.
func Summarize(plan *PaymentPlan, asOf time.Time) PlanSummary {
	items := schedule.RefreshStatuses(plan.Items, asOf)

	s := PlanSummary{
		TotalInstallments: len(items),
		TotalDue:          decimal.Zero,
		TotalPaid:         decimal.Zero,
		RemainingAmount:   decimal.Zero,
		OverdueAmount:     decimal.Zero,
	}

	for _, it := range items {
		s.TotalDue = s.TotalDue.Add(it.CurrentDueAmount)
		s.TotalPaid = s.TotalPaid.Add(it.PaidAmount)

		switch it.Status {
		case schedule.StatusPaid:
			s.PaidInstallments++
		case schedule.StatusCancelled:
			s.CancelledCount++
		case schedule.StatusOverdue:
			s.OverdueCount++
			s.OverdueAmount = s.OverdueAmount.Add(it.Remaining())
		}

		if !it.IsSettled() {
			s.RemainingAmount = s.RemainingAmount.Add(it.Remaining())
			if !it.IsPastDue && (s.NextDueDate == nil || it.CurrentDueDate.Before(*s.NextDueDate)) {
				due := it.CurrentDueDate
				s.NextDueDate = &due
			}
		}
	}
	return s
}
