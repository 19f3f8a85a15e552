/*
Package schedule implements the installment schedule engine.

PURPOSE:
  This package contains the core computation behind prepaid and reimbursable
  expense scheduling: generating an installment plan from a total amount and
  a recurrence rule, cascading payments across installments, and validating
  that a schedule still accounts for every centavo.

KEY CONCEPTS IN THIS FILE (types.go):
  - ScheduleItem: One due payment within a recurring plan
  - PaymentEvent: A payment being applied against one installment
  - CascadeBreakdown: Exactly how a payment was distributed
  - Frequency/PaymentStatus: Recurrence and lifecycle enumerations

DESIGN PRINCIPLES:
  1. Purity: Every operation takes a schedule in and returns a new one.
     Nothing here touches a database, a clock, or shared state.
  2. Precision: Uses decimal.Decimal with two-decimal (centavo) semantics
     to avoid floating-point drift in money math.
  3. Conservation: sum(currentDueAmount) always equals the plan total.
     Payments are distributed, never created or destroyed.
  4. Determinism: "today" is an explicit parameter (see status.go), so the
     same inputs always produce the same outputs.

USAGE:
  items, err := schedule.Generate(total, schedule.FrequencyMonthly, start, 12)
  updated, breakdown, err := schedule.ApplyPayment(items, event)
  result := schedule.Validate(updated, total)

SEE ALSO:
  - generate.go: Schedule generation and even-split distribution
  - cascade.go:  Payment application and overpayment cascading
  - validate.go: Invariant checks
  - status.go:   Date-aware status derivation
*/
package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Two-decimal semantics
// =============================================================================

// Epsilon is the tolerance used for every paid-vs-due comparison.
// One centavo absorbs the rounding that even-split division introduces.
var Epsilon = decimal.NewFromFloat(0.01)

// Peso builds a two-decimal amount from a float. Test and seed convenience.
func Peso(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// approxLEQ reports a <= b within Epsilon.
func approxLEQ(a, b decimal.Decimal) bool {
	return a.Sub(b).LessThanOrEqual(Epsilon)
}

// approxEqual reports |a-b| <= Epsilon.
func approxEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ItemID string

// =============================================================================
// FREQUENCY - Recurrence rule for installment due dates
// =============================================================================

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"

	// FrequencyCustom means the caller supplies due dates directly.
	// Generate rejects it; use BuildFromDates instead.
	FrequencyCustom Frequency = "custom"
)

// IsAutoGenerated reports whether due dates are derived from a start date.
func (f Frequency) IsAutoGenerated() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

// =============================================================================
// PAYMENT STATUS
// =============================================================================

type PaymentStatus string

const (
	StatusPending       PaymentStatus = "PENDING"
	StatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	StatusPaid          PaymentStatus = "PAID"
	StatusOverdue       PaymentStatus = "OVERDUE"

	// StatusCancelled is never derived; it is set externally
	// (see payables.PlanService.CancelInstallment).
	StatusCancelled PaymentStatus = "CANCELLED"
)

// =============================================================================
// SCHEDULE ITEM - One due payment in a recurring plan
// =============================================================================

// ScheduleItem is one installment. Original* fields are immutable after
// creation; Current* fields move under rescheduling and cascade
// redistribution.
type ScheduleItem struct {
	ID                ItemID
	InstallmentNumber int // 1-based, contiguous within a schedule

	OriginalDueDate time.Time
	CurrentDueDate  time.Time

	OriginalDueAmount decimal.Decimal
	CurrentDueAmount  decimal.Decimal

	// PaidAmount only ever grows. Corrections happen outside this engine.
	PaidAmount decimal.Decimal

	// CarriedOverAmount is the portion of PaidAmount that arrived via a
	// cascade out of an earlier installment's overpayment.
	CarriedOverAmount decimal.Decimal

	Status    PaymentStatus
	IsPastDue bool

	// IsEditable turns false permanently once any payment lands on the item.
	IsEditable bool
}

// Remaining returns the balance still owed on this installment.
// Never negative; cascade rounding can leave PaidAmount a hair above due.
func (it ScheduleItem) Remaining() decimal.Decimal {
	r := it.CurrentDueAmount.Sub(it.PaidAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// IsSettled reports whether the item can no longer receive payments.
func (it ScheduleItem) IsSettled() bool {
	return it.Status == StatusPaid || it.Status == StatusCancelled
}

// =============================================================================
// PAYMENT EVENT - Input to the cascade processor
// =============================================================================

// PaymentEvent describes one payment against a target installment.
// PaymentDate, MethodCode and RecordedBy are pass-through metadata; the
// cascade math only reads ItemID and Amount.
type PaymentEvent struct {
	ItemID      ItemID
	Amount      decimal.Decimal
	PaymentDate time.Time
	MethodCode  string
	RecordedBy  string
}

// =============================================================================
// CASCADE BREAKDOWN - How a payment was distributed
// =============================================================================

// BreakdownLine records one non-zero application of money to an installment.
type BreakdownLine struct {
	ItemID            ItemID
	InstallmentNumber int
	AmountApplied     decimal.Decimal

	// CarriedOver is true when the amount was absorbed from an earlier
	// installment's overpayment rather than paid directly.
	CarriedOver bool
}

// CascadeBreakdown is the ordered distribution of a single payment event.
type CascadeBreakdown []BreakdownLine

// Total returns the sum of all applied amounts.
// For a successful ApplyPayment this equals the event amount exactly.
func (b CascadeBreakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range b {
		total = total.Add(line.AmountApplied)
	}
	return total
}

// =============================================================================
// DATE HELPERS - Schedules operate on calendar days
// =============================================================================

// DateOf normalizes to midnight UTC. All due dates are day-granular.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// addMonthsClamped advances n calendar months from the anchor date, keeping
// the anchor's day-of-month and clamping to the last valid day when the
// target month is shorter. Jan 31 -> Feb 29 -> Mar 31 (the clamp does not
// compound: March reuses the anchor's day 31, not February's 29).
func addMonthsClamped(anchor time.Time, n int) time.Time {
	y, m, d := anchor.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysInMonth(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
