/*
cascade.go - Payment application and overpayment cascading

PURPOSE:
  Applies one PaymentEvent against a schedule. When the payment exceeds the
  target installment's remaining balance, the excess walks forward through
  later open installments until it is fully absorbed. The caller gets back
  a new schedule plus a breakdown of exactly where every centavo went.

CASCADE POLICY:
  - Overpayment cascades FORWARD only, in installmentNumber order,
    skipping PAID and CANCELLED items.
  - Underpayment never cascades: the target is simply left PARTIALLY_PAID.
    A shortfall is not deferred into a balloon payment.
  - A payment larger than the whole outstanding schedule is rejected.
    Money is never silently dropped or credited elsewhere.

ALL-OR-NOTHING:
  ApplyPayment deep-copies the input schedule and mutates only the copy.
  On any failure the caller's schedule is untouched and no breakdown is
  returned. Persisting the result transactionally is the caller's job
  (see payables.PlanService.RecordPayment).

SEE ALSO:
  - types.go:   PaymentEvent, CascadeBreakdown
  - validate.go: Post-condition checks callers run before persisting
*/
package schedule

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ApplyPayment distributes event.Amount across the schedule starting at the
// target installment. Returns the updated schedule (a new slice; the input
// is never mutated) and the breakdown of applied amounts.
//
// Failure modes, all leaving the input untouched:
//   - ErrInvalidPayment: event.Amount <= 0
//   - ErrItemNotFound:   no installment with event.ItemID
//   - ErrAlreadySettled: target is PAID or CANCELLED
//   - ErrOverpaymentExceedsSchedule: amount exceeds the outstanding balance
//     of the target and every later open installment
func ApplyPayment(items []ScheduleItem, event PaymentEvent) ([]ScheduleItem, CascadeBreakdown, error) {
	if !event.Amount.IsPositive() {
		return nil, nil, ErrInvalidPayment
	}

	updated := make([]ScheduleItem, len(items))
	copy(updated, items)
	sort.SliceStable(updated, func(i, j int) bool {
		return updated[i].InstallmentNumber < updated[j].InstallmentNumber
	})

	target := -1
	for i := range updated {
		if updated[i].ID == event.ItemID {
			target = i
			break
		}
	}
	if target < 0 {
		return nil, nil, &ItemNotFoundError{ItemID: event.ItemID}
	}
	if updated[target].IsSettled() {
		return nil, nil, &AlreadySettledError{ItemID: event.ItemID, Status: updated[target].Status}
	}

	// Reject before touching anything: the payment must fit within the
	// outstanding balance of the target and everything after it.
	outstanding := decimal.Zero
	for i := target; i < len(updated); i++ {
		if updated[i].IsSettled() {
			continue
		}
		outstanding = outstanding.Add(updated[i].Remaining())
	}
	// Exact comparison: amounts are two-decimal, and the conservation
	// guarantee (breakdown total == event amount) needs every centavo of
	// the payment to find a home.
	if event.Amount.GreaterThan(outstanding) {
		return nil, nil, &OverpaymentError{
			Requested:   event.Amount.StringFixed(2),
			Outstanding: outstanding.StringFixed(2),
		}
	}

	var breakdown CascadeBreakdown
	left := event.Amount

	for i := target; i < len(updated) && left.IsPositive(); i++ {
		item := &updated[i]
		if item.IsSettled() {
			continue
		}
		remaining := item.Remaining()
		if !remaining.IsPositive() {
			continue
		}

		applied := decimal.Min(left, remaining)
		item.PaidAmount = item.PaidAmount.Add(applied)
		if i != target {
			item.CarriedOverAmount = item.CarriedOverAmount.Add(applied)
		}
		item.IsEditable = false
		item.Status = settlementStatus(*item)

		breakdown = append(breakdown, BreakdownLine{
			ItemID:            item.ID,
			InstallmentNumber: item.InstallmentNumber,
			AmountApplied:     applied,
			CarriedOver:       i != target,
		})
		left = left.Sub(applied)
	}

	return updated, breakdown, nil
}

// settlementStatus derives the amount-based status after a payment lands.
// Date-based OVERDUE derivation lives in status.go and is applied by the
// caller with an explicit "today".
func settlementStatus(item ScheduleItem) PaymentStatus {
	if approxLEQ(item.CurrentDueAmount, item.PaidAmount) {
		return StatusPaid
	}
	if item.PaidAmount.IsPositive() {
		return StatusPartiallyPaid
	}
	return item.Status
}
