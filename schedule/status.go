/*
status.go - Date-aware status derivation

PURPOSE:
  Derives OVERDUE / isPastDue from due dates. "Today" is an explicit
  parameter, never an ambient clock read, so the same schedule and asOf
  always yield the same statuses and tests stay deterministic.

PRECEDENCE:
  CANCELLED (external) > PAID > OVERDUE > PARTIALLY_PAID > PENDING
*/
package schedule

import "time"

// DeriveStatus computes an installment's status and past-due flag as of the
// given date. CANCELLED is sticky; everything else is derived.
func DeriveStatus(item ScheduleItem, asOf time.Time) (PaymentStatus, bool) {
	if item.Status == StatusCancelled {
		return StatusCancelled, false
	}
	if approxLEQ(item.CurrentDueAmount, item.PaidAmount) {
		return StatusPaid, false
	}

	pastDue := item.CurrentDueDate.Before(DateOf(asOf))
	if pastDue {
		return StatusOverdue, true
	}
	if item.PaidAmount.IsPositive() {
		return StatusPartiallyPaid, false
	}
	return StatusPending, false
}

// RefreshStatuses returns a copy of the schedule with every item's Status
// and IsPastDue recomputed as of the given date. The input is not mutated.
func RefreshStatuses(items []ScheduleItem, asOf time.Time) []ScheduleItem {
	updated := make([]ScheduleItem, len(items))
	copy(updated, items)
	for i := range updated {
		updated[i].Status, updated[i].IsPastDue = DeriveStatus(updated[i], asOf)
	}
	return updated
}
