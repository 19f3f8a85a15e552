/*
generate.go - Schedule generation and even-split distribution

PURPOSE:
  Turns (totalAmount, frequency, startDate, numberOfPayments) into an
  ordered sequence of ScheduleItems, and (totalAmount, dates) into the
  same for caller-supplied CUSTOM dates.

DISTRIBUTION RULE:
  Each installment gets the floor-to-centavo share of totalAmount/n; the
  last installment absorbs the rounding remainder so the sum is exact:

    100.00 over 3 -> 33.33, 33.33, 33.34

  Floor (rather than round-half-up) keeps the last installment the largest
  and never produces a negative remainder.

DATE RULE:
  DAILY +1d, WEEKLY +7d, BIWEEKLY +14d, MONTHLY +1 calendar month anchored
  to the start date's day-of-month and clamped to shorter months
  (Jan 31 -> Feb 29 -> Mar 31).

BOUNDS:
  numberOfPayments in [2, 100]. A single lump payment needs no schedule,
  and the UI caps schedules at 100 rows.

SEE ALSO:
  - types.go:   ScheduleItem, addMonthsClamped
  - cascade.go: What happens once payments arrive
*/
package schedule

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// MinPayments is the smallest schedule worth generating.
	MinPayments = 2
	// MaxPayments bounds schedule size; the UI renders at most 100 rows.
	MaxPayments = 100
)

// =============================================================================
// GENERATE - Auto-generated frequencies
// =============================================================================

// Generate produces numberOfPayments installments covering totalAmount,
// due at startDate and advancing per frequency. Pure function: no clock,
// no I/O. Item IDs are fresh UUIDs.
func Generate(totalAmount decimal.Decimal, freq Frequency, startDate time.Time, numberOfPayments int) ([]ScheduleItem, error) {
	if !totalAmount.IsPositive() {
		return nil, &InvalidScheduleError{Field: "totalAmount", Reason: "must be greater than zero"}
	}
	if numberOfPayments < MinPayments {
		return nil, &InvalidScheduleError{Field: "numberOfPayments", Reason: "must be at least 2"}
	}
	if numberOfPayments > MaxPayments {
		return nil, &InvalidScheduleError{Field: "numberOfPayments", Reason: "must be at most 100"}
	}
	if startDate.IsZero() {
		return nil, &InvalidScheduleError{Field: "startDate", Reason: "is required"}
	}
	if !freq.IsAutoGenerated() {
		if freq == FrequencyCustom {
			return nil, &InvalidScheduleError{Field: "frequency", Reason: "custom requires caller-supplied dates (use BuildFromDates)"}
		}
		return nil, &InvalidScheduleError{Field: "frequency", Reason: "is not recognized"}
	}

	start := DateOf(startDate)
	dates := make([]time.Time, numberOfPayments)
	for i := 0; i < numberOfPayments; i++ {
		switch freq {
		case FrequencyDaily:
			dates[i] = start.AddDate(0, 0, i)
		case FrequencyWeekly:
			dates[i] = start.AddDate(0, 0, 7*i)
		case FrequencyBiweekly:
			dates[i] = start.AddDate(0, 0, 14*i)
		case FrequencyMonthly:
			dates[i] = addMonthsClamped(start, i)
		}
	}

	return buildItems(totalAmount, dates), nil
}

// =============================================================================
// BUILD FROM DATES - CUSTOM frequency entry point
// =============================================================================

// BuildFromDates produces installments due on the given dates, which must be
// chronological (non-decreasing). Shares the even-split rule with Generate.
func BuildFromDates(totalAmount decimal.Decimal, dates []time.Time) ([]ScheduleItem, error) {
	if !totalAmount.IsPositive() {
		return nil, &InvalidScheduleError{Field: "totalAmount", Reason: "must be greater than zero"}
	}
	if len(dates) < MinPayments {
		return nil, &InvalidScheduleError{Field: "dates", Reason: "must contain at least 2 dates"}
	}
	if len(dates) > MaxPayments {
		return nil, &InvalidScheduleError{Field: "dates", Reason: "must contain at most 100 dates"}
	}

	normalized := make([]time.Time, len(dates))
	for i, d := range dates {
		if d.IsZero() {
			return nil, &InvalidScheduleError{Field: "dates", Reason: "contains an empty date"}
		}
		normalized[i] = DateOf(d)
		if i > 0 && normalized[i].Before(normalized[i-1]) {
			return nil, &InvalidScheduleError{Field: "dates", Reason: "must be in chronological order"}
		}
	}

	return buildItems(totalAmount, normalized), nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// SplitEvenly divides total across n two-decimal shares, floor-rounded,
// remainder on the last share. sum(shares) == total exactly.
func SplitEvenly(total decimal.Decimal, n int) []decimal.Decimal {
	shares := make([]decimal.Decimal, n)
	per := total.Div(decimal.NewFromInt(int64(n))).RoundDown(2)

	allocated := decimal.Zero
	for i := 0; i < n-1; i++ {
		shares[i] = per
		allocated = allocated.Add(per)
	}
	shares[n-1] = total.Sub(allocated)
	return shares
}

func buildItems(totalAmount decimal.Decimal, dates []time.Time) []ScheduleItem {
	shares := SplitEvenly(totalAmount, len(dates))

	items := make([]ScheduleItem, len(dates))
	for i := range dates {
		items[i] = ScheduleItem{
			ID:                ItemID(uuid.NewString()),
			InstallmentNumber: i + 1,
			OriginalDueDate:   dates[i],
			CurrentDueDate:    dates[i],
			OriginalDueAmount: shares[i],
			CurrentDueAmount:  shares[i],
			PaidAmount:        decimal.Zero,
			CarriedOverAmount: decimal.Zero,
			Status:            StatusPending,
			IsPastDue:         false,
			IsEditable:        true,
		}
	}
	return items
}
