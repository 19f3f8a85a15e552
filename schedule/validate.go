/*
validate.go - Schedule invariant checks

PURPOSE:
  Asserts that a schedule is still internally consistent. Run by forms
  before persisting an edited schedule and by the plan service after every
  cascade. Collects ALL violations rather than failing fast, so a caller
  can show every problem at once.

CHECKS:
  1. sum(currentDueAmount) == expectedTotal (within one centavo)
  2. No installment paid beyond its due amount (cascading must have run)
  3. Installment numbers are 1..n contiguous, no gaps or duplicates
  4. Due dates are non-decreasing in installment order

These are advisory checks, not exceptions: the result is a value.
*/
package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationResult carries every violation found. Errors is nil when valid.
type ValidationResult struct {
	IsValid bool
	Errors  []string
}

// Validate checks the four schedule invariants against expectedTotal.
// Pure and idempotent: same schedule in, same result out.
func Validate(items []ScheduleItem, expectedTotal decimal.Decimal) ValidationResult {
	var errs []string

	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.CurrentDueAmount)
	}
	if !approxEqual(sum, expectedTotal) {
		errs = append(errs, fmt.Sprintf(
			"scheduled amounts sum to %s, expected %s",
			sum.StringFixed(2), expectedTotal.StringFixed(2)))
	}

	for _, it := range items {
		if !approxLEQ(it.PaidAmount, it.CurrentDueAmount) {
			errs = append(errs, fmt.Sprintf(
				"installment %d paid %s exceeds its due amount %s",
				it.InstallmentNumber, it.PaidAmount.StringFixed(2), it.CurrentDueAmount.StringFixed(2)))
		}
	}

	for i, it := range items {
		if it.InstallmentNumber != i+1 {
			errs = append(errs, fmt.Sprintf(
				"installment numbers are not contiguous: position %d holds number %d",
				i+1, it.InstallmentNumber))
			break
		}
	}

	for i := 1; i < len(items); i++ {
		if items[i].CurrentDueDate.Before(items[i-1].CurrentDueDate) {
			errs = append(errs, fmt.Sprintf(
				"installment %d due %s is earlier than installment %d due %s",
				items[i].InstallmentNumber, items[i].CurrentDueDate.Format("2006-01-02"),
				items[i-1].InstallmentNumber, items[i-1].CurrentDueDate.Format("2006-01-02")))
			break
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
