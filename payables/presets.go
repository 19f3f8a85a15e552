/*
presets.go - Canned plan definitions for common FTMS flows

Convenience constructors for the plan shapes the dashboard creates most
often. Used by demo scenarios and tests; production forms build
CreatePlanInput directly from user input.
*/
package payables

import (
	"time"

	"github.com/Joel-EstradaJr/ftms-deployed-sub000/schedule"
)

// MonthlyAdministrativeExpense is a prepaid admin expense amortized over
// a number of months (rent, insurance, subscriptions).
func MonthlyAdministrativeExpense(refNo, description string, total float64, start time.Time, months int) CreatePlanInput {
	return CreatePlanInput{
		Kind:        KindAdministrativeExpense,
		ReferenceNo: refNo,
		Description: description,
		TotalAmount: schedule.Peso(total),
		Frequency:   schedule.FrequencyMonthly,
		StartDate:   start,
		NumPayments: months,
	}
}

// WeeklyOperationalReimbursement spreads an operational expense
// reimbursement across weekly payouts.
func WeeklyOperationalReimbursement(refNo, description string, total float64, start time.Time, weeks int) CreatePlanInput {
	return CreatePlanInput{
		Kind:        KindOperationalReimbursement,
		ReferenceNo: refNo,
		Description: description,
		TotalAmount: schedule.Peso(total),
		Frequency:   schedule.FrequencyWeekly,
		StartDate:   start,
		NumPayments: weeks,
	}
}

// BiweeklyPayrollAdjustment aligns a payroll-adjacent schedule with the
// fifteenth-and-thirtieth pay cycle.
func BiweeklyPayrollAdjustment(refNo, description string, total float64, start time.Time, cutoffs int) CreatePlanInput {
	return CreatePlanInput{
		Kind:        KindPayrollAdjustment,
		ReferenceNo: refNo,
		Description: description,
		TotalAmount: schedule.Peso(total),
		Frequency:   schedule.FrequencyBiweekly,
		StartDate:   start,
		NumPayments: cutoffs,
	}
}

// CustomDatesPlan builds a plan on caller-supplied due dates.
func CustomDatesPlan(kind PayableKind, refNo, description string, total float64, dates []time.Time) CreatePlanInput {
	return CreatePlanInput{
		Kind:        kind,
		ReferenceNo: refNo,
		Description: description,
		TotalAmount: schedule.Peso(total),
		Frequency:   schedule.FrequencyCustom,
		CustomDates: dates,
	}
}
