/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Pre-built scenarios that populate the store with realistic plans so the
  dashboard has something to render during demos and manual testing.

AVAILABLE SCENARIOS:
  prepaid-rent:       Monthly administrative expense, untouched
  fuel-reimbursement: Weekly operational reimbursement, partially paid
  payroll-cutoff:     Biweekly payroll adjustment with a cascaded
                      overpayment (shows carried-over amounts)

NOTE:
  Loading a scenario resets the store when the backing store supports it.
  Development/demo environments only.

SEE ALSO:
  - payables/presets.go: The plan definitions used here
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Joel-EstradaJr/ftms-deployed-sub000/payables"
	"github.com/Joel-EstradaJr/ftms-deployed-sub000/schedule"
)

var scenarios = []ScenarioDTO{
	{
		ID:          "prepaid-rent",
		Name:        "Prepaid Office Rent",
		Description: "One-year rent prepayment amortized monthly, no payments yet",
	},
	{
		ID:          "fuel-reimbursement",
		Name:        "Fuel Reimbursement",
		Description: "Weekly operational reimbursement with one partial payment",
	},
	{
		ID:          "payroll-cutoff",
		Name:        "Payroll Adjustment",
		Description: "Biweekly schedule with an overpayment cascaded into the next cutoff",
	},
}

func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx := r.Context()
	if h.Resetter != nil {
		if err := h.Resetter.Reset(ctx); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to reset store", err)
			return
		}
	}

	var err error
	switch req.ScenarioID {
	case "prepaid-rent":
		err = h.loadPrepaidRent(ctx)
	case "fuel-reimbursement":
		err = h.loadFuelReimbursement(ctx)
	case "payroll-cutoff":
		err = h.loadPayrollCutoff(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

func (h *Handler) loadPrepaidRent(ctx context.Context) error {
	start := schedule.DateOf(h.Service.Now()).AddDate(0, 1, 0)
	_, err := h.Service.CreatePlan(ctx, payables.MonthlyAdministrativeExpense(
		"ADM-RENT-2026", "Office rent prepayment, 12 months", 540000, start, 12))
	return err
}

func (h *Handler) loadFuelReimbursement(ctx context.Context) error {
	start := schedule.DateOf(h.Service.Now()).AddDate(0, 0, -14)
	plan, err := h.Service.CreatePlan(ctx, payables.WeeklyOperationalReimbursement(
		"OPR-FUEL-0117", "Fleet fuel reimbursement", 8400, start, 6))
	if err != nil {
		return err
	}

	// One partial payment on the first installment.
	_, _, err = h.Service.RecordPayment(ctx, plan.ID, schedule.PaymentEvent{
		ItemID:      plan.Items[0].ID,
		Amount:      schedule.Peso(1000),
		PaymentDate: start.AddDate(0, 0, 1),
		MethodCode:  "CASH",
		RecordedBy:  "demo",
	})
	return err
}

func (h *Handler) loadPayrollCutoff(ctx context.Context) error {
	start := schedule.DateOf(h.Service.Now()).AddDate(0, 0, -7)
	plan, err := h.Service.CreatePlan(ctx, payables.BiweeklyPayrollAdjustment(
		"PAY-ADJ-0093", "Salary adjustment back-pay", 24000, start, 4))
	if err != nil {
		return err
	}

	// Overpay the first cutoff so the excess cascades into the second.
	_, _, err = h.Service.RecordPayment(ctx, plan.ID, schedule.PaymentEvent{
		ItemID:      plan.Items[0].ID,
		Amount:      schedule.Peso(9000),
		PaymentDate: start,
		MethodCode:  "BANK_TRANSFER",
		RecordedBy:  "demo",
	})
	return err
}
