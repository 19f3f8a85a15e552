/*
handlers_test.go - HTTP-level tests for the plan API

Tests drive the real router with httptest against the in-memory store,
covering the create -> preview -> pay -> history flow and the error
status mapping.
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joel-EstradaJr/ftms-deployed-sub000/payables"
	memstore "github.com/Joel-EstradaJr/ftms-deployed-sub000/payables/store"
)

var testNow = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func newTestRouter() http.Handler {
	svc := payables.NewPlanService(memstore.NewMemory())
	svc.Now = func() time.Time { return testNow }
	return NewRouter(NewHandler(svc))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func createTestPlan(t *testing.T, router http.Handler) PlanDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/plans", CreatePlanRequest{
		Kind:             "administrative_expense",
		ReferenceNo:      "ADM-2024-042",
		Description:      "Annual software licenses",
		TotalAmount:      "15000",
		Frequency:        "monthly",
		StartDate:        "2024-07-15",
		NumberOfPayments: 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[PlanDTO](t, rec)
}

// =============================================================================
// PLAN CRUD
// =============================================================================

func TestCreateAndGetPlan(t *testing.T) {
	router := newTestRouter()

	plan := createTestPlan(t, router)
	require.Len(t, plan.Items, 3)
	assert.Equal(t, "5000.00", plan.Items[0].CurrentDueAmount)
	assert.Equal(t, "2024-07-15", plan.Items[0].CurrentDueDate)
	assert.Equal(t, "PENDING", plan.Items[0].Status)

	rec := doJSON(t, router, http.MethodGet, "/api/plans/"+plan.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	loaded := decode[PlanDTO](t, rec)
	assert.Equal(t, plan.ID, loaded.ID)
	assert.Equal(t, "15000.00", loaded.TotalAmount)
}

func TestGetPlan_NotFound(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/plans/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreview_DoesNotPersist(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/plans/preview", CreatePlanRequest{
		Kind:             "operational_reimbursement",
		TotalAmount:      "100",
		Frequency:        "monthly",
		StartDate:        "2024-07-31",
		NumberOfPayments: 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	items := decode[[]ScheduleItemDTO](t, rec)
	require.Len(t, items, 3)
	assert.Equal(t, "33.33", items[0].CurrentDueAmount)
	assert.Equal(t, "33.34", items[2].CurrentDueAmount)
	assert.Equal(t, "2024-08-31", items[1].CurrentDueDate)

	rec = doJSON(t, router, http.MethodGet, "/api/plans", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]PlanDTO](t, rec))
}

func TestCreatePlan_InvalidParameters(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/plans", CreatePlanRequest{
		Kind:             "administrative_expense",
		TotalAmount:      "100",
		Frequency:        "monthly",
		StartDate:        "2024-07-15",
		NumberOfPayments: 1, // below minimum
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/plans", CreatePlanRequest{
		Kind:             "administrative_expense",
		TotalAmount:      "not-a-number",
		Frequency:        "monthly",
		StartDate:        "2024-07-15",
		NumberOfPayments: 3,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestRecordPayment_CascadeReceipt(t *testing.T) {
	router := newTestRouter()
	plan := createTestPlan(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/plans/"+plan.ID+"/payments", RecordPaymentRequest{
		ScheduleItemID:    plan.Items[0].ID,
		Amount:            "7000",
		PaymentDate:       "2024-07-14",
		PaymentMethodCode: "BANK_TRANSFER",
		RecordedBy:        "treasurer",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[RecordPaymentResponse](t, rec)
	require.Len(t, resp.Breakdown, 2)
	assert.Equal(t, "5000.00", resp.Breakdown[0].AmountApplied)
	assert.False(t, resp.Breakdown[0].CarriedOver)
	assert.Equal(t, "2000.00", resp.Breakdown[1].AmountApplied)
	assert.True(t, resp.Breakdown[1].CarriedOver)

	assert.Equal(t, "PAID", resp.Plan.Items[0].Status)
	assert.Equal(t, "PARTIALLY_PAID", resp.Plan.Items[1].Status)
	assert.Equal(t, "2000.00", resp.Plan.Items[1].CarriedOverAmount)

	// History has one row per breakdown line.
	rec = doJSON(t, router, http.MethodGet, "/api/plans/"+plan.ID+"/payments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[[]PaymentRecordDTO](t, rec)
	require.Len(t, records, 2)
	assert.Equal(t, "BANK_TRANSFER", records[0].PaymentMethodCode)
	assert.Equal(t, "2024-07-14", records[0].PaymentDate)
}

func TestRecordPayment_ErrorStatusMapping(t *testing.T) {
	router := newTestRouter()
	plan := createTestPlan(t, router)

	// Overpayment beyond the whole schedule -> 422.
	rec := doJSON(t, router, http.MethodPost, "/api/plans/"+plan.ID+"/payments", RecordPaymentRequest{
		ScheduleItemID: plan.Items[0].ID,
		Amount:         "99999",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "exceeds outstanding balance")

	// Unknown installment -> 404.
	rec = doJSON(t, router, http.MethodPost, "/api/plans/"+plan.ID+"/payments", RecordPaymentRequest{
		ScheduleItemID: "ghost",
		Amount:         "100",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Non-positive amount -> 400.
	rec = doJSON(t, router, http.MethodPost, "/api/plans/"+plan.ID+"/payments", RecordPaymentRequest{
		ScheduleItemID: plan.Items[0].ID,
		Amount:         "0",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Settle the first installment, then pay it again -> 409.
	rec = doJSON(t, router, http.MethodPost, "/api/plans/"+plan.ID+"/payments", RecordPaymentRequest{
		ScheduleItemID: plan.Items[0].ID,
		Amount:         "5000",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/plans/"+plan.ID+"/payments", RecordPaymentRequest{
		ScheduleItemID: plan.Items[0].ID,
		Amount:         "100",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// =============================================================================
// INSTALLMENT OPERATIONS
// =============================================================================

func TestCancelAndReschedule(t *testing.T) {
	router := newTestRouter()
	plan := createTestPlan(t, router)

	rec := doJSON(t, router, http.MethodPost,
		"/api/plans/"+plan.ID+"/items/"+plan.Items[1].ID+"/cancel", struct{}{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decode[PlanDTO](t, rec)
	assert.Equal(t, "CANCELLED", updated.Items[1].Status)
	assert.Equal(t, "0.00", updated.Items[1].CurrentDueAmount)
	assert.Equal(t, "7500.00", updated.Items[0].CurrentDueAmount)
	assert.Equal(t, "7500.00", updated.Items[2].CurrentDueAmount)

	rec = doJSON(t, router, http.MethodPost,
		"/api/plans/"+plan.ID+"/items/"+plan.Items[2].ID+"/reschedule",
		RescheduleRequest{DueDate: "2024-10-01"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated = decode[PlanDTO](t, rec)
	assert.Equal(t, "2024-10-01", updated.Items[2].CurrentDueDate)
	assert.Equal(t, "2024-09-15", updated.Items[2].OriginalDueDate)

	// Breaking chronology is rejected with the validator's messages.
	rec = doJSON(t, router, http.MethodPost,
		"/api/plans/"+plan.ID+"/items/"+plan.Items[2].ID+"/reschedule",
		RescheduleRequest{DueDate: "2024-01-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[ErrorResponse](t, rec).Details)
}

func TestRegenerate_LockedAfterPayment(t *testing.T) {
	router := newTestRouter()
	plan := createTestPlan(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/plans/"+plan.ID+"/payments", RecordPaymentRequest{
		ScheduleItemID: plan.Items[0].ID,
		Amount:         "100",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/plans/"+plan.ID+"/regenerate", CreatePlanRequest{
		Kind:             "administrative_expense",
		TotalAmount:      "15000",
		Frequency:        "weekly",
		StartDate:        "2024-08-01",
		NumberOfPayments: 10,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// =============================================================================
// SUMMARY AND SCENARIOS
// =============================================================================

func TestGetSummary(t *testing.T) {
	router := newTestRouter()
	plan := createTestPlan(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/plans/"+plan.ID+"/payments", RecordPaymentRequest{
		ScheduleItemID: plan.Items[0].ID,
		Amount:         "5000",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/plans/"+plan.ID+"/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decode[SummaryDTO](t, rec)
	assert.Equal(t, 3, summary.TotalInstallments)
	assert.Equal(t, 1, summary.PaidInstallments)
	assert.Equal(t, "5000.00", summary.TotalPaid)
	assert.Equal(t, "10000.00", summary.RemainingAmount)
	assert.Equal(t, "2024-08-15", summary.NextDueDate)
}

func TestScenarios_LoadAndList(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ScenarioDTO](t, rec), 3)

	rec = doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "payroll-cutoff"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/plans", nil)
	plans := decode[[]PlanDTO](t, rec)
	require.Len(t, plans, 1)
	assert.Equal(t, "PAID", plans[0].Items[0].Status)
	assert.Equal(t, "3000.00", plans[0].Items[1].CarriedOverAmount)

	rec = doJSON(t, router, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "unknown"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
