/*
handlers.go - HTTP API handlers for the installment engine

PURPOSE:
  Exposes the payment plan service via REST. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Plans:
    GET    /api/plans                 List all payment plans
    POST   /api/plans                 Create a plan (generates the schedule)
    POST   /api/plans/preview         Preview a schedule without saving
    GET    /api/plans/{id}            Plan with its schedule
    GET    /api/plans/{id}/summary    Paid/remaining/overdue roll-up
    POST   /api/plans/{id}/regenerate Replace the schedule (no payments yet)

  Payments:
    POST   /api/plans/{id}/payments   Record a payment (runs the cascade)
    GET    /api/plans/{id}/payments   Payment history

  Installments:
    POST   /api/plans/{id}/items/{itemID}/cancel      Cancel + redistribute
    POST   /api/plans/{id}/items/{itemID}/reschedule  Move the due date

  Scenarios:
    GET    /api/scenarios             List demo scenarios
    POST   /api/scenarios/load        Load a demo scenario

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (bad parameters, malformed amounts/dates)
  - 404: Plan or installment not found (stale UI state)
  - 409: Conflict (already settled, locked plan, uneditable installment)
  - 422: Payment exceeds the outstanding schedule balance
  - 500: Internal errors (including invariant breaches)

SEE ALSO:
  - dto.go:       Request/response structures
  - server.go:    Router setup and middleware
  - scenarios.go: Demo data loaders
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Joel-EstradaJr/ftms-deployed-sub000/payables"
	"github.com/Joel-EstradaJr/ftms-deployed-sub000/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Resetter is implemented by stores that can wipe all data. Scenario
// loading uses it when available.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *payables.PlanService

	// Optional: enables POST /api/scenarios/load to start from a clean slate.
	Resetter Resetter
}

// NewHandler creates a handler backed by the given service.
func NewHandler(service *payables.PlanService) *Handler {
	return &Handler{Service: service}
}

// =============================================================================
// PLAN HANDLERS
// =============================================================================

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.Service.ListPlans(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]PlanDTO, len(plans))
	for i, p := range plans {
		dtos[i] = toPlanDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	input, err := toCreateInput(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	plan, err := h.Service.CreatePlan(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanDTO(plan))
}

// PreviewSchedule generates a schedule for form previews without saving.
func (h *Handler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	input, err := toCreateInput(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items, err := h.Service.Preview(input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(items))
}

func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Service.GetPlan(r.Context(), payables.PlanID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(plan))
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context(), payables.PlanID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

func (h *Handler) RegeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	input, err := toCreateInput(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	plan, err := h.Service.Regenerate(r.Context(), payables.PlanID(chi.URLParam(r, "id")), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(plan))
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount is not a valid number", err)
		return
	}

	event := schedule.PaymentEvent{
		ItemID:     schedule.ItemID(req.ScheduleItemID),
		Amount:     amount,
		MethodCode: req.PaymentMethodCode,
		RecordedBy: req.RecordedBy,
	}
	if req.PaymentDate != "" {
		paid, err := time.ParseInLocation(dayFormat, req.PaymentDate, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "payment_date must be YYYY-MM-DD", err)
			return
		}
		event.PaymentDate = paid
	}

	plan, breakdown, err := h.Service.RecordPayment(r.Context(), payables.PlanID(chi.URLParam(r, "id")), event)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RecordPaymentResponse{
		Plan:      toPlanDTO(plan),
		Breakdown: toBreakdownDTOs(breakdown),
	})
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.History(r.Context(), payables.PlanID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]PaymentRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// INSTALLMENT HANDLERS
// =============================================================================

func (h *Handler) CancelInstallment(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Service.CancelInstallment(r.Context(),
		payables.PlanID(chi.URLParam(r, "id")),
		schedule.ItemID(chi.URLParam(r, "itemID")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(plan))
}

func (h *Handler) RescheduleInstallment(w http.ResponseWriter, r *http.Request) {
	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	newDate, err := time.ParseInLocation(dayFormat, req.DueDate, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "due_date must be YYYY-MM-DD", err)
		return
	}

	plan, err := h.Service.RescheduleInstallment(r.Context(),
		payables.PlanID(chi.URLParam(r, "id")),
		schedule.ItemID(chi.URLParam(r, "itemID")), newDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(plan))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil && err.Error() != message {
		resp.Details = []string{err.Error()}
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine/service errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var vErr *payables.ValidationFailedError

	switch {
	case errors.Is(err, payables.ErrPlanNotFound),
		errors.Is(err, schedule.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)

	case errors.Is(err, schedule.ErrAlreadySettled),
		errors.Is(err, payables.ErrPlanHasPayments),
		errors.Is(err, payables.ErrItemNotEditable),
		errors.Is(err, payables.ErrNoOpenInstallments):
		writeError(w, http.StatusConflict, err.Error(), nil)

	case errors.Is(err, schedule.ErrOverpaymentExceedsSchedule):
		writeError(w, http.StatusUnprocessableEntity, "amount exceeds outstanding balance", err)

	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "schedule validation failed",
			Details: vErr.Messages,
		})

	case errors.Is(err, schedule.ErrInvalidSchedule),
		errors.Is(err, schedule.ErrInvalidPayment):
		writeError(w, http.StatusBadRequest, err.Error(), nil)

	default:
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}
