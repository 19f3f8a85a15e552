/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  domain model from the external contract.

NAMING CONVENTION:
  - *DTO:      Response types returned to clients
  - *Request:  Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  All amounts travel as strings ("1234.56"), never floats. The frontend
  formats them with the currency symbol; the API never does.

DATES:
  Due dates and payment dates are "YYYY-MM-DD". Timestamps are RFC3339.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Joel-EstradaJr/ftms-deployed-sub000/payables"
	"github.com/Joel-EstradaJr/ftms-deployed-sub000/schedule"
)

const dayFormat = "2006-01-02"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreatePlanRequest creates or previews a payment plan. CustomDates is
// only read when Frequency is "custom".
type CreatePlanRequest struct {
	Kind             string   `json:"kind"`
	ReferenceNo      string   `json:"reference_no"`
	Description      string   `json:"description"`
	TotalAmount      string   `json:"total_amount"`
	Frequency        string   `json:"frequency"`
	StartDate        string   `json:"start_date"`
	NumberOfPayments int      `json:"number_of_payments"`
	CustomDates      []string `json:"custom_dates,omitempty"`
}

// RecordPaymentRequest applies a payment against one installment.
type RecordPaymentRequest struct {
	ScheduleItemID    string `json:"schedule_item_id"`
	Amount            string `json:"amount"`
	PaymentDate       string `json:"payment_date"`
	PaymentMethodCode string `json:"payment_method_code"`
	RecordedBy        string `json:"recorded_by"`
}

// RescheduleRequest moves one installment's current due date.
type RescheduleRequest struct {
	DueDate string `json:"due_date"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type ScheduleItemDTO struct {
	ID                string `json:"id"`
	InstallmentNumber int    `json:"installment_number"`
	OriginalDueDate   string `json:"original_due_date"`
	CurrentDueDate    string `json:"current_due_date"`
	OriginalDueAmount string `json:"original_due_amount"`
	CurrentDueAmount  string `json:"current_due_amount"`
	PaidAmount        string `json:"paid_amount"`
	CarriedOverAmount string `json:"carried_over_amount"`
	RemainingAmount   string `json:"remaining_amount"`
	Status            string `json:"payment_status"`
	IsPastDue         bool   `json:"is_past_due"`
	IsEditable        bool   `json:"is_editable"`
}

type PlanDTO struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	ReferenceNo string            `json:"reference_no"`
	Description string            `json:"description,omitempty"`
	TotalAmount string            `json:"total_amount"`
	Frequency   string            `json:"frequency"`
	StartDate   string            `json:"start_date,omitempty"`
	NumPayments int               `json:"number_of_payments"`
	Items       []ScheduleItemDTO `json:"items"`
	CreatedAt   string            `json:"created_at,omitempty"`
	UpdatedAt   string            `json:"updated_at,omitempty"`
}

type BreakdownLineDTO struct {
	ScheduleItemID    string `json:"schedule_item_id"`
	InstallmentNumber int    `json:"installment_number"`
	AmountApplied     string `json:"amount_applied"`
	CarriedOver       bool   `json:"carried_over"`
}

// RecordPaymentResponse is the payment receipt: the updated plan plus
// exactly how the amount was distributed.
type RecordPaymentResponse struct {
	Plan      PlanDTO            `json:"plan"`
	Breakdown []BreakdownLineDTO `json:"breakdown"`
}

type PaymentRecordDTO struct {
	ID                string `json:"id"`
	ScheduleItemID    string `json:"schedule_item_id"`
	InstallmentNumber int    `json:"installment_number"`
	AmountApplied     string `json:"amount_applied"`
	CarriedOver       bool   `json:"carried_over"`
	PaymentDate       string `json:"payment_date"`
	PaymentMethodCode string `json:"payment_method_code,omitempty"`
	RecordedBy        string `json:"recorded_by,omitempty"`
	CreatedAt         string `json:"created_at"`
}

type SummaryDTO struct {
	TotalInstallments int    `json:"total_installments"`
	PaidInstallments  int    `json:"paid_installments"`
	OverdueCount      int    `json:"overdue_count"`
	CancelledCount    int    `json:"cancelled_count"`
	TotalDue          string `json:"total_due"`
	TotalPaid         string `json:"total_paid"`
	RemainingAmount   string `json:"remaining_amount"`
	OverdueAmount     string `json:"overdue_amount"`
	NextDueDate       string `json:"next_due_date,omitempty"`
}

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toItemDTO(it schedule.ScheduleItem) ScheduleItemDTO {
	return ScheduleItemDTO{
		ID:                string(it.ID),
		InstallmentNumber: it.InstallmentNumber,
		OriginalDueDate:   it.OriginalDueDate.Format(dayFormat),
		CurrentDueDate:    it.CurrentDueDate.Format(dayFormat),
		OriginalDueAmount: it.OriginalDueAmount.StringFixed(2),
		CurrentDueAmount:  it.CurrentDueAmount.StringFixed(2),
		PaidAmount:        it.PaidAmount.StringFixed(2),
		CarriedOverAmount: it.CarriedOverAmount.StringFixed(2),
		RemainingAmount:   it.Remaining().StringFixed(2),
		Status:            string(it.Status),
		IsPastDue:         it.IsPastDue,
		IsEditable:        it.IsEditable,
	}
}

func toItemDTOs(items []schedule.ScheduleItem) []ScheduleItemDTO {
	dtos := make([]ScheduleItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
	}
	return dtos
}

func toPlanDTO(plan *payables.PaymentPlan) PlanDTO {
	dto := PlanDTO{
		ID:          string(plan.ID),
		Kind:        string(plan.Kind),
		ReferenceNo: plan.ReferenceNo,
		Description: plan.Description,
		TotalAmount: plan.TotalAmount.StringFixed(2),
		Frequency:   string(plan.Frequency),
		NumPayments: plan.NumPayments,
		Items:       toItemDTOs(plan.Items),
		CreatedAt:   plan.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   plan.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !plan.StartDate.IsZero() {
		dto.StartDate = plan.StartDate.Format(dayFormat)
	}
	return dto
}

func toBreakdownDTOs(breakdown schedule.CascadeBreakdown) []BreakdownLineDTO {
	dtos := make([]BreakdownLineDTO, len(breakdown))
	for i, line := range breakdown {
		dtos[i] = BreakdownLineDTO{
			ScheduleItemID:    string(line.ItemID),
			InstallmentNumber: line.InstallmentNumber,
			AmountApplied:     line.AmountApplied.StringFixed(2),
			CarriedOver:       line.CarriedOver,
		}
	}
	return dtos
}

func toRecordDTO(r payables.PaymentRecord) PaymentRecordDTO {
	return PaymentRecordDTO{
		ID:                r.ID,
		ScheduleItemID:    string(r.ItemID),
		InstallmentNumber: r.InstallmentNumber,
		AmountApplied:     r.AmountApplied.StringFixed(2),
		CarriedOver:       r.CarriedOver,
		PaymentDate:       r.PaymentDate.Format(dayFormat),
		PaymentMethodCode: r.MethodCode,
		RecordedBy:        r.RecordedBy,
		CreatedAt:         r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toSummaryDTO(s payables.PlanSummary) SummaryDTO {
	dto := SummaryDTO{
		TotalInstallments: s.TotalInstallments,
		PaidInstallments:  s.PaidInstallments,
		OverdueCount:      s.OverdueCount,
		CancelledCount:    s.CancelledCount,
		TotalDue:          s.TotalDue.StringFixed(2),
		TotalPaid:         s.TotalPaid.StringFixed(2),
		RemainingAmount:   s.RemainingAmount.StringFixed(2),
		OverdueAmount:     s.OverdueAmount.StringFixed(2),
	}
	if s.NextDueDate != nil {
		dto.NextDueDate = s.NextDueDate.Format(dayFormat)
	}
	return dto
}

// toCreateInput parses and validates a CreatePlanRequest into domain input.
func toCreateInput(req CreatePlanRequest) (payables.CreatePlanInput, error) {
	input := payables.CreatePlanInput{
		Kind:        payables.PayableKind(req.Kind),
		ReferenceNo: req.ReferenceNo,
		Description: req.Description,
		Frequency:   schedule.Frequency(req.Frequency),
		NumPayments: req.NumberOfPayments,
	}

	total, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		return input, &schedule.InvalidScheduleError{Field: "total_amount", Reason: "is not a valid amount"}
	}
	input.TotalAmount = total

	if req.StartDate != "" {
		start, err := time.ParseInLocation(dayFormat, req.StartDate, time.UTC)
		if err != nil {
			return input, &schedule.InvalidScheduleError{Field: "start_date", Reason: "must be YYYY-MM-DD"}
		}
		input.StartDate = start
	}

	for _, d := range req.CustomDates {
		parsed, err := time.ParseInLocation(dayFormat, d, time.UTC)
		if err != nil {
			return input, &schedule.InvalidScheduleError{Field: "custom_dates", Reason: "must be YYYY-MM-DD"}
		}
		input.CustomDates = append(input.CustomDates, parsed)
	}
	return input, nil
}
