/*
service.go - Payment plan lifecycle operations

PURPOSE:
  The orchestration layer between the pure schedule engine and storage.
  Every operation follows the same shape:

    1. Load the plan
    2. Run the pure computation (generate / cascade / redistribute)
    3. Validate the result against the plan total
    4. Refresh date-derived statuses with the injected clock
    5. Persist atomically

  The engine guarantees all-or-nothing computation; this service extends
  that to all-or-nothing persistence via the store's WithTx.

CONCURRENCY:
  One plan, one concurrent mutation. The SQLite store serializes writers;
  with a server-grade database the caller is expected to hold a row lock
  or version check per plan. The service itself keeps no state.

CLOCK:
  Now is injected so status derivation (OVERDUE/isPastDue) is
  deterministic in tests. Defaults to time.Now.
*/
package payables

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Joel-EstradaJr/ftms-deployed-sub000/schedule"
)

// =============================================================================
// SERVICE
// =============================================================================

// PlanService owns plan lifecycle operations.
type PlanService struct {
	Store PlanStore
	Now   func() time.Time
}

func NewPlanService(store PlanStore) *PlanService {
	return &PlanService{Store: store, Now: time.Now}
}

// CreatePlanInput carries the form fields for a new plan.
// CustomDates is only read when Frequency is custom.
type CreatePlanInput struct {
	Kind        PayableKind
	ReferenceNo string
	Description string

	TotalAmount decimal.Decimal
	Frequency   schedule.Frequency
	StartDate   time.Time
	NumPayments int
	CustomDates []time.Time
}

// ValidationFailedError carries every violation the schedule validator
// found after a mutation the caller requested.
type ValidationFailedError struct {
	Messages []string
}

func (e *ValidationFailedError) Error() string {
	return "schedule validation failed: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationFailedError) Unwrap() error { return schedule.ErrInvalidSchedule }

// =============================================================================
// GENERATION
// =============================================================================

// Preview generates the schedule a form would show, without persisting.
// Pure passthrough to the engine.
func (s *PlanService) Preview(input CreatePlanInput) ([]schedule.ScheduleItem, error) {
	return s.generate(input)
}

// CreatePlan generates the schedule and persists the new plan.
func (s *PlanService) CreatePlan(ctx context.Context, input CreatePlanInput) (*PaymentPlan, error) {
	if !input.Kind.IsValid() {
		return nil, &schedule.InvalidScheduleError{Field: "kind", Reason: "is not a known payable kind"}
	}

	items, err := s.generate(input)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	plan := &PaymentPlan{
		ID:          PlanID(uuid.NewString()),
		Kind:        input.Kind,
		ReferenceNo: input.ReferenceNo,
		Description: input.Description,
		TotalAmount: input.TotalAmount.Round(2),
		Frequency:   input.Frequency,
		StartDate:   schedule.DateOf(input.StartDate),
		NumPayments: len(items),
		Items:       schedule.RefreshStatuses(items, now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.SavePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Regenerate replaces the whole schedule with one built from new
// parameters. Only allowed while no payment exists: once money has
// landed, individual installments can still be rescheduled or cancelled,
// but the plan as a whole is locked.
func (s *PlanService) Regenerate(ctx context.Context, id PlanID, input CreatePlanInput) (*PaymentPlan, error) {
	plan, err := s.Store.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.HasPayments() {
		return nil, ErrPlanHasPayments
	}

	if input.Kind == "" {
		input.Kind = plan.Kind
	}
	if !input.Kind.IsValid() {
		return nil, &schedule.InvalidScheduleError{Field: "kind", Reason: "is not a known payable kind"}
	}
	items, err := s.generate(input)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	plan.Kind = input.Kind
	plan.TotalAmount = input.TotalAmount.Round(2)
	plan.Frequency = input.Frequency
	plan.StartDate = schedule.DateOf(input.StartDate)
	plan.NumPayments = len(items)
	plan.Items = schedule.RefreshStatuses(items, now)
	plan.UpdatedAt = now

	if err := s.Store.SavePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) generate(input CreatePlanInput) ([]schedule.ScheduleItem, error) {
	if input.Frequency == schedule.FrequencyCustom {
		return schedule.BuildFromDates(input.TotalAmount, input.CustomDates)
	}
	return schedule.Generate(input.TotalAmount, input.Frequency, input.StartDate, input.NumPayments)
}

// =============================================================================
// READS
// =============================================================================

// GetPlan loads a plan with statuses refreshed as of now.
func (s *PlanService) GetPlan(ctx context.Context, id PlanID) (*PaymentPlan, error) {
	plan, err := s.Store.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	plan.Items = schedule.RefreshStatuses(plan.Items, s.Now())
	return plan, nil
}

// ListPlans returns all plans, statuses refreshed.
func (s *PlanService) ListPlans(ctx context.Context) ([]*PaymentPlan, error) {
	plans, err := s.Store.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	for _, p := range plans {
		p.Items = schedule.RefreshStatuses(p.Items, now)
	}
	return plans, nil
}

// History returns the plan's append-only payment records.
func (s *PlanService) History(ctx context.Context, id PlanID) ([]PaymentRecord, error) {
	if _, err := s.Store.GetPlan(ctx, id); err != nil {
		return nil, err
	}
	return s.Store.Payments(ctx, id)
}

// Summary rolls up the plan's schedule as of now.
func (s *PlanService) Summary(ctx context.Context, id PlanID) (PlanSummary, error) {
	plan, err := s.Store.GetPlan(ctx, id)
	if err != nil {
		return PlanSummary{}, err
	}
	return Summarize(plan, s.Now()), nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

// RecordPayment runs the cascade for one payment event and persists the
// updated schedule together with its history records in one transaction.
// The returned breakdown is what the UI shows as the payment receipt.
func (s *PlanService) RecordPayment(ctx context.Context, id PlanID, event schedule.PaymentEvent) (*PaymentPlan, schedule.CascadeBreakdown, error) {
	plan, err := s.Store.GetPlan(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	updated, breakdown, err := schedule.ApplyPayment(plan.Items, event)
	if err != nil {
		return nil, nil, err
	}

	// The cascade must conserve money. A failure here is a bug, not bad
	// input, so it surfaces as ErrScheduleCorrupted.
	if result := schedule.Validate(updated, plan.TotalAmount); !result.IsValid {
		return nil, nil, fmt.Errorf("%w: %s", ErrScheduleCorrupted, strings.Join(result.Errors, "; "))
	}

	now := s.Now()
	plan.Items = schedule.RefreshStatuses(updated, now)
	plan.UpdatedAt = now

	records := recordsFromBreakdown(plan.ID, event, breakdown, now)
	err = runInTx(ctx, s.Store, func(tx PlanStore) error {
		if err := tx.SavePlan(ctx, plan); err != nil {
			return err
		}
		return tx.AppendPayments(ctx, records)
	})
	if err != nil {
		return nil, nil, err
	}
	return plan, breakdown, nil
}

// recordsFromBreakdown converts a cascade breakdown into history rows,
// carrying the payment event's metadata onto every line.
func recordsFromBreakdown(planID PlanID, event schedule.PaymentEvent, breakdown schedule.CascadeBreakdown, now time.Time) []PaymentRecord {
	records := make([]PaymentRecord, len(breakdown))
	for i, line := range breakdown {
		records[i] = PaymentRecord{
			ID:                uuid.NewString(),
			PlanID:            planID,
			ItemID:            line.ItemID,
			InstallmentNumber: line.InstallmentNumber,
			AmountApplied:     line.AmountApplied,
			CarriedOver:       line.CarriedOver,
			PaymentDate:       schedule.DateOf(event.PaymentDate),
			MethodCode:        event.MethodCode,
			RecordedBy:        event.RecordedBy,
			CreatedAt:         now,
		}
	}
	return records
}

// =============================================================================
// INSTALLMENT-LEVEL MUTATIONS
// =============================================================================

// CancelInstallment marks one unpaid installment CANCELLED and
// redistributes its due amount across the remaining open installments
// (even split, remainder on the last), keeping the plan total intact.
func (s *PlanService) CancelInstallment(ctx context.Context, id PlanID, itemID schedule.ItemID) (*PaymentPlan, error) {
	plan, err := s.Store.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	target := plan.Item(itemID)
	if target == nil {
		return nil, &schedule.ItemNotFoundError{ItemID: itemID}
	}
	if target.IsSettled() {
		return nil, &schedule.AlreadySettledError{ItemID: itemID, Status: target.Status}
	}
	if target.PaidAmount.IsPositive() {
		return nil, ErrItemNotEditable
	}

	var open []*schedule.ScheduleItem
	for i := range plan.Items {
		it := &plan.Items[i]
		if it.ID != itemID && !it.IsSettled() {
			open = append(open, it)
		}
	}
	if len(open) == 0 {
		return nil, ErrNoOpenInstallments
	}

	shares := schedule.SplitEvenly(target.CurrentDueAmount, len(open))
	for i, it := range open {
		it.CurrentDueAmount = it.CurrentDueAmount.Add(shares[i])
	}
	target.CurrentDueAmount = decimal.Zero
	target.Status = schedule.StatusCancelled
	target.IsEditable = false

	if result := schedule.Validate(plan.Items, plan.TotalAmount); !result.IsValid {
		return nil, fmt.Errorf("%w: %s", ErrScheduleCorrupted, strings.Join(result.Errors, "; "))
	}

	now := s.Now()
	plan.Items = schedule.RefreshStatuses(plan.Items, now)
	plan.UpdatedAt = now

	if err := s.Store.SavePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// RescheduleInstallment moves one installment's current due date. The
// original due date never changes, and the schedule must stay
// chronological.
func (s *PlanService) RescheduleInstallment(ctx context.Context, id PlanID, itemID schedule.ItemID, newDate time.Time) (*PaymentPlan, error) {
	plan, err := s.Store.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	target := plan.Item(itemID)
	if target == nil {
		return nil, &schedule.ItemNotFoundError{ItemID: itemID}
	}
	if target.IsSettled() {
		return nil, &schedule.AlreadySettledError{ItemID: itemID, Status: target.Status}
	}
	if !target.IsEditable {
		return nil, ErrItemNotEditable
	}
	if newDate.IsZero() {
		return nil, &schedule.InvalidScheduleError{Field: "dueDate", Reason: "is required"}
	}

	target.CurrentDueDate = schedule.DateOf(newDate)

	if result := schedule.Validate(plan.Items, plan.TotalAmount); !result.IsValid {
		return nil, &ValidationFailedError{Messages: result.Errors}
	}

	now := s.Now()
	plan.Items = schedule.RefreshStatuses(plan.Items, now)
	plan.UpdatedAt = now

	if err := s.Store.SavePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}
