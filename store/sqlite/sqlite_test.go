/*
sqlite_test.go - Persistence round-trip tests

Runs against an in-memory SQLite database. Verifies that plans,
schedules, and payment records survive a save/load cycle without
losing cents, and that transactions roll back cleanly.
*/
package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joel-EstradaJr/ftms-deployed-sub000/payables"
	"github.com/Joel-EstradaJr/ftms-deployed-sub000/schedule"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testPlan(t *testing.T, id string) *payables.PaymentPlan {
	t.Helper()

	start := time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)
	items, err := schedule.Generate(schedule.Peso(15000), schedule.FrequencyMonthly, start, 3)
	require.NoError(t, err)

	now := time.Date(2024, time.June, 1, 10, 30, 0, 0, time.UTC)
	return &payables.PaymentPlan{
		ID:          payables.PlanID(id),
		Kind:        payables.KindAdministrativeExpense,
		ReferenceNo: "ADM-2024-042",
		Description: "Annual software licenses",
		TotalAmount: schedule.Peso(15000),
		Frequency:   schedule.FrequencyMonthly,
		StartDate:   start,
		NumPayments: 3,
		Items:       items,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestSaveAndGetPlan_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := testPlan(t, "plan-1")
	require.NoError(t, store.SavePlan(ctx, plan))

	loaded, err := store.GetPlan(ctx, "plan-1")
	require.NoError(t, err)

	assert.Equal(t, plan.ID, loaded.ID)
	assert.Equal(t, plan.Kind, loaded.Kind)
	assert.Equal(t, plan.ReferenceNo, loaded.ReferenceNo)
	assert.True(t, plan.TotalAmount.Equal(loaded.TotalAmount))
	assert.True(t, plan.StartDate.Equal(loaded.StartDate))
	assert.True(t, plan.CreatedAt.Equal(loaded.CreatedAt))

	require.Len(t, loaded.Items, 3)
	for i, it := range loaded.Items {
		assert.Equal(t, plan.Items[i].ID, it.ID)
		assert.Equal(t, i+1, it.InstallmentNumber)
		assert.True(t, plan.Items[i].CurrentDueAmount.Equal(it.CurrentDueAmount))
		assert.True(t, plan.Items[i].CurrentDueDate.Equal(it.CurrentDueDate))
		assert.Equal(t, schedule.StatusPending, it.Status)
		assert.True(t, it.IsEditable)
	}
}

func TestSavePlan_ReplacesScheduleWholesale(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := testPlan(t, "plan-1")
	require.NoError(t, store.SavePlan(ctx, plan))

	// Regenerate with a different shape under the same plan id.
	items, err := schedule.Generate(schedule.Peso(15000), schedule.FrequencyWeekly,
		time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC), 5)
	require.NoError(t, err)
	plan.Items = items
	plan.Frequency = schedule.FrequencyWeekly
	plan.NumPayments = 5
	require.NoError(t, store.SavePlan(ctx, plan))

	loaded, err := store.GetPlan(ctx, "plan-1")
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 5)
	assert.Equal(t, schedule.FrequencyWeekly, loaded.Frequency)
}

func TestGetPlan_RejectsCorruptStoredAmounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := testPlan(t, "plan-1")
	require.NoError(t, store.SavePlan(ctx, plan))

	_, err := store.db.Exec(
		`UPDATE schedule_items SET current_due_amount = 'not-a-number' WHERE installment_no = 2`)
	require.NoError(t, err)

	_, err = store.GetPlan(ctx, "plan-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt stored amount")

	_, err = store.db.Exec(`UPDATE plans SET total_amount = '' WHERE id = 'plan-1'`)
	require.NoError(t, err)

	_, err = store.GetPlan(ctx, "plan-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt stored amount")
}

func TestGetPlan_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetPlan(context.Background(), "missing")
	assert.ErrorIs(t, err, payables.ErrPlanNotFound)
}

func TestListPlans_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := testPlan(t, "plan-old")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := testPlan(t, "plan-new")

	require.NoError(t, store.SavePlan(ctx, older))
	require.NoError(t, store.SavePlan(ctx, newer))

	plans, err := store.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, payables.PlanID("plan-new"), plans[0].ID)
	assert.Equal(t, payables.PlanID("plan-old"), plans[1].ID)
	assert.Len(t, plans[0].Items, 3)
}

func TestAppendAndLoadPayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := testPlan(t, "plan-1")
	require.NoError(t, store.SavePlan(ctx, plan))

	paid := time.Date(2024, time.July, 14, 0, 0, 0, 0, time.UTC)
	records := []payables.PaymentRecord{
		{
			ID:                "rec-1",
			PlanID:            plan.ID,
			ItemID:            plan.Items[0].ID,
			InstallmentNumber: 1,
			AmountApplied:     schedule.Peso(5000),
			PaymentDate:       paid,
			MethodCode:        "BANK_TRANSFER",
			RecordedBy:        "treasurer",
			CreatedAt:         paid,
		},
		{
			ID:                "rec-2",
			PlanID:            plan.ID,
			ItemID:            plan.Items[1].ID,
			InstallmentNumber: 2,
			AmountApplied:     schedule.Peso(2000),
			CarriedOver:       true,
			PaymentDate:       paid,
			MethodCode:        "BANK_TRANSFER",
			RecordedBy:        "treasurer",
			CreatedAt:         paid,
		},
	}
	require.NoError(t, store.AppendPayments(ctx, records))

	loaded, err := store.Payments(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "rec-1", loaded[0].ID)
	assert.True(t, loaded[0].AmountApplied.Equal(schedule.Peso(5000)))
	assert.False(t, loaded[0].CarriedOver)
	assert.True(t, loaded[1].CarriedOver)
	assert.Equal(t, "treasurer", loaded[1].RecordedBy)
	assert.True(t, loaded[0].PaymentDate.Equal(paid))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx payables.PlanStore) error {
		if err := tx.SavePlan(ctx, testPlan(t, "plan-1")); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	_, err = store.GetPlan(ctx, "plan-1")
	assert.ErrorIs(t, err, payables.ErrPlanNotFound)
}

func TestReset_WipesAllTables(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := testPlan(t, "plan-1")
	require.NoError(t, store.SavePlan(ctx, plan))
	require.NoError(t, store.AppendPayments(ctx, []payables.PaymentRecord{{
		ID: "rec-1", PlanID: plan.ID, ItemID: plan.Items[0].ID,
		InstallmentNumber: 1, AmountApplied: schedule.Peso(100),
		PaymentDate: time.Now(), CreatedAt: time.Now(),
	}}))

	require.NoError(t, store.Reset(ctx))

	plans, err := store.ListPlans(ctx)
	require.NoError(t, err)
	assert.Empty(t, plans)

	records, err := store.Payments(ctx, plan.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}
