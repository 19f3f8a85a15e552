package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joel-EstradaJr/ftms-deployed-sub000/schedule"
)

func TestDeriveStatus_FixedClock(t *testing.T) {
	asOf := date(2024, time.March, 1)

	tests := []struct {
		name      string
		due       time.Time
		paid      string
		status    schedule.PaymentStatus
		want      schedule.PaymentStatus
		wantLate  bool
	}{
		{"future unpaid", date(2024, time.April, 1), "0", schedule.StatusPending, schedule.StatusPending, false},
		{"due today is not overdue", date(2024, time.March, 1), "0", schedule.StatusPending, schedule.StatusPending, false},
		{"past unpaid", date(2024, time.February, 1), "0", schedule.StatusPending, schedule.StatusOverdue, true},
		{"past partially paid", date(2024, time.February, 1), "400", schedule.StatusPartiallyPaid, schedule.StatusOverdue, true},
		{"future partially paid", date(2024, time.April, 1), "400", schedule.StatusPending, schedule.StatusPartiallyPaid, false},
		{"paid in the past stays paid", date(2024, time.February, 1), "1000", schedule.StatusPaid, schedule.StatusPaid, false},
		{"paid within epsilon", date(2024, time.February, 1), "999.99", schedule.StatusPartiallyPaid, schedule.StatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := schedule.ScheduleItem{
				InstallmentNumber: 1,
				CurrentDueDate:    tt.due,
				CurrentDueAmount:  amt("1000"),
				PaidAmount:        amt(tt.paid),
				Status:            tt.status,
			}

			got, late := schedule.DeriveStatus(item, asOf)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantLate, late)
		})
	}
}

func TestDeriveStatus_CancelledIsSticky(t *testing.T) {
	item := schedule.ScheduleItem{
		CurrentDueDate:   date(2020, time.January, 1),
		CurrentDueAmount: amt("1000"),
		Status:           schedule.StatusCancelled,
	}

	got, late := schedule.DeriveStatus(item, date(2024, time.March, 1))
	assert.Equal(t, schedule.StatusCancelled, got)
	assert.False(t, late, "cancelled installments are never past due")
}

func TestRefreshStatuses_DoesNotMutateInput(t *testing.T) {
	items := fixedSchedule("1000", "1000")
	// First installment due 2024-01-15, second 2024-02-15.

	refreshed := schedule.RefreshStatuses(items, date(2024, time.February, 1))
	require.Len(t, refreshed, 2)

	assert.Equal(t, schedule.StatusOverdue, refreshed[0].Status)
	assert.True(t, refreshed[0].IsPastDue)
	assert.Equal(t, schedule.StatusPending, refreshed[1].Status)

	assert.Equal(t, schedule.StatusPending, items[0].Status, "input must stay untouched")
	assert.False(t, items[0].IsPastDue)
}
