// Package store provides PlanStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/Joel-EstradaJr/ftms-deployed-sub000/payables"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	plans    map[payables.PlanID]*payables.PaymentPlan
	payments map[payables.PlanID][]payables.PaymentRecord
}

func NewMemory() *Memory {
	return &Memory{
		plans:    make(map[payables.PlanID]*payables.PaymentPlan),
		payments: make(map[payables.PlanID][]payables.PaymentRecord),
	}
}

// SavePlan inserts or replaces a plan. Stores a deep copy so callers can
// keep mutating their own instance.
func (m *Memory) SavePlan(_ context.Context, plan *payables.PaymentPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[plan.ID] = plan.Clone()
	return nil
}

// GetPlan returns a deep copy of the stored plan.
func (m *Memory) GetPlan(_ context.Context, id payables.PlanID) (*payables.PaymentPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plan, ok := m.plans[id]
	if !ok {
		return nil, payables.ErrPlanNotFound
	}
	return plan.Clone(), nil
}

// ListPlans returns copies of all plans, newest first.
func (m *Memory) ListPlans(_ context.Context) ([]*payables.PaymentPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plans := make([]*payables.PaymentPlan, 0, len(m.plans))
	for _, p := range m.plans {
		plans = append(plans, p.Clone())
	}
	sort.Slice(plans, func(i, j int) bool {
		if plans[i].CreatedAt.Equal(plans[j].CreatedAt) {
			return plans[i].ID > plans[j].ID
		}
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	return plans, nil
}

// AppendPayments appends history records. Append-only: there is no way to
// update or remove a record once stored.
func (m *Memory) AppendPayments(_ context.Context, records []payables.PaymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		m.payments[r.PlanID] = append(m.payments[r.PlanID], r)
	}
	return nil
}

// Payments returns a plan's history in insertion order.
func (m *Memory) Payments(_ context.Context, planID payables.PlanID) ([]payables.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]payables.PaymentRecord, len(m.payments[planID]))
	copy(records, m.payments[planID])
	return records, nil
}
