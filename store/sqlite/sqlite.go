/*
Package sqlite provides a SQLite-backed implementation of payables.PlanStore.

PURPOSE:
  Persists payment plans, their installment schedules, and the append-only
  payment history. The same patterns apply to PostgreSQL in production -
  only minor SQL dialect differences.

KEY TABLES:
  plans:           One row per payment plan
  schedule_items:  The plan's installments (replaced wholesale on save)
  payment_records: Immutable payment history (append-only)

APPEND-ONLY ENFORCEMENT:
  payment_records has no UPDATE or DELETE path in this package. Schedule
  items are plan state, not audit data, so SavePlan replaces them; the
  history explains how they got there.

MONEY REPRESENTATION:
  Amounts are stored as TEXT and parsed with decimal.NewFromString.
  Storing REAL would reintroduce the floating-point drift the engine
  exists to avoid.

WAL MODE:
  The database is opened with WAL for better read concurrency. SQLite
  serializes writers, which doubles as the per-plan write lock the engine
  asks its callers to hold.

USAGE:
  store, err := sqlite.New("./data/ftms.db")
  if err != nil { log.Fatal(err) }
  defer store.Close()
  svc := payables.NewPlanService(store)

SEE ALSO:
  - payables/store.go: Interface definitions
  - payables/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/Joel-EstradaJr/ftms-deployed-sub000/payables"
	"github.com/Joel-EstradaJr/ftms-deployed-sub000/schedule"
)

const (
	dayFormat  = "2006-01-02"
	timeFormat = time.RFC3339
)

// Store implements payables.PlanStore and payables.TxPlanStore.
type Store struct {
	db *sql.DB
}

// Compile-time interface checks.
var (
	_ payables.PlanStore   = (*Store)(nil)
	_ payables.TxPlanStore = (*Store)(nil)
)

// New creates a SQLite store at the given path. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single ":memory:" database exists per connection, so the pool must
	// not grow past one. SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		reference_no TEXT NOT NULL,
		description TEXT,
		total_amount TEXT NOT NULL,
		frequency TEXT NOT NULL,
		start_date TEXT,
		num_payments INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS schedule_items (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL REFERENCES plans(id),
		installment_no INTEGER NOT NULL,
		original_due_date TEXT NOT NULL,
		current_due_date TEXT NOT NULL,
		original_due_amount TEXT NOT NULL,
		current_due_amount TEXT NOT NULL,
		paid_amount TEXT NOT NULL,
		carried_over_amount TEXT NOT NULL,
		status TEXT NOT NULL,
		is_past_due INTEGER NOT NULL DEFAULT 0,
		is_editable INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_schedule_items_plan
		ON schedule_items(plan_id, installment_no);

	-- Append-only payment history. No UPDATE/DELETE in this package.
	CREATE TABLE IF NOT EXISTS payment_records (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL REFERENCES plans(id),
		item_id TEXT NOT NULL,
		installment_no INTEGER NOT NULL,
		amount_applied TEXT NOT NULL,
		carried_over INTEGER NOT NULL DEFAULT 0,
		payment_date TEXT NOT NULL,
		method_code TEXT,
		recorded_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payment_records_plan
		ON payment_records(plan_id, created_at);
	`
	_, err := s.db.Exec(schemaSQL)
	return err
}

// =============================================================================
// DBTX - Shared between *sql.DB and *sql.Tx
// =============================================================================

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// PLAN STORE IMPLEMENTATION
// =============================================================================

func (s *Store) SavePlan(ctx context.Context, plan *payables.PaymentPlan) error {
	return s.WithTx(ctx, func(tx payables.PlanStore) error {
		return tx.SavePlan(ctx, plan)
	})
}

func savePlan(ctx context.Context, db dbtx, plan *payables.PaymentPlan) error {
	startDate := ""
	if !plan.StartDate.IsZero() {
		startDate = plan.StartDate.Format(dayFormat)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO plans (id, kind, reference_no, description, total_amount,
			frequency, start_date, num_payments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			reference_no = excluded.reference_no,
			description = excluded.description,
			total_amount = excluded.total_amount,
			frequency = excluded.frequency,
			start_date = excluded.start_date,
			num_payments = excluded.num_payments,
			updated_at = excluded.updated_at`,
		string(plan.ID), string(plan.Kind), plan.ReferenceNo, plan.Description,
		plan.TotalAmount.StringFixed(2), string(plan.Frequency), startDate,
		plan.NumPayments, plan.CreatedAt.UTC().Format(timeFormat),
		plan.UpdatedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}

	// Schedule items are plan state: replace them wholesale.
	if _, err := db.ExecContext(ctx, `DELETE FROM schedule_items WHERE plan_id = ?`, string(plan.ID)); err != nil {
		return fmt.Errorf("clear schedule items: %w", err)
	}
	for _, it := range plan.Items {
		_, err := db.ExecContext(ctx, `
			INSERT INTO schedule_items (id, plan_id, installment_no,
				original_due_date, current_due_date, original_due_amount,
				current_due_amount, paid_amount, carried_over_amount,
				status, is_past_due, is_editable)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(it.ID), string(plan.ID), it.InstallmentNumber,
			it.OriginalDueDate.Format(dayFormat), it.CurrentDueDate.Format(dayFormat),
			it.OriginalDueAmount.StringFixed(2), it.CurrentDueAmount.StringFixed(2),
			it.PaidAmount.StringFixed(2), it.CarriedOverAmount.StringFixed(2),
			string(it.Status), boolToInt(it.IsPastDue), boolToInt(it.IsEditable))
		if err != nil {
			return fmt.Errorf("save schedule item %d: %w", it.InstallmentNumber, err)
		}
	}
	return nil
}

func (s *Store) GetPlan(ctx context.Context, id payables.PlanID) (*payables.PaymentPlan, error) {
	return getPlan(ctx, s.db, id)
}

func getPlan(ctx context.Context, db dbtx, id payables.PlanID) (*payables.PaymentPlan, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, kind, reference_no, description, total_amount, frequency,
			start_date, num_payments, created_at, updated_at
		FROM plans WHERE id = ?`, string(id))

	plan, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, payables.ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := loadItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	plan.Items = items
	return plan, nil
}

func (s *Store) ListPlans(ctx context.Context) ([]*payables.PaymentPlan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, reference_no, description, total_amount, frequency,
			start_date, num_payments, created_at, updated_at
		FROM plans ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*payables.PaymentPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, plan := range plans {
		items, err := loadItems(ctx, s.db, plan.ID)
		if err != nil {
			return nil, err
		}
		plan.Items = items
	}
	return plans, nil
}

func (s *Store) AppendPayments(ctx context.Context, records []payables.PaymentRecord) error {
	return appendPayments(ctx, s.db, records)
}

func appendPayments(ctx context.Context, db dbtx, records []payables.PaymentRecord) error {
	for _, r := range records {
		_, err := db.ExecContext(ctx, `
			INSERT INTO payment_records (id, plan_id, item_id, installment_no,
				amount_applied, carried_over, payment_date, method_code,
				recorded_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, string(r.PlanID), string(r.ItemID), r.InstallmentNumber,
			r.AmountApplied.StringFixed(2), boolToInt(r.CarriedOver),
			r.PaymentDate.Format(dayFormat), r.MethodCode, r.RecordedBy,
			r.CreatedAt.UTC().Format(timeFormat))
		if err != nil {
			return fmt.Errorf("append payment record: %w", err)
		}
	}
	return nil
}

func (s *Store) Payments(ctx context.Context, planID payables.PlanID) ([]payables.PaymentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, plan_id, item_id, installment_no, amount_applied,
			carried_over, payment_date, method_code, recorded_by, created_at
		FROM payment_records WHERE plan_id = ?
		ORDER BY created_at, installment_no`, string(planID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []payables.PaymentRecord
	for rows.Next() {
		var (
			r                        payables.PaymentRecord
			pid, iid                 string
			amount, payDate, created string
			carried                  int
		)
		if err := rows.Scan(&r.ID, &pid, &iid, &r.InstallmentNumber,
			&amount, &carried, &payDate, &r.MethodCode, &r.RecordedBy, &created); err != nil {
			return nil, err
		}
		r.PlanID = payables.PlanID(pid)
		r.ItemID = schedule.ItemID(iid)
		if r.AmountApplied, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		r.CarriedOver = carried != 0
		r.PaymentDate, _ = time.ParseInLocation(dayFormat, payDate, time.UTC)
		r.CreatedAt, _ = time.Parse(timeFormat, created)
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(payables.PlanStore) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(&txStore{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// txStore is a PlanStore bound to an open transaction.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) SavePlan(ctx context.Context, plan *payables.PaymentPlan) error {
	return savePlan(ctx, ts.tx, plan)
}

func (ts *txStore) GetPlan(ctx context.Context, id payables.PlanID) (*payables.PaymentPlan, error) {
	return getPlan(ctx, ts.tx, id)
}

func (ts *txStore) ListPlans(ctx context.Context) ([]*payables.PaymentPlan, error) {
	return nil, fmt.Errorf("ListPlans is not available inside a transaction")
}

func (ts *txStore) AppendPayments(ctx context.Context, records []payables.PaymentRecord) error {
	return appendPayments(ctx, ts.tx, records)
}

func (ts *txStore) Payments(ctx context.Context, planID payables.PlanID) ([]payables.PaymentRecord, error) {
	return nil, fmt.Errorf("Payments is not available inside a transaction")
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset wipes all data. Used by demo scenario loading only.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"payment_records", "schedule_items", "plans"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SCANNING HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*payables.PaymentPlan, error) {
	var (
		plan             payables.PaymentPlan
		id, kind, freq   string
		total, start     string
		created, updated string
	)
	err := row.Scan(&id, &kind, &plan.ReferenceNo, &plan.Description, &total,
		&freq, &start, &plan.NumPayments, &created, &updated)
	if err != nil {
		return nil, err
	}

	plan.ID = payables.PlanID(id)
	plan.Kind = payables.PayableKind(kind)
	if plan.TotalAmount, err = parseDecimal(total); err != nil {
		return nil, err
	}
	plan.Frequency = schedule.Frequency(freq)
	if start != "" {
		plan.StartDate, _ = time.ParseInLocation(dayFormat, start, time.UTC)
	}
	plan.CreatedAt, _ = time.Parse(timeFormat, created)
	plan.UpdatedAt, _ = time.Parse(timeFormat, updated)
	return &plan, nil
}

func loadItems(ctx context.Context, db dbtx, planID payables.PlanID) ([]schedule.ScheduleItem, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, installment_no, original_due_date, current_due_date,
			original_due_amount, current_due_amount, paid_amount,
			carried_over_amount, status, is_past_due, is_editable
		FROM schedule_items WHERE plan_id = ?
		ORDER BY installment_no`, string(planID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []schedule.ScheduleItem
	for rows.Next() {
		var (
			it                             schedule.ScheduleItem
			id, origDate, currDate, status string
			origAmt, currAmt, paid, carry  string
			pastDue, editable              int
		)
		if err := rows.Scan(&id, &it.InstallmentNumber, &origDate, &currDate,
			&origAmt, &currAmt, &paid, &carry, &status, &pastDue, &editable); err != nil {
			return nil, err
		}
		it.ID = schedule.ItemID(id)
		it.OriginalDueDate, _ = time.ParseInLocation(dayFormat, origDate, time.UTC)
		it.CurrentDueDate, _ = time.ParseInLocation(dayFormat, currDate, time.UTC)
		if it.OriginalDueAmount, err = parseDecimal(origAmt); err != nil {
			return nil, err
		}
		if it.CurrentDueAmount, err = parseDecimal(currAmt); err != nil {
			return nil, err
		}
		if it.PaidAmount, err = parseDecimal(paid); err != nil {
			return nil, err
		}
		if it.CarriedOverAmount, err = parseDecimal(carry); err != nil {
			return nil, err
		}
		it.Status = schedule.PaymentStatus(status)
		it.IsPastDue = pastDue != 0
		it.IsEditable = editable != 0
		items = append(items, it)
	}
	return items, rows.Err()
}

// parseDecimal rejects corrupt stored amounts instead of defaulting them;
// a zeroed amount would silently break the schedule sum invariant.
func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("corrupt stored amount %q: %w", s, err)
	}
	return d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
