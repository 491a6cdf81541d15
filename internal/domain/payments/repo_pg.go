package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diagnostic-center/dcms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// payeeCols maps a payee kind to the orders columns holding its identity
// and its unpaid revenue.
func payeeCols(kind PayeeKind) (idCol, revCol string, err error) {
	switch kind {
	case PayeeDoctor:
		return "doctor_id", "doctor_revenue", nil
	case PayeeBroker:
		return "broker_id", "broker_revenue", nil
	default:
		return "", "", fmt.Errorf("invalid payee kind: %q", kind)
	}
}

// =========== Allocation Repository ===========

type allocationRepoPG struct{ pool *pgxpool.Pool }

func NewAllocationRepoPG(pool *pgxpool.Pool) AllocationRepository {
	return &allocationRepoPG{pool: pool}
}

func (r *allocationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *allocationRepoPG) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.InTx(ctx, r.pool, fn)
}

func (r *allocationRepoPG) SelectOutstanding(ctx context.Context, payeeID uuid.UUID, kind PayeeKind, w Window) ([]*OutstandingOrder, error) {
	idCol, revCol, err := payeeCols(kind)
	if err != nil {
		return nil, err
	}
	sql := fmt.Sprintf(`SELECT id, %s, created_at FROM orders WHERE %s = $1 AND %s > 0`, revCol, idCol, revCol)
	args := []interface{}{payeeID}
	if w.Bounded {
		sql += ` AND created_at BETWEEN $2 AND $3`
		args = append(args, w.Start, w.End)
	}
	sql += ` ORDER BY created_at ASC FOR UPDATE`

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OutstandingOrder
	for rows.Next() {
		var o OutstandingOrder
		if err := rows.Scan(&o.OrderID, &o.Due, &o.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &o)
	}
	return items, rows.Err()
}

func (r *allocationRepoPG) ApplyPayment(ctx context.Context, orderID uuid.UUID, kind PayeeKind, applied, previous, next float64, paidAt time.Time) error {
	_, revCol, err := payeeCols(kind)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, fmt.Sprintf(`
		UPDATE orders SET %s = $2,
			hospital_revenue = hospital_revenue + $3,
			last_payment_date = $4,
			last_payment_amount = $3,
			total_payments_made = total_payments_made + $3,
			updated_at = NOW()
		WHERE id = $1`, revCol),
		orderID, next, applied, paidAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", orderID)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO order_payment (id, order_id, payee_kind, payment_date, payment_amount, previous_revenue, new_revenue)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		uuid.New(), orderID, kind, paidAt, applied, previous, next)
	return err
}

func (r *allocationRepoPG) PaidInWindow(ctx context.Context, payeeID uuid.UUID, kind PayeeKind, w Window) (float64, error) {
	idCol, _, err := payeeCols(kind)
	if err != nil {
		return 0, err
	}
	sql := fmt.Sprintf(`
		SELECT COALESCE(SUM(p.payment_amount), 0)
		FROM order_payment p
		JOIN orders o ON o.id = p.order_id
		WHERE p.payee_kind = $1 AND o.%s = $2`, idCol)
	args := []interface{}{kind, payeeID}
	if w.Bounded {
		sql += ` AND o.created_at BETWEEN $3 AND $4`
		args = append(args, w.Start, w.End)
	}
	var sum float64
	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&sum)
	return sum, err
}

// =========== Ledger Repository ===========

type ledgerRepoPG struct{ pool *pgxpool.Pool }

func NewLedgerRepoPG(pool *pgxpool.Pool) LedgerRepository {
	return &ledgerRepoPG{pool: pool}
}

func (r *ledgerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const ledgerCols = `id, payee_id, payee_kind, period_filter, period_start, period_end,
	payment_amount, total_amount, due_amount, recorded_at`

func (r *ledgerRepoPG) scanEntry(row pgx.Row) (*LedgerEntry, error) {
	var e LedgerEntry
	err := row.Scan(&e.ID, &e.PayeeID, &e.PayeeKind, &e.Period, &e.PeriodStart, &e.PeriodEnd,
		&e.PaymentAmount, &e.TotalAmount, &e.DueAmount, &e.RecordedAt)
	return &e, err
}

func (r *ledgerRepoPG) Append(ctx context.Context, e *LedgerEntry) error {
	e.ID = uuid.New()
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ledger_entry (id, payee_id, payee_kind, period_filter, period_start, period_end,
			payment_amount, total_amount, due_amount, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		e.ID, e.PayeeID, e.PayeeKind, e.Period, e.PeriodStart, e.PeriodEnd,
		e.PaymentAmount, e.TotalAmount, e.DueAmount, e.RecordedAt)
	return err
}

func (r *ledgerRepoPG) Latest(ctx context.Context, payeeID uuid.UUID, kind PayeeKind, w Window) (*LedgerEntry, error) {
	start, end := windowBounds(w)
	// IS NOT DISTINCT FROM matches the NULL bounds of the "all" filter.
	e, err := r.scanEntry(r.conn(ctx).QueryRow(ctx, `
		SELECT `+ledgerCols+` FROM ledger_entry
		WHERE payee_id = $1 AND payee_kind = $2
			AND period_start IS NOT DISTINCT FROM $3
			AND period_end IS NOT DISTINCT FROM $4
		ORDER BY recorded_at DESC LIMIT 1`,
		payeeID, kind, start, end))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoLedgerEntry
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *ledgerRepoPG) List(ctx context.Context, payeeID uuid.UUID, kind PayeeKind, limit, offset int) ([]*LedgerEntry, int, error) {
	where := ``
	args := []interface{}{}
	countArgs := []interface{}{}
	n := 0
	if payeeID != uuid.Nil {
		n++
		where = fmt.Sprintf(` WHERE payee_id = $%d`, n)
		args = append(args, payeeID)
		countArgs = append(countArgs, payeeID)
	}
	if kind != "" {
		n++
		if where == "" {
			where = fmt.Sprintf(` WHERE payee_kind = $%d`, n)
		} else {
			where += fmt.Sprintf(` AND payee_kind = $%d`, n)
		}
		args = append(args, kind)
		countArgs = append(countArgs, kind)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entry`+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT `+ledgerCols+` FROM ledger_entry`+where+` ORDER BY recorded_at DESC LIMIT $%d OFFSET $%d`, n+1, n+2),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*LedgerEntry
	for rows.Next() {
		e, err := r.scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func windowBounds(w Window) (start, end *time.Time) {
	if !w.Bounded {
		return nil, nil
	}
	return &w.Start, &w.End
}
