package orders

import (
	"context"
	"errors"
	"fmt"

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.InTx(ctx, r.pool, fn)
}

const orderCols = `id, kind, patient_id, doctor_id, doctor_name, broker_id, broker_name,
	total_amount, hospital_revenue, doctor_revenue, broker_revenue,
	last_payment_date, last_payment_amount, total_payments_made, created_at, updated_at`

func (r *repoPG) scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Kind, &o.PatientID, &o.DoctorID, &o.DoctorName, &o.BrokerID, &o.BrokerName,
		&o.TotalAmount, &o.HospitalRevenue, &o.DoctorRevenue, &o.BrokerRevenue,
		&o.LastPaymentDate, &o.LastPaymentAmount, &o.TotalPaymentsMade, &o.CreatedAt, &o.UpdatedAt)
	return &o, err
}

func (r *repoPG) Create(ctx context.Context, o *Order) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO orders (id, kind, patient_id, doctor_id, doctor_name, broker_id, broker_name,
			total_amount, hospital_revenue, doctor_revenue, broker_revenue)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		o.ID, o.Kind, o.PatientID, o.DoctorID, o.DoctorName, o.BrokerID, o.BrokerName,
		o.TotalAmount, o.HospitalRevenue, o.DoctorRevenue, o.BrokerRevenue)
	if err != nil {
		return err
	}
	for _, item := range o.Items {
		item.ID = uuid.New()
		item.OrderID = o.ID
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO order_item (id, order_id, test_id, test_name, test_price, doctor_pct, broker_pct)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, item.OrderID, item.TestID, item.TestName, item.TestPrice, item.DoctorPct, item.BrokerPct)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := r.scanOrder(r.conn(ctx).QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repoPG) GetItems(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, order_id, test_id, test_name, test_price, doctor_pct, broker_pct
		FROM order_item WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.TestID, &it.TestName, &it.TestPrice, &it.DoctorPct, &it.BrokerPct); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// UpdateSplit rewrites the billed total, the referral identities, and the
// three revenue fields after a re-split.
func (r *repoPG) UpdateSplit(ctx context.Context, o *Order) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE orders SET total_amount=$2, hospital_revenue=$3, doctor_revenue=$4, broker_revenue=$5,
			doctor_id=$6, doctor_name=$7, broker_id=$8, broker_name=$9, updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.TotalAmount, o.HospitalRevenue, o.DoctorRevenue, o.BrokerRevenue,
		o.DoctorID, o.DoctorName, o.BrokerID, o.BrokerName)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Order, int, error) {
	where := ``
	var conds []string
	args := []interface{}{}
	n := 0
	add := func(cond string, v interface{}) {
		n++
		conds = append(conds, fmt.Sprintf(cond, n))
		args = append(args, v)
	}
	if f.PatientID != uuid.Nil {
		add("patient_id = $%d", f.PatientID)
	}
	if f.DoctorID != uuid.Nil {
		add("doctor_id = $%d", f.DoctorID)
	}
	if f.BrokerID != uuid.Nil {
		add("broker_id = $%d", f.BrokerID)
	}
	for i, c := range conds {
		if i == 0 {
			where = ` WHERE ` + c
		} else {
			where += ` AND ` + c
		}
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT `+orderCols+` FROM orders`+where+` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n+1, n+2),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListPayments(ctx context.Context, orderID uuid.UUID, limit, offset int) ([]*OrderPayment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM order_payment WHERE order_id = $1`, orderID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, order_id, payee_kind, payment_date, payment_amount, previous_revenue, new_revenue
		FROM order_payment WHERE order_id = $1 ORDER BY payment_date DESC LIMIT $2 OFFSET $3`,
		orderID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*OrderPayment
	for rows.Next() {
		var p OrderPayment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.PayeeKind, &p.PaymentDate, &p.PaymentAmount, &p.PreviousRevenue, &p.NewRevenue); err != nil {
			return nil, 0, err
		}
		items = append(items, &p)
	}
	return items, total, rows.Err()
}
