package catalog

import (
	"context"
	"errors"

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

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doctorCols = `id, name, specialty, phone, remuneration, test_referral_commission, created_at, updated_at`

func (r *doctorRepoPG) scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Specialty, &d.Phone,
		&d.Remuneration, &d.TestReferralCommission, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor (id, name, specialty, phone, remuneration, test_referral_commission)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		d.ID, d.Name, d.Specialty, d.Phone, d.Remuneration, d.TestReferralCommission)
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := r.scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET name=$2, specialty=$3, phone=$4,
			remuneration=$5, test_referral_commission=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Specialty, d.Phone, d.Remuneration, d.TestReferralCommission)
	return err
}

func (r *doctorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	return err
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctor`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+doctorCols+` FROM doctor ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

// =========== Referrer Repository ===========

type referrerRepoPG struct{ pool *pgxpool.Pool }

func NewReferrerRepoPG(pool *pgxpool.Pool) ReferrerRepository { return &referrerRepoPG{pool: pool} }

func (r *referrerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const referrerCols = `id, name, kind, phone, commission, created_at, updated_at`

func (r *referrerRepoPG) scanReferrer(row pgx.Row) (*Referrer, error) {
	var ref Referrer
	err := row.Scan(&ref.ID, &ref.Name, &ref.Kind, &ref.Phone,
		&ref.Commission, &ref.CreatedAt, &ref.UpdatedAt)
	return &ref, err
}

func (r *referrerRepoPG) Create(ctx context.Context, ref *Referrer) error {
	ref.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO referrer (id, name, kind, phone, commission)
		VALUES ($1,$2,$3,$4,$5)`,
		ref.ID, ref.Name, ref.Kind, ref.Phone, ref.Commission)
	return err
}

func (r *referrerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Referrer, error) {
	ref, err := r.scanReferrer(r.conn(ctx).QueryRow(ctx, `SELECT `+referrerCols+` FROM referrer WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func (r *referrerRepoPG) Update(ctx context.Context, ref *Referrer) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE referrer SET name=$2, kind=$3, phone=$4, commission=$5, updated_at=NOW()
		WHERE id = $1`,
		ref.ID, ref.Name, ref.Kind, ref.Phone, ref.Commission)
	return err
}

func (r *referrerRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM referrer WHERE id = $1`, id)
	return err
}

func (r *referrerRepoPG) List(ctx context.Context, kind ReferrerKind, limit, offset int) ([]*Referrer, int, error) {
	where := ``
	args := []interface{}{limit, offset}
	countArgs := []interface{}{}
	if kind != "" {
		where = ` WHERE kind = $3`
		args = append(args, kind)
		countArgs = append(countArgs, kind)
	}
	countSQL := `SELECT COUNT(*) FROM referrer`
	if kind != "" {
		countSQL += ` WHERE kind = $1`
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+referrerCols+` FROM referrer`+where+` ORDER BY name ASC LIMIT $1 OFFSET $2`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Referrer
	for rows.Next() {
		ref, err := r.scanReferrer(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, ref)
	}
	return items, total, rows.Err()
}

// =========== LabTest Repository ===========

type labTestRepoPG struct{ pool *pgxpool.Pool }

func NewLabTestRepoPG(pool *pgxpool.Pool) LabTestRepository { return &labTestRepoPG{pool: pool} }

func (r *labTestRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const labTestCols = `id, name, price, doctor_pct, broker_pct, created_at, updated_at`

func (r *labTestRepoPG) scanTest(row pgx.Row) (*LabTest, error) {
	var t LabTest
	err := row.Scan(&t.ID, &t.Name, &t.Price, &t.DoctorPct, &t.BrokerPct, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *labTestRepoPG) Create(ctx context.Context, t *LabTest) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_test (id, name, price, doctor_pct, broker_pct)
		VALUES ($1,$2,$3,$4,$5)`,
		t.ID, t.Name, t.Price, t.DoctorPct, t.BrokerPct)
	return err
}

func (r *labTestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	t, err := r.scanTest(r.conn(ctx).QueryRow(ctx, `SELECT `+labTestCols+` FROM lab_test WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *labTestRepoPG) Update(ctx context.Context, t *LabTest) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_test SET name=$2, price=$3, doctor_pct=$4, broker_pct=$5, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.Name, t.Price, t.DoctorPct, t.BrokerPct)
	return err
}

func (r *labTestRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM lab_test WHERE id = $1`, id)
	return err
}

func (r *labTestRepoPG) List(ctx context.Context, limit, offset int) ([]*LabTest, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM lab_test`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+labTestCols+` FROM lab_test ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*LabTest
	for rows.Next() {
		t, err := r.scanTest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}
