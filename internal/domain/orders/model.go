// Package orders is the intake side of the revenue engine. An order is a
// billed appointment or test bundle; at creation its total is split into
// hospital, doctor, and broker revenue, and those fields are later drained
// by payment allocation.
package orders

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/diagnostic-center/dcms/internal/split"
)

// ErrNotFound is returned when the referenced order does not exist.
var ErrNotFound = errors.New("order not found")

// ErrValidation marks request errors the caller can correct. Handlers map
// it to 400; anything unrecognized is treated as a server fault.
var ErrValidation = errors.New("invalid request")

// Order maps to the orders table. The three revenue fields always sum to
// TotalAmount; allocation moves money from the doctor or broker field into
// the hospital field, never the other way.
type Order struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Kind      split.OrderKind `db:"kind" json:"kind"`
	PatientID uuid.UUID       `db:"patient_id" json:"patient_id"`

	DoctorID   *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	DoctorName *string    `db:"doctor_name" json:"doctor_name,omitempty"`
	BrokerID   *uuid.UUID `db:"broker_id" json:"broker_id,omitempty"`
	BrokerName *string    `db:"broker_name" json:"broker_name,omitempty"`

	TotalAmount     float64 `db:"total_amount" json:"total_amount"`
	HospitalRevenue float64 `db:"hospital_revenue" json:"hospital_revenue"`
	DoctorRevenue   float64 `db:"doctor_revenue" json:"doctor_revenue"`
	BrokerRevenue   float64 `db:"broker_revenue" json:"broker_revenue"`

	// Denormalized payment summary, refreshed on every allocation.
	LastPaymentDate   *time.Time `db:"last_payment_date" json:"last_payment_date,omitempty"`
	LastPaymentAmount float64    `db:"last_payment_amount" json:"last_payment_amount"`
	TotalPaymentsMade float64    `db:"total_payments_made" json:"total_payments_made"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Items []*OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem snapshots a lab test's price and commission percentages as they
// stood when the order was placed. Later catalog edits never reprice an
// existing order.
type OrderItem struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	TestID    uuid.UUID `db:"test_id" json:"test_id"`
	TestName  string    `db:"test_name" json:"test_name"`
	TestPrice float64   `db:"test_price" json:"test_price"`
	DoctorPct float64   `db:"doctor_pct" json:"doctor_pct"`
	BrokerPct float64   `db:"broker_pct" json:"broker_pct"`
}

// OrderPayment is one append-only row of an order's payment history.
type OrderPayment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	OrderID         uuid.UUID `db:"order_id" json:"order_id"`
	PayeeKind       string    `db:"payee_kind" json:"payee_kind"`
	PaymentDate     time.Time `db:"payment_date" json:"payment_date"`
	PaymentAmount   float64   `db:"payment_amount" json:"payment_amount"`
	PreviousRevenue float64   `db:"previous_revenue" json:"previous_revenue"`
	NewRevenue      float64   `db:"new_revenue" json:"new_revenue"`
}

// CreateOrderRequest is the order intake payload. Test orders reference
// catalog tests by id; the service snapshots them into items.
type CreateOrderRequest struct {
	Kind        split.OrderKind `json:"kind"`
	PatientID   uuid.UUID       `json:"patient_id"`
	DoctorID    *uuid.UUID      `json:"doctor_id,omitempty"`
	BrokerID    *uuid.UUID      `json:"broker_id,omitempty"`
	TotalAmount float64         `json:"total_amount"`
	TestIDs     []uuid.UUID     `json:"test_ids,omitempty"`
}

// UpdateTotalRequest edits an order's billed total, optionally switching the
// referral identities before the split is recomputed.
type UpdateTotalRequest struct {
	TotalAmount float64    `json:"total_amount"`
	DoctorID    *uuid.UUID `json:"doctor_id,omitempty"`
	BrokerID    *uuid.UUID `json:"broker_id,omitempty"`
}
