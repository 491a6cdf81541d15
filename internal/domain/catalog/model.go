// Package catalog holds the referral catalog: the doctors and
// brokers/agents who bring business in, and the lab tests on offer with
// their prices and commission percentages.
package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a looked-up catalog row does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation marks request errors the caller can correct.
var ErrValidation = errors.New("invalid request")

// ReferrerKind distinguishes the two non-doctor referral channels.
type ReferrerKind string

const (
	ReferrerBroker ReferrerKind = "broker"
	ReferrerAgent  ReferrerKind = "agent"
)

// Valid reports whether k is a known referrer kind.
func (k ReferrerKind) Valid() bool {
	return k == ReferrerBroker || k == ReferrerAgent
}

// Doctor maps to the doctor table.
type Doctor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Specialty *string   `db:"specialty" json:"specialty,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	// Remuneration is the flat fee the doctor earns per appointment.
	Remuneration float64 `db:"remuneration" json:"remuneration"`
	// TestReferralCommission is the doctor's default percentage on
	// referred test orders, used when a test has no percentage of its own.
	TestReferralCommission float64   `db:"test_referral_commission" json:"test_referral_commission"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// Referrer maps to the referrer table. Brokers and agents share the same
// shape and differ only in kind.
type Referrer struct {
	ID    uuid.UUID    `db:"id" json:"id"`
	Name  string       `db:"name" json:"name"`
	Kind  ReferrerKind `db:"kind" json:"kind"`
	Phone *string      `db:"phone" json:"phone,omitempty"`
	// Commission is the default percentage the referrer earns.
	Commission float64   `db:"commission" json:"commission"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// LabTest maps to the lab_test table.
type LabTest struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Name  string    `db:"name" json:"name"`
	Price float64   `db:"price" json:"price"`
	// DoctorPct and BrokerPct override the referrer defaults for this
	// particular test. Zero means no override.
	DoctorPct float64   `db:"doctor_pct" json:"doctor_pct"`
	BrokerPct float64   `db:"broker_pct" json:"broker_pct"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
