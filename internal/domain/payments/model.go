// Package payments settles referral commissions. An allocation takes a
// payment made to a doctor or broker and walks it across that payee's
// outstanding orders oldest-first, moving the applied amount into hospital
// revenue. Every allocation also appends a ledger entry so the payee's
// balance for a period can be audited after the fact.
package payments

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PayeeKind names which revenue field of an order an allocation drains.
type PayeeKind string

const (
	PayeeDoctor PayeeKind = "doctor"
	PayeeBroker PayeeKind = "broker"
)

// Valid reports whether k is a known payee kind.
func (k PayeeKind) Valid() bool {
	return k == PayeeDoctor || k == PayeeBroker
}

// PeriodFilter selects the time window an allocation or balance query
// applies to.
type PeriodFilter string

const (
	PeriodWeek   PeriodFilter = "week"
	PeriodMonth  PeriodFilter = "month"
	PeriodYear   PeriodFilter = "year"
	PeriodCustom PeriodFilter = "custom"
	PeriodAll    PeriodFilter = "all"
)

// Valid reports whether f is a known period filter.
func (f PeriodFilter) Valid() bool {
	switch f {
	case PeriodWeek, PeriodMonth, PeriodYear, PeriodCustom, PeriodAll:
		return true
	}
	return false
}

// Window is a resolved concrete period. Bounded is false for the "all"
// filter, in which case Start and End are meaningless.
type Window struct {
	Start   time.Time
	End     time.Time
	Bounded bool
}

// AllocationRequest is the allocate payload. CustomStart and CustomEnd are
// YYYY-MM-DD dates, consulted only when Period is "custom".
type AllocationRequest struct {
	PayeeID     uuid.UUID    `json:"payee_id"`
	PayeeKind   PayeeKind    `json:"payee_kind"`
	Amount      float64      `json:"amount"`
	Period      PeriodFilter `json:"period"`
	CustomStart string       `json:"custom_start,omitempty"`
	CustomEnd   string       `json:"custom_end,omitempty"`
}

// UpdatedOrder records what an allocation did to one order.
type UpdatedOrder struct {
	OrderID         uuid.UUID `json:"order_id"`
	PreviousRevenue float64   `json:"previous_revenue"`
	NewRevenue      float64   `json:"new_revenue"`
	Applied         float64   `json:"applied"`
}

// AllocationResult summarizes a successful allocation. RemainingPayment is
// always zero: a payment that cannot be fully absorbed is rejected up front.
type AllocationResult struct {
	OrdersUpdated    int            `json:"orders_updated"`
	UpdatedOrders    []UpdatedOrder `json:"updated_orders"`
	RemainingPayment float64        `json:"remaining_payment"`
}

// OutstandingOrder is one order still owing commission to a payee.
type OutstandingOrder struct {
	OrderID   uuid.UUID `json:"order_id"`
	Due       float64   `json:"due"`
	CreatedAt time.Time `json:"created_at"`
}

// LedgerEntry maps to the ledger_entry table. Entries are append-only;
// the balance for a (payee, window) is the latest entry, never an update
// in place. PeriodStart and PeriodEnd are nil for the "all" filter.
type LedgerEntry struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	PayeeID     uuid.UUID    `db:"payee_id" json:"payee_id"`
	PayeeKind   PayeeKind    `db:"payee_kind" json:"payee_kind"`
	Period      PeriodFilter `db:"period_filter" json:"period_filter"`
	PeriodStart *time.Time   `db:"period_start" json:"period_start,omitempty"`
	PeriodEnd   *time.Time   `db:"period_end" json:"period_end,omitempty"`
	// PaymentAmount is the cumulative amount paid to the payee within the
	// window as of RecordedAt. TotalAmount snapshots the revenue the payee
	// earned in the window; DueAmount is their difference.
	PaymentAmount float64   `db:"payment_amount" json:"payment_amount"`
	TotalAmount   float64   `db:"total_amount" json:"total_amount"`
	DueAmount     float64   `db:"due_amount" json:"due_amount"`
	RecordedAt    time.Time `db:"recorded_at" json:"recorded_at"`
}

// ErrNoOrders means the payee has no outstanding orders inside the window.
var ErrNoOrders = errors.New("no outstanding orders for payee in period")

// ErrNoLedgerEntry means no allocation has been recorded for the payee and
// window yet.
var ErrNoLedgerEntry = errors.New("no ledger entry for payee and period")

// ErrValidation marks request errors the caller can correct. Handlers map
// it to 400; anything unrecognized is treated as a server fault.
var ErrValidation = errors.New("invalid request")

// ExceedsOutstandingError rejects a payment larger than everything the
// payee is owed in the window. Nothing is mutated.
type ExceedsOutstandingError struct {
	Outstanding float64
}

func (e *ExceedsOutstandingError) Error() string {
	return fmt.Sprintf("payment exceeds outstanding amount %.2f", e.Outstanding)
}
