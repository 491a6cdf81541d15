package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AllocationRepository reads and mutates order revenue during allocation.
// Mutating calls are expected to run inside InTx so a mid-walk failure
// rolls everything back.
type AllocationRepository interface {
	// InTx runs fn with a database transaction on the context.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	// SelectOutstanding returns the payee's orders with revenue still owed,
	// ordered oldest first. Inside a transaction the rows are locked.
	SelectOutstanding(ctx context.Context, payeeID uuid.UUID, kind PayeeKind, w Window) ([]*OutstandingOrder, error)

	// ApplyPayment moves applied from the payee's revenue field to hospital
	// revenue, appends the order's payment history row, and refreshes the
	// denormalized payment summary.
	ApplyPayment(ctx context.Context, orderID uuid.UUID, kind PayeeKind, applied, previous, next float64, paidAt time.Time) error

	// PaidInWindow sums payments already made to the payee against orders
	// created inside the window.
	PaidInWindow(ctx context.Context, payeeID uuid.UUID, kind PayeeKind, w Window) (float64, error)
}

// LedgerRepository is the append-only balance log.
type LedgerRepository interface {
	Append(ctx context.Context, e *LedgerEntry) error
	// Latest returns the most recent entry for the payee and resolved
	// window, or an error when none exists.
	Latest(ctx context.Context, payeeID uuid.UUID, kind PayeeKind, w Window) (*LedgerEntry, error)
	List(ctx context.Context, payeeID uuid.UUID, kind PayeeKind, limit, offset int) ([]*LedgerEntry, int, error)
}
