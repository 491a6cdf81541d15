package orders

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows order listings. Zero values mean no filter.
type ListFilter struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	BrokerID  uuid.UUID
}

type Repository interface {
	// Create persists the order and its item snapshots. Callers run it
	// inside a transaction via InTx so a failed item insert rolls back
	// the order row.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error)
	UpdateSplit(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Order, int, error)
	ListPayments(ctx context.Context, orderID uuid.UUID, limit, offset int) ([]*OrderPayment, int, error)

	// InTx runs fn with a database transaction on the context; every repo
	// call inside fn joins that transaction.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
