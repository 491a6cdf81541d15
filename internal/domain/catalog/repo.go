package catalog

import (
	"context"

	"github.com/google/uuid"
)

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
}

type ReferrerRepository interface {
	Create(ctx context.Context, r *Referrer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Referrer, error)
	Update(ctx context.Context, r *Referrer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, kind ReferrerKind, limit, offset int) ([]*Referrer, int, error)
}

type LabTestRepository interface {
	Create(ctx context.Context, t *LabTest) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabTest, error)
	Update(ctx context.Context, t *LabTest) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*LabTest, int, error)
}
