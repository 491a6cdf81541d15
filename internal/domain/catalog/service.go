package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	doctors   DoctorRepository
	referrers ReferrerRepository
	tests     LabTestRepository
}

func NewService(doctors DoctorRepository, referrers ReferrerRepository, tests LabTestRepository) *Service {
	return &Service{doctors: doctors, referrers: referrers, tests: tests}
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if err := validateDoctor(d); err != nil {
		return err
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if err := validateDoctor(d); err != nil {
		return err
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

func validateDoctor(d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if d.Remuneration < 0 {
		return fmt.Errorf("%w: remuneration must not be negative", ErrValidation)
	}
	if d.TestReferralCommission < 0 || d.TestReferralCommission > 100 {
		return fmt.Errorf("%w: test_referral_commission must be between 0 and 100", ErrValidation)
	}
	return nil
}

// -- Referrer --

func (s *Service) CreateReferrer(ctx context.Context, r *Referrer) error {
	if err := validateReferrer(r); err != nil {
		return err
	}
	return s.referrers.Create(ctx, r)
}

func (s *Service) GetReferrer(ctx context.Context, id uuid.UUID) (*Referrer, error) {
	return s.referrers.GetByID(ctx, id)
}

func (s *Service) UpdateReferrer(ctx context.Context, r *Referrer) error {
	if err := validateReferrer(r); err != nil {
		return err
	}
	return s.referrers.Update(ctx, r)
}

func (s *Service) DeleteReferrer(ctx context.Context, id uuid.UUID) error {
	return s.referrers.Delete(ctx, id)
}

func (s *Service) ListReferrers(ctx context.Context, kind ReferrerKind, limit, offset int) ([]*Referrer, int, error) {
	if kind != "" && !kind.Valid() {
		return nil, 0, fmt.Errorf("%w: invalid referrer kind: %s", ErrValidation, kind)
	}
	return s.referrers.List(ctx, kind, limit, offset)
}

func validateReferrer(r *Referrer) error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: invalid referrer kind: %s", ErrValidation, r.Kind)
	}
	if r.Commission < 0 || r.Commission > 100 {
		return fmt.Errorf("%w: commission must be between 0 and 100", ErrValidation)
	}
	return nil
}

// -- LabTest --

func (s *Service) CreateTest(ctx context.Context, t *LabTest) error {
	if err := validateTest(t); err != nil {
		return err
	}
	return s.tests.Create(ctx, t)
}

func (s *Service) GetTest(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	return s.tests.GetByID(ctx, id)
}

func (s *Service) UpdateTest(ctx context.Context, t *LabTest) error {
	if err := validateTest(t); err != nil {
		return err
	}
	return s.tests.Update(ctx, t)
}

func (s *Service) DeleteTest(ctx context.Context, id uuid.UUID) error {
	return s.tests.Delete(ctx, id)
}

func (s *Service) ListTests(ctx context.Context, limit, offset int) ([]*LabTest, int, error) {
	return s.tests.List(ctx, limit, offset)
}

func validateTest(t *LabTest) error {
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if t.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if t.DoctorPct < 0 || t.DoctorPct > 100 {
		return fmt.Errorf("%w: doctor_pct must be between 0 and 100", ErrValidation)
	}
	if t.BrokerPct < 0 || t.BrokerPct > 100 {
		return fmt.Errorf("%w: broker_pct must be between 0 and 100", ErrValidation)
	}
	if t.DoctorPct+t.BrokerPct > 100 {
		return fmt.Errorf("%w: doctor_pct and broker_pct together exceed 100", ErrValidation)
	}
	return nil
}
