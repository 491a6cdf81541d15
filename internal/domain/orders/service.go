package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/diagnostic-center/dcms/internal/domain/catalog"
	"github.com/diagnostic-center/dcms/internal/platform/metrics"
	"github.com/diagnostic-center/dcms/internal/platform/notify"
	"github.com/diagnostic-center/dcms/internal/split"
)

// Catalog is the slice of the catalog service order intake depends on.
type Catalog interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*catalog.Doctor, error)
	GetReferrer(ctx context.Context, id uuid.UUID) (*catalog.Referrer, error)
	GetTest(ctx context.Context, id uuid.UUID) (*catalog.LabTest, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
	notify  notify.Sender
	metrics *metrics.Metrics
}

func NewService(repo Repository, cat Catalog, sender notify.Sender, m *metrics.Metrics) *Service {
	if sender == nil {
		sender = notify.NopSender{}
	}
	return &Service{repo: repo, catalog: cat, notify: sender, metrics: m}
}

// Create validates the request, snapshots the referral configuration and
// test prices, runs the split, and persists the order with its items in a
// single transaction.
func (s *Service) Create(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: invalid order kind: %s", ErrValidation, req.Kind)
	}
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id is required", ErrValidation)
	}
	if req.TotalAmount <= 0 {
		return nil, fmt.Errorf("%w: total_amount must be positive", ErrValidation)
	}
	if req.Kind == split.KindTestOrder && len(req.TestIDs) == 0 {
		return nil, fmt.Errorf("%w: test order requires at least one test", ErrValidation)
	}

	o := &Order{
		Kind:        req.Kind,
		PatientID:   req.PatientID,
		TotalAmount: req.TotalAmount,
	}

	in := split.Input{TotalAmount: req.TotalAmount, Kind: req.Kind}

	if req.DoctorID != nil {
		doc, err := s.catalog.GetDoctor(ctx, *req.DoctorID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: doctor %s not found", ErrValidation, req.DoctorID)
		}
		if err != nil {
			return nil, fmt.Errorf("doctor %s: %w", req.DoctorID, err)
		}
		o.DoctorID = &doc.ID
		o.DoctorName = &doc.Name
		in.Doctor = &split.DoctorRef{
			Name:                   doc.Name,
			Remuneration:           doc.Remuneration,
			TestReferralCommission: doc.TestReferralCommission,
		}
	}
	if req.BrokerID != nil {
		ref, err := s.catalog.GetReferrer(ctx, *req.BrokerID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: referrer %s not found", ErrValidation, req.BrokerID)
		}
		if err != nil {
			return nil, fmt.Errorf("referrer %s: %w", req.BrokerID, err)
		}
		o.BrokerID = &ref.ID
		o.BrokerName = &ref.Name
		in.Broker = &split.BrokerRef{Name: ref.Name, Commission: ref.Commission}
	}

	for _, testID := range req.TestIDs {
		t, err := s.catalog.GetTest(ctx, testID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: test %s not found", ErrValidation, testID)
		}
		if err != nil {
			return nil, fmt.Errorf("test %s: %w", testID, err)
		}
		o.Items = append(o.Items, &OrderItem{
			TestID:    t.ID,
			TestName:  t.Name,
			TestPrice: t.Price,
			DoctorPct: t.DoctorPct,
			BrokerPct: t.BrokerPct,
		})
		in.Items = append(in.Items, split.LineItem{
			Name:      t.Name,
			Price:     t.Price,
			DoctorPct: t.DoctorPct,
			BrokerPct: t.BrokerPct,
		})
	}

	res, err := split.Compute(in)
	if err != nil {
		return nil, err
	}
	o.HospitalRevenue = res.Hospital
	o.DoctorRevenue = res.Doctor
	o.BrokerRevenue = res.Broker

	if err := s.repo.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, o)
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.WithLabelValues(string(o.Kind)).Inc()
	}
	if err := s.notify.Send(ctx, notify.Event{
		Kind:    "order.created",
		Subject: fmt.Sprintf("order %s created", o.ID),
		Metadata: map[string]string{
			"order_id": o.ID.String(),
			"kind":     string(o.Kind),
			"total":    fmt.Sprintf("%.2f", o.TotalAmount),
		},
	}); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID.String()).Msg("order notification failed")
	}
	return o, nil
}

// UpdateTotal re-splits an order at a new billed total. When the request
// names a doctor or broker the new identity is used; otherwise the split
// falls back to the identities already on the order.
func (s *Service) UpdateTotal(ctx context.Context, id uuid.UUID, req *UpdateTotalRequest) (*Order, error) {
	if req.TotalAmount <= 0 {
		return nil, fmt.Errorf("%w: total_amount must be positive", ErrValidation)
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in := split.Input{TotalAmount: req.TotalAmount, Kind: o.Kind}

	doctorID := o.DoctorID
	if req.DoctorID != nil {
		doctorID = req.DoctorID
	}
	if doctorID != nil {
		doc, err := s.catalog.GetDoctor(ctx, *doctorID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: doctor %s not found", ErrValidation, doctorID)
		}
		if err != nil {
			return nil, fmt.Errorf("doctor %s: %w", doctorID, err)
		}
		o.DoctorID = &doc.ID
		o.DoctorName = &doc.Name
		in.Doctor = &split.DoctorRef{
			Name:                   doc.Name,
			Remuneration:           doc.Remuneration,
			TestReferralCommission: doc.TestReferralCommission,
		}
	}

	brokerID := o.BrokerID
	if req.BrokerID != nil {
		brokerID = req.BrokerID
	}
	if brokerID != nil {
		ref, err := s.catalog.GetReferrer(ctx, *brokerID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: referrer %s not found", ErrValidation, brokerID)
		}
		if err != nil {
			return nil, fmt.Errorf("referrer %s: %w", brokerID, err)
		}
		o.BrokerID = &ref.ID
		o.BrokerName = &ref.Name
		in.Broker = &split.BrokerRef{Name: ref.Name, Commission: ref.Commission}
	}

	if o.Kind == split.KindTestOrder {
		items, err := s.repo.GetItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			in.Items = append(in.Items, split.LineItem{
				Name:      it.TestName,
				Price:     it.TestPrice,
				DoctorPct: it.DoctorPct,
				BrokerPct: it.BrokerPct,
			})
		}
	}

	res, err := split.Compute(in)
	if err != nil {
		return nil, err
	}
	o.TotalAmount = req.TotalAmount
	o.HospitalRevenue = res.Hospital
	o.DoctorRevenue = res.Doctor
	o.BrokerRevenue = res.Broker

	if err := s.repo.UpdateSplit(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Order, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) ListPayments(ctx context.Context, orderID uuid.UUID, limit, offset int) ([]*OrderPayment, int, error) {
	return s.repo.ListPayments(ctx, orderID, limit, offset)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
