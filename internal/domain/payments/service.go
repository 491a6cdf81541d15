package payments

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/diagnostic-center/dcms/internal/platform/metrics"
	"github.com/diagnostic-center/dcms/internal/platform/notify"
)

const tolerance = 1e-9

type Service struct {
	repo    AllocationRepository
	ledger  LedgerRepository
	notify  notify.Sender
	metrics *metrics.Metrics

	locks keyedMutex
	now   func() time.Time
}

func NewService(repo AllocationRepository, ledger LedgerRepository, sender notify.Sender, m *metrics.Metrics) *Service {
	if sender == nil {
		sender = notify.NopSender{}
	}
	return &Service{
		repo:    repo,
		ledger:  ledger,
		notify:  sender,
		metrics: m,
		now:     time.Now,
	}
}

// Allocate applies a payment made to a payee across their outstanding
// orders, oldest first. Row locks guard the walk inside one transaction;
// on top of that, allocations for the same payee are serialized in-process
// so two concurrent requests cannot interleave their window reads.
func (s *Service) Allocate(ctx context.Context, req *AllocationRequest) (*AllocationResult, error) {
	if req.PayeeID == uuid.Nil {
		return nil, fmt.Errorf("%w: payee_id is required", ErrValidation)
	}
	if !req.PayeeKind.Valid() {
		return nil, fmt.Errorf("%w: invalid payee_kind: %q", ErrValidation, req.PayeeKind)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	w, err := ResolvePeriod(req.Period, s.now(), req.CustomStart, req.CustomEnd)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(req.PayeeID.String() + "/" + string(req.PayeeKind))
	defer unlock()

	result := &AllocationResult{}
	err = s.repo.InTx(ctx, func(txCtx context.Context) error {
		outstanding, err := s.repo.SelectOutstanding(txCtx, req.PayeeID, req.PayeeKind, w)
		if err != nil {
			return err
		}
		if len(outstanding) == 0 {
			return ErrNoOrders
		}

		var totalDue float64
		for _, o := range outstanding {
			totalDue += o.Due
		}
		totalDue = round2(totalDue)
		if req.Amount > totalDue+tolerance {
			return &ExceedsOutstandingError{Outstanding: totalDue}
		}

		paidBefore, err := s.repo.PaidInWindow(txCtx, req.PayeeID, req.PayeeKind, w)
		if err != nil {
			return err
		}

		paidAt := s.now()
		remaining := req.Amount
		for _, o := range outstanding {
			if remaining <= tolerance {
				break
			}
			applied := round2(math.Min(remaining, o.Due))
			next := round2(o.Due - applied)
			if err := s.repo.ApplyPayment(txCtx, o.OrderID, req.PayeeKind, applied, o.Due, next, paidAt); err != nil {
				return err
			}
			result.UpdatedOrders = append(result.UpdatedOrders, UpdatedOrder{
				OrderID:         o.OrderID,
				PreviousRevenue: o.Due,
				NewRevenue:      next,
				Applied:         applied,
			})
			remaining = round2(remaining - applied)
		}
		result.OrdersUpdated = len(result.UpdatedOrders)
		result.RemainingPayment = remaining

		// The window's earned total is what was already paid plus what was
		// still outstanding when this allocation began.
		cumulative := round2(paidBefore + req.Amount)
		earned := round2(paidBefore + totalDue)
		start, end := windowBounds(w)
		return s.ledger.Append(txCtx, &LedgerEntry{
			PayeeID:       req.PayeeID,
			PayeeKind:     req.PayeeKind,
			Period:        req.Period,
			PeriodStart:   start,
			PeriodEnd:     end,
			PaymentAmount: cumulative,
			TotalAmount:   earned,
			DueAmount:     round2(earned - cumulative),
			RecordedAt:    paidAt,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Allocations.WithLabelValues(string(req.PayeeKind)).Inc()
		s.metrics.AllocationAmount.WithLabelValues(string(req.PayeeKind)).Add(req.Amount)
		s.metrics.LedgerEntries.Inc()
	}
	if err := s.notify.Send(ctx, notify.Event{
		Kind:    "payment.allocated",
		Subject: fmt.Sprintf("payment of %.2f allocated to %s %s", req.Amount, req.PayeeKind, req.PayeeID),
		Metadata: map[string]string{
			"payee_id":       req.PayeeID.String(),
			"payee_kind":     string(req.PayeeKind),
			"amount":         fmt.Sprintf("%.2f", req.Amount),
			"orders_updated": fmt.Sprintf("%d", result.OrdersUpdated),
		},
	}); err != nil {
		log.Warn().Err(err).Str("payee_id", req.PayeeID.String()).Msg("allocation notification failed")
	}
	return result, nil
}

// DueResult reports a payee's outstanding commission for a window.
type DueResult struct {
	PayeeID     uuid.UUID           `json:"payee_id"`
	PayeeKind   PayeeKind           `json:"payee_kind"`
	Period      PeriodFilter        `json:"period"`
	PeriodStart *time.Time          `json:"period_start,omitempty"`
	PeriodEnd   *time.Time          `json:"period_end,omitempty"`
	Outstanding float64             `json:"outstanding"`
	Orders      []*OutstandingOrder `json:"orders"`
}

// Due returns what a payee is still owed inside a period.
func (s *Service) Due(ctx context.Context, payeeID uuid.UUID, kind PayeeKind, period PeriodFilter, customStart, customEnd string) (*DueResult, error) {
	if payeeID == uuid.Nil {
		return nil, fmt.Errorf("%w: payee_id is required", ErrValidation)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: invalid payee_kind: %q", ErrValidation, kind)
	}
	w, err := ResolvePeriod(period, s.now(), customStart, customEnd)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.SelectOutstanding(ctx, payeeID, kind, w)
	if err != nil {
		return nil, err
	}
	var total float64
	for _, o := range orders {
		total += o.Due
	}
	start, end := windowBounds(w)
	return &DueResult{
		PayeeID:     payeeID,
		PayeeKind:   kind,
		Period:      period,
		PeriodStart: start,
		PeriodEnd:   end,
		Outstanding: round2(total),
		Orders:      orders,
	}, nil
}

// Balance returns the latest ledger entry for the payee and resolved window.
func (s *Service) Balance(ctx context.Context, payeeID uuid.UUID, kind PayeeKind, period PeriodFilter, customStart, customEnd string) (*LedgerEntry, error) {
	if payeeID == uuid.Nil {
		return nil, fmt.Errorf("%w: payee_id is required", ErrValidation)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: invalid payee_kind: %q", ErrValidation, kind)
	}
	w, err := ResolvePeriod(period, s.now(), customStart, customEnd)
	if err != nil {
		return nil, err
	}
	return s.ledger.Latest(ctx, payeeID, kind, w)
}

// ListLedger pages the append-only audit trail, optionally filtered.
func (s *Service) ListLedger(ctx context.Context, payeeID uuid.UUID, kind PayeeKind, limit, offset int) ([]*LedgerEntry, int, error) {
	if kind != "" && !kind.Valid() {
		return nil, 0, fmt.Errorf("%w: invalid payee_kind: %q", ErrValidation, kind)
	}
	return s.ledger.List(ctx, payeeID, kind, limit, offset)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// keyedMutex serializes work per string key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*entryLock)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &entryLock{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
