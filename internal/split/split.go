// Package split computes how an order's billed total is partitioned between
// the hospital, the referring doctor, and the referring broker or agent at
// the moment the order is created or its total is edited.
package split

import (
	"errors"
	"fmt"
	"math"
)

// OrderKind selects the commission rules that apply to an order.
type OrderKind string

const (
	KindAppointment OrderKind = "appointment"
	KindTestOrder   OrderKind = "test-order"
)

// Valid reports whether k is a known order kind.
func (k OrderKind) Valid() bool {
	return k == KindAppointment || k == KindTestOrder
}

// DoctorRef carries a referring doctor's identity and commission config.
type DoctorRef struct {
	Name string
	// Remuneration is the flat per-appointment fee.
	Remuneration float64
	// TestReferralCommission is the doctor's global percentage on test
	// orders, used when line items carry no per-test percentage.
	TestReferralCommission float64
}

// BrokerRef carries a referring broker's or agent's identity and default
// commission percentage.
type BrokerRef struct {
	Name string
	// Commission is the default percentage, applied to the doctor's
	// appointment fee, or to test prices lacking their own percentage.
	Commission float64
}

// LineItem is one test on a test order, snapshotted with its commission
// percentages as configured at order time.
type LineItem struct {
	Name      string
	Price     float64
	DoctorPct float64
	BrokerPct float64
}

// Input is everything the calculator needs. Doctor and Broker are optional;
// Items is consulted only for test orders.
type Input struct {
	TotalAmount float64
	Kind        OrderKind
	Doctor      *DoctorRef
	Broker      *BrokerRef
	Items       []LineItem
}

// Result is the three-way partition. Hospital + Doctor + Broker always
// equals the input total.
type Result struct {
	Hospital float64
	Doctor   float64
	Broker   float64
}

var (
	// ErrSharesExceedTotal means the configured commissions add up to more
	// than the billed total, which would drive the hospital share negative.
	ErrSharesExceedTotal = errors.New("commission shares exceed order total")
)

const tolerance = 1e-9

// Compute partitions total according to the order kind:
//
//   - appointment: the doctor gets the flat remuneration fee; a broker, when
//     present, takes its percentage of that fee, out of the doctor's share.
//   - test-order: the doctor's cut is the per-test doctor percentage summed
//     across items (or the doctor's global test percentage on the total when
//     no item carries one); the broker's cut is the per-test broker
//     percentage summed across items. The two cuts are independent and both
//     come out of the hospital share.
//
// The hospital keeps the remainder and must never go negative.
func Compute(in Input) (Result, error) {
	if in.TotalAmount <= 0 {
		return Result{}, fmt.Errorf("total amount must be positive, got %.2f", in.TotalAmount)
	}
	if !in.Kind.Valid() {
		return Result{}, fmt.Errorf("unknown order kind: %q", in.Kind)
	}

	var doctor, broker float64
	switch in.Kind {
	case KindAppointment:
		doctor, broker = appointmentShares(in)
	case KindTestOrder:
		doctor, broker = testOrderShares(in)
	}

	doctor = round2(doctor)
	broker = round2(broker)
	hospital := round2(in.TotalAmount - doctor - broker)
	if hospital < -tolerance {
		return Result{}, fmt.Errorf("%w: doctor %.2f + broker %.2f > total %.2f",
			ErrSharesExceedTotal, doctor, broker, in.TotalAmount)
	}
	if hospital < 0 {
		hospital = 0
	}

	return Result{Hospital: hospital, Doctor: doctor, Broker: broker}, nil
}

func appointmentShares(in Input) (doctor, broker float64) {
	if in.Doctor == nil {
		return 0, 0
	}
	doctor = in.Doctor.Remuneration
	if in.Broker != nil {
		// Broker commission on an appointment comes out of the doctor's
		// fee, never the hospital's share.
		broker = doctor * in.Broker.Commission / 100
		doctor -= broker
	}
	return doctor, broker
}

func testOrderShares(in Input) (doctor, broker float64) {
	if in.Doctor != nil {
		if perTest, ok := perItemDoctorShare(in.Items); ok {
			doctor = perTest
		} else {
			doctor = in.TotalAmount * in.Doctor.TestReferralCommission / 100
		}
	}
	if in.Broker != nil {
		for _, item := range in.Items {
			pct := item.BrokerPct
			if pct == 0 {
				pct = in.Broker.Commission
			}
			broker += item.Price * pct / 100
		}
	}
	return doctor, broker
}

// perItemDoctorShare sums the per-test doctor commission. It reports false
// when no item carries its own percentage, in which case the doctor's
// global test percentage applies to the whole total instead.
func perItemDoctorShare(items []LineItem) (float64, bool) {
	var sum float64
	var found bool
	for _, item := range items {
		if item.DoctorPct > 0 {
			found = true
			sum += item.Price * item.DoctorPct / 100
		}
	}
	return sum, found
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
