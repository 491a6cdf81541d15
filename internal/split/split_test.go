package split

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestCompute_Appointment(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		want    Result
		wantErr bool
	}{
		{
			name: "flat fee with broker cut from doctor share",
			in: Input{
				TotalAmount: 500,
				Kind:        KindAppointment,
				Doctor:      &DoctorRef{Name: "Dr. Rahman", Remuneration: 500},
				Broker:      &BrokerRef{Name: "City Agency", Commission: 10},
			},
			want: Result{Hospital: 0, Doctor: 450, Broker: 50},
		},
		{
			name: "no broker keeps full fee with doctor",
			in: Input{
				TotalAmount: 800,
				Kind:        KindAppointment,
				Doctor:      &DoctorRef{Remuneration: 300},
			},
			want: Result{Hospital: 500, Doctor: 300, Broker: 0},
		},
		{
			name: "walk-in without doctor",
			in: Input{
				TotalAmount: 600,
				Kind:        KindAppointment,
			},
			want: Result{Hospital: 600, Doctor: 0, Broker: 0},
		},
		{
			name: "broker alone earns nothing on an appointment",
			in: Input{
				TotalAmount: 400,
				Kind:        KindAppointment,
				Broker:      &BrokerRef{Commission: 15},
			},
			want: Result{Hospital: 400, Doctor: 0, Broker: 0},
		},
		{
			name: "fee above total is rejected",
			in: Input{
				TotalAmount: 200,
				Kind:        KindAppointment,
				Doctor:      &DoctorRef{Remuneration: 500},
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compute(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Compute() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			assertResult(t, got, tc.want, tc.in.TotalAmount)
		})
	}
}

func TestCompute_TestOrder(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Result
	}{
		{
			name: "per-test doctor and broker percentages",
			in: Input{
				TotalAmount: 3000,
				Kind:        KindTestOrder,
				Doctor:      &DoctorRef{TestReferralCommission: 5},
				Broker:      &BrokerRef{Commission: 8},
				Items: []LineItem{
					{Name: "CBC", Price: 1000, DoctorPct: 10, BrokerPct: 5},
					{Name: "Lipid Panel", Price: 2000, DoctorPct: 20, BrokerPct: 5},
				},
			},
			// doctor: 100 + 400, broker: 50 + 100
			want: Result{Hospital: 2350, Doctor: 500, Broker: 150},
		},
		{
			name: "global doctor percentage when items carry none",
			in: Input{
				TotalAmount: 2000,
				Kind:        KindTestOrder,
				Doctor:      &DoctorRef{TestReferralCommission: 10},
				Items: []LineItem{
					{Name: "X-Ray", Price: 2000},
				},
			},
			want: Result{Hospital: 1800, Doctor: 200, Broker: 0},
		},
		{
			name: "broker global percentage fills missing item percentages",
			in: Input{
				TotalAmount: 1500,
				Kind:        KindTestOrder,
				Broker:      &BrokerRef{Commission: 10},
				Items: []LineItem{
					{Name: "USG", Price: 1000, BrokerPct: 20},
					{Name: "ECG", Price: 500},
				},
			},
			// broker: 200 + 50
			want: Result{Hospital: 1250, Doctor: 0, Broker: 250},
		},
		{
			name: "no referrals means hospital keeps everything",
			in: Input{
				TotalAmount: 900,
				Kind:        KindTestOrder,
				Items:       []LineItem{{Name: "CBC", Price: 900}},
			},
			want: Result{Hospital: 900, Doctor: 0, Broker: 0},
		},
		{
			name: "fractional percentages round to two decimals",
			in: Input{
				TotalAmount: 999,
				Kind:        KindTestOrder,
				Doctor:      &DoctorRef{TestReferralCommission: 7.5},
				Items:       []LineItem{{Name: "MRI", Price: 999}},
			},
			// 999 * 7.5% = 74.925 -> 74.93
			want: Result{Hospital: 924.07, Doctor: 74.93, Broker: 0},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compute(tc.in)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			assertResult(t, got, tc.want, tc.in.TotalAmount)
		})
	}
}

func TestCompute_Invalid(t *testing.T) {
	if _, err := Compute(Input{TotalAmount: 0, Kind: KindTestOrder}); err == nil {
		t.Error("zero total accepted")
	}
	if _, err := Compute(Input{TotalAmount: -100, Kind: KindAppointment}); err == nil {
		t.Error("negative total accepted")
	}
	if _, err := Compute(Input{TotalAmount: 100, Kind: "walk-in"}); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestCompute_SharesExceedTotal(t *testing.T) {
	_, err := Compute(Input{
		TotalAmount: 100,
		Kind:        KindTestOrder,
		Doctor:      &DoctorRef{TestReferralCommission: 80},
		Broker:      &BrokerRef{Commission: 40},
		Items:       []LineItem{{Name: "CBC", Price: 100}},
	})
	if !errors.Is(err, ErrSharesExceedTotal) {
		t.Fatalf("err = %v, want ErrSharesExceedTotal", err)
	}
}

func assertResult(t *testing.T, got, want Result, total float64) {
	t.Helper()
	if !almostEqual(got.Hospital, want.Hospital) ||
		!almostEqual(got.Doctor, want.Doctor) ||
		!almostEqual(got.Broker, want.Broker) {
		t.Errorf("Compute() = %+v, want %+v", got, want)
	}
	if sum := got.Hospital + got.Doctor + got.Broker; !almostEqual(sum, total) {
		t.Errorf("shares sum to %.4f, want total %.2f", sum, total)
	}
}
