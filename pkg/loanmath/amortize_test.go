package loanmath

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestComputeSchedule_Flat(t *testing.T) {
	// 120,000 at 12% over 12 months: one full year of flat interest.
	got, err := ComputeSchedule(dec(t, "120000"), dec(t, "12"), 12, MethodFlat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.TotalInterest.Equal(dec(t, "14400")) {
		t.Fatalf("total interest=%s", got.TotalInterest)
	}
	if !got.MonthlyInterest.Equal(dec(t, "1200")) {
		t.Fatalf("monthly interest=%s", got.MonthlyInterest)
	}
	if !got.MonthlyPrincipal.Equal(dec(t, "10000")) {
		t.Fatalf("monthly principal=%s", got.MonthlyPrincipal)
	}
	if !got.MonthlyTotal.Equal(dec(t, "11200")) {
		t.Fatalf("monthly total=%s", got.MonthlyTotal)
	}
}

func TestComputeSchedule_FlatSplitIsExact(t *testing.T) {
	cases := []struct {
		principal    string
		rate         string
		installments int
	}{
		{"50000", "10", 6},
		{"75000", "7.5", 18},
		{"999.99", "33", 7},
		{"120000", "0", 12},
	}
	for _, c := range cases {
		got, err := ComputeSchedule(dec(t, c.principal), dec(t, c.rate), c.installments, MethodFlat)
		if err != nil {
			t.Fatalf("%+v: %v", c, err)
		}
		if !got.MonthlyTotal.Equal(got.MonthlyPrincipal.Add(got.MonthlyInterest)) {
			t.Fatalf("%+v: total %s != principal %s + interest %s", c, got.MonthlyTotal, got.MonthlyPrincipal, got.MonthlyInterest)
		}
		// monthlyPrincipal * n should reconstruct the principal within a cent per installment.
		n := decimal.NewFromInt(int64(c.installments))
		diff := got.MonthlyPrincipal.Mul(n).Sub(dec(t, c.principal)).Abs()
		if diff.GreaterThan(dec(t, "0.01").Mul(n)) {
			t.Fatalf("%+v: principal drift %s", c, diff)
		}
	}
}

func TestComputeSchedule_ReducingZeroRate(t *testing.T) {
	got, err := ComputeSchedule(dec(t, "100000"), dec(t, "0"), 10, MethodReducingBalance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.MonthlyTotal.Equal(dec(t, "10000")) {
		t.Fatalf("monthly total=%s", got.MonthlyTotal)
	}
	if !got.MonthlyInterest.IsZero() {
		t.Fatalf("monthly interest=%s", got.MonthlyInterest)
	}
	if !got.TotalInterest.IsZero() {
		t.Fatalf("total interest=%s", got.TotalInterest)
	}
}

func TestComputeSchedule_ReducingPositiveRate(t *testing.T) {
	got, err := ComputeSchedule(dec(t, "120000"), dec(t, "12"), 12, MethodReducingBalance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Annuity payment for 120,000 at 1%/month over 12 months.
	if !got.MonthlyTotal.Equal(dec(t, "10661.85")) {
		t.Fatalf("monthly total=%s", got.MonthlyTotal)
	}
	// Period-1 interest is one month on the full principal.
	if !got.MonthlyInterest.Equal(dec(t, "1200")) {
		t.Fatalf("monthly interest=%s", got.MonthlyInterest)
	}
	if !got.MonthlyPrincipal.Equal(dec(t, "9461.85")) {
		t.Fatalf("monthly principal=%s", got.MonthlyPrincipal)
	}
	// Reducing-balance interest must charge less than flat over the same term.
	if got.TotalInterest.GreaterThanOrEqual(dec(t, "14400")) {
		t.Fatalf("total interest=%s not below flat", got.TotalInterest)
	}
	if !got.TotalInterest.IsPositive() {
		t.Fatalf("total interest=%s", got.TotalInterest)
	}
}

func TestComputeSchedule_InvalidTerms(t *testing.T) {
	cases := []struct {
		name         string
		principal    string
		rate         string
		installments int
		method       Method
	}{
		{"zero installments", "1000", "10", 0, MethodFlat},
		{"negative installments", "1000", "10", -1, MethodFlat},
		{"zero principal", "0", "10", 12, MethodFlat},
		{"negative principal", "-5", "10", 12, MethodReducingBalance},
		{"rate above 100", "1000", "101", 12, MethodFlat},
		{"negative rate", "1000", "-1", 12, MethodReducingBalance},
		{"unknown method", "1000", "10", 12, Method("bullet")},
	}
	for _, c := range cases {
		_, err := ComputeSchedule(dec(t, c.principal), dec(t, c.rate), c.installments, c.method)
		if err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
		if !IsInvalidTerms(err) {
			t.Fatalf("%s: expected InvalidTermsError, got %v", c.name, err)
		}
	}
}

func TestParseMethod(t *testing.T) {
	if m, err := ParseMethod("flat"); err != nil || m != MethodFlat {
		t.Fatalf("flat: %v %v", m, err)
	}
	if m, err := ParseMethod("reducing_balance"); err != nil || m != MethodReducingBalance {
		t.Fatalf("reducing_balance: %v %v", m, err)
	}
	if _, err := ParseMethod("REDUCING"); !IsInvalidTerms(err) {
		t.Fatalf("expected InvalidTermsError, got %v", err)
	}
}
