// Package loanmath computes staff-loan repayment figures: the fixed
// monthly split between principal and interest for a loan's terms, and
// the full per-installment schedule derived from them.
//
// Rounding policy: every reported amount is rounded half-up to 2 decimal
// places; intermediate arithmetic runs at full decimal precision. The
// final installment of a projected schedule absorbs the rounding residue
// so the remaining balance lands on exactly 0.
package loanmath

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodFlat            Method = "flat"
	MethodReducingBalance Method = "reducing_balance"
)

// ParseMethod validates a wire-level method string.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodFlat, MethodReducingBalance:
		return Method(s), nil
	default:
		return "", NewInvalidTerms(fmt.Sprintf("unknown calculation method: %q", s))
	}
}

// InvalidTermsError rejects terms the engine cannot amortize. Invalid
// input is never coerced to zero amounts.
type InvalidTermsError struct {
	msg string
}

func (e *InvalidTermsError) Error() string { return e.msg }

func NewInvalidTerms(msg string) error { return &InvalidTermsError{msg: msg} }

func IsInvalidTerms(err error) bool {
	var target *InvalidTermsError
	ok := errors.As(err, &target)
	return ok
}

// Summary is the fixed monthly cash-flow split for a loan. For the
// reducing-balance method MonthlyPrincipal and MonthlyInterest are the
// period-1 split; callers needing the full curve use ProjectSchedule.
type Summary struct {
	MonthlyPrincipal decimal.Decimal
	MonthlyInterest  decimal.Decimal
	MonthlyTotal     decimal.Decimal
	TotalInterest    decimal.Decimal
}

var (
	hundred      = decimal.NewFromInt(100)
	twelve       = decimal.NewFromInt(12)
	oneHundredTp = hundred.Mul(twelve) // 1200, annual percent -> monthly fraction
)

func validateTerms(principal, annualRatePercent decimal.Decimal, installments int) error {
	if !principal.IsPositive() {
		return NewInvalidTerms("principal must be positive")
	}
	if annualRatePercent.IsNegative() || annualRatePercent.GreaterThan(hundred) {
		return NewInvalidTerms("annual rate must be between 0 and 100 percent")
	}
	if installments < 1 {
		return NewInvalidTerms("installment count must be at least 1")
	}
	return nil
}

// ComputeSchedule computes the monthly repayment split and total interest
// for the given terms.
//
// Flat: interest is charged on the original principal for the full
// nominal term, independent of amortization progress.
//
// Reducing balance: the standard annuity formula on the monthly rate;
// a zero rate degenerates to equal-principal installments.
func ComputeSchedule(principal, annualRatePercent decimal.Decimal, installments int, method Method) (Summary, error) {
	if err := validateTerms(principal, annualRatePercent, installments); err != nil {
		return Summary{}, err
	}

	n := decimal.NewFromInt(int64(installments))

	switch method {
	case MethodFlat:
		// principal * rate/100 * installments/12
		totalInterest := principal.Mul(annualRatePercent).Mul(n).Div(oneHundredTp)
		monthlyPrincipal := principal.Div(n).Round(2)
		monthlyInterest := totalInterest.Div(n).Round(2)
		return Summary{
			MonthlyPrincipal: monthlyPrincipal,
			MonthlyInterest:  monthlyInterest,
			MonthlyTotal:     monthlyPrincipal.Add(monthlyInterest),
			TotalInterest:    totalInterest.Round(2),
		}, nil

	case MethodReducingBalance:
		payment, monthlyRate := annuityPayment(principal, annualRatePercent, installments)
		firstInterest := principal.Mul(monthlyRate).Round(2)
		totalInterest := decimal.Zero
		for _, e := range walkReducing(principal, payment, monthlyRate, installments) {
			totalInterest = totalInterest.Add(e.interest)
		}
		return Summary{
			MonthlyPrincipal: payment.Sub(firstInterest),
			MonthlyInterest:  firstInterest,
			MonthlyTotal:     payment,
			TotalInterest:    totalInterest,
		}, nil

	default:
		return Summary{}, NewInvalidTerms(fmt.Sprintf("unknown calculation method: %q", method))
	}
}

// annuityPayment returns the constant monthly payment rounded to 2 places
// and the monthly rate at full precision.
func annuityPayment(principal, annualRatePercent decimal.Decimal, installments int) (payment, monthlyRate decimal.Decimal) {
	n := decimal.NewFromInt(int64(installments))
	monthlyRate = annualRatePercent.Div(oneHundredTp)
	if monthlyRate.IsZero() {
		return principal.Div(n).Round(2), monthlyRate
	}
	// P * r * (1+r)^n / ((1+r)^n - 1)
	factor := decimal.NewFromInt(1).Add(monthlyRate).Pow(n)
	payment = principal.Mul(monthlyRate).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1))).Round(2)
	return payment, monthlyRate
}

type reducingEntry struct {
	principal decimal.Decimal
	interest  decimal.Decimal
	remaining decimal.Decimal
}

// walkReducing replays the declining-balance schedule. The final entry's
// principal is the whole remaining balance, so the walk always ends at 0.
func walkReducing(principal, payment, monthlyRate decimal.Decimal, installments int) []reducingEntry {
	out := make([]reducingEntry, 0, installments)
	remaining := principal
	for i := 1; i <= installments; i++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		var p decimal.Decimal
		if i == installments {
			p = remaining
		} else {
			p = payment.Sub(interest)
		}
		remaining = remaining.Sub(p)
		out = append(out, reducingEntry{principal: p, interest: interest, remaining: remaining})
	}
	return out
}
