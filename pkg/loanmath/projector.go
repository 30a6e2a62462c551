package loanmath

import (
	"time"

	"github.com/shopspring/decimal"
)

// Terms are a loan's immutable amortization parameters.
type Terms struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	Installments      int
	Method            Method
	StartDate         time.Time
}

// Installment is one row of a projected repayment schedule.
type Installment struct {
	Number         int
	DueDate        time.Time
	Principal      decimal.Decimal
	Interest       decimal.Decimal
	Total          decimal.Decimal
	RemainingAfter decimal.Decimal
	Paid           bool
}

// ProjectSchedule derives the full per-installment schedule from the
// terms. The projector holds no persisted state: Paid comes from
// comparing each installment number against installmentsPaid, the
// realized count the store tracks.
func ProjectSchedule(terms Terms, installmentsPaid int) ([]Installment, error) {
	if err := validateTerms(terms.Principal, terms.AnnualRatePercent, terms.Installments); err != nil {
		return nil, err
	}
	if _, err := ParseMethod(string(terms.Method)); err != nil {
		return nil, err
	}

	out := make([]Installment, 0, terms.Installments)

	switch terms.Method {
	case MethodFlat:
		summary, err := ComputeSchedule(terms.Principal, terms.AnnualRatePercent, terms.Installments, MethodFlat)
		if err != nil {
			return nil, err
		}
		remaining := terms.Principal
		for i := 1; i <= terms.Installments; i++ {
			p := summary.MonthlyPrincipal
			if i == terms.Installments {
				p = remaining
			}
			remaining = remaining.Sub(p)
			out = append(out, Installment{
				Number:         i,
				DueDate:        dueDate(terms.StartDate, i),
				Principal:      p,
				Interest:       summary.MonthlyInterest,
				Total:          p.Add(summary.MonthlyInterest),
				RemainingAfter: remaining,
				Paid:           i <= installmentsPaid,
			})
		}

	case MethodReducingBalance:
		payment, monthlyRate := annuityPayment(terms.Principal, terms.AnnualRatePercent, terms.Installments)
		for i, e := range walkReducing(terms.Principal, payment, monthlyRate, terms.Installments) {
			n := i + 1
			out = append(out, Installment{
				Number:         n,
				DueDate:        dueDate(terms.StartDate, n),
				Principal:      e.principal,
				Interest:       e.interest,
				Total:          e.principal.Add(e.interest),
				RemainingAfter: e.remaining,
				Paid:           n <= installmentsPaid,
			})
		}
	}

	return out, nil
}

// EndDate is the date the loan term runs out: start date plus the full
// installment count in months. The final installment falls due one month
// earlier, at dueDate(start, installments).
func EndDate(startDate time.Time, installments int) time.Time {
	return startDate.AddDate(0, installments, 0)
}

func dueDate(start time.Time, number int) time.Time {
	return start.AddDate(0, number-1, 0)
}

// Progress reports repayment progress as a percentage of the original
// amount. A zero total yields 0, never a division error. A realized
// balance outside [0, total] can happen after a manual adjustment; the
// raw percentage is returned together with anomaly=true so the caller
// can surface the inconsistency.
func Progress(totalAmount, remainingBalance decimal.Decimal) (percent decimal.Decimal, anomaly bool) {
	if totalAmount.IsZero() {
		return decimal.Zero, false
	}
	percent = totalAmount.Sub(remainingBalance).Div(totalAmount).Mul(hundred).Round(2)
	anomaly = remainingBalance.GreaterThan(totalAmount) || remainingBalance.IsNegative() || totalAmount.IsNegative()
	return percent, anomaly
}
