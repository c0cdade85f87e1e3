package calculation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taxcore/assessment-engine/internal/domain"
	"github.com/taxcore/assessment-engine/pkg/dateutil"
	pkgdecimal "github.com/taxcore/assessment-engine/pkg/decimal"
)

var (
	daysPerYear    = decimal.NewFromInt(365)
	monthsPerYear  = decimal.NewFromInt(12)
	one            = decimal.NewFromInt(1)
	daysPerMonth30 = 30
)

// PenaltyInterestCalculator computes late-filing penalties and accrued
// interest from the penalty schedule of the assessed tax year.
type PenaltyInterestCalculator struct {
	Schedule *domain.PenaltySchedule
}

// NewPenaltyInterestCalculator wraps a validated schedule.
func NewPenaltyInterestCalculator(schedule *domain.PenaltySchedule) *PenaltyInterestCalculator {
	return &PenaltyInterestCalculator{Schedule: schedule}
}

// Compute returns the penalty and interest on taxAmount for a filing due
// on dueDate and actually made on actualDate. On-time (or early) filings
// return all zeros. The band matching the total days late applies its
// rate to the whole amount; bands do not blend. Interest accrues at the
// annual rate prorated by days/365 (simple) or compounded per commenced
// 30-day month, selected by the tax type's interest mode.
func (pc *PenaltyInterestCalculator) Compute(taxAmount decimal.Decimal, dueDate, actualDate time.Time, taxType domain.TaxType) (*domain.PenaltyResult, error) {
	if taxAmount.IsNegative() {
		return nil, fmt.Errorf("%w: tax amount must not be negative", domain.ErrInvalidRequest)
	}
	if dueDate.IsZero() || actualDate.IsZero() {
		return nil, fmt.Errorf("%w: due and actual dates are required", domain.ErrInvalidRequest)
	}

	daysLate := dateutil.DaysLate(dueDate, actualDate)
	if daysLate == 0 {
		zero := domain.ZeroPenalty()
		return &zero, nil
	}

	penalty := decimal.Zero
	if band := pc.Schedule.BandFor(daysLate); band != nil {
		penalty = taxAmount.Mul(band.Rate)
	}

	var interest decimal.Decimal
	switch pc.Schedule.ModeFor(taxType) {
	case domain.InterestMonthlyCompound:
		// Each commenced 30-day month compounds at annual/12.
		months := int64((daysLate + daysPerMonth30 - 1) / daysPerMonth30)
		monthlyRate := pc.Schedule.AnnualInterestRate.Div(monthsPerYear)
		factor := one.Add(monthlyRate).Pow(decimal.NewFromInt(months))
		interest = taxAmount.Mul(factor.Sub(one))
	default:
		interest = taxAmount.
			Mul(pc.Schedule.AnnualInterestRate).
			Mul(decimal.NewFromInt(int64(daysLate))).
			Div(daysPerYear)
	}

	penalty = pkgdecimal.RoundBank(penalty)
	interest = pkgdecimal.RoundBank(interest)
	return &domain.PenaltyResult{
		DaysLate:       daysLate,
		PenaltyAmount:  penalty,
		InterestAmount: interest,
		TotalPenalty:   penalty.Add(interest),
	}, nil
}
