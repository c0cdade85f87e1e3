package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxcore/assessment-engine/internal/domain"
	pkgdecimal "github.com/taxcore/assessment-engine/pkg/decimal"
)

// PayrollCalculator computes employer payroll taxes: PAYE per employee
// on grossSalary - allowances (allowances reduce the taxable base, never
// the computed tax), plus the skills-development levy as a flat
// percentage of total gross payroll, charged once per employer.
type PayrollCalculator struct{}

func (PayrollCalculator) TaxType() domain.TaxType { return domain.TaxTypePayroll }

func (PayrollCalculator) Calculate(facts *domain.TaxpayerFacts, entry *domain.RateEntry) (*domain.TaxCalculationResult, error) {
	if facts.Payroll == nil {
		return nil, fmt.Errorf("%w: payroll facts are required", domain.ErrInvalidRequest)
	}
	if len(facts.Payroll.Employees) == 0 {
		return nil, fmt.Errorf("%w: payroll facts contain no employees", domain.ErrInvalidRequest)
	}
	if len(entry.Brackets) == 0 {
		return nil, fmt.Errorf("%w: no PAYE brackets for %s/%d", domain.ErrRateNotFound, entry.Category, entry.TaxYear)
	}

	totalPAYE := decimal.Zero
	totalPayroll := decimal.Zero
	for i, e := range facts.Payroll.Employees {
		if e.GrossSalary.IsNegative() {
			return nil, fmt.Errorf("%w: employee %d gross salary must not be negative", domain.ErrInvalidRequest, i)
		}
		if e.Allowances.IsNegative() {
			return nil, fmt.Errorf("%w: employee %d allowances must not be negative", domain.ErrInvalidRequest, i)
		}
		base := e.GrossSalary.Sub(e.Allowances)
		if base.IsNegative() {
			base = decimal.Zero
		}
		paye, _, err := EvaluateBrackets(base, entry.Brackets)
		if err != nil {
			return nil, err
		}
		totalPAYE = totalPAYE.Add(paye)
		totalPayroll = totalPayroll.Add(e.GrossSalary)
	}

	levy := totalPayroll.Mul(entry.LevyRate)
	net := pkgdecimal.RoundBank(totalPAYE.Add(levy))
	return &domain.TaxCalculationResult{
		TaxType:        domain.TaxTypePayroll,
		GrossLiability: net,
		Credits:        decimal.Zero,
		NetLiability:   net,
		RateVersion:    entry.Version,
	}, nil
}
