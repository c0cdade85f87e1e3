package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxcore/assessment-engine/internal/domain"
	pkgdecimal "github.com/taxcore/assessment-engine/pkg/decimal"
)

// IncomeTaxCalculator computes income tax. Individuals are assessed on
// progressive brackets; corporate categories pay the flat rate from
// their rate entry (Micro entries carry 0%). A turnover-based minimum
// tax floors the liability: when annualTurnover x minimumTaxRate exceeds
// the bracket/flat result, the minimum applies instead.
type IncomeTaxCalculator struct{}

func (IncomeTaxCalculator) TaxType() domain.TaxType { return domain.TaxTypeIncome }

func (IncomeTaxCalculator) Calculate(facts *domain.TaxpayerFacts, entry *domain.RateEntry) (*domain.TaxCalculationResult, error) {
	if facts.IncomeTax == nil {
		return nil, fmt.Errorf("%w: income tax facts are required", domain.ErrInvalidRequest)
	}
	taxable := facts.IncomeTax.TaxableIncome
	if taxable.IsNegative() {
		return nil, fmt.Errorf("%w: taxable income must not be negative", domain.ErrInvalidRequest)
	}

	var gross decimal.Decimal
	var breakdown []domain.BracketLine
	var err error
	if facts.Category == domain.CategoryIndividual {
		if len(entry.Brackets) == 0 {
			return nil, fmt.Errorf("%w: no income tax brackets for %s/%d", domain.ErrRateNotFound, entry.Category, entry.TaxYear)
		}
		gross, breakdown, err = EvaluateBrackets(taxable, entry.Brackets)
		if err != nil {
			return nil, err
		}
	} else {
		gross = taxable.Mul(entry.FlatRate)
	}

	result := &domain.TaxCalculationResult{
		TaxType:        domain.TaxTypeIncome,
		GrossLiability: pkgdecimal.RoundBank(gross),
		Credits:        decimal.Zero,
		RateVersion:    entry.Version,
		Breakdown:      breakdown,
	}

	// Greater-of rule: the turnover-based minimum replaces a lower
	// computed liability outright; it is not an additional charge.
	net := gross
	if entry.MinimumTaxRate.IsPositive() {
		minimum := facts.AnnualTurnover.Mul(entry.MinimumTaxRate)
		if minimum.GreaterThan(net) {
			net = minimum
			result.MinimumTaxApplied = true
		}
	}
	result.NetLiability = pkgdecimal.RoundBank(net)
	return result, nil
}
