package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxcore/assessment-engine/internal/domain"
	pkgdecimal "github.com/taxcore/assessment-engine/pkg/decimal"
)

// ExciseCalculator computes excise duty per product line. The rate
// entry's DutyBasis discriminates ad valorem duty (rate on quantity x
// unit value) from specific duty (fixed amount per unit of quantity);
// both pricing models come from the same RateEntry shape.
type ExciseCalculator struct{}

func (ExciseCalculator) TaxType() domain.TaxType { return domain.TaxTypeExcise }

func (ExciseCalculator) Calculate(facts *domain.TaxpayerFacts, entry *domain.RateEntry) (*domain.TaxCalculationResult, error) {
	if facts.Excise == nil {
		return nil, fmt.Errorf("%w: excise facts are required", domain.ErrInvalidRequest)
	}
	if len(facts.Excise.Lines) == 0 {
		return nil, fmt.Errorf("%w: excise facts contain no product lines", domain.ErrInvalidRequest)
	}

	total := decimal.Zero
	for i, line := range facts.Excise.Lines {
		if line.Quantity.IsNegative() || line.UnitValue.IsNegative() {
			return nil, fmt.Errorf("%w: excise line %d must not be negative", domain.ErrInvalidRequest, i)
		}
		er, ok := entry.ExciseRates[line.Product]
		if !ok {
			return nil, fmt.Errorf("%w: excise rate for product %q in %d", domain.ErrRateNotFound, line.Product, entry.TaxYear)
		}
		switch er.Basis {
		case domain.DutyAdValorem:
			total = total.Add(line.Quantity.Mul(line.UnitValue).Mul(er.Rate))
		case domain.DutySpecific:
			total = total.Add(line.Quantity.Mul(er.AmountPerUnit))
		default:
			return nil, fmt.Errorf("%w: excise rate for %q has unknown basis %q", domain.ErrInvalidRequest, line.Product, er.Basis)
		}
	}

	net := pkgdecimal.RoundBank(total)
	return &domain.TaxCalculationResult{
		TaxType:        domain.TaxTypeExcise,
		GrossLiability: net,
		Credits:        decimal.Zero,
		NetLiability:   net,
		RateVersion:    entry.Version,
	}, nil
}
