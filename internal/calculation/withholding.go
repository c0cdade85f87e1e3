package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxcore/assessment-engine/internal/domain"
	pkgdecimal "github.com/taxcore/assessment-engine/pkg/decimal"
)

// WithholdingCalculator computes withholding tax over a batch of
// payments. The rate is a flat percentage selected by withholding
// category and residency; non-resident rates are independent legislated
// values, not a surcharge on the resident rate.
type WithholdingCalculator struct{}

func (WithholdingCalculator) TaxType() domain.TaxType { return domain.TaxTypeWithholding }

func (WithholdingCalculator) Calculate(facts *domain.TaxpayerFacts, entry *domain.RateEntry) (*domain.TaxCalculationResult, error) {
	if facts.Withholding == nil {
		return nil, fmt.Errorf("%w: withholding facts are required", domain.ErrInvalidRequest)
	}
	if len(facts.Withholding.Payments) == 0 {
		return nil, fmt.Errorf("%w: withholding facts contain no payments", domain.ErrInvalidRequest)
	}

	total := decimal.Zero
	for i, p := range facts.Withholding.Payments {
		if p.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: withholding payment %d must not be negative", domain.ErrInvalidRequest, i)
		}
		wr, ok := entry.WithholdingRates[p.Category]
		if !ok {
			return nil, fmt.Errorf("%w: withholding rate for %q in %d", domain.ErrRateNotFound, p.Category, entry.TaxYear)
		}
		rate, err := wr.ForResidency(p.Residency)
		if err != nil {
			return nil, err
		}
		total = total.Add(p.Amount.Mul(rate))
	}

	net := pkgdecimal.RoundBank(total)
	return &domain.TaxCalculationResult{
		TaxType:        domain.TaxTypeWithholding,
		GrossLiability: net,
		Credits:        decimal.Zero,
		NetLiability:   net,
		RateVersion:    entry.Version,
	}, nil
}
