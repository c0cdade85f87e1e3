package calculation

import (
	"github.com/taxcore/assessment-engine/internal/domain"
)

// TaxCalculator is the shared capability of every tax-type calculator:
// compute liability from facts and a resolved rate entry. Calculators
// are pure; they read the immutable RateEntry and return a fresh result.
type TaxCalculator interface {
	TaxType() domain.TaxType
	Calculate(facts *domain.TaxpayerFacts, entry *domain.RateEntry) (*domain.TaxCalculationResult, error)
}

// NewCalculators builds the closed set of tax-type calculators, keyed by
// tax type. Dispatch is by enumerated TaxType so the set stays auditable.
func NewCalculators() map[domain.TaxType]TaxCalculator {
	calcs := []TaxCalculator{
		IncomeTaxCalculator{},
		GSTCalculator{},
		WithholdingCalculator{},
		PayrollCalculator{},
		ExciseCalculator{},
	}
	byType := make(map[domain.TaxType]TaxCalculator, len(calcs))
	for _, c := range calcs {
		byType[c.TaxType()] = c
	}
	return byType
}
