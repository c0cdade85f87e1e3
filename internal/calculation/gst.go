package calculation

import (
	"fmt"

	"github.com/taxcore/assessment-engine/internal/domain"
	pkgdecimal "github.com/taxcore/assessment-engine/pkg/decimal"
)

// GSTCalculator computes goods and services tax: output GST on taxable
// supplies minus input GST credits. Exports are zero-rated. A negative
// net liability is a refund position and is preserved as a signed value,
// never clamped to zero.
type GSTCalculator struct{}

func (GSTCalculator) TaxType() domain.TaxType { return domain.TaxTypeGST }

func (GSTCalculator) Calculate(facts *domain.TaxpayerFacts, entry *domain.RateEntry) (*domain.TaxCalculationResult, error) {
	if facts.GST == nil {
		return nil, fmt.Errorf("%w: gst facts are required", domain.ErrInvalidRequest)
	}
	f := facts.GST
	if f.TaxableAmount.IsNegative() || f.ExportAmount.IsNegative() || f.InputGST.IsNegative() {
		return nil, fmt.Errorf("%w: gst amounts must not be negative", domain.ErrInvalidRequest)
	}

	// Exports contribute zero output tax by construction; they appear in
	// the facts only so turnover reconciliation upstream can audit them.
	outputGST := f.TaxableAmount.Mul(entry.FlatRate)
	net := outputGST.Sub(f.InputGST)

	return &domain.TaxCalculationResult{
		TaxType:        domain.TaxTypeGST,
		GrossLiability: pkgdecimal.RoundBank(outputGST),
		Credits:        pkgdecimal.RoundBank(f.InputGST),
		NetLiability:   pkgdecimal.RoundBank(net),
		RateVersion:    entry.Version,
	}, nil
}
