package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxcore/assessment-engine/internal/domain"
)

// EvaluateBrackets runs the shared progressive-bracket algorithm: walk
// the bands in ascending order, tax min(amount, upper) - lower in each,
// and stop at the band containing the amount. The returned breakdown
// records per-band taxable amount and tax for audit display.
//
// The result is unrounded; callers apply banker's rounding once at their
// final total to avoid cumulative drift.
func EvaluateBrackets(amount decimal.Decimal, brackets []domain.Bracket) (decimal.Decimal, []domain.BracketLine, error) {
	if amount.IsNegative() {
		return decimal.Zero, nil, fmt.Errorf("%w: got %s", domain.ErrInvalidAmount, amount)
	}

	total := decimal.Zero
	var breakdown []domain.BracketLine
	for _, band := range brackets {
		if amount.LessThanOrEqual(band.Lower) {
			break
		}
		upper := amount
		if band.Upper != nil && band.Upper.LessThan(amount) {
			upper = *band.Upper
		}
		taxable := upper.Sub(band.Lower)
		if taxable.IsNegative() {
			taxable = decimal.Zero
		}
		tax := taxable.Mul(band.Rate)
		total = total.Add(tax)
		breakdown = append(breakdown, domain.BracketLine{
			Lower:   band.Lower,
			Upper:   band.Upper,
			Rate:    band.Rate,
			Taxable: taxable,
			Tax:     tax,
		})
		if band.Upper == nil || amount.LessThanOrEqual(*band.Upper) {
			break
		}
	}
	return total, breakdown, nil
}
