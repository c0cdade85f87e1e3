package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/taxcore/assessment-engine/internal/domain"
	pkgdecimal "github.com/taxcore/assessment-engine/pkg/decimal"
)

var hundred = decimal.NewFromInt(100)

// money formats a raw decimal amount for reports (fixed 2 decimals).
func money(d decimal.Decimal) string {
	return pkgdecimal.NewMoneyFromDecimal(d).Round().String()
}

// CSVSummarizer emits one row per assessed tax type plus a totals row.
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(assessment *domain.ComprehensiveAssessment) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"TaxType", "GrossLiability", "Credits", "NetLiability", "RateVersion", "MinimumTaxApplied"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range assessment.Results {
		row := []string{
			string(r.TaxType),
			r.GrossLiability.StringFixed(2),
			r.Credits.StringFixed(2),
			r.NetLiability.StringFixed(2),
			r.RateVersion,
			strconv.FormatBool(r.MinimumTaxApplied),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	totals := []string{
		"TOTAL",
		"",
		"",
		assessment.GrandTotal.StringFixed(2),
		"",
		"",
	}
	if err := w.Write(totals); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
