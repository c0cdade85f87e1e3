package output

import (
	"bytes"
	"fmt"

	"github.com/taxcore/assessment-engine/internal/domain"
)

// ConsoleFormatter renders a concise plain-text assessment report.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(assessment *domain.ComprehensiveAssessment) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "COMPREHENSIVE TAX ASSESSMENT")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Client:   %s\n", assessment.ClientID)
	fmt.Fprintf(&buf, "Tax Year: %d (as of %s)\n", assessment.TaxYear, assessment.AsOf.Format("2006-01-02"))
	fmt.Fprintln(&buf)

	for _, r := range assessment.Results {
		fmt.Fprintf(&buf, "%-18s gross=%s credits=%s net=%s (rates %s)\n",
			r.TaxType,
			money(r.GrossLiability),
			money(r.Credits),
			money(r.NetLiability),
			r.RateVersion,
		)
		if r.MinimumTaxApplied {
			fmt.Fprintln(&buf, "  minimum tax floor applied")
		}
		for _, line := range r.Breakdown {
			upper := "∞"
			if line.Upper != nil {
				upper = line.Upper.StringFixed(0)
			}
			fmt.Fprintf(&buf, "  band %s..%s @ %s%%: taxable=%s tax=%s\n",
				line.Lower.StringFixed(0), upper,
				line.Rate.Mul(hundred).StringFixed(2),
				money(line.Taxable), money(line.Tax))
		}
	}
	for _, f := range assessment.Failures {
		fmt.Fprintf(&buf, "%-18s FAILED: %s\n", f.TaxType, f.Reason)
	}

	fmt.Fprintln(&buf)
	if assessment.Penalty.DaysLate > 0 {
		fmt.Fprintf(&buf, "Penalties: %s penalty + %s interest = %s (%d days late)\n",
			money(assessment.Penalty.PenaltyAmount),
			money(assessment.Penalty.InterestAmount),
			money(assessment.Penalty.TotalPenalty),
			assessment.Penalty.DaysLate,
		)
	}
	fmt.Fprintf(&buf, "Grand Total: %s\n", money(assessment.GrandTotal))
	fmt.Fprintf(&buf, "Compliance Score: %d/100\n", assessment.ComplianceScore)
	for _, issue := range assessment.Issues {
		fmt.Fprintf(&buf, "  -%d %s: %s\n", issue.PointsDeducted, issue.Type, issue.Description)
	}
	return buf.Bytes(), nil
}
