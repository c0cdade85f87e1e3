package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BracketLine records one band's contribution to a progressive
// calculation, for audit and UI display.
type BracketLine struct {
	Lower   decimal.Decimal  `json:"lower"`
	Upper   *decimal.Decimal `json:"upper,omitempty"`
	Rate    decimal.Decimal  `json:"rate"`
	Taxable decimal.Decimal  `json:"taxable"`
	Tax     decimal.Decimal  `json:"tax"`
}

// TaxCalculationResult is the output of one tax-type calculation.
// NetLiability may be negative for GST (a refund position, never
// clamped). RateVersion reproduces which rule set was applied.
type TaxCalculationResult struct {
	TaxType           TaxType         `json:"tax_type"`
	GrossLiability    decimal.Decimal `json:"gross_liability"`
	Credits           decimal.Decimal `json:"credits"`
	NetLiability      decimal.Decimal `json:"net_liability"`
	RateVersion       string          `json:"rate_version"`
	MinimumTaxApplied bool            `json:"minimum_tax_applied,omitempty"`
	Breakdown         []BracketLine   `json:"breakdown,omitempty"`
}

// PenaltyResult reports late-payment consequences. Penalty and interest
// are independently reported; TotalPenalty is their sum.
type PenaltyResult struct {
	DaysLate       int             `json:"days_late"`
	PenaltyAmount  decimal.Decimal `json:"penalty_amount"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
	TotalPenalty   decimal.Decimal `json:"total_penalty"`
}

// ZeroPenalty is the all-zero result for on-time filings.
func ZeroPenalty() PenaltyResult {
	return PenaltyResult{
		PenaltyAmount:  decimal.Zero,
		InterestAmount: decimal.Zero,
		TotalPenalty:   decimal.Zero,
	}
}

// CalculationFailure records a tax type that could not be assessed inside
// a comprehensive assessment while the rest completed.
type CalculationFailure struct {
	TaxType TaxType `json:"tax_type"`
	Reason  string  `json:"reason"`
}

// IssueType classifies a compliance deduction.
type IssueType string

const (
	IssueLateFiling         IssueType = "late_filing"
	IssueMissingFiling      IssueType = "missing_filing"
	IssueUnpaidLiability    IssueType = "unpaid_liability"
	IssueOutstandingPenalty IssueType = "outstanding_penalty"
)

// ComplianceIssue explains one deduction from the compliance score, so
// the score is never an opaque number.
type ComplianceIssue struct {
	Type           IssueType `json:"type"`
	TaxType        TaxType   `json:"tax_type,omitempty"`
	Description    string    `json:"description"`
	PointsDeducted int       `json:"points_deducted"`
}

// ComprehensiveAssessment is the aggregate output for one client and tax
// year. Results, Failures and Issues follow the canonical tax-type order,
// so identical inputs always serialize identically.
type ComprehensiveAssessment struct {
	ClientID        uuid.UUID              `json:"client_id"`
	TaxYear         int                    `json:"tax_year"`
	AsOf            time.Time              `json:"as_of"`
	Results         []TaxCalculationResult `json:"results"`
	Failures        []CalculationFailure   `json:"failures,omitempty"`
	Penalty         PenaltyResult          `json:"penalty"`
	GrandTotal      decimal.Decimal        `json:"grand_total"`
	ComplianceScore int                    `json:"compliance_score"`
	Issues          []ComplianceIssue      `json:"issues,omitempty"`
}

// Result returns the calculation result for a tax type, or nil.
func (a *ComprehensiveAssessment) Result(tt TaxType) *TaxCalculationResult {
	for i := range a.Results {
		if a.Results[i].TaxType == tt {
			return &a.Results[i]
		}
	}
	return nil
}
