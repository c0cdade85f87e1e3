package calculation

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/taxcore/assessment-engine/internal/domain"
	"github.com/taxcore/assessment-engine/internal/ratestore"
	"github.com/taxcore/assessment-engine/pkg/dateutil"
)

// Compliance score weights. Each deduction is recorded as a
// ComplianceIssue so the score stays explainable.
const (
	lateFilingPoints         = 10
	missingFilingPoints      = 15
	unpaidLiabilityPoints    = 15
	outstandingPenaltyPoints = 5
	maxComplianceScore       = 100
)

// DefaultMaterialityThreshold is the unpaid-liability level below which
// no compliance deduction applies.
var DefaultMaterialityThreshold = decimal.NewFromInt(1000)

// AssessmentEngine composes the tax-type calculators and the penalty
// calculator into one comprehensive assessment per client and tax year.
// The engine is stateless between calls: it reads an immutable rate
// snapshot and returns a freshly built result, so calls may run
// concurrently without locking.
type AssessmentEngine struct {
	Rates       ratestore.RateTable
	Calculators map[domain.TaxType]TaxCalculator
	Logger      Logger

	// MaterialityThreshold is the unpaid-liability floor for compliance
	// deductions.
	MaterialityThreshold decimal.Decimal
}

// NewAssessmentEngine creates an engine over a rate table snapshot.
func NewAssessmentEngine(rates ratestore.RateTable) *AssessmentEngine {
	return &AssessmentEngine{
		Rates:                rates,
		Calculators:          NewCalculators(),
		Logger:               NopLogger{},
		MaterialityThreshold: DefaultMaterialityThreshold,
	}
}

// SetLogger installs a logger; nil restores the no-op default.
func (e *AssessmentEngine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.Logger = l
}

// Assess runs every applicable tax-type calculation for the request,
// adds late-payment consequences for overdue filings, and derives the
// compliance score. A failure in one tax type becomes a partial-failure
// entry; the assessment still completes for the rest. Identical inputs
// (including the as-of date) always produce identical output.
func (e *AssessmentEngine) Assess(ctx context.Context, req *domain.AssessmentRequest) (*domain.ComprehensiveAssessment, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", domain.ErrInvalidRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assessment := &domain.ComprehensiveAssessment{
		ClientID: req.ClientID,
		TaxYear:  req.TaxYear,
		AsOf:     req.AsOf,
		Penalty:  domain.ZeroPenalty(),
	}

	// The assessed set is the category's obligations intersected with
	// the supplied fact sections. Facts supplied for a tax the category
	// does not owe are reported, never silently ignored.
	category := req.Facts.Category
	var assessed []domain.TaxType
	for _, tt := range domain.AllTaxTypes {
		if !req.Facts.Supplied(tt) {
			continue
		}
		if !category.Owes(tt) {
			assessment.Failures = append(assessment.Failures, domain.CalculationFailure{
				TaxType: tt,
				Reason:  fmt.Sprintf("%s: category %s does not owe %s", domain.ErrUnsupportedTaxType, category, tt),
			})
			continue
		}
		assessed = append(assessed, tt)
	}
	e.Logger.Debugf("assessing client %s year %d: %d tax types, category %s",
		req.ClientID, req.TaxYear, len(assessed), category)

	// Per-type calculations are mutually independent pure functions, so
	// they fan out in parallel. Results land in a slice indexed by the
	// canonical order; completion order never affects the output.
	results := make([]*domain.TaxCalculationResult, len(assessed))
	failures := make([]error, len(assessed))
	var wg sync.WaitGroup
	for i, tt := range assessed {
		wg.Add(1)
		go func(i int, tt domain.TaxType) {
			defer wg.Done()
			results[i], failures[i] = e.calculateOne(tt, req)
		}(i, tt)
	}
	wg.Wait()

	netByType := make(map[domain.TaxType]decimal.Decimal, len(assessed))
	for i, tt := range assessed {
		if failures[i] != nil {
			e.Logger.Warnf("tax type %s failed for client %s: %v", tt, req.ClientID, failures[i])
			assessment.Failures = append(assessment.Failures, domain.CalculationFailure{
				TaxType: tt,
				Reason:  failures[i].Error(),
			})
			continue
		}
		assessment.Results = append(assessment.Results, *results[i])
		netByType[tt] = results[i].NetLiability
	}

	e.applyPenalties(req, assessment, netByType)
	e.scoreCompliance(req, assessment, netByType)

	total := assessment.Penalty.TotalPenalty
	for _, r := range assessment.Results {
		total = total.Add(r.NetLiability)
	}
	assessment.GrandTotal = total

	e.Logger.Infof("assessment for client %s year %d: grand total %s, score %d, %d failures",
		req.ClientID, req.TaxYear, total.StringFixed(2), assessment.ComplianceScore, len(assessment.Failures))
	return assessment, nil
}

// calculateOne resolves the rate entry and dispatches to the tax type's
// calculator.
func (e *AssessmentEngine) calculateOne(tt domain.TaxType, req *domain.AssessmentRequest) (*domain.TaxCalculationResult, error) {
	calc, ok := e.Calculators[tt]
	if !ok {
		return nil, fmt.Errorf("%w: no calculator for %s", domain.ErrUnsupportedTaxType, tt)
	}
	entry, err := e.Rates.Lookup(tt, req.TaxYear, req.Facts.Category)
	if err != nil {
		return nil, err
	}
	return calc.Calculate(&req.Facts, entry)
}

// applyPenalties runs the penalty calculator once per tax type whose
// filing is overdue relative to the as-of date and aggregates into a
// single PenaltyResult (DaysLate carries the worst lateness).
func (e *AssessmentEngine) applyPenalties(req *domain.AssessmentRequest, assessment *domain.ComprehensiveAssessment, netByType map[domain.TaxType]decimal.Decimal) {
	var pc *PenaltyInterestCalculator
	for _, tt := range domain.AllTaxTypes {
		filing := req.Facts.Filing(tt)
		if filing == nil {
			continue
		}
		actual := req.AsOf
		if filing.FiledDate != nil {
			actual = *filing.FiledDate
		}
		if dateutil.DaysLate(filing.DueDate, actual) == 0 {
			continue
		}
		net, ok := netByType[tt]
		if !ok || !net.IsPositive() {
			// Nothing assessable to penalize; lateness still counts
			// against the compliance score.
			continue
		}
		if pc == nil {
			schedule, err := e.Rates.PenaltySchedule(req.TaxYear)
			if err != nil {
				assessment.Failures = append(assessment.Failures, domain.CalculationFailure{
					TaxType: tt,
					Reason:  err.Error(),
				})
				return
			}
			pc = NewPenaltyInterestCalculator(schedule)
		}
		res, err := pc.Compute(net, filing.DueDate, actual, tt)
		if err != nil {
			assessment.Failures = append(assessment.Failures, domain.CalculationFailure{
				TaxType: tt,
				Reason:  err.Error(),
			})
			continue
		}
		assessment.Penalty.PenaltyAmount = assessment.Penalty.PenaltyAmount.Add(res.PenaltyAmount)
		assessment.Penalty.InterestAmount = assessment.Penalty.InterestAmount.Add(res.InterestAmount)
		assessment.Penalty.TotalPenalty = assessment.Penalty.TotalPenalty.Add(res.TotalPenalty)
		if res.DaysLate > assessment.Penalty.DaysLate {
			assessment.Penalty.DaysLate = res.DaysLate
		}
	}
}

// scoreCompliance starts at 100 and deducts a fixed weight per late or
// missing filing, per material unpaid liability, and per outstanding
// penalty, flooring at 0. Issues follow the canonical tax-type order so
// reruns are reproducible.
func (e *AssessmentEngine) scoreCompliance(req *domain.AssessmentRequest, assessment *domain.ComprehensiveAssessment, netByType map[domain.TaxType]decimal.Decimal) {
	deducted := 0
	addIssue := func(issue domain.ComplianceIssue) {
		assessment.Issues = append(assessment.Issues, issue)
		deducted += issue.PointsDeducted
	}

	for _, tt := range domain.AllTaxTypes {
		if !req.Facts.Category.Owes(tt) {
			continue
		}
		filing := req.Facts.Filing(tt)
		if filing == nil && !req.Facts.Supplied(tt) {
			addIssue(domain.ComplianceIssue{
				Type:           domain.IssueMissingFiling,
				TaxType:        tt,
				Description:    fmt.Sprintf("no filing or facts recorded for %s", tt),
				PointsDeducted: missingFilingPoints,
			})
			continue
		}
		if filing != nil {
			actual := req.AsOf
			if filing.FiledDate != nil {
				actual = *filing.FiledDate
			}
			if days := dateutil.DaysLate(filing.DueDate, actual); days > 0 {
				addIssue(domain.ComplianceIssue{
					Type:           domain.IssueLateFiling,
					TaxType:        tt,
					Description:    fmt.Sprintf("%s filed %d days late", tt, days),
					PointsDeducted: lateFilingPoints,
				})
			}
		}
		if net, ok := netByType[tt]; ok {
			paid := decimal.Zero
			if filing != nil {
				paid = filing.AmountPaid
			}
			unpaid := net.Sub(paid)
			if unpaid.GreaterThan(e.MaterialityThreshold) {
				addIssue(domain.ComplianceIssue{
					Type:           domain.IssueUnpaidLiability,
					TaxType:        tt,
					Description:    fmt.Sprintf("%s liability of %s remains unpaid", tt, unpaid.StringFixed(2)),
					PointsDeducted: unpaidLiabilityPoints,
				})
			}
		}
	}

	if assessment.Penalty.TotalPenalty.IsPositive() {
		addIssue(domain.ComplianceIssue{
			Type:           domain.IssueOutstandingPenalty,
			Description:    fmt.Sprintf("outstanding penalties and interest of %s", assessment.Penalty.TotalPenalty.StringFixed(2)),
			PointsDeducted: outstandingPenaltyPoints,
		})
	}

	score := maxComplianceScore - deducted
	if score < 0 {
		score = 0
	}
	assessment.ComplianceScore = score
}
