package calculation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxcore/assessment-engine/internal/domain"
	"github.com/taxcore/assessment-engine/internal/ratestore"
)

var testClientID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func testStore(t *testing.T) *ratestore.MemoryStore {
	t.Helper()
	snap := &ratestore.Snapshot{
		Version: "FA2024",
		TaxYear: 2024,
		Entries: []domain.RateEntry{
			{TaxType: domain.TaxTypeIncome, Category: domain.CategoryIndividual, Brackets: individualBrackets()},
			{TaxType: domain.TaxTypeIncome, Category: domain.CategoryLarge, FlatRate: dec("0.30"), MinimumTaxRate: dec("0.015")},
			{TaxType: domain.TaxTypeIncome, Category: domain.CategorySmall, FlatRate: dec("0.10"), MinimumTaxRate: dec("0.005")},
			{TaxType: domain.TaxTypeGST, Category: domain.CategoryLarge, FlatRate: dec("0.18")},
			{TaxType: domain.TaxTypeGST, Category: domain.CategoryMedium, FlatRate: dec("0.18")},
			{
				TaxType: domain.TaxTypeWithholding, Category: domain.CategoryLarge,
				WithholdingRates: map[domain.WithholdingCategory]domain.WithholdingRate{
					domain.WithholdingDividends:        {Resident: dec("0.10"), NonResident: dec("0.15")},
					domain.WithholdingProfessionalFees: {Resident: dec("0.05"), NonResident: dec("0.15")},
				},
			},
			{TaxType: domain.TaxTypePayroll, Category: domain.CategoryLarge, Brackets: payeBrackets(), LevyRate: dec("0.005")},
			{
				TaxType: domain.TaxTypeExcise, Category: domain.CategoryLarge,
				ExciseRates: map[string]domain.ExciseRate{
					"beer":       {Basis: domain.DutyAdValorem, Rate: dec("0.25")},
					"cigarettes": {Basis: domain.DutySpecific, AmountPerUnit: dec("50")},
				},
			},
		},
		Penalties: *testSchedule(),
	}
	store, err := ratestore.NewMemoryStore(snap)
	require.NoError(t, err)
	return store
}

func largeCompanyRequest() *domain.AssessmentRequest {
	onTime := date(2024, 6, 30)
	filed := onTime
	return &domain.AssessmentRequest{
		ClientID: testClientID,
		TaxYear:  2024,
		AsOf:     date(2024, 9, 30),
		Facts: domain.TaxpayerFacts{
			Category:       domain.CategoryLarge,
			AnnualTurnover: dec("50000000"),
			IncomeTax:      &domain.IncomeTaxFacts{TaxableIncome: dec("10000000")},
			GST:            &domain.GSTFacts{TaxableAmount: dec("5000000"), InputGST: dec("400000")},
			Withholding: &domain.WithholdingFacts{Payments: []domain.WithholdingPayment{
				{Category: domain.WithholdingDividends, Residency: domain.ResidencyResident, Amount: dec("1000000")},
				{Category: domain.WithholdingProfessionalFees, Residency: domain.ResidencyNonResident, Amount: dec("200000")},
			}},
			Payroll: &domain.PayrollFacts{Employees: []domain.EmployeePay{
				{Reference: "E1", GrossSalary: dec("2000000"), Allowances: dec("200000")},
				{Reference: "E2", GrossSalary: dec("1000000")},
			}},
			Excise: &domain.ExciseFacts{Lines: []domain.ExciseLine{
				{Product: "beer", Quantity: dec("1000"), UnitValue: dec("500")},
				{Product: "cigarettes", Quantity: dec("2000")},
			}},
			Filings: []domain.FilingRecord{
				{TaxType: domain.TaxTypeIncome, DueDate: onTime, FiledDate: &filed, AmountPaid: dec("3000000")},
				{TaxType: domain.TaxTypeGST, DueDate: onTime, FiledDate: &filed, AmountPaid: dec("500000")},
				{TaxType: domain.TaxTypeWithholding, DueDate: onTime, FiledDate: &filed, AmountPaid: dec("130000")},
				{TaxType: domain.TaxTypePayroll, DueDate: onTime, FiledDate: &filed, AmountPaid: dec("75000")},
				{TaxType: domain.TaxTypeExcise, DueDate: onTime, FiledDate: &filed, AmountPaid: dec("225000")},
			},
		},
	}
}

func TestEngineComprehensiveAssessment(t *testing.T) {
	engine := NewAssessmentEngine(testStore(t))
	assessment, err := engine.Assess(context.Background(), largeCompanyRequest())
	require.NoError(t, err)

	require.Len(t, assessment.Results, 5)
	require.Empty(t, assessment.Failures)

	// Results follow the canonical tax-type order regardless of goroutine
	// completion order.
	expected := []struct {
		taxType domain.TaxType
		net     string
	}{
		{domain.TaxTypeIncome, "3000000"},
		{domain.TaxTypeGST, "500000"},
		{domain.TaxTypeWithholding, "130000"},
		{domain.TaxTypePayroll, "75000"},
		{domain.TaxTypeExcise, "225000"},
	}
	for i, exp := range expected {
		assert.Equal(t, exp.taxType, assessment.Results[i].TaxType)
		assert.True(t, assessment.Results[i].NetLiability.Equal(dec(exp.net)),
			"%s: expected %s, got %s", exp.taxType, exp.net, assessment.Results[i].NetLiability)
		assert.Equal(t, "FA2024", assessment.Results[i].RateVersion)
	}

	assert.True(t, assessment.GrandTotal.Equal(dec("3930000")),
		"expected 3930000, got %s", assessment.GrandTotal)
	assert.Equal(t, 100, assessment.ComplianceScore)
	assert.Empty(t, assessment.Issues)
	assert.True(t, assessment.Penalty.TotalPenalty.IsZero())
}

// Identical inputs (including the as-of date) always produce identical
// output, goroutines notwithstanding.
func TestEngineDeterministic(t *testing.T) {
	engine := NewAssessmentEngine(testStore(t))
	first, err := engine.Assess(context.Background(), largeCompanyRequest())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := engine.Assess(context.Background(), largeCompanyRequest())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEngineLatePenaltyAndScore(t *testing.T) {
	engine := NewAssessmentEngine(testStore(t))
	filed := date(2024, 5, 6) // 36 days after the 31 Mar due date
	req := &domain.AssessmentRequest{
		ClientID: testClientID,
		TaxYear:  2024,
		AsOf:     date(2024, 9, 30),
		Facts: domain.TaxpayerFacts{
			Category:  domain.CategoryIndividual,
			IncomeTax: &domain.IncomeTaxFacts{TaxableIncome: dec("1500000")},
			Filings: []domain.FilingRecord{
				{TaxType: domain.TaxTypeIncome, DueDate: date(2024, 3, 31), FiledDate: &filed},
			},
		},
	}

	assessment, err := engine.Assess(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, assessment.Results, 1)
	assert.True(t, assessment.Results[0].NetLiability.Equal(dec("150000")))

	assert.Equal(t, 36, assessment.Penalty.DaysLate)
	// 31-60 band at 10% on the whole 150000.
	assert.True(t, assessment.Penalty.PenaltyAmount.Equal(dec("15000")),
		"expected 15000, got %s", assessment.Penalty.PenaltyAmount)
	// Income tax interest compounds per commenced 30-day month:
	// 150000 * (1.0125^2 - 1) = 3773.4375 -> 3773.44
	assert.True(t, assessment.Penalty.InterestAmount.Equal(dec("3773.44")),
		"expected 3773.44, got %s", assessment.Penalty.InterestAmount)
	assert.True(t, assessment.Penalty.TotalPenalty.Equal(dec("18773.44")))
	assert.True(t, assessment.GrandTotal.Equal(dec("168773.44")),
		"expected 168773.44, got %s", assessment.GrandTotal)

	// Late filing (10) + unpaid liability (15) + outstanding penalty (5).
	assert.Equal(t, 70, assessment.ComplianceScore)
	require.Len(t, assessment.Issues, 3)
	assert.Equal(t, domain.IssueLateFiling, assessment.Issues[0].Type)
	assert.Equal(t, domain.IssueUnpaidLiability, assessment.Issues[1].Type)
	assert.Equal(t, domain.IssueOutstandingPenalty, assessment.Issues[2].Type)
}

func TestEngineMicroExempt(t *testing.T) {
	engine := NewAssessmentEngine(testStore(t))
	req := &domain.AssessmentRequest{
		ClientID: testClientID,
		TaxYear:  2024,
		AsOf:     date(2024, 9, 30),
		Facts: domain.TaxpayerFacts{
			Category:  domain.CategoryMicro,
			IncomeTax: &domain.IncomeTaxFacts{TaxableIncome: dec("1000000")},
		},
	}

	assessment, err := engine.Assess(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, assessment.Results)
	require.Len(t, assessment.Failures, 1)
	assert.Equal(t, domain.TaxTypeIncome, assessment.Failures[0].TaxType)
	assert.True(t, assessment.GrandTotal.IsZero())
	assert.Equal(t, 100, assessment.ComplianceScore)
}

func TestEngineIndividualOwesIncomeOnly(t *testing.T) {
	engine := NewAssessmentEngine(testStore(t))
	req := &domain.AssessmentRequest{
		ClientID: testClientID,
		TaxYear:  2024,
		AsOf:     date(2024, 9, 30),
		Facts: domain.TaxpayerFacts{
			Category:  domain.CategoryIndividual,
			IncomeTax: &domain.IncomeTaxFacts{TaxableIncome: dec("500000")},
			GST:       &domain.GSTFacts{TaxableAmount: dec("100000")},
		},
	}

	assessment, err := engine.Assess(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, assessment.Results, 1)
	assert.Equal(t, domain.TaxTypeIncome, assessment.Results[0].TaxType)
	// Supplied-but-not-owed is reported, never silently dropped.
	require.Len(t, assessment.Failures, 1)
	assert.Equal(t, domain.TaxTypeGST, assessment.Failures[0].TaxType)
	assert.Contains(t, assessment.Failures[0].Reason, "does not owe")
}

// One tax type failing must not take down the rest of the assessment.
func TestEnginePartialFailure(t *testing.T) {
	engine := NewAssessmentEngine(testStore(t))
	req := &domain.AssessmentRequest{
		ClientID: testClientID,
		TaxYear:  2024,
		AsOf:     date(2024, 9, 30),
		Facts: domain.TaxpayerFacts{
			Category: domain.CategoryMedium,
			GST:      &domain.GSTFacts{TaxableAmount: dec("1000000")},
			Excise: &domain.ExciseFacts{Lines: []domain.ExciseLine{
				{Product: "beer", Quantity: dec("10"), UnitValue: dec("100")},
			}},
		},
	}

	assessment, err := engine.Assess(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, assessment.Results, 1)
	assert.Equal(t, domain.TaxTypeGST, assessment.Results[0].TaxType)
	assert.True(t, assessment.Results[0].NetLiability.Equal(dec("180000")))

	// No excise rates exist for medium in the store.
	require.Len(t, assessment.Failures, 1)
	assert.Equal(t, domain.TaxTypeExcise, assessment.Failures[0].TaxType)
	assert.Contains(t, assessment.Failures[0].Reason, "rate not found")

	// Grand total covers completed types only.
	assert.True(t, assessment.GrandTotal.Equal(dec("180000")))

	// Missing filings for income, withholding and payroll (3 x 15) plus
	// the unassessed GST liability (15).
	assert.Equal(t, 40, assessment.ComplianceScore)
}

func TestEngineNoYearFallback(t *testing.T) {
	engine := NewAssessmentEngine(testStore(t))
	req := &domain.AssessmentRequest{
		ClientID: testClientID,
		TaxYear:  2023, // only 2024 is loaded
		AsOf:     date(2023, 9, 30),
		Facts: domain.TaxpayerFacts{
			Category:  domain.CategoryLarge,
			IncomeTax: &domain.IncomeTaxFacts{TaxableIncome: dec("1000000")},
		},
	}

	assessment, err := engine.Assess(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, assessment.Results)
	require.Len(t, assessment.Failures, 1)
	assert.Contains(t, assessment.Failures[0].Reason, "rate not found")
}

func TestEngineScoreFloorsAtZero(t *testing.T) {
	engine := NewAssessmentEngine(testStore(t))
	filed := date(2024, 5, 6)
	req := &domain.AssessmentRequest{
		ClientID: testClientID,
		TaxYear:  2024,
		AsOf:     date(2024, 9, 30),
		Facts: domain.TaxpayerFacts{
			Category: domain.CategoryLarge,
			GST:      &domain.GSTFacts{TaxableAmount: dec("5000000")},
			Withholding: &domain.WithholdingFacts{Payments: []domain.WithholdingPayment{
				{Category: domain.WithholdingDividends, Residency: domain.ResidencyResident, Amount: dec("1000000")},
			}},
			Filings: []domain.FilingRecord{
				{TaxType: domain.TaxTypeGST, DueDate: date(2024, 3, 31), FiledDate: &filed},
				{TaxType: domain.TaxTypeWithholding, DueDate: date(2024, 3, 31), FiledDate: &filed},
			},
		},
	}

	assessment, err := engine.Assess(context.Background(), req)
	require.NoError(t, err)
	// 3 missing filings (45) + 2 late filings (20) + 2 unpaid (30) +
	// outstanding penalty (5) deducts exactly 100.
	assert.Equal(t, 0, assessment.ComplianceScore)
}

func TestEngineRequestValidation(t *testing.T) {
	engine := NewAssessmentEngine(testStore(t))

	t.Run("nil request", func(t *testing.T) {
		_, err := engine.Assess(context.Background(), nil)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("missing client id", func(t *testing.T) {
		req := largeCompanyRequest()
		req.ClientID = uuid.Nil
		_, err := engine.Assess(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := engine.Assess(ctx, largeCompanyRequest())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEngineSetLogger(t *testing.T) {
	engine := NewAssessmentEngine(testStore(t))
	engine.SetLogger(nil)
	assert.IsType(t, NopLogger{}, engine.Logger)

	_, err := engine.Assess(context.Background(), largeCompanyRequest())
	assert.NoError(t, err)
}
