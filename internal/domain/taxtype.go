package domain

import "fmt"

// TaxType identifies one of the taxes the engine knows how to assess.
// The set is closed: adding a tax type means adding a calculator, and the
// enumeration order below fixes the ordering of every aggregated output.
type TaxType string

const (
	TaxTypeIncome      TaxType = "income_tax"
	TaxTypeGST         TaxType = "gst"
	TaxTypeWithholding TaxType = "withholding_tax"
	TaxTypePayroll     TaxType = "payroll_tax"
	TaxTypeExcise      TaxType = "excise_duty"
)

// AllTaxTypes lists every tax type in canonical assessment order.
// ComplianceIssue entries and per-type results always follow this order.
var AllTaxTypes = []TaxType{
	TaxTypeIncome,
	TaxTypeGST,
	TaxTypeWithholding,
	TaxTypePayroll,
	TaxTypeExcise,
}

// ParseTaxType converts a string identifier into a TaxType.
func ParseTaxType(s string) (TaxType, error) {
	for _, tt := range AllTaxTypes {
		if string(tt) == s {
			return tt, nil
		}
	}
	return "", fmt.Errorf("%w: unknown tax type %q", ErrInvalidRequest, s)
}

func (tt TaxType) String() string { return string(tt) }

// TaxpayerCategory classifies a taxpayer by turnover band. The category
// determines both applicable rates and the set of owed tax types.
type TaxpayerCategory string

const (
	CategoryIndividual TaxpayerCategory = "individual"
	CategoryLarge      TaxpayerCategory = "large"
	CategoryMedium     TaxpayerCategory = "medium"
	CategorySmall      TaxpayerCategory = "small"
	CategoryMicro      TaxpayerCategory = "micro"
)

// AllCategories lists the valid taxpayer categories.
var AllCategories = []TaxpayerCategory{
	CategoryIndividual,
	CategoryLarge,
	CategoryMedium,
	CategorySmall,
	CategoryMicro,
}

// ParseCategory converts a string identifier into a TaxpayerCategory.
func ParseCategory(s string) (TaxpayerCategory, error) {
	for _, c := range AllCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown taxpayer category %q", ErrInvalidRequest, s)
}

func (c TaxpayerCategory) String() string { return string(c) }

// IsCorporate reports whether the category is one of the turnover-banded
// corporate classes (as opposed to an individual taxpayer).
func (c TaxpayerCategory) IsCorporate() bool {
	switch c {
	case CategoryLarge, CategoryMedium, CategorySmall, CategoryMicro:
		return true
	}
	return false
}

// Obligations returns the tax types the category owes, in canonical
// order. Micro taxpayers are exempt from everything; individuals owe
// income tax only.
func (c TaxpayerCategory) Obligations() []TaxType {
	switch c {
	case CategoryMicro:
		return nil
	case CategoryIndividual:
		return []TaxType{TaxTypeIncome}
	default:
		out := make([]TaxType, len(AllTaxTypes))
		copy(out, AllTaxTypes)
		return out
	}
}

// Owes reports whether the category owes the given tax type.
func (c TaxpayerCategory) Owes(tt TaxType) bool {
	for _, o := range c.Obligations() {
		if o == tt {
			return true
		}
	}
	return false
}

// WithholdingCategory is the payment class a withholding rate applies to.
type WithholdingCategory string

const (
	WithholdingDividends        WithholdingCategory = "dividends"
	WithholdingManagementFees   WithholdingCategory = "management_fees"
	WithholdingProfessionalFees WithholdingCategory = "professional_fees"
	WithholdingRent             WithholdingCategory = "rent"
	WithholdingCommissions      WithholdingCategory = "commissions"
)

// Residency distinguishes resident from non-resident payees. Legislated
// non-resident rates are a separate lookup dimension, never a multiplier
// on the resident rate.
type Residency string

const (
	ResidencyResident    Residency = "resident"
	ResidencyNonResident Residency = "non_resident"
)

// DutyBasis discriminates how an excise rate is applied.
type DutyBasis string

const (
	DutyAdValorem DutyBasis = "ad_valorem" // rate x (quantity x unit value)
	DutySpecific  DutyBasis = "specific"   // amount per unit x quantity
)

// InterestMode selects how late-payment interest accrues for a tax type.
type InterestMode string

const (
	InterestSimple          InterestMode = "simple"
	InterestMonthlyCompound InterestMode = "monthly_compound"
)
