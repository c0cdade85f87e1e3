package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxpayerFacts are the raw financial facts for one client and tax year.
// A nil section means no facts were supplied for that tax type; the
// engine assesses only supplied sections (and reports owed-but-missing
// filings as compliance issues).
type TaxpayerFacts struct {
	Category       TaxpayerCategory  `yaml:"category" json:"category"`
	AnnualTurnover decimal.Decimal   `yaml:"annual_turnover" json:"annual_turnover"`
	IncomeTax      *IncomeTaxFacts   `yaml:"income_tax,omitempty" json:"income_tax,omitempty"`
	GST            *GSTFacts         `yaml:"gst,omitempty" json:"gst,omitempty"`
	Withholding    *WithholdingFacts `yaml:"withholding,omitempty" json:"withholding,omitempty"`
	Payroll        *PayrollFacts     `yaml:"payroll,omitempty" json:"payroll,omitempty"`
	Excise         *ExciseFacts      `yaml:"excise,omitempty" json:"excise,omitempty"`
	Filings        []FilingRecord    `yaml:"filings,omitempty" json:"filings,omitempty"`
}

// Supplied reports whether facts were provided for a tax type.
func (f *TaxpayerFacts) Supplied(tt TaxType) bool {
	switch tt {
	case TaxTypeIncome:
		return f.IncomeTax != nil
	case TaxTypeGST:
		return f.GST != nil
	case TaxTypeWithholding:
		return f.Withholding != nil
	case TaxTypePayroll:
		return f.Payroll != nil
	case TaxTypeExcise:
		return f.Excise != nil
	}
	return false
}

// Filing returns the filing record for a tax type, or nil.
func (f *TaxpayerFacts) Filing(tt TaxType) *FilingRecord {
	for i := range f.Filings {
		if f.Filings[i].TaxType == tt {
			return &f.Filings[i]
		}
	}
	return nil
}

// IncomeTaxFacts feed the income tax calculator. TaxableIncome is the
// already-determined chargeable income; deductions happen upstream.
type IncomeTaxFacts struct {
	TaxableIncome decimal.Decimal `yaml:"taxable_income" json:"taxable_income"`
}

// GSTFacts feed the GST calculator. ExportAmount is zero-rated output;
// InputGST is the credit for GST paid on inputs.
type GSTFacts struct {
	TaxableAmount decimal.Decimal `yaml:"taxable_amount" json:"taxable_amount"`
	ExportAmount  decimal.Decimal `yaml:"export_amount,omitempty" json:"export_amount,omitempty"`
	InputGST      decimal.Decimal `yaml:"input_gst,omitempty" json:"input_gst,omitempty"`
}

// WithholdingPayment is one payment subject to withholding.
type WithholdingPayment struct {
	Category  WithholdingCategory `yaml:"category" json:"category"`
	Residency Residency           `yaml:"residency" json:"residency"`
	Amount    decimal.Decimal     `yaml:"amount" json:"amount"`
}

// WithholdingFacts feed the withholding tax calculator.
type WithholdingFacts struct {
	Payments []WithholdingPayment `yaml:"payments" json:"payments"`
}

// EmployeePay is one employee's annual pay for PAYE purposes. Allowances
// reduce the taxable base, never the computed tax.
type EmployeePay struct {
	Reference   string          `yaml:"reference,omitempty" json:"reference,omitempty"`
	GrossSalary decimal.Decimal `yaml:"gross_salary" json:"gross_salary"`
	Allowances  decimal.Decimal `yaml:"allowances,omitempty" json:"allowances,omitempty"`
}

// PayrollFacts feed the payroll tax calculator (PAYE per employee plus
// the employer-level skills-development levy).
type PayrollFacts struct {
	Employees []EmployeePay `yaml:"employees" json:"employees"`
}

// ExciseLine is one excisable product line.
type ExciseLine struct {
	Product   string          `yaml:"product" json:"product"`
	Quantity  decimal.Decimal `yaml:"quantity" json:"quantity"`
	UnitValue decimal.Decimal `yaml:"unit_value,omitempty" json:"unit_value,omitempty"`
}

// ExciseFacts feed the excise duty calculator.
type ExciseFacts struct {
	Lines []ExciseLine `yaml:"lines" json:"lines"`
}

// FilingRecord is the filing/payment history for one tax type within the
// assessed year. FiledDate nil means not yet filed; the assessment's
// as-of date then stands in as the actual date for lateness.
type FilingRecord struct {
	TaxType    TaxType         `yaml:"tax_type" json:"tax_type"`
	DueDate    time.Time       `yaml:"due_date" json:"due_date"`
	FiledDate  *time.Time      `yaml:"filed_date,omitempty" json:"filed_date,omitempty"`
	AmountPaid decimal.Decimal `yaml:"amount_paid,omitempty" json:"amount_paid,omitempty"`
}

// AssessmentRequest is the engine's sole entry-point input: identity,
// year, the as-of date every lateness computation is relative to, and
// the facts. All fields are required; there are no implicit defaults.
type AssessmentRequest struct {
	ClientID uuid.UUID     `yaml:"client_id" json:"client_id"`
	TaxYear  int           `yaml:"tax_year" json:"tax_year"`
	AsOf     time.Time     `yaml:"as_of" json:"as_of"`
	Facts    TaxpayerFacts `yaml:"facts" json:"facts"`
}

// Validate rejects malformed requests before any calculation starts.
func (r *AssessmentRequest) Validate() error {
	if r.ClientID == uuid.Nil {
		return fmt.Errorf("%w: client id is required", ErrInvalidRequest)
	}
	if r.TaxYear <= 0 {
		return fmt.Errorf("%w: tax year is required", ErrInvalidRequest)
	}
	if r.AsOf.IsZero() {
		return fmt.Errorf("%w: as-of date is required", ErrInvalidRequest)
	}
	if _, err := ParseCategory(string(r.Facts.Category)); err != nil {
		return err
	}
	if r.Facts.AnnualTurnover.IsNegative() {
		return fmt.Errorf("%w: annual turnover must not be negative", ErrInvalidRequest)
	}
	if f := r.Facts.IncomeTax; f != nil && f.TaxableIncome.IsNegative() {
		return fmt.Errorf("%w: taxable income must not be negative", ErrInvalidRequest)
	}
	if f := r.Facts.GST; f != nil {
		if f.TaxableAmount.IsNegative() || f.ExportAmount.IsNegative() || f.InputGST.IsNegative() {
			return fmt.Errorf("%w: gst amounts must not be negative", ErrInvalidRequest)
		}
	}
	if f := r.Facts.Withholding; f != nil {
		for i, p := range f.Payments {
			if p.Amount.IsNegative() {
				return fmt.Errorf("%w: withholding payment %d must not be negative", ErrInvalidRequest, i)
			}
			if p.Residency != ResidencyResident && p.Residency != ResidencyNonResident {
				return fmt.Errorf("%w: withholding payment %d has unknown residency %q", ErrInvalidRequest, i, p.Residency)
			}
		}
	}
	if f := r.Facts.Payroll; f != nil {
		for i, e := range f.Employees {
			if e.GrossSalary.IsNegative() {
				return fmt.Errorf("%w: employee %d gross salary must not be negative", ErrInvalidRequest, i)
			}
			if e.Allowances.IsNegative() {
				return fmt.Errorf("%w: employee %d allowances must not be negative", ErrInvalidRequest, i)
			}
		}
	}
	if f := r.Facts.Excise; f != nil {
		for i, l := range f.Lines {
			if l.Product == "" {
				return fmt.Errorf("%w: excise line %d has no product", ErrInvalidRequest, i)
			}
			if l.Quantity.IsNegative() || l.UnitValue.IsNegative() {
				return fmt.Errorf("%w: excise line %d must not be negative", ErrInvalidRequest, i)
			}
		}
	}
	for i, fr := range r.Facts.Filings {
		if _, err := ParseTaxType(string(fr.TaxType)); err != nil {
			return fmt.Errorf("filing %d: %w", i, err)
		}
		if fr.DueDate.IsZero() {
			return fmt.Errorf("%w: filing %d has no due date", ErrInvalidRequest, i)
		}
		if fr.AmountPaid.IsNegative() {
			return fmt.Errorf("%w: filing %d amount paid must not be negative", ErrInvalidRequest, i)
		}
	}
	return nil
}
