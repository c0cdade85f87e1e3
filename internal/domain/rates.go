package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bracket is one band of a progressive rate table. Upper is nil on the
// terminal band, which is unbounded. Bounds are contiguous: each band's
// Lower equals the previous band's Upper.
type Bracket struct {
	Lower decimal.Decimal  `yaml:"lower" json:"lower"`
	Upper *decimal.Decimal `yaml:"upper,omitempty" json:"upper,omitempty"`
	Rate  decimal.Decimal  `yaml:"rate" json:"rate"`
}

// WithholdingRate carries the legislated rates for one payment class.
// Resident and non-resident rates are independent lookup values.
type WithholdingRate struct {
	Resident    decimal.Decimal `yaml:"resident" json:"resident"`
	NonResident decimal.Decimal `yaml:"non_resident" json:"non_resident"`
}

// ForResidency selects the rate for a residency flag.
func (w WithholdingRate) ForResidency(r Residency) (decimal.Decimal, error) {
	switch r {
	case ResidencyResident:
		return w.Resident, nil
	case ResidencyNonResident:
		return w.NonResident, nil
	}
	return decimal.Zero, fmt.Errorf("%w: unknown residency %q", ErrInvalidRequest, r)
}

// ExciseRate defines duty for one product category. Exactly one of Rate
// (ad valorem) or AmountPerUnit (specific) is meaningful, selected by
// Basis.
type ExciseRate struct {
	Basis         DutyBasis       `yaml:"basis" json:"basis"`
	Rate          decimal.Decimal `yaml:"rate,omitempty" json:"rate,omitempty"`
	AmountPerUnit decimal.Decimal `yaml:"amount_per_unit,omitempty" json:"amount_per_unit,omitempty"`
}

// RateEntry is the versioned rule record for one (tax type, tax year,
// category). A single shape serves all five tax types; each calculator
// reads the fields it needs. Entries are owned by the rate store and
// read-only to the engine.
type RateEntry struct {
	TaxType  TaxType          `yaml:"tax_type" json:"tax_type"`
	TaxYear  int              `yaml:"tax_year" json:"tax_year"`
	Category TaxpayerCategory `yaml:"category" json:"category"`

	// Version identifies the legislative rule set (e.g. "FA2024") and is
	// carried into every result for audit reproducibility.
	Version string `yaml:"version" json:"version"`

	FlatRate decimal.Decimal `yaml:"flat_rate,omitempty" json:"flat_rate,omitempty"`
	Brackets []Bracket       `yaml:"brackets,omitempty" json:"brackets,omitempty"`

	// MinimumTaxRate applies the turnover-based floor to income tax.
	MinimumTaxRate decimal.Decimal `yaml:"minimum_tax_rate,omitempty" json:"minimum_tax_rate,omitempty"`

	// LevyRate is the skills-development levy on total payroll.
	LevyRate decimal.Decimal `yaml:"levy_rate,omitempty" json:"levy_rate,omitempty"`

	WithholdingRates map[WithholdingCategory]WithholdingRate `yaml:"withholding_rates,omitempty" json:"withholding_rates,omitempty"`
	ExciseRates      map[string]ExciseRate                   `yaml:"excise_rates,omitempty" json:"excise_rates,omitempty"`
}

// Validate checks structural invariants. It runs at snapshot load time so
// a calculation can never discover a malformed table mid-computation.
// Rates may be non-monotonic across bands (legislation decides), but
// bounds must start at zero, be contiguous, and end unbounded.
func (re *RateEntry) Validate() error {
	if _, err := ParseTaxType(string(re.TaxType)); err != nil {
		return err
	}
	if _, err := ParseCategory(string(re.Category)); err != nil {
		return err
	}
	if re.TaxYear <= 0 {
		return fmt.Errorf("%w: rate entry %s/%s has no tax year", ErrInvalidRequest, re.TaxType, re.Category)
	}
	if re.Version == "" {
		return fmt.Errorf("%w: rate entry %s/%d/%s has no version", ErrInvalidRequest, re.TaxType, re.TaxYear, re.Category)
	}
	if re.FlatRate.IsNegative() || re.MinimumTaxRate.IsNegative() || re.LevyRate.IsNegative() {
		return fmt.Errorf("%w: rate entry %s/%d/%s has a negative rate", ErrInvalidRequest, re.TaxType, re.TaxYear, re.Category)
	}
	if len(re.Brackets) > 0 {
		if err := ValidateBrackets(re.Brackets); err != nil {
			return fmt.Errorf("rate entry %s/%d/%s: %w", re.TaxType, re.TaxYear, re.Category, err)
		}
	}
	for cat, wr := range re.WithholdingRates {
		if wr.Resident.IsNegative() || wr.NonResident.IsNegative() {
			return fmt.Errorf("%w: withholding rate for %q is negative", ErrInvalidRequest, cat)
		}
	}
	for product, er := range re.ExciseRates {
		switch er.Basis {
		case DutyAdValorem:
			if er.Rate.IsNegative() {
				return fmt.Errorf("%w: excise rate for %q is negative", ErrInvalidRequest, product)
			}
		case DutySpecific:
			if er.AmountPerUnit.IsNegative() {
				return fmt.Errorf("%w: excise amount per unit for %q is negative", ErrInvalidRequest, product)
			}
		default:
			return fmt.Errorf("%w: excise rate for %q has unknown basis %q", ErrInvalidRequest, product, er.Basis)
		}
	}
	return nil
}

// ValidateBrackets enforces the bracket-table invariants: first band at
// zero, contiguous non-overlapping bounds, strictly increasing, and an
// unbounded terminal band, so every non-negative amount is covered.
func ValidateBrackets(brackets []Bracket) error {
	if len(brackets) == 0 {
		return fmt.Errorf("%w: empty bracket table", ErrInvalidRequest)
	}
	if !brackets[0].Lower.IsZero() {
		return fmt.Errorf("%w: first bracket must start at 0, got %s", ErrInvalidRequest, brackets[0].Lower)
	}
	for i, b := range brackets {
		if b.Rate.IsNegative() {
			return fmt.Errorf("%w: bracket %d has negative rate", ErrInvalidRequest, i)
		}
		last := i == len(brackets)-1
		if last {
			if b.Upper != nil {
				return fmt.Errorf("%w: terminal bracket must be unbounded", ErrInvalidRequest)
			}
			continue
		}
		if b.Upper == nil {
			return fmt.Errorf("%w: only the terminal bracket may be unbounded", ErrInvalidRequest)
		}
		if !b.Upper.GreaterThan(b.Lower) {
			return fmt.Errorf("%w: bracket %d bounds not increasing (%s..%s)", ErrInvalidRequest, i, b.Lower, b.Upper)
		}
		if !brackets[i+1].Lower.Equal(*b.Upper) {
			return fmt.Errorf("%w: gap or overlap between brackets %d and %d (%s vs %s)",
				ErrInvalidRequest, i, i+1, b.Upper, brackets[i+1].Lower)
		}
	}
	return nil
}

// PenaltyBand is one days-late band of the late-payment penalty schedule.
// ToDay == 0 marks the open-ended final band. The single band matching
// the total days late applies to the whole amount; bands never blend.
type PenaltyBand struct {
	FromDay int             `yaml:"from_day" json:"from_day"`
	ToDay   int             `yaml:"to_day,omitempty" json:"to_day,omitempty"`
	Rate    decimal.Decimal `yaml:"rate" json:"rate"`
}

// PenaltySchedule holds the late-filing penalty bands and interest rules
// for one tax year.
type PenaltySchedule struct {
	Bands              []PenaltyBand            `yaml:"bands" json:"bands"`
	AnnualInterestRate decimal.Decimal          `yaml:"annual_interest_rate" json:"annual_interest_rate"`
	InterestModes      map[TaxType]InterestMode `yaml:"interest_modes,omitempty" json:"interest_modes,omitempty"`
}

// ModeFor returns the interest mode for a tax type, defaulting to simple
// interest when no per-type override is configured.
func (ps *PenaltySchedule) ModeFor(tt TaxType) InterestMode {
	if mode, ok := ps.InterestModes[tt]; ok {
		return mode
	}
	return InterestSimple
}

// BandFor selects the penalty band covering daysLate, or nil when no band
// matches (daysLate below the first band).
func (ps *PenaltySchedule) BandFor(daysLate int) *PenaltyBand {
	for i := range ps.Bands {
		b := &ps.Bands[i]
		if daysLate >= b.FromDay && (b.ToDay == 0 || daysLate <= b.ToDay) {
			return b
		}
	}
	return nil
}

// Validate checks the schedule invariants at load time.
func (ps *PenaltySchedule) Validate() error {
	if len(ps.Bands) == 0 {
		return fmt.Errorf("%w: penalty schedule has no bands", ErrInvalidRequest)
	}
	prevTo := 0
	for i, b := range ps.Bands {
		if b.Rate.IsNegative() {
			return fmt.Errorf("%w: penalty band %d has negative rate", ErrInvalidRequest, i)
		}
		if b.FromDay != prevTo+1 {
			return fmt.Errorf("%w: penalty band %d must start at day %d, got %d", ErrInvalidRequest, i, prevTo+1, b.FromDay)
		}
		last := i == len(ps.Bands)-1
		if last {
			if b.ToDay != 0 {
				return fmt.Errorf("%w: terminal penalty band must be open-ended", ErrInvalidRequest)
			}
			continue
		}
		if b.ToDay < b.FromDay {
			return fmt.Errorf("%w: penalty band %d is empty (%d..%d)", ErrInvalidRequest, i, b.FromDay, b.ToDay)
		}
		prevTo = b.ToDay
	}
	if ps.AnnualInterestRate.IsNegative() {
		return fmt.Errorf("%w: annual interest rate is negative", ErrInvalidRequest)
	}
	for tt, mode := range ps.InterestModes {
		if _, err := ParseTaxType(string(tt)); err != nil {
			return err
		}
		if mode != InterestSimple && mode != InterestMonthlyCompound {
			return fmt.Errorf("%w: unknown interest mode %q for %s", ErrInvalidRequest, mode, tt)
		}
	}
	return nil
}
