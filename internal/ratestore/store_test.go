package ratestore

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxcore/assessment-engine/internal/domain"
)

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func validSnapshot() *Snapshot {
	return &Snapshot{
		Version: "FA2024",
		TaxYear: 2024,
		Entries: []domain.RateEntry{
			{TaxType: domain.TaxTypeGST, Category: domain.CategoryLarge, FlatRate: dec("0.18")},
			{
				TaxType: domain.TaxTypeIncome, Category: domain.CategoryIndividual,
				Brackets: []domain.Bracket{
					{Lower: dec("0"), Upper: decPtr("600000"), Rate: dec("0")},
					{Lower: dec("600000"), Rate: dec("0.15")},
				},
			},
		},
		Penalties: domain.PenaltySchedule{
			Bands: []domain.PenaltyBand{
				{FromDay: 1, ToDay: 30, Rate: dec("0.05")},
				{FromDay: 31, Rate: dec("0.10")},
			},
			AnnualInterestRate: dec("0.15"),
		},
	}
}

func TestMemoryStoreLookup(t *testing.T) {
	store, err := NewMemoryStore(validSnapshot())
	require.NoError(t, err)

	entry, err := store.Lookup(domain.TaxTypeGST, 2024, domain.CategoryLarge)
	require.NoError(t, err)
	assert.True(t, entry.FlatRate.Equal(dec("0.18")))
	// Entries inherit the snapshot's year and version.
	assert.Equal(t, 2024, entry.TaxYear)
	assert.Equal(t, "FA2024", entry.Version)
}

func TestMemoryStoreNoFallback(t *testing.T) {
	store, err := NewMemoryStore(validSnapshot())
	require.NoError(t, err)

	t.Run("wrong year", func(t *testing.T) {
		_, err := store.Lookup(domain.TaxTypeGST, 2023, domain.CategoryLarge)
		assert.ErrorIs(t, err, domain.ErrRateNotFound)
	})
	t.Run("wrong category", func(t *testing.T) {
		_, err := store.Lookup(domain.TaxTypeGST, 2024, domain.CategorySmall)
		assert.ErrorIs(t, err, domain.ErrRateNotFound)
	})
	t.Run("missing penalty schedule year", func(t *testing.T) {
		_, err := store.PenaltySchedule(2023)
		assert.ErrorIs(t, err, domain.ErrRateNotFound)
	})
}

func TestMemoryStorePenaltySchedule(t *testing.T) {
	store, err := NewMemoryStore(validSnapshot())
	require.NoError(t, err)

	sched, err := store.PenaltySchedule(2024)
	require.NoError(t, err)
	require.Len(t, sched.Bands, 2)
	assert.True(t, sched.AnnualInterestRate.Equal(dec("0.15")))
}

func TestMemoryStoreRejectsBadSnapshots(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{
			name:   "no tax year",
			mutate: func(s *Snapshot) { s.TaxYear = 0 },
		},
		{
			name:   "no version",
			mutate: func(s *Snapshot) { s.Version = "" },
		},
		{
			name: "duplicate entry",
			mutate: func(s *Snapshot) {
				s.Entries = append(s.Entries, domain.RateEntry{
					TaxType: domain.TaxTypeGST, Category: domain.CategoryLarge, FlatRate: dec("0.20"),
				})
			},
		},
		{
			name: "bracket gap",
			mutate: func(s *Snapshot) {
				s.Entries[1].Brackets[1].Lower = dec("700000")
			},
		},
		{
			name: "bounded terminal bracket",
			mutate: func(s *Snapshot) {
				s.Entries[1].Brackets[1].Upper = decPtr("900000")
			},
		},
		{
			name: "first bracket not at zero",
			mutate: func(s *Snapshot) {
				s.Entries[1].Brackets[0].Lower = dec("100")
			},
		},
		{
			name: "penalty bands not starting at day 1",
			mutate: func(s *Snapshot) {
				s.Penalties.Bands[0].FromDay = 2
			},
		},
		{
			name: "terminal penalty band not open-ended",
			mutate: func(s *Snapshot) {
				s.Penalties.Bands[1].ToDay = 90
			},
		},
		{
			name: "negative rate",
			mutate: func(s *Snapshot) {
				s.Entries[0].FlatRate = dec("-0.1")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := validSnapshot()
			tt.mutate(snap)
			_, err := NewMemoryStore(snap)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}
}

func TestMemoryStoreRejectsDuplicateYears(t *testing.T) {
	_, err := NewMemoryStore(validSnapshot(), validSnapshot())
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestMemoryStoreMultipleYears(t *testing.T) {
	first := validSnapshot()
	second := validSnapshot()
	second.TaxYear = 2025
	second.Version = "FA2025"

	store, err := NewMemoryStore(first, second)
	require.NoError(t, err)

	e24, err := store.Lookup(domain.TaxTypeGST, 2024, domain.CategoryLarge)
	require.NoError(t, err)
	e25, err := store.Lookup(domain.TaxTypeGST, 2025, domain.CategoryLarge)
	require.NoError(t, err)
	assert.Equal(t, "FA2024", e24.Version)
	assert.Equal(t, "FA2025", e25.Version)
}
