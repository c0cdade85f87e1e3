// Package ratestore provides versioned, effective-dated tax-rate lookup.
// The engine only ever sees the RateTable interface backed by an
// immutable, fully validated snapshot, so no calculation performs I/O or
// can trip over a malformed table mid-computation.
package ratestore

import (
	"fmt"

	"github.com/taxcore/assessment-engine/internal/domain"
)

// RateTable resolves the applicable rule set for a calculation. Lookup
// fails with domain.ErrRateNotFound when no entry exists for the exact
// (tax type, tax year, category); callers must not fall back to another
// year.
type RateTable interface {
	Lookup(taxType domain.TaxType, taxYear int, category domain.TaxpayerCategory) (*domain.RateEntry, error)
	PenaltySchedule(taxYear int) (*domain.PenaltySchedule, error)
}

// Snapshot is one loadable rule set: all rate entries and the penalty
// schedule for a tax year, stamped with a legislative version.
type Snapshot struct {
	Version   string                 `yaml:"version" json:"version"`
	TaxYear   int                    `yaml:"tax_year" json:"tax_year"`
	Entries   []domain.RateEntry     `yaml:"entries" json:"entries"`
	Penalties domain.PenaltySchedule `yaml:"penalties" json:"penalties"`
}

type rateKey struct {
	taxType  domain.TaxType
	taxYear  int
	category domain.TaxpayerCategory
}

// MemoryStore is an immutable in-memory RateTable. Construction validates
// every entry and rejects duplicates; after that the store is read-only
// and safe for concurrent use.
type MemoryStore struct {
	entries   map[rateKey]*domain.RateEntry
	schedules map[int]*domain.PenaltySchedule
}

// NewMemoryStore builds a store from one or more snapshots, enforcing the
// load-time validation contract.
func NewMemoryStore(snapshots ...*Snapshot) (*MemoryStore, error) {
	s := &MemoryStore{
		entries:   make(map[rateKey]*domain.RateEntry),
		schedules: make(map[int]*domain.PenaltySchedule),
	}
	for _, snap := range snapshots {
		if err := s.add(snap); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *MemoryStore) add(snap *Snapshot) error {
	if snap.TaxYear <= 0 {
		return fmt.Errorf("%w: snapshot has no tax year", domain.ErrInvalidRequest)
	}
	if snap.Version == "" {
		return fmt.Errorf("%w: snapshot %d has no version", domain.ErrInvalidRequest, snap.TaxYear)
	}
	for i := range snap.Entries {
		entry := snap.Entries[i]
		// Snapshot-level defaults keep the YAML terse: entries inherit
		// the snapshot's year and version unless they carry their own.
		if entry.TaxYear == 0 {
			entry.TaxYear = snap.TaxYear
		}
		if entry.Version == "" {
			entry.Version = snap.Version
		}
		if err := entry.Validate(); err != nil {
			return err
		}
		key := rateKey{entry.TaxType, entry.TaxYear, entry.Category}
		if _, dup := s.entries[key]; dup {
			return fmt.Errorf("%w: duplicate rate entry %s/%d/%s",
				domain.ErrInvalidRequest, entry.TaxType, entry.TaxYear, entry.Category)
		}
		s.entries[key] = &entry
	}
	if err := snap.Penalties.Validate(); err != nil {
		return fmt.Errorf("snapshot %d penalties: %w", snap.TaxYear, err)
	}
	if _, dup := s.schedules[snap.TaxYear]; dup {
		return fmt.Errorf("%w: duplicate penalty schedule for %d", domain.ErrInvalidRequest, snap.TaxYear)
	}
	sched := snap.Penalties
	s.schedules[snap.TaxYear] = &sched
	return nil
}

// Lookup implements RateTable with exact-key matching only.
func (s *MemoryStore) Lookup(taxType domain.TaxType, taxYear int, category domain.TaxpayerCategory) (*domain.RateEntry, error) {
	entry, ok := s.entries[rateKey{taxType, taxYear, category}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%d/%s", domain.ErrRateNotFound, taxType, taxYear, category)
	}
	return entry, nil
}

// PenaltySchedule implements RateTable.
func (s *MemoryStore) PenaltySchedule(taxYear int) (*domain.PenaltySchedule, error) {
	sched, ok := s.schedules[taxYear]
	if !ok {
		return nil, fmt.Errorf("%w: penalty schedule for %d", domain.ErrRateNotFound, taxYear)
	}
	return sched, nil
}
