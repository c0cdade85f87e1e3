package ratestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/taxcore/assessment-engine/internal/domain"
)

// RateRecord is the persisted form of one rate entry. The legislative
// payload is stored as a JSON document so the schema does not change when
// a Finance Act reshapes a rate table.
type RateRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	TaxYear   int       `gorm:"not null;index:idx_rate_key,unique"`
	TaxType   string    `gorm:"size:32;not null;index:idx_rate_key,unique"`
	Category  string    `gorm:"size:32;not null;index:idx_rate_key,unique"`
	Version   string    `gorm:"size:64;not null"`
	Payload   []byte    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
}

// TableName returns the table name for rate records.
func (RateRecord) TableName() string { return "rate_entries" }

// BeforeCreate generates a UUID before inserting a new record.
func (r *RateRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// PenaltyScheduleRecord persists the penalty schedule for one tax year.
type PenaltyScheduleRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	TaxYear   int       `gorm:"not null;uniqueIndex"`
	Payload   []byte    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
}

// TableName returns the table name for penalty schedule records.
func (PenaltyScheduleRecord) TableName() string { return "penalty_schedules" }

// BeforeCreate generates a UUID before inserting a new record.
func (r *PenaltyScheduleRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// OpenPostgres connects to the rate database and runs migrations.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rate database: %w", err)
	}
	if err := db.AutoMigrate(&RateRecord{}, &PenaltyScheduleRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run rate store migrations: %w", err)
	}
	return db, nil
}

// LoadSnapshotFromDB reads all rate entries and the penalty schedule for
// one tax year into an in-memory snapshot. The engine then works off the
// snapshot only; the database is never touched mid-calculation.
func LoadSnapshotFromDB(ctx context.Context, db *gorm.DB, taxYear int) (*Snapshot, error) {
	var records []RateRecord
	if err := db.WithContext(ctx).
		Where("tax_year = ?", taxYear).
		Order("tax_type, category").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load rate entries for %d: %w", taxYear, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no rate entries for %d", domain.ErrRateNotFound, taxYear)
	}

	snap := &Snapshot{TaxYear: taxYear}
	for _, rec := range records {
		entry, err := DecodeRateRecord(&rec)
		if err != nil {
			return nil, err
		}
		snap.Entries = append(snap.Entries, *entry)
		if snap.Version == "" {
			snap.Version = rec.Version
		}
	}

	var sched PenaltyScheduleRecord
	err := db.WithContext(ctx).Where("tax_year = ?", taxYear).First(&sched).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: penalty schedule for %d", domain.ErrRateNotFound, taxYear)
		}
		return nil, fmt.Errorf("failed to load penalty schedule for %d: %w", taxYear, err)
	}
	if err := json.Unmarshal(sched.Payload, &snap.Penalties); err != nil {
		return nil, fmt.Errorf("malformed penalty schedule for %d: %w", taxYear, err)
	}
	return snap, nil
}

// LoadStoreFromDB loads and validates the rule set for one tax year.
func LoadStoreFromDB(ctx context.Context, db *gorm.DB, taxYear int) (*MemoryStore, error) {
	snap, err := LoadSnapshotFromDB(ctx, db, taxYear)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(snap)
}

// DecodeRateRecord converts a persisted record into a domain RateEntry.
// The key columns win over whatever the payload carries, so the unique
// index remains the source of truth.
func DecodeRateRecord(rec *RateRecord) (*domain.RateEntry, error) {
	var entry domain.RateEntry
	if err := json.Unmarshal(rec.Payload, &entry); err != nil {
		return nil, fmt.Errorf("malformed rate payload %s/%d/%s: %w", rec.TaxType, rec.TaxYear, rec.Category, err)
	}
	taxType, err := domain.ParseTaxType(rec.TaxType)
	if err != nil {
		return nil, err
	}
	category, err := domain.ParseCategory(rec.Category)
	if err != nil {
		return nil, err
	}
	entry.TaxType = taxType
	entry.TaxYear = rec.TaxYear
	entry.Category = category
	entry.Version = rec.Version
	return &entry, nil
}

// EncodeRateEntry converts a domain RateEntry into its persisted form,
// used by rate-table loaders and seeding tools.
func EncodeRateEntry(entry *domain.RateEntry) (*RateRecord, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rate entry %s/%d/%s: %w", entry.TaxType, entry.TaxYear, entry.Category, err)
	}
	return &RateRecord{
		TaxYear:  entry.TaxYear,
		TaxType:  string(entry.TaxType),
		Category: string(entry.Category),
		Version:  entry.Version,
		Payload:  payload,
	}, nil
}
