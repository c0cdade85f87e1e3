package ratestore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSnapshotFile reads one rate snapshot from a YAML file. Validation
// happens when the snapshot is folded into a MemoryStore.
func LoadSnapshotFile(filename string) (*Snapshot, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate file %s: %w", filename, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse rate file %s: %w", filename, err)
	}
	return &snap, nil
}

// LoadStoreFromFiles builds a validated MemoryStore from snapshot files,
// one per tax year.
func LoadStoreFromFiles(filenames ...string) (*MemoryStore, error) {
	snaps := make([]*Snapshot, 0, len(filenames))
	for _, fn := range filenames {
		snap, err := LoadSnapshotFile(fn)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return NewMemoryStore(snaps...)
}
