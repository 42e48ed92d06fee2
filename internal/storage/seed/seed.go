// Package seed loads initial records from a YAML file into a store.
//
// File format, a plain list:
//
//	- name: Alice
//	  age: 29
//	- name: Bob
//	  age: 34
package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aanand-mishra/records-api/internal/storage"
	"github.com/aanand-mishra/records-api/internal/types"
)

// Load reads and decodes a seed file. Every entry is validated up front
// so a bad file is rejected before anything touches the store.
func Load(path string) ([]types.NewRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed.Load: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes seed YAML from memory.
func Parse(data []byte) ([]types.NewRecord, error) {
	var records []types.NewRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("seed.Parse: decode: %w", err)
	}

	for i, r := range records {
		if err := storage.ValidateName(r.Name); err != nil {
			return nil, fmt.Errorf("seed.Parse: entry %d: %w", i, err)
		}
		if err := storage.ValidateAge(r.Age); err != nil {
			return nil, fmt.Errorf("seed.Parse: entry %d: %w", i, err)
		}
	}
	return records, nil
}

// Apply inserts records into an empty store and reports how many were
// created. A store that already holds data is left alone (returns 0), so
// restarting against a persistent backend does not duplicate the seed.
func Apply(ctx context.Context, store storage.Storage, records []types.NewRecord) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed.Apply: count: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	for i, r := range records {
		if _, err := store.Create(ctx, r.Name, r.Age); err != nil {
			return i, fmt.Errorf("seed.Apply: create %q: %w", r.Name, err)
		}
	}
	return len(records), nil
}
