package dataprocessing

import (
	"context"
	"time"
)

// Snapshot is the result of running the cleaning pipeline over one version
// of the input file. A Snapshot is shared between requests and must be
// treated as read-only.
type Snapshot struct {
	Path        string
	ModTime     time.Time
	LoadedAt    time.Time
	Raw         *RawTable
	Clean       *Table
	Diagnostics *Diagnostics
}

// Prepare loads path and runs normalization and imputation over it.
func Prepare(ctx context.Context, path string) (*Snapshot, error) {
	raw, err := Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return Clean(raw)
}

// Clean runs normalization and imputation over an already loaded raw table.
func Clean(raw *RawTable) (*Snapshot, error) {
	normalized, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	clean, report, err := Impute(normalized)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		LoadedAt:    time.Now(),
		Raw:         raw,
		Clean:       clean,
		Diagnostics: Diagnose(raw, clean, report),
	}, nil
}
