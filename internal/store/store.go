// Package store persists validation-run history: one row per run with its
// verdict counts, plus every individual comparison. `prismcheck status`
// reads it back.
package store

import (
	"prismcheck/internal/compare"
)

// RunSummary is one persisted validation run.
type RunSummary struct {
	ID        int64
	StudyRoot string
	CreatedAt string // ISO 8601 UTC
	Overall   string
	Passed    int
	Failed    int
	Manual    int
}

// Store is the persistence boundary for validation history.
type Store interface {
	// SaveReport persists one report and returns the run ID.
	SaveReport(report *compare.Report) (int64, error)
	// ListRuns returns runs newest-first, at most limit (0 = all).
	ListRuns(limit int) ([]RunSummary, error)
	// GetComparisons returns the persisted comparisons of one run.
	GetComparisons(runID int64) ([]compare.Comparison, error)
	// Close releases the underlying database.
	Close() error
}
