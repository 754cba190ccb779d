package study

import (
	"encoding/json"
	"fmt"
	"os"
)

// MetricsArtifactName is the per-replication metrics file written by the
// analysis pipeline.
const MetricsArtifactName = "metrics.json"

// ArchivedConfigName is the per-replication archived run configuration.
const ArchivedConfigName = "config.ini"

// ParseError marks one malformed artifact. Extraction logs it and moves on;
// it never aborts sibling files.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// metricsArtifact mirrors the JSON layout of MetricsArtifactName.
type metricsArtifact struct {
	Summary map[string]float64   `json:"summary"`
	Trials  map[string][]float64 `json:"trials"`
}

// LoadMetricsArtifact reads and validates one per-replication metrics file.
// Keys outside the known vocabulary are a parse failure: the metric-value map
// is a fixed vocabulary, not open-ended.
func LoadMetricsArtifact(path string) (map[string]float64, map[string][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var art metricsArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, nil, &ParseError{Path: path, Err: err}
	}
	if len(art.Summary) == 0 {
		return nil, nil, &ParseError{Path: path, Err: fmt.Errorf("no summary metrics")}
	}
	known := make(map[string]bool, len(KnownMetrics))
	for _, k := range KnownMetrics {
		known[k] = true
	}
	for _, k := range SortedKeys(art.Summary) {
		if !known[k] {
			return nil, nil, &ParseError{Path: path, Err: fmt.Errorf("unknown metric key %q", k)}
		}
	}
	knownSeries := make(map[string]bool, len(KnownSeries))
	for _, k := range KnownSeries {
		knownSeries[k] = true
	}
	for _, k := range SortedKeys(art.Trials) {
		if !knownSeries[k] {
			return nil, nil, &ParseError{Path: path, Err: fmt.Errorf("unknown trial series %q", k)}
		}
	}
	return art.Summary, art.Trials, nil
}
