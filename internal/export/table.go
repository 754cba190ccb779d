// Package export reshapes extracted replication metrics into the table
// layouts GraphPad Prism imports: wide (descriptive stats / signed-rank),
// grouped (two-way ANOVA), and XY (regression).
package export

import (
	"fmt"
	"strconv"

	"prismcheck/internal/study"
)

// Kind names a table layout.
type Kind string

const (
	WideDescriptive Kind = "wide-descriptive"
	GroupedANOVA    Kind = "grouped-anova"
	XYRegression    Kind = "xy-regression"
)

// Table is one shaped dataset, ready to serialize. Cells are already in
// their final string form: full double precision via FormatFloat 'g'/-1,
// with "" marking a blank cell (never zero, never omitted).
type Table struct {
	Kind    Kind
	Name    string // file stem, e.g. "grouped_anova_mean_mrr"
	Headers []string

	// RowLabels, when non-nil, prepends a label column (grouped layout).
	RowLabels []string
	Rows      [][]string
}

// MissingMetricError reports a table spec referencing a metric or series
// absent from a replication's value map. Shaping fails for that table;
// nothing is silently substituted.
type MissingMetricError struct {
	Metric      string
	Experiment  string
	Replication int
}

func (e *MissingMetricError) Error() string {
	return fmt.Sprintf("metric %q missing from %s replication %d",
		e.Metric, e.Experiment, e.Replication)
}

// Spec describes one table to shape.
type Spec struct {
	Kind   Kind
	Name   string
	Metric string // summary metric key; wide/XY use its per-trial series

	// Optional filters.
	Strategy  *study.MappingStrategy
	GroupSize *int
}

func (s Spec) matches(r *study.ReplicationMetric) bool {
	if s.Strategy != nil && r.Strategy != *s.Strategy {
		return false
	}
	if s.GroupSize != nil && r.GroupSize != *s.GroupSize {
		return false
	}
	return true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
