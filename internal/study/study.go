// Package study models the on-disk artifacts of a ranking study and extracts
// per-replication metrics from them. A study root holds one directory per
// experiment; each experiment holds one directory per replication with a
// metrics artifact and an archived run configuration.
package study

import (
	"fmt"
	"sort"
)

// MappingStrategy is the experimental condition: whether subject-to-description
// pairing was truthful or shuffled.
type MappingStrategy string

const (
	StrategyCorrect MappingStrategy = "correct"
	StrategyRandom  MappingStrategy = "random"

	// StrategyUnknown marks a replication whose archived config was missing
	// or unparseable. Metric values are kept; metadata is never inferred.
	StrategyUnknown MappingStrategy = ""
)

// Summary metric vocabulary. The per-replication artifact carries exactly
// these keys; anything else is rejected at parse time.
const (
	MetricMeanMRR     = "mean_mrr"
	MetricMeanTop1Acc = "mean_top_1_acc"
	MetricMeanTop3Acc = "mean_top_3_acc"
	MetricMRRPValue   = "mrr_p_value"
	MetricTop1PValue  = "top_1_p_value"
	MetricTop3PValue  = "top_3_p_value"
	MetricMRRLift     = "mrr_lift"
	MetricTop1Lift    = "top_1_lift"
	MetricTop3Lift    = "top_3_lift"
	MetricBiasSlope   = "bias_slope"
	MetricBiasRValue  = "bias_r_value"
	MetricBiasPValue  = "bias_p_value"
)

// Per-trial series vocabulary.
const (
	SeriesReciprocalRank = "reciprocal_rank"
	SeriesTop1Hit        = "top_1_hit"
	SeriesTop3Hit        = "top_3_hit"
)

// KnownMetrics is the closed set of summary metric keys.
var KnownMetrics = []string{
	MetricMeanMRR, MetricMeanTop1Acc, MetricMeanTop3Acc,
	MetricMRRPValue, MetricTop1PValue, MetricTop3PValue,
	MetricMRRLift, MetricTop1Lift, MetricTop3Lift,
	MetricBiasSlope, MetricBiasRValue, MetricBiasPValue,
}

// KnownSeries is the closed set of per-trial series keys.
var KnownSeries = []string{SeriesReciprocalRank, SeriesTop1Hit, SeriesTop3Hit}

// SeriesForMetric maps a summary metric to the per-trial series it summarizes.
// Returns "" when the metric has no trial-level series (p-values, lifts, bias).
func SeriesForMetric(metric string) string {
	switch metric {
	case MetricMeanMRR:
		return SeriesReciprocalRank
	case MetricMeanTop1Acc:
		return SeriesTop1Hit
	case MetricMeanTop3Acc:
		return SeriesTop3Hit
	}
	return ""
}

// ChanceLevel returns the expected metric value under random guessing for
// group size k: 1/k for MRR and Top-1, min(3,k)/k for Top-3.
func ChanceLevel(metric string, k int) float64 {
	if k <= 0 {
		return 0
	}
	switch metric {
	case MetricMeanTop3Acc, SeriesTop3Hit:
		n := 3
		if k < 3 {
			n = k
		}
		return float64(n) / float64(k)
	default:
		return 1.0 / float64(k)
	}
}

// Design is the finite factor structure of the study: which mapping strategies
// and group sizes are valid. Archived configs outside these sets are treated
// as malformed metadata, not silently admitted.
type Design struct {
	Strategies []MappingStrategy `yaml:"strategies"`
	GroupSizes []int             `yaml:"group_sizes"`
}

// DefaultDesign is the two-strategy, two-K design used by the ranking study.
func DefaultDesign() Design {
	return Design{
		Strategies: []MappingStrategy{StrategyCorrect, StrategyRandom},
		GroupSizes: []int{4, 10},
	}
}

// ValidStrategy reports whether s is one of the configured strategy levels.
func (d Design) ValidStrategy(s MappingStrategy) bool {
	for _, v := range d.Strategies {
		if v == s {
			return true
		}
	}
	return false
}

// ValidGroupSize reports whether k is one of the configured K levels.
func (d Design) ValidGroupSize(k int) bool {
	for _, v := range d.GroupSizes {
		if v == k {
			return true
		}
	}
	return false
}

// ReplicationMetric is one extracted (experiment, replication) row.
// Immutable after extraction.
type ReplicationMetric struct {
	Experiment  string          `json:"experiment"`
	Replication int             `json:"replication"` // 1-based, sequential within experiment
	Strategy    MappingStrategy `json:"mapping_strategy"`
	GroupSize   int             `json:"group_size"` // 0 when the archived config was unusable
	Model       string          `json:"model_name,omitempty"`

	// Values maps summary metric keys (KnownMetrics) to their values.
	Values map[string]float64 `json:"values"`

	// Trials maps series keys (KnownSeries) to per-trial values. Replications
	// may have ragged lengths; shaping pads with blanks, never zeros.
	Trials map[string][]float64 `json:"trials,omitempty"`
}

// Value looks up a summary metric, reporting whether it is present.
func (r *ReplicationMetric) Value(metric string) (float64, bool) {
	v, ok := r.Values[metric]
	return v, ok
}

// TrialCount returns the length of the named series (0 if absent).
func (r *ReplicationMetric) TrialCount(series string) int {
	return len(r.Trials[series])
}

// HasMetadata reports whether the archived config yielded a usable
// strategy and group size.
func (r *ReplicationMetric) HasMetadata() bool {
	return r.Strategy != StrategyUnknown && r.GroupSize > 0
}

// Cell identifies one (strategy, K) cell of the study design.
type Cell struct {
	Strategy  MappingStrategy
	GroupSize int
}

func (c Cell) String() string {
	return fmt.Sprintf("%s/K%d", c.Strategy, c.GroupSize)
}

// GroupByCell buckets rows by (strategy, K), skipping rows without metadata.
// Bucket order follows the design's declared factor order.
func GroupByCell(rows []ReplicationMetric, d Design) ([]Cell, map[Cell][]ReplicationMetric) {
	var cells []Cell
	for _, s := range d.Strategies {
		for _, k := range d.GroupSizes {
			cells = append(cells, Cell{Strategy: s, GroupSize: k})
		}
	}
	byCell := make(map[Cell][]ReplicationMetric)
	for _, r := range rows {
		if !r.HasMetadata() {
			continue
		}
		c := Cell{Strategy: r.Strategy, GroupSize: r.GroupSize}
		byCell[c] = append(byCell[c], r)
	}
	return cells, byCell
}

// Experiments returns the distinct experiment identifiers in row order.
func Experiments(rows []ReplicationMetric) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if !seen[r.Experiment] {
			seen[r.Experiment] = true
			out = append(out, r.Experiment)
		}
	}
	return out
}

// SortedKeys returns the map's keys sorted, for deterministic iteration.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
