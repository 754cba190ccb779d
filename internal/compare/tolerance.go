// Package compare holds the tolerance comparator and the report aggregator:
// framework-computed statistics against Prism-computed ones, verdict per
// statistic, rolled up into one validation report.
package compare

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"prismcheck/internal/ingest"
)

// Tolerances is the absolute-tolerance table per statistic class. Values are
// configurable via YAML and CLI flags; zero-valued fields fall back to the
// defaults.
type Tolerances struct {
	// Mean covers means, MRR and accuracy values.
	Mean float64 `yaml:"mean"`
	// PValue covers p-values and other statistical-test outputs.
	PValue float64 `yaml:"p_value"`
	// FStatistic covers ANOVA F statistics.
	FStatistic float64 `yaml:"f_statistic"`
	// EtaSquared covers ANOVA effect sizes.
	EtaSquared float64 `yaml:"eta_squared"`
	// Slope covers regression slopes.
	Slope float64 `yaml:"slope"`
	// RValue is looser: Prism reports R², so the framework derives
	// |R| = sqrt(R²) with sign and some precision lost.
	RValue float64 `yaml:"r_value"`
}

// DefaultTolerances returns the standard tolerance table.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Mean:       1e-4,
		PValue:     1e-3,
		FStatistic: 1e-2,
		EtaSquared: 1e-2,
		Slope:      1e-4,
		RValue:     1e-2,
	}
}

// Merge fills zero-valued fields of t from def.
func (t Tolerances) Merge(def Tolerances) Tolerances {
	if t.Mean == 0 {
		t.Mean = def.Mean
	}
	if t.PValue == 0 {
		t.PValue = def.PValue
	}
	if t.FStatistic == 0 {
		t.FStatistic = def.FStatistic
	}
	if t.EtaSquared == 0 {
		t.EtaSquared = def.EtaSquared
	}
	if t.Slope == 0 {
		t.Slope = def.Slope
	}
	if t.RValue == 0 {
		t.RValue = def.RValue
	}
	return t
}

// For returns the tolerance for one statistic kind.
func (t Tolerances) For(kind ingest.StatKind) (float64, error) {
	switch kind {
	case ingest.KindMean:
		return t.Mean, nil
	case ingest.KindPValue:
		return t.PValue, nil
	case ingest.KindFStatistic:
		return t.FStatistic, nil
	case ingest.KindEtaSquared:
		return t.EtaSquared, nil
	case ingest.KindSlope:
		return t.Slope, nil
	case ingest.KindRValue:
		return t.RValue, nil
	default:
		return 0, fmt.Errorf("no tolerance class for statistic kind %q", kind)
	}
}

// ParseTolerances loads a YAML tolerance table, merging defaults into
// unset fields.
func ParseTolerances(data []byte) (Tolerances, error) {
	var t Tolerances
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tolerances{}, fmt.Errorf("parse tolerances: %w", err)
	}
	return t.Merge(DefaultTolerances()), nil
}
