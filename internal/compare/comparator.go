package compare

import (
	"math"

	"prismcheck/internal/ingest"
)

// Verdict classifies one comparison.
type Verdict string

const (
	PASS   Verdict = "PASS"
	FAIL   Verdict = "FAIL"
	MANUAL Verdict = "MANUAL"
)

// Comparison is one compared statistic. Verdict is PASS iff
// |framework − external| ≤ tolerance (boundary inclusive), MANUAL iff the
// external value could not be extracted, FAIL otherwise.
type Comparison struct {
	Label     string          `json:"label"`
	Kind      ingest.StatKind `json:"kind"`
	Framework float64         `json:"framework"`
	External  float64         `json:"external"`
	Diff      float64         `json:"diff"`
	Tolerance float64         `json:"tolerance"`
	Verdict   Verdict         `json:"verdict"`
	Note      string          `json:"note,omitempty"`
}

// boundarySlack absorbs representation error in decimal tolerances: a diff
// that equals the tolerance in exact arithmetic (0.5301 − 0.53 vs 1e-4) must
// land on the PASS side of the ≤ comparison.
const boundarySlack = 1e-12

// Compare produces the verdict for one framework/external value pair.
// Deterministic and total in its inputs.
func Compare(label string, kind ingest.StatKind, framework, external, tolerance float64) Comparison {
	diff := math.Abs(framework - external)
	v := FAIL
	if diff <= tolerance || diff-tolerance <= boundarySlack*math.Max(diff, tolerance) {
		v = PASS
	}
	return Comparison{
		Label:     label,
		Kind:      kind,
		Framework: framework,
		External:  external,
		Diff:      diff,
		Tolerance: tolerance,
		Verdict:   v,
	}
}

// CompareRecord matches one ingested record against the framework value using
// the configured tolerance table.
func CompareRecord(label string, rec ingest.Record, framework float64, tols Tolerances) Comparison {
	tol, err := tols.For(rec.Kind)
	if err != nil {
		return Manual(label, rec.Kind, framework, err.Error())
	}
	c := Compare(label, rec.Kind, framework, rec.Value, tol)
	if rec.Derived {
		c.Note = "external value derived from R² (magnitude only)"
	}
	return c
}

// CompareAggregate reduces several framework replication values to their
// arithmetic mean before comparing against one external aggregate statistic.
// The reduction rule is deliberately explicit here: Prism's aggregate is
// computed over the same replication values the mean summarizes.
func CompareAggregate(label string, rec ingest.Record, frameworkReps []float64, tols Tolerances) Comparison {
	if len(frameworkReps) == 0 {
		// A framework-side gap is a prerequisite failure upstream; it must
		// not masquerade as MANUAL, which is reserved for the external side.
		return Comparison{
			Label:    label,
			Kind:     rec.Kind,
			External: rec.Value,
			Verdict:  FAIL,
			Note:     "no framework replication values to reduce",
		}
	}
	sum := 0.0
	for _, v := range frameworkReps {
		sum += v
	}
	c := CompareRecord(label, rec, sum/float64(len(frameworkReps)), tols)
	if c.Note == "" {
		c.Note = "framework side mean-reduced over replications"
	}
	return c
}

// Manual marks a comparison whose external value could not be extracted.
// MANUAL never forces an overall FAIL, but is always surfaced.
func Manual(label string, kind ingest.StatKind, framework float64, reason string) Comparison {
	return Comparison{
		Label:     label,
		Kind:      kind,
		Framework: framework,
		Verdict:   MANUAL,
		Note:      reason,
	}
}
