package export

import (
	"fmt"
	"strings"

	"prismcheck/internal/logging"
	"prismcheck/internal/study"
)

// Shaper turns ReplicationMetric lists into Tables for one study design.
type Shaper struct {
	Design study.Design
}

// NewShaper returns a Shaper for the given design.
func NewShaper(d study.Design) *Shaper {
	return &Shaper{Design: d}
}

// Shape builds the table described by spec from rows. Shaping is
// deterministic: the same rows and spec always yield an identical table.
func (s *Shaper) Shape(rows []study.ReplicationMetric, spec Spec) (*Table, error) {
	switch spec.Kind {
	case WideDescriptive:
		return s.shapeWide(rows, spec)
	case GroupedANOVA:
		return s.shapeGrouped(rows, spec)
	case XYRegression:
		return s.shapeXY(rows, spec)
	default:
		return nil, fmt.Errorf("unknown table kind %q", spec.Kind)
	}
}

// shapeWide emits one column per replication and one row per trial index,
// 1..max trials across the selected replications. Replications shorter than
// a row's trial index contribute a blank cell, modeling ragged lengths.
func (s *Shaper) shapeWide(rows []study.ReplicationMetric, spec Spec) (*Table, error) {
	series := study.SeriesForMetric(spec.Metric)
	if series == "" {
		return nil, fmt.Errorf("metric %q has no per-trial series for %s shaping", spec.Metric, WideDescriptive)
	}

	var selected []study.ReplicationMetric
	for _, r := range rows {
		if spec.matches(&r) {
			selected = append(selected, r)
		}
	}

	maxTrials := 0
	for i := range selected {
		n := selected[i].TrialCount(series)
		if n == 0 {
			return nil, &MissingMetricError{Metric: series, Experiment: selected[i].Experiment, Replication: selected[i].Replication}
		}
		if n > maxTrials {
			maxTrials = n
		}
	}

	t := &Table{Kind: WideDescriptive, Name: spec.Name}
	for _, r := range selected {
		t.Headers = append(t.Headers, fmt.Sprintf("%s_rep%d", r.Experiment, r.Replication))
	}
	for trial := 0; trial < maxTrials; trial++ {
		row := make([]string, len(selected))
		for i := range selected {
			vals := selected[i].Trials[series]
			if trial < len(vals) {
				row[i] = formatFloat(vals[trial])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// shapeGrouped emits the two-way ANOVA layout: one row per mapping strategy,
// K_levels × replicatesPerCell columns, where replicatesPerCell is the
// maximum observed cell population. Shorter cells pad with blanks so column
// alignment survives Prism import.
func (s *Shaper) shapeGrouped(rows []study.ReplicationMetric, spec Spec) (*Table, error) {
	log := logging.New("export")

	for i := range rows {
		if !rows[i].HasMetadata() {
			log.Warn("replication without metadata excluded from grouped table",
				"experiment", rows[i].Experiment, "replication", rows[i].Replication)
		}
	}
	_, byCell := study.GroupByCell(rows, s.Design)

	replicatesPerCell := 0
	for _, cell := range byCell {
		if len(cell) > replicatesPerCell {
			replicatesPerCell = len(cell)
		}
	}

	t := &Table{Kind: GroupedANOVA, Name: spec.Name}
	for _, k := range s.Design.GroupSizes {
		for i := 0; i < replicatesPerCell; i++ {
			t.Headers = append(t.Headers, fmt.Sprintf("K%d", k))
		}
	}

	for _, strat := range s.Design.Strategies {
		row := make([]string, 0, len(t.Headers))
		for _, k := range s.Design.GroupSizes {
			cell := byCell[study.Cell{Strategy: strat, GroupSize: k}]
			for i := 0; i < replicatesPerCell; i++ {
				if i >= len(cell) {
					row = append(row, "")
					continue
				}
				v, ok := cell[i].Value(spec.Metric)
				if !ok {
					return nil, &MissingMetricError{Metric: spec.Metric, Experiment: cell[i].Experiment, Replication: cell[i].Replication}
				}
				row = append(row, formatFloat(v))
			}
		}
		t.RowLabels = append(t.RowLabels, titleCase(string(strat)))
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// shapeXY emits (TrialSeq, value) pairs. TrialSeq increases monotonically in
// extraction order across all selected replications; it is not reset per
// replication, so sequence-position bias is visible across the whole study.
func (s *Shaper) shapeXY(rows []study.ReplicationMetric, spec Spec) (*Table, error) {
	series := study.SeriesForMetric(spec.Metric)
	if series == "" {
		return nil, fmt.Errorf("metric %q has no per-trial series for %s shaping", spec.Metric, XYRegression)
	}

	t := &Table{
		Kind:    XYRegression,
		Name:    spec.Name,
		Headers: []string{"TrialSeq", spec.Metric},
	}
	seq := 0
	for i := range rows {
		if !spec.matches(&rows[i]) {
			continue
		}
		vals := rows[i].Trials[series]
		if len(vals) == 0 {
			return nil, &MissingMetricError{Metric: series, Experiment: rows[i].Experiment, Replication: rows[i].Replication}
		}
		for _, v := range vals {
			seq++
			t.Rows = append(t.Rows, []string{fmt.Sprintf("%d", seq), formatFloat(v)})
		}
	}
	return t, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
