package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"prismcheck/internal/logging"
	"prismcheck/internal/study"
)

// WriteCSV serializes one table to path. Grouped tables get a blank leading
// header cell over the row-label column, matching Prism's grouped import.
func WriteCSV(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := t.Headers
	if t.RowLabels != nil {
		header = append([]string{""}, t.Headers...)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for i, row := range t.Rows {
		out := row
		if t.RowLabels != nil {
			out = append([]string{t.RowLabels[i]}, row...)
		}
		if err := w.Write(out); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// DefaultPlan is the standard export file set for one study design: wide
// tables per headline metric and K level, one grouped ANOVA table per
// headline metric, and XY regression tables per headline metric overall and
// per mapping strategy.
func DefaultPlan(d study.Design) []Spec {
	headline := []string{study.MetricMeanMRR, study.MetricMeanTop1Acc, study.MetricMeanTop3Acc}

	var specs []Spec
	for _, m := range headline {
		for i := range d.GroupSizes {
			k := d.GroupSizes[i]
			specs = append(specs, Spec{
				Kind:      WideDescriptive,
				Name:      fmt.Sprintf("wide_%s_k%d", m, k),
				Metric:    m,
				GroupSize: &k,
			})
		}
		specs = append(specs, Spec{
			Kind:   GroupedANOVA,
			Name:   fmt.Sprintf("grouped_anova_%s", m),
			Metric: m,
		})
		specs = append(specs, Spec{
			Kind:   XYRegression,
			Name:   fmt.Sprintf("xy_%s_all", m),
			Metric: m,
		})
		for i := range d.Strategies {
			strat := d.Strategies[i]
			specs = append(specs, Spec{
				Kind:     XYRegression,
				Name:     fmt.Sprintf("xy_%s_%s", m, strat),
				Metric:   m,
				Strategy: &strat,
			})
		}
	}
	return specs
}

// WriteAll regenerates the export directory from scratch: the previous
// directory is removed first so stale files never survive into a new
// comparison run. A failed spec is fatal to that table only; the error list
// carries one entry per failed table.
func WriteAll(dir string, rows []study.ReplicationMetric, shaper *Shaper, specs []Spec) ([]string, []error) {
	log := logging.New("export")

	if err := os.RemoveAll(dir); err != nil {
		return nil, []error{fmt.Errorf("clear export dir %s: %w", dir, err)}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, []error{fmt.Errorf("create export dir %s: %w", dir, err)}
	}

	var written []string
	var errs []error
	for _, spec := range specs {
		t, err := shaper.Shape(rows, spec)
		if err != nil {
			log.Warn("table skipped", "name", spec.Name, "error", err)
			errs = append(errs, fmt.Errorf("table %s: %w", spec.Name, err))
			continue
		}
		path := filepath.Join(dir, t.Name+".csv")
		if err := WriteCSV(t, path); err != nil {
			errs = append(errs, err)
			continue
		}
		written = append(written, path)
	}
	log.Info("exports written", "dir", dir, "tables", len(written), "failed", len(errs))
	return written, errs
}
