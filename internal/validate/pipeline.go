package validate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"prismcheck/internal/analysis"
	"prismcheck/internal/compare"
	"prismcheck/internal/display"
	"prismcheck/internal/export"
	"prismcheck/internal/ingest"
	"prismcheck/internal/logging"
	"prismcheck/internal/store"
	"prismcheck/internal/study"
)

// MissingPrerequisiteError is a hard stop: a required upstream artifact or
// minimum replication count is absent. Never silently degraded.
type MissingPrerequisiteError struct {
	Reason string
}

func (e *MissingPrerequisiteError) Error() string {
	return "missing prerequisite: " + e.Reason
}

// Options configures one validation run.
type Options struct {
	StudyRoot string
	Config    Config

	// ExportOnly stops after writing the Prism import tables.
	ExportOnly bool
	// Interactive pauses between export and ingestion with guidance for the
	// manual Prism steps.
	Interactive bool

	Out io.Writer // guidance and progress; defaults to os.Stdout
	In  io.Reader // interactive confirmation; defaults to os.Stdin

	// History, when non-nil, receives the finished report.
	History store.Store
}

var headlineMetrics = []string{study.MetricMeanMRR, study.MetricMeanTop1Acc, study.MetricMeanTop3Acc}

// Run executes the cross-validation protocol. The returned report is nil in
// export-only mode. The automation boundary is explicit: everything up to
// file export is automated, the Prism analyses are a human step, and
// automation resumes at result-file ingestion.
func Run(ctx context.Context, opts Options) (*compare.Report, error) {
	log := logging.New("validate")
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	extractor := study.NewExtractor(opts.Config.Design)
	rows, err := extractor.Extract(ctx, opts.StudyRoot)
	if err != nil {
		return nil, err
	}
	if len(rows) < opts.Config.MinReplications {
		return nil, &MissingPrerequisiteError{Reason: fmt.Sprintf(
			"study %s has %d usable replications, need at least %d",
			opts.StudyRoot, len(rows), opts.Config.MinReplications)}
	}

	crossCheckAggregate(opts.StudyRoot, rows, opts.Config)

	shaper := export.NewShaper(opts.Config.Design)
	specs := export.DefaultPlan(opts.Config.Design)
	written, exportErrs := export.WriteAll(opts.Config.ExportDir, rows, shaper, specs)
	for _, e := range exportErrs {
		fmt.Fprintf(out, "WARN export: %v\n", e)
	}
	fmt.Fprintf(out, "wrote %d Prism import tables to %s\n", len(written), opts.Config.ExportDir)

	if opts.ExportOnly {
		return nil, nil
	}

	if opts.Interactive {
		printGuidance(out, opts.Config, written)
		fmt.Fprint(out, "\nPress Enter when the Prism result exports are in place... ")
		_ = waitForEnter(opts.In)
	}

	comparisons := buildComparisons(rows, opts.Config)
	report := compare.Aggregate(opts.StudyRoot, comparisons)

	if opts.History != nil {
		runID, err := opts.History.SaveReport(report)
		if err != nil {
			log.Warn("could not persist validation run", "error", err)
		} else {
			log.Info("validation run persisted", "run_id", runID)
		}
	}
	return report, nil
}

// buildComparisons walks the comparison plan: per-K descriptive stats and
// signed-rank tests, per-metric two-way ANOVA effects, and per-condition
// bias regressions.
func buildComparisons(rows []study.ReplicationMetric, cfg Config) []compare.Comparison {
	log := logging.New("validate")
	var comparisons []compare.Comparison

	for _, metric := range headlineMetrics {
		// Wide tables: Prism's descriptive mean and the one-sample
		// Wilcoxon signed-rank p-value against chance, per K level.
		for _, k := range cfg.Design.GroupSizes {
			stem := fmt.Sprintf("wide_%s_k%d", metric, k)
			fwVals := summaryValuesForK(rows, metric, k)

			recs := ingestResults(cfg.ResultsDir, stem, []ingest.StatKind{ingest.KindMean, ingest.KindPValue})

			label := stem + " mean"
			if rec, ok := recs[ingest.KindMean]; ok {
				comparisons = append(comparisons, compare.CompareAggregate(label, rec, fwVals, cfg.Tolerances))
			} else {
				comparisons = append(comparisons, compare.Manual(label, ingest.KindMean,
					analysis.Mean(fwVals), manualReason(cfg.ResultsDir, stem, "Mean")))
			}

			label = stem + " signed-rank p"
			wil, err := analysis.WilcoxonSignedRank(fwVals, study.ChanceLevel(metric, k))
			switch rec, ok := recs[ingest.KindPValue]; {
			case err != nil:
				log.Warn("signed-rank test not computable", "table", stem, "error", err)
				comparisons = append(comparisons, compare.Comparison{
					Label: label, Kind: ingest.KindPValue, Verdict: compare.FAIL,
					Note: "framework signed-rank not computable: " + err.Error(),
				})
			case ok:
				comparisons = append(comparisons, compare.CompareRecord(label, rec, wil.P, cfg.Tolerances))
			default:
				comparisons = append(comparisons, compare.Manual(label, ingest.KindPValue,
					wil.P, manualReason(cfg.ResultsDir, stem, "P value")))
			}
		}

		// Grouped tables: one result file per ANOVA effect.
		comparisons = append(comparisons, anovaComparisons(rows, metric, cfg)...)

		// XY tables: bias regression overall and per strategy.
		comparisons = append(comparisons, regressionComparisons(rows, metric, nil, cfg)...)
		for i := range cfg.Design.Strategies {
			comparisons = append(comparisons, regressionComparisons(rows, metric, &cfg.Design.Strategies[i], cfg)...)
		}
	}
	return comparisons
}

func anovaComparisons(rows []study.ReplicationMetric, metric string, cfg Config) []compare.Comparison {
	log := logging.New("validate")

	grid, err := cellGrid(rows, metric, cfg.Design)
	var result analysis.TwoWayResult
	if err == nil {
		result, err = analysis.TwoWayANOVA(grid)
	}
	if err != nil {
		// A framework-side gap is fatal to this metric's ANOVA comparisons
		// only; it must not be misreported as MANUAL.
		log.Warn("two-way ANOVA not computable, comparisons skipped", "metric", metric, "error", err)
		return nil
	}

	effects := []struct {
		name   string
		effect analysis.Effect
	}{
		{"interaction", result.Interaction},
		{"row_factor", result.Row},
		{"column_factor", result.Col},
	}

	var comparisons []compare.Comparison
	kinds := []ingest.StatKind{ingest.KindFStatistic, ingest.KindPValue, ingest.KindEtaSquared}
	for _, e := range effects {
		stem := fmt.Sprintf("grouped_anova_%s_%s", metric, e.name)
		recs := ingestResults(cfg.ResultsDir, stem, kinds)

		fw := map[ingest.StatKind]float64{
			ingest.KindFStatistic: e.effect.F,
			ingest.KindPValue:     e.effect.P,
			ingest.KindEtaSquared: e.effect.PartialEtaSq,
		}
		for _, kind := range kinds {
			label := fmt.Sprintf("%s %s", stem, kind)
			if rec, ok := recs[kind]; ok {
				comparisons = append(comparisons, compare.CompareRecord(label, rec, fw[kind], cfg.Tolerances))
			} else {
				comparisons = append(comparisons, compare.Manual(label, kind, fw[kind],
					manualReason(cfg.ResultsDir, stem, string(kind))))
			}
		}
	}
	return comparisons
}

func regressionComparisons(rows []study.ReplicationMetric, metric string, strategy *study.MappingStrategy, cfg Config) []compare.Comparison {
	log := logging.New("validate")

	cond := "all"
	if strategy != nil {
		cond = string(*strategy)
	}
	stem := fmt.Sprintf("xy_%s_%s", metric, cond)

	x, y := xySeries(rows, metric, strategy)
	fit, err := analysis.LinearBias(x, y)
	if err != nil {
		log.Warn("bias regression not computable, comparisons skipped",
			"table", stem, "error", err)
		return nil
	}

	kinds := []ingest.StatKind{ingest.KindSlope, ingest.KindRValue, ingest.KindPValue}
	recs := ingestResults(cfg.ResultsDir, stem, kinds)

	// Prism reports R² only; the derived external R is magnitude-only, so
	// the framework side is compared as |R|.
	fw := map[ingest.StatKind]float64{
		ingest.KindSlope:  fit.Slope,
		ingest.KindRValue: math.Abs(fit.R),
		ingest.KindPValue: fit.P,
	}

	var comparisons []compare.Comparison
	for _, kind := range kinds {
		label := fmt.Sprintf("%s %s", stem, kind)
		if rec, ok := recs[kind]; ok {
			comparisons = append(comparisons, compare.CompareRecord(label, rec, fw[kind], cfg.Tolerances))
		} else {
			comparisons = append(comparisons, compare.Manual(label, kind, fw[kind],
				manualReason(cfg.ResultsDir, stem, string(kind))))
		}
	}
	return comparisons
}

// ingestResults finds <stem>_results.csv or .xlsx under dir and returns the
// extracted records keyed by kind. Missing file or unmatched labels simply
// leave kinds absent; callers surface those as MANUAL.
func ingestResults(dir, stem string, kinds []ingest.StatKind) map[ingest.StatKind]ingest.Record {
	log := logging.New("validate")
	out := make(map[ingest.StatKind]ingest.Record)

	path := findResultFile(dir, stem)
	if path == "" {
		return out
	}
	recs, err := ingest.IngestFile(path, stem, kinds)
	if err != nil {
		log.Warn("result file unreadable", "path", path, "error", err)
		return out
	}
	for _, r := range recs {
		out[r.Kind] = r
	}
	return out
}

func findResultFile(dir, stem string) string {
	for _, ext := range []string{".csv", ".xlsx"} {
		p := filepath.Join(dir, stem+"_results"+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func manualReason(dir, stem, want string) string {
	if findResultFile(dir, stem) == "" {
		return fmt.Sprintf("result file %s_results.csv (or .xlsx) not found in %s", stem, dir)
	}
	return fmt.Sprintf("no recognized %q row in %s", want, findResultFile(dir, stem))
}

// AggregateResultsName is the optional study-level roll-up written by the
// upstream pipeline, one row per experiment.
const AggregateResultsName = "aggregate_results.csv"

// crossCheckAggregate compares the study-level aggregate table, when present,
// against the means of the extracted per-replication values. Drift means the
// input artifacts disagree with each other; it is reported loudly but does
// not stop the run, since the comparison protocol runs on the replication
// artifacts, not the roll-up.
func crossCheckAggregate(studyRoot string, rows []study.ReplicationMetric, cfg Config) {
	log := logging.New("validate")

	path := filepath.Join(studyRoot, AggregateResultsName)
	if _, err := os.Stat(path); err != nil {
		return
	}
	agg, err := study.LoadAggregateResults(path)
	if err != nil {
		log.Warn("aggregate results unreadable, cross-check skipped", "path", path, "error", err)
		return
	}

	byExp := make(map[string][]study.ReplicationMetric)
	for _, r := range rows {
		byExp[r.Experiment] = append(byExp[r.Experiment], r)
	}
	checks := map[string]func(study.AggregateRow) float64{
		study.MetricMeanMRR:     func(a study.AggregateRow) float64 { return a.MeanMRR },
		study.MetricMeanTop1Acc: func(a study.AggregateRow) float64 { return a.MeanTop1 },
		study.MetricMeanTop3Acc: func(a study.AggregateRow) float64 { return a.MeanTop3 },
	}
	for _, a := range agg {
		reps, ok := byExp[a.Experiment]
		if !ok {
			log.Warn("aggregate row has no extracted replications", "experiment", a.Experiment)
			continue
		}
		for metric, pick := range checks {
			var vals []float64
			for i := range reps {
				if v, ok := reps[i].Value(metric); ok {
					vals = append(vals, v)
				}
			}
			if len(vals) == 0 {
				continue
			}
			got := analysis.Mean(vals)
			if math.Abs(got-pick(a)) > cfg.Tolerances.Mean {
				log.Warn("aggregate results disagree with replication artifacts",
					"experiment", a.Experiment, "metric", metric,
					"aggregate", pick(a), "replication_mean", got)
			}
		}
	}
}

// summaryValuesForK collects the per-replication summary values of metric
// for one K level, in extraction order.
func summaryValuesForK(rows []study.ReplicationMetric, metric string, k int) []float64 {
	var vals []float64
	for i := range rows {
		if rows[i].GroupSize != k {
			continue
		}
		if v, ok := rows[i].Value(metric); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// cellGrid builds the strategy × K observation grid for the two-way ANOVA.
func cellGrid(rows []study.ReplicationMetric, metric string, d study.Design) ([][][]float64, error) {
	_, byCell := study.GroupByCell(rows, d)
	grid := make([][][]float64, len(d.Strategies))
	for i, strat := range d.Strategies {
		grid[i] = make([][]float64, len(d.GroupSizes))
		for j, k := range d.GroupSizes {
			for _, r := range byCell[study.Cell{Strategy: strat, GroupSize: k}] {
				v, ok := r.Value(metric)
				if !ok {
					return nil, fmt.Errorf("metric %q missing from %s replication %d", metric, r.Experiment, r.Replication)
				}
				grid[i][j] = append(grid[i][j], v)
			}
		}
	}
	return grid, nil
}

// xySeries rebuilds the XY regression series exactly as the shaper exports
// it: TrialSeq increasing across all selected replications in extraction
// order, never reset per replication.
func xySeries(rows []study.ReplicationMetric, metric string, strategy *study.MappingStrategy) (x, y []float64) {
	series := study.SeriesForMetric(metric)
	seq := 0
	for i := range rows {
		if strategy != nil && rows[i].Strategy != *strategy {
			continue
		}
		for _, v := range rows[i].Trials[series] {
			seq++
			x = append(x, float64(seq))
			y = append(y, v)
		}
	}
	return x, y
}

func printGuidance(out io.Writer, cfg Config, written []string) {
	fmt.Fprintln(out, "\n--- Manual Prism steps ---")
	fmt.Fprintln(out, "1. Import each table below into GraphPad Prism (File > Import):")
	for _, p := range written {
		fmt.Fprintf(out, "     %s\n", p)
	}
	fmt.Fprintln(out, "2. Run the matching analysis per table kind:")
	fmt.Fprintf(out, "     wide_*          %s\n", display.TableKind(string(export.WideDescriptive)))
	fmt.Fprintf(out, "     grouped_anova_* %s, export one file per effect\n", display.TableKind(string(export.GroupedANOVA)))
	fmt.Fprintf(out, "     xy_*            %s\n", display.TableKind(string(export.XYRegression)))
	fmt.Fprintf(out, "3. Export every result sheet as CSV or XLSX into %s,\n", cfg.ResultsDir)
	fmt.Fprintln(out, "   named <table>_results.csv (e.g. wide_mean_mrr_k4_results.csv).")
}

func waitForEnter(in io.Reader) error {
	if in == nil {
		in = os.Stdin
	}
	_, err := bufio.NewReader(in).ReadString('\n')
	return err
}
