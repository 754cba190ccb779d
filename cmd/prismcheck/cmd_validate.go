package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prismcheck/internal/compare"
	"prismcheck/internal/format"
	"prismcheck/internal/store"
	"prismcheck/internal/validate"
)

var validateFlags struct {
	study       string
	config      string
	exportDir   string
	resultsDir  string
	exportOnly  bool
	interactive bool
	force       bool
	jsonOut     string
	markdown    bool
	minReps     int
	noHistory   bool
	dbPath      string

	tolMean  float64
	tolP     float64
	tolF     float64
	tolEta   float64
	tolSlope float64
	tolR     float64
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the full cross-validation: export, ingest, compare, report",
	Long: `Validate runs the whole protocol: extract metrics, write Prism import
tables, ingest the Prism result exports, compare every statistic within its
tolerance class, and print the verdict. Exits nonzero on any FAIL or on a
missing prerequisite.`,
	RunE: runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&validateFlags.study, "study", "", "Study root directory (required)")
	f.StringVar(&validateFlags.config, "config", "", "Harness config YAML (default: embedded defaults)")
	f.StringVar(&validateFlags.exportDir, "export-dir", "", "Override the export directory")
	f.StringVar(&validateFlags.resultsDir, "results-dir", "", "Override the Prism results directory")
	f.BoolVar(&validateFlags.exportOnly, "export-only", false, "Generate import tables and stop before comparison")
	f.BoolVar(&validateFlags.interactive, "interactive", false, "Pause for the manual Prism steps with guidance")
	f.BoolVar(&validateFlags.force, "force", false, "Overwrite an existing export directory without asking")
	f.StringVar(&validateFlags.jsonOut, "json", "", "Also write the report as JSON to this path (\"-\" = stdout)")
	f.BoolVar(&validateFlags.markdown, "markdown", false, "Render the report table as Markdown")
	f.IntVar(&validateFlags.minReps, "min-reps", 0, "Override the minimum replication count prerequisite")
	f.BoolVar(&validateFlags.noHistory, "no-history", false, "Do not persist this run to the history store")
	f.StringVar(&validateFlags.dbPath, "db", "", "Override the history database path")
	f.Float64Var(&validateFlags.tolMean, "tol-mean", 0, "Tolerance for means/MRR/accuracy")
	f.Float64Var(&validateFlags.tolP, "tol-p", 0, "Tolerance for p-values")
	f.Float64Var(&validateFlags.tolF, "tol-f", 0, "Tolerance for ANOVA F statistics")
	f.Float64Var(&validateFlags.tolEta, "tol-eta", 0, "Tolerance for eta-squared effect sizes")
	f.Float64Var(&validateFlags.tolSlope, "tol-slope", 0, "Tolerance for regression slopes")
	f.Float64Var(&validateFlags.tolR, "tol-r", 0, "Tolerance for regression R values")
	_ = validateCmd.MarkFlagRequired("study")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(validateFlags.config, func(c *validate.Config) {
		if validateFlags.exportDir != "" {
			c.ExportDir = validateFlags.exportDir
		}
		if validateFlags.resultsDir != "" {
			c.ResultsDir = validateFlags.resultsDir
		}
		if validateFlags.minReps > 0 {
			c.MinReplications = validateFlags.minReps
		}
		if validateFlags.dbPath != "" {
			c.DBPath = validateFlags.dbPath
		}
		applyToleranceFlags(c)
	})
	if err != nil {
		return err
	}
	if err := confirmOverwrite(cfg.ExportDir, validateFlags.force, os.Stdin, cmd.OutOrStdout()); err != nil {
		return err
	}

	var history store.Store
	if !validateFlags.noHistory && !validateFlags.exportOnly {
		s, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer s.Close()
		history = s
	}

	report, err := validate.Run(cmd.Context(), validate.Options{
		StudyRoot:   validateFlags.study,
		Config:      cfg,
		ExportOnly:  validateFlags.exportOnly,
		Interactive: validateFlags.interactive,
		Out:         cmd.OutOrStdout(),
		In:          cmd.InOrStdin(),
		History:     history,
	})
	if err != nil {
		return err
	}
	if report == nil {
		return nil // export-only
	}

	mode := format.ASCII
	if validateFlags.markdown {
		mode = format.Markdown
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Text(mode))

	if validateFlags.jsonOut != "" {
		data, err := report.JSON()
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if validateFlags.jsonOut == "-" {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		} else if err := os.WriteFile(validateFlags.jsonOut, data, 0644); err != nil {
			return fmt.Errorf("write report JSON: %w", err)
		}
	}

	if report.Overall == compare.FAIL {
		return fmt.Errorf("validation FAIL: %d of %d comparisons out of tolerance",
			report.Failed, len(report.Comparisons))
	}
	return nil
}
