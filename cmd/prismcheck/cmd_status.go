package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prismcheck/internal/display"
	"prismcheck/internal/format"
	"prismcheck/internal/store"
	"prismcheck/internal/validate"
)

var statusFlags struct {
	config   string
	dbPath   string
	limit    int
	runID    int64
	markdown bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List past validation runs from the history store",
	RunE:  runStatus,
}

func init() {
	f := statusCmd.Flags()
	f.StringVar(&statusFlags.config, "config", "", "Harness config YAML (default: embedded defaults)")
	f.StringVar(&statusFlags.dbPath, "db", "", "Override the history database path")
	f.IntVar(&statusFlags.limit, "limit", 10, "Max runs to list (0 = all)")
	f.Int64Var(&statusFlags.runID, "run", 0, "Show the comparison breakdown of one run")
	f.BoolVar(&statusFlags.markdown, "markdown", false, "Render tables as Markdown")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(statusFlags.config, func(c *validate.Config) {
		if statusFlags.dbPath != "" {
			c.DBPath = statusFlags.dbPath
		}
	})
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer s.Close()

	mode := format.ASCII
	if statusFlags.markdown {
		mode = format.Markdown
	}
	out := cmd.OutOrStdout()

	if statusFlags.runID > 0 {
		comps, err := s.GetComparisons(statusFlags.runID)
		if err != nil {
			return err
		}
		if len(comps) == 0 {
			return fmt.Errorf("run %d not found or has no comparisons", statusFlags.runID)
		}
		t := format.NewTable(mode)
		t.Header("Test", "Kind", "Framework", "Prism", "Diff", "Verdict")
		for _, c := range comps {
			t.Row(c.Label, display.StatKind(string(c.Kind)),
				format.SigFigs(c.Framework, 6), format.SigFigs(c.External, 6),
				format.SigFigs(c.Diff, 3), string(c.Verdict))
		}
		fmt.Fprintln(out, t.String())
		return nil
	}

	runs, err := s.ListRuns(statusFlags.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no validation runs recorded")
		return nil
	}
	t := format.NewTable(mode)
	t.Header("ID", "When", "Study", "Overall", "Pass", "Fail", "Manual")
	for _, r := range runs {
		t.Row(r.ID, r.CreatedAt, format.Truncate(r.StudyRoot, 40), r.Overall, r.Passed, r.Failed, r.Manual)
	}
	fmt.Fprintln(out, t.String())
	return nil
}
