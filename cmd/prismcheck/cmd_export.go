package main

import (
	"os"

	"github.com/spf13/cobra"

	"prismcheck/internal/validate"
)

var exportFlags struct {
	study     string
	config    string
	exportDir string
	force     bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Generate Prism import tables from study artifacts",
	Long: `Export extracts per-replication metrics from the study root and writes
the wide, grouped-ANOVA, and XY import tables. The export directory is
regenerated from scratch so stale tables never survive.`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.study, "study", "", "Study root directory (required)")
	f.StringVar(&exportFlags.config, "config", "", "Harness config YAML (default: embedded defaults)")
	f.StringVar(&exportFlags.exportDir, "export-dir", "", "Override the export directory")
	f.BoolVar(&exportFlags.force, "force", false, "Overwrite an existing export directory without asking")
	_ = exportCmd.MarkFlagRequired("study")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(exportFlags.config, func(c *validate.Config) {
		if exportFlags.exportDir != "" {
			c.ExportDir = exportFlags.exportDir
		}
	})
	if err != nil {
		return err
	}
	if err := confirmOverwrite(cfg.ExportDir, exportFlags.force, os.Stdin, cmd.OutOrStdout()); err != nil {
		return err
	}

	_, err = validate.Run(cmd.Context(), validate.Options{
		StudyRoot:  exportFlags.study,
		Config:     cfg,
		ExportOnly: true,
		Out:        cmd.OutOrStdout(),
	})
	return err
}
