package study

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"prismcheck/internal/logging"
)

// Extractor walks a study root and produces the ordered ReplicationMetric
// list. Pure read: it never writes or mutates artifacts.
type Extractor struct {
	Design Design

	// Workers bounds concurrent per-experiment scans. 0 or 1 means serial.
	Workers int
}

// NewExtractor returns an Extractor over the given study design.
func NewExtractor(d Design) *Extractor {
	return &Extractor{Design: d, Workers: 4}
}

// Extract reads every experiment directory under studyRoot. Replication
// indices are assigned 1..n per experiment in sorted directory-name order,
// which is stable across runs only as long as directory names are unchanged.
// Malformed artifacts are logged and skipped; a missing metrics artifact
// skips the replication with a warning; a missing or malformed archived
// config keeps the metric values with metadata marked unknown.
func (e *Extractor) Extract(ctx context.Context, studyRoot string) ([]ReplicationMetric, error) {
	log := logging.New("extract")

	expDirs, err := sortedSubdirs(studyRoot)
	if err != nil {
		return nil, fmt.Errorf("scan study root %s: %w", studyRoot, err)
	}
	if len(expDirs) == 0 {
		return nil, fmt.Errorf("study root %s contains no experiment directories", studyRoot)
	}

	perExperiment := make([][]ReplicationMetric, len(expDirs))

	g, ctx := errgroup.WithContext(ctx)
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, exp := range expDirs {
		i, exp := i, exp
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := e.extractExperiment(studyRoot, exp)
			if err != nil {
				return err
			}
			perExperiment[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []ReplicationMetric
	for _, rows := range perExperiment {
		all = append(all, rows...)
	}
	log.Info("extraction complete",
		"experiments", len(expDirs), "replications", len(all))
	return all, nil
}

func (e *Extractor) extractExperiment(studyRoot, experiment string) ([]ReplicationMetric, error) {
	log := logging.New("extract")
	expPath := filepath.Join(studyRoot, experiment)

	repDirs, err := sortedSubdirs(expPath)
	if err != nil {
		return nil, fmt.Errorf("scan experiment %s: %w", expPath, err)
	}

	var rows []ReplicationMetric
	for _, rep := range repDirs {
		repPath := filepath.Join(expPath, rep)

		metricsPath := filepath.Join(repPath, MetricsArtifactName)
		if _, err := os.Stat(metricsPath); err != nil {
			log.Warn("replication has no metrics artifact, skipping",
				"experiment", experiment, "dir", rep, "path", metricsPath)
			continue
		}
		values, trials, err := LoadMetricsArtifact(metricsPath)
		if err != nil {
			log.Warn("malformed metrics artifact, skipping",
				"experiment", experiment, "dir", rep, "error", err)
			continue
		}

		row := ReplicationMetric{
			Experiment: experiment,
			Values:     values,
			Trials:     trials,
		}

		cfgPath := filepath.Join(repPath, ArchivedConfigName)
		if _, err := os.Stat(cfgPath); err != nil {
			log.Warn("replication has no archived config, metadata unknown",
				"experiment", experiment, "dir", rep)
		} else if cfg, err := LoadArchivedConfig(cfgPath, e.Design); err != nil {
			log.Warn("archived config unusable, metadata unknown",
				"experiment", experiment, "dir", rep, "error", err)
		} else {
			row.Strategy = cfg.Strategy
			row.GroupSize = cfg.GroupSize
			row.Model = cfg.Model
		}

		rows = append(rows, row)
	}

	// Index after the skip decisions so surviving replications are 1..n.
	for i := range rows {
		rows[i].Replication = i + 1
	}
	return rows, nil
}

// sortedSubdirs lists immediate subdirectory names of dir, sorted. Hidden
// directories are ignored.
func sortedSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && e.Name()[0] != '.' {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
