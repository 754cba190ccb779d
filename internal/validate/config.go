// Package validate orchestrates the cross-validation protocol: extract
// replication metrics, write Prism import tables, ingest Prism's exported
// results, compare within tolerances, and aggregate the verdict.
package validate

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"prismcheck/internal/compare"
	"prismcheck/internal/study"
)

//go:embed defaults.yaml
var defaultConfigYAML []byte

// Config is the harness configuration: study design, tolerances, paths.
type Config struct {
	Design          study.Design       `yaml:"design"`
	MinReplications int                `yaml:"min_replications"`
	Tolerances      compare.Tolerances `yaml:"tolerances"`
	ExportDir       string             `yaml:"export_dir"`
	ResultsDir      string             `yaml:"results_dir"`
	DBPath          string             `yaml:"db_path"`
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() (Config, error) {
	var c Config
	if err := yaml.Unmarshal(defaultConfigYAML, &c); err != nil {
		return Config{}, fmt.Errorf("parse embedded defaults: %w", err)
	}
	return c, nil
}

// LoadConfig reads a YAML config at path, merged over the embedded defaults.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	c, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Tolerances = c.Tolerances.Merge(compare.DefaultTolerances())
	if len(c.Design.Strategies) == 0 || len(c.Design.GroupSizes) == 0 {
		return Config{}, fmt.Errorf("config %s: design must list strategies and group_sizes", path)
	}
	return c, nil
}
