package study

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// ArchivedConfig is the typed view of a replication's archived run config
// (INI with [Study] and [LLM] sections). One validated load path; every
// missing or malformed key is reported, not just the first.
type ArchivedConfig struct {
	Strategy  MappingStrategy
	GroupSize int
	Model     string
	NumTrials int // optional
}

// ConfigError aggregates every problem found in one archived config.
type ConfigError struct {
	Path     string
	Problems []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("archived config %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

// LoadArchivedConfig parses and validates the archived config at path against
// the study design. A non-nil error means the metadata is unusable; callers
// keep the replication's metric values and mark metadata unknown.
func LoadArchivedConfig(path string, d Design) (*ArchivedConfig, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Problems: []string{err.Error()}}
	}

	var problems []string
	cfg := &ArchivedConfig{}

	studySec := f.Section("Study")
	switch raw := strings.TrimSpace(studySec.Key("mapping_strategy").String()); {
	case raw == "":
		problems = append(problems, "[Study] mapping_strategy missing")
	case !d.ValidStrategy(MappingStrategy(raw)):
		problems = append(problems, fmt.Sprintf("[Study] mapping_strategy %q not in design %v", raw, d.Strategies))
	default:
		cfg.Strategy = MappingStrategy(raw)
	}

	if raw := strings.TrimSpace(studySec.Key("group_size").String()); raw == "" {
		problems = append(problems, "[Study] group_size missing")
	} else if k, err := studySec.Key("group_size").Int(); err != nil {
		problems = append(problems, fmt.Sprintf("[Study] group_size %q not an integer", raw))
	} else if !d.ValidGroupSize(k) {
		problems = append(problems, fmt.Sprintf("[Study] group_size %d not in design %v", k, d.GroupSizes))
	} else {
		cfg.GroupSize = k
	}

	// num_trials is informational; malformed values are reported but a
	// missing key is fine.
	if raw := strings.TrimSpace(studySec.Key("num_trials").String()); raw != "" {
		if n, err := studySec.Key("num_trials").Int(); err != nil {
			problems = append(problems, fmt.Sprintf("[Study] num_trials %q not an integer", raw))
		} else {
			cfg.NumTrials = n
		}
	}

	llmSec := f.Section("LLM")
	cfg.Model = strings.TrimSpace(llmSec.Key("model_name").String())
	if cfg.Model == "" {
		problems = append(problems, "[LLM] model_name missing")
	}

	if len(problems) > 0 {
		return nil, &ConfigError{Path: path, Problems: problems}
	}
	return cfg, nil
}
