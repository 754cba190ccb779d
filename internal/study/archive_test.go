package study

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ArchivedConfigName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadArchivedConfig_Valid(t *testing.T) {
	path := writeConfig(t, `[Study]
mapping_strategy = random
group_size = 10
num_trials = 40

[LLM]
model_name = claude-3
`)
	cfg, err := LoadArchivedConfig(path, DefaultDesign())
	if err != nil {
		t.Fatalf("LoadArchivedConfig: %v", err)
	}
	if cfg.Strategy != StrategyRandom || cfg.GroupSize != 10 || cfg.Model != "claude-3" || cfg.NumTrials != 40 {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoadArchivedConfig_ReportsEveryProblem(t *testing.T) {
	// Three independent problems; all must be listed, not just the first.
	path := writeConfig(t, `[Study]
group_size = lots

[LLM]
`)
	_, err := LoadArchivedConfig(path, DefaultDesign())
	if err == nil {
		t.Fatal("expected error")
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if len(cerr.Problems) != 3 {
		t.Fatalf("got %d problems, want 3: %v", len(cerr.Problems), cerr.Problems)
	}
	msg := err.Error()
	for _, want := range []string{"mapping_strategy missing", "not an integer", "model_name missing"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestLoadArchivedConfig_GroupSizeOutsideDesign(t *testing.T) {
	path := writeConfig(t, `[Study]
mapping_strategy = correct
group_size = 7

[LLM]
model_name = gpt-4
`)
	_, err := LoadArchivedConfig(path, DefaultDesign())
	if err == nil || !strings.Contains(err.Error(), "not in design") {
		t.Fatalf("expected design violation error, got %v", err)
	}
}
