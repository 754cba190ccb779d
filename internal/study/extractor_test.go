package study

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const validMetricsJSON = `{
  "summary": {"mean_mrr": 0.52, "mean_top_1_acc": 0.4, "mean_top_3_acc": 0.8},
  "trials": {"reciprocal_rank": [1.0, 0.25, 0.5], "top_1_hit": [1, 0, 0], "top_3_hit": [1, 1, 0]}
}`

const validConfigINI = `[Study]
mapping_strategy = correct
group_size = 4
num_trials = 3

[LLM]
model_name = gpt-4
`

func writeReplication(t *testing.T, root, experiment, rep, metrics, config string) {
	t.Helper()
	dir := filepath.Join(root, experiment, rep)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if metrics != "" {
		if err := os.WriteFile(filepath.Join(dir, MetricsArtifactName), []byte(metrics), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if config != "" {
		if err := os.WriteFile(filepath.Join(dir, ArchivedConfigName), []byte(config), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExtract_OrderAndIndexing(t *testing.T) {
	root := t.TempDir()
	// Written out of lexical order on purpose; extraction sorts.
	writeReplication(t, root, "exp_b", "rep_2", validMetricsJSON, validConfigINI)
	writeReplication(t, root, "exp_b", "rep_1", validMetricsJSON, validConfigINI)
	writeReplication(t, root, "exp_a", "rep_1", validMetricsJSON, validConfigINI)

	rows, err := NewExtractor(DefaultDesign()).Extract(context.Background(), root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	type key struct {
		Exp string
		Rep int
	}
	var got []key
	for _, r := range rows {
		got = append(got, key{r.Experiment, r.Replication})
	}
	want := []key{{"exp_a", 1}, {"exp_b", 1}, {"exp_b", 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("row order mismatch:\n%s", diff)
	}

	if rows[0].Strategy != StrategyCorrect || rows[0].GroupSize != 4 {
		t.Errorf("metadata = (%q, %d), want (correct, 4)", rows[0].Strategy, rows[0].GroupSize)
	}
	if rows[0].Model != "gpt-4" {
		t.Errorf("model = %q, want gpt-4", rows[0].Model)
	}
}

func TestExtract_MissingMetricsSkipsReplication(t *testing.T) {
	root := t.TempDir()
	writeReplication(t, root, "exp_a", "rep_1", validMetricsJSON, validConfigINI)
	writeReplication(t, root, "exp_a", "rep_2", "", validConfigINI) // no metrics artifact
	writeReplication(t, root, "exp_a", "rep_3", validMetricsJSON, validConfigINI)

	rows, err := NewExtractor(DefaultDesign()).Extract(context.Background(), root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (rep_2 has no artifact)", len(rows))
	}
	// Surviving replications are renumbered 1..n.
	if rows[0].Replication != 1 || rows[1].Replication != 2 {
		t.Errorf("replication indices = %d, %d, want 1, 2", rows[0].Replication, rows[1].Replication)
	}
}

func TestExtract_MalformedMetricsDoesNotAbortSiblings(t *testing.T) {
	root := t.TempDir()
	writeReplication(t, root, "exp_a", "rep_1", "{not json", validConfigINI)
	writeReplication(t, root, "exp_a", "rep_2", validMetricsJSON, validConfigINI)

	rows, err := NewExtractor(DefaultDesign()).Extract(context.Background(), root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Replication != 1 {
		t.Errorf("surviving replication index = %d, want 1", rows[0].Replication)
	}
}

func TestExtract_MissingConfigKeepsValues(t *testing.T) {
	root := t.TempDir()
	writeReplication(t, root, "exp_a", "rep_1", validMetricsJSON, "") // no config

	rows, err := NewExtractor(DefaultDesign()).Extract(context.Background(), root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.HasMetadata() {
		t.Errorf("expected unknown metadata, got (%q, %d)", r.Strategy, r.GroupSize)
	}
	if v, ok := r.Value(MetricMeanMRR); !ok || v != 0.52 {
		t.Errorf("mean_mrr = %v/%v, want 0.52 kept despite missing config", v, ok)
	}
}

func TestExtract_InvalidStrategyMarksUnknown(t *testing.T) {
	root := t.TempDir()
	bad := `[Study]
mapping_strategy = shuffled
group_size = 4

[LLM]
model_name = gpt-4
`
	writeReplication(t, root, "exp_a", "rep_1", validMetricsJSON, bad)

	rows, err := NewExtractor(DefaultDesign()).Extract(context.Background(), root)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rows[0].HasMetadata() {
		t.Errorf("strategy outside the design must leave metadata unknown, got %q", rows[0].Strategy)
	}
}

func TestExtract_EmptyRootFails(t *testing.T) {
	if _, err := NewExtractor(DefaultDesign()).Extract(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected error for empty study root")
	}
}

func TestChanceLevel(t *testing.T) {
	tests := []struct {
		name   string
		metric string
		k      int
		want   float64
	}{
		{"mrr k4", MetricMeanMRR, 4, 0.25},
		{"top1 k10", MetricMeanTop1Acc, 10, 0.1},
		{"top3 k10", MetricMeanTop3Acc, 10, 0.3},
		{"top3 k2 capped", MetricMeanTop3Acc, 2, 1.0},
		{"zero k", MetricMeanMRR, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChanceLevel(tt.metric, tt.k); got != tt.want {
				t.Errorf("ChanceLevel(%q, %d) = %v, want %v", tt.metric, tt.k, got, tt.want)
			}
		})
	}
}
