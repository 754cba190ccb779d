package study

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadAggregateResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study_results.csv")
	csv := `experiment,mapping_strategy,k,mean_mrr,mean_top_1_acc,mean_top_3_acc
exp_a, correct ,4,0.52,0.4,0.8
exp_b,random,10,0.12,0.09,0.28
`
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}

	rows, err := LoadAggregateResults(path)
	if err != nil {
		t.Fatalf("LoadAggregateResults: %v", err)
	}
	want := []AggregateRow{
		{Experiment: "exp_a", Strategy: StrategyCorrect, GroupSize: 4, MeanMRR: 0.52, MeanTop1: 0.4, MeanTop3: 0.8},
		{Experiment: "exp_b", Strategy: StrategyRandom, GroupSize: 10, MeanMRR: 0.12, MeanTop1: 0.09, MeanTop3: 0.28},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch:\n%s", diff)
	}
}

func TestLoadAggregateResults_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study_results.csv")
	if err := os.WriteFile(path, []byte("experiment,k\nexp_a,4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAggregateResults(path); err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestLoadAggregateResults_BadNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study_results.csv")
	csv := `experiment,mapping_strategy,k,mean_mrr,mean_top_1_acc,mean_top_3_acc
exp_a,correct,four,0.52,0.4,0.8
`
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAggregateResults(path); err == nil {
		t.Fatal("expected error for non-numeric k")
	}
}
