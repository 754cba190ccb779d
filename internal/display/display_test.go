package display

import "testing"

func TestMetric(t *testing.T) {
	cases := []struct {
		code, want string
	}{
		{"mean_mrr", "Mean MRR"},
		{"mean_top_1_acc", "Top-1 Accuracy"},
		{"mean_top_3_acc", "Top-3 Accuracy"},
		{"bias_slope", "Bias Slope"},
		{"reciprocal_rank", "Reciprocal Rank"},
		{"unknown_metric", "unknown_metric"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Metric(tc.code); got != tc.want {
			t.Errorf("Metric(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestStatKind(t *testing.T) {
	cases := []struct {
		code, want string
	}{
		{"mean", "Mean"},
		{"p-value", "P value"},
		{"f-statistic", "F statistic"},
		{"eta-squared", "Eta squared"},
		{"median", "median"},
	}
	for _, tc := range cases {
		if got := StatKind(tc.code); got != tc.want {
			t.Errorf("StatKind(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestTableKind(t *testing.T) {
	if got := TableKind("grouped-anova"); got != "Grouped (two-way ANOVA)" {
		t.Errorf("got %q", got)
	}
	if got := TableKind("pie-chart"); got != "pie-chart" {
		t.Errorf("got %q", got)
	}
}

func TestStrategy(t *testing.T) {
	cases := []struct {
		code, want string
	}{
		{"correct", "Correct mapping"},
		{"random", "Random mapping"},
		{"", "Unknown mapping"},
		{"shuffled", "shuffled"},
	}
	for _, tc := range cases {
		if got := Strategy(tc.code); got != tc.want {
			t.Errorf("Strategy(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}
