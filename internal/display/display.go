// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output, markdown reports, and logs.
// Keep raw codes for JSON fields, map keys, and equality comparisons.
package display

// --- Metric keys ---

var metrics = map[string]string{
	"mean_mrr":        "Mean MRR",
	"mean_top_1_acc":  "Top-1 Accuracy",
	"mean_top_3_acc":  "Top-3 Accuracy",
	"mrr_p_value":     "MRR p-value",
	"top_1_p_value":   "Top-1 p-value",
	"top_3_p_value":   "Top-3 p-value",
	"mrr_lift":        "MRR Lift",
	"top_1_lift":      "Top-1 Lift",
	"top_3_lift":      "Top-3 Lift",
	"bias_slope":      "Bias Slope",
	"bias_r_value":    "Bias R",
	"bias_p_value":    "Bias p-value",
	"reciprocal_rank": "Reciprocal Rank",
	"top_1_hit":       "Top-1 Hit",
	"top_3_hit":       "Top-3 Hit",
}

// Metric returns the human-readable name for a metric key.
// Unknown keys are returned as-is.
func Metric(key string) string {
	if name, ok := metrics[key]; ok {
		return name
	}
	return key
}

// --- Statistic kinds ---

var statKinds = map[string]string{
	"mean":        "Mean",
	"p-value":     "P value",
	"slope":       "Slope",
	"r-value":     "R value",
	"f-statistic": "F statistic",
	"eta-squared": "Eta squared",
}

// StatKind returns the human-readable name for a statistic kind code.
func StatKind(code string) string {
	if name, ok := statKinds[code]; ok {
		return name
	}
	return code
}

// --- Table kinds ---

var tableKinds = map[string]string{
	"wide-descriptive": "Wide (descriptive / signed-rank)",
	"grouped-anova":    "Grouped (two-way ANOVA)",
	"xy-regression":    "XY (bias regression)",
}

// TableKind returns the human-readable name for an export table kind.
func TableKind(code string) string {
	if name, ok := tableKinds[code]; ok {
		return name
	}
	return code
}

// --- Mapping strategies ---

var strategies = map[string]string{
	"correct": "Correct mapping",
	"random":  "Random mapping",
	"":        "Unknown mapping",
}

// Strategy returns the human-readable name for a mapping strategy.
func Strategy(code string) string {
	if name, ok := strategies[code]; ok {
		return name
	}
	return code
}
