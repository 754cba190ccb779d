package compare

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"prismcheck/internal/display"
	"prismcheck/internal/format"
)

// Report rolls all comparisons of one validation run into an overall verdict.
type Report struct {
	StudyRoot   string       `json:"study_root"`
	GeneratedAt time.Time    `json:"generated_at"`
	Comparisons []Comparison `json:"comparisons"`
	Passed      int          `json:"passed"`
	Failed      int          `json:"failed"`
	Manual      int          `json:"manual"`
	Overall     Verdict      `json:"overall"`
}

// Aggregate computes the overall verdict: PASS only if every non-MANUAL
// comparison is PASS. MANUAL results never force FAIL but always count in
// the summary.
func Aggregate(studyRoot string, comparisons []Comparison) *Report {
	r := &Report{
		StudyRoot:   studyRoot,
		GeneratedAt: time.Now().UTC(),
		Comparisons: comparisons,
	}
	for _, c := range comparisons {
		switch c.Verdict {
		case PASS:
			r.Passed++
		case FAIL:
			r.Failed++
		case MANUAL:
			r.Manual++
		}
	}
	r.Overall = PASS
	if r.Failed > 0 {
		r.Overall = FAIL
	}
	return r
}

// JSON renders the report for machine consumption.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Text renders the human-readable report with the shared table builder.
func (r *Report) Text(mode format.Mode) string {
	var b strings.Builder

	b.WriteString("=== Prism Cross-Validation Report ===\n")
	b.WriteString(fmt.Sprintf("Study:     %s\n", r.StudyRoot))
	b.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	t := format.NewTable(mode)
	t.Header("Test", "Kind", "Framework", "Prism", "Diff", "Tol", "Verdict")
	for _, c := range r.Comparisons {
		ext := format.SigFigs(c.External, 6)
		diff := format.SigFigs(c.Diff, 3)
		if c.Verdict == MANUAL {
			ext, diff = "—", "—"
		}
		t.Row(c.Label, display.StatKind(string(c.Kind)), format.SigFigs(c.Framework, 6), ext,
			diff, format.SigFigs(c.Tolerance, 2), verdictMark(c.Verdict))
	}
	t.Columns(
		format.ColumnConfig{Number: 1, Align: format.AlignLeft, MaxWidth: 42},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
		format.ColumnConfig{Number: 5, Align: format.AlignRight},
	)
	b.WriteString(t.String())
	b.WriteString("\n")

	for _, c := range r.Comparisons {
		if c.Verdict == MANUAL {
			b.WriteString(fmt.Sprintf("MANUAL %s: %s\n", c.Label, c.Note))
		}
	}

	b.WriteString(fmt.Sprintf("\nRESULT: %s (%d pass, %d fail, %d manual)\n",
		r.Overall, r.Passed, r.Failed, r.Manual))
	return b.String()
}

func verdictMark(v Verdict) string {
	switch v {
	case PASS:
		return "✓ PASS"
	case FAIL:
		return "✗ FAIL"
	default:
		return "? MANUAL"
	}
}
