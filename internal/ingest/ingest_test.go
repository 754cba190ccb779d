package ingest

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIngestFile_WilcoxonCSV(t *testing.T) {
	path := writeCSV(t, "wide_mean_mrr_k4_results.csv",
		"One sample Wilcoxon test,\n"+
			"Theoretical median,0.25\n"+
			"Actual median,0.53\n"+
			"P value,0.002\n"+
			"Mean,0.5301\n")
	recs, err := IngestFile(path, "wilcoxon mean_mrr K=4", []StatKind{KindMean, KindPValue})
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: %v", len(recs), recs)
	}
	if recs[0].Kind != KindMean || recs[0].Value != 0.5301 {
		t.Errorf("mean record = %+v", recs[0])
	}
	if recs[1].Kind != KindPValue || recs[1].Value != 0.002 {
		t.Errorf("p-value record = %+v", recs[1])
	}
	if recs[0].Test != "wilcoxon mean_mrr K=4" {
		t.Errorf("test label not carried: %+v", recs[0])
	}
}

func TestIngestFile_LeadingWhitespaceLabel(t *testing.T) {
	// Prism indents nested rows; "    Slope" must still match.
	path := writeCSV(t, "xy_mean_mrr_all_results.csv",
		"Best-fit values,\n"+
			"    Slope,-0.0021\n"+
			"    Y-intercept,0.54\n")
	recs, err := IngestFile(path, "regression", []StatKind{KindSlope})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Value != -0.0021 {
		t.Fatalf("records = %v, want the indented slope row", recs)
	}
	if recs[0].Label != "Slope" {
		t.Errorf("label = %q, want trimmed %q", recs[0].Label, "Slope")
	}
}

func TestIngestFile_ExactPDoesNotMatchPrefixes(t *testing.T) {
	// "P value summary" carries stars, not a number; the bare "P" row holds
	// the value. The exact pattern must not latch onto unrelated "P..." rows.
	path := writeCSV(t, "r.csv",
		"Paired t test,\n"+
			"P,0.0432\n")
	recs, err := IngestFile(path, "t", []StatKind{KindPValue})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Value != 0.0432 {
		t.Fatalf("records = %v, want P row only", recs)
	}
}

func TestIngestFile_DecoratedValueStripped(t *testing.T) {
	path := writeCSV(t, "r.csv", "P value,P<0.0001\n")
	recs, err := IngestFile(path, "anova", []StatKind{KindPValue})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %v", recs)
	}
	if recs[0].Value != 0.0001 {
		t.Errorf("value = %v, want 0.0001 from decorated cell", recs[0].Value)
	}
}

func TestIngestFile_RValueDerivedFromRSquared(t *testing.T) {
	path := writeCSV(t, "xy_mean_mrr_all_results.csv", "R squared,0.0004\n")
	recs, err := IngestFile(path, "regression", []StatKind{KindRValue})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %v", recs)
	}
	if !recs[0].Derived {
		t.Error("record not flagged as derived")
	}
	if got := recs[0].Value; math.Abs(got-0.02) > 1e-12 {
		t.Errorf("value = %v, want sqrt(0.0004) = 0.02", got)
	}
}

func TestIngestFile_UnknownConventionYieldsNoRecord(t *testing.T) {
	path := writeCSV(t, "r.csv",
		"Zentralwert,0.53\n"+
			"Irrtumswahrscheinlichkeit,0.002\n")
	recs, err := IngestFile(path, "wilcoxon", []StatKind{KindMean, KindPValue})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Errorf("records = %v, want none for an unrecognized label convention", recs)
	}
}

func TestIngestFile_MatchedLabelWithoutValueSkipped(t *testing.T) {
	// A label row whose neighbors hold no number must not produce a zero.
	path := writeCSV(t, "r.csv",
		"Mean,,\n"+
			"Arithmetic mean,0.44\n")
	recs, err := IngestFile(path, "descriptive", []StatKind{KindMean})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Value != 0.44 {
		t.Fatalf("records = %v, want fallback to the populated row", recs)
	}
}

func TestIngestFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]any{
		"A1": "2way ANOVA", "A2": "F (DFn, DFd)", "B2": 56.25,
		"A3": "P value", "B3": 0.0017,
		"A4": "Partial eta squared", "B4": 0.9337,
	}
	for ref, v := range cells {
		if err := f.SetCellValue(sheet, ref, v); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "grouped_anova_mean_mrr_interaction_results.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	recs, err := IngestFile(path, "anova interaction", []StatKind{KindFStatistic, KindPValue, KindEtaSquared})
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3: %v", len(recs), recs)
	}
	want := map[StatKind]float64{KindFStatistic: 56.25, KindPValue: 0.0017, KindEtaSquared: 0.9337}
	for _, r := range recs {
		if math.Abs(r.Value-want[r.Kind]) > 1e-9 {
			t.Errorf("%s = %v, want %v", r.Kind, r.Value, want[r.Kind])
		}
	}
}

func TestIngestFile_MissingFile(t *testing.T) {
	if _, err := IngestFile(filepath.Join(t.TempDir(), "nope.csv"), "t", []StatKind{KindMean}); err == nil {
		t.Fatal("expected error for missing file")
	}
}
