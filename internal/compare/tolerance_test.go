package compare

import (
	"testing"

	"prismcheck/internal/ingest"
)

func TestParseTolerances_MergesDefaults(t *testing.T) {
	tols, err := ParseTolerances([]byte("p_value: 0.01\nslope: 0.001\n"))
	if err != nil {
		t.Fatal(err)
	}
	if tols.PValue != 0.01 || tols.Slope != 0.001 {
		t.Errorf("overrides not applied: %+v", tols)
	}
	if tols.Mean != 1e-4 || tols.RValue != 1e-2 {
		t.Errorf("unset fields did not fall back to defaults: %+v", tols)
	}
}

func TestParseTolerances_Invalid(t *testing.T) {
	if _, err := ParseTolerances([]byte("p_value: [not, a, number]")); err == nil {
		t.Fatal("expected error for malformed tolerance table")
	}
}

func TestFor_UnknownKind(t *testing.T) {
	if _, err := DefaultTolerances().For(ingest.StatKind("median")); err == nil {
		t.Fatal("expected error for an unclassified statistic kind")
	}
}

func TestFor_EveryKnownKind(t *testing.T) {
	tols := DefaultTolerances()
	for _, k := range []ingest.StatKind{
		ingest.KindMean, ingest.KindPValue, ingest.KindSlope,
		ingest.KindRValue, ingest.KindFStatistic, ingest.KindEtaSquared,
	} {
		v, err := tols.For(k)
		if err != nil {
			t.Errorf("For(%s): %v", k, err)
		}
		if v <= 0 {
			t.Errorf("For(%s) = %v, want positive", k, v)
		}
	}
}
