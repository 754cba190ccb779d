package format_test

import (
	"strings"
	"testing"

	"prismcheck/internal/format"
)

func TestASCII_BasicTable(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("Test", "Verdict")
	tb.Row("wide_mean_mrr_k4 mean", "PASS")
	tb.Row("xy_mean_mrr_all slope", "FAIL")
	out := tb.String()

	if !strings.Contains(out, "Test") {
		t.Errorf("expected header 'Test' in output:\n%s", out)
	}
	if !strings.Contains(out, "wide_mean_mrr_k4 mean") {
		t.Errorf("expected row label in output:\n%s", out)
	}
	// ASCII uses box-drawing characters from StyleLight
	if !strings.Contains(out, "───") {
		t.Errorf("expected box-drawing characters in ASCII output:\n%s", out)
	}
}

func TestMarkdown_BasicTable(t *testing.T) {
	tb := format.NewTable(format.Markdown)
	tb.Header("Test", "Verdict")
	tb.Row("grouped_anova_mean_mrr interaction", "PASS")
	out := tb.String()

	if !strings.Contains(out, "| Test") {
		t.Errorf("expected markdown header with '| Test':\n%s", out)
	}
	if !strings.Contains(out, "---") {
		t.Errorf("expected markdown separator '---':\n%s", out)
	}
}

func TestSameData_DualFormat(t *testing.T) {
	build := func(m format.Mode) string {
		tb := format.NewTable(m)
		tb.Header("A", "B")
		tb.Row("x", "y")
		return tb.String()
	}

	ascii := build(format.ASCII)
	md := build(format.Markdown)

	if ascii == md {
		t.Error("ASCII and Markdown output should differ")
	}
	for _, out := range []string{ascii, md} {
		if !strings.Contains(out, "x") || !strings.Contains(out, "y") {
			t.Errorf("expected data in output:\n%s", out)
		}
	}
}

// --- Helper tests ---

func TestSigFigs(t *testing.T) {
	tests := []struct {
		v    float64
		n    int
		want string
	}{
		{0.5301, 6, "0.5301"},
		{0.123456789, 3, "0.123"},
		{756.25, 6, "756.25"},
		{0.0001, 2, "0.0001"},
		{0, 3, "0"},
	}
	for _, tc := range tests {
		got := format.SigFigs(tc.v, tc.n)
		if got != tc.want {
			t.Errorf("SigFigs(%v, %d) = %q, want %q", tc.v, tc.n, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello..."},
		{"abcdef", 3, "abc"},
	}
	for _, tc := range tests {
		got := format.Truncate(tc.in, tc.maxLen)
		if got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}

func TestBoolMark(t *testing.T) {
	if format.BoolMark(true) != "✓" {
		t.Error("BoolMark(true) should be ✓")
	}
	if format.BoolMark(false) != "✗" {
		t.Error("BoolMark(false) should be ✗")
	}
}
