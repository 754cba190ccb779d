// Package ingest parses result files exported by GraphPad Prism back into
// normalized statistic records. Export formats vary across Prism versions and
// analysis types, so matching runs off ordered per-kind label tables: adding
// a new format is a data change, not a logic change.
package ingest

import "strings"

// StatKind is the statistic class a caller expects from a result file.
type StatKind string

const (
	KindMean       StatKind = "mean"
	KindPValue     StatKind = "p-value"
	KindSlope      StatKind = "slope"
	KindRValue     StatKind = "r-value"
	KindFStatistic StatKind = "f-statistic"
	KindEtaSquared StatKind = "eta-squared"
)

// labelPattern is one recognized first-column label. exact patterns must
// equal the trimmed cell; others match on prefix. Comparison is
// case-insensitive and trims surrounding whitespace first.
type labelPattern struct {
	text  string
	exact bool
}

func (p labelPattern) matches(cell string) bool {
	got := strings.ToLower(strings.TrimSpace(cell))
	want := strings.ToLower(p.text)
	if p.exact {
		return got == want
	}
	return strings.HasPrefix(got, want)
}

// patternTable holds the ordered label patterns per statistic kind. The first
// matching row of the file wins. R-value has no native Prism label; it is
// derived from the R-squared row in findStatistic.
var patternTable = map[StatKind][]labelPattern{
	KindMean: {
		{text: "mean", exact: true},
		{text: "arithmetic mean"},
		{text: "average", exact: true},
	},
	KindPValue: {
		{text: "p value"},
		{text: "two-tailed p"},
		{text: "p", exact: true},
		{text: "probability"},
	},
	KindSlope: {
		{text: "slope"},
		{text: "best-fit slope"},
	},
	KindRValue: {
		{text: "r squared"},
		{text: "r square"},
		{text: "r sq", exact: true},
		{text: "r²", exact: true},
	},
	KindFStatistic: {
		{text: "f (dfn, dfd)"},
		{text: "f", exact: true},
		{text: "f statistic"},
		{text: "f value"},
	},
	KindEtaSquared: {
		{text: "partial eta squared"},
		{text: "eta squared"},
		{text: "η²", exact: true},
	},
}
