package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// Effect is one source of variation in a two-way ANOVA.
type Effect struct {
	Name         string  `json:"name"`
	SS           float64 `json:"ss"`
	DF           int     `json:"df"`
	MS           float64 `json:"ms"`
	F            float64 `json:"f"`
	P            float64 `json:"p"`
	PartialEtaSq float64 `json:"partial_eta_sq"`
}

// TwoWayResult holds the full two-way ANOVA table.
type TwoWayResult struct {
	Row         Effect  `json:"row"`         // first factor (mapping strategy)
	Col         Effect  `json:"col"`         // second factor (group size)
	Interaction Effect  `json:"interaction"`
	WithinSS    float64 `json:"within_ss"`
	WithinDF    int     `json:"within_df"`
	WithinMS    float64 `json:"within_ms"`
}

// TwoWayANOVA computes a two-way fixed-effects ANOVA over cells[i][j], the
// observations at row level i and column level j. Unequal cell sizes are
// handled by unweighted-means analysis: effects are computed on cell means
// scaled by the harmonic mean cell size, which matches how the framework's
// analysis pipeline treats its mildly unbalanced replication counts.
func TwoWayANOVA(cells [][][]float64) (TwoWayResult, error) {
	a := len(cells)
	if a < 2 {
		return TwoWayResult{}, fmt.Errorf("anova: need at least 2 row levels, got %d", a)
	}
	b := len(cells[0])
	for i := range cells {
		if len(cells[i]) != b {
			return TwoWayResult{}, fmt.Errorf("anova: ragged cell grid (row %d has %d cols, want %d)", i, len(cells[i]), b)
		}
	}
	if b < 2 {
		return TwoWayResult{}, fmt.Errorf("anova: need at least 2 column levels, got %d", b)
	}

	total := 0
	cellMeans := make([][]float64, a)
	invSum := 0.0
	for i := range cells {
		cellMeans[i] = make([]float64, b)
		for j := range cells[i] {
			n := len(cells[i][j])
			if n == 0 {
				return TwoWayResult{}, fmt.Errorf("anova: empty cell [%d][%d]", i, j)
			}
			total += n
			cellMeans[i][j] = Mean(cells[i][j])
			invSum += 1.0 / float64(n)
		}
	}
	withinDF := total - a*b
	if withinDF < 1 {
		return TwoWayResult{}, fmt.Errorf("anova: %d observations leave no within-cell degrees of freedom", total)
	}

	nh := float64(a*b) / invSum // harmonic mean cell size

	grand := 0.0
	rowMeans := make([]float64, a)
	colMeans := make([]float64, b)
	for i := 0; i < a; i++ {
		for j := 0; j < b; j++ {
			m := cellMeans[i][j]
			grand += m
			rowMeans[i] += m
			colMeans[j] += m
		}
	}
	grand /= float64(a * b)
	for i := range rowMeans {
		rowMeans[i] /= float64(b)
	}
	for j := range colMeans {
		colMeans[j] /= float64(a)
	}

	ssRow, ssCol, ssInter := 0.0, 0.0, 0.0
	for i := 0; i < a; i++ {
		d := rowMeans[i] - grand
		ssRow += d * d
	}
	ssRow *= nh * float64(b)
	for j := 0; j < b; j++ {
		d := colMeans[j] - grand
		ssCol += d * d
	}
	ssCol *= nh * float64(a)
	for i := 0; i < a; i++ {
		for j := 0; j < b; j++ {
			d := cellMeans[i][j] - rowMeans[i] - colMeans[j] + grand
			ssInter += d * d
		}
	}
	ssInter *= nh

	ssWithin := 0.0
	for i := range cells {
		for j := range cells[i] {
			m := cellMeans[i][j]
			for _, x := range cells[i][j] {
				ssWithin += (x - m) * (x - m)
			}
		}
	}
	msWithin := ssWithin / float64(withinDF)

	mkEffect := func(name string, ss float64, df int) Effect {
		e := Effect{Name: name, SS: ss, DF: df, MS: ss / float64(df)}
		if msWithin > 0 {
			e.F = e.MS / msWithin
			fdist := distuv.F{D1: float64(df), D2: float64(withinDF)}
			e.P = 1 - fdist.CDF(e.F)
		}
		if ss+ssWithin > 0 {
			e.PartialEtaSq = ss / (ss + ssWithin)
		}
		return e
	}

	return TwoWayResult{
		Row:         mkEffect("row", ssRow, a-1),
		Col:         mkEffect("column", ssCol, b-1),
		Interaction: mkEffect("interaction", ssInter, (a-1)*(b-1)),
		WithinSS:    ssWithin,
		WithinDF:    withinDF,
		WithinMS:    msWithin,
	}, nil
}
