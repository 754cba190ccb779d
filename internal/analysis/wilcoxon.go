package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// WilcoxonResult is a one-sample Wilcoxon signed-rank test outcome.
type WilcoxonResult struct {
	N int     `json:"n"` // nonzero differences
	W float64 `json:"w"` // sum of positive-difference ranks
	Z float64 `json:"z"`
	P float64 `json:"p"` // two-tailed
}

// WilcoxonSignedRank tests whether the sample's median differs from mu.
// Zero differences are discarded; tied absolute differences get average
// ranks with the usual variance correction. The p-value uses the normal
// approximation with continuity correction, which is how the framework's
// analysis pipeline reports it.
func WilcoxonSignedRank(sample []float64, mu float64) (WilcoxonResult, error) {
	var diffs []float64
	for _, x := range sample {
		if d := x - mu; d != 0 {
			diffs = append(diffs, d)
		}
	}
	n := len(diffs)
	if n == 0 {
		return WilcoxonResult{}, fmt.Errorf("wilcoxon: no nonzero differences from %v", mu)
	}

	type absDiff struct {
		abs float64
		pos bool
	}
	ad := make([]absDiff, n)
	for i, d := range diffs {
		ad[i] = absDiff{abs: math.Abs(d), pos: d > 0}
	}
	sort.Slice(ad, func(i, j int) bool { return ad[i].abs < ad[j].abs })

	// Average ranks over ties; accumulate the tie correction term Σ(t³−t).
	ranks := make([]float64, n)
	tieTerm := 0.0
	for i := 0; i < n; {
		j := i
		for j < n && ad[j].abs == ad[i].abs {
			j++
		}
		avg := float64(i+1+j) / 2.0
		for k := i; k < j; k++ {
			ranks[k] = avg
		}
		if t := float64(j - i); t > 1 {
			tieTerm += t*t*t - t
		}
		i = j
	}

	wPlus := 0.0
	for i := range ad {
		if ad[i].pos {
			wPlus += ranks[i]
		}
	}

	fn := float64(n)
	meanW := fn * (fn + 1) / 4.0
	varW := fn*(fn+1)*(2*fn+1)/24.0 - tieTerm/48.0
	if varW <= 0 {
		return WilcoxonResult{}, fmt.Errorf("wilcoxon: zero variance (all %d differences tied)", n)
	}

	// Continuity correction: shift a half rank toward the mean.
	num := wPlus - meanW
	switch {
	case num > 0.5:
		num -= 0.5
	case num < -0.5:
		num += 0.5
	default:
		num = 0
	}
	z := num / math.Sqrt(varW)

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	p := 2 * (1 - norm.CDF(math.Abs(z)))
	if p > 1 {
		p = 1
	}

	return WilcoxonResult{N: n, W: wPlus, Z: z, P: p}, nil
}
