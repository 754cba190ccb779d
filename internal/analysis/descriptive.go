// Package analysis recomputes the framework-side reference statistics the
// comparator checks against Prism: descriptive stats, one-sample Wilcoxon
// signed-rank versus chance, two-way ANOVA with effect sizes, and
// trial-sequence bias regression.
package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Descriptive summarizes one sample.
type Descriptive struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	SD     float64 `json:"sd"`
	SEM    float64 `json:"sem"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe computes descriptive statistics for vals.
func Describe(vals []float64) (Descriptive, error) {
	if len(vals) == 0 {
		return Descriptive{}, fmt.Errorf("describe: empty sample")
	}
	mean, err := stats.Mean(vals)
	if err != nil {
		return Descriptive{}, err
	}
	median, err := stats.Median(vals)
	if err != nil {
		return Descriptive{}, err
	}
	min, err := stats.Min(vals)
	if err != nil {
		return Descriptive{}, err
	}
	max, err := stats.Max(vals)
	if err != nil {
		return Descriptive{}, err
	}
	d := Descriptive{
		N:      len(vals),
		Mean:   mean,
		Median: median,
		Min:    min,
		Max:    max,
	}
	if len(vals) > 1 {
		sd, err := stats.StandardDeviationSample(vals)
		if err != nil {
			return Descriptive{}, err
		}
		d.SD = sd
		d.SEM = sd / math.Sqrt(float64(len(vals)))
	}
	return d, nil
}

// Mean is the shared arithmetic-mean helper.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
