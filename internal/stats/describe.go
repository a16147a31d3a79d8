package stats

import (
	"errors"
	"math"
	"sort"

	mstats "github.com/aclements/go-moremath/stats"

	"bidtest/internal/model"
)

var (
	ErrSampleSize   = errors.New("stats: sample is too small")
	ErrZeroRange    = errors.New("stats: all sample values are identical")
	ErrZeroVariance = errors.New("stats: zero variance")
	ErrGroupCount   = errors.New("stats: at least two groups are required")
)

// DefaultQuantiles are the quantiles reported in a data overview.
var DefaultQuantiles = []float64{0, 0.05, 0.50, 0.95, 0.99, 1}

// Clean returns a copy of xs without NaN values, and the number dropped.
func Clean(xs []float64) ([]float64, int) {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		out = append(out, x)
	}
	return out, len(xs) - len(out)
}

// Mean of the non-missing values of xs; NaN when none are present.
func Mean(xs []float64) float64 {
	x, _ := Clean(xs)
	if len(x) == 0 {
		return math.NaN()
	}
	return mstats.Sample{Xs: x}.Mean()
}

// Quantile returns the q-th quantile of an ascending sorted slice using
// linear interpolation between the closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	h := float64(n-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= n {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Describe computes the descriptive summary of one column. Missing values
// are excluded from every statistic and reported in Missing.
func Describe(c model.Column, xs []float64, qs []float64) model.Summary {
	x, missing := Clean(xs)
	s := model.Summary{
		Column:  c,
		Count:   len(x),
		Missing: missing,
		Mean:    math.NaN(),
		Std:     math.NaN(),
		Min:     math.NaN(),
		Max:     math.NaN(),
	}
	sort.Float64s(x)
	for _, q := range qs {
		s.Quantiles = append(s.Quantiles, model.Quantile{Q: q, Value: Quantile(x, q)})
	}
	if len(x) == 0 {
		return s
	}

	sample := mstats.Sample{Xs: x, Sorted: true}
	s.Mean = sample.Mean()
	s.Min, s.Max = sample.Bounds()
	if len(x) > 1 {
		s.Std = sample.StdDev()
	}
	return s
}

// DescribeGroup summarises every column of g.
func DescribeGroup(g model.Group, qs []float64) []model.Summary {
	out := make([]model.Summary, 0, len(model.Columns))
	for _, c := range model.Columns {
		out = append(out, Describe(c, g.Column(c), qs))
	}
	return out
}

// MissingValues reports the columns of g that contain missing cells, with
// the ratio as a percentage rounded to two decimals, ordered by count.
func MissingValues(g model.Group) []model.MissingValue {
	rows, _ := g.Shape()
	var out []model.MissingValue
	for _, c := range model.Columns {
		_, n := Clean(g.Column(c))
		if n == 0 {
			continue
		}
		ratio := float64(n) / float64(rows) * 100
		out = append(out, model.MissingValue{
			Column: c,
			Count:  n,
			Ratio:  math.Round(ratio*100) / 100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count < out[j].Count })
	return out
}

// Box computes a box plot with whiskers at 1.5 times the interquartile range.
func Box(xs []float64) model.BoxPlot {
	x, _ := Clean(xs)
	if len(x) == 0 {
		nan := math.NaN()
		return model.BoxPlot{Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan, LowerWhisker: nan, UpperWhisker: nan}
	}
	sort.Float64s(x)

	b := model.BoxPlot{
		Min:    x[0],
		Q1:     Quantile(x, 0.25),
		Median: Quantile(x, 0.5),
		Q3:     Quantile(x, 0.75),
		Max:    x[len(x)-1],
	}
	iqr := b.Q3 - b.Q1
	lo, hi := b.Q1-1.5*iqr, b.Q3+1.5*iqr
	b.LowerWhisker, b.UpperWhisker = b.Max, b.Min
	for _, v := range x {
		if v < lo || v > hi {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		if v < b.LowerWhisker {
			b.LowerWhisker = v
		}
		if v > b.UpperWhisker {
			b.UpperWhisker = v
		}
	}
	return b
}
