package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/mathx"
	mstats "github.com/aclements/go-moremath/stats"
)

// Result is the outcome of a hypothesis test.
type Result struct {
	Statistic float64
	P         float64
	DoF       float64
}

// Center selects the location used by Levene's test.
type Center string

const (
	CenterMedian Center = "median"
	CenterMean   Center = "mean"
)

// ParseCenter accepts "median" and "mean"; empty means median.
func ParseCenter(s string) (Center, error) {
	switch Center(s) {
	case "", CenterMedian:
		return CenterMedian, nil
	case CenterMean:
		return CenterMean, nil
	}
	return "", fmt.Errorf("unknown levene center: %q", s)
}

// Levene tests the null hypothesis that all groups have equal variance.
// With CenterMedian this is the Brown-Forsythe variant. Missing values are
// ignored.
func Levene(center Center, groups ...[]float64) (Result, error) {
	k := len(groups)
	if k < 2 {
		return Result{}, ErrGroupCount
	}

	z := make([][]float64, k)
	zbar := make([]float64, k)
	var total int
	var zsum float64
	for i, g := range groups {
		x, _ := Clean(g)
		if len(x) < 2 {
			return Result{}, ErrSampleSize
		}
		var c float64
		switch center {
		case CenterMean:
			c = mstats.Sample{Xs: x}.Mean()
		default:
			sorted := append([]float64(nil), x...)
			sort.Float64s(sorted)
			c = Quantile(sorted, 0.5)
		}
		z[i] = make([]float64, len(x))
		for j, v := range x {
			z[i][j] = math.Abs(v - c)
			zbar[i] += z[i][j]
		}
		zsum += zbar[i]
		zbar[i] /= float64(len(x))
		total += len(x)
	}
	zgrand := zsum / float64(total)

	var between, within float64
	for i := range z {
		d := zbar[i] - zgrand
		between += float64(len(z[i])) * d * d
		for _, v := range z[i] {
			e := v - zbar[i]
			within += e * e
		}
	}
	if within == 0 {
		return Result{}, ErrZeroVariance
	}

	d1, d2 := float64(k-1), float64(total-k)
	stat := d2 / d1 * between / within
	return Result{Statistic: stat, P: fSurvival(stat, d1, d2), DoF: d2}, nil
}

// fSurvival is P(F > x) for an F(d1, d2) distributed variable.
func fSurvival(x, d1, d2 float64) float64 {
	if x <= 0 {
		return 1
	}
	return mathx.BetaInc(d2/(d2+d1*x), d2/2, d1/2)
}

// TTest runs a two-sided independent two-sample t-test. When equalVar is
// true the pooled-variance Student test is used, otherwise Welch's test.
func TTest(a, b []float64, equalVar bool) (Result, error) {
	x1, _ := Clean(a)
	x2, _ := Clean(b)
	s1, s2 := mstats.Sample{Xs: x1}, mstats.Sample{Xs: x2}

	var (
		r   *mstats.TTestResult
		err error
	)
	if equalVar {
		r, err = mstats.TwoSampleTTest(s1, s2, mstats.LocationDiffers)
	} else {
		r, err = mstats.TwoSampleWelchTTest(s1, s2, mstats.LocationDiffers)
	}
	if err != nil {
		return Result{}, translate(err)
	}
	return Result{Statistic: r.T, P: r.P, DoF: r.DoF}, nil
}

// MannWhitney runs the two-sided Mann-Whitney U rank test.
func MannWhitney(a, b []float64) (Result, error) {
	x1, _ := Clean(a)
	x2, _ := Clean(b)
	r, err := mstats.MannWhitneyUTest(x1, x2, mstats.LocationDiffers)
	if err != nil {
		return Result{}, translate(err)
	}
	return Result{Statistic: r.U, P: r.P}, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, mstats.ErrSampleSize):
		return fmt.Errorf("%w: %v", ErrSampleSize, err)
	case errors.Is(err, mstats.ErrZeroVariance):
		return fmt.Errorf("%w: %v", ErrZeroVariance, err)
	}
	return err
}
