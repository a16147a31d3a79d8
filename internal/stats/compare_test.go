package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevene_Median(t *testing.T) {
	r, err := Levene(CenterMedian, []float64{1, 2, 3}, []float64{1, 3, 5})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, r.Statistic, 1e-12)
	assert.Equal(t, 4.0, r.DoF)

	// For two groups the statistic is the squared pooled t statistic of the
	// absolute deviations, so the p-values must agree.
	tt, err := TTest([]float64{1, 0, 1}, []float64{2, 0, 2}, true)
	require.NoError(t, err)
	assert.InDelta(t, tt.Statistic*tt.Statistic, r.Statistic, 1e-9)
	assert.InDelta(t, tt.P, r.P, 1e-9)
}

func TestLevene_Mean(t *testing.T) {
	a := []float64{2, 4, 6, 8}
	b := []float64{1, 5, 9, 13}
	r, err := Levene(CenterMean, a, b)
	require.NoError(t, err)

	tt, err := TTest([]float64{3, 1, 1, 3}, []float64{6, 2, 2, 6}, true)
	require.NoError(t, err)
	assert.InDelta(t, tt.Statistic*tt.Statistic, r.Statistic, 1e-9)
	assert.InDelta(t, tt.P, r.P, 1e-9)
}

func TestLevene_ReferenceValues(t *testing.T) {
	// NIST gear diameter data, ten batches of ten.
	gear := [][]float64{
		{1.006, 0.996, 0.998, 1.000, 0.992, 0.993, 1.002, 0.999, 0.994, 1.000},
		{0.998, 1.006, 1.000, 1.002, 0.997, 0.998, 0.996, 1.000, 1.006, 0.988},
		{0.991, 0.987, 0.997, 0.999, 0.995, 0.994, 1.000, 0.999, 0.996, 0.996},
		{1.005, 1.002, 0.994, 1.000, 0.995, 0.994, 0.998, 0.996, 1.002, 0.996},
		{0.998, 0.998, 0.982, 0.990, 1.002, 0.984, 0.996, 0.993, 0.980, 0.996},
		{1.009, 1.013, 1.009, 0.997, 0.988, 1.002, 0.995, 0.998, 0.981, 0.996},
		{0.990, 1.004, 0.996, 1.001, 0.998, 1.000, 1.018, 1.010, 0.996, 1.002},
		{0.998, 1.000, 1.006, 1.000, 1.002, 0.996, 0.998, 0.996, 1.002, 1.006},
		{1.002, 0.998, 0.996, 0.995, 0.996, 1.004, 1.004, 0.998, 0.999, 0.991},
		{0.991, 0.995, 0.984, 0.994, 0.997, 0.997, 0.991, 0.998, 1.004, 0.997},
	}

	tests := []struct {
		name   string
		center Center
		groups [][]float64
		stat   float64
		p      float64
		dof    float64
	}{
		{"nist gear", CenterMedian, gear, 1.7059176930008939, 0.0990829755522, 90},
		{"two samples median", CenterMedian, [][]float64{swSample1, swSample2}, 7.786540, 0.008186, 38},
		{"two samples mean", CenterMean, [][]float64{swSample1, swSample2}, 7.760467, 0.008285, 38},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Levene(tt.center, tt.groups...)
			require.NoError(t, err)
			assert.InDelta(t, tt.stat, r.Statistic, 1e-6)
			assert.InDelta(t, tt.p, r.P, 1e-6)
			assert.Equal(t, tt.dof, r.DoF)
		})
	}
}

func TestTTest_ReferenceValues(t *testing.T) {
	tests := []struct {
		name     string
		equalVar bool
		stat     float64
		p        float64
		dof      float64
	}{
		{"pooled", true, 2.217151, 0.032670, 38},
		{"welch", false, 2.217151, 0.034361, 29.900677},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := TTest(swSample1, swSample2, tt.equalVar)
			require.NoError(t, err)
			assert.InDelta(t, tt.stat, r.Statistic, 1e-6)
			assert.InDelta(t, tt.p, r.P, 1e-6)
			assert.InDelta(t, tt.dof, r.DoF, 1e-6)
		})
	}
}

func TestLevene_IdenticalGroups(t *testing.T) {
	g := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	r, err := Levene(CenterMedian, g, g)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, r.Statistic, 1e-12)
	assert.InDelta(t, 1.0, r.P, 1e-12)
}

func TestLevene_Errors(t *testing.T) {
	_, err := Levene(CenterMedian, []float64{1, 2, 3})
	assert.True(t, errors.Is(err, ErrGroupCount))

	_, err = Levene(CenterMedian, []float64{1, 2, 3}, []float64{1})
	assert.True(t, errors.Is(err, ErrSampleSize))

	_, err = Levene(CenterMedian, []float64{1, 1, 1}, []float64{2, 2, 2})
	assert.True(t, errors.Is(err, ErrZeroVariance))
}

func TestParseCenter(t *testing.T) {
	c, err := ParseCenter("")
	require.NoError(t, err)
	assert.Equal(t, CenterMedian, c)

	c, err = ParseCenter("mean")
	require.NoError(t, err)
	assert.Equal(t, CenterMean, c)

	_, err = ParseCenter("trimmed")
	assert.Error(t, err)
}

func TestTTest_Student(t *testing.T) {
	r, err := TTest([]float64{1, 2, 3}, []float64{4, 5, 6}, true)
	require.NoError(t, err)
	assert.InDelta(t, -3.6742, r.Statistic, 1e-4)
	assert.InDelta(t, 4.0, r.DoF, 1e-12)
	assert.InDelta(t, 0.0213, r.P, 1e-3)
}

func TestTTest_Welch(t *testing.T) {
	r, err := TTest([]float64{1, 2, 3}, []float64{4, 5, 6}, false)
	require.NoError(t, err)
	assert.InDelta(t, -3.6742, r.Statistic, 1e-4)
	assert.InDelta(t, 4.0, r.DoF, 1e-9)

	r, err = TTest([]float64{1, 2, 3, 4}, []float64{10, 20, 30, 40}, false)
	require.NoError(t, err)
	assert.Less(t, r.DoF, 6.0)
}

func TestTTest_IgnoresMissing(t *testing.T) {
	r1, err := TTest([]float64{1, 2, 3}, []float64{4, 5, 6}, true)
	require.NoError(t, err)
	r2, err := TTest([]float64{1, math.NaN(), 2, 3}, []float64{4, 5, 6}, true)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestTTest_ZeroVariance(t *testing.T) {
	_, err := TTest([]float64{1, 1, 1}, []float64{1, 1, 1}, true)
	assert.True(t, errors.Is(err, ErrZeroVariance))
}

func TestMannWhitney(t *testing.T) {
	r, err := MannWhitney([]float64{1, 2, 3}, []float64{4, 5, 6})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, r.P, 0.01)

	r, err = MannWhitney([]float64{1, 3, 5, 7}, []float64{2, 4, 6, 8})
	require.NoError(t, err)
	assert.Greater(t, r.P, 0.5)
}
