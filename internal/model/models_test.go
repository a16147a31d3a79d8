package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumn(t *testing.T) {
	for name, want := range map[string]Column{
		"Purchase":     Purchase,
		"purchase":     Purchase,
		" Earning ":    Earning,
		"Impression_A": Impression,
		"Click_B":      Click,
	} {
		got, err := ParseColumn(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseColumn("Revenue")
	assert.Error(t, err)
}

func TestGroup(t *testing.T) {
	g := Group{Name: "control", Rows: []Observation{
		{Impression: 1, Click: 2, Purchase: 3, Earning: 4},
		{Impression: 5, Click: 6, Purchase: 7, Earning: 8},
	}}

	rows, cols := g.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 4, cols)
	assert.Equal(t, []float64{3, 7}, g.Column(Purchase))
	assert.Len(t, g.Head(5), 2)
	assert.Len(t, g.Head(1), 1)
}

func TestObservationJSON(t *testing.T) {
	obs := MissingObservation()
	obs.Set(Purchase, 665.2113)

	b, err := json.Marshal(obs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"impression":null,"click":null,"purchase":665.2113,"earning":null}`, string(b))

	var back Observation
	require.NoError(t, json.Unmarshal([]byte(`{"purchase":1.5}`), &back))
	assert.Equal(t, 1.5, back.Purchase)
	assert.True(t, math.IsNaN(back.Click))
}

func TestSummaryJSON(t *testing.T) {
	s := Summary{Column: Click, Missing: 3, Mean: math.NaN(), Std: math.NaN(), Min: math.NaN(), Max: math.NaN(),
		Quantiles: []Quantile{{Q: 0.5, Value: math.NaN()}}}

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"column":"Click","count":0,"missing":3,"mean":null,"std":null,"min":null,"max":null,"quantiles":[{"q":0.5,"value":null}]}`, string(b))
}

func TestReportRecord(t *testing.T) {
	r := &Report{
		ID:      "run-1",
		Metric:  Purchase,
		Control: GroupOverview{Name: "control", Rows: 40},
		Test:    GroupOverview{Name: "test", Rows: 40},
		Normality: []TestResult{
			{Kind: ShapiroWilk, Group: "control", PValue: 0.5891},
			{Kind: ShapiroWilk, Group: "test", PValue: 0.1541},
		},
		Variance:   TestResult{Kind: Levene, PValue: 0.1083},
		Comparison: TestResult{Kind: StudentT, Statistic: -0.9416, PValue: 0.3493},
	}

	rec := r.Record()
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, "Purchase", rec.Metric)
	assert.Equal(t, 0.5891, rec.ControlShapiroP)
	assert.Equal(t, 0.1541, rec.TestShapiroP)
	assert.Equal(t, 0.1083, rec.LeveneP)
	assert.Equal(t, "ttest", rec.TestKind)
	assert.False(t, rec.Rejected)
}
