package report

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidtest/internal/model"
)

func sampleReport() *model.Report {
	overview := func(name string) model.GroupOverview {
		return model.GroupOverview{
			Name: name,
			Rows: 40,
			Cols: 4,
			Head: []model.Observation{{Impression: 82529.4593, Click: 6090.0773, Purchase: 665.2113, Earning: 2311.2771}},
			Summaries: []model.Summary{
				{Column: model.Purchase, Count: 40, Quantiles: []model.Quantile{{Q: 0, Value: 267.0285}, {Q: 1, Value: 801.7950}}},
			},
			Box: model.BoxPlot{Min: 267.0285, Q1: 470.0955, Median: 531.2063, Q3: 637.9574, Max: 801.7950, LowerWhisker: 267.0285, UpperWhisker: 801.7950},
		}
	}
	return &model.Report{
		ID:          "run-1",
		CreatedAt:   time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		Metric:      model.Purchase,
		Alpha:       0.05,
		Control:     overview("control"),
		Test:        overview("test"),
		ControlMean: 550.8941,
		TestMean:    582.1061,
		Normality: []model.TestResult{
			{Kind: model.ShapiroWilk, Group: "control", Statistic: 0.9773, PValue: 0.5891},
			{Kind: model.ShapiroWilk, Group: "test", Statistic: 0.9589, PValue: 0.1541},
		},
		Variance:   model.TestResult{Kind: model.Levene, Statistic: 2.6393, PValue: 0.1083},
		Comparison: model.TestResult{Kind: model.StudentT, Statistic: -0.9416, PValue: 0.3493},
		Conclusion: "p-value 0.3493 >= 0.05: H0 cannot be rejected.",
	}
}

func TestPrinter_Report(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Report(sampleReport())
	out := buf.String()

	assert.Contains(t, out, "--------------------- Shape ---------------------")
	assert.Contains(t, out, "(40, 4)")
	assert.Contains(t, out, "665.2113")
	assert.Contains(t, out, "No missing values")
	assert.Contains(t, out, "801.7950")
	assert.Contains(t, out, " Mean of purchase of control group: 550.8941")
	assert.Contains(t, out, " Mean of purchase of test group: 582.1061")
	assert.Contains(t, out, "control: Test statistic = 0.9773, p-Value = 0.5891 (H0 not rejected, normality met)")
	assert.Contains(t, out, "Test statistic = 2.6393, p-Value = 0.1083")
	assert.Contains(t, out, "tvalue = -0.9416, pvalue = 0.3493")
	assert.Contains(t, out, "H0 cannot be rejected")
	assert.NotContains(t, out, "\x1b[")
}

func TestPrinter_MissingValues(t *testing.T) {
	r := sampleReport()
	r.Control.Missing = []model.MissingValue{{Column: model.Earning, Count: 2, Ratio: 5}}
	r.Control.Head[0].Click = math.NaN()

	var buf bytes.Buffer
	NewPrinter(&buf).Overview(r.Control, r.Metric)
	out := buf.String()

	assert.Contains(t, out, "Total Missing Values")
	assert.Contains(t, out, "5.00")
	assert.Contains(t, out, "NaN")
}

func TestPrinter_History(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.History(nil)
	assert.Contains(t, buf.String(), "No analyses recorded")

	buf.Reset()
	p.History([]model.AnalysisRecord{{RunID: "run-9", Metric: "Purchase", ControlN: 40, TestN: 40, TestKind: "ttest", Statistic: -0.9416, PValue: 0.3493}})
	assert.Contains(t, buf.String(), "run-9")
	assert.Contains(t, buf.String(), "40/40")
	assert.Contains(t, buf.String(), "0.3493")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got["id"])
	assert.Equal(t, "Purchase", got["metric"])
	assert.InDelta(t, 0.3493, got["comparison"].(map[string]interface{})["p_value"], 1e-12)
}

func TestBoxLine(t *testing.T) {
	b := model.BoxPlot{Min: 0, Q1: 2, Median: 5, Q3: 7, Max: 10, LowerWhisker: 0, UpperWhisker: 8, Outliers: []float64{10}}
	assert.Equal(t, "|-[==|=]| o", BoxLine(b, 11))

	flat := model.BoxPlot{Min: 3, Q1: 3, Median: 3, Q3: 3, Max: 3, LowerWhisker: 3, UpperWhisker: 3}
	assert.Equal(t, "  |", BoxLine(flat, 5))

	assert.Empty(t, BoxLine(model.BoxPlot{Min: math.NaN()}, 11))
}
