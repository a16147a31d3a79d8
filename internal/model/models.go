package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Column identifies one of the metric columns of a group sheet.
type Column string

const (
	Impression Column = "Impression"
	Click      Column = "Click"
	Purchase   Column = "Purchase"
	Earning    Column = "Earning"
)

// Columns lists the metric columns in sheet order.
var Columns = []Column{Impression, Click, Purchase, Earning}

// ParseColumn maps a header name to a Column. Matching is case-insensitive
// and tolerates the "_A"/"_B" suffixes used when both groups are merged.
func ParseColumn(name string) (Column, error) {
	n := strings.TrimSpace(name)
	n = strings.TrimSuffix(strings.TrimSuffix(n, "_A"), "_B")
	n = strings.TrimSuffix(strings.TrimSuffix(n, "_a"), "_b")
	for _, c := range Columns {
		if strings.EqualFold(n, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown column: %q", name)
}

// Observation is one row of a group sheet. Missing cells are NaN.
type Observation struct {
	Impression float64 `json:"impression"`
	Click      float64 `json:"click"`
	Purchase   float64 `json:"purchase"`
	Earning    float64 `json:"earning"`
}

// MissingObservation returns a row where every cell is missing.
func MissingObservation() Observation {
	nan := math.NaN()
	return Observation{Impression: nan, Click: nan, Purchase: nan, Earning: nan}
}

type jsonObservation struct {
	Impression *float64 `json:"impression"`
	Click      *float64 `json:"click"`
	Purchase   *float64 `json:"purchase"`
	Earning    *float64 `json:"earning"`
}

func cell(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func uncell(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// MarshalJSON encodes missing cells as null.
func (o Observation) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonObservation{
		Impression: cell(o.Impression),
		Click:      cell(o.Click),
		Purchase:   cell(o.Purchase),
		Earning:    cell(o.Earning),
	})
}

// UnmarshalJSON decodes null or absent cells as missing.
func (o *Observation) UnmarshalJSON(data []byte) error {
	var j jsonObservation
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	o.Impression = uncell(j.Impression)
	o.Click = uncell(j.Click)
	o.Purchase = uncell(j.Purchase)
	o.Earning = uncell(j.Earning)
	return nil
}

// Value returns the cell for column c.
func (o Observation) Value(c Column) float64 {
	switch c {
	case Impression:
		return o.Impression
	case Click:
		return o.Click
	case Purchase:
		return o.Purchase
	case Earning:
		return o.Earning
	}
	return math.NaN()
}

// Set stores v in column c.
func (o *Observation) Set(c Column, v float64) {
	switch c {
	case Impression:
		o.Impression = v
	case Click:
		o.Click = v
	case Purchase:
		o.Purchase = v
	case Earning:
		o.Earning = v
	}
}

// Group is one arm of the experiment.
type Group struct {
	Name string
	Rows []Observation
}

// Shape returns (rows, columns).
func (g Group) Shape() (int, int) {
	return len(g.Rows), len(Columns)
}

// Column returns the values of c in row order.
func (g Group) Column(c Column) []float64 {
	out := make([]float64, len(g.Rows))
	for i, r := range g.Rows {
		out[i] = r.Value(c)
	}
	return out
}

// Head returns at most n leading rows.
func (g Group) Head(n int) []Observation {
	if n < 0 || n > len(g.Rows) {
		n = len(g.Rows)
	}
	return g.Rows[:n]
}

// Summary holds the descriptive statistics of one column.
type Summary struct {
	Column    Column     `json:"column"`
	Count     int        `json:"count"`
	Missing   int        `json:"missing"`
	Mean      float64    `json:"mean"`
	Std       float64    `json:"std"`
	Min       float64    `json:"min"`
	Max       float64    `json:"max"`
	Quantiles []Quantile `json:"quantiles"`
}

// Quantile is the value of a column at quantile Q.
type Quantile struct {
	Q     float64 `json:"q"`
	Value float64 `json:"value"`
}

// MissingValue is one line of a missing-value analysis.
type MissingValue struct {
	Column Column  `json:"column"`
	Count  int     `json:"count"`
	Ratio  float64 `json:"ratio"`
}

// BoxPlot is the five-number summary of a column with Tukey whiskers.
type BoxPlot struct {
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

// GroupOverview is the data check printed for each group before testing.
type GroupOverview struct {
	Name      string         `json:"name"`
	Rows      int            `json:"rows"`
	Cols      int            `json:"cols"`
	Head      []Observation  `json:"head"`
	Missing   []MissingValue `json:"missing"`
	Summaries []Summary      `json:"summaries"`
	Box       BoxPlot        `json:"box"`
}

// TestKind names a hypothesis test.
type TestKind string

const (
	ShapiroWilk  TestKind = "shapiro"
	Levene       TestKind = "levene"
	StudentT     TestKind = "ttest"
	WelchT       TestKind = "welch"
	MannWhitneyU TestKind = "mannwhitneyu"
)

// TestResult is the outcome of a single hypothesis test.
type TestResult struct {
	Kind      TestKind `json:"kind"`
	Group     string   `json:"group,omitempty"`
	Statistic float64  `json:"statistic"`
	PValue    float64  `json:"p_value"`
	DoF       float64  `json:"dof,omitempty"`
	Rejected  bool     `json:"rejected"`
}

// Report is the complete outcome of one analysis run.
type Report struct {
	ID          string        `json:"id"`
	CreatedAt   time.Time     `json:"created_at"`
	Source      string        `json:"source"`
	Metric      Column        `json:"metric"`
	Alpha       float64       `json:"alpha"`
	Control     GroupOverview `json:"control"`
	Test        GroupOverview `json:"test"`
	ControlMean float64       `json:"control_mean"`
	TestMean    float64       `json:"test_mean"`
	Normality   []TestResult  `json:"normality"`
	Variance    TestResult    `json:"variance"`
	Comparison  TestResult    `json:"comparison"`
	Conclusion  string        `json:"conclusion"`
}

// AnalysisRecord is the persisted row of a completed analysis.
type AnalysisRecord struct {
	ID              int64     `db:"id"`
	RunID           string    `db:"run_id"`
	Timestamp       time.Time `db:"timestamp"`
	Source          string    `db:"source"`
	Metric          string    `db:"metric"`
	ControlN        int       `db:"control_n"`
	TestN           int       `db:"test_n"`
	ControlMean     float64   `db:"control_mean"`
	TestMean        float64   `db:"test_mean"`
	ControlShapiroP float64   `db:"control_shapiro_p"`
	TestShapiroP    float64   `db:"test_shapiro_p"`
	LeveneP         float64   `db:"levene_p"`
	TestKind        string    `db:"test_kind"`
	Statistic       float64   `db:"statistic"`
	PValue          float64   `db:"p_value"`
	Rejected        bool      `db:"rejected"`
}

// Record flattens a report into its persisted form.
func (r *Report) Record() AnalysisRecord {
	rec := AnalysisRecord{
		RunID:       r.ID,
		Timestamp:   r.CreatedAt,
		Source:      r.Source,
		Metric:      string(r.Metric),
		ControlN:    r.Control.Rows,
		TestN:       r.Test.Rows,
		ControlMean: r.ControlMean,
		TestMean:    r.TestMean,
		LeveneP:     r.Variance.PValue,
		TestKind:    string(r.Comparison.Kind),
		Statistic:   r.Comparison.Statistic,
		PValue:      r.Comparison.PValue,
		Rejected:    r.Comparison.Rejected,
	}
	for _, n := range r.Normality {
		switch n.Group {
		case r.Control.Name:
			rec.ControlShapiroP = n.PValue
		case r.Test.Name:
			rec.TestShapiroP = n.PValue
		}
	}
	return rec
}

// MarshalJSON encodes undefined statistics as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column    Column     `json:"column"`
		Count     int        `json:"count"`
		Missing   int        `json:"missing"`
		Mean      *float64   `json:"mean"`
		Std       *float64   `json:"std"`
		Min       *float64   `json:"min"`
		Max       *float64   `json:"max"`
		Quantiles []Quantile `json:"quantiles"`
	}{s.Column, s.Count, s.Missing, cell(s.Mean), cell(s.Std), cell(s.Min), cell(s.Max), s.Quantiles})
}

// MarshalJSON encodes an undefined quantile as null.
func (q Quantile) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Q     float64  `json:"q"`
		Value *float64 `json:"value"`
	}{q.Q, cell(q.Value)})
}
