package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"bidtest/internal/model"
)

const boxWidth = 60

// Printer renders analysis results as console text.
type Printer struct {
	w       io.Writer
	heading lipgloss.Style
	verdict lipgloss.Style
}

// NewPrinter creates a Printer writing to w. Styling is dropped when w is
// not a terminal.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		verdict: r.NewStyle().Bold(true),
	}
}

func (p *Printer) section(title string) {
	fmt.Fprintln(p.w, p.heading.Render(fmt.Sprintf("--------------------- %s ---------------------", title)))
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4f", v)
}

// Overview prints the data check of one group.
func (p *Printer) Overview(o model.GroupOverview, metric model.Column) {
	fmt.Fprintf(p.w, "\n=== %s group ===\n", o.Name)

	p.section("Shape")
	fmt.Fprintf(p.w, "(%d, %d)\n", o.Rows, o.Cols)

	p.section("Types")
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	for _, c := range model.Columns {
		fmt.Fprintf(tw, "%s\tfloat64\n", c)
	}
	tw.Flush()

	p.section("Head")
	tw = tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\t")
	for _, c := range model.Columns {
		fmt.Fprintf(tw, "%s\t", c)
	}
	fmt.Fprintln(tw)
	for i, r := range o.Head {
		fmt.Fprintf(tw, "%d\t", i)
		for _, c := range model.Columns {
			fmt.Fprintf(tw, "%s\t", num(r.Value(c)))
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()

	p.section("Missing Value Analysis")
	if len(o.Missing) == 0 {
		fmt.Fprintln(p.w, "No missing values")
	} else {
		tw = tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "\tTotal Missing Values\tRatio")
		for _, m := range o.Missing {
			fmt.Fprintf(tw, "%s\t%d\t%.2f\n", m.Column, m.Count, m.Ratio)
		}
		tw.Flush()
	}

	p.section("Quantiles")
	tw = tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if len(o.Summaries) > 0 {
		fmt.Fprint(tw, "\t")
		for _, q := range o.Summaries[0].Quantiles {
			fmt.Fprintf(tw, "%s\t", num(q.Q))
		}
		fmt.Fprintln(tw)
	}
	for _, s := range o.Summaries {
		fmt.Fprintf(tw, "%s\t", s.Column)
		for _, q := range s.Quantiles {
			fmt.Fprintf(tw, "%s\t", num(q.Value))
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()

	p.section("BOX PLOT")
	fmt.Fprintf(p.w, "%s\n", metric)
	fmt.Fprintln(p.w, BoxLine(o.Box, boxWidth))
	fmt.Fprintf(p.w, "min=%s q1=%s median=%s q3=%s max=%s outliers=%d\n",
		num(o.Box.Min), num(o.Box.Q1), num(o.Box.Median), num(o.Box.Q3), num(o.Box.Max), len(o.Box.Outliers))
}

// Report prints the group overviews followed by the hypothesis tests.
func (p *Printer) Report(r *model.Report) {
	p.Overview(r.Control, r.Metric)
	p.Overview(r.Test, r.Metric)
	fmt.Fprintln(p.w)
	p.Tests(r)
}

// Tests prints the group means, the assumption checks and the final test.
func (p *Printer) Tests(r *model.Report) {
	metric := strings.ToLower(string(r.Metric))
	fmt.Fprintf(p.w, " Mean of %s of %s group: %.4f\n", metric, r.Control.Name, r.ControlMean)
	fmt.Fprintf(p.w, " Mean of %s of %s group: %.4f\n", metric, r.Test.Name, r.TestMean)

	p.section("Normality (Shapiro-Wilk)")
	for _, n := range r.Normality {
		fmt.Fprintf(p.w, "%s: Test statistic = %.4f, p-Value = %.4f (%s)\n", n.Group, n.Statistic, n.PValue, assumption(n, "normality"))
	}

	p.section("Variance Homogeneity (Levene)")
	fmt.Fprintf(p.w, "Test statistic = %.4f, p-Value = %.4f (%s)\n", r.Variance.Statistic, r.Variance.PValue, assumption(r.Variance, "equal variance"))

	p.section("Hypothesis Test")
	switch r.Comparison.Kind {
	case model.MannWhitneyU:
		fmt.Fprintf(p.w, "Mann-Whitney U: uvalue = %.4f, pvalue = %.4f\n", r.Comparison.Statistic, r.Comparison.PValue)
	case model.WelchT:
		fmt.Fprintf(p.w, "Welch t-test: tvalue = %.4f, pvalue = %.4f, dof = %.4f\n", r.Comparison.Statistic, r.Comparison.PValue, r.Comparison.DoF)
	default:
		fmt.Fprintf(p.w, "Independent t-test: tvalue = %.4f, pvalue = %.4f\n", r.Comparison.Statistic, r.Comparison.PValue)
	}
	fmt.Fprintln(p.w, p.verdict.Render(r.Conclusion))
}

func assumption(t model.TestResult, name string) string {
	if t.Rejected {
		return "H0 rejected, " + name + " not met"
	}
	return "H0 not rejected, " + name + " met"
}

// History prints persisted analyses as a table.
func (p *Printer) History(recs []model.AnalysisRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(p.w, "No analyses recorded")
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tTIME\tMETRIC\tN\tTEST\tSTATISTIC\tP\tREJECTED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%.4f\t%.4f\t%t\n",
			r.RunID, r.Timestamp.Format("2006-01-02 15:04"), r.Metric, r.ControlN, r.TestN,
			r.TestKind, r.Statistic, r.PValue, r.Rejected)
	}
	tw.Flush()
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// BoxLine draws a horizontal box plot scaled between the smallest and
// largest value: whiskers as '-', the box as '=', the median as '|' and
// outliers as 'o'.
func BoxLine(b model.BoxPlot, width int) string {
	if math.IsNaN(b.Min) || width < 5 {
		return ""
	}
	span := b.Max - b.Min
	pos := func(v float64) int {
		if span == 0 {
			return width / 2
		}
		i := int(math.Round((v - b.Min) / span * float64(width-1)))
		return max(0, min(width-1, i))
	}

	line := []rune(strings.Repeat(" ", width))
	for i := pos(b.LowerWhisker); i <= pos(b.UpperWhisker); i++ {
		line[i] = '-'
	}
	for i := pos(b.Q1); i <= pos(b.Q3); i++ {
		line[i] = '='
	}
	line[pos(b.LowerWhisker)] = '|'
	line[pos(b.UpperWhisker)] = '|'
	line[pos(b.Q1)] = '['
	line[pos(b.Q3)] = ']'
	line[pos(b.Median)] = '|'
	for _, o := range b.Outliers {
		line[pos(o)] = 'o'
	}
	return strings.TrimRight(string(line), " ")
}
