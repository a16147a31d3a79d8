package abtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bidtest/internal/archive"
	"bidtest/internal/config"
	"bidtest/internal/database"
	"bidtest/internal/model"
	"bidtest/internal/stats"
)

var ErrEmptyGroup = errors.New("abtest: group has no observations")

// Engine runs the assumption checks and the hypothesis test comparing the
// control and test groups.
type Engine struct {
	logger   *slog.Logger
	repo     database.Repository
	archiver archive.Archiver
	cfg      *config.Config
	now      func() time.Time
}

// NewEngine creates a new instance of the Engine.
func NewEngine(logger *slog.Logger, repo database.Repository, archiver archive.Archiver, cfg *config.Config) *Engine {
	return &Engine{
		logger:   logger,
		repo:     repo,
		archiver: archiver,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Overview builds the data check of a group: shape, head, missing values,
// quantiles and a box plot of the metric.
func (e *Engine) Overview(g model.Group, metric model.Column) model.GroupOverview {
	rows, cols := g.Shape()
	qs := e.cfg.Analysis.Quantiles
	if len(qs) == 0 {
		qs = stats.DefaultQuantiles
	}
	return model.GroupOverview{
		Name:      g.Name,
		Rows:      rows,
		Cols:      cols,
		Head:      g.Head(e.cfg.Analysis.HeadRows),
		Missing:   stats.MissingValues(g),
		Summaries: stats.DescribeGroup(g, qs),
		Box:       stats.Box(g.Column(metric)),
	}
}

// Run performs the full analysis of control against test and records the
// outcome.
func (e *Engine) Run(ctx context.Context, source string, control, test model.Group) (*model.Report, error) {
	metric, err := model.ParseColumn(e.cfg.Analysis.Metric)
	if err != nil {
		return nil, err
	}
	center, err := stats.ParseCenter(e.cfg.Analysis.LeveneCenter)
	if err != nil {
		return nil, err
	}
	for _, g := range []model.Group{control, test} {
		if len(g.Rows) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyGroup, g.Name)
		}
	}

	alpha := e.cfg.Analysis.Alpha
	a, b := control.Column(metric), test.Column(metric)
	report := &model.Report{
		ID:          uuid.NewString(),
		CreatedAt:   e.now().UTC(),
		Source:      source,
		Metric:      metric,
		Alpha:       alpha,
		Control:     e.Overview(control, metric),
		Test:        e.Overview(test, metric),
		ControlMean: stats.Mean(a),
		TestMean:    stats.Mean(b),
	}

	// Normality assumption
	normal := true
	for _, g := range []struct {
		name string
		xs   []float64
	}{{control.Name, a}, {test.Name, b}} {
		w, p, err := stats.Shapiro(g.xs)
		if err != nil {
			return nil, fmt.Errorf("shapiro %s: %w", g.name, err)
		}
		res := model.TestResult{Kind: model.ShapiroWilk, Group: g.name, Statistic: w, PValue: p, Rejected: p < alpha}
		report.Normality = append(report.Normality, res)
		normal = normal && !res.Rejected
		e.logger.Debug("Normality test", "group", g.name, "statistic", w, "p", p)
	}

	// Variance homogeneity
	lev, err := stats.Levene(center, a, b)
	if err != nil {
		return nil, fmt.Errorf("levene: %w", err)
	}
	report.Variance = model.TestResult{Kind: model.Levene, Statistic: lev.Statistic, PValue: lev.P, DoF: lev.DoF, Rejected: lev.P < alpha}
	equalVar := !report.Variance.Rejected

	kind := chooseTest(normal, equalVar, e.cfg.Analysis.ForceTTest)
	var res stats.Result
	switch kind {
	case model.StudentT:
		res, err = stats.TTest(a, b, true)
	case model.WelchT:
		res, err = stats.TTest(a, b, false)
	default:
		res, err = stats.MannWhitney(a, b)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	report.Comparison = model.TestResult{Kind: kind, Statistic: res.Statistic, PValue: res.P, DoF: res.DoF, Rejected: res.P < alpha}
	report.Conclusion = conclusion(report)

	e.logger.Info("Analysis complete",
		"id", report.ID,
		"metric", metric,
		"test", kind,
		"statistic", res.Statistic,
		"p", res.P,
		"rejected", report.Comparison.Rejected,
	)

	if err := e.repo.SaveAnalysis(ctx, report.Record()); err != nil {
		e.logger.Error("Failed to save analysis", "id", report.ID, "error", err)
	}
	if err := e.archiver.Archive(ctx, report.ID, report, report.CreatedAt); err != nil {
		e.logger.Error("Failed to archive report", "id", report.ID, "error", err)
	}
	return report, nil
}

// chooseTest picks the comparison test from the assumption checks.
// Non-normal data falls back to the rank test.
func chooseTest(normal, equalVar, force bool) model.TestKind {
	switch {
	case force:
		return model.StudentT
	case !normal:
		return model.MannWhitneyU
	case equalVar:
		return model.StudentT
	default:
		return model.WelchT
	}
}

func conclusion(r *model.Report) string {
	if r.Comparison.Rejected {
		return fmt.Sprintf("p-value %.4f < %.2f: H0 rejected. There is a statistically significant difference in mean %s between the %s and %s groups.",
			r.Comparison.PValue, r.Alpha, r.Metric, r.Control.Name, r.Test.Name)
	}
	return fmt.Sprintf("p-value %.4f >= %.2f: H0 cannot be rejected. There is no statistically significant difference in mean %s between the %s and %s groups.",
		r.Comparison.PValue, r.Alpha, r.Metric, r.Control.Name, r.Test.Name)
}
