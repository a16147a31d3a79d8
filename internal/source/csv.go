package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"bidtest/internal/model"
)

// CSVSource reads each group from its own CSV file.
type CSVSource struct {
	logger      *slog.Logger
	controlPath string
	testPath    string
}

// NewCSVSource creates a new CSVSource.
func NewCSVSource(logger *slog.Logger, controlPath, testPath string) *CSVSource {
	return &CSVSource{logger: logger, controlPath: controlPath, testPath: testPath}
}

func (c *CSVSource) Name() string {
	return "csv:" + c.controlPath + "," + c.testPath
}

func (c *CSVSource) Load(ctx context.Context) (control, test model.Group, err error) {
	if control, err = c.readFile(ctx, c.controlPath, ControlGroup); err != nil {
		return control, test, err
	}
	if test, err = c.readFile(ctx, c.testPath, TestGroup); err != nil {
		return control, test, err
	}
	return control, test, nil
}

func (c *CSVSource) readFile(ctx context.Context, path, group string) (model.Group, error) {
	if err := ctx.Err(); err != nil {
		return model.Group{Name: group}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Group{Name: group}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return model.Group{Name: group}, fmt.Errorf("parse %s: %w", path, err)
	}
	g, err := readTable(group, records)
	if err != nil {
		return g, fmt.Errorf("%s: %w", path, err)
	}
	c.logger.Info("CSVSource: file loaded", "path", path, "group", group, "rows", len(g.Rows))
	return g, nil
}
