package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"bidtest/internal/model"
)

// ExcelSource reads the control and test groups from two sheets of a
// workbook.
type ExcelSource struct {
	logger       *slog.Logger
	path         string
	controlSheet string
	testSheet    string
}

// NewExcelSource creates a new ExcelSource.
func NewExcelSource(logger *slog.Logger, path, controlSheet, testSheet string) *ExcelSource {
	return &ExcelSource{logger: logger, path: path, controlSheet: controlSheet, testSheet: testSheet}
}

func (e *ExcelSource) Name() string {
	return "excel:" + e.path
}

// Load opens the workbook and reads both sheets.
func (e *ExcelSource) Load(ctx context.Context) (control, test model.Group, err error) {
	f, err := excelize.OpenFile(e.path)
	if err != nil {
		return control, test, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("ExcelSource: failed to close workbook", "error", cerr)
		}
	}()

	if control, err = e.readSheet(ctx, f, e.controlSheet, ControlGroup); err != nil {
		return control, test, err
	}
	if test, err = e.readSheet(ctx, f, e.testSheet, TestGroup); err != nil {
		return control, test, err
	}
	return control, test, nil
}

func (e *ExcelSource) readSheet(ctx context.Context, f *excelize.File, sheet, group string) (model.Group, error) {
	if err := ctx.Err(); err != nil {
		return model.Group{Name: group}, err
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return model.Group{Name: group}, fmt.Errorf("sheet %q not found in %s", sheet, e.path)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return model.Group{Name: group}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	g, err := readTable(group, rows)
	if err != nil {
		return g, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	e.logger.Info("ExcelSource: sheet loaded", "sheet", sheet, "group", group, "rows", len(g.Rows))
	return g, nil
}
