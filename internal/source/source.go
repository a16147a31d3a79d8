package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bidtest/internal/model"
)

// Source defines the standard interface for all dataset sources.
type Source interface {
	Name() string
	Load(ctx context.Context) (control, test model.Group, err error)
}

// Group names used for the two arms of the experiment.
const (
	ControlGroup = "control"
	TestGroup    = "test"
)

// header maps the column positions of a header row onto metric columns.
// Unrecognised headers are skipped.
type header map[int]model.Column

func parseHeader(cells []string) (header, error) {
	h := make(header)
	seen := make(map[model.Column]bool)
	for i, name := range cells {
		c, err := model.ParseColumn(name)
		if err != nil {
			continue
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[c] = true
		h[i] = c
	}
	if len(h) == 0 {
		return nil, fmt.Errorf("no known columns in header %v", cells)
	}
	return h, nil
}

// row converts one record into an observation. Columns absent from the
// header and blank cells are missing.
func (h header) row(cells []string) (model.Observation, error) {
	obs := model.MissingObservation()
	for i, c := range h {
		if i >= len(cells) {
			continue
		}
		raw := strings.TrimSpace(cells[i])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return obs, fmt.Errorf("column %s: %q is not a number", c, raw)
		}
		obs.Set(c, v)
	}
	return obs, nil
}

// readTable turns a header row plus data rows into a group.
func readTable(name string, records [][]string) (model.Group, error) {
	g := model.Group{Name: name}
	if len(records) == 0 {
		return g, fmt.Errorf("%s: no header row", name)
	}
	h, err := parseHeader(records[0])
	if err != nil {
		return g, fmt.Errorf("%s: %w", name, err)
	}
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		obs, err := h.row(rec)
		if err != nil {
			return g, fmt.Errorf("%s row %d: %w", name, i+2, err)
		}
		g.Rows = append(g.Rows, obs)
	}
	return g, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
