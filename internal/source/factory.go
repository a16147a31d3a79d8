package source

import (
	"fmt"
	"log/slog"
	"time"

	"bidtest/internal/config"
)

// NewSource creates a dataset source based on the given kind and configuration.
func NewSource(kind string, logger *slog.Logger, cfg *config.Config) (Source, error) {
	switch kind {
	case "excel", "xlsx":
		return NewExcelSource(logger, cfg.Dataset.Path, cfg.Dataset.ControlSheet, cfg.Dataset.TestSheet), nil
	case "csv":
		if cfg.Dataset.ControlCSV == "" || cfg.Dataset.TestCSV == "" {
			return nil, fmt.Errorf("csv source needs dataset.control_csv and dataset.test_csv")
		}
		return NewCSVSource(logger, cfg.Dataset.ControlCSV, cfg.Dataset.TestCSV), nil
	case "stream":
		if cfg.Stream.URL == "" {
			return nil, fmt.Errorf("stream source needs stream.url")
		}
		timeout := time.Duration(cfg.Stream.TimeoutSec) * time.Second
		return NewStreamSource(logger, cfg.Stream.URL, cfg.Stream.RowsPerGroup, timeout), nil
	default:
		return nil, fmt.Errorf("unknown source: %s", kind)
	}
}
