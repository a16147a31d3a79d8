package database

import (
	"context"

	"bidtest/internal/model"
)

// Repository defines the standard interface for database operations.
type Repository interface {
	Migrate(ctx context.Context) error
	SaveAnalysis(ctx context.Context, rec model.AnalysisRecord) error
	ListAnalyses(ctx context.Context, limit int) ([]model.AnalysisRecord, error)
}

// NopRepository discards every record. It is used when no database is
// configured.
type NopRepository struct{}

func (NopRepository) Migrate(context.Context) error { return nil }

func (NopRepository) SaveAnalysis(context.Context, model.AnalysisRecord) error { return nil }

func (NopRepository) ListAnalyses(context.Context, int) ([]model.AnalysisRecord, error) {
	return nil, nil
}
