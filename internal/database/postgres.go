package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bidtest/internal/model"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS ab_test_analyses (
	id SERIAL PRIMARY KEY,
	run_id VARCHAR(64) NOT NULL UNIQUE,
	timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	source TEXT NOT NULL,
	metric VARCHAR(20) NOT NULL,
	control_n INTEGER NOT NULL,
	test_n INTEGER NOT NULL,
	control_mean DOUBLE PRECISION NOT NULL,
	test_mean DOUBLE PRECISION NOT NULL,
	control_shapiro_p DOUBLE PRECISION NOT NULL,
	test_shapiro_p DOUBLE PRECISION NOT NULL,
	levene_p DOUBLE PRECISION NOT NULL,
	test_kind VARCHAR(20) NOT NULL,
	statistic DOUBLE PRECISION NOT NULL,
	p_value DOUBLE PRECISION NOT NULL,
	rejected BOOLEAN NOT NULL
);`

// PostgresRepository stores analyses in PostgreSQL.
type PostgresRepository struct {
	Pool *pgxpool.Pool
}

// NewPostgresRepository connects to dsn and verifies the connection.
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresRepository{Pool: pool}, nil
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() {
	r.Pool.Close()
}

// Migrate creates the analyses table when it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.Pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create ab_test_analyses: %w", err)
	}
	return nil
}

// SaveAnalysis inserts one analysis record.
func (r *PostgresRepository) SaveAnalysis(ctx context.Context, rec model.AnalysisRecord) error {
	const q = `
	INSERT INTO ab_test_analyses (
		run_id, timestamp, source, metric, control_n, test_n, control_mean, test_mean,
		control_shapiro_p, test_shapiro_p, levene_p, test_kind, statistic, p_value, rejected
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.Pool.Exec(ctx, q,
		rec.RunID, rec.Timestamp, rec.Source, rec.Metric, rec.ControlN, rec.TestN,
		rec.ControlMean, rec.TestMean, rec.ControlShapiroP, rec.TestShapiroP, rec.LeveneP,
		rec.TestKind, rec.Statistic, rec.PValue, rec.Rejected,
	)
	if err != nil {
		return fmt.Errorf("insert analysis %s: %w", rec.RunID, err)
	}
	return nil
}

// ListAnalyses returns the most recent analyses, newest first.
func (r *PostgresRepository) ListAnalyses(ctx context.Context, limit int) ([]model.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.Pool.Query(ctx, `SELECT * FROM ab_test_analyses ORDER BY timestamp DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.AnalysisRecord])
	if err != nil {
		return nil, fmt.Errorf("scan analyses: %w", err)
	}
	return recs, nil
}
