package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"bidtest/internal/archive"
	"bidtest/internal/config"
	"bidtest/internal/database"
)

// App bundles the dependencies shared by the commands.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Repo     database.Repository
	Archiver archive.Archiver
	closers  []func()
}

// Close releases connections opened by newApp.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

func newApp(ctx context.Context) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}

	app := &App{
		Config:   cfg,
		Logger:   newLogger(os.Stderr, cfg.Log),
		Repo:     database.NopRepository{},
		Archiver: archive.NopArchiver{},
	}

	if cfg.Database.Enabled {
		repo, err := database.NewPostgresRepository(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		app.Repo = repo
		app.closers = append(app.closers, repo.Close)
	}

	if cfg.Archive.Enabled {
		a := cfg.Archive
		arch, err := archive.NewMinIOArchiver(a.Endpoint, a.AccessKey, a.SecretKey, a.Bucket, a.Region, a.Secure)
		if err != nil {
			app.Close()
			return nil, err
		}
		if err := arch.EnsureBucket(ctx); err != nil {
			app.Close()
			return nil, err
		}
		app.Archiver = arch
	}

	app.Logger.Debug("Config loaded", "source", cfg.Dataset.Source, "metric", cfg.Analysis.Metric,
		"database", cfg.Database.Enabled, "archive", cfg.Archive.Enabled)
	return app, nil
}
