package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Dataset  DatasetConfig
	Analysis AnalysisConfig
	Stream   StreamConfig
	Database DatabaseConfig
	Archive  ArchiveConfig
	Log      LogConfig
}

// DatasetConfig defines where the two experiment groups are read from.
type DatasetConfig struct {
	Source       string `mapstructure:"source"`
	Path         string `mapstructure:"path"`
	ControlSheet string `mapstructure:"control_sheet"`
	TestSheet    string `mapstructure:"test_sheet"`
	ControlCSV   string `mapstructure:"control_csv"`
	TestCSV      string `mapstructure:"test_csv"`
}

// AnalysisConfig defines the hypothesis-testing settings.
type AnalysisConfig struct {
	Metric       string    `mapstructure:"metric"`
	Alpha        float64   `mapstructure:"alpha"`
	LeveneCenter string    `mapstructure:"levene_center"`
	ForceTTest   bool      `mapstructure:"force_ttest"`
	HeadRows     int       `mapstructure:"head_rows"`
	Quantiles    []float64 `mapstructure:"quantiles"`
}

// StreamConfig defines the live observation feed.
type StreamConfig struct {
	URL          string `mapstructure:"url"`
	RowsPerGroup int    `mapstructure:"rows_per_group"`
	TimeoutSec   int    `mapstructure:"timeout_sec"`
}

// DatabaseConfig defines the database connection settings.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.DBName)
}

// ArchiveConfig defines the object store receiving report archives.
type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string
	Region    string
	Secure    bool
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level string
}

// SlogLevel maps the configured level onto slog; unknown values mean info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset.source", "excel")
	v.SetDefault("dataset.path", "ab_testing.xlsx")
	v.SetDefault("dataset.control_sheet", "Control Group")
	v.SetDefault("dataset.test_sheet", "Test Group")
	v.SetDefault("dataset.control_csv", "")
	v.SetDefault("dataset.test_csv", "")

	v.SetDefault("analysis.metric", "Purchase")
	v.SetDefault("analysis.alpha", 0.05)
	v.SetDefault("analysis.levene_center", "median")
	v.SetDefault("analysis.force_ttest", false)
	v.SetDefault("analysis.head_rows", 5)
	v.SetDefault("analysis.quantiles", []float64{0, 0.05, 0.50, 0.95, 0.99, 1})

	v.SetDefault("stream.url", "")
	v.SetDefault("stream.rows_per_group", 40)
	v.SetDefault("stream.timeout_sec", 60)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "bidtest")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "bidtest")

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.endpoint", "localhost:9000")
	v.SetDefault("archive.access_key", "")
	v.SetDefault("archive.secret_key", "")
	v.SetDefault("archive.bucket", "bidtest-reports")
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.secure", false)

	v.SetDefault("log.level", "info")
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; defaults and environment apply.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}
	return config, config.Validate()
}

// Validate checks values viper cannot type-check.
func (c Config) Validate() error {
	if c.Analysis.Alpha <= 0 || c.Analysis.Alpha >= 1 {
		return fmt.Errorf("analysis.alpha must be in (0, 1), got %v", c.Analysis.Alpha)
	}
	for _, q := range c.Analysis.Quantiles {
		if q < 0 || q > 1 {
			return fmt.Errorf("analysis.quantiles: %v is outside [0, 1]", q)
		}
	}
	if c.Stream.RowsPerGroup < 0 {
		return fmt.Errorf("stream.rows_per_group must not be negative")
	}
	return nil
}
