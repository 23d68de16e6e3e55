package core

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Config represents the application configuration
type Config struct {
	LogLevel  string          `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	Analysis  AnalyzerConfig  `yaml:"analysis"`
	Collector CollectorConfig `yaml:"collector"`
	Storage   StorageConfig   `yaml:"storage"`
	Web       WebConfig       `yaml:"web"`
	Alerts    AlertConfig     `yaml:"alerts"`
}

// CollectorConfig represents sample acquisition configuration
type CollectorConfig struct {
	Interval         time.Duration   `yaml:"interval" validate:"gte=100ms"`           // Time between samples
	AnalysisInterval time.Duration   `yaml:"analysis_interval" validate:"gte=0"`      // Periodic live analysis, 0 disables it
	WindowSize       int             `yaml:"window_size" validate:"gte=1,lte=100000"` // Max samples kept in the live window
	TopProcesses     int             `yaml:"top_processes" validate:"gte=0,lte=1000"` // Processes recorded per sample, by CPU
	NormalizeCPU     bool            `yaml:"normalize_process_cpu"`                   // Divide per-process CPU by the core count
	DiskPath         string          `yaml:"disk_path" validate:"required"`           // Filesystem sampled for disk usage
	Docker           DockerConfig    `yaml:"docker"`
	SampleLog        SampleLogConfig `yaml:"sample_log"`
}

// DockerConfig represents Docker monitoring configuration
type DockerConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Fold container stats into samples
	SocketPath string `yaml:"socket_path"` // Docker socket path
}

// StorageConfig represents the report archive configuration
type StorageConfig struct {
	Enabled         bool   `yaml:"enabled"`
	SQLitePath      string `yaml:"sqlite_path" validate:"required_if=Enabled true"`
	SQLiteWAL       bool   `yaml:"sqlite_wal"`
	SQLiteCacheSize int    `yaml:"sqlite_cache_size" validate:"gte=0"`
	KeepDays        int    `yaml:"keep_days" validate:"gte=0,lte=365"`
}

// WebConfig represents HTTP server configuration
type WebConfig struct {
	Host      string  `yaml:"host"`
	Port      int     `yaml:"port" validate:"gte=1,lte=65535"`
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"` // Requests per second per client, 0 disables
	RateBurst int     `yaml:"rate_burst" validate:"gte=0"`
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Analysis: DefaultAnalyzerConfig(),
		Collector: CollectorConfig{
			Interval:         time.Second,
			AnalysisInterval: time.Minute,
			WindowSize:       3600,
			TopProcesses:     20,
			DiskPath:         "/",
			Docker: DockerConfig{
				Enabled:    false,
				SocketPath: "/var/run/docker.sock",
			},
			SampleLog: SampleLogConfig{
				Enabled:       false,
				Path:          "~/.sysdiag/samples.jsonl",
				MaxFileSizeMB: 50,
				MaxFiles:      5,
				Compress:      true,
			},
		},
		Storage: GetDefaultStorageConfig(),
		Web: WebConfig{
			Host:      "localhost",
			Port:      9999,
			RateLimit: 10,
			RateBurst: 20,
		},
		Alerts: AlertConfig{
			Enabled:          false,
			SuppressDuration: 30,
			Notifiers:        map[string]NotifierConfig{},
		},
	}
}

// GetDefaultStorageConfig returns default storage configuration
func GetDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Enabled:         true,
		SQLitePath:      "~/.sysdiag/reports.db",
		SQLiteWAL:       true,
		SQLiteCacheSize: 2000,
		KeepDays:        30,
	}
}

// ValidateConfig validates the entire configuration
func ValidateConfig(config Config) error {
	if err := ValidateAnalyzerConfig(config.Analysis); err != nil {
		return err
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for name, n := range config.Alerts.Notifiers {
		if _, err := NewNotifier(n); err != nil {
			return fmt.Errorf("%w: notifier %s: %v", ErrInvalidConfig, name, err)
		}
	}
	return nil
}
