package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all tool configuration.
type Config struct {
	Scan    ScanConfig    `mapstructure:"scan"`
	Infer   InferConfig   `mapstructure:"infer"`
	Graph   GraphConfig   `mapstructure:"graph"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Log     LogConfig     `mapstructure:"log"`
}

type ScanConfig struct {
	Workers      int   `mapstructure:"workers"`
	MaxFileBytes int64 `mapstructure:"max_file_bytes"`
}

type InferConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// GraphConfig holds Neo4j connection settings for graph export.
type GraphConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
	Environment  string  `mapstructure:"environment"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Scan:    ScanConfig{Workers: 0, MaxFileBytes: 1 << 20},
		Infer:   InferConfig{MinConfidence: 90},
		Tracing: TracingConfig{SampleRate: 1.0, Environment: "development"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Scan.Workers < 0 {
		warnings = append(warnings, fmt.Sprintf("scan workers %d is negative, falling back to GOMAXPROCS", c.Scan.Workers))
	}
	if c.Infer.MinConfidence < 0 || c.Infer.MinConfidence > 100 {
		warnings = append(warnings, fmt.Sprintf("infer min_confidence %.1f is outside [0, 100]", c.Infer.MinConfidence))
	}
	if c.Graph.URI != "" && c.Graph.Username == "" {
		warnings = append(warnings, "graph uri is configured but username is empty")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		warnings = append(warnings, fmt.Sprintf("tracing sample_rate %.2f is outside [0.0, 1.0]", c.Tracing.SampleRate))
	}

	return warnings
}

// Load reads configuration from file and environment. An empty path or a
// missing file yields defaults; BULWARK_* environment variables override
// either way.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BULWARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	v.SetDefault("scan.workers", cfg.Scan.Workers)
	v.SetDefault("scan.max_file_bytes", cfg.Scan.MaxFileBytes)
	v.SetDefault("infer.min_confidence", cfg.Infer.MinConfidence)
	v.SetDefault("tracing.sample_rate", cfg.Tracing.SampleRate)
	v.SetDefault("tracing.environment", cfg.Tracing.Environment)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}
