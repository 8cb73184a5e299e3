package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"fieldpulse/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Scoring ScoringConfig `yaml:"scoring" envconfig:"SCORING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"60s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"50"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"25"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/fieldpulse.log"`
}

// ScoringConfig carries the default weight vector and credibility constant
// used when a request supplies none. Weights are fractions; the score
// engine re-normalizes them before use.
type ScoringConfig struct {
	WeightInRange float64 `yaml:"weight_in_range" envconfig:"WEIGHT_IN_RANGE" default:"0.40"`
	WeightSet1d   float64 `yaml:"weight_set_1d" envconfig:"WEIGHT_SET_1D" default:"0.25"`
	WeightApptEq  float64 `yaml:"weight_appt_eq" envconfig:"WEIGHT_APPT_EQ" default:"0.25"`
	WeightMedian  float64 `yaml:"weight_median" envconfig:"WEIGHT_MEDIAN" default:"0.10"`
	CredibilityK  float64 `yaml:"credibility_k" envconfig:"CREDIBILITY_K" default:"100"`
}

// Weights returns the configured default weight vector
func (s ScoringConfig) Weights() domain.Weights {
	return domain.Weights{
		InRange: s.WeightInRange,
		Set1d:   s.WeightSet1d,
		ApptEq:  s.WeightApptEq,
		Median:  s.WeightMedian,
	}
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"data/reports"`
}

// Load loads configuration from defaults and environment variables, then
// overlays the optional YAML config file.
func Load() (*Config, error) {
	return LoadFrom(configFilePath())
}

// LoadFrom loads configuration, reading the YAML file at path when it
// exists. File values override both defaults and environment values.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("FIELDPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Scoring.CredibilityK <= 0 {
		return fmt.Errorf("credibility constant must be positive, got %v", c.Scoring.CredibilityK)
	}
	return nil
}

func configFilePath() string {
	if p := os.Getenv("FIELDPULSE_CONFIG"); p != "" {
		return p
	}
	return "fieldpulse.yaml"
}
