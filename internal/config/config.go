package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "turbinecli/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// PipelineConfig contains the cleaning and anomaly detection policy.
// Defaults reproduce the documented policy: a per-turbine 1%-99% percentile
// fence extended by 50% on each end, and a 2 sigma anomaly threshold.
type PipelineConfig struct {
	LowPercentile    float64 `yaml:"low_percentile" envconfig:"LOW_PERCENTILE" default:"0.01" validate:"gte=0,lte=1"`
	HighPercentile   float64 `yaml:"high_percentile" envconfig:"HIGH_PERCENTILE" default:"0.99" validate:"gte=0,lte=1,gtefield=LowPercentile"`
	LowFenceFactor   float64 `yaml:"low_fence_factor" envconfig:"LOW_FENCE_FACTOR" default:"0.5" validate:"gte=0"`
	HighFenceFactor  float64 `yaml:"high_fence_factor" envconfig:"HIGH_FENCE_FACTOR" default:"1.5" validate:"gte=1"`
	AnomalySigma     float64 `yaml:"anomaly_sigma" envconfig:"ANOMALY_SIGMA" default:"2" validate:"gt=0"`
	LoaderParallelism int    `yaml:"loader_parallelism" envconfig:"LOADER_PARALLELISM" default:"4" validate:"gte=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/pipeline.log"`
}

// TelemetryConfig controls the OpenTelemetry trace and metric output.
type TelemetryConfig struct {
	EnableTracing bool `yaml:"enable_tracing" envconfig:"ENABLE_TRACING" default:"true"`
	EnableMetrics bool `yaml:"enable_metrics" envconfig:"ENABLE_METRICS" default:"true"`
}

// PathsConfig contains file system paths configuration. Relative paths are
// resolved against the executable directory by the Paths type.
type PathsConfig struct {
	InputDir  string `yaml:"input_dir" envconfig:"INPUT_DIR" default:"data/input"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"data/output"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// Load loads configuration from environment variables and an optional YAML
// config file. Environment variables take precedence over the file; struct
// tag defaults apply last.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("TURBINE", &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config file %s", configFile), err)
			}
			cfg = mergeConfigs(*fileCfg, cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration against the declared constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewValidationError("config validation failed", err)
	}
	return nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence).
// An env value equal to its default is treated as unset so that file values
// survive the merge unless explicitly overridden.
func mergeConfigs(fileConfig, envConfig Config) Config {
	defaults := Defaults()

	merged := envConfig
	if merged.Pipeline == defaults.Pipeline && fileConfig.Pipeline != (PipelineConfig{}) {
		merged.Pipeline = fileConfig.Pipeline
	}
	if merged.Logging == defaults.Logging && fileConfig.Logging != (LoggingConfig{}) {
		merged.Logging = fileConfig.Logging
	}
	if merged.Telemetry == defaults.Telemetry && fileConfig.Telemetry != (TelemetryConfig{}) {
		merged.Telemetry = fileConfig.Telemetry
	}
	if merged.Paths == defaults.Paths && fileConfig.Paths != (PathsConfig{}) {
		merged.Paths = fileConfig.Paths
	}
	return merged
}

// Defaults returns the configuration produced when no environment variables
// and no config file are present. Tests use this instead of Load.
func Defaults() Config {
	return Config{
		Pipeline: PipelineConfig{
			LowPercentile:     0.01,
			HighPercentile:    0.99,
			LowFenceFactor:    0.5,
			HighFenceFactor:   1.5,
			AnomalySigma:      2,
			LoaderParallelism: 4,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/pipeline.log",
		},
		Telemetry: TelemetryConfig{
			EnableTracing: true,
			EnableMetrics: true,
		},
		Paths: PathsConfig{
			InputDir:  "data/input",
			OutputDir: "data/output",
			LogsDir:   "logs",
		},
	}
}
