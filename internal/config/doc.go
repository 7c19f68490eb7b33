// Package config provides centralized configuration management for the
// turbine pipeline. It handles loading configuration from multiple sources,
// validation, and path resolution.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TURBINE_* for namespacing:
//
//	TURBINE_PATHS_INPUT_DIR=data/input
//	TURBINE_PATHS_OUTPUT_DIR=data/output
//	TURBINE_LOGGING_LEVEL=info
//	TURBINE_PIPELINE_ANOMALY_SIGMA=2
//
// # Path Management
//
// The Paths type resolves all file system paths relative to the executable
// location:
//
//	paths, err := config.GetPaths(cfg.Paths)
//	artifact := paths.GetOutputPath("cleaned_data.csv")
//
// # Validation
//
// All configuration is validated at load time with go-playground/validator;
// out-of-range percentile or sigma values fail fast before any file is read.
package config
