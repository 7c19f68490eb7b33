package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for ALL file paths in the application.
type Paths struct {
	ExecutableDir string
	InputDir      string
	OutputDir     string
	LogsDir       string

	// Well-known output artifacts
	CleanedDataCSV       string
	SummaryStatisticsCSV string
	AnomaliesCSV         string
}

// GetPaths returns the application paths for the given configuration.
// Relative paths are resolved against the executable directory, never the
// current working directory, so the tool behaves the same wherever it is
// invoked from.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	exeDir := filepath.Dir(exe)

	return NewPaths(exeDir, cfg), nil
}

// NewPaths builds a Paths rooted at baseDir. Absolute configured paths are
// kept as-is; relative ones are joined onto baseDir.
func NewPaths(baseDir string, cfg PathsConfig) *Paths {
	resolve := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	outputDir := resolve(cfg.OutputDir, DefaultOutputDir)

	return &Paths{
		ExecutableDir: baseDir,
		InputDir:      resolve(cfg.InputDir, DefaultInputDir),
		OutputDir:     outputDir,
		LogsDir:       resolve(cfg.LogsDir, DefaultLogsDir),

		CleanedDataCSV:       filepath.Join(outputDir, CleanedDataCSV),
		SummaryStatisticsCSV: filepath.Join(outputDir, SummaryStatisticsCSV),
		AnomaliesCSV:         filepath.Join(outputDir, AnomaliesCSV),
	}
}

// EnsureDirectories creates the output and logs directories if missing.
// The input directory is deliberately not created: an absent input location
// is the caller's problem to notice, not something to mask.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetLogPath returns the full path for a log file name.
func (p *Paths) GetLogPath(name string) string {
	return filepath.Join(p.LogsDir, name)
}

// GetOutputPath returns the full path for an output artifact name.
func (p *Paths) GetOutputPath(name string) string {
	return filepath.Join(p.OutputDir, name)
}
