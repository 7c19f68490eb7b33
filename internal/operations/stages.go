package operations

import (
	"context"
	"fmt"
	"log/slog"

	"turbinecli/internal/config"
	"turbinecli/internal/dataprocessing"
	"turbinecli/internal/errors"
	"turbinecli/internal/exporter"
)

// LoadStep reads the raw input files into the run state.
type LoadStep struct {
	files       []string
	inputDir    string
	parallelism int
}

// NewLoadStep creates the loading step. When files is empty the input
// directory is scanned for supported files instead.
func NewLoadStep(files []string, inputDir string, parallelism int) *LoadStep {
	return &LoadStep{files: files, inputDir: inputDir, parallelism: parallelism}
}

func (s *LoadStep) ID() string   { return StepIDLoad }
func (s *LoadStep) Name() string { return StepNameLoad }

func (s *LoadStep) Validate(state *State) error {
	if len(s.files) == 0 && s.inputDir == "" {
		return errors.NewValidationError("no input files or input directory configured", nil)
	}
	return nil
}

func (s *LoadStep) Execute(ctx context.Context, state *State) error {
	files := s.files
	if len(files) == 0 {
		discovered, err := dataprocessing.DiscoverInputFiles(s.inputDir)
		if err != nil {
			return err
		}
		files = discovered
	}

	raw, err := dataprocessing.LoadFiles(ctx, files, s.parallelism)
	if err != nil {
		return err
	}

	state.InputFiles = files
	state.Raw = raw
	return nil
}

// CleanStep turns the raw rows into cleaned readings.
type CleanStep struct {
	cleaner *dataprocessing.Cleaner
}

// NewCleanStep creates the cleaning step with the configured policy.
func NewCleanStep(logger *slog.Logger, cfg config.PipelineConfig) *CleanStep {
	return &CleanStep{cleaner: dataprocessing.NewCleaner(logger, cfg)}
}

func (s *CleanStep) ID() string   { return StepIDClean }
func (s *CleanStep) Name() string { return StepNameClean }

func (s *CleanStep) Validate(state *State) error {
	if state.Raw == nil {
		return errors.NewValidationError("cleaning requires loaded raw readings", nil)
	}
	return nil
}

func (s *CleanStep) Execute(ctx context.Context, state *State) error {
	readings, summary, err := s.cleaner.Clean(ctx, state.Raw)
	if err != nil {
		return err
	}

	state.Readings = readings
	state.Summary = summary
	return nil
}

// StatsStep computes the per-(turbine, day) statistics.
type StatsStep struct{}

// NewStatsStep creates the statistics step.
func NewStatsStep() *StatsStep { return &StatsStep{} }

func (s *StatsStep) ID() string   { return StepIDStats }
func (s *StatsStep) Name() string { return StepNameStats }

func (s *StatsStep) Validate(state *State) error {
	if state.Readings == nil {
		return errors.NewValidationError("statistics require cleaned readings", nil)
	}
	return nil
}

func (s *StatsStep) Execute(ctx context.Context, state *State) error {
	state.Stats = dataprocessing.ComputeDailyStats(ctx, state.Readings)
	return nil
}

// AnomalyStep flags readings deviating from their day's mean.
type AnomalyStep struct {
	sigma float64
}

// NewAnomalyStep creates the anomaly detection step.
func NewAnomalyStep(sigma float64) *AnomalyStep {
	return &AnomalyStep{sigma: sigma}
}

func (s *AnomalyStep) ID() string   { return StepIDAnomalies }
func (s *AnomalyStep) Name() string { return StepNameAnomalies }

func (s *AnomalyStep) Validate(state *State) error {
	if state.Readings == nil || state.Stats == nil {
		return errors.NewValidationError("anomaly detection requires cleaned readings and daily statistics", nil)
	}
	if s.sigma <= 0 {
		return errors.NewValidationError(fmt.Sprintf("invalid sigma threshold %v", s.sigma), nil)
	}
	return nil
}

func (s *AnomalyStep) Execute(ctx context.Context, state *State) error {
	state.Anomalies = dataprocessing.DetectAnomalies(ctx, state.Readings, state.Stats, s.sigma)
	return nil
}

// PersistStep writes the three output artifacts.
type PersistStep struct {
	writer *exporter.ArtifactWriter
}

// NewPersistStep creates the persistence step.
func NewPersistStep(writer *exporter.ArtifactWriter) *PersistStep {
	return &PersistStep{writer: writer}
}

func (s *PersistStep) ID() string   { return StepIDPersist }
func (s *PersistStep) Name() string { return StepNamePersist }

func (s *PersistStep) Validate(state *State) error {
	// Anomalies may legitimately be empty; readings and stats must exist.
	if state.Readings == nil || state.Stats == nil {
		return errors.NewValidationError("persistence requires computed pipeline outputs", nil)
	}
	return nil
}

func (s *PersistStep) Execute(ctx context.Context, state *State) error {
	return s.writer.WriteAll(ctx, state.Readings, state.Stats, state.Anomalies)
}
