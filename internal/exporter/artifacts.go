package exporter

import (
	"context"
	"log/slog"

	"turbinecli/internal/config"
	"turbinecli/pkg/contracts/domain"
)

// ArtifactWriter persists the three pipeline artifacts: cleaned data, daily
// summary statistics, and anomalies. Artifact names and shapes are fixed;
// re-running the pipeline overwrites the previous run's files.
type ArtifactWriter struct {
	paths  *config.Paths
	writer *CSVWriter
	logger *slog.Logger
}

// NewArtifactWriter creates an artifact writer rooted at the configured
// output directory.
func NewArtifactWriter(paths *config.Paths, logger *slog.Logger) *ArtifactWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactWriter{
		paths:  paths,
		writer: NewCSVWriter(logger),
		logger: logger,
	}
}

// WriteAll persists all three artifacts. It fails on the first storage
// error; by then computation is complete, so nothing is half-derived, but
// artifacts from the failed run may be partially written.
func (w *ArtifactWriter) WriteAll(ctx context.Context, readings []domain.Reading, stats []domain.DailyStatistic, anomalies []domain.AnomalyRecord) error {
	if err := w.WriteCleanedData(ctx, readings); err != nil {
		return err
	}
	if err := w.WriteDailyStats(ctx, stats); err != nil {
		return err
	}
	if err := w.WriteAnomalies(ctx, anomalies); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "all artifacts written",
		slog.String("output_dir", w.paths.OutputDir),
		slog.Int("cleaned_rows", len(readings)),
		slog.Int("stat_rows", len(stats)),
		slog.Int("anomaly_rows", len(anomalies)))

	return nil
}

// WriteCleanedData writes the cleaned readings with the input schema plus
// the source file column.
func (w *ArtifactWriter) WriteCleanedData(ctx context.Context, readings []domain.Reading) error {
	headers := []string{
		config.ColumnTimestamp,
		config.ColumnTurbineID,
		config.ColumnPowerOutput,
		"source_file",
	}

	records := make([][]string, 0, len(readings))
	for _, r := range readings {
		records = append(records, []string{
			formatTimestamp(r.Timestamp),
			r.TurbineID,
			formatPower(r.PowerOutput),
			r.SourceFile,
		})
	}

	return w.writer.WriteSimpleCSV(w.paths.CleanedDataCSV, headers, records)
}

// WriteDailyStats writes the per-(turbine, day) summary statistics.
func (w *ArtifactWriter) WriteDailyStats(ctx context.Context, stats []domain.DailyStatistic) error {
	headers := []string{config.ColumnTurbineID, "day", "min", "max", "mean"}

	records := make([][]string, 0, len(stats))
	for _, s := range stats {
		records = append(records, []string{
			s.TurbineID,
			s.Day,
			formatStat(s.Min),
			formatStat(s.Max),
			formatStat(s.Mean),
		})
	}

	return w.writer.WriteSimpleCSV(w.paths.SummaryStatisticsCSV, headers, records)
}

// WriteAnomalies writes the flagged readings together with the day
// statistics that justified each flag.
func (w *ArtifactWriter) WriteAnomalies(ctx context.Context, anomalies []domain.AnomalyRecord) error {
	headers := []string{
		config.ColumnTimestamp,
		config.ColumnTurbineID,
		config.ColumnPowerOutput,
		"source_file",
		"day_mean",
		"day_stddev",
	}

	records := make([][]string, 0, len(anomalies))
	for _, a := range anomalies {
		records = append(records, []string{
			formatTimestamp(a.Reading.Timestamp),
			a.Reading.TurbineID,
			formatPower(a.Reading.PowerOutput),
			a.Reading.SourceFile,
			formatStat(a.DayMean),
			formatStat(a.DayStdDev),
		})
	}

	return w.writer.WriteSimpleCSV(w.paths.AnomaliesCSV, headers, records)
}
