package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"turbinecli/internal/config"
	"turbinecli/pkg/contracts/domain"
)

// timestampLayouts are the accepted input timestamp formats, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Cleaner turns raw readings into cleaned ones. The policy is fixed per run:
// exact-duplicate removal, UTC timestamp normalization, per-turbine median
// imputation of missing power values, and a per-turbine percentile fence of
// [p_low * lowFactor, p_high * highFactor] for outlier removal. Negative
// power is always an outlier regardless of the fence.
type Cleaner struct {
	logger *slog.Logger
	cfg    config.PipelineConfig
}

// NewCleaner creates a cleaner with the given policy configuration.
func NewCleaner(logger *slog.Logger, cfg config.PipelineConfig) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger, cfg: cfg}
}

// parsedRow is a reading between timestamp parsing and imputation; the
// power value may still be missing.
type parsedRow struct {
	reading  domain.Reading
	hasPower bool
}

// Clean applies the full cleaning sequence to the raw rows and returns the
// cleaned readings sorted by (turbine_id, timestamp, source_file) together
// with a summary of everything that was removed or repaired. Row-level
// problems never fail the run.
func (c *Cleaner) Clean(ctx context.Context, raw []domain.RawReading) ([]domain.Reading, domain.CleanSummary, error) {
	summary := domain.CleanSummary{RawRows: len(raw)}

	deduped := c.deduplicate(raw, &summary)
	parsed := c.parseRows(ctx, deduped, &summary)
	imputed := c.impute(ctx, parsed, &summary)
	cleaned := c.removeOutliers(imputed, &summary)

	sort.Slice(cleaned, func(i, j int) bool {
		if cleaned[i].TurbineID != cleaned[j].TurbineID {
			return cleaned[i].TurbineID < cleaned[j].TurbineID
		}
		if !cleaned[i].Timestamp.Equal(cleaned[j].Timestamp) {
			return cleaned[i].Timestamp.Before(cleaned[j].Timestamp)
		}
		return cleaned[i].SourceFile < cleaned[j].SourceFile
	})
	summary.CleanRows = len(cleaned)

	c.logger.InfoContext(ctx, "cleaning complete",
		slog.Int("raw_rows", summary.RawRows),
		slog.Int("duplicates_removed", summary.DuplicatesRemoved),
		slog.Int("timestamps_rejected", summary.TimestampsRejected),
		slog.Int("values_rejected", summary.ValuesRejected),
		slog.Int("values_imputed", summary.ValuesImputed),
		slog.Int("outliers_removed", summary.OutliersRemoved),
		slog.Int("unimputable_dropped", summary.UnimputableDropped),
		slog.Int("clean_rows", summary.CleanRows))

	return cleaned, summary, nil
}

// deduplicate removes rows whose (timestamp, turbine_id, power) triple was
// already seen, keeping the first occurrence in input order. The source file
// is deliberately not part of the key: the same reading delivered in two
// feeds is still one reading.
func (c *Cleaner) deduplicate(raw []domain.RawReading, summary *domain.CleanSummary) []domain.RawReading {
	type rowKey struct {
		timestamp string
		turbineID string
		power     string
	}

	seen := make(map[rowKey]struct{}, len(raw))
	out := make([]domain.RawReading, 0, len(raw))
	for _, row := range raw {
		key := rowKey{row.Timestamp, row.TurbineID, row.PowerRaw}
		if _, dup := seen[key]; dup {
			summary.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}

	return out
}

// parseRows normalizes timestamps to UTC and parses power values. Rows with
// an unparseable timestamp or empty turbine id are dropped and counted; a
// non-empty power value that fails to parse as a finite number drops the
// row too. An empty power value survives as missing for imputation.
func (c *Cleaner) parseRows(ctx context.Context, raw []domain.RawReading, summary *domain.CleanSummary) []parsedRow {
	out := make([]parsedRow, 0, len(raw))
	for _, row := range raw {
		ts, ok := parseTimestamp(row.Timestamp)
		if !ok || row.TurbineID == "" {
			summary.TimestampsRejected++
			c.logger.DebugContext(ctx, "rejected row",
				slog.String("file", row.SourceFile),
				slog.Int("line", row.Line),
				slog.String("timestamp", row.Timestamp),
				slog.String("turbine_id", row.TurbineID))
			continue
		}

		pr := parsedRow{
			reading: domain.Reading{
				Timestamp:  ts,
				TurbineID:  row.TurbineID,
				SourceFile: row.SourceFile,
			},
		}

		if row.PowerRaw != "" {
			value, err := strconv.ParseFloat(row.PowerRaw, 64)
			if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
				summary.ValuesRejected++
				c.logger.DebugContext(ctx, "rejected malformed power value",
					slog.String("file", row.SourceFile),
					slog.Int("line", row.Line),
					slog.String("power_output", row.PowerRaw))
				continue
			}
			pr.reading.PowerOutput = value
			pr.hasPower = true
		}

		out = append(out, pr)
	}

	return out
}

// impute fills missing power values with the per-turbine median over that
// turbine's valid readings. Turbines with no valid reading at all cannot be
// imputed; their missing rows are dropped and logged rather than given a
// placeholder value.
func (c *Cleaner) impute(ctx context.Context, rows []parsedRow, summary *domain.CleanSummary) []domain.Reading {
	valuesByTurbine := make(map[string][]float64)
	for _, row := range rows {
		if row.hasPower {
			valuesByTurbine[row.reading.TurbineID] = append(valuesByTurbine[row.reading.TurbineID], row.reading.PowerOutput)
		}
	}

	medians := make(map[string]float64, len(valuesByTurbine))
	for turbine, values := range valuesByTurbine {
		sort.Float64s(values)
		medians[turbine] = quantileSorted(values, 0.5)
	}

	out := make([]domain.Reading, 0, len(rows))
	for _, row := range rows {
		if !row.hasPower {
			median, ok := medians[row.reading.TurbineID]
			if !ok {
				summary.UnimputableDropped++
				c.logger.WarnContext(ctx, "dropping reading: turbine has no valid power values to impute from",
					slog.String("turbine_id", row.reading.TurbineID),
					slog.String("file", row.reading.SourceFile))
				continue
			}
			row.reading.PowerOutput = median
			summary.ValuesImputed++
		}
		out = append(out, row.reading)
	}

	return out
}

// removeOutliers applies the per-turbine percentile fence. Quantiles are
// computed after imputation, over all of a turbine's readings. Negative
// power never survives, whatever the fence says.
func (c *Cleaner) removeOutliers(readings []domain.Reading, summary *domain.CleanSummary) []domain.Reading {
	valuesByTurbine := make(map[string][]float64)
	for _, r := range readings {
		valuesByTurbine[r.TurbineID] = append(valuesByTurbine[r.TurbineID], r.PowerOutput)
	}

	type fence struct {
		low  float64
		high float64
	}
	fences := make(map[string]fence, len(valuesByTurbine))
	for turbine, values := range valuesByTurbine {
		sort.Float64s(values)
		fences[turbine] = fence{
			low:  quantileSorted(values, c.cfg.LowPercentile) * c.cfg.LowFenceFactor,
			high: quantileSorted(values, c.cfg.HighPercentile) * c.cfg.HighFenceFactor,
		}
	}

	out := make([]domain.Reading, 0, len(readings))
	for _, r := range readings {
		f := fences[r.TurbineID]
		if r.PowerOutput < 0 || r.PowerOutput < f.low || r.PowerOutput > f.high {
			summary.OutliersRemoved++
			continue
		}
		out = append(out, r)
	}

	return out
}

// parseTimestamp parses an input timestamp into a UTC instant.
func parseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// quantileSorted returns the q-quantile of already-sorted values using
// linear interpolation between the two nearest ranks. The 0.5 quantile is
// the median.
func quantileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
