package dataprocessing

import (
	"context"
	"log/slog"
	"math"

	"turbinecli/pkg/contracts/domain"
)

// DetectAnomalies flags every cleaned reading whose power output deviates
// from its (turbine, day) mean by strictly more than sigma standard
// deviations; a reading at exactly the threshold is not flagged. The
// standard deviation is the sample one computed by ComputeDailyStats, so
// both components agree on the aggregation.
//
// A group with zero standard deviation never flags anything: on a
// constant-output day there is no measurable variation to call abnormal,
// and the guard also keeps the comparison away from the degenerate
// tolerance. Output preserves the cleaned input order, which is already
// sorted by (turbine_id, timestamp), so results are reproducible.
func DetectAnomalies(ctx context.Context, readings []domain.Reading, stats []domain.DailyStatistic, sigma float64) []domain.AnomalyRecord {
	index := make(map[statsKey]domain.DailyStatistic, len(stats))
	for _, s := range stats {
		index[statsKey{turbineID: s.TurbineID, day: s.Day}] = s
	}

	var anomalies []domain.AnomalyRecord
	for _, r := range readings {
		stat, ok := index[statsKey{turbineID: r.TurbineID, day: r.Day()}]
		if !ok || stat.StdDev == 0 {
			continue
		}
		if math.Abs(r.PowerOutput-stat.Mean) > sigma*stat.StdDev {
			anomalies = append(anomalies, domain.AnomalyRecord{
				Reading:   r,
				DayMean:   stat.Mean,
				DayStdDev: stat.StdDev,
			})
		}
	}

	slog.InfoContext(ctx, "anomaly detection complete",
		slog.Int("readings", len(readings)),
		slog.Float64("sigma", sigma),
		slog.Int("anomalies", len(anomalies)))

	return anomalies
}
