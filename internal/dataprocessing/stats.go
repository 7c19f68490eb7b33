package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"turbinecli/pkg/contracts/domain"
)

// statsKey identifies one (turbine, UTC day) group.
type statsKey struct {
	turbineID string
	day       string
}

// ComputeDailyStats aggregates cleaned readings by (turbine_id, UTC calendar
// day) and computes min, max and mean power output per group, plus the
// sample standard deviation the anomaly detector needs. Groups with zero
// readings never appear. Output is sorted by (turbine_id, day) and is
// identical for any permutation of the input.
func ComputeDailyStats(ctx context.Context, readings []domain.Reading) []domain.DailyStatistic {
	groups := make(map[statsKey][]float64)
	for _, r := range readings {
		key := statsKey{turbineID: r.TurbineID, day: r.Day()}
		groups[key] = append(groups[key], r.PowerOutput)
	}

	stats := make([]domain.DailyStatistic, 0, len(groups))
	for key, values := range groups {
		stats = append(stats, aggregate(key, values))
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TurbineID != stats[j].TurbineID {
			return stats[i].TurbineID < stats[j].TurbineID
		}
		return stats[i].Day < stats[j].Day
	})

	slog.InfoContext(ctx, "daily statistics computed",
		slog.Int("readings", len(readings)),
		slog.Int("groups", len(stats)))

	return stats
}

// aggregate computes the statistics for one group. The standard deviation
// is the sample standard deviation (n-1 denominator), 0 for groups with
// fewer than two readings. Mean is computed first and variance in a second
// pass to avoid catastrophic cancellation on near-constant days.
func aggregate(key statsKey, values []float64) domain.DailyStatistic {
	stat := domain.DailyStatistic{
		TurbineID: key.turbineID,
		Day:       key.day,
		Min:       values[0],
		Max:       values[0],
		Count:     len(values),
	}

	var sum float64
	for _, v := range values {
		if v < stat.Min {
			stat.Min = v
		}
		if v > stat.Max {
			stat.Max = v
		}
		sum += v
	}
	stat.Mean = sum / float64(len(values))

	if len(values) > 1 {
		var sumSq float64
		for _, v := range values {
			d := v - stat.Mean
			sumSq += d * d
		}
		stat.StdDev = math.Sqrt(sumSq / float64(len(values)-1))
	}

	return stat
}
