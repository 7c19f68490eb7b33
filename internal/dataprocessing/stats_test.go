package dataprocessing

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turbinecli/pkg/contracts/domain"
)

func reading(ts time.Time, turbine string, power float64) domain.Reading {
	return domain.Reading{Timestamp: ts, TurbineID: turbine, PowerOutput: power, SourceFile: "test.csv"}
}

func TestComputeDailyStats_MinMaxMean(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	readings := []domain.Reading{
		reading(day.Add(1*time.Hour), "T01", 2.0),
		reading(day.Add(2*time.Hour), "T01", 4.0),
		reading(day.Add(3*time.Hour), "T01", 6.0),
	}

	stats := ComputeDailyStats(context.Background(), readings)
	require.Len(t, stats, 1)

	s := stats[0]
	assert.Equal(t, "T01", s.TurbineID)
	assert.Equal(t, "2024-03-01", s.Day)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 6.0, s.Max)
	assert.Equal(t, 4.0, s.Mean)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 2.0, s.StdDev, 1e-9) // sample stddev of {2,4,6}
}

func TestComputeDailyStats_GroupsByTurbineAndDay(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC)
	readings := []domain.Reading{
		reading(d1, "T01", 1.0),
		reading(d2, "T01", 2.0),
		reading(d1, "T02", 3.0),
		reading(d2, "T02", 4.0),
	}

	stats := ComputeDailyStats(context.Background(), readings)
	require.Len(t, stats, 4)

	// Every (turbine, day) pair appears exactly once, sorted.
	type pair struct{ turbine, day string }
	seen := make(map[pair]int)
	for _, s := range stats {
		seen[pair{s.TurbineID, s.Day}]++
	}
	assert.Len(t, seen, 4)
	for p, n := range seen {
		assert.Equal(t, 1, n, "pair %v appeared %d times", p, n)
	}

	assert.Equal(t, "T01", stats[0].TurbineID)
	assert.Equal(t, "2024-03-01", stats[0].Day)
	assert.Equal(t, "T02", stats[3].TurbineID)
	assert.Equal(t, "2024-03-02", stats[3].Day)
}

func TestComputeDailyStats_DayBoundaryIsUTC(t *testing.T) {
	// 23:30 UTC and 00:30 UTC the next day are different groups.
	readings := []domain.Reading{
		reading(time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC), "T01", 1.0),
		reading(time.Date(2024, 3, 2, 0, 30, 0, 0, time.UTC), "T01", 2.0),
	}

	stats := ComputeDailyStats(context.Background(), readings)
	require.Len(t, stats, 2)
	assert.Equal(t, "2024-03-01", stats[0].Day)
	assert.Equal(t, "2024-03-02", stats[1].Day)
}

func TestComputeDailyStats_SingleReadingHasZeroStdDev(t *testing.T) {
	readings := []domain.Reading{
		reading(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "T01", 5.0),
	}

	stats := ComputeDailyStats(context.Background(), readings)
	require.Len(t, stats, 1)
	assert.Zero(t, stats[0].StdDev)
	assert.Equal(t, 5.0, stats[0].Min)
	assert.Equal(t, 5.0, stats[0].Max)
	assert.Equal(t, 5.0, stats[0].Mean)
}

func TestComputeDailyStats_DeterministicUnderShuffle(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var readings []domain.Reading
	for turbine := 0; turbine < 5; turbine++ {
		for hour := 0; hour < 24; hour++ {
			readings = append(readings, reading(
				day.Add(time.Duration(hour)*time.Hour),
				string(rune('A'+turbine)),
				float64(turbine*10+hour),
			))
		}
	}

	baseline := ComputeDailyStats(context.Background(), readings)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]domain.Reading, len(readings))
		copy(shuffled, readings)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		assert.Equal(t, baseline, ComputeDailyStats(context.Background(), shuffled))
	}
}

func TestComputeDailyStats_Empty(t *testing.T) {
	stats := ComputeDailyStats(context.Background(), nil)
	assert.Empty(t, stats)
}
