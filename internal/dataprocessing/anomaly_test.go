package dataprocessing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turbinecli/pkg/contracts/domain"
)

func TestDetectAnomalies_Threshold(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	stats := []domain.DailyStatistic{
		{TurbineID: "T01", Day: "2024-03-01", Mean: 5.0, StdDev: 1.0, Count: 10},
	}

	tests := []struct {
		name    string
		power   float64
		flagged bool
	}{
		{"deviation above threshold", 7.5, true},
		{"deviation below threshold", 6.5, false},
		{"exactly two sigma is not flagged", 7.0, false},
		{"low side above threshold", 2.5, true},
		{"low side exactly two sigma", 3.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readings := []domain.Reading{reading(day.Add(time.Hour), "T01", tt.power)}
			anomalies := DetectAnomalies(context.Background(), readings, stats, 2)

			if tt.flagged {
				require.Len(t, anomalies, 1)
				assert.Equal(t, tt.power, anomalies[0].Reading.PowerOutput)
				assert.Equal(t, 5.0, anomalies[0].DayMean)
				assert.Equal(t, 1.0, anomalies[0].DayStdDev)
			} else {
				assert.Empty(t, anomalies)
			}
		})
	}
}

func TestDetectAnomalies_ZeroVarianceGuard(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var readings []domain.Reading
	for hour := 0; hour < 6; hour++ {
		readings = append(readings, reading(day.Add(time.Duration(hour)*time.Hour), "T01", 10.0))
	}

	stats := ComputeDailyStats(context.Background(), readings)
	require.Len(t, stats, 1)
	assert.Zero(t, stats[0].StdDev)

	anomalies := DetectAnomalies(context.Background(), readings, stats, 2)
	assert.Empty(t, anomalies)
}

func TestDetectAnomalies_EndToEndWithStats(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// A steady turbine with one injected deviant reading.
	readings := []domain.Reading{
		reading(day.Add(1*time.Hour), "T01", 5.0),
		reading(day.Add(2*time.Hour), "T01", 5.1),
		reading(day.Add(3*time.Hour), "T01", 4.9),
		reading(day.Add(4*time.Hour), "T01", 5.0),
		reading(day.Add(5*time.Hour), "T01", 5.1),
		reading(day.Add(6*time.Hour), "T01", 4.9),
		reading(day.Add(7*time.Hour), "T01", 25.0),
	}

	stats := ComputeDailyStats(context.Background(), readings)
	anomalies := DetectAnomalies(context.Background(), readings, stats, 2)

	require.Len(t, anomalies, 1)
	assert.Equal(t, 25.0, anomalies[0].Reading.PowerOutput)
	assert.True(t, anomalies[0].Reading.Timestamp.Equal(day.Add(7*time.Hour)))
	assert.Equal(t, stats[0].Mean, anomalies[0].DayMean)
	assert.Equal(t, stats[0].StdDev, anomalies[0].DayStdDev)
}

func TestDetectAnomalies_SeparateDaysSeparateStats(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	// Day one varies around 5; day two varies around 50. A 50 MW reading is
	// only anomalous relative to its own day.
	readings := []domain.Reading{
		reading(d1.Add(1*time.Hour), "T01", 4.0),
		reading(d1.Add(2*time.Hour), "T01", 5.0),
		reading(d1.Add(3*time.Hour), "T01", 6.0),
		reading(d2.Add(1*time.Hour), "T01", 49.0),
		reading(d2.Add(2*time.Hour), "T01", 50.0),
		reading(d2.Add(3*time.Hour), "T01", 51.0),
	}

	stats := ComputeDailyStats(context.Background(), readings)
	anomalies := DetectAnomalies(context.Background(), readings, stats, 2)
	assert.Empty(t, anomalies)
}

func TestDetectAnomalies_StableOrder(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// Two deviant readings at the tails of a flat day: both land beyond two
	// sample standard deviations and must come out in timestamp order.
	readings := []domain.Reading{reading(day, "T01", 0.0)}
	for m := 1; m <= 20; m++ {
		readings = append(readings, reading(day.Add(time.Duration(m)*time.Minute), "T01", 5.0))
	}
	readings = append(readings, reading(day.Add(21*time.Minute), "T01", 10.0))

	stats := ComputeDailyStats(context.Background(), readings)

	first := DetectAnomalies(context.Background(), readings, stats, 2)
	second := DetectAnomalies(context.Background(), readings, stats, 2)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, 0.0, first[0].Reading.PowerOutput)
	assert.Equal(t, 10.0, first[1].Reading.PowerOutput)
	assert.True(t, first[0].Reading.Timestamp.Before(first[1].Reading.Timestamp))
}
