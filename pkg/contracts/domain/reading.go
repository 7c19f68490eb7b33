package domain

import (
	"time"
)

// RawReading is a single row extracted from an input file before any
// validation. Timestamp and PowerRaw carry the original cell text; the
// cleaner is responsible for parsing them.
type RawReading struct {
	Timestamp  string `json:"timestamp"`
	TurbineID  string `json:"turbine_id"`
	PowerRaw   string `json:"power_raw"`
	SourceFile string `json:"source_file"`
	Line       int    `json:"line"`
}

// Reading represents one cleaned sensor observation for a turbine.
// Post-cleaning invariant: Timestamp is UTC and PowerOutput is non-negative.
type Reading struct {
	Timestamp   time.Time `json:"timestamp" csv:"timestamp"`
	TurbineID   string    `json:"turbine_id" csv:"turbine_id" validate:"required"`
	PowerOutput float64   `json:"power_output" csv:"power_output" validate:"min=0"`
	SourceFile  string    `json:"source_file" csv:"source_file"`
}

// Day returns the UTC calendar day the reading belongs to.
func (r Reading) Day() string {
	return r.Timestamp.UTC().Format("2006-01-02")
}

// DailyStatistic is the per-(turbine, UTC day) aggregate of power output.
// Count and StdDev are retained so the anomaly detector can reuse the same
// aggregation pass; StdDev is the sample standard deviation and is 0 for
// groups with fewer than two readings.
type DailyStatistic struct {
	TurbineID string  `json:"turbine_id" csv:"turbine_id"`
	Day       string  `json:"day" csv:"day"`
	Min       float64 `json:"min" csv:"min"`
	Max       float64 `json:"max" csv:"max"`
	Mean      float64 `json:"mean" csv:"mean"`
	Count     int     `json:"count"`
	StdDev    float64 `json:"stddev"`
}

// AnomalyRecord is a cleaned reading flagged because its power output
// deviates from its day's mean by more than two standard deviations,
// together with the statistics that justified the flag.
type AnomalyRecord struct {
	Reading   Reading `json:"reading"`
	DayMean   float64 `json:"day_mean" csv:"day_mean"`
	DayStdDev float64 `json:"day_stddev" csv:"day_stddev"`
}

// CleanSummary reports what the cleaner did to the raw rows. Row-level
// problems are recovered by exclusion and surfaced here, never fatal.
type CleanSummary struct {
	RawRows            int `json:"raw_rows"`
	DuplicatesRemoved  int `json:"duplicates_removed"`
	TimestampsRejected int `json:"timestamps_rejected"`
	ValuesRejected     int `json:"values_rejected"`
	ValuesImputed      int `json:"values_imputed"`
	OutliersRemoved    int `json:"outliers_removed"`
	UnimputableDropped int `json:"unimputable_dropped"`
	CleanRows          int `json:"clean_rows"`
}
