// Package dataprocessing implements the core of the turbine sensor pipeline:
// loading raw tabular feeds, cleaning them, computing per-day statistics and
// flagging anomalous readings.
//
// # Architecture
//
// The package is organized into four components, applied in order:
//
//  1. Loader: reads CSV and Excel input files and extracts raw readings
//  2. Cleaner: deduplicates, normalizes timestamps, imputes and fences
//  3. Stats: aggregates cleaned readings per (turbine, UTC day)
//  4. Anomaly: flags readings deviating more than N sigma from the day mean
//
// # Data Flow
//
// The typical data flow through this package:
//
//	Input files → Loader → RawReadings → Cleaner → Readings → Stats → DailyStatistics
//	                                                  └──────────────→ Anomaly → AnomalyRecords
//
// # Error Handling
//
// File-level problems (a missing required column) are fatal and abort the
// run before anything is written. Row-level problems (unparseable timestamp,
// malformed value) are recovered by exclusion: the row is dropped, counted,
// and reported in the CleanSummary.
//
// # Determinism
//
// Every component produces identical output for identical input regardless
// of input row order or loader parallelism. Grouped aggregation is
// commutative and all outputs are explicitly sorted.
package dataprocessing
