// Package exporter provides CSV export functionality for the turbine
// pipeline artifacts.
//
// This package contains two main components:
//
// CSVWriter: core CSV writing with headers, overwrite-on-rerun semantics
// and optional UTF-8 BOM for Excel compatibility.
//
// ArtifactWriter: persists the three fixed artifacts of a pipeline run
// (cleaned_data.csv, summary_statistics.csv and anomalies.csv) to the
// configured output directory.
//
// Example usage:
//
//	writer := exporter.NewArtifactWriter(paths, logger)
//	err := writer.WriteAll(ctx, readings, stats, anomalies)
package exporter
