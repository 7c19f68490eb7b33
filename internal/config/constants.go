package config

// Application constants for the turbine pipeline.
const (
	// Application Info
	AppName    = "Turbine Pipeline"
	AppVersion = "1.0.0"

	// Required input columns. Every input file must carry all three;
	// a missing column is a fatal schema error.
	ColumnTimestamp   = "timestamp"
	ColumnTurbineID   = "turbine_id"
	ColumnPowerOutput = "power_output"

	// Output artifact file names, fixed per invocation contract.
	CleanedDataCSV       = "cleaned_data.csv"
	SummaryStatisticsCSV = "summary_statistics.csv"
	AnomaliesCSV         = "anomalies.csv"

	// File Paths (relative to executable)
	DefaultInputDir  = "data/input"
	DefaultOutputDir = "data/output"
	DefaultLogsDir   = "logs"
)

// RequiredColumns lists the columns every input file must contain.
var RequiredColumns = []string{ColumnTimestamp, ColumnTurbineID, ColumnPowerOutput}
