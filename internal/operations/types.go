package operations

// Pipeline step identifiers
const (
	StepIDLoad      = "load"
	StepIDClean     = "clean"
	StepIDStats     = "stats"
	StepIDAnomalies = "anomalies"
	StepIDPersist   = "persist"
)

// Pipeline step names
const (
	StepNameLoad      = "Data Loading"
	StepNameClean     = "Data Cleaning"
	StepNameStats     = "Daily Statistics"
	StepNameAnomalies = "Anomaly Detection"
	StepNamePersist   = "Artifact Persistence"
)
