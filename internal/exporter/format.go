package exporter

import (
	"fmt"
	"strconv"
	"time"
)

// formatPower formats a power value for CSV output. The shortest exact
// decimal representation keeps re-cleaning the artifact lossless.
func formatPower(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatStat formats an aggregate statistic with fixed 3 decimal places
// so columns align across runs.
func formatStat(f float64) string {
	return fmt.Sprintf("%.3f", f)
}

// formatTimestamp formats a cleaned reading timestamp as RFC3339 UTC.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
