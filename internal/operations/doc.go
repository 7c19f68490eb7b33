// Package operations orchestrates the sensor data pipeline as a sequence
// of steps: load, clean, statistics, anomaly detection, and persistence.
// Each step validates its inputs against the shared run state before
// executing; the manager runs them in order and fails fast on the first
// error, so a later artifact is never written from a broken earlier stage.
package operations
