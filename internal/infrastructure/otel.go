package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"turbinecli/internal/config"
)

const (
	ServiceName    = "turbine-sensor-pipeline"
	ServiceVersion = config.AppVersion
	MeterName      = "turbinecli"
)

// OTelProviders holds the OpenTelemetry providers for one pipeline run.
// Both trace spans and metrics are exported to a file in the logs directory
// so a batch run leaves its telemetry next to its logs.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Logger         *slog.Logger

	telemetryFile *os.File
}

// InitializeOTel initializes OpenTelemetry for a single batch run.
// Telemetry is written to telemetryPath; pass an empty path to export to
// stdout. Disabled signals get no-op providers from the otel globals.
func InitializeOTel(cfg config.TelemetryConfig, telemetryPath string, logger *slog.Logger) (*OTelProviders, error) {
	ctx := context.Background()

	if logger == nil {
		logger = slog.Default()
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(ServiceVersion),
			attribute.String("service.instance.id", GenerateRunID()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{Logger: logger}

	out := os.Stdout
	if telemetryPath != "" {
		file, err := os.OpenFile(telemetryPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open telemetry file %s: %w", telemetryPath, err)
		}
		providers.telemetryFile = file
		out = file
	}

	if cfg.EnableTracing {
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(out),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			providers.closeTelemetryFile()
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		providers.TracerProvider = tp
		providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(ServiceVersion))
		otel.SetTracerProvider(tp)
	} else {
		providers.Tracer = otel.Tracer(MeterName)
	}

	if cfg.EnableMetrics {
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(out))
		if err != nil {
			providers.closeTelemetryFile()
			return nil, fmt.Errorf("failed to create metric exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		)
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion))
		otel.SetMeterProvider(mp)
	} else {
		providers.Meter = otel.Meter(MeterName)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "OpenTelemetry initialization complete",
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// PipelineMetrics holds the counters recorded during a pipeline run.
type PipelineMetrics struct {
	RowsLoaded       metric.Int64Counter
	RowsRejected     metric.Int64Counter
	ValuesImputed    metric.Int64Counter
	OutliersRemoved  metric.Int64Counter
	AnomaliesFlagged metric.Int64Counter
	StepDuration     metric.Float64Histogram
}

// CreatePipelineMetrics creates the pipeline counters on the given meter.
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsLoaded, err := meter.Int64Counter(
		"pipeline_rows_loaded_total",
		metric.WithDescription("Total number of raw rows loaded from input files"),
	)
	if err != nil {
		return nil, err
	}

	rowsRejected, err := meter.Int64Counter(
		"pipeline_rows_rejected_total",
		metric.WithDescription("Total number of rows dropped during cleaning"),
	)
	if err != nil {
		return nil, err
	}

	valuesImputed, err := meter.Int64Counter(
		"pipeline_values_imputed_total",
		metric.WithDescription("Total number of missing power values imputed"),
	)
	if err != nil {
		return nil, err
	}

	outliersRemoved, err := meter.Int64Counter(
		"pipeline_outliers_removed_total",
		metric.WithDescription("Total number of readings removed as outliers"),
	)
	if err != nil {
		return nil, err
	}

	anomaliesFlagged, err := meter.Int64Counter(
		"pipeline_anomalies_flagged_total",
		metric.WithDescription("Total number of readings flagged as anomalous"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"pipeline_step_duration_seconds",
		metric.WithDescription("Pipeline step execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsLoaded:       rowsLoaded,
		RowsRejected:     rowsRejected,
		ValuesImputed:    valuesImputed,
		OutliersRemoved:  outliersRemoved,
		AnomaliesFlagged: anomaliesFlagged,
		StepDuration:     stepDuration,
	}, nil
}

// Shutdown flushes and stops the providers. Must be called before exit so
// batched spans and the final metric export reach the telemetry file.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var firstErr error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("tracer provider shutdown: %w", err)
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("meter provider shutdown: %w", err)
		}
	}
	if err := p.closeTelemetryFile(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

func (p *OTelProviders) closeTelemetryFile() error {
	if p.telemetryFile == nil {
		return nil
	}
	err := p.telemetryFile.Close()
	p.telemetryFile = nil
	return err
}
