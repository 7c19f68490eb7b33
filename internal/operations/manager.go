package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"turbinecli/internal/infrastructure"
)

// Manager orchestrates one pipeline run: the registered steps execute
// sequentially, fail-fast, each wrapped in a trace span and timed.
type Manager struct {
	steps   []Step
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewManager creates a pipeline manager. Tracer and metrics may be nil;
// the manager then runs without telemetry.
func NewManager(logger *slog.Logger, tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("turbinecli")
	}
	return &Manager{
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}
}

// RegisterStep appends a step to the pipeline. Registration order is
// execution order.
func (m *Manager) RegisterStep(step Step) {
	m.steps = append(m.steps, step)
}

// Execute runs all registered steps against a fresh state and returns it.
// The first failing step aborts the run; its error is recorded on the
// state and returned.
func (m *Manager) Execute(ctx context.Context, runID string) (*State, error) {
	state := NewState(runID)
	state.Start()

	ctx, runSpan := m.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer runSpan.End()

	m.logger.InfoContext(ctx, "pipeline run started",
		slog.String("run_id", runID),
		slog.Int("steps", len(m.steps)))

	for _, step := range m.steps {
		if err := m.executeStep(ctx, step, state); err != nil {
			state.Fail(err)
			runSpan.RecordError(err)
			runSpan.SetStatus(codes.Error, err.Error())

			m.logger.ErrorContext(ctx, "pipeline run failed",
				slog.String("run_id", runID),
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))

			return state, fmt.Errorf("step %s: %w", step.ID(), err)
		}
	}

	state.Complete()
	m.recordRunMetrics(ctx, state)

	m.logger.InfoContext(ctx, "pipeline run completed",
		slog.String("run_id", runID),
		slog.Duration("duration", state.Duration()),
		slog.Int("clean_rows", state.Summary.CleanRows),
		slog.Int("stat_rows", len(state.Stats)),
		slog.Int("anomalies", len(state.Anomalies)))

	return state, nil
}

// executeStep validates and runs a single step with tracing and timing.
func (m *Manager) executeStep(ctx context.Context, step Step, state *State) error {
	stepState := state.StepState(step.ID(), step.Name())

	ctx, span := m.tracer.Start(ctx, "pipeline.step."+step.ID(),
		trace.WithAttributes(attribute.String("step.name", step.Name())))
	defer span.End()

	if err := step.Validate(state); err != nil {
		stepState.Fail(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	stepState.Start()
	m.logger.InfoContext(ctx, "step started",
		slog.String("step", step.ID()),
		slog.String("name", step.Name()))

	start := time.Now()
	if err := step.Execute(ctx, state); err != nil {
		stepState.Fail(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	stepState.Complete()

	elapsed := time.Since(start)
	if m.metrics != nil {
		m.metrics.StepDuration.Record(ctx, elapsed.Seconds(),
			metric.WithAttributes(attribute.String("step", step.ID())))
	}

	m.logger.InfoContext(ctx, "step completed",
		slog.String("step", step.ID()),
		slog.Duration("duration", elapsed))

	return nil
}

// recordRunMetrics pushes the run counters after a successful run.
func (m *Manager) recordRunMetrics(ctx context.Context, state *State) {
	if m.metrics == nil {
		return
	}

	summary := state.Summary
	m.metrics.RowsLoaded.Add(ctx, int64(summary.RawRows))
	m.metrics.RowsRejected.Add(ctx, int64(summary.TimestampsRejected+summary.ValuesRejected+summary.UnimputableDropped))
	m.metrics.ValuesImputed.Add(ctx, int64(summary.ValuesImputed))
	m.metrics.OutliersRemoved.Add(ctx, int64(summary.OutliersRemoved))
	m.metrics.AnomaliesFlagged.Add(ctx, int64(len(state.Anomalies)))
}
