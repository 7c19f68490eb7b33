package operations

import (
	"sync"
	"time"

	"turbinecli/pkg/contracts/domain"
)

// RunStatus represents the overall pipeline run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// State represents the complete state of one pipeline run. Each step
// consumes the immutable outputs of the previous steps and sets its own;
// steps run sequentially, the lock only guards status inspection from
// other goroutines.
type State struct {
	mu sync.RWMutex

	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Step states keyed by step ID
	Steps map[string]*StepState `json:"steps"`

	// Stage outputs, filled in pipeline order
	InputFiles []string               `json:"input_files"`
	Raw        []domain.RawReading    `json:"-"`
	Readings   []domain.Reading       `json:"-"`
	Summary    domain.CleanSummary    `json:"clean_summary"`
	Stats      []domain.DailyStatistic `json:"-"`
	Anomalies  []domain.AnomalyRecord `json:"-"`

	// Error if the run failed
	Error error `json:"error,omitempty"`
}

// NewState creates a new pipeline run state
func NewState(id string) *State {
	return &State{
		ID:        id,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the run as running
func (s *State) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = RunStatusRunning
	s.StartTime = time.Now()
}

// Complete marks the run as completed
func (s *State) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (s *State) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = RunStatusFailed
	s.Error = err
}

// CurrentStatus returns the run status under the read lock.
func (s *State) CurrentStatus() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// StepState returns the state for a step ID, creating it if absent.
func (s *State) StepState(id, name string) *StepState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step, ok := s.Steps[id]; ok {
		return step
	}
	step := NewStepState(id, name)
	s.Steps[id] = step
	return step
}

// Duration returns the total run duration.
func (s *State) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}
