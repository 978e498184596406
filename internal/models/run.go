package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents valid verification run states
type RunStatus string

// Run statuses
const (
	RunStatusRunning RunStatus = "running"
	RunStatusPassed  RunStatus = "passed"
	RunStatusFailed  RunStatus = "failed"
	RunStatusAborted RunStatus = "aborted"
)

// Run is one verification pass against a storefront
type Run struct {
	ID         string
	Engine     string
	BaseURL    string
	Status     RunStatus
	Reason     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// CheckResult is the outcome of a single verification within a run
type CheckResult struct {
	ID       string
	RunID    string
	Name     string
	Product  string
	Passed   bool
	Message  string
	Duration time.Duration
}

// Run errors
var (
	ErrInvalidEngine           = errors.New("run engine cannot be empty")
	ErrInvalidBaseURL          = errors.New("run base URL cannot be empty")
	ErrInvalidStatusTransition = errors.New("invalid run status transition")
)

// NewRun creates a run in the running state
func NewRun(engine, baseURL string) (*Run, error) {
	if engine == "" {
		return nil, ErrInvalidEngine
	}
	if baseURL == "" {
		return nil, ErrInvalidBaseURL
	}

	return &Run{
		ID:        uuid.New().String(),
		Engine:    engine,
		BaseURL:   baseURL,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}, nil
}

// NewCheckResult records the outcome of a check belonging to the run
func (r *Run) NewCheckResult(name, product string, err error, duration time.Duration) *CheckResult {
	result := &CheckResult{
		ID:       uuid.New().String(),
		RunID:    r.ID,
		Name:     name,
		Product:  product,
		Passed:   err == nil,
		Duration: duration,
	}
	if err != nil {
		result.Message = err.Error()
	}
	return result
}

// Finish moves a running run to passed or failed
func (r *Run) Finish(passed bool) error {
	if r.Status != RunStatusRunning {
		return fmt.Errorf("%w: cannot finish run with status %s", ErrInvalidStatusTransition, r.Status)
	}

	r.Status = RunStatusFailed
	if passed {
		r.Status = RunStatusPassed
	}
	r.FinishedAt = time.Now()
	return nil
}

// Abort marks the run as stopped before all checks could execute
func (r *Run) Abort(reason error) error {
	if r.Status != RunStatusRunning {
		return fmt.Errorf("%w: cannot abort run with status %s", ErrInvalidStatusTransition, r.Status)
	}

	r.Status = RunStatusAborted
	if reason != nil {
		r.Reason = reason.Error()
	}
	r.FinishedAt = time.Now()
	return nil
}

// IsTerminal returns true once the run can no longer change status
func (r *Run) IsTerminal() bool {
	return r.Status != RunStatusRunning
}

// Duration returns how long the run took, or has taken so far
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
