package deploy

import (
	"context"
	"fmt"
	"time"
)

// Outcome is the classification of one probe of a converging resource.
// The waiter has no resource-specific knowledge; the caller's classify
// function decides which remote statuses are still converging and which
// are dead ends.
type Outcome int

const (
	// OutcomeTransient means the resource is still converging; keep polling.
	OutcomeTransient Outcome = iota
	// OutcomeSatisfied means the desired state has been reached.
	OutcomeSatisfied
	// OutcomeTerminal means the resource reached a state it will never
	// converge out of; the wait fails immediately.
	OutcomeTerminal
)

// WaitSpec bounds one polling wait.
type WaitSpec struct {
	// Op names the wait for diagnostics.
	Op string
	// MaxAttempts is the number of probes before the wait times out.
	MaxAttempts int
	// Interval is the fixed delay between probes.
	Interval time.Duration
}

// Wait presets for the resource kinds with asynchronous provisioning.
var (
	tableActiveWait          = WaitSpec{Op: "table activation", MaxAttempts: 15, Interval: 2 * time.Second}
	functionActiveWait       = WaitSpec{Op: "function activation", MaxAttempts: 15, Interval: 2 * time.Second}
	distributionDeployedWait = WaitSpec{Op: "distribution deployment", MaxAttempts: 90, Interval: 10 * time.Second}
)

// TimeoutError is returned when a wait exhausts its attempts. It carries
// the last observed status for diagnostics.
type TimeoutError struct {
	Op         string
	Attempts   int
	LastStatus string
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %d attempts (last status: %s)",
		e.Op, e.Attempts, e.LastStatus)
}

// TerminalError is returned when a probe reports a non-recoverable state.
type TerminalError struct {
	Op     string
	Status string
}

// Error implements the error interface.
func (e *TerminalError) Error() string {
	return fmt.Sprintf("%s: entered terminal status %s", e.Op, e.Status)
}

// Wait retries probe on the spec's fixed interval until classify reports
// the result satisfied, a terminal state is observed, the attempt budget
// is exhausted, or the context is canceled. It returns the last satisfying
// probe result on success. Probe errors fail the wait immediately: the
// probe is a read, and a read that fails is not a state transition.
func Wait[T any](
	ctx context.Context,
	spec WaitSpec,
	probe func(ctx context.Context) (T, error),
	classify func(T) (Outcome, string),
) (T, error) {
	var zero T
	lastStatus := "unknown"

	for attempt := 0; attempt < spec.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(spec.Interval):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		out, err := probe(ctx)
		if err != nil {
			return zero, fmt.Errorf("%s: probe: %w", spec.Op, err)
		}

		outcome, status := classify(out)
		lastStatus = status
		switch outcome {
		case OutcomeSatisfied:
			return out, nil
		case OutcomeTerminal:
			return zero, &TerminalError{Op: spec.Op, Status: status}
		case OutcomeTransient:
			// Keep polling.
		}
	}

	return zero, &TimeoutError{Op: spec.Op, Attempts: spec.MaxAttempts, LastStatus: lastStatus}
}
