package deploy

import "log"

// Reporter receives live per-handler progress as the orchestrator runs.
// Implementations must be safe for concurrent use: every handler task
// reports under its own handler name.
type Reporter interface {
	// Progress announces a step within a handler's pipeline.
	Progress(handler, message string)
	// Done reports a handler's final per-resource outcome.
	Done(handler, resource string, status EnsureStatus, identity string)
	// Failed reports a handler's fatal error.
	Failed(handler string, err error)
}

// LogReporter writes progress to the standard logger.
type LogReporter struct{}

// Progress implements Reporter.
func (LogReporter) Progress(handler, message string) {
	log.Printf("effortless: [%s] %s", handler, message)
}

// Done implements Reporter.
func (LogReporter) Done(handler, resource string, status EnsureStatus, identity string) {
	log.Printf("effortless: [%s] %s %s (%s)", handler, resource, status, identity)
}

// Failed implements Reporter.
func (LogReporter) Failed(handler string, err error) {
	log.Printf("effortless: [%s] failed: %v", handler, err)
}

// NopReporter discards all progress. Used in tests.
type NopReporter struct{}

// Progress implements Reporter.
func (NopReporter) Progress(string, string) {}

// Done implements Reporter.
func (NopReporter) Done(string, string, EnsureStatus, string) {}

// Failed implements Reporter.
func (NopReporter) Failed(string, error) {}
