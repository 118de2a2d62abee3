package main

import (
	"github.com/pterm/pterm"

	"github.com/effortless-run/effortless/internal/deploy"
)

// ptermReporter renders per-handler progress on stderr. Reconciler calls
// arrive from concurrent goroutines; pterm printers are safe for that.
type ptermReporter struct{}

func (ptermReporter) Progress(handler, message string) {
	pterm.Info.Printf("[%s] %s\n", handler, message)
}

func (ptermReporter) Done(handler, resource string, status deploy.EnsureStatus, identity string) {
	switch status {
	case deploy.StatusUnchanged:
		pterm.Info.Printf("[%s] %s unchanged: %s\n", handler, resource, identity)
	default:
		pterm.Success.Printf("[%s] %s %s: %s\n", handler, resource, status, identity)
	}
}

func (ptermReporter) Failed(handler string, err error) {
	pterm.Error.Printf("[%s] %v\n", handler, err)
}
