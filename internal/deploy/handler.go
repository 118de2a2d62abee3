// Package deploy implements the effortless resource reconciliation and
// deployment-orchestration engine: per-resource-kind ensure/delete
// reconcilers, a generic eventual-consistency waiter, a tag-based resource
// inventory, and a dependency-ordered concurrent orchestrator.
package deploy

import (
	"fmt"
	"sort"
)

// HandlerKind identifies the trigger shape of a declared handler.
type HandlerKind string

// Supported handler kinds.
const (
	KindHTTPFunction HandlerKind = "http-function"
	KindTableTrigger HandlerKind = "table-trigger"
	KindAppSite      HandlerKind = "app-site"
	KindStaticSite   HandlerKind = "static-site"
	KindFIFOConsumer HandlerKind = "fifo-consumer"
	KindWebSocket    HandlerKind = "websocket"
	KindAuthorizer   HandlerKind = "authorizer"
)

// validKinds lists the handler kinds the orchestrator knows how to wire.
var validKinds = map[HandlerKind]bool{
	KindHTTPFunction: true,
	KindTableTrigger: true,
	KindAppSite:      true,
	KindStaticSite:   true,
	KindFIFOConsumer: true,
	KindWebSocket:    true,
	KindAuthorizer:   true,
}

// Handler is one declared unit of deployable behavior: a function plus its
// trigger configuration. Handlers are produced by the discovery layer once
// per run and never mutated afterwards.
type Handler struct {
	// ExportName is the identifier the handler was exported under in source.
	ExportName string `yaml:"export"`
	// Name is the resolved handler name used for resource naming.
	Name string `yaml:"name"`
	// Kind selects the trigger wiring performed after the function exists.
	Kind HandlerKind `yaml:"kind"`

	// MemoryMB is the function memory size. Zero means the default (256).
	MemoryMB int32 `yaml:"memory,omitempty"`
	// TimeoutSec is the function timeout. Zero means the default (10).
	TimeoutSec int32 `yaml:"timeout,omitempty"`

	// Method and Path describe the route for http-function handlers.
	Method string `yaml:"method,omitempty"`
	Path   string `yaml:"path,omitempty"`

	// BatchSize applies to table-trigger and fifo-consumer handlers.
	BatchSize int32 `yaml:"batchSize,omitempty"`

	// Tables lists the handler names of tables this handler reads/writes.
	Tables []string `yaml:"tables,omitempty"`
	// Params lists external parameter keys resolved under
	// /{project}/{stage}/{key}.
	Params []string `yaml:"params,omitempty"`
	// Statements are extra IAM policy statements declared by the handler.
	Statements []PolicyStatement `yaml:"permissions,omitempty"`

	// Domain is the custom domain for site handlers; empty means the
	// distribution's default domain is used and no certificate is looked up.
	Domain string `yaml:"domain,omitempty"`
}

// Defaults for function configuration when the handler omits them.
const (
	defaultMemoryMB   = 256
	defaultTimeoutSec = 10
	defaultBatchSize  = 10
)

// Memory returns the configured memory size or the default.
func (h *Handler) Memory() int32 {
	if h.MemoryMB > 0 {
		return h.MemoryMB
	}
	return defaultMemoryMB
}

// Timeout returns the configured timeout or the default.
func (h *Handler) Timeout() int32 {
	if h.TimeoutSec > 0 {
		return h.TimeoutSec
	}
	return defaultTimeoutSec
}

// Batch returns the configured batch size or the default.
func (h *Handler) Batch() int32 {
	if h.BatchSize > 0 {
		return h.BatchSize
	}
	return defaultBatchSize
}

// RouteKey returns the "METHOD /path" route key for http handlers.
func (h *Handler) RouteKey() string {
	return h.Method + " " + h.Path
}

// needsFunction reports whether the handler kind deploys compute at all.
// Sites are bucket+distribution only.
func (h *Handler) needsFunction() bool {
	return h.Kind != KindStaticSite && h.Kind != KindAppSite
}

// isSite reports whether the handler deploys a bucket-backed distribution.
func (h *Handler) isSite() bool {
	return h.Kind == KindStaticSite || h.Kind == KindAppSite
}

// Validate checks the handler for the structural problems that would
// otherwise surface as remote Validation errors mid-deploy.
func (h *Handler) Validate() error {
	if h.Name == "" {
		return fmt.Errorf("handler %q: name is required", h.ExportName)
	}
	if !validKinds[h.Kind] {
		return fmt.Errorf("handler %q: unknown kind %q", h.Name, h.Kind)
	}
	if h.Kind == KindHTTPFunction && (h.Method == "" || h.Path == "") {
		return fmt.Errorf("handler %q: http-function requires method and path", h.Name)
	}
	if h.isSite() && len(h.Tables) > 0 {
		return fmt.Errorf("handler %q: site handlers cannot reference tables", h.Name)
	}
	return nil
}

// RunContext holds the per-orchestration-run shared inputs. It is read-only
// after construction and safely shared by all concurrent handler tasks.
type RunContext struct {
	Project   string
	Stage     string
	Region    string
	AccountID string

	// TableNames maps a table handler name to its derived physical name.
	TableNames map[string]string
	// ParamPaths maps a parameter key to its full parameter-store path.
	ParamPaths map[string]string

	// LayerARN is the shared dependency-layer version, resolved once per
	// run before any handler task starts.
	LayerARN string

	// Artifact is the deployable code package shared by all functions.
	Artifact *Artifact
}

// NewRunContext precomputes the derived name and path maps for the declared
// handler set. Table names require no remote round-trip: they are derived
// deterministically from project, stage, and handler name.
func NewRunContext(project, stage, region, accountID string, handlers []Handler) *RunContext {
	rc := &RunContext{
		Project:    project,
		Stage:      stage,
		Region:     region,
		AccountID:  accountID,
		TableNames: make(map[string]string),
		ParamPaths: make(map[string]string),
	}
	for i := range handlers {
		h := &handlers[i]
		for _, ref := range h.Tables {
			rc.TableNames[ref] = ResourceName(project, stage, ref)
		}
		for _, key := range h.Params {
			rc.ParamPaths[key] = ParameterPath(project, stage, key)
		}
	}
	return rc
}

// sortedHandlerNames returns the declared handler names in sorted order for
// deterministic progress reporting.
func sortedHandlerNames(handlers []Handler) []string {
	names := make([]string, 0, len(handlers))
	for i := range handlers {
		names = append(names, handlers[i].Name)
	}
	sort.Strings(names)
	return names
}
