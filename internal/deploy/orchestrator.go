package deploy

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// DefaultConcurrency bounds how many handler pipelines run at once.
const DefaultConcurrency = 5

// DeployRequest is the full input to one orchestration run.
type DeployRequest struct {
	Project   string
	Stage     string
	Region    string
	AccountID string
	Handlers  []Handler

	// Artifact is the code package every function deploys.
	Artifact *Artifact
	// LayerArtifact, when set, is the shared dependency layer package.
	LayerArtifact *Artifact
}

// HandlerResult is the per-handler outcome of a run.
type HandlerResult struct {
	Name     string
	Status   EnsureStatus
	Identity string
}

// DeployResult is the aggregate outcome of a run.
type DeployResult struct {
	Handlers []HandlerResult
	// APIID and APIURL describe the shared HTTP API when any handler uses it.
	APIID  string
	APIURL string
}

// Engine owns the reconcilers and drives orchestration runs against them.
type Engine struct {
	functions     *FunctionReconciler
	roles         *RoleReconciler
	tables        *TableReconciler
	httpAPI       *HTTPAPIReconciler
	websockets    *WebSocketReconciler
	queues        *QueueReconciler
	distributions *DistributionReconciler
	buckets       *BucketReconciler
	certificates  *CertificateFinder
	layers        *LayerReconciler
	scanner       *InventoryScanner
	sweeper       *Sweeper
	parameters    ParameterAPI

	reporter    Reporter
	concurrency int
}

// NewEngine wires an Engine over a capability bundle. The region feeds
// bucket endpoints; reporter may be nil for log-only progress.
func NewEngine(clients *Clients, region string, reporter Reporter) *Engine {
	if reporter == nil {
		reporter = LogReporter{}
	}
	return &Engine{
		functions:     NewFunctionReconciler(clients.Functions),
		roles:         NewRoleReconciler(clients.Roles),
		tables:        NewTableReconciler(clients.Tables),
		httpAPI:       NewHTTPAPIReconciler(clients.Routes),
		websockets:    NewWebSocketReconciler(clients.Routes),
		queues:        NewQueueReconciler(clients.Queues),
		distributions: NewDistributionReconciler(clients.CDN, clients.Tagging),
		buckets:       NewBucketReconciler(clients.Objects, region),
		certificates:  NewCertificateFinder(clients.Certificates),
		layers:        NewLayerReconciler(clients.Functions),
		scanner:       NewInventoryScanner(clients.Tagging),
		sweeper:       NewSweeper(clients.Routes, clients.Functions, clients.Roles, clients.Queues),
		parameters:    clients.Parameters,
		reporter:      reporter,
		concurrency:   DefaultConcurrency,
	}
}

// SetConcurrency overrides the pipeline bound. Values below 1 are ignored.
func (e *Engine) SetConcurrency(n int) {
	if n >= 1 {
		e.concurrency = n
	}
}

// Deploy converges every declared handler. Shared resources (tables, the
// dependency layer, the HTTP API) converge once up front; handler pipelines
// then run concurrently under the semaphore bound. A failing handler does
// not stop the others: errors are collected and returned together so one
// bad handler cannot block the rest of the fleet from converging.
func (e *Engine) Deploy(ctx context.Context, req DeployRequest) (*DeployResult, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}

	rc := NewRunContext(req.Project, req.Stage, req.Region, req.AccountID, req.Handlers)
	rc.Artifact = req.Artifact

	if err := e.preflightParameters(ctx, rc); err != nil {
		return nil, err
	}

	tables, err := e.ensureTables(ctx, rc, req.Handlers)
	if err != nil {
		return nil, err
	}

	if req.LayerArtifact != nil {
		layerResult, err := e.layers.Ensure(ctx, req.Project, req.Stage, req.LayerArtifact)
		if err != nil {
			return nil, err
		}
		rc.LayerARN = layerResult.Identity
	}

	result := &DeployResult{}
	var api APIIdentity
	if needsSharedAPI(req.Handlers) {
		tc := TagContext{Project: req.Project, Stage: req.Stage}
		apiResult, err := e.httpAPI.EnsureAPI(ctx, req.Project, req.Stage, req.Region, tc)
		if err != nil {
			return nil, err
		}
		api = apiResult.Identity
		result.APIID = api.ID
		result.APIURL = api.Endpoint
	}

	p := &pipeline{engine: e, rc: rc, api: api, tables: tables}

	var (
		mu      sync.Mutex
		results = make(map[string]HandlerResult)
		runErrs []error
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, e.concurrency)

	for i := range req.Handlers {
		h := &req.Handlers[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			hr, err := p.run(ctx, h)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				runErrs = append(runErrs, err)
				e.reporter.Failed(h.Name, err)
				return
			}
			results[h.Name] = hr
			e.reporter.Done(h.Name, string(h.Kind), hr.Status, hr.Identity)
		}()
	}
	wg.Wait()

	for _, name := range sortedHandlerNames(req.Handlers) {
		if hr, ok := results[name]; ok {
			result.Handlers = append(result.Handlers, hr)
		}
	}

	// Sweep only after a fully clean run: with failed handlers in the mix
	// the declared set cannot be trusted as the complete picture of what
	// should stay live.
	if len(runErrs) == 0 {
		if err := e.sweep(ctx, req, api); err != nil {
			runErrs = append(runErrs, err)
		}
	} else {
		log.Printf("effortless: skipping sweep, %d handler(s) failed", len(runErrs))
	}

	var combined error
	for _, err := range runErrs {
		combined = combineErrors(combined, err)
	}
	return result, combined
}

// validate checks names and handler structure before any remote call.
func (e *Engine) validate(req DeployRequest) error {
	if req.Artifact == nil {
		return fmt.Errorf("deploy: code artifact is required")
	}
	for i := range req.Handlers {
		if err := req.Handlers[i].Validate(); err != nil {
			return err
		}
	}
	if problems := ValidateNames(req.Project, req.Stage, req.Handlers); len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("deploy: invalid resource names: %v", problems)
	}
	return nil
}

// preflightParameters verifies every declared external parameter exists
// before anything is created, so a typo fails the run in seconds instead
// of mid-deploy.
func (e *Engine) preflightParameters(ctx context.Context, rc *RunContext) error {
	var missing []string
	for _, key := range sortedKeys(rc.ParamPaths) {
		path := rc.ParamPaths[key]
		_, err := e.parameters.GetParameter(ctx, &ssm.GetParameterInput{Name: aws.String(path)})
		if err != nil {
			if IsNotFound(err) {
				missing = append(missing, path)
				continue
			}
			return fmt.Errorf("check parameter %q: %w", path, err)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("deploy: missing parameters %v: create them in the parameter store and re-run", missing)
	}
	return nil
}

// ensureTables converges every table any handler references, plus the
// source table of every table trigger, exactly once before the concurrent
// phase. Two pipelines can reference the same table; converging up front
// keeps the pipelines free of cross-handler writes.
func (e *Engine) ensureTables(
	ctx context.Context, rc *RunContext, handlers []Handler,
) (map[string]TableIdentity, error) {
	refs := make(map[string]bool)
	for i := range handlers {
		h := &handlers[i]
		for _, ref := range h.Tables {
			refs[ref] = true
		}
		if h.Kind == KindTableTrigger {
			refs[h.Name] = true
		}
	}

	tables := make(map[string]TableIdentity, len(refs))
	for _, ref := range sortedKeys(refs) {
		tc := TagContext{Project: rc.Project, Stage: rc.Stage, Handler: ref}
		name := ResourceName(rc.Project, rc.Stage, ref)
		e.reporter.Progress(ref, "converging table")
		tr, err := e.tables.Ensure(ctx, name, tc)
		if err != nil {
			return nil, err
		}
		tables[ref] = tr.Identity
	}
	return tables, nil
}

// sweep removes stale routes and orphaned handler resources after a clean
// run.
func (e *Engine) sweep(ctx context.Context, req DeployRequest, api APIIdentity) error {
	var swept error
	if api.ID != "" {
		active := make(map[string]bool)
		for i := range req.Handlers {
			h := &req.Handlers[i]
			if h.Kind == KindHTTPFunction {
				active[h.RouteKey()] = true
			}
		}
		swept = combineErrors(swept, e.sweeper.SweepRoutes(ctx, api.ID, active))
	}

	inv, err := e.scanner.Scan(ctx, req.Project, req.Stage)
	if err != nil {
		return combineErrors(swept, err)
	}
	declared := make(map[string]bool, len(req.Handlers))
	for i := range req.Handlers {
		declared[req.Handlers[i].Name] = true
	}
	// Table refs carry the referencing table's name as their handler tag.
	for i := range req.Handlers {
		for _, ref := range req.Handlers[i].Tables {
			declared[ref] = true
		}
	}
	return combineErrors(swept, e.sweeper.SweepOrphans(ctx, inv, declared))
}

// needsSharedAPI reports whether any handler routes through the shared
// HTTP API.
func needsSharedAPI(handlers []Handler) bool {
	for i := range handlers {
		switch handlers[i].Kind {
		case KindHTTPFunction, KindAuthorizer:
			return true
		}
	}
	return false
}

// Status scans the live inventory for a project and stage.
func (e *Engine) Status(ctx context.Context, project, stage string) (*Inventory, error) {
	return e.scanner.Scan(ctx, project, stage)
}
