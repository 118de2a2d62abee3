package deploy

import (
	"context"
	"fmt"

	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// edgeRewriteCode is the viewer-request function associated with static
// site distributions. It maps directory URIs to their index document so
// plain multi-page sites resolve without trailing filenames.
const edgeRewriteCode = `function handler(event) {
  var request = event.request;
  var uri = request.uri;
  if (uri.endsWith('/')) {
    request.uri = uri + 'index.html';
  } else if (!uri.includes('.')) {
    request.uri = uri + '/index.html';
  }
  return request;
}
`

// pipeline converges everything one handler needs, strictly in dependency
// order: role before function, function before trigger wiring. It never
// touches another handler's resources, which is what makes handler tasks
// safe to run concurrently.
type pipeline struct {
	engine *Engine
	rc     *RunContext
	api    APIIdentity
	// tables maps a table handler name to its converged identity, ensured
	// before any pipeline starts.
	tables map[string]TableIdentity
}

// run converges one handler and returns its result. The identity string is
// the handler's outward-facing address: route key, queue URL, site domain,
// or function ARN.
func (p *pipeline) run(ctx context.Context, h *Handler) (HandlerResult, error) {
	tc := TagContext{Project: p.rc.Project, Stage: p.rc.Stage, Handler: h.Name}
	reporter := p.engine.reporter

	if h.isSite() {
		return p.runSite(ctx, h, tc)
	}

	reporter.Progress(h.Name, "converging role")
	roleName := ResourceName(p.rc.Project, p.rc.Stage, h.Name)
	env, statements := ResolveWiring(p.rc, h)
	statements = append(defaultStatements(p.rc.Region, p.rc.AccountID, roleName), statements...)
	roleResult, err := p.engine.roles.Ensure(ctx, roleName, statements, tc)
	if err != nil {
		return HandlerResult{Name: h.Name}, err
	}

	reporter.Progress(h.Name, "converging function")
	spec := FunctionSpec{
		Name:       ResourceName(p.rc.Project, p.rc.Stage, h.Name),
		RoleARN:    roleResult.Identity,
		MemoryMB:   h.Memory(),
		TimeoutSec: h.Timeout(),
		Env:        env,
		Artifact:   p.rc.Artifact,
	}
	if p.rc.LayerARN != "" {
		spec.Layers = []string{p.rc.LayerARN}
	}
	fnResult, err := p.engine.functions.Ensure(ctx, spec, tc)
	if err != nil {
		return HandlerResult{Name: h.Name}, err
	}
	functionARN := fnResult.Identity

	status := mergeStatus(roleResult.Status, fnResult.Status)
	identity := functionARN

	reporter.Progress(h.Name, "wiring trigger")
	switch h.Kind {
	case KindHTTPFunction:
		routeStatus, err := p.wireRoute(ctx, h, spec.Name, functionARN)
		if err != nil {
			return HandlerResult{Name: h.Name}, err
		}
		status = mergeStatus(status, routeStatus)
		identity = h.RouteKey()

	case KindAuthorizer:
		authResult, err := p.engine.httpAPI.EnsureAuthorizer(
			ctx, p.api.ID, spec.Name, LambdaInvokeURI(p.rc.Region, functionARN))
		if err != nil {
			return HandlerResult{Name: h.Name}, err
		}
		err = p.engine.functions.EnsureInvokePermission(
			ctx, spec.Name, "effortless-authorizer", "apigateway.amazonaws.com",
			APIInvokeSourceARN(p.rc.Region, p.rc.AccountID, p.api.ID))
		if err != nil {
			return HandlerResult{Name: h.Name}, err
		}
		status = mergeStatus(status, authResult.Status)
		identity = authResult.Identity

	case KindWebSocket:
		wsResult, err := p.engine.websockets.Ensure(ctx, p.rc, h.Name, functionARN, tc)
		if err != nil {
			return HandlerResult{Name: h.Name}, err
		}
		err = p.engine.functions.EnsureInvokePermission(
			ctx, spec.Name, "effortless-websocket", "apigateway.amazonaws.com",
			APIInvokeSourceARN(p.rc.Region, p.rc.AccountID, wsResult.Identity.ID))
		if err != nil {
			return HandlerResult{Name: h.Name}, err
		}
		status = mergeStatus(status, wsResult.Status)
		identity = wsResult.Identity.Endpoint

	case KindTableTrigger:
		table, ok := p.tables[h.Name]
		if !ok || table.StreamARN == "" {
			return HandlerResult{Name: h.Name},
				fmt.Errorf("handler %q: source table stream unavailable", h.Name)
		}
		mapResult, err := p.engine.functions.EnsureEventSourceMapping(ctx, MappingSpec{
			FunctionName:     spec.Name,
			SourceARN:        table.StreamARN,
			BatchSize:        h.Batch(),
			StartingPosition: lambdatypes.EventSourcePositionLatest,
		})
		if err != nil {
			return HandlerResult{Name: h.Name}, err
		}
		status = mergeStatus(status, mapResult.Status)

	case KindFIFOConsumer:
		queueResult, err := p.engine.queues.Ensure(ctx, p.rc, h, tc)
		if err != nil {
			return HandlerResult{Name: h.Name}, err
		}
		mapResult, err := p.engine.functions.EnsureEventSourceMapping(ctx, MappingSpec{
			FunctionName: spec.Name,
			SourceARN:    queueResult.Identity.ARN,
			BatchSize:    h.Batch(),
		})
		if err != nil {
			return HandlerResult{Name: h.Name}, err
		}
		status = mergeStatus(status, queueResult.Status, mapResult.Status)
		identity = queueResult.Identity.URL
	}

	return HandlerResult{Name: h.Name, Status: status, Identity: identity}, nil
}

// wireRoute connects an http-function handler to the shared API: reuse or
// create the integration for the function's invoke URI, point the route at
// it, and grant the routing layer invoke permission.
func (p *pipeline) wireRoute(
	ctx context.Context, h *Handler, functionName, functionARN string,
) (EnsureStatus, error) {
	uri := LambdaInvokeURI(p.rc.Region, functionARN)
	integration, err := p.engine.httpAPI.EnsureIntegration(ctx, p.api.ID, uri)
	if err != nil {
		return "", err
	}
	route, err := p.engine.httpAPI.EnsureRoute(ctx, p.api.ID, h.RouteKey(), integration.Identity)
	if err != nil {
		return "", err
	}
	err = p.engine.functions.EnsureInvokePermission(
		ctx, functionName, "effortless-apigateway", "apigateway.amazonaws.com",
		APIInvokeSourceARN(p.rc.Region, p.rc.AccountID, p.api.ID))
	if err != nil {
		return "", err
	}
	return mergeStatus(integration.Status, route.Status), nil
}

// runSite converges a bucket-backed distribution. The bucket policy is
// attached after the distribution exists because it names the distribution
// ARN.
func (p *pipeline) runSite(ctx context.Context, h *Handler, tc TagContext) (HandlerResult, error) {
	reporter := p.engine.reporter
	baseName := ResourceName(p.rc.Project, p.rc.Stage, h.Name)

	reporter.Progress(h.Name, "converging site bucket")
	bucketName := SiteBucketName(p.rc.Project, p.rc.Stage, h.Name)
	bucketResult, err := p.engine.buckets.Ensure(ctx, bucketName, tc)
	if err != nil {
		return HandlerResult{Name: h.Name}, err
	}

	oacResult, err := p.engine.distributions.EnsureOAC(ctx, baseName)
	if err != nil {
		return HandlerResult{Name: h.Name}, err
	}

	spec := DistributionSpec{
		HandlerName:       h.Name,
		OriginDomain:      p.engine.buckets.BucketRegionalDomain(bucketName),
		OACID:             oacResult.Identity,
		DefaultRootObject: "index.html",
		SPAFallback:       h.Kind == KindAppSite,
	}

	if h.Kind == KindStaticSite {
		edgeResult, err := p.engine.distributions.EnsureEdgeFunction(
			ctx, baseName+"-rewrite", []byte(edgeRewriteCode))
		if err != nil {
			return HandlerResult{Name: h.Name}, err
		}
		spec.EdgeFunctionARN = edgeResult.Identity
	}

	if h.Domain != "" {
		reporter.Progress(h.Name, "resolving certificate")
		certARN, err := p.engine.certificates.Find(ctx, h.Domain)
		if err != nil {
			return HandlerResult{Name: h.Name}, err
		}
		spec.CertificateARN = certARN
		spec.Aliases = []string{h.Domain}
	}

	reporter.Progress(h.Name, "converging distribution")
	distResult, err := p.engine.distributions.Ensure(ctx, spec, tc)
	if err != nil {
		return HandlerResult{Name: h.Name}, err
	}

	err = p.engine.buckets.AttachDistributionPolicy(ctx, bucketName, distResult.Identity.ARN, tc)
	if err != nil {
		return HandlerResult{Name: h.Name}, err
	}

	identity := distResult.Identity.DomainName
	if h.Domain != "" {
		identity = h.Domain
	}
	return HandlerResult{
		Name:     h.Name,
		Status:   mergeStatus(bucketResult.Status, oacResult.Status, distResult.Status),
		Identity: identity,
	}, nil
}
