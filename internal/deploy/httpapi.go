package deploy

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
	apitypes "github.com/aws/aws-sdk-go-v2/service/apigatewayv2/types"
)

// listPageSize is the page size used when listing routing resources.
// API Gateway v2 takes it as a string.
const listPageSize = "100"

// APIIdentity identifies a converged API.
type APIIdentity struct {
	ID       string
	Endpoint string
}

// HTTPAPIReconciler converges the shared HTTP API for a project+stage and
// its per-handler integrations and routes.
type HTTPAPIReconciler struct {
	api RouteAPI
}

// NewHTTPAPIReconciler constructs an HTTPAPIReconciler.
func NewHTTPAPIReconciler(api RouteAPI) *HTTPAPIReconciler {
	return &HTTPAPIReconciler{api: api}
}

// EnsureAPI locates the shared HTTP API by its logical name, creating it
// (with a $default auto-deploy stage) when absent. There is exactly one
// HTTP API per project+stage; it is resolved once per run and shared
// read-only by every handler task.
func (r *HTTPAPIReconciler) EnsureAPI(
	ctx context.Context, project, stage, region string, tc TagContext,
) (EnsureResult[APIIdentity], error) {
	var zero EnsureResult[APIIdentity]
	name := HTTPAPIName(project, stage)

	existing, err := r.findAPIByName(ctx, name)
	if err != nil {
		return zero, newDeployError("", ResTypeAPI, "locate", err)
	}
	if existing != nil {
		apiID := aws.ToString(existing.ApiId)
		// Keep tags in sync even when nothing else changed.
		if err := r.tagAPI(ctx, region, apiID, tc); err != nil {
			return zero, err
		}
		// An adopted API may predate this tool and lack the stage.
		if err := r.ensureDefaultStage(ctx, apiID); err != nil {
			return zero, err
		}
		return unchanged(APIIdentity{
			ID:       apiID,
			Endpoint: aws.ToString(existing.ApiEndpoint),
		}), nil
	}

	out, err := retryThrottled(ctx, func() (*apigatewayv2.CreateApiOutput, error) {
		return r.api.CreateApi(ctx, &apigatewayv2.CreateApiInput{
			Name:         aws.String(name),
			ProtocolType: apitypes.ProtocolTypeHttp,
			Tags:         tc.shared().Tags(ResTypeAPI),
		})
	})
	if err != nil {
		return zero, newDeployError("", ResTypeAPI, "create", err)
	}

	apiID := aws.ToString(out.ApiId)
	if err := r.ensureDefaultStage(ctx, apiID); err != nil {
		return zero, err
	}

	return created(APIIdentity{
		ID:       apiID,
		Endpoint: aws.ToString(out.ApiEndpoint),
	}), nil
}

// ensureDefaultStage verifies the $default auto-deploy stage exists,
// creating it when absent. A concurrent create is satisfied through the
// Conflict check.
func (r *HTTPAPIReconciler) ensureDefaultStage(ctx context.Context, apiID string) error {
	stages, err := r.api.GetStages(ctx, &apigatewayv2.GetStagesInput{
		ApiId:      aws.String(apiID),
		MaxResults: aws.String(listPageSize),
	})
	if err != nil {
		return fmt.Errorf("list stages on api %q: %w", apiID, err)
	}
	for _, stage := range stages.Items {
		if aws.ToString(stage.StageName) == "$default" {
			return nil
		}
	}

	_, err = r.api.CreateStage(ctx, &apigatewayv2.CreateStageInput{
		ApiId:      aws.String(apiID),
		StageName:  aws.String("$default"),
		AutoDeploy: aws.Bool(true),
	})
	if err != nil && !IsConflict(err) {
		return fmt.Errorf("create $default stage on api %q: %w", apiID, err)
	}
	return nil
}

// EnsureAuthorizer converges the REQUEST-type Lambda authorizer for a
// handler, located by its logical name among the API's authorizers. Only
// the invocation URI is ever updated; identity sources are fixed at the
// Authorization header.
func (r *HTTPAPIReconciler) EnsureAuthorizer(
	ctx context.Context, apiID, name, invokeURI string,
) (EnsureResult[string], error) {
	var zero EnsureResult[string]

	existing, err := r.findAuthorizerByName(ctx, apiID, name)
	if err != nil {
		return zero, fmt.Errorf("list authorizers on api %q: %w", apiID, err)
	}
	if existing != nil {
		authorizerID := aws.ToString(existing.AuthorizerId)
		if aws.ToString(existing.AuthorizerUri) == invokeURI {
			return unchanged(authorizerID), nil
		}
		_, err := r.api.UpdateAuthorizer(ctx, &apigatewayv2.UpdateAuthorizerInput{
			ApiId:         aws.String(apiID),
			AuthorizerId:  aws.String(authorizerID),
			AuthorizerUri: aws.String(invokeURI),
		})
		if err != nil {
			return zero, fmt.Errorf("update authorizer %q on api %q: %w", name, apiID, err)
		}
		return updated(authorizerID), nil
	}

	out, err := retryThrottled(ctx, func() (*apigatewayv2.CreateAuthorizerOutput, error) {
		return r.api.CreateAuthorizer(ctx, &apigatewayv2.CreateAuthorizerInput{
			ApiId:                          aws.String(apiID),
			Name:                           aws.String(name),
			AuthorizerType:                 apitypes.AuthorizerTypeRequest,
			AuthorizerUri:                  aws.String(invokeURI),
			AuthorizerPayloadFormatVersion: aws.String("2.0"),
			IdentitySource:                 []string{"$request.header.Authorization"},
			EnableSimpleResponses:          aws.Bool(true),
		})
	})
	if err != nil {
		return zero, fmt.Errorf("create authorizer %q on api %q: %w", name, apiID, err)
	}
	return created(aws.ToString(out.AuthorizerId)), nil
}

// findAuthorizerByName lists the API's authorizers and returns the one
// matching name, or nil.
func (r *HTTPAPIReconciler) findAuthorizerByName(
	ctx context.Context, apiID, name string,
) (*apitypes.Authorizer, error) {
	var nextToken *string
	for {
		out, err := r.api.GetAuthorizers(ctx, &apigatewayv2.GetAuthorizersInput{
			ApiId:      aws.String(apiID),
			MaxResults: aws.String(listPageSize),
			NextToken:  nextToken,
		})
		if err != nil {
			return nil, err
		}
		for i := range out.Items {
			if aws.ToString(out.Items[i].Name) == name {
				return &out.Items[i], nil
			}
		}
		if out.NextToken == nil {
			return nil, nil
		}
		nextToken = out.NextToken
	}
}

// EnsureIntegration locates the proxy integration by its target invocation
// URI so repeated runs reuse the same integration instead of creating
// duplicates. Integrations have no usable name to locate by.
func (r *HTTPAPIReconciler) EnsureIntegration(
	ctx context.Context, apiID, invokeURI string,
) (EnsureResult[string], error) {
	var zero EnsureResult[string]

	var nextToken *string
	for {
		out, err := r.api.GetIntegrations(ctx, &apigatewayv2.GetIntegrationsInput{
			ApiId:      aws.String(apiID),
			MaxResults: aws.String(listPageSize),
			NextToken:  nextToken,
		})
		if err != nil {
			return zero, fmt.Errorf("list integrations on api %q: %w", apiID, err)
		}
		for _, it := range out.Items {
			if aws.ToString(it.IntegrationUri) == invokeURI {
				return unchanged(aws.ToString(it.IntegrationId)), nil
			}
		}
		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	createOut, err := retryThrottled(ctx, func() (*apigatewayv2.CreateIntegrationOutput, error) {
		return r.api.CreateIntegration(ctx, &apigatewayv2.CreateIntegrationInput{
			ApiId:                aws.String(apiID),
			IntegrationType:      apitypes.IntegrationTypeAwsProxy,
			IntegrationUri:       aws.String(invokeURI),
			PayloadFormatVersion: aws.String("2.0"),
			IntegrationMethod:    aws.String("POST"),
		})
	})
	if err != nil {
		return zero, fmt.Errorf("create integration on api %q: %w", apiID, err)
	}
	return created(aws.ToString(createOut.IntegrationId)), nil
}

// EnsureRoute locates the route by its route key (method+path) and updates
// it only when its target integration changed.
func (r *HTTPAPIReconciler) EnsureRoute(
	ctx context.Context, apiID, routeKey, integrationID string,
) (EnsureResult[string], error) {
	var zero EnsureResult[string]
	target := integrationTarget(integrationID)

	existing, err := r.findRouteByKey(ctx, apiID, routeKey)
	if err != nil {
		return zero, err
	}
	if existing != nil {
		routeID := aws.ToString(existing.RouteId)
		if aws.ToString(existing.Target) == target {
			return unchanged(routeID), nil
		}
		_, err := r.api.UpdateRoute(ctx, &apigatewayv2.UpdateRouteInput{
			ApiId:   aws.String(apiID),
			RouteId: aws.String(routeID),
			Target:  aws.String(target),
		})
		if err != nil {
			return zero, fmt.Errorf("update route %q on api %q: %w", routeKey, apiID, err)
		}
		return updated(routeID), nil
	}

	out, err := retryThrottled(ctx, func() (*apigatewayv2.CreateRouteOutput, error) {
		return r.api.CreateRoute(ctx, &apigatewayv2.CreateRouteInput{
			ApiId:    aws.String(apiID),
			RouteKey: aws.String(routeKey),
			Target:   aws.String(target),
		})
	})
	if err != nil {
		return zero, fmt.Errorf("create route %q on api %q: %w", routeKey, apiID, err)
	}
	return created(aws.ToString(out.RouteId)), nil
}

// findAPIByName lists APIs and returns the one matching name, or nil.
func (r *HTTPAPIReconciler) findAPIByName(ctx context.Context, name string) (*apitypes.Api, error) {
	var nextToken *string
	for {
		out, err := r.api.GetApis(ctx, &apigatewayv2.GetApisInput{
			MaxResults: aws.String(listPageSize),
			NextToken:  nextToken,
		})
		if err != nil {
			return nil, err
		}
		for i := range out.Items {
			if aws.ToString(out.Items[i].Name) == name {
				return &out.Items[i], nil
			}
		}
		if out.NextToken == nil {
			return nil, nil
		}
		nextToken = out.NextToken
	}
}

// findRouteByKey lists routes and returns the one matching routeKey, or nil.
func (r *HTTPAPIReconciler) findRouteByKey(
	ctx context.Context, apiID, routeKey string,
) (*apitypes.Route, error) {
	var nextToken *string
	for {
		out, err := r.api.GetRoutes(ctx, &apigatewayv2.GetRoutesInput{
			ApiId:      aws.String(apiID),
			MaxResults: aws.String(listPageSize),
			NextToken:  nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("list routes on api %q: %w", apiID, err)
		}
		for i := range out.Items {
			if aws.ToString(out.Items[i].RouteKey) == routeKey {
				return &out.Items[i], nil
			}
		}
		if out.NextToken == nil {
			return nil, nil
		}
		nextToken = out.NextToken
	}
}

// tagAPI keeps the shared API's ownership tags in sync.
func (r *HTTPAPIReconciler) tagAPI(ctx context.Context, region, apiID string, tc TagContext) error {
	arn := fmt.Sprintf("arn:aws:apigateway:%s::/apis/%s", region, apiID)
	_, err := r.api.TagResource(ctx, &apigatewayv2.TagResourceInput{
		ResourceArn: aws.String(arn),
		Tags:        tc.shared().Tags(ResTypeAPI),
	})
	if err != nil {
		return fmt.Errorf("tag api %q: %w", apiID, err)
	}
	return nil
}

// integrationTarget renders the route target reference for an integration.
func integrationTarget(integrationID string) string {
	return "integrations/" + integrationID
}

// LambdaInvokeURI builds the invocation URI the routing layer uses to call
// a function.
func LambdaInvokeURI(region, functionARN string) string {
	return fmt.Sprintf(
		"arn:aws:apigateway:%s:lambda:path/2015-03-31/functions/%s/invocations",
		region, functionARN,
	)
}

// APIInvokeSourceARN builds the source ARN for the routing layer's invoke
// permission grant.
func APIInvokeSourceARN(region, accountID, apiID string) string {
	return fmt.Sprintf("arn:aws:execute-api:%s:%s:%s/*", region, accountID, apiID)
}
