package deploy

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
	apitypes "github.com/aws/aws-sdk-go-v2/service/apigatewayv2/types"
)

// WebSocket lifecycle route keys. Every websocket handler gets all three
// wired to the same integration.
var websocketRouteKeys = []string{"$connect", "$disconnect", "$default"}

// wsRouteSelection picks the route from the message body for non-lifecycle
// frames.
const wsRouteSelection = "$request.body.action"

// WebSocketReconciler converges the per-handler WebSocket API. Unlike the
// shared HTTP API, each websocket handler gets an isolated API.
type WebSocketReconciler struct {
	api    RouteAPI
	routes *HTTPAPIReconciler
}

// NewWebSocketReconciler constructs a WebSocketReconciler.
func NewWebSocketReconciler(api RouteAPI) *WebSocketReconciler {
	return &WebSocketReconciler{api: api, routes: NewHTTPAPIReconciler(api)}
}

// Ensure converges the handler's WebSocket API, its lifecycle routes, and
// the single proxy integration they share. The returned identity is the
// API.
func (r *WebSocketReconciler) Ensure(
	ctx context.Context, rc *RunContext, handlerName, functionARN string, tc TagContext,
) (EnsureResult[APIIdentity], error) {
	var zero EnsureResult[APIIdentity]
	name := WebSocketAPIName(rc.Project, rc.Stage, handlerName)

	existing, err := r.routes.findAPIByName(ctx, name)
	if err != nil {
		return zero, newDeployError(handlerName, ResTypeAPI, "locate", err)
	}

	var identity APIIdentity
	apiStatus := StatusUnchanged
	if existing != nil {
		identity = APIIdentity{
			ID:       aws.ToString(existing.ApiId),
			Endpoint: aws.ToString(existing.ApiEndpoint),
		}
	} else {
		out, err := retryThrottled(ctx, func() (*apigatewayv2.CreateApiOutput, error) {
			return r.api.CreateApi(ctx, &apigatewayv2.CreateApiInput{
				Name:                     aws.String(name),
				ProtocolType:             apitypes.ProtocolTypeWebsocket,
				RouteSelectionExpression: aws.String(wsRouteSelection),
				Tags:                     tc.Tags(ResTypeAPI),
			})
		})
		if err != nil {
			return zero, newDeployError(handlerName, ResTypeAPI, "create", err)
		}
		identity = APIIdentity{
			ID:       aws.ToString(out.ApiId),
			Endpoint: aws.ToString(out.ApiEndpoint),
		}
		apiStatus = StatusCreated

		if err := r.ensureStage(ctx, identity.ID, rc.Stage); err != nil {
			return zero, err
		}
	}

	invokeURI := LambdaInvokeURI(rc.Region, functionARN)
	integration, err := r.routes.EnsureIntegration(ctx, identity.ID, invokeURI)
	if err != nil {
		return zero, err
	}

	routeStatuses := make([]EnsureStatus, 0, len(websocketRouteKeys))
	for _, key := range websocketRouteKeys {
		res, err := r.routes.EnsureRoute(ctx, identity.ID, key, integration.Identity)
		if err != nil {
			return zero, err
		}
		routeStatuses = append(routeStatuses, res.Status)
	}

	statuses := append([]EnsureStatus{apiStatus, integration.Status}, routeStatuses...)
	return EnsureResult[APIIdentity]{
		Identity: identity,
		Status:   mergeStatus(statuses...),
	}, nil
}

// ensureStage creates the deployment stage for the websocket API, treating
// an existing stage as satisfied.
func (r *WebSocketReconciler) ensureStage(ctx context.Context, apiID, stage string) error {
	_, err := r.api.CreateStage(ctx, &apigatewayv2.CreateStageInput{
		ApiId:      aws.String(apiID),
		StageName:  aws.String(stage),
		AutoDeploy: aws.Bool(true),
	})
	if err != nil && !IsConflict(err) {
		return fmt.Errorf("create stage %q on websocket api %q: %w", stage, apiID, err)
	}
	return nil
}

// Delete removes the handler's WebSocket API. Already-gone is success.
func (r *WebSocketReconciler) Delete(ctx context.Context, apiID string) error {
	_, err := r.api.DeleteApi(ctx, &apigatewayv2.DeleteApiInput{ApiId: aws.String(apiID)})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete websocket api %q: %w", apiID, err)
	}
	return nil
}
