package deploy

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
)

// Sweeper removes resources the declared handler set no longer accounts
// for. It runs after every successful deploy so renamed or deleted
// handlers do not leave live routes or compute behind.
type Sweeper struct {
	routes    RouteAPI
	functions FunctionAPI
	roles     RoleAPI
	queues    QueueAPI
}

// NewSweeper constructs a Sweeper.
func NewSweeper(routes RouteAPI, functions FunctionAPI, roles RoleAPI, queues QueueAPI) *Sweeper {
	return &Sweeper{routes: routes, functions: functions, roles: roles, queues: queues}
}

// SweepRoutes deletes routes whose key is not in active, then deletes any
// integration those routes targeted once no surviving route still uses it.
// Integrations are shared, so an orphan check must precede every
// integration delete. NotFound during any delete means another run already
// swept it and counts as success.
func (s *Sweeper) SweepRoutes(ctx context.Context, apiID string, active map[string]bool) error {
	var stale []struct{ routeID, routeKey, target string }
	surviving := make(map[string]bool)

	var nextToken *string
	for {
		out, err := s.routes.GetRoutes(ctx, &apigatewayv2.GetRoutesInput{
			ApiId:      aws.String(apiID),
			MaxResults: aws.String(listPageSize),
			NextToken:  nextToken,
		})
		if err != nil {
			return fmt.Errorf("list routes for sweep: %w", err)
		}
		for _, route := range out.Items {
			key := aws.ToString(route.RouteKey)
			target := aws.ToString(route.Target)
			if active[key] {
				surviving[target] = true
				continue
			}
			stale = append(stale, struct{ routeID, routeKey, target string }{
				routeID:  aws.ToString(route.RouteId),
				routeKey: key,
				target:   target,
			})
		}
		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	var swept error
	candidateIntegrations := make(map[string]string)
	for _, route := range stale {
		_, err := s.routes.DeleteRoute(ctx, &apigatewayv2.DeleteRouteInput{
			ApiId:   aws.String(apiID),
			RouteId: aws.String(route.routeID),
		})
		if err != nil && !IsNotFound(err) {
			swept = combineErrors(swept, fmt.Errorf("delete stale route %q: %w", route.routeKey, err))
			// The route is still live, so its integration stays in use.
			surviving[route.target] = true
			continue
		}
		log.Printf("effortless: swept stale route %q", route.routeKey)
		if id := integrationIDFromTarget(route.target); id != "" {
			candidateIntegrations[id] = route.target
		}
	}

	// The orphan check runs after every route delete has been attempted:
	// a target shared with a route that failed to delete is not orphaned.
	for id, target := range candidateIntegrations {
		if surviving[target] {
			continue
		}
		_, err := s.routes.DeleteIntegration(ctx, &apigatewayv2.DeleteIntegrationInput{
			ApiId:         aws.String(apiID),
			IntegrationId: aws.String(id),
		})
		if err != nil && !IsNotFound(err) {
			swept = combineErrors(swept, fmt.Errorf("delete orphaned integration %q: %w", id, err))
		}
	}
	return swept
}

// SweepOrphans removes the function, role, and queue of every handler in
// the inventory that the declared set no longer contains. Site and table
// resources hold data and are left for an explicit destroy.
func (s *Sweeper) SweepOrphans(
	ctx context.Context, inv *Inventory, declared map[string]bool,
) error {
	functions := NewFunctionReconciler(s.functions)
	roles := NewRoleReconciler(s.roles)
	queues := NewQueueReconciler(s.queues)

	var swept error
	for handler, records := range inv.GroupByHandler() {
		if handler == "" || declared[handler] {
			continue
		}
		log.Printf("effortless: handler %q no longer declared, sweeping", handler)
		for _, rec := range records {
			var err error
			switch rec.Type {
			case ResTypeFunction:
				err = functions.Delete(ctx, resourceNameFromARN(rec.ARN))
			case ResTypeRole:
				err = roles.Delete(ctx, resourceNameFromARN(rec.ARN))
			case ResTypeQueue:
				err = queues.Delete(ctx, queueURLFromARN(rec.ARN))
			}
			if err != nil {
				swept = combineErrors(swept,
					fmt.Errorf("sweep %s for handler %q: %w", rec.Type, handler, err))
			}
		}
	}
	return swept
}

// integrationIDFromTarget extracts the integration ID from a route target
// of the form "integrations/<id>".
func integrationIDFromTarget(target string) string {
	const prefix = "integrations/"
	if strings.HasPrefix(target, prefix) {
		return target[len(prefix):]
	}
	return ""
}

// queueURLFromARN rebuilds a queue URL from its ARN, e.g.
// "arn:aws:sqs:us-east-1:123:orders.fifo" ->
// "https://sqs.us-east-1.amazonaws.com/123/orders.fifo".
func queueURLFromARN(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) != 6 {
		return arn
	}
	return fmt.Sprintf("https://sqs.%s.amazonaws.com/%s/%s", parts[3], parts[4], parts[5])
}
