package deploy

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// MappingSpec describes one event-source mapping between a stream or
// queue and a function.
type MappingSpec struct {
	FunctionName string
	SourceARN    string
	BatchSize    int32
	// StartingPosition applies to stream sources only; queue sources must
	// leave it empty.
	StartingPosition lambdatypes.EventSourcePosition
}

// EnsureEventSourceMapping wires a stream or queue to a function. Mappings
// are located by their source ARN so repeated runs reuse the existing
// mapping; a Conflict on create means another run won the race and is
// treated as satisfied.
func (r *FunctionReconciler) EnsureEventSourceMapping(
	ctx context.Context, spec MappingSpec,
) (EnsureResult[string], error) {
	var zero EnsureResult[string]

	list, err := r.api.ListEventSourceMappings(ctx, &lambda.ListEventSourceMappingsInput{
		EventSourceArn: aws.String(spec.SourceARN),
		FunctionName:   aws.String(spec.FunctionName),
	})
	if err != nil {
		return zero, newDeployError("", ResTypeFunction, "locate event source mapping", err)
	}
	if len(list.EventSourceMappings) > 0 {
		return unchanged(aws.ToString(list.EventSourceMappings[0].UUID)), nil
	}

	input := &lambda.CreateEventSourceMappingInput{
		EventSourceArn: aws.String(spec.SourceARN),
		FunctionName:   aws.String(spec.FunctionName),
		BatchSize:      aws.Int32(spec.BatchSize),
		Enabled:        aws.Bool(true),
	}
	if spec.StartingPosition != "" {
		input.StartingPosition = spec.StartingPosition
	}

	out, err := retryThrottled(ctx, func() (*lambda.CreateEventSourceMappingOutput, error) {
		return r.api.CreateEventSourceMapping(ctx, input)
	})
	if err != nil {
		if IsConflict(err) {
			log.Printf("effortless: event source mapping for %q already exists, adopting", spec.FunctionName)
			return unchanged(""), nil
		}
		return zero, newDeployError("", ResTypeFunction, "create event source mapping", err)
	}
	return created(aws.ToString(out.UUID)), nil
}
