package deploy

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// LayerReconciler converges the shared dependency-layer artifact. The
// layer is ensured once per project+stage and its version ARN is reused by
// every handler task in the run.
type LayerReconciler struct {
	api FunctionAPI
}

// NewLayerReconciler constructs a LayerReconciler.
func NewLayerReconciler(api FunctionAPI) *LayerReconciler {
	return &LayerReconciler{api: api}
}

// Ensure publishes a new layer version only when the artifact's content
// hash differs from the latest published version. The hash is recorded in
// the version description, which is the only writable metadata a layer
// version carries. The returned identity is the layer version ARN.
func (r *LayerReconciler) Ensure(
	ctx context.Context, project, stage string, artifact *Artifact,
) (EnsureResult[string], error) {
	var zero EnsureResult[string]
	name := LayerName(project, stage)

	out, err := retryThrottled(ctx, func() (*lambda.ListLayerVersionsOutput, error) {
		return r.api.ListLayerVersions(ctx, &lambda.ListLayerVersionsInput{
			LayerName: aws.String(name),
			MaxItems:  aws.Int32(1),
		})
	})
	if err != nil && !IsNotFound(err) {
		return zero, newDeployError("", ResTypeLayer, "locate", err)
	}

	existed := false
	if err == nil && len(out.LayerVersions) > 0 {
		existed = true
		latest := out.LayerVersions[0]
		if aws.ToString(latest.Description) == artifact.Hash {
			return unchanged(aws.ToString(latest.LayerVersionArn)), nil
		}
	}

	pub, err := retryThrottled(ctx, func() (*lambda.PublishLayerVersionOutput, error) {
		return r.api.PublishLayerVersion(ctx, &lambda.PublishLayerVersionInput{
			LayerName:          aws.String(name),
			Description:        aws.String(artifact.Hash),
			Content:            &lambdatypes.LayerVersionContentInput{ZipFile: artifact.Zip},
			CompatibleRuntimes: []lambdatypes.Runtime{defaultRuntime},
		})
	})
	if err != nil {
		return zero, newDeployError("", ResTypeLayer, "publish", err)
	}

	if existed {
		return updated(aws.ToString(pub.LayerVersionArn)), nil
	}
	return created(aws.ToString(pub.LayerVersionArn)), nil
}
