package deploy

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// Function defaults. The handler entry matches the bundled artifact layout
// produced by the (external) packaging step.
const (
	defaultRuntime      = lambdatypes.RuntimeNodejs20x
	defaultArchitecture = lambdatypes.ArchitectureArm64
	defaultEntry        = "index.handler"
)

// FunctionSpec is the desired configuration for one compute function.
type FunctionSpec struct {
	Name         string
	RoleARN      string
	Entry        string
	Runtime      lambdatypes.Runtime
	Architecture lambdatypes.Architecture
	MemoryMB     int32
	TimeoutSec   int32
	Env          map[string]string
	Layers       []string
	Artifact     *Artifact
}

// withDefaults fills unset optional fields.
func (s FunctionSpec) withDefaults() FunctionSpec {
	if s.Entry == "" {
		s.Entry = defaultEntry
	}
	if s.Runtime == "" {
		s.Runtime = defaultRuntime
	}
	if s.Architecture == "" {
		s.Architecture = defaultArchitecture
	}
	return s
}

// FunctionReconciler converges compute functions.
type FunctionReconciler struct {
	api FunctionAPI
}

// NewFunctionReconciler constructs a FunctionReconciler.
func NewFunctionReconciler(api FunctionAPI) *FunctionReconciler {
	return &FunctionReconciler{api: api}
}

// Ensure converges the function to the spec. The returned identity is the
// function ARN. Code and configuration are updated via two independent
// calls because the remote API forbids modifying both at once; when the
// configuration call reports a conflict from the still-settling code
// update, the reconciler waits for activation and retries it exactly once.
func (r *FunctionReconciler) Ensure(
	ctx context.Context, spec FunctionSpec, tc TagContext,
) (EnsureResult[string], error) {
	var zero EnsureResult[string]
	spec = spec.withDefaults()

	out, err := retryThrottled(ctx, func() (*lambda.GetFunctionOutput, error) {
		return r.api.GetFunction(ctx, &lambda.GetFunctionInput{
			FunctionName: aws.String(spec.Name),
		})
	})
	if err != nil {
		if !IsNotFound(err) {
			return zero, newDeployError(tc.Handler, ResTypeFunction, "locate", err)
		}
		arn, createErr := r.create(ctx, spec, tc)
		if createErr != nil {
			return zero, createErr
		}
		return created(arn), nil
	}

	live := out.Configuration
	arn := aws.ToString(live.FunctionArn)

	codeStatus, err := r.convergeCode(ctx, spec, live, tc)
	if err != nil {
		return zero, err
	}

	configStatus, err := r.convergeConfig(ctx, spec, live, tc)
	if err != nil {
		return zero, err
	}

	if err := r.tag(ctx, arn, tc); err != nil {
		return zero, err
	}

	return EnsureResult[string]{
		Identity: arn,
		Status:   mergeStatus(codeStatus, configStatus),
	}, nil
}

// create provisions the function with the full desired configuration and
// waits for it to become active.
func (r *FunctionReconciler) create(
	ctx context.Context, spec FunctionSpec, tc TagContext,
) (string, error) {
	input := &lambda.CreateFunctionInput{
		FunctionName:  aws.String(spec.Name),
		Role:          aws.String(spec.RoleARN),
		Handler:       aws.String(spec.Entry),
		Runtime:       spec.Runtime,
		Architectures: []lambdatypes.Architecture{spec.Architecture},
		MemorySize:    aws.Int32(spec.MemoryMB),
		Timeout:       aws.Int32(spec.TimeoutSec),
		Code:          &lambdatypes.FunctionCode{ZipFile: spec.Artifact.Zip},
		Tags:          tc.Tags(ResTypeFunction),
	}
	if len(spec.Env) > 0 {
		input.Environment = &lambdatypes.Environment{Variables: spec.Env}
	}
	if len(spec.Layers) > 0 {
		input.Layers = spec.Layers
	}

	out, err := retryThrottled(ctx, func() (*lambda.CreateFunctionOutput, error) {
		return r.api.CreateFunction(ctx, input)
	})
	if err != nil {
		if IsConflict(err) {
			log.Printf("effortless: function %q already exists, adopting", spec.Name)
			adopted, getErr := r.api.GetFunction(ctx, &lambda.GetFunctionInput{
				FunctionName: aws.String(spec.Name),
			})
			if getErr != nil {
				return "", newDeployError(tc.Handler, ResTypeFunction, "adopt", getErr)
			}
			return aws.ToString(adopted.Configuration.FunctionArn), nil
		}
		return "", newDeployError(tc.Handler, ResTypeFunction, "create", err)
	}

	if err := r.waitActive(ctx, spec.Name); err != nil {
		return aws.ToString(out.FunctionArn),
			fmt.Errorf("function %q created but not active: %w", spec.Name, err)
	}
	return aws.ToString(out.FunctionArn), nil
}

// convergeCode re-uploads the artifact only when its content hash differs
// from the deployed code hash.
func (r *FunctionReconciler) convergeCode(
	ctx context.Context, spec FunctionSpec, live *lambdatypes.FunctionConfiguration, tc TagContext,
) (EnsureStatus, error) {
	if aws.ToString(live.CodeSha256) == spec.Artifact.Hash {
		return StatusUnchanged, nil
	}

	_, err := retryThrottled(ctx, func() (*lambda.UpdateFunctionCodeOutput, error) {
		return r.api.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
			FunctionName: aws.String(spec.Name),
			ZipFile:      spec.Artifact.Zip,
		})
	})
	if err != nil {
		return StatusUnchanged, newDeployError(tc.Handler, ResTypeFunction, "update code", err)
	}
	return StatusUpdated, nil
}

// convergeConfig diffs the compared configuration fields and issues a
// single update call only when one differs.
func (r *FunctionReconciler) convergeConfig(
	ctx context.Context, spec FunctionSpec, live *lambdatypes.FunctionConfiguration, tc TagContext,
) (EnsureStatus, error) {
	if !functionConfigDiffers(spec, live) {
		return StatusUnchanged, nil
	}

	input := &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(spec.Name),
		Role:         aws.String(spec.RoleARN),
		Handler:      aws.String(spec.Entry),
		Runtime:      spec.Runtime,
		MemorySize:   aws.Int32(spec.MemoryMB),
		Timeout:      aws.Int32(spec.TimeoutSec),
		Environment:  &lambdatypes.Environment{Variables: spec.Env},
		Layers:       spec.Layers,
	}

	_, err := retryThrottled(ctx, func() (*lambda.UpdateFunctionConfigurationOutput, error) {
		return r.api.UpdateFunctionConfiguration(ctx, input)
	})
	if err != nil && IsConflict(err) {
		// The code update from convergeCode is still settling. Wait for
		// activation and retry the configuration call exactly once.
		log.Printf("effortless: function %q still updating, retrying configuration once", spec.Name)
		if waitErr := r.waitActive(ctx, spec.Name); waitErr != nil {
			return StatusUnchanged, waitErr
		}
		_, err = r.api.UpdateFunctionConfiguration(ctx, input)
	}
	if err != nil {
		return StatusUnchanged, newDeployError(tc.Handler, ResTypeFunction, "update configuration", err)
	}
	return StatusUpdated, nil
}

// waitActive polls the function configuration until the function is active
// and no update is in flight.
func (r *FunctionReconciler) waitActive(ctx context.Context, name string) error {
	_, err := Wait(ctx, functionActiveWait,
		func(ctx context.Context) (*lambda.GetFunctionConfigurationOutput, error) {
			return r.api.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{
				FunctionName: aws.String(name),
			})
		},
		func(out *lambda.GetFunctionConfigurationOutput) (Outcome, string) {
			status := fmt.Sprintf("%s/%s", out.State, out.LastUpdateStatus)
			if out.State == lambdatypes.StateFailed ||
				out.LastUpdateStatus == lambdatypes.LastUpdateStatusFailed {
				return OutcomeTerminal, status
			}
			if out.State == lambdatypes.StateActive &&
				out.LastUpdateStatus != lambdatypes.LastUpdateStatusInProgress {
				return OutcomeSatisfied, status
			}
			return OutcomeTransient, status
		},
	)
	return err
}

// tag keeps the ownership tags in sync.
func (r *FunctionReconciler) tag(ctx context.Context, arn string, tc TagContext) error {
	_, err := r.api.TagResource(ctx, &lambda.TagResourceInput{
		Resource: aws.String(arn),
		Tags:     tc.Tags(ResTypeFunction),
	})
	if err != nil {
		return fmt.Errorf("tag function %q: %w", arn, err)
	}
	return nil
}

// EnsureInvokePermission grants principal permission to invoke the
// function. A Conflict from the remote means the grant already exists and
// is treated as satisfied.
func (r *FunctionReconciler) EnsureInvokePermission(
	ctx context.Context, functionName, statementID, principal, sourceARN string,
) error {
	_, err := r.api.AddPermission(ctx, &lambda.AddPermissionInput{
		FunctionName: aws.String(functionName),
		StatementId:  aws.String(statementID),
		Action:       aws.String("lambda:InvokeFunction"),
		Principal:    aws.String(principal),
		SourceArn:    aws.String(sourceARN),
	})
	if err != nil && !IsConflict(err) {
		return fmt.Errorf("add invoke permission %q to %q: %w", statementID, functionName, err)
	}
	return nil
}

// Delete removes the function. Already-gone is success.
func (r *FunctionReconciler) Delete(ctx context.Context, name string) error {
	_, err := r.api.DeleteFunction(ctx, &lambda.DeleteFunctionInput{
		FunctionName: aws.String(name),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete function %q: %w", name, err)
	}
	return nil
}

// functionConfigDiffers compares the compared field set: architecture,
// memory, timeout, handler entry, runtime id, layer set (order
// insensitive), and environment variables (compared over the union of
// keys).
func functionConfigDiffers(spec FunctionSpec, live *lambdatypes.FunctionConfiguration) bool {
	if aws.ToInt32(live.MemorySize) != spec.MemoryMB {
		return true
	}
	if aws.ToInt32(live.Timeout) != spec.TimeoutSec {
		return true
	}
	if aws.ToString(live.Handler) != spec.Entry {
		return true
	}
	if live.Runtime != spec.Runtime {
		return true
	}
	if len(live.Architectures) != 1 || live.Architectures[0] != spec.Architecture {
		return true
	}
	if !sameLayerSet(spec.Layers, live.Layers) {
		return true
	}
	var liveEnv map[string]string
	if live.Environment != nil {
		liveEnv = live.Environment.Variables
	}
	return !sameEnv(spec.Env, liveEnv)
}

// sameLayerSet compares layer ARNs ignoring order.
func sameLayerSet(desired []string, live []lambdatypes.Layer) bool {
	if len(desired) != len(live) {
		return false
	}
	a := append([]string(nil), desired...)
	b := make([]string, 0, len(live))
	for _, l := range live {
		b = append(b, aws.ToString(l.Arn))
	}
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sameEnv compares environment variable maps over the union of their keys.
func sameEnv(desired, live map[string]string) bool {
	for k, v := range desired {
		if live[k] != v {
			return false
		}
	}
	for k, v := range live {
		if desired[k] != v {
			return false
		}
	}
	return true
}
