package deploy

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

// inlinePolicyName is the single inline policy each handler role carries.
const inlinePolicyName = "effortless-handler"

// RoleReconciler converges the IAM role carrying a handler's merged
// permission set.
type RoleReconciler struct {
	api RoleAPI
}

// NewRoleReconciler constructs a RoleReconciler.
func NewRoleReconciler(api RoleAPI) *RoleReconciler {
	return &RoleReconciler{api: api}
}

// Ensure converges the role named name to carry exactly the given
// statements. The returned identity is the role ARN.
func (r *RoleReconciler) Ensure(
	ctx context.Context, name string, statements []PolicyStatement, tc TagContext,
) (EnsureResult[string], error) {
	var zero EnsureResult[string]

	desired, err := marshalPolicy(statements)
	if err != nil {
		return zero, err
	}

	arn, createStatus, err := r.locateOrCreate(ctx, name, tc)
	if err != nil {
		return zero, err
	}

	policyStatus, err := r.convergePolicy(ctx, name, desired)
	if err != nil {
		return zero, err
	}

	// Re-tag on every run so tags stay in sync even when nothing else
	// changed.
	if err := r.tag(ctx, name, tc); err != nil {
		return zero, err
	}

	return EnsureResult[string]{
		Identity: arn,
		Status:   mergeStatus(createStatus, policyStatus),
	}, nil
}

// locateOrCreate finds the role or creates it with the Lambda trust
// document. A Conflict on create means another process won the race; the
// role is re-read and adopted.
func (r *RoleReconciler) locateOrCreate(
	ctx context.Context, name string, tc TagContext,
) (string, EnsureStatus, error) {
	out, err := retryThrottled(ctx, func() (*iam.GetRoleOutput, error) {
		return r.api.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
	})
	if err == nil {
		return aws.ToString(out.Role.Arn), StatusUnchanged, nil
	}
	if !IsNotFound(err) {
		return "", StatusUnchanged, newDeployError(tc.Handler, ResTypeRole, "locate", err)
	}

	createOut, err := r.api.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(name),
		AssumeRolePolicyDocument: aws.String(assumeRolePolicy),
		Tags:                     iamTags(tc.Tags(ResTypeRole)),
	})
	if err != nil {
		if IsConflict(err) {
			log.Printf("effortless: role %q already exists, adopting", name)
			adopted, getErr := r.api.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
			if getErr != nil {
				return "", StatusUnchanged, newDeployError(tc.Handler, ResTypeRole, "adopt", getErr)
			}
			return aws.ToString(adopted.Role.Arn), StatusUnchanged, nil
		}
		return "", StatusUnchanged, newDeployError(tc.Handler, ResTypeRole, "create", err)
	}
	return aws.ToString(createOut.Role.Arn), StatusCreated, nil
}

// convergePolicy writes the inline policy only when the live document
// differs from the desired canonical form.
func (r *RoleReconciler) convergePolicy(
	ctx context.Context, name, desired string,
) (EnsureStatus, error) {
	live, err := r.api.GetRolePolicy(ctx, &iam.GetRolePolicyInput{
		RoleName:   aws.String(name),
		PolicyName: aws.String(inlinePolicyName),
	})
	if err == nil && samePolicyDocument(aws.ToString(live.PolicyDocument), desired) {
		return StatusUnchanged, nil
	}
	if err != nil && !IsNotFound(err) {
		return StatusUnchanged, fmt.Errorf("read role policy %q: %w", name, err)
	}

	_, err = retryThrottled(ctx, func() (*iam.PutRolePolicyOutput, error) {
		return r.api.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
			RoleName:       aws.String(name),
			PolicyName:     aws.String(inlinePolicyName),
			PolicyDocument: aws.String(desired),
		})
	})
	if err != nil {
		return StatusUnchanged, fmt.Errorf("put role policy %q: %w", name, err)
	}
	return StatusUpdated, nil
}

// tag keeps the ownership tags in sync.
func (r *RoleReconciler) tag(ctx context.Context, name string, tc TagContext) error {
	_, err := r.api.TagRole(ctx, &iam.TagRoleInput{
		RoleName: aws.String(name),
		Tags:     iamTags(tc.Tags(ResTypeRole)),
	})
	if err != nil {
		return fmt.Errorf("tag role %q: %w", name, err)
	}
	return nil
}

// Delete removes the inline policy then the role. A role that is already
// gone is success.
func (r *RoleReconciler) Delete(ctx context.Context, name string) error {
	_, err := r.api.DeleteRolePolicy(ctx, &iam.DeleteRolePolicyInput{
		RoleName:   aws.String(name),
		PolicyName: aws.String(inlinePolicyName),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete role policy %q: %w", name, err)
	}
	_, err = r.api.DeleteRole(ctx, &iam.DeleteRoleInput{RoleName: aws.String(name)})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete role %q: %w", name, err)
	}
	return nil
}

// iamTags converts a tag map to the role service's tag list, sorted by key
// for deterministic requests.
func iamTags(tags map[string]string) []iamtypes.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]iamtypes.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, iamtypes.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}
