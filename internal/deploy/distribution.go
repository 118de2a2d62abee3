package deploy

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
	"github.com/google/uuid"
)

// cachingOptimizedPolicyID is the managed cache policy applied to site
// distributions.
const cachingOptimizedPolicyID = "658327ea-f89d-4fab-a63d-7e88639e58f6"

// distributionDeployedStatus is the remote status marking a distribution
// as fully propagated.
const distributionDeployedStatus = "Deployed"

// DistributionSpec is the desired configuration for a site distribution.
type DistributionSpec struct {
	HandlerName string
	// OriginDomain is the site bucket's regional endpoint.
	OriginDomain string
	// OACID is the origin-access-control the distribution reads the
	// bucket through.
	OACID string
	// DefaultRootObject is the default document, e.g. "index.html".
	DefaultRootObject string
	// SPAFallback rewrites 403/404 to the default document for app sites.
	SPAFallback bool
	// EdgeFunctionARN, when set, is associated on viewer-request.
	EdgeFunctionARN string
	// CertificateARN and Aliases configure a custom domain.
	CertificateARN string
	Aliases        []string
}

// DistributionIdentity identifies a converged distribution.
type DistributionIdentity struct {
	ID         string
	ARN        string
	DomainName string
}

// DistributionReconciler converges site distributions. Distributions have
// no free-form name usable for lookup, so they are located by tag match
// scoped to project+stage+handler.
type DistributionReconciler struct {
	cdn     CDNAPI
	tagging TaggingAPI
}

// NewDistributionReconciler constructs a DistributionReconciler.
func NewDistributionReconciler(cdn CDNAPI, tagging TaggingAPI) *DistributionReconciler {
	return &DistributionReconciler{cdn: cdn, tagging: tagging}
}

// Ensure converges the handler's distribution. The update path re-reads
// the live configuration together with its concurrency token and only
// issues an update, carrying that exact token, when a compared field
// differs.
func (r *DistributionReconciler) Ensure(
	ctx context.Context, spec DistributionSpec, tc TagContext,
) (EnsureResult[DistributionIdentity], error) {
	var zero EnsureResult[DistributionIdentity]

	arn, err := r.locateByTag(ctx, tc)
	if err != nil {
		return zero, newDeployError(tc.Handler, ResTypeDistribution, "locate", err)
	}
	if arn == "" {
		return r.create(ctx, spec, tc)
	}

	id := distributionIDFromARN(arn)
	// Keep tags in sync even when nothing else changed.
	if err := r.tagDistribution(ctx, arn, tc); err != nil {
		return zero, err
	}
	cfgOut, err := r.cdn.GetDistributionConfig(ctx, &cloudfront.GetDistributionConfigInput{
		Id: aws.String(id),
	})
	if err != nil {
		return zero, newDeployError(tc.Handler, ResTypeDistribution, "read config", err)
	}

	live := cfgOut.DistributionConfig
	domain, err := r.domainName(ctx, id)
	if err != nil {
		return zero, err
	}
	identity := DistributionIdentity{ID: id, ARN: arn, DomainName: domain}

	if !distributionDrifts(live, spec) {
		return unchanged(identity), nil
	}

	applyDistributionSpec(live, spec)
	// The token must be the one just read; tokens are never cached across
	// calls because every mutation invalidates the previous one.
	_, err = r.cdn.UpdateDistribution(ctx, &cloudfront.UpdateDistributionInput{
		Id:                 aws.String(id),
		IfMatch:            cfgOut.ETag,
		DistributionConfig: live,
	})
	if err != nil {
		return zero, newDeployError(tc.Handler, ResTypeDistribution, "update", err)
	}
	return updated(identity), nil
}

// create provisions the distribution with tags and waits for it to deploy.
func (r *DistributionReconciler) create(
	ctx context.Context, spec DistributionSpec, tc TagContext,
) (EnsureResult[DistributionIdentity], error) {
	var zero EnsureResult[DistributionIdentity]

	cfg := &cftypes.DistributionConfig{
		CallerReference: aws.String(uuid.NewString()),
		Comment:         aws.String(fmt.Sprintf("effortless %s/%s %s", tc.Project, tc.Stage, spec.HandlerName)),
		Enabled:         aws.Bool(true),
	}
	applyDistributionSpec(cfg, spec)

	out, err := retryThrottled(ctx, func() (*cloudfront.CreateDistributionWithTagsOutput, error) {
		return r.cdn.CreateDistributionWithTags(ctx, &cloudfront.CreateDistributionWithTagsInput{
			DistributionConfigWithTags: &cftypes.DistributionConfigWithTags{
				DistributionConfig: cfg,
				Tags:               cfTags(tc.Tags(ResTypeDistribution)),
			},
		})
	})
	if err != nil {
		return zero, newDeployError(tc.Handler, ResTypeDistribution, "create", err)
	}

	dist := out.Distribution
	id := aws.ToString(dist.Id)
	if err := r.waitDeployed(ctx, id); err != nil {
		return zero, err
	}

	return created(DistributionIdentity{
		ID:         id,
		ARN:        aws.ToString(dist.ARN),
		DomainName: aws.ToString(dist.DomainName),
	}), nil
}

// tagDistribution re-asserts the ownership tags on an existing
// distribution.
func (r *DistributionReconciler) tagDistribution(ctx context.Context, arn string, tc TagContext) error {
	_, err := r.cdn.TagResource(ctx, &cloudfront.TagResourceInput{
		Resource: aws.String(arn),
		Tags:     cfTags(tc.Tags(ResTypeDistribution)),
	})
	if err != nil {
		return newDeployError(tc.Handler, ResTypeDistribution, "tag", err)
	}
	return nil
}

// Delete disables the distribution, waits for it to finish converging in
// the disabled state, then deletes it with the token from the disable
// response. Each mutation invalidates the previous token, so the token
// from the original read cannot be reused.
func (r *DistributionReconciler) Delete(ctx context.Context, id string) error {
	cfgOut, err := r.cdn.GetDistributionConfig(ctx, &cloudfront.GetDistributionConfigInput{
		Id: aws.String(id),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("read distribution %q before delete: %w", id, err)
	}

	cfg := cfgOut.DistributionConfig
	etag := cfgOut.ETag
	if aws.ToBool(cfg.Enabled) {
		cfg.Enabled = aws.Bool(false)
		disableOut, err := r.cdn.UpdateDistribution(ctx, &cloudfront.UpdateDistributionInput{
			Id:                 aws.String(id),
			IfMatch:            etag,
			DistributionConfig: cfg,
		})
		if err != nil {
			return fmt.Errorf("disable distribution %q: %w", id, err)
		}
		etag = disableOut.ETag
		if err := r.waitDeployed(ctx, id); err != nil {
			return err
		}
	}

	_, err = r.cdn.DeleteDistribution(ctx, &cloudfront.DeleteDistributionInput{
		Id:      aws.String(id),
		IfMatch: etag,
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete distribution %q: %w", id, err)
	}
	return nil
}

// EnsureOAC locates the origin-access-control by name or creates it.
func (r *DistributionReconciler) EnsureOAC(
	ctx context.Context, name string,
) (EnsureResult[string], error) {
	var zero EnsureResult[string]

	var marker *string
	for {
		out, err := r.cdn.ListOriginAccessControls(ctx, &cloudfront.ListOriginAccessControlsInput{
			Marker: marker,
		})
		if err != nil {
			return zero, fmt.Errorf("list origin access controls: %w", err)
		}
		if out.OriginAccessControlList != nil {
			for _, item := range out.OriginAccessControlList.Items {
				if aws.ToString(item.Name) == name {
					return unchanged(aws.ToString(item.Id)), nil
				}
			}
			if aws.ToBool(out.OriginAccessControlList.IsTruncated) {
				marker = out.OriginAccessControlList.NextMarker
				continue
			}
		}
		break
	}

	createOut, err := r.cdn.CreateOriginAccessControl(ctx, &cloudfront.CreateOriginAccessControlInput{
		OriginAccessControlConfig: &cftypes.OriginAccessControlConfig{
			Name:                          aws.String(name),
			OriginAccessControlOriginType: cftypes.OriginAccessControlOriginTypesS3,
			SigningBehavior:               cftypes.OriginAccessControlSigningBehaviorsAlways,
			SigningProtocol:               cftypes.OriginAccessControlSigningProtocolsSigv4,
		},
	})
	if err != nil {
		if IsConflict(err) {
			log.Printf("effortless: origin access control %q already exists, adopting", name)
			return r.EnsureOAC(ctx, name)
		}
		return zero, fmt.Errorf("create origin access control %q: %w", name, err)
	}
	return created(aws.ToString(createOut.OriginAccessControl.Id)), nil
}

// EnsureEdgeFunction converges the viewer-request edge function and
// publishes it. Existing functions are adopted as-is; the code this engine
// ships for them is fixed per release.
func (r *DistributionReconciler) EnsureEdgeFunction(
	ctx context.Context, name string, code []byte,
) (EnsureResult[string], error) {
	var zero EnsureResult[string]

	desc, err := r.cdn.DescribeFunction(ctx, &cloudfront.DescribeFunctionInput{
		Name: aws.String(name),
	})
	if err == nil {
		return unchanged(aws.ToString(desc.FunctionSummary.FunctionMetadata.FunctionARN)), nil
	}
	if !IsNotFound(err) {
		return zero, fmt.Errorf("describe edge function %q: %w", name, err)
	}

	createOut, err := r.cdn.CreateFunction(ctx, &cloudfront.CreateFunctionInput{
		Name:         aws.String(name),
		FunctionCode: code,
		FunctionConfig: &cftypes.FunctionConfig{
			Comment: aws.String("effortless viewer-request rewrite"),
			Runtime: cftypes.FunctionRuntimeCloudfrontJs20,
		},
	})
	if err != nil {
		return zero, fmt.Errorf("create edge function %q: %w", name, err)
	}

	_, err = r.cdn.PublishFunction(ctx, &cloudfront.PublishFunctionInput{
		Name:    aws.String(name),
		IfMatch: createOut.ETag,
	})
	if err != nil {
		return zero, fmt.Errorf("publish edge function %q: %w", name, err)
	}
	return created(aws.ToString(createOut.FunctionSummary.FunctionMetadata.FunctionARN)), nil
}

// locateByTag finds the handler's distribution ARN through the tagging
// service, or returns "" when none exists.
func (r *DistributionReconciler) locateByTag(ctx context.Context, tc TagContext) (string, error) {
	out, err := r.tagging.GetResources(ctx, &resourcegroupstaggingapi.GetResourcesInput{
		ResourceTypeFilters: []string{"cloudfront:distribution"},
		TagFilters: []taggingtypes.TagFilter{
			{Key: aws.String(TagKeyProject), Values: []string{tc.Project}},
			{Key: aws.String(TagKeyStage), Values: []string{tc.Stage}},
			{Key: aws.String(TagKeyHandler), Values: []string{tc.Handler}},
		},
	})
	if err != nil {
		return "", err
	}
	if len(out.ResourceTagMappingList) == 0 {
		return "", nil
	}
	return aws.ToString(out.ResourceTagMappingList[0].ResourceARN), nil
}

// waitDeployed polls until the distribution finishes converging.
func (r *DistributionReconciler) waitDeployed(ctx context.Context, id string) error {
	_, err := Wait(ctx, distributionDeployedWait,
		func(ctx context.Context) (*cloudfront.GetDistributionOutput, error) {
			return r.cdn.GetDistribution(ctx, &cloudfront.GetDistributionInput{
				Id: aws.String(id),
			})
		},
		func(out *cloudfront.GetDistributionOutput) (Outcome, string) {
			status := aws.ToString(out.Distribution.Status)
			if status == distributionDeployedStatus {
				return OutcomeSatisfied, status
			}
			return OutcomeTransient, status
		},
	)
	return err
}

// domainName reads the live domain name for an existing distribution.
func (r *DistributionReconciler) domainName(ctx context.Context, id string) (string, error) {
	out, err := r.cdn.GetDistribution(ctx, &cloudfront.GetDistributionInput{Id: aws.String(id)})
	if err != nil {
		return "", fmt.Errorf("read distribution %q: %w", id, err)
	}
	return aws.ToString(out.Distribution.DomainName), nil
}

// distributionDrifts compares the field-level diff set: origin domain,
// access-control id, default document, cache policy, custom-error mapping
// count, and edge-function-association count.
func distributionDrifts(live *cftypes.DistributionConfig, spec DistributionSpec) bool {
	if live.Origins == nil || len(live.Origins.Items) == 0 {
		return true
	}
	origin := live.Origins.Items[0]
	if aws.ToString(origin.DomainName) != spec.OriginDomain {
		return true
	}
	if aws.ToString(origin.OriginAccessControlId) != spec.OACID {
		return true
	}
	if aws.ToString(live.DefaultRootObject) != spec.DefaultRootObject {
		return true
	}
	behavior := live.DefaultCacheBehavior
	if behavior == nil || aws.ToString(behavior.CachePolicyId) != cachingOptimizedPolicyID {
		return true
	}
	if liveErrorCount(live) != len(spec.errorResponses()) {
		return true
	}
	if liveAssociationCount(behavior) != spec.associationCount() {
		return true
	}
	return false
}

// applyDistributionSpec writes the desired fields into a configuration,
// preserving everything outside the compared set.
func applyDistributionSpec(cfg *cftypes.DistributionConfig, spec DistributionSpec) {
	originID := aws.String("site-origin")
	cfg.Origins = &cftypes.Origins{
		Quantity: aws.Int32(1),
		Items: []cftypes.Origin{{
			Id:                    originID,
			DomainName:            aws.String(spec.OriginDomain),
			OriginAccessControlId: aws.String(spec.OACID),
			S3OriginConfig: &cftypes.S3OriginConfig{
				OriginAccessIdentity: aws.String(""),
			},
		}},
	}
	if cfg.DefaultCacheBehavior == nil {
		cfg.DefaultCacheBehavior = &cftypes.DefaultCacheBehavior{}
	}
	behavior := cfg.DefaultCacheBehavior
	behavior.TargetOriginId = originID
	behavior.ViewerProtocolPolicy = cftypes.ViewerProtocolPolicyRedirectToHttps
	behavior.CachePolicyId = aws.String(cachingOptimizedPolicyID)
	behavior.Compress = aws.Bool(true)

	if spec.EdgeFunctionARN != "" {
		behavior.FunctionAssociations = &cftypes.FunctionAssociations{
			Quantity: aws.Int32(1),
			Items: []cftypes.FunctionAssociation{{
				EventType:   cftypes.EventTypeViewerRequest,
				FunctionARN: aws.String(spec.EdgeFunctionARN),
			}},
		}
	} else {
		behavior.FunctionAssociations = &cftypes.FunctionAssociations{Quantity: aws.Int32(0)}
	}

	cfg.DefaultRootObject = aws.String(spec.DefaultRootObject)

	errs := spec.errorResponses()
	cfg.CustomErrorResponses = &cftypes.CustomErrorResponses{
		Quantity: aws.Int32(int32(len(errs))),
		Items:    errs,
	}

	if spec.CertificateARN != "" {
		cfg.ViewerCertificate = &cftypes.ViewerCertificate{
			ACMCertificateArn:      aws.String(spec.CertificateARN),
			SSLSupportMethod:       cftypes.SSLSupportMethodSniOnly,
			MinimumProtocolVersion: cftypes.MinimumProtocolVersionTLSv122021,
		}
		cfg.Aliases = &cftypes.Aliases{
			Quantity: aws.Int32(int32(len(spec.Aliases))),
			Items:    spec.Aliases,
		}
	}
}

// errorResponses builds the custom-error mappings: app sites rewrite
// denied/missing paths to the default document so client-side routing
// works.
func (s DistributionSpec) errorResponses() []cftypes.CustomErrorResponse {
	if !s.SPAFallback {
		return nil
	}
	fallback := "/" + s.DefaultRootObject
	return []cftypes.CustomErrorResponse{
		{
			ErrorCode:        aws.Int32(403),
			ResponseCode:     aws.String("200"),
			ResponsePagePath: aws.String(fallback),
		},
		{
			ErrorCode:        aws.Int32(404),
			ResponseCode:     aws.String("200"),
			ResponsePagePath: aws.String(fallback),
		},
	}
}

// associationCount is the desired edge-function-association count.
func (s DistributionSpec) associationCount() int {
	if s.EdgeFunctionARN != "" {
		return 1
	}
	return 0
}

// liveErrorCount reads the live custom-error mapping count.
func liveErrorCount(cfg *cftypes.DistributionConfig) int {
	if cfg.CustomErrorResponses == nil {
		return 0
	}
	return int(aws.ToInt32(cfg.CustomErrorResponses.Quantity))
}

// liveAssociationCount reads the live edge-function-association count.
func liveAssociationCount(behavior *cftypes.DefaultCacheBehavior) int {
	if behavior.FunctionAssociations == nil {
		return 0
	}
	return int(aws.ToInt32(behavior.FunctionAssociations.Quantity))
}

// distributionIDFromARN extracts the distribution ID from its ARN, e.g.
// "arn:aws:cloudfront::123:distribution/E2ABC" -> "E2ABC".
func distributionIDFromARN(arn string) string {
	if i := strings.LastIndex(arn, "/"); i >= 0 {
		return arn[i+1:]
	}
	return arn
}

// cfTags converts a tag map to the CDN service's tag list.
func cfTags(tags map[string]string) *cftypes.Tags {
	items := make([]cftypes.Tag, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		items = append(items, cftypes.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return &cftypes.Tags{Items: items}
}
