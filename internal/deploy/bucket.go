package deploy

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// BucketReconciler converges site buckets. Buckets stay fully private;
// the distribution is the only reader, granted through a bucket policy
// conditioned on the distribution ARN.
type BucketReconciler struct {
	api    ObjectStoreAPI
	region string
}

// NewBucketReconciler constructs a BucketReconciler for the given region.
func NewBucketReconciler(api ObjectStoreAPI, region string) *BucketReconciler {
	return &BucketReconciler{api: api, region: region}
}

// Ensure creates or adopts the site bucket and applies the public-access
// block and tags. The distribution read policy is attached separately once
// the distribution ARN is known.
func (r *BucketReconciler) Ensure(
	ctx context.Context, name string, tc TagContext,
) (EnsureResult[string], error) {
	var zero EnsureResult[string]

	result := unchanged(name)
	_, err := r.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
	if err != nil {
		if !IsNotFound(err) {
			return zero, newDeployError(tc.Handler, ResTypeBucket, "head", err)
		}
		if err := r.create(ctx, name, tc); err != nil {
			return zero, err
		}
		result = created(name)
	}

	_, err = retryThrottled(ctx, func() (*s3.PutPublicAccessBlockOutput, error) {
		return r.api.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
			Bucket: aws.String(name),
			PublicAccessBlockConfiguration: &s3types.PublicAccessBlockConfiguration{
				BlockPublicAcls:       aws.Bool(true),
				BlockPublicPolicy:     aws.Bool(true),
				IgnorePublicAcls:      aws.Bool(true),
				RestrictPublicBuckets: aws.Bool(true),
			},
		})
	})
	if err != nil {
		return zero, newDeployError(tc.Handler, ResTypeBucket, "block public access", err)
	}

	if err := r.tag(ctx, name, tc); err != nil {
		return zero, err
	}
	return result, nil
}

// AttachDistributionPolicy grants the distribution read access to the
// bucket's objects.
func (r *BucketReconciler) AttachDistributionPolicy(
	ctx context.Context, name, distributionARN string, tc TagContext,
) error {
	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Sid":"AllowCloudFrontRead","Effect":"Allow","Principal":{"Service":"cloudfront.amazonaws.com"},"Action":"s3:GetObject","Resource":"arn:aws:s3:::%s/*","Condition":{"StringEquals":{"AWS:SourceArn":"%s"}}}]}`,
		name, distributionARN)

	_, err := retryThrottled(ctx, func() (*s3.PutBucketPolicyOutput, error) {
		return r.api.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
			Bucket: aws.String(name),
			Policy: aws.String(policy),
		})
	})
	if err != nil {
		return newDeployError(tc.Handler, ResTypeBucket, "put policy", err)
	}
	return nil
}

// BucketRegionalDomain is the endpoint distributions use as their origin.
func (r *BucketReconciler) BucketRegionalDomain(name string) string {
	return fmt.Sprintf("%s.s3.%s.amazonaws.com", name, r.region)
}

func (r *BucketReconciler) create(ctx context.Context, name string, tc TagContext) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	// us-east-1 rejects an explicit location constraint.
	if r.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(r.region),
		}
	}
	_, err := retryThrottled(ctx, func() (*s3.CreateBucketOutput, error) {
		return r.api.CreateBucket(ctx, input)
	})
	if err != nil {
		if IsConflict(err) {
			log.Printf("effortless: bucket %q already exists, adopting", name)
			return nil
		}
		return newDeployError(tc.Handler, ResTypeBucket, "create", err)
	}
	return nil
}

func (r *BucketReconciler) tag(ctx context.Context, name string, tc TagContext) error {
	tags := tc.Tags(ResTypeBucket)
	tagSet := make([]s3types.Tag, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		tagSet = append(tagSet, s3types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	_, err := r.api.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket:  aws.String(name),
		Tagging: &s3types.Tagging{TagSet: tagSet},
	})
	if err != nil {
		return newDeployError(tc.Handler, ResTypeBucket, "tag", err)
	}
	return nil
}
