package deploy

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// destroyOrder lists resource types in reverse dependency order: consumers
// before the things they depend on. Distributions go first because their
// teardown is the slowest and they pin bucket policies; roles go last
// because everything assumes them.
var destroyOrder = []string{
	ResTypeDistribution,
	ResTypeBucket,
	ResTypeAPI,
	ResTypeFunction,
	ResTypeQueue,
	ResTypeTable,
	ResTypeRole,
}

// Destroy tears down every resource in the project+stage inventory. It
// keeps going past individual failures and returns them aggregated, so a
// re-run only has the survivors left to delete.
func (e *Engine) Destroy(ctx context.Context, project, stage string) error {
	inv, err := e.scanner.Scan(ctx, project, stage)
	if err != nil {
		return err
	}
	if len(inv.Records()) == 0 {
		log.Printf("effortless: nothing deployed for %s/%s", project, stage)
		return nil
	}

	var failed error
	for _, resType := range destroyOrder {
		for _, rec := range inv.OfType(resType) {
			e.reporter.Progress(rec.Handler(), "deleting "+resType)
			if err := e.deleteRecord(ctx, rec); err != nil {
				failed = combineErrors(failed, fmt.Errorf("delete %s %s: %w", resType, rec.ARN, err))
				continue
			}
			log.Printf("effortless: deleted %s %s", resType, rec.ARN)
		}
	}
	return failed
}

// deleteRecord dispatches one inventory record to its reconciler's delete.
func (e *Engine) deleteRecord(ctx context.Context, rec ResourceRecord) error {
	switch rec.Type {
	case ResTypeDistribution:
		return e.distributions.Delete(ctx, distributionIDFromARN(rec.ARN))
	case ResTypeBucket:
		return e.deleteBucket(ctx, bucketNameFromARN(rec.ARN))
	case ResTypeAPI:
		return e.websockets.Delete(ctx, apiIDFromARN(rec.ARN))
	case ResTypeFunction:
		return e.functions.Delete(ctx, resourceNameFromARN(rec.ARN))
	case ResTypeQueue:
		return e.queues.Delete(ctx, queueURLFromARN(rec.ARN))
	case ResTypeTable:
		return e.tables.Delete(ctx, resourceNameFromARN(rec.ARN))
	case ResTypeRole:
		return e.roles.Delete(ctx, resourceNameFromARN(rec.ARN))
	default:
		log.Printf("effortless: skipping unmanaged resource %s", rec.ARN)
		return nil
	}
}

// deleteBucket removes a site bucket. Object contents are owned by the
// out-of-band asset sync, so a non-empty bucket is reported rather than
// force-emptied.
func (e *Engine) deleteBucket(ctx context.Context, name string) error {
	_, err := e.buckets.api.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(name)})
	if err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}

// bucketNameFromARN extracts the bucket name from "arn:aws:s3:::name".
func bucketNameFromARN(arn string) string {
	if i := strings.LastIndex(arn, ":"); i >= 0 {
		return arn[i+1:]
	}
	return arn
}

// apiIDFromARN extracts the API ID from ".../apis/{id}".
func apiIDFromARN(arn string) string {
	if i := strings.LastIndex(arn, "/"); i >= 0 {
		return arn[i+1:]
	}
	return arn
}
