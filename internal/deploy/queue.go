package deploy

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// visibilityTimeoutFactor scales the queue's visibility timeout from the
// consumer's function timeout, per the queue service's recommendation.
const visibilityTimeoutFactor = 6

// QueueIdentity identifies a converged FIFO queue.
type QueueIdentity struct {
	URL string
	ARN string
}

// QueueReconciler converges FIFO queues for fifo-consumer handlers.
type QueueReconciler struct {
	api QueueAPI
}

// NewQueueReconciler constructs a QueueReconciler.
func NewQueueReconciler(api QueueAPI) *QueueReconciler {
	return &QueueReconciler{api: api}
}

// Ensure converges the handler's FIFO queue. Queues are located by their
// deterministic name; attribute writes happen only when a compared
// attribute actually differs.
func (r *QueueReconciler) Ensure(
	ctx context.Context, rc *RunContext, h *Handler, tc TagContext,
) (EnsureResult[QueueIdentity], error) {
	var zero EnsureResult[QueueIdentity]
	name := QueueName(rc.Project, rc.Stage, h.Name)
	desired := desiredQueueAttributes(h)

	urlOut, err := retryThrottled(ctx, func() (*sqs.GetQueueUrlOutput, error) {
		return r.api.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
	})
	if err != nil {
		if !IsNotFound(err) {
			return zero, newDeployError(h.Name, ResTypeQueue, "locate", err)
		}
		return r.create(ctx, name, desired, h, tc)
	}

	queueURL := aws.ToString(urlOut.QueueUrl)
	attrs, err := r.api.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(queueURL),
		AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameAll},
	})
	if err != nil {
		return zero, fmt.Errorf("read attributes of queue %q: %w", name, err)
	}

	status := StatusUnchanged
	if drift := driftedAttributes(desired, attrs.Attributes); len(drift) > 0 {
		_, err := r.api.SetQueueAttributes(ctx, &sqs.SetQueueAttributesInput{
			QueueUrl:   aws.String(queueURL),
			Attributes: drift,
		})
		if err != nil {
			return zero, newDeployError(h.Name, ResTypeQueue, "update", err)
		}
		status = StatusUpdated
	}

	if err := r.tag(ctx, queueURL, tc); err != nil {
		return zero, err
	}

	return EnsureResult[QueueIdentity]{
		Identity: QueueIdentity{
			URL: queueURL,
			ARN: attrs.Attributes[string(sqstypes.QueueAttributeNameQueueArn)],
		},
		Status: status,
	}, nil
}

// create provisions the FIFO queue with tags.
func (r *QueueReconciler) create(
	ctx context.Context, name string, desired map[string]string, h *Handler, tc TagContext,
) (EnsureResult[QueueIdentity], error) {
	var zero EnsureResult[QueueIdentity]

	attributes := map[string]string{
		"FifoQueue":                 "true",
		"ContentBasedDeduplication": "true",
	}
	for k, v := range desired {
		attributes[k] = v
	}

	out, err := retryThrottled(ctx, func() (*sqs.CreateQueueOutput, error) {
		return r.api.CreateQueue(ctx, &sqs.CreateQueueInput{
			QueueName:  aws.String(name),
			Attributes: attributes,
			Tags:       tc.Tags(ResTypeQueue),
		})
	})
	if err != nil {
		return zero, newDeployError(h.Name, ResTypeQueue, "create", err)
	}

	queueURL := aws.ToString(out.QueueUrl)
	arnOut, err := r.api.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(queueURL),
		AttributeNames: []sqstypes.QueueAttributeName{sqstypes.QueueAttributeNameQueueArn},
	})
	if err != nil {
		return zero, fmt.Errorf("read ARN of queue %q: %w", name, err)
	}

	return created(QueueIdentity{
		URL: queueURL,
		ARN: arnOut.Attributes[string(sqstypes.QueueAttributeNameQueueArn)],
	}), nil
}

// desiredQueueAttributes is the compared attribute set on existing queues.
// FIFO-ness is immutable and therefore not compared.
func desiredQueueAttributes(h *Handler) map[string]string {
	return map[string]string{
		"VisibilityTimeout": strconv.Itoa(int(h.Timeout()) * visibilityTimeoutFactor),
	}
}

// driftedAttributes returns only the attributes whose live value differs
// from the desired one, so converged queues get zero writes.
func driftedAttributes(desired, live map[string]string) map[string]string {
	drift := make(map[string]string)
	for k, v := range desired {
		if live[k] != v {
			drift[k] = v
		}
	}
	return drift
}

// tag keeps the ownership tags in sync.
func (r *QueueReconciler) tag(ctx context.Context, queueURL string, tc TagContext) error {
	_, err := r.api.TagQueue(ctx, &sqs.TagQueueInput{
		QueueUrl: aws.String(queueURL),
		Tags:     tc.Tags(ResTypeQueue),
	})
	if err != nil {
		return fmt.Errorf("tag queue %q: %w", queueURL, err)
	}
	return nil
}

// Delete removes the queue. Already-gone is success.
func (r *QueueReconciler) Delete(ctx context.Context, queueURL string) error {
	_, err := r.api.DeleteQueue(ctx, &sqs.DeleteQueueInput{QueueUrl: aws.String(queueURL)})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete queue %q: %w", queueURL, err)
	}
	return nil
}
