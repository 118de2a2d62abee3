package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v5"
)

// Kind classifies a remote failure by response kind, not by the service
// that produced it. Reconcilers branch on this enumeration only.
type Kind int

// The closed error-kind enumeration.
const (
	KindOther Kind = iota
	KindNotFound
	KindConflict
	KindValidation
	KindThrottling
	KindTimeout
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindThrottling:
		return "throttling"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// Error-code sets per kind. The AWS services this engine talks to spell
// the same condition several ways; classification is by ErrorCode on the
// smithy.APIError every SDK error implements.
var (
	notFoundCodes = map[string]bool{
		"ResourceNotFoundException":               true,
		"NotFoundException":                       true,
		"NoSuchEntity":                            true,
		"NoSuchBucket":                            true,
		"NoSuchDistribution":                      true,
		"NoSuchResource":                          true,
		"NotFound":                                true,
		"ParameterNotFound":                       true,
		"AWS.SimpleQueueService.NonExistentQueue": true,
		"QueueDoesNotExist":                       true,
	}
	conflictCodes = map[string]bool{
		"ConflictException":                true,
		"ResourceConflictException":        true,
		"ResourceInUseException":           true,
		"EntityAlreadyExists":              true,
		"BucketAlreadyOwnedByYou":          true,
		"BucketAlreadyExists":              true,
		"QueueNameExists":                  true,
		"DistributionAlreadyExists":        true,
		"OriginAccessControlAlreadyExists": true,
		"PreconditionFailed":               true,
	}
	validationCodes = map[string]bool{
		"ValidationException":       true,
		"ValidationError":           true,
		"BadRequestException":       true,
		"InvalidParameterValue":     true,
		"InvalidParameterException": true,
		"MalformedPolicyDocument":   true,
		"InvalidArgument":           true,
	}
	throttlingCodes = map[string]bool{
		"ThrottlingException":                    true,
		"Throttling":                             true,
		"TooManyRequestsException":               true,
		"RequestLimitExceeded":                   true,
		"ProvisionedThroughputExceededException": true,
		"LimitExceededException":                 true,
	}
)

// Classify maps an error to its Kind. Waiter timeouts classify as
// KindTimeout through the TimeoutError type; everything else is decided by
// the remote error code.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return KindTimeout
	}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		code := ae.ErrorCode()
		switch {
		case notFoundCodes[code]:
			return KindNotFound
		case conflictCodes[code]:
			return KindConflict
		case validationCodes[code]:
			return KindValidation
		case throttlingCodes[code]:
			return KindThrottling
		}
	}
	return KindOther
}

// IsNotFound reports whether err classifies as NotFound. For ensure this
// is not an error condition: it is the signal to take the create path.
func IsNotFound(err error) bool { return Classify(err) == KindNotFound }

// IsConflict reports whether err classifies as Conflict.
func IsConflict(err error) bool { return Classify(err) == KindConflict }

// DeployError is the structured failure surfaced per handler. It carries
// enough context (handler, resource kind, operation, underlying remote
// error) to re-run safely.
type DeployError struct {
	Handler   string
	Resource  string
	Operation string
	Kind      Kind
	Cause     error
}

// Error implements the error interface.
func (e *DeployError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Operation, e.Resource)
	if e.Handler != "" {
		fmt.Fprintf(&b, " for handler %q", e.Handler)
	}
	fmt.Fprintf(&b, " failed (%s)", e.Kind)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *DeployError) Unwrap() error { return e.Cause }

// newDeployError wraps a remote failure with its classification.
func newDeployError(handler, resource, operation string, cause error) *DeployError {
	return &DeployError{
		Handler:   handler,
		Resource:  resource,
		Operation: operation,
		Kind:      Classify(cause),
		Cause:     cause,
	}
}

// Backoff parameters for throttling retries. These apply only to
// throttling-classified errors; state-transition polling uses the
// fixed-interval waiter and is never retried here.
const (
	throttleMaxTries        = 6
	throttleInitialInterval = 500 * time.Millisecond
	throttleMaxInterval     = 20 * time.Second
)

// retryThrottled runs call, retrying with exponential backoff and jitter
// when the failure classifies as throttling. Any other failure is
// permanent and returned immediately.
func retryThrottled[T any](ctx context.Context, call func() (T, error)) (T, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = throttleInitialInterval
	eb.MaxInterval = throttleMaxInterval

	return backoff.Retry(ctx, func() (T, error) {
		out, err := call()
		if err != nil && Classify(err) != KindThrottling {
			return out, backoff.Permanent(err)
		}
		return out, err
	}, backoff.WithBackOff(eb), backoff.WithMaxTries(throttleMaxTries))
}

// combineErrors joins two errors, preferring the first non-nil.
func combineErrors(existing, additional error) error {
	if existing == nil {
		return additional
	}
	if additional == nil {
		return existing
	}
	return fmt.Errorf("%w; %v", existing, additional)
}

// DiagnosticSummary returns a multi-line diagnostic string for the errors
// collected across a batch deploy.
func DiagnosticSummary(errs []error) string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Deploy completed with %d error(s):\n", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}
