package deploy

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// NewClients builds the real capability client bundle for a region and
// returns the caller's AWS account ID, resolved up front via STS so every
// handler task can derive ARNs without its own round-trip.
func NewClients(ctx context.Context, region string) (*Clients, string, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, "", fmt.Errorf("load AWS config: %w", err)
	}

	identity, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, "", fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	accountID := aws.ToString(identity.Account)

	clients := &Clients{
		Functions:    lambda.NewFromConfig(cfg),
		Roles:        iam.NewFromConfig(cfg),
		Tables:       dynamodb.NewFromConfig(cfg),
		Routes:       apigatewayv2.NewFromConfig(cfg),
		CDN:          cloudfront.NewFromConfig(cfg),
		Queues:       sqs.NewFromConfig(cfg),
		Objects:      s3.NewFromConfig(cfg),
		Tagging:      resourcegroupstaggingapi.NewFromConfig(cfg),
		Certificates: acm.NewFromConfig(cfg),
		Parameters:   ssm.NewFromConfig(cfg),
	}
	return clients, accountID, nil
}
