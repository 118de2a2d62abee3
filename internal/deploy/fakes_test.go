package deploy

import (
	"context"
	"fmt"

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
	"github.com/aws/smithy-go"
)

// Fake capability clients. Each method delegates to a same-named func
// field; a nil field means the test did not expect that call.

func errUnexpected(method string) error {
	return fmt.Errorf("unexpected call to %s", method)
}

// Remote error constructors for the classification paths under test.
func notFoundErr() error {
	return &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "missing"}
}

func conflictErr() error {
	return &smithy.GenericAPIError{Code: "ResourceConflictException", Message: "exists"}
}

func throttleErr() error {
	return &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}
}

type fakeFunctionAPI struct {
	getFunction              func(*lambda.GetFunctionInput) (*lambda.GetFunctionOutput, error)
	getFunctionConfiguration func(*lambda.GetFunctionConfigurationInput) (*lambda.GetFunctionConfigurationOutput, error)
	createFunction           func(*lambda.CreateFunctionInput) (*lambda.CreateFunctionOutput, error)
	updateFunctionCode       func(*lambda.UpdateFunctionCodeInput) (*lambda.UpdateFunctionCodeOutput, error)
	updateFunctionConfig     func(*lambda.UpdateFunctionConfigurationInput) (*lambda.UpdateFunctionConfigurationOutput, error)
	addPermission            func(*lambda.AddPermissionInput) (*lambda.AddPermissionOutput, error)
	tagResource              func(*lambda.TagResourceInput) (*lambda.TagResourceOutput, error)
	deleteFunction           func(*lambda.DeleteFunctionInput) (*lambda.DeleteFunctionOutput, error)
	createEventSourceMapping func(*lambda.CreateEventSourceMappingInput) (*lambda.CreateEventSourceMappingOutput, error)
	listEventSourceMappings  func(*lambda.ListEventSourceMappingsInput) (*lambda.ListEventSourceMappingsOutput, error)
	publishLayerVersion      func(*lambda.PublishLayerVersionInput) (*lambda.PublishLayerVersionOutput, error)
	listLayerVersions        func(*lambda.ListLayerVersionsInput) (*lambda.ListLayerVersionsOutput, error)
}

func (f *fakeFunctionAPI) GetFunction(_ context.Context, in *lambda.GetFunctionInput, _ ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error) {
	if f.getFunction == nil {
		return nil, errUnexpected("GetFunction")
	}
	return f.getFunction(in)
}

func (f *fakeFunctionAPI) GetFunctionConfiguration(_ context.Context, in *lambda.GetFunctionConfigurationInput, _ ...func(*lambda.Options)) (*lambda.GetFunctionConfigurationOutput, error) {
	if f.getFunctionConfiguration == nil {
		return nil, errUnexpected("GetFunctionConfiguration")
	}
	return f.getFunctionConfiguration(in)
}

func (f *fakeFunctionAPI) CreateFunction(_ context.Context, in *lambda.CreateFunctionInput, _ ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error) {
	if f.createFunction == nil {
		return nil, errUnexpected("CreateFunction")
	}
	return f.createFunction(in)
}

func (f *fakeFunctionAPI) UpdateFunctionCode(_ context.Context, in *lambda.UpdateFunctionCodeInput, _ ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error) {
	if f.updateFunctionCode == nil {
		return nil, errUnexpected("UpdateFunctionCode")
	}
	return f.updateFunctionCode(in)
}

func (f *fakeFunctionAPI) UpdateFunctionConfiguration(_ context.Context, in *lambda.UpdateFunctionConfigurationInput, _ ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error) {
	if f.updateFunctionConfig == nil {
		return nil, errUnexpected("UpdateFunctionConfiguration")
	}
	return f.updateFunctionConfig(in)
}

func (f *fakeFunctionAPI) AddPermission(_ context.Context, in *lambda.AddPermissionInput, _ ...func(*lambda.Options)) (*lambda.AddPermissionOutput, error) {
	if f.addPermission == nil {
		return nil, errUnexpected("AddPermission")
	}
	return f.addPermission(in)
}

func (f *fakeFunctionAPI) TagResource(_ context.Context, in *lambda.TagResourceInput, _ ...func(*lambda.Options)) (*lambda.TagResourceOutput, error) {
	if f.tagResource == nil {
		return nil, errUnexpected("TagResource")
	}
	return f.tagResource(in)
}

func (f *fakeFunctionAPI) DeleteFunction(_ context.Context, in *lambda.DeleteFunctionInput, _ ...func(*lambda.Options)) (*lambda.DeleteFunctionOutput, error) {
	if f.deleteFunction == nil {
		return nil, errUnexpected("DeleteFunction")
	}
	return f.deleteFunction(in)
}

func (f *fakeFunctionAPI) CreateEventSourceMapping(_ context.Context, in *lambda.CreateEventSourceMappingInput, _ ...func(*lambda.Options)) (*lambda.CreateEventSourceMappingOutput, error) {
	if f.createEventSourceMapping == nil {
		return nil, errUnexpected("CreateEventSourceMapping")
	}
	return f.createEventSourceMapping(in)
}

func (f *fakeFunctionAPI) ListEventSourceMappings(_ context.Context, in *lambda.ListEventSourceMappingsInput, _ ...func(*lambda.Options)) (*lambda.ListEventSourceMappingsOutput, error) {
	if f.listEventSourceMappings == nil {
		return nil, errUnexpected("ListEventSourceMappings")
	}
	return f.listEventSourceMappings(in)
}

func (f *fakeFunctionAPI) PublishLayerVersion(_ context.Context, in *lambda.PublishLayerVersionInput, _ ...func(*lambda.Options)) (*lambda.PublishLayerVersionOutput, error) {
	if f.publishLayerVersion == nil {
		return nil, errUnexpected("PublishLayerVersion")
	}
	return f.publishLayerVersion(in)
}

func (f *fakeFunctionAPI) ListLayerVersions(_ context.Context, in *lambda.ListLayerVersionsInput, _ ...func(*lambda.Options)) (*lambda.ListLayerVersionsOutput, error) {
	if f.listLayerVersions == nil {
		return nil, errUnexpected("ListLayerVersions")
	}
	return f.listLayerVersions(in)
}

type fakeRoleAPI struct {
	getRole          func(*iam.GetRoleInput) (*iam.GetRoleOutput, error)
	createRole       func(*iam.CreateRoleInput) (*iam.CreateRoleOutput, error)
	putRolePolicy    func(*iam.PutRolePolicyInput) (*iam.PutRolePolicyOutput, error)
	getRolePolicy    func(*iam.GetRolePolicyInput) (*iam.GetRolePolicyOutput, error)
	tagRole          func(*iam.TagRoleInput) (*iam.TagRoleOutput, error)
	deleteRolePolicy func(*iam.DeleteRolePolicyInput) (*iam.DeleteRolePolicyOutput, error)
	deleteRole       func(*iam.DeleteRoleInput) (*iam.DeleteRoleOutput, error)
}

func (f *fakeRoleAPI) GetRole(_ context.Context, in *iam.GetRoleInput, _ ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	if f.getRole == nil {
		return nil, errUnexpected("GetRole")
	}
	return f.getRole(in)
}

func (f *fakeRoleAPI) CreateRole(_ context.Context, in *iam.CreateRoleInput, _ ...func(*iam.Options)) (*iam.CreateRoleOutput, error) {
	if f.createRole == nil {
		return nil, errUnexpected("CreateRole")
	}
	return f.createRole(in)
}

func (f *fakeRoleAPI) PutRolePolicy(_ context.Context, in *iam.PutRolePolicyInput, _ ...func(*iam.Options)) (*iam.PutRolePolicyOutput, error) {
	if f.putRolePolicy == nil {
		return nil, errUnexpected("PutRolePolicy")
	}
	return f.putRolePolicy(in)
}

func (f *fakeRoleAPI) GetRolePolicy(_ context.Context, in *iam.GetRolePolicyInput, _ ...func(*iam.Options)) (*iam.GetRolePolicyOutput, error) {
	if f.getRolePolicy == nil {
		return nil, errUnexpected("GetRolePolicy")
	}
	return f.getRolePolicy(in)
}

func (f *fakeRoleAPI) TagRole(_ context.Context, in *iam.TagRoleInput, _ ...func(*iam.Options)) (*iam.TagRoleOutput, error) {
	if f.tagRole == nil {
		return nil, errUnexpected("TagRole")
	}
	return f.tagRole(in)
}

func (f *fakeRoleAPI) DeleteRolePolicy(_ context.Context, in *iam.DeleteRolePolicyInput, _ ...func(*iam.Options)) (*iam.DeleteRolePolicyOutput, error) {
	if f.deleteRolePolicy == nil {
		return nil, errUnexpected("DeleteRolePolicy")
	}
	return f.deleteRolePolicy(in)
}

func (f *fakeRoleAPI) DeleteRole(_ context.Context, in *iam.DeleteRoleInput, _ ...func(*iam.Options)) (*iam.DeleteRoleOutput, error) {
	if f.deleteRole == nil {
		return nil, errUnexpected("DeleteRole")
	}
	return f.deleteRole(in)
}

type fakeTableAPI struct {
	describeTable      func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error)
	createTable        func(*dynamodb.CreateTableInput) (*dynamodb.CreateTableOutput, error)
	updateTable        func(*dynamodb.UpdateTableInput) (*dynamodb.UpdateTableOutput, error)
	describeTimeToLive func(*dynamodb.DescribeTimeToLiveInput) (*dynamodb.DescribeTimeToLiveOutput, error)
	updateTimeToLive   func(*dynamodb.UpdateTimeToLiveInput) (*dynamodb.UpdateTimeToLiveOutput, error)
	tagResource        func(*dynamodb.TagResourceInput) (*dynamodb.TagResourceOutput, error)
	deleteTable        func(*dynamodb.DeleteTableInput) (*dynamodb.DeleteTableOutput, error)
}

func (f *fakeTableAPI) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.describeTable == nil {
		return nil, errUnexpected("DescribeTable")
	}
	return f.describeTable(in)
}

func (f *fakeTableAPI) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	if f.createTable == nil {
		return nil, errUnexpected("CreateTable")
	}
	return f.createTable(in)
}

func (f *fakeTableAPI) UpdateTable(_ context.Context, in *dynamodb.UpdateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateTableOutput, error) {
	if f.updateTable == nil {
		return nil, errUnexpected("UpdateTable")
	}
	return f.updateTable(in)
}

func (f *fakeTableAPI) DescribeTimeToLive(_ context.Context, in *dynamodb.DescribeTimeToLiveInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTimeToLiveOutput, error) {
	if f.describeTimeToLive == nil {
		return nil, errUnexpected("DescribeTimeToLive")
	}
	return f.describeTimeToLive(in)
}

func (f *fakeTableAPI) UpdateTimeToLive(_ context.Context, in *dynamodb.UpdateTimeToLiveInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error) {
	if f.updateTimeToLive == nil {
		return nil, errUnexpected("UpdateTimeToLive")
	}
	return f.updateTimeToLive(in)
}

func (f *fakeTableAPI) TagResource(_ context.Context, in *dynamodb.TagResourceInput, _ ...func(*dynamodb.Options)) (*dynamodb.TagResourceOutput, error) {
	if f.tagResource == nil {
		return nil, errUnexpected("TagResource")
	}
	return f.tagResource(in)
}

func (f *fakeTableAPI) DeleteTable(_ context.Context, in *dynamodb.DeleteTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error) {
	if f.deleteTable == nil {
		return nil, errUnexpected("DeleteTable")
	}
	return f.deleteTable(in)
}

type fakeRouteAPI struct {
	getApis           func(*apigatewayv2.GetApisInput) (*apigatewayv2.GetApisOutput, error)
	createApi         func(*apigatewayv2.CreateApiInput) (*apigatewayv2.CreateApiOutput, error)
	getStages         func(*apigatewayv2.GetStagesInput) (*apigatewayv2.GetStagesOutput, error)
	createStage       func(*apigatewayv2.CreateStageInput) (*apigatewayv2.CreateStageOutput, error)
	getAuthorizers    func(*apigatewayv2.GetAuthorizersInput) (*apigatewayv2.GetAuthorizersOutput, error)
	createAuthorizer  func(*apigatewayv2.CreateAuthorizerInput) (*apigatewayv2.CreateAuthorizerOutput, error)
	updateAuthorizer  func(*apigatewayv2.UpdateAuthorizerInput) (*apigatewayv2.UpdateAuthorizerOutput, error)
	getIntegrations   func(*apigatewayv2.GetIntegrationsInput) (*apigatewayv2.GetIntegrationsOutput, error)
	createIntegration func(*apigatewayv2.CreateIntegrationInput) (*apigatewayv2.CreateIntegrationOutput, error)
	deleteIntegration func(*apigatewayv2.DeleteIntegrationInput) (*apigatewayv2.DeleteIntegrationOutput, error)
	getRoutes         func(*apigatewayv2.GetRoutesInput) (*apigatewayv2.GetRoutesOutput, error)
	createRoute       func(*apigatewayv2.CreateRouteInput) (*apigatewayv2.CreateRouteOutput, error)
	updateRoute       func(*apigatewayv2.UpdateRouteInput) (*apigatewayv2.UpdateRouteOutput, error)
	deleteRoute       func(*apigatewayv2.DeleteRouteInput) (*apigatewayv2.DeleteRouteOutput, error)
	deleteApi         func(*apigatewayv2.DeleteApiInput) (*apigatewayv2.DeleteApiOutput, error)
	tagResource       func(*apigatewayv2.TagResourceInput) (*apigatewayv2.TagResourceOutput, error)
}

func (f *fakeRouteAPI) GetApis(_ context.Context, in *apigatewayv2.GetApisInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.GetApisOutput, error) {
	if f.getApis == nil {
		return nil, errUnexpected("GetApis")
	}
	return f.getApis(in)
}

func (f *fakeRouteAPI) CreateApi(_ context.Context, in *apigatewayv2.CreateApiInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.CreateApiOutput, error) {
	if f.createApi == nil {
		return nil, errUnexpected("CreateApi")
	}
	return f.createApi(in)
}

func (f *fakeRouteAPI) GetStages(_ context.Context, in *apigatewayv2.GetStagesInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.GetStagesOutput, error) {
	if f.getStages == nil {
		return nil, errUnexpected("GetStages")
	}
	return f.getStages(in)
}

func (f *fakeRouteAPI) GetAuthorizers(_ context.Context, in *apigatewayv2.GetAuthorizersInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.GetAuthorizersOutput, error) {
	if f.getAuthorizers == nil {
		return nil, errUnexpected("GetAuthorizers")
	}
	return f.getAuthorizers(in)
}

func (f *fakeRouteAPI) CreateAuthorizer(_ context.Context, in *apigatewayv2.CreateAuthorizerInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.CreateAuthorizerOutput, error) {
	if f.createAuthorizer == nil {
		return nil, errUnexpected("CreateAuthorizer")
	}
	return f.createAuthorizer(in)
}

func (f *fakeRouteAPI) UpdateAuthorizer(_ context.Context, in *apigatewayv2.UpdateAuthorizerInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.UpdateAuthorizerOutput, error) {
	if f.updateAuthorizer == nil {
		return nil, errUnexpected("UpdateAuthorizer")
	}
	return f.updateAuthorizer(in)
}

func (f *fakeRouteAPI) CreateStage(_ context.Context, in *apigatewayv2.CreateStageInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.CreateStageOutput, error) {
	if f.createStage == nil {
		return nil, errUnexpected("CreateStage")
	}
	return f.createStage(in)
}

func (f *fakeRouteAPI) GetIntegrations(_ context.Context, in *apigatewayv2.GetIntegrationsInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.GetIntegrationsOutput, error) {
	if f.getIntegrations == nil {
		return nil, errUnexpected("GetIntegrations")
	}
	return f.getIntegrations(in)
}

func (f *fakeRouteAPI) CreateIntegration(_ context.Context, in *apigatewayv2.CreateIntegrationInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.CreateIntegrationOutput, error) {
	if f.createIntegration == nil {
		return nil, errUnexpected("CreateIntegration")
	}
	return f.createIntegration(in)
}

func (f *fakeRouteAPI) DeleteIntegration(_ context.Context, in *apigatewayv2.DeleteIntegrationInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.DeleteIntegrationOutput, error) {
	if f.deleteIntegration == nil {
		return nil, errUnexpected("DeleteIntegration")
	}
	return f.deleteIntegration(in)
}

func (f *fakeRouteAPI) GetRoutes(_ context.Context, in *apigatewayv2.GetRoutesInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.GetRoutesOutput, error) {
	if f.getRoutes == nil {
		return nil, errUnexpected("GetRoutes")
	}
	return f.getRoutes(in)
}

func (f *fakeRouteAPI) CreateRoute(_ context.Context, in *apigatewayv2.CreateRouteInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.CreateRouteOutput, error) {
	if f.createRoute == nil {
		return nil, errUnexpected("CreateRoute")
	}
	return f.createRoute(in)
}

func (f *fakeRouteAPI) UpdateRoute(_ context.Context, in *apigatewayv2.UpdateRouteInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.UpdateRouteOutput, error) {
	if f.updateRoute == nil {
		return nil, errUnexpected("UpdateRoute")
	}
	return f.updateRoute(in)
}

func (f *fakeRouteAPI) DeleteRoute(_ context.Context, in *apigatewayv2.DeleteRouteInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.DeleteRouteOutput, error) {
	if f.deleteRoute == nil {
		return nil, errUnexpected("DeleteRoute")
	}
	return f.deleteRoute(in)
}

func (f *fakeRouteAPI) DeleteApi(_ context.Context, in *apigatewayv2.DeleteApiInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.DeleteApiOutput, error) {
	if f.deleteApi == nil {
		return nil, errUnexpected("DeleteApi")
	}
	return f.deleteApi(in)
}

func (f *fakeRouteAPI) TagResource(_ context.Context, in *apigatewayv2.TagResourceInput, _ ...func(*apigatewayv2.Options)) (*apigatewayv2.TagResourceOutput, error) {
	if f.tagResource == nil {
		return nil, errUnexpected("TagResource")
	}
	return f.tagResource(in)
}

type fakeQueueAPI struct {
	getQueueUrl        func(*sqs.GetQueueUrlInput) (*sqs.GetQueueUrlOutput, error)
	createQueue        func(*sqs.CreateQueueInput) (*sqs.CreateQueueOutput, error)
	getQueueAttributes func(*sqs.GetQueueAttributesInput) (*sqs.GetQueueAttributesOutput, error)
	setQueueAttributes func(*sqs.SetQueueAttributesInput) (*sqs.SetQueueAttributesOutput, error)
	tagQueue           func(*sqs.TagQueueInput) (*sqs.TagQueueOutput, error)
	deleteQueue        func(*sqs.DeleteQueueInput) (*sqs.DeleteQueueOutput, error)
}

func (f *fakeQueueAPI) GetQueueUrl(_ context.Context, in *sqs.GetQueueUrlInput, _ ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	if f.getQueueUrl == nil {
		return nil, errUnexpected("GetQueueUrl")
	}
	return f.getQueueUrl(in)
}

func (f *fakeQueueAPI) CreateQueue(_ context.Context, in *sqs.CreateQueueInput, _ ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error) {
	if f.createQueue == nil {
		return nil, errUnexpected("CreateQueue")
	}
	return f.createQueue(in)
}

func (f *fakeQueueAPI) GetQueueAttributes(_ context.Context, in *sqs.GetQueueAttributesInput, _ ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error) {
	if f.getQueueAttributes == nil {
		return nil, errUnexpected("GetQueueAttributes")
	}
	return f.getQueueAttributes(in)
}

func (f *fakeQueueAPI) SetQueueAttributes(_ context.Context, in *sqs.SetQueueAttributesInput, _ ...func(*sqs.Options)) (*sqs.SetQueueAttributesOutput, error) {
	if f.setQueueAttributes == nil {
		return nil, errUnexpected("SetQueueAttributes")
	}
	return f.setQueueAttributes(in)
}

func (f *fakeQueueAPI) TagQueue(_ context.Context, in *sqs.TagQueueInput, _ ...func(*sqs.Options)) (*sqs.TagQueueOutput, error) {
	if f.tagQueue == nil {
		return nil, errUnexpected("TagQueue")
	}
	return f.tagQueue(in)
}

func (f *fakeQueueAPI) DeleteQueue(_ context.Context, in *sqs.DeleteQueueInput, _ ...func(*sqs.Options)) (*sqs.DeleteQueueOutput, error) {
	if f.deleteQueue == nil {
		return nil, errUnexpected("DeleteQueue")
	}
	return f.deleteQueue(in)
}

type fakeCDNAPI struct {
	getDistribution           func(*cloudfront.GetDistributionInput) (*cloudfront.GetDistributionOutput, error)
	getDistributionConfig     func(*cloudfront.GetDistributionConfigInput) (*cloudfront.GetDistributionConfigOutput, error)
	createDistribution        func(*cloudfront.CreateDistributionWithTagsInput) (*cloudfront.CreateDistributionWithTagsOutput, error)
	updateDistribution        func(*cloudfront.UpdateDistributionInput) (*cloudfront.UpdateDistributionOutput, error)
	deleteDistribution        func(*cloudfront.DeleteDistributionInput) (*cloudfront.DeleteDistributionOutput, error)
	tagResource               func(*cloudfront.TagResourceInput) (*cloudfront.TagResourceOutput, error)
	listOriginAccessControls  func(*cloudfront.ListOriginAccessControlsInput) (*cloudfront.ListOriginAccessControlsOutput, error)
	createOriginAccessControl func(*cloudfront.CreateOriginAccessControlInput) (*cloudfront.CreateOriginAccessControlOutput, error)
	describeFunction          func(*cloudfront.DescribeFunctionInput) (*cloudfront.DescribeFunctionOutput, error)
	createFunction            func(*cloudfront.CreateFunctionInput) (*cloudfront.CreateFunctionOutput, error)
	publishFunction           func(*cloudfront.PublishFunctionInput) (*cloudfront.PublishFunctionOutput, error)
}

func (f *fakeCDNAPI) TagResource(_ context.Context, in *cloudfront.TagResourceInput, _ ...func(*cloudfront.Options)) (*cloudfront.TagResourceOutput, error) {
	if f.tagResource == nil {
		return nil, errUnexpected("TagResource")
	}
	return f.tagResource(in)
}

func (f *fakeCDNAPI) GetDistribution(_ context.Context, in *cloudfront.GetDistributionInput, _ ...func(*cloudfront.Options)) (*cloudfront.GetDistributionOutput, error) {
	if f.getDistribution == nil {
		return nil, errUnexpected("GetDistribution")
	}
	return f.getDistribution(in)
}

func (f *fakeCDNAPI) GetDistributionConfig(_ context.Context, in *cloudfront.GetDistributionConfigInput, _ ...func(*cloudfront.Options)) (*cloudfront.GetDistributionConfigOutput, error) {
	if f.getDistributionConfig == nil {
		return nil, errUnexpected("GetDistributionConfig")
	}
	return f.getDistributionConfig(in)
}

func (f *fakeCDNAPI) CreateDistributionWithTags(_ context.Context, in *cloudfront.CreateDistributionWithTagsInput, _ ...func(*cloudfront.Options)) (*cloudfront.CreateDistributionWithTagsOutput, error) {
	if f.createDistribution == nil {
		return nil, errUnexpected("CreateDistributionWithTags")
	}
	return f.createDistribution(in)
}

func (f *fakeCDNAPI) UpdateDistribution(_ context.Context, in *cloudfront.UpdateDistributionInput, _ ...func(*cloudfront.Options)) (*cloudfront.UpdateDistributionOutput, error) {
	if f.updateDistribution == nil {
		return nil, errUnexpected("UpdateDistribution")
	}
	return f.updateDistribution(in)
}

func (f *fakeCDNAPI) DeleteDistribution(_ context.Context, in *cloudfront.DeleteDistributionInput, _ ...func(*cloudfront.Options)) (*cloudfront.DeleteDistributionOutput, error) {
	if f.deleteDistribution == nil {
		return nil, errUnexpected("DeleteDistribution")
	}
	return f.deleteDistribution(in)
}

func (f *fakeCDNAPI) ListOriginAccessControls(_ context.Context, in *cloudfront.ListOriginAccessControlsInput, _ ...func(*cloudfront.Options)) (*cloudfront.ListOriginAccessControlsOutput, error) {
	if f.listOriginAccessControls == nil {
		return nil, errUnexpected("ListOriginAccessControls")
	}
	return f.listOriginAccessControls(in)
}

func (f *fakeCDNAPI) CreateOriginAccessControl(_ context.Context, in *cloudfront.CreateOriginAccessControlInput, _ ...func(*cloudfront.Options)) (*cloudfront.CreateOriginAccessControlOutput, error) {
	if f.createOriginAccessControl == nil {
		return nil, errUnexpected("CreateOriginAccessControl")
	}
	return f.createOriginAccessControl(in)
}

func (f *fakeCDNAPI) DescribeFunction(_ context.Context, in *cloudfront.DescribeFunctionInput, _ ...func(*cloudfront.Options)) (*cloudfront.DescribeFunctionOutput, error) {
	if f.describeFunction == nil {
		return nil, errUnexpected("DescribeFunction")
	}
	return f.describeFunction(in)
}

func (f *fakeCDNAPI) CreateFunction(_ context.Context, in *cloudfront.CreateFunctionInput, _ ...func(*cloudfront.Options)) (*cloudfront.CreateFunctionOutput, error) {
	if f.createFunction == nil {
		return nil, errUnexpected("CreateFunction")
	}
	return f.createFunction(in)
}

func (f *fakeCDNAPI) PublishFunction(_ context.Context, in *cloudfront.PublishFunctionInput, _ ...func(*cloudfront.Options)) (*cloudfront.PublishFunctionOutput, error) {
	if f.publishFunction == nil {
		return nil, errUnexpected("PublishFunction")
	}
	return f.publishFunction(in)
}

type fakeObjectStoreAPI struct {
	headBucket           func(*s3.HeadBucketInput) (*s3.HeadBucketOutput, error)
	createBucket         func(*s3.CreateBucketInput) (*s3.CreateBucketOutput, error)
	putBucketTagging     func(*s3.PutBucketTaggingInput) (*s3.PutBucketTaggingOutput, error)
	putPublicAccessBlock func(*s3.PutPublicAccessBlockInput) (*s3.PutPublicAccessBlockOutput, error)
	putBucketPolicy      func(*s3.PutBucketPolicyInput) (*s3.PutBucketPolicyOutput, error)
	deleteBucket         func(*s3.DeleteBucketInput) (*s3.DeleteBucketOutput, error)
}

func (f *fakeObjectStoreAPI) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headBucket == nil {
		return nil, errUnexpected("HeadBucket")
	}
	return f.headBucket(in)
}

func (f *fakeObjectStoreAPI) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	if f.createBucket == nil {
		return nil, errUnexpected("CreateBucket")
	}
	return f.createBucket(in)
}

func (f *fakeObjectStoreAPI) PutBucketTagging(_ context.Context, in *s3.PutBucketTaggingInput, _ ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error) {
	if f.putBucketTagging == nil {
		return nil, errUnexpected("PutBucketTagging")
	}
	return f.putBucketTagging(in)
}

func (f *fakeObjectStoreAPI) PutPublicAccessBlock(_ context.Context, in *s3.PutPublicAccessBlockInput, _ ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error) {
	if f.putPublicAccessBlock == nil {
		return nil, errUnexpected("PutPublicAccessBlock")
	}
	return f.putPublicAccessBlock(in)
}

func (f *fakeObjectStoreAPI) PutBucketPolicy(_ context.Context, in *s3.PutBucketPolicyInput, _ ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	if f.putBucketPolicy == nil {
		return nil, errUnexpected("PutBucketPolicy")
	}
	return f.putBucketPolicy(in)
}

func (f *fakeObjectStoreAPI) DeleteBucket(_ context.Context, in *s3.DeleteBucketInput, _ ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	if f.deleteBucket == nil {
		return nil, errUnexpected("DeleteBucket")
	}
	return f.deleteBucket(in)
}

type fakeTaggingAPI struct {
	getResources func(*resourcegroupstaggingapi.GetResourcesInput) (*resourcegroupstaggingapi.GetResourcesOutput, error)
}

func (f *fakeTaggingAPI) GetResources(_ context.Context, in *resourcegroupstaggingapi.GetResourcesInput, _ ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error) {
	if f.getResources == nil {
		return nil, errUnexpected("GetResources")
	}
	return f.getResources(in)
}

type fakeCertificateAPI struct {
	listCertificates func(*acm.ListCertificatesInput) (*acm.ListCertificatesOutput, error)
}

func (f *fakeCertificateAPI) ListCertificates(_ context.Context, in *acm.ListCertificatesInput, _ ...func(*acm.Options)) (*acm.ListCertificatesOutput, error) {
	if f.listCertificates == nil {
		return nil, errUnexpected("ListCertificates")
	}
	return f.listCertificates(in)
}

type fakeParameterAPI struct {
	getParameter func(*ssm.GetParameterInput) (*ssm.GetParameterOutput, error)
}

func (f *fakeParameterAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if f.getParameter == nil {
		return nil, errUnexpected("GetParameter")
	}
	return f.getParameter(in)
}
