package deploy

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Fixed table schema. Every table carries a composite pk/sk key, an
// entity-tag secondary index for cross-entity-type scans, and TTL on a
// fixed attribute.
const (
	attrPK  = "pk"
	attrSK  = "sk"
	attrTag = "tag"
	attrTTL = "ttl"

	indexByTag = "byTag"
)

// streamViewType is the change-stream view every table exposes.
const streamViewType = ddbtypes.StreamViewTypeNewAndOldImages

// TableIdentity is the converged table's identifying output.
type TableIdentity struct {
	Name      string
	ARN       string
	StreamARN string
}

// TableReconciler converges tables to the fixed schema.
type TableReconciler struct {
	api TableAPI
}

// NewTableReconciler constructs a TableReconciler.
func NewTableReconciler(api TableAPI) *TableReconciler {
	return &TableReconciler{api: api}
}

// Ensure converges the named table. On an existing table three properties
// converge independently regardless of how it was created: change-stream
// enablement, presence of the byTag index, and TTL on the fixed attribute.
// Each is a separate idempotent step that no-ops when already correct.
func (r *TableReconciler) Ensure(
	ctx context.Context, name string, tc TagContext,
) (EnsureResult[TableIdentity], error) {
	var zero EnsureResult[TableIdentity]

	out, err := retryThrottled(ctx, func() (*dynamodb.DescribeTableOutput, error) {
		return r.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(name),
		})
	})

	var status EnsureStatus
	switch {
	case err == nil:
		status, err = r.convergeExisting(ctx, name, out.Table)
		if err != nil {
			return zero, err
		}
	case IsNotFound(err):
		if err := r.create(ctx, name, tc); err != nil {
			return zero, err
		}
		status = StatusCreated
	default:
		return zero, newDeployError(tc.Handler, ResTypeTable, "locate", err)
	}

	// Re-read so the identity reflects the converged state (stream ARN is
	// only known once the stream exists).
	desc, err := r.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	})
	if err != nil {
		return zero, fmt.Errorf("describe table %q after converge: %w", name, err)
	}

	if err := r.tag(ctx, aws.ToString(desc.Table.TableArn), tc); err != nil {
		return zero, err
	}

	return EnsureResult[TableIdentity]{
		Identity: TableIdentity{
			Name:      name,
			ARN:       aws.ToString(desc.Table.TableArn),
			StreamARN: aws.ToString(desc.Table.LatestStreamArn),
		},
		Status: status,
	}, nil
}

// create provisions the table with the full fixed schema, waits for it to
// activate, then enables TTL (which cannot be set at creation time).
func (r *TableReconciler) create(ctx context.Context, name string, tc TagContext) error {
	_, err := retryThrottled(ctx, func() (*dynamodb.CreateTableOutput, error) {
		return r.api.CreateTable(ctx, &dynamodb.CreateTableInput{
			TableName:   aws.String(name),
			BillingMode: ddbtypes.BillingModePayPerRequest,
			AttributeDefinitions: []ddbtypes.AttributeDefinition{
				{AttributeName: aws.String(attrPK), AttributeType: ddbtypes.ScalarAttributeTypeS},
				{AttributeName: aws.String(attrSK), AttributeType: ddbtypes.ScalarAttributeTypeS},
				{AttributeName: aws.String(attrTag), AttributeType: ddbtypes.ScalarAttributeTypeS},
			},
			KeySchema: []ddbtypes.KeySchemaElement{
				{AttributeName: aws.String(attrPK), KeyType: ddbtypes.KeyTypeHash},
				{AttributeName: aws.String(attrSK), KeyType: ddbtypes.KeyTypeRange},
			},
			GlobalSecondaryIndexes: []ddbtypes.GlobalSecondaryIndex{byTagIndex()},
			StreamSpecification: &ddbtypes.StreamSpecification{
				StreamEnabled:  aws.Bool(true),
				StreamViewType: streamViewType,
			},
			Tags: ddbTags(tc.Tags(ResTypeTable)),
		})
	})
	if err != nil {
		if IsConflict(err) {
			// Another process won the create race; converge the existing
			// table on the next describe instead.
			return nil
		}
		return newDeployError(tc.Handler, ResTypeTable, "create", err)
	}

	if err := r.waitActive(ctx, name); err != nil {
		return err
	}
	return r.convergeTTL(ctx, name)
}

// convergeExisting applies the three independent property steps to a table
// that already exists and reports whether any of them changed anything.
func (r *TableReconciler) convergeExisting(
	ctx context.Context, name string, live *ddbtypes.TableDescription,
) (EnsureStatus, error) {
	changed := false

	if live.StreamSpecification == nil || !aws.ToBool(live.StreamSpecification.StreamEnabled) {
		if err := r.enableStream(ctx, name); err != nil {
			return StatusUnchanged, err
		}
		changed = true
	}

	if !hasIndex(live.GlobalSecondaryIndexes, indexByTag) {
		if err := r.addByTagIndex(ctx, name); err != nil {
			return StatusUnchanged, err
		}
		changed = true
	}

	ttlChanged, err := r.convergeTTLIfNeeded(ctx, name)
	if err != nil {
		return StatusUnchanged, err
	}
	changed = changed || ttlChanged

	if changed {
		return StatusUpdated, nil
	}
	return StatusUnchanged, nil
}

// enableStream turns on the change stream and waits for the table to
// settle.
func (r *TableReconciler) enableStream(ctx context.Context, name string) error {
	_, err := r.api.UpdateTable(ctx, &dynamodb.UpdateTableInput{
		TableName: aws.String(name),
		StreamSpecification: &ddbtypes.StreamSpecification{
			StreamEnabled:  aws.Bool(true),
			StreamViewType: streamViewType,
		},
	})
	if err != nil {
		return fmt.Errorf("enable stream on table %q: %w", name, err)
	}
	return r.waitActive(ctx, name)
}

// addByTagIndex creates the entity-tag index and waits for the table to
// settle.
func (r *TableReconciler) addByTagIndex(ctx context.Context, name string) error {
	idx := byTagIndex()
	_, err := r.api.UpdateTable(ctx, &dynamodb.UpdateTableInput{
		TableName: aws.String(name),
		AttributeDefinitions: []ddbtypes.AttributeDefinition{
			{AttributeName: aws.String(attrTag), AttributeType: ddbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrPK), AttributeType: ddbtypes.ScalarAttributeTypeS},
		},
		GlobalSecondaryIndexUpdates: []ddbtypes.GlobalSecondaryIndexUpdate{{
			Create: &ddbtypes.CreateGlobalSecondaryIndexAction{
				IndexName:  idx.IndexName,
				KeySchema:  idx.KeySchema,
				Projection: idx.Projection,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("add %s index to table %q: %w", indexByTag, name, err)
	}
	return r.waitActive(ctx, name)
}

// convergeTTLIfNeeded reads the TTL state first so a correct table issues
// no write.
func (r *TableReconciler) convergeTTLIfNeeded(ctx context.Context, name string) (bool, error) {
	out, err := r.api.DescribeTimeToLive(ctx, &dynamodb.DescribeTimeToLiveInput{
		TableName: aws.String(name),
	})
	if err != nil {
		return false, fmt.Errorf("describe TTL on table %q: %w", name, err)
	}
	desc := out.TimeToLiveDescription
	if desc != nil &&
		(desc.TimeToLiveStatus == ddbtypes.TimeToLiveStatusEnabled ||
			desc.TimeToLiveStatus == ddbtypes.TimeToLiveStatusEnabling) &&
		aws.ToString(desc.AttributeName) == attrTTL {
		return false, nil
	}
	if err := r.convergeTTL(ctx, name); err != nil {
		return false, err
	}
	return true, nil
}

// convergeTTL enables TTL on the fixed attribute.
func (r *TableReconciler) convergeTTL(ctx context.Context, name string) error {
	_, err := r.api.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(name),
		TimeToLiveSpecification: &ddbtypes.TimeToLiveSpecification{
			AttributeName: aws.String(attrTTL),
			Enabled:       aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("enable TTL on table %q: %w", name, err)
	}
	return nil
}

// waitActive polls until the table and all of its indexes are active.
func (r *TableReconciler) waitActive(ctx context.Context, name string) error {
	_, err := Wait(ctx, tableActiveWait,
		func(ctx context.Context) (*dynamodb.DescribeTableOutput, error) {
			return r.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
				TableName: aws.String(name),
			})
		},
		func(out *dynamodb.DescribeTableOutput) (Outcome, string) {
			status := string(out.Table.TableStatus)
			switch out.Table.TableStatus {
			case ddbtypes.TableStatusActive:
				for _, idx := range out.Table.GlobalSecondaryIndexes {
					if idx.IndexStatus != ddbtypes.IndexStatusActive {
						return OutcomeTransient, status + "/" + string(idx.IndexStatus)
					}
				}
				return OutcomeSatisfied, status
			case ddbtypes.TableStatusCreating, ddbtypes.TableStatusUpdating:
				return OutcomeTransient, status
			default:
				return OutcomeTerminal, status
			}
		},
	)
	return err
}

// tag keeps the ownership tags in sync.
func (r *TableReconciler) tag(ctx context.Context, arn string, tc TagContext) error {
	_, err := r.api.TagResource(ctx, &dynamodb.TagResourceInput{
		ResourceArn: aws.String(arn),
		Tags:        ddbTags(tc.Tags(ResTypeTable)),
	})
	if err != nil {
		return fmt.Errorf("tag table %q: %w", arn, err)
	}
	return nil
}

// Delete removes the table. Already-gone is success.
func (r *TableReconciler) Delete(ctx context.Context, name string) error {
	_, err := r.api.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(name),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("delete table %q: %w", name, err)
	}
	return nil
}

// hasIndex reports whether a secondary index with the given name exists.
func hasIndex(indexes []ddbtypes.GlobalSecondaryIndexDescription, name string) bool {
	for _, idx := range indexes {
		if aws.ToString(idx.IndexName) == name {
			return true
		}
	}
	return false
}

// byTagIndex is the fixed secondary index definition.
func byTagIndex() ddbtypes.GlobalSecondaryIndex {
	return ddbtypes.GlobalSecondaryIndex{
		IndexName: aws.String(indexByTag),
		KeySchema: []ddbtypes.KeySchemaElement{
			{AttributeName: aws.String(attrTag), KeyType: ddbtypes.KeyTypeHash},
			{AttributeName: aws.String(attrPK), KeyType: ddbtypes.KeyTypeRange},
		},
		Projection: &ddbtypes.Projection{ProjectionType: ddbtypes.ProjectionTypeAll},
	}
}

// ddbTags converts a tag map to the table service's tag list.
func ddbTags(tags map[string]string) []ddbtypes.Tag {
	out := make([]ddbtypes.Tag, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		out = append(out, ddbtypes.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

// sortedKeys returns map keys in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
