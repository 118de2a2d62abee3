package deploy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
)

// Inventory is the set of live resources carrying this project+stage's
// tags, as reported by the tagging service. It is the source of truth for
// status, sweep, and destroy: anything the engine created is discoverable
// here because every create path tags.
type Inventory struct {
	records []ResourceRecord
}

// InventoryScanner queries the tagging service for project-scoped
// resources.
type InventoryScanner struct {
	api TaggingAPI
}

// NewInventoryScanner constructs an InventoryScanner.
func NewInventoryScanner(api TaggingAPI) *InventoryScanner {
	return &InventoryScanner{api: api}
}

// Scan pages through every resource tagged with the project and stage.
func (s *InventoryScanner) Scan(ctx context.Context, project, stage string) (*Inventory, error) {
	var records []ResourceRecord
	var token *string
	for {
		out, err := retryThrottled(ctx, func() (*resourcegroupstaggingapi.GetResourcesOutput, error) {
			return s.api.GetResources(ctx, &resourcegroupstaggingapi.GetResourcesInput{
				PaginationToken: token,
				TagFilters: []taggingtypes.TagFilter{
					{Key: aws.String(TagKeyProject), Values: []string{project}},
					{Key: aws.String(TagKeyStage), Values: []string{stage}},
				},
			})
		})
		if err != nil {
			return nil, fmt.Errorf("scan tagged resources for %s/%s: %w", project, stage, err)
		}
		for _, mapping := range out.ResourceTagMappingList {
			records = append(records, recordFromMapping(mapping))
		}
		if aws.ToString(out.PaginationToken) == "" {
			break
		}
		token = out.PaginationToken
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ARN < records[j].ARN })
	return &Inventory{records: records}, nil
}

// Records returns every discovered resource.
func (inv *Inventory) Records() []ResourceRecord { return inv.records }

// GroupByHandler splits records by their handler tag. Project-level
// resources (no handler tag) are returned under the empty key; records are
// never dropped for missing tags.
func (inv *Inventory) GroupByHandler() map[string][]ResourceRecord {
	groups := make(map[string][]ResourceRecord)
	for _, rec := range inv.records {
		groups[rec.Handler()] = append(groups[rec.Handler()], rec)
	}
	return groups
}

// OfType returns the records whose type tag matches resType.
func (inv *Inventory) OfType(resType string) []ResourceRecord {
	var out []ResourceRecord
	for _, rec := range inv.records {
		if rec.Tags[TagKeyType] == resType {
			out = append(out, rec)
		}
	}
	return out
}

// HandlerNames returns the sorted distinct handler tags present.
func (inv *Inventory) HandlerNames() []string {
	seen := make(map[string]bool)
	for _, rec := range inv.records {
		if h := rec.Handler(); h != "" {
			seen[h] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func recordFromMapping(mapping taggingtypes.ResourceTagMapping) ResourceRecord {
	tags := make(map[string]string, len(mapping.Tags))
	for _, tag := range mapping.Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return ResourceRecord{
		ARN:  aws.ToString(mapping.ResourceARN),
		Type: tags[TagKeyType],
		Tags: tags,
	}
}

// resourceNameFromARN extracts the trailing resource name from an ARN,
// tolerating both ":" and "/" separators.
func resourceNameFromARN(arn string) string {
	rest := arn
	if i := strings.LastIndex(rest, "/"); i >= 0 {
		rest = rest[i+1:]
	}
	if i := strings.LastIndex(rest, ":"); i >= 0 {
		rest = rest[i+1:]
	}
	return rest
}
