package deploy

import (
	"fmt"
	"sort"
	"strings"
)

// Wiring resolves a handler's declared references into environment
// variables and the minimal permission statements required to use them.
// It is pure computation over the declared handler set: table names and
// parameter paths are derived deterministically, no remote round-trip.

// tableActions is the fixed read/write action set granted for every table
// reference, scoped to that table and its indexes only.
var tableActions = []string{
	"dynamodb:GetItem",
	"dynamodb:PutItem",
	"dynamodb:UpdateItem",
	"dynamodb:DeleteItem",
	"dynamodb:Query",
	"dynamodb:BatchGetItem",
	"dynamodb:BatchWriteItem",
}

// streamActions is the fixed action set for table-trigger handlers reading
// a change stream.
var streamActions = []string{
	"dynamodb:GetRecords",
	"dynamodb:GetShardIterator",
	"dynamodb:DescribeStream",
	"dynamodb:ListStreams",
}

// queueActions is the fixed action set for fifo-consumer handlers.
var queueActions = []string{
	"sqs:ReceiveMessage",
	"sqs:DeleteMessage",
	"sqs:GetQueueAttributes",
}

// ResolveWiring computes the environment entries and permission statements
// for one handler given the run context.
func ResolveWiring(rc *RunContext, h *Handler) (map[string]string, []PolicyStatement) {
	env := make(map[string]string)
	var statements []PolicyStatement

	env["EFFORTLESS_PROJECT"] = rc.Project
	env["EFFORTLESS_STAGE"] = rc.Stage

	for _, ref := range sortedCopy(h.Tables) {
		tableName := rc.TableNames[ref]
		tableARN := fmt.Sprintf("arn:aws:dynamodb:%s:%s:table/%s", rc.Region, rc.AccountID, tableName)
		env[envVarName("TABLE", ref)] = tableName
		statements = append(statements, PolicyStatement{
			Effect:   "Allow",
			Action:   tableActions,
			Resource: []string{tableARN, tableARN + "/index/*"},
		})
	}

	for _, key := range sortedCopy(h.Params) {
		path := rc.ParamPaths[key]
		env[envVarName("PARAM", key)] = path
		statements = append(statements, PolicyStatement{
			Effect:   "Allow",
			Action:   []string{"ssm:GetParameter"},
			Resource: []string{fmt.Sprintf("arn:aws:ssm:%s:%s:parameter%s", rc.Region, rc.AccountID, path)},
		})
	}

	switch h.Kind {
	case KindTableTrigger:
		sourceARN := fmt.Sprintf("arn:aws:dynamodb:%s:%s:table/%s/stream/*",
			rc.Region, rc.AccountID, ResourceName(rc.Project, rc.Stage, h.Name))
		statements = append(statements, PolicyStatement{
			Effect:   "Allow",
			Action:   streamActions,
			Resource: []string{sourceARN},
		})
	case KindFIFOConsumer:
		queueARN := fmt.Sprintf("arn:aws:sqs:%s:%s:%s",
			rc.Region, rc.AccountID, QueueName(rc.Project, rc.Stage, h.Name))
		env["QUEUE_URL"] = fmt.Sprintf("https://sqs.%s.amazonaws.com/%s/%s",
			rc.Region, rc.AccountID, QueueName(rc.Project, rc.Stage, h.Name))
		statements = append(statements, PolicyStatement{
			Effect:   "Allow",
			Action:   queueActions,
			Resource: []string{queueARN},
		})
	case KindWebSocket:
		// WebSocket handlers post back to connected clients.
		statements = append(statements, PolicyStatement{
			Effect:   "Allow",
			Action:   []string{"execute-api:ManageConnections"},
			Resource: []string{fmt.Sprintf("arn:aws:execute-api:%s:%s:*", rc.Region, rc.AccountID)},
		})
	}

	statements = append(statements, h.Statements...)
	return env, statements
}

// envVarName derives the environment variable name for a reference, e.g.
// ("TABLE", "user-store") -> "TABLE_USER_STORE".
func envVarName(prefix, ref string) string {
	cleaned := strings.ToUpper(ref)
	cleaned = strings.NewReplacer("-", "_", ".", "_", "/", "_").Replace(cleaned)
	return prefix + "_" + cleaned
}

// sortedCopy returns a sorted copy so env/permission ordering is stable
// across runs (the function config diff compares environment sets).
func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
