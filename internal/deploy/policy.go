package deploy

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
)

// PolicyStatement is one IAM policy statement. Handlers may declare extra
// statements; wiring derives the rest.
type PolicyStatement struct {
	Effect   string   `json:"Effect" yaml:"effect"`
	Action   []string `json:"Action" yaml:"action"`
	Resource []string `json:"Resource" yaml:"resource"`
}

// policyDocument is the JSON shape IAM expects.
type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}

const policyVersion = "2012-10-17"

// assumeRolePolicy is the trust document letting Lambda assume the
// handler's role.
const assumeRolePolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": { "Service": "lambda.amazonaws.com" },
      "Action": "sts:AssumeRole"
    }
  ]
}`

// defaultStatements are granted to every handler role: log delivery only.
func defaultStatements(region, accountID, functionName string) []PolicyStatement {
	logGroupARN := fmt.Sprintf(
		"arn:aws:logs:%s:%s:log-group:/aws/lambda/%s:*",
		region, accountID, functionName,
	)
	return []PolicyStatement{{
		Effect:   "Allow",
		Action:   []string{"logs:CreateLogGroup", "logs:CreateLogStream", "logs:PutLogEvents"},
		Resource: []string{logGroupARN},
	}}
}

// marshalPolicy renders statements as a canonical policy document: the
// statement order is preserved, but action and resource lists are sorted
// so two documents with the same grants serialize identically. The diff
// in ensureRole depends on this canonical form.
func marshalPolicy(statements []PolicyStatement) (string, error) {
	canon := make([]PolicyStatement, len(statements))
	for i, s := range statements {
		actions := append([]string(nil), s.Action...)
		resources := append([]string(nil), s.Resource...)
		sort.Strings(actions)
		sort.Strings(resources)
		canon[i] = PolicyStatement{Effect: s.Effect, Action: actions, Resource: resources}
	}
	doc, err := json.Marshal(policyDocument{Version: policyVersion, Statement: canon})
	if err != nil {
		return "", fmt.Errorf("marshal policy document: %w", err)
	}
	return string(doc), nil
}

// samePolicyDocument compares a live policy document (as returned by the
// role service, URL-encoded) against the desired canonical document.
func samePolicyDocument(live, desired string) bool {
	decoded, err := url.QueryUnescape(live)
	if err != nil {
		decoded = live
	}
	var a, b policyDocument
	if err := json.Unmarshal([]byte(decoded), &a); err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(desired), &b); err != nil {
		return false
	}
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	return string(aj) == string(bj)
}
