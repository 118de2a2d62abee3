package deploy

import (
	"context"
	"net/url"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

var testTagContext = TagContext{Project: "shop", Stage: "prod", Handler: "orders"}

func testStatements() []PolicyStatement {
	return []PolicyStatement{{
		Effect:   "Allow",
		Action:   []string{"ssm:GetParameter"},
		Resource: []string{"arn:aws:ssm:us-east-1:123456789012:parameter/shop/prod/key"},
	}}
}

func TestRoleEnsureCreatesMissingRole(t *testing.T) {
	var createdTrust string
	api := &fakeRoleAPI{
		getRole: func(*iam.GetRoleInput) (*iam.GetRoleOutput, error) {
			return nil, notFoundErr()
		},
		createRole: func(in *iam.CreateRoleInput) (*iam.CreateRoleOutput, error) {
			createdTrust = aws.ToString(in.AssumeRolePolicyDocument)
			return &iam.CreateRoleOutput{Role: &iamtypes.Role{
				Arn: aws.String("arn:aws:iam::123456789012:role/shop-prod-orders"),
			}}, nil
		},
		getRolePolicy: func(*iam.GetRolePolicyInput) (*iam.GetRolePolicyOutput, error) {
			return nil, notFoundErr()
		},
		putRolePolicy: func(in *iam.PutRolePolicyInput) (*iam.PutRolePolicyOutput, error) {
			if aws.ToString(in.PolicyName) != inlinePolicyName {
				t.Fatalf("PutRolePolicy policy name = %q", aws.ToString(in.PolicyName))
			}
			return &iam.PutRolePolicyOutput{}, nil
		},
		tagRole: func(*iam.TagRoleInput) (*iam.TagRoleOutput, error) {
			return &iam.TagRoleOutput{}, nil
		},
	}

	res, err := NewRoleReconciler(api).Ensure(context.Background(), "shop-prod-orders", testStatements(), testTagContext)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if res.Status != StatusCreated {
		t.Fatalf("status = %v, want created", res.Status)
	}
	if res.Identity != "arn:aws:iam::123456789012:role/shop-prod-orders" {
		t.Fatalf("identity = %q", res.Identity)
	}
	if createdTrust != assumeRolePolicy {
		t.Fatalf("trust document = %q", createdTrust)
	}
}

func TestRoleEnsureUnchangedWhenPolicyMatches(t *testing.T) {
	desired, err := marshalPolicy(testStatements())
	if err != nil {
		t.Fatalf("marshalPolicy: %v", err)
	}

	api := &fakeRoleAPI{
		getRole: func(*iam.GetRoleInput) (*iam.GetRoleOutput, error) {
			return &iam.GetRoleOutput{Role: &iamtypes.Role{
				Arn: aws.String("arn:aws:iam::123456789012:role/shop-prod-orders"),
			}}, nil
		},
		getRolePolicy: func(*iam.GetRolePolicyInput) (*iam.GetRolePolicyOutput, error) {
			// IAM returns the document URL-encoded.
			return &iam.GetRolePolicyOutput{
				PolicyDocument: aws.String(url.QueryEscape(desired)),
			}, nil
		},
		tagRole: func(*iam.TagRoleInput) (*iam.TagRoleOutput, error) {
			return &iam.TagRoleOutput{}, nil
		},
	}

	res, err := NewRoleReconciler(api).Ensure(context.Background(), "shop-prod-orders", testStatements(), testTagContext)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if res.Status != StatusUnchanged {
		t.Fatalf("status = %v, want unchanged", res.Status)
	}
}

func TestRoleEnsureRewritesDriftedPolicy(t *testing.T) {
	puts := 0
	api := &fakeRoleAPI{
		getRole: func(*iam.GetRoleInput) (*iam.GetRoleOutput, error) {
			return &iam.GetRoleOutput{Role: &iamtypes.Role{
				Arn: aws.String("arn:aws:iam::123456789012:role/shop-prod-orders"),
			}}, nil
		},
		getRolePolicy: func(*iam.GetRolePolicyInput) (*iam.GetRolePolicyOutput, error) {
			return &iam.GetRolePolicyOutput{
				PolicyDocument: aws.String(`{"Version":"2012-10-17","Statement":[]}`),
			}, nil
		},
		putRolePolicy: func(*iam.PutRolePolicyInput) (*iam.PutRolePolicyOutput, error) {
			puts++
			return &iam.PutRolePolicyOutput{}, nil
		},
		tagRole: func(*iam.TagRoleInput) (*iam.TagRoleOutput, error) {
			return &iam.TagRoleOutput{}, nil
		},
	}

	res, err := NewRoleReconciler(api).Ensure(context.Background(), "shop-prod-orders", testStatements(), testTagContext)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if res.Status != StatusUpdated {
		t.Fatalf("status = %v, want updated", res.Status)
	}
	if puts != 1 {
		t.Fatalf("PutRolePolicy calls = %d, want 1", puts)
	}
}

func TestRoleEnsureAdoptsCreateConflict(t *testing.T) {
	missing := true
	api := &fakeRoleAPI{
		getRole: func(*iam.GetRoleInput) (*iam.GetRoleOutput, error) {
			if missing {
				missing = false
				return nil, notFoundErr()
			}
			return &iam.GetRoleOutput{Role: &iamtypes.Role{
				Arn: aws.String("arn:aws:iam::123456789012:role/shop-prod-orders"),
			}}, nil
		},
		createRole: func(*iam.CreateRoleInput) (*iam.CreateRoleOutput, error) {
			return nil, conflictErr()
		},
		getRolePolicy: func(*iam.GetRolePolicyInput) (*iam.GetRolePolicyOutput, error) {
			return nil, notFoundErr()
		},
		putRolePolicy: func(*iam.PutRolePolicyInput) (*iam.PutRolePolicyOutput, error) {
			return &iam.PutRolePolicyOutput{}, nil
		},
		tagRole: func(*iam.TagRoleInput) (*iam.TagRoleOutput, error) {
			return &iam.TagRoleOutput{}, nil
		},
	}

	res, err := NewRoleReconciler(api).Ensure(context.Background(), "shop-prod-orders", testStatements(), testTagContext)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if res.Identity != "arn:aws:iam::123456789012:role/shop-prod-orders" {
		t.Fatalf("identity = %q", res.Identity)
	}
	if res.Status != StatusUpdated {
		t.Fatalf("status = %v, want updated (adopted role, rewritten policy)", res.Status)
	}
}

func TestRoleDeleteToleratesMissing(t *testing.T) {
	api := &fakeRoleAPI{
		deleteRolePolicy: func(*iam.DeleteRolePolicyInput) (*iam.DeleteRolePolicyOutput, error) {
			return nil, notFoundErr()
		},
		deleteRole: func(*iam.DeleteRoleInput) (*iam.DeleteRoleOutput, error) {
			return nil, notFoundErr()
		},
	}
	if err := NewRoleReconciler(api).Delete(context.Background(), "shop-prod-orders"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
