package deploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	acmtypes "github.com/aws/aws-sdk-go-v2/service/acm/types"
)

// CertificateFinder resolves custom domains to issued certificates. It is
// strictly read-only: certificates are provisioned out of band and this
// engine never requests or validates them.
type CertificateFinder struct {
	api CertificateAPI
}

// NewCertificateFinder constructs a CertificateFinder.
func NewCertificateFinder(api CertificateAPI) *CertificateFinder {
	return &CertificateFinder{api: api}
}

// Find returns the ARN of an issued certificate covering domain, either
// exactly or through a wildcard on the parent. A wildcard match on
// "*.example.com" covers "app.example.com" but not "example.com" itself,
// and never a deeper subdomain. Certificates carrying an explicit
// subject-alternative-name list win over ones covering through their
// primary domain name alone.
func (f *CertificateFinder) Find(ctx context.Context, domain string) (string, error) {
	var fallback string
	var token *string
	for {
		out, err := f.api.ListCertificates(ctx, &acm.ListCertificatesInput{
			CertificateStatuses: []acmtypes.CertificateStatus{acmtypes.CertificateStatusIssued},
			NextToken:           token,
		})
		if err != nil {
			return "", fmt.Errorf("list certificates: %w", err)
		}
		for _, summary := range out.CertificateSummaryList {
			if !certificateCovers(summary, domain) {
				continue
			}
			if len(summary.SubjectAlternativeNameSummaries) > 0 {
				return aws.ToString(summary.CertificateArn), nil
			}
			if fallback == "" {
				fallback = aws.ToString(summary.CertificateArn)
			}
		}
		if out.NextToken == nil {
			break
		}
		token = out.NextToken
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf(
		"no issued certificate covers %q: issue one in ACM (us-east-1) for the domain or a wildcard on its parent, then re-run",
		domain)
}

// certificateCovers reports whether the certificate's domain name or any
// of its subject alternative names matches domain.
func certificateCovers(summary acmtypes.CertificateSummary, domain string) bool {
	if domainMatches(aws.ToString(summary.DomainName), domain) {
		return true
	}
	for _, san := range summary.SubjectAlternativeNameSummaries {
		if domainMatches(san, domain) {
			return true
		}
	}
	return false
}

// domainMatches reports whether pattern covers domain. Wildcards match a
// single label only.
func domainMatches(pattern, domain string) bool {
	pattern = strings.ToLower(pattern)
	domain = strings.ToLower(domain)
	if pattern == domain {
		return true
	}
	if !strings.HasPrefix(pattern, "*.") {
		return false
	}
	parent := pattern[2:]
	rest, found := strings.CutSuffix(domain, "."+parent)
	if !found {
		return false
	}
	return !strings.Contains(rest, ".")
}
