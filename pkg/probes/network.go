package probes

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/scanforge/engine/pkg/findings"
)

func networkModules() []Module {
	return []Module{
		ssrfModule(),
		xxeModule(),
		tlsDowngradeModule(),
		subdomainTakeoverModule(),
		publicS3BucketModule(),
		graphQLModule(),
	}
}

// cloudMetadataTargets are the well-known link-local metadata endpoints an
// SSRF payload could reach from inside a cloud VM or container.
var cloudMetadataTargets = []string{
	"http://169.254.169.254/latest/meta-data/",
	"http://169.254.169.254/computeMetadata/v1/",
	"http://metadata.google.internal/computeMetadata/v1/",
}

func ssrfModule() Module {
	m := Module{Name: "Server-Side Request Forgery", CWE: []string{"CWE-918"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		for _, payload := range cloudMetadataTargets {
			url := withQuery(target.BaseURL, "url", payload)
			req, err := newRequest(ctx, http.MethodGet, url, target)
			if err != nil {
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				continue
			}
			body := strings.ToLower(readBodyLimited(resp))
			if resp.StatusCode == http.StatusOK && (strings.Contains(body, "ami-id") || strings.Contains(body, "instance-id") || strings.Contains(body, "compute")) {
				out = append(out, finding(m, "ssrf", findings.SeverityCritical, url, "url", payload,
					"A server-supplied URL parameter reached the cloud instance metadata service and returned metadata.", 0.85))
				break
			}
		}
		return out
	}
	return m
}

func xxeModule() Module {
	m := Module{Name: "XML External Entity Injection", CWE: []string{"CWE-611"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		payload := `<?xml version="1.0"?><!DOCTYPE r [<!ENTITY x SYSTEM "file:///etc/passwd">]><r>&x;</r>`
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.BaseURL, bytes.NewReader([]byte(payload)))
		if err != nil {
			return nil
		}
		req.Header.Set("Content-Type", "application/xml")
		for k, v := range target.Headers {
			req.Header.Set(k, v)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil
		}
		body := readBodyLimited(resp)
		if strings.Contains(body, "root:x:0:0") {
			out = append(out, finding(m, "xxe", findings.SeverityCritical, target.BaseURL, "", "XXE external entity payload",
				"An XML body with an external entity reference caused the server to disclose local file contents.", 0.85))
		}
		return out
	}
	return m
}

func tlsDowngradeModule() Module {
	m := Module{Name: "TLS Downgrade / Weak Protocol Support", CWE: []string{"CWE-757"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		if !strings.HasPrefix(target.BaseURL, "https://") {
			return nil
		}
		weakClient := &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS10,
					MaxVersion: tls.VersionTLS11,
				},
			},
		}
		req, err := newRequest(ctx, http.MethodGet, target.BaseURL, target)
		if err != nil {
			return nil
		}
		resp, err := weakClient.Do(req)
		if err != nil {
			// A handshake failure here is the expected, secure outcome.
			return nil
		}
		_ = readBodyLimited(resp)
		out = append(out, finding(m, "tls_downgrade", findings.SeverityHigh, target.BaseURL, "", "TLS 1.0/1.1 handshake succeeded",
			"The server completed a TLS handshake using a deprecated protocol version (TLS 1.0 or 1.1).", 0.9))
		return out
	}
	return m
}

func subdomainTakeoverModule() Module {
	m := Module{Name: "Subdomain Takeover", CWE: []string{"CWE-350"}}
	// takeoverFingerprints map a CNAME target substring to the error page
	// text its abandoned resource returns, letting a takeover be confirmed
	// without needing DNS resolution in this probe.
	fingerprints := map[string]string{
		"github.io":          "there isn't a github pages site here",
		"herokudns.com":      "no such app",
		"s3.amazonaws.com":   "nosuchbucket",
		"azurewebsites.net":  "web app not found",
		"cloudapp.net":       "web app not found",
	}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		for _, sub := range target.Candidates["subdomains"] {
			req, err := newRequest(ctx, http.MethodGet, "https://"+sub, Target{Headers: target.Headers})
			if err != nil {
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				continue
			}
			body := strings.ToLower(readBodyLimited(resp))
			for cname, signature := range fingerprints {
				if strings.Contains(body, signature) {
					out = append(out, finding(m, "subdomain_takeover", findings.SeverityHigh, "https://"+sub, "", cname,
						"A subdomain's response matches the fingerprint of an abandoned, claimable cloud resource.", 0.65))
					break
				}
			}
		}
		return out
	}
	return m
}

// publicS3Bucket is exercised directly by tests; the Module wrapper below
// adapts it to the probe contract.
func publicS3Bucket(ctx context.Context, bucket string) (bool, int, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		return false, 0, err
	}
	client := s3.NewFromConfig(cfg)
	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	if err != nil {
		return false, 0, err
	}
	return true, len(out.Contents), nil
}

func publicS3BucketModule() Module {
	m := Module{Name: "Publicly Listable S3 Bucket", CWE: []string{"CWE-284"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		for _, bucket := range target.Candidates["s3_buckets"] {
			listable, count, err := publicS3Bucket(ctx, bucket)
			if err != nil || !listable {
				continue
			}
			out = append(out, finding(m, "public_s3_bucket", findings.SeverityHigh, "s3://"+bucket, "", bucket,
				"Anonymous ListObjectsV2 succeeded against this bucket, returning "+itoaProbes(count)+" object(s).", 0.9))
		}
		return out
	}
	return m
}

func graphQLModule() Module {
	m := Module{Name: "GraphQL Introspection Exposed", CWE: []string{"CWE-200"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		query := map[string]string{"query": "{__schema{types{name}}}"}
		payload, _ := json.Marshal(query)
		url := strings.TrimRight(target.BaseURL, "/") + "/graphql"
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range target.Headers {
			req.Header.Set(k, v)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil
		}
		body := readBodyLimited(resp)
		if resp.StatusCode == http.StatusOK && strings.Contains(body, "__schema") && strings.Contains(body, "types") {
			out = append(out, finding(m, "graphql_introspection", findings.SeverityMedium, url, "", "__schema introspection query succeeded",
				"GraphQL schema introspection is enabled in what appears to be a production endpoint, revealing the full API surface.", 0.7))
		}
		return out
	}
	return m
}

func itoaProbes(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
