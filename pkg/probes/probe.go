// Package probes implements the Dynamic Web-Vulnerability Probe modules:
// seventeen stateless checks that each send a handful of crafted requests at
// a target and look for a telltale response signal. Every module tolerates
// silent failure (a dead target or network error yields no findings, never
// a panic) and respects the per-request timeout the orchestrator configures
// its HTTP client with.
package probes

import (
	"context"
	"net/http"

	"github.com/scanforge/engine/pkg/findings"
)

// Target is the probe surface: a base URL plus any headers (e.g. an auth
// token) every probe should send. Candidates carries probe-specific inputs
// that don't apply universally — a list of subdomains for the takeover
// probe, or a bucket name for the S3 probe — keyed by the consuming probe's
// name so the orchestrator can populate only what it has discovered.
type Target struct {
	BaseURL    string
	Headers    map[string]string
	Candidates map[string][]string
}

// HTTPDoer is satisfied by *http.Client and by
// *resiliency.EnhancedClient alike, so the orchestrator can hand probes a
// retrying, circuit-breaking client without this package importing
// resiliency directly.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Module is one named probe: a CWE-tagged function that inspects a Target
// and returns whatever it finds. Run must never block past the context
// deadline and must never panic on network failure.
type Module struct {
	Name string
	CWE  []string
	Run  func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding
}

func newRequest(ctx context.Context, method, url string, target Target) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range target.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func finding(module Module, findingType string, severity findings.Severity, url, parameter, evidence, description string, confidence float64) findings.Finding {
	loc := findings.Location{URL: url, Parameter: parameter}
	return findings.Finding{
		ID:          findings.NewID("probes", findingType, loc, evidence),
		Domain:      findings.DomainCodeSecurity,
		Type:        findingType,
		Severity:    severity,
		Title:       module.Name,
		Description: description,
		Location:    loc,
		Evidence:    evidence,
		Confidence:  confidence,
		References:  findings.References{CWE: module.CWE},
		Tags:        []string{"dynamic-probe", findingType},
	}
}

// All returns every registered probe module in a stable order: injection
// probes first, then access-control, then infrastructure/transport checks.
func All() []Module {
	var modules []Module
	modules = append(modules, injectionModules()...)
	modules = append(modules, webModules()...)
	modules = append(modules, accessModules()...)
	modules = append(modules, networkModules()...)
	return modules
}
