// Package secrets implements the hardcoded-credential detector: a
// line-oriented regex pass over source text, entropy-gated to suppress
// placeholder/example values, deduplicated by rule label and token prefix.
package secrets

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/scanforge/engine/pkg/entropy"
	"github.com/scanforge/engine/pkg/findings"
	"github.com/scanforge/engine/pkg/registry"
)

// Detector scans text for hardcoded secrets using a fixed, built-in rule
// catalog registered at construction time.
type Detector struct {
	reg *registry.Registry
}

// New builds a Detector with the full secret-rule catalog registered.
func New() *Detector {
	reg := registry.New()
	reg.RegisterAll(catalog())
	return &Detector{reg: reg}
}

// Scan runs every secret rule against text line by line. source labels the
// resulting Location.FilePath (empty for prompt/text-only scans). Blank
// lines and full-line comments are skipped; within a line, each rule reports
// at most one match, and results are deduplicated by (rule label, token
// prefix) so the same leaked key noticed twice on one line only surfaces
// once.
func (d *Detector) Scan(text, source string) []findings.Finding {
	lines := strings.Split(text, "\n")
	seen := make(map[string]struct{})
	var out []findings.Finding

	for lineNo, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isCommentLine(trimmed) {
			continue
		}
		for _, rule := range d.reg.Iter() {
			loc := rule.Pattern.FindStringIndex(line)
			if loc == nil {
				continue
			}
			token := strings.TrimSpace(line[loc[0]:loc[1]])
			if rule.MinEntropy > 0 && entropy.Shannon(token) < rule.MinEntropy {
				continue
			}

			dedupKey := rule.Label + "\x00" + tokenPrefix(token)
			if _, ok := seen[dedupKey]; ok {
				continue
			}
			seen[dedupKey] = struct{}{}

			location := findings.Location{FilePath: source, Line: lineNo + 1}
			confidence := 0.8 + entropy.Shannon(token)/20
			if confidence > 1.0 {
				confidence = 1.0
			}

			meta := map[string]interface{}{"rule": rule.Label, "secret_kind": rule.FindingType}
			if rule.FindingType == "jwt_token" {
				if claims, ok := decodeJWTClaims(token); ok {
					meta["jwt_claims"] = claims
				}
			}

			out = append(out, findings.Finding{
				ID:          findings.NewID("secrets", "hardcoded_secret", location, token),
				Domain:      findings.DomainCodeSecurity,
				Type:        "hardcoded_secret",
				Severity:    findings.SeverityCritical,
				Title:       humanizeRuleLabel(rule.Label),
				Description: "A hardcoded credential matching the " + rule.Label + " pattern was found in source text.",
				Location:    location,
				Evidence:    entropy.Mask(token),
				Remediation: "Remove the credential from source and rotate it; load secrets from an environment variable or secret manager instead.",
				Confidence:  confidence,
				References:  rule.References,
				Metadata:    meta,
				Tags:        []string{"secret", rule.Label},
			})
		}
	}
	return out
}

func isCommentLine(line string) bool {
	for _, prefix := range []string{"//", "#", "--", "/*", "*"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func tokenPrefix(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12]
}

func humanizeRuleLabel(label string) string {
	return "Hardcoded secret detected: " + strings.ReplaceAll(label, "-", " ")
}

// decodeJWTClaims decodes a JWT's claims without verifying its signature,
// purely to report what scopes/subjects a leaked token grants. Unverified
// parsing is intentional here: we are inspecting a token found in source
// text, not authenticating a request.
func decodeJWTClaims(token string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	_, _, err := parser.ParseUnverified(token, claims)
	if err != nil {
		return nil, false
	}
	return claims, true
}
