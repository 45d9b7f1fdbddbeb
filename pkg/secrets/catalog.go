package secrets

import (
	"github.com/scanforge/engine/pkg/findings"
	"github.com/scanforge/engine/pkg/registry"
)

// catalog is the full set of hardcoded-secret rules (AWS/GitHub/Stripe/
// Slack/JWT/PEM key patterns); every rule carries a CWE id so findings map
// directly onto a remediation reference. A leaked credential is critical
// regardless of which provider issued it, so every rule shares one
// severity; FindingType records the credential kind for metadata.
func catalog() []registry.RuleSpec {
	return []registry.RuleSpec{
		{
			Label: "aws-access-key-id", Domain: findings.DomainCodeSecurity,
			FindingType: "aws_access_key", Severity: findings.SeverityCritical,
			Pattern:    `\b(AKIA|ABIA|ACCA|ASIA)[0-9A-Z]{16}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "aws-secret-access-key", Domain: findings.DomainCodeSecurity,
			FindingType: "aws_secret_key", Severity: findings.SeverityCritical,
			Pattern:    `(?:aws_secret_access_key|aws_secret_key|secretAccessKey)\s*[:=]\s*['"]?([A-Za-z0-9/+=]{40})['"]?`,
			MinEntropy: 3.5,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "github-token-classic", Domain: findings.DomainCodeSecurity,
			FindingType: "github_token", Severity: findings.SeverityCritical,
			Pattern:    `\bgh[pousr]_[A-Za-z0-9]{36}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "github-token-fine-grained", Domain: findings.DomainCodeSecurity,
			FindingType: "github_token", Severity: findings.SeverityCritical,
			Pattern:    `\bgithub_pat_[A-Za-z0-9_]{22,255}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "stripe-live-secret-key", Domain: findings.DomainCodeSecurity,
			FindingType: "stripe_key", Severity: findings.SeverityCritical,
			Pattern:    `\bsk_live_[0-9a-zA-Z]{24,}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "stripe-restricted-key", Domain: findings.DomainCodeSecurity,
			FindingType: "stripe_key", Severity: findings.SeverityCritical,
			Pattern:    `\brk_live_[0-9a-zA-Z]{24,}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "stripe-publishable-key", Domain: findings.DomainCodeSecurity,
			FindingType: "stripe_key", Severity: findings.SeverityCritical,
			Pattern:    `\bpk_live_[0-9a-zA-Z]{24,}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "openai-api-key", Domain: findings.DomainCodeSecurity,
			FindingType: "openai_key", Severity: findings.SeverityCritical,
			Pattern:    `\bsk-[A-Za-z0-9]{20,}T3BlbkFJ[A-Za-z0-9]{20,}\b|\bsk-[A-Za-z0-9_-]{32,}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "google-api-key", Domain: findings.DomainCodeSecurity,
			FindingType: "google_api_key", Severity: findings.SeverityCritical,
			Pattern:    `\bAIza[0-9A-Za-z_-]{35}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "google-oauth-client-secret", Domain: findings.DomainCodeSecurity,
			FindingType: "google_oauth_secret", Severity: findings.SeverityCritical,
			Pattern:    `\bGOCSPX-[A-Za-z0-9_-]{28}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "gcp-service-account-json", Domain: findings.DomainCodeSecurity,
			FindingType: "gcp_service_account", Severity: findings.SeverityCritical,
			Pattern:    `"type"\s*:\s*"service_account"`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "slack-bot-token", Domain: findings.DomainCodeSecurity,
			FindingType: "slack_token", Severity: findings.SeverityCritical,
			Pattern:    `\bxoxb-[0-9A-Za-z-]{10,}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "slack-app-token", Domain: findings.DomainCodeSecurity,
			FindingType: "slack_token", Severity: findings.SeverityCritical,
			Pattern:    `\bxapp-[0-9A-Za-z-]{10,}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "slack-user-token", Domain: findings.DomainCodeSecurity,
			FindingType: "slack_token", Severity: findings.SeverityCritical,
			Pattern:    `\bxoxp-[0-9A-Za-z-]{10,}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "jwt-token", Domain: findings.DomainCodeSecurity,
			FindingType: "jwt_token", Severity: findings.SeverityCritical,
			Pattern:    `\bey[A-Za-z0-9_-]{10,}\.ey[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "pem-private-key", Domain: findings.DomainCodeSecurity,
			FindingType: "private_key", Severity: findings.SeverityCritical,
			Pattern:       `-----BEGIN (RSA |EC |OPENSSH |DSA |)PRIVATE KEY-----`,
			CaseSensitive: true,
			References:    findings.References{CWE: []string{"CWE-798", "CWE-321"}},
		},
		{
			Label: "sendgrid-api-key", Domain: findings.DomainCodeSecurity,
			FindingType: "sendgrid_key", Severity: findings.SeverityCritical,
			Pattern:    `\bSG\.[A-Za-z0-9_-]{22}\.[A-Za-z0-9_-]{43}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "twilio-api-key", Domain: findings.DomainCodeSecurity,
			FindingType: "twilio_key", Severity: findings.SeverityCritical,
			Pattern:    `\bSK[0-9a-fA-F]{32}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "hashicorp-vault-token", Domain: findings.DomainCodeSecurity,
			FindingType: "vault_token", Severity: findings.SeverityCritical,
			Pattern:    `\b[sh]\.[A-Za-z0-9]{24,}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "shopify-access-token", Domain: findings.DomainCodeSecurity,
			FindingType: "shopify_token", Severity: findings.SeverityCritical,
			Pattern:    `\bshp(at|ca|pa|ss)_[0-9a-fA-F]{32}\b`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "db-connection-string", Domain: findings.DomainCodeSecurity,
			FindingType: "db_connection_string", Severity: findings.SeverityCritical,
			Pattern:    `\b(postgres(?:ql)?|mysql|mongodb(?:\+srv)?):\/\/[^:\s]+:[^@\s]+@[^\s'"]+`,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
		{
			Label: "generic-assignment", Domain: findings.DomainCodeSecurity,
			FindingType: "hardcoded_secret", Severity: findings.SeverityCritical,
			Pattern:    `(?:password|passwd|pwd|secret|api_key|apikey|access_token|auth_token)\s*[:=]\s*['"][^'"\s]{8,}['"]`,
			MinEntropy: 3.0,
			References: findings.References{CWE: []string{"CWE-798"}},
		},
	}
}
