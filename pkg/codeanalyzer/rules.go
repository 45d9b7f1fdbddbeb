package codeanalyzer

import (
	"github.com/scanforge/engine/pkg/findings"
	"github.com/scanforge/engine/pkg/registry"
)

// catalog is the language-agnostic regex rule set: patterns that recur
// across shell, Python, JS, Java and Go source alike. Grounded on the
// corpus's scanner-pattern style of one compiled regex per vulnerability
// class with an attached CWE.
func catalog() []registry.RuleSpec {
	return []registry.RuleSpec{
		{
			Label: "shell-injection", Domain: findings.DomainCodeSecurity,
			FindingType: "shell_injection", Severity: findings.SeverityCritical,
			Pattern:    `\b(os\.system|subprocess\.(call|run|Popen)|exec\.Command|child_process\.exec|Runtime\.getRuntime\(\)\.exec)\s*\([^)]*\+`,
			References: findings.References{CWE: []string{"CWE-78"}, OWASP: []string{"A03:2021"}},
		},
		{
			Label: "tls-verification-disabled", Domain: findings.DomainCodeSecurity,
			FindingType: "insecure_tls", Severity: findings.SeverityHigh,
			Pattern:    `(InsecureSkipVerify\s*:\s*true|verify\s*=\s*False|rejectUnauthorized\s*:\s*false|NODE_TLS_REJECT_UNAUTHORIZED\s*=\s*['"]?0)`,
			References: findings.References{CWE: []string{"CWE-295"}},
		},
		{
			Label: "debug-flag-enabled", Domain: findings.DomainCodeSecurity,
			FindingType: "debug_enabled", Severity: findings.SeverityLow,
			Pattern:    `(DEBUG\s*=\s*True|app\.run\([^)]*debug\s*=\s*True|gin\.SetMode\(gin\.DebugMode\))`,
			References: findings.References{CWE: []string{"CWE-489"}},
		},
		{
			Label: "sensitive-data-logged", Domain: findings.DomainCodeSecurity,
			FindingType: "sensitive_data_logged", Severity: findings.SeverityMedium,
			Pattern:    `(log|logger|console)\.(info|debug|warn|error|print|Println|Printf)\([^)]*(password|token|secret|ssn|credit_card)`,
			References: findings.References{CWE: []string{"CWE-532"}},
		},
		{
			Label: "weak-hash-md5-sha1", Domain: findings.DomainCodeSecurity,
			FindingType: "weak_hash", Severity: findings.SeverityMedium,
			Pattern:    `\b(md5|sha1)\.(new|New|Sum)\(|hashlib\.(md5|sha1)\(|MessageDigest\.getInstance\(["'](MD5|SHA-?1)["']\)`,
			References: findings.References{CWE: []string{"CWE-327"}},
		},
		{
			Label: "plaintext-http", Domain: findings.DomainCodeSecurity,
			FindingType: "plaintext_http", Severity: findings.SeverityLow,
			Pattern:    `http://[A-Za-z0-9.-]+`,
			Exclude:    `http://(localhost|127\.0\.0\.1|0\.0\.0\.0|\[::1\])`,
			References: findings.References{CWE: []string{"CWE-319"}},
		},
		{
			Label: "assert-as-guard", Domain: findings.DomainCodeSecurity,
			FindingType: "assert_as_guard", Severity: findings.SeverityMedium,
			Pattern:    `assert\s+(user|request)\.(is_admin|role|authenticated)`,
			References: findings.References{CWE: []string{"CWE-617"}},
		},
		{
			Label: "log4shell-jndi-lookup", Domain: findings.DomainCodeSecurity,
			FindingType: "jndi_injection", Severity: findings.SeverityCritical,
			Pattern:    `\$\{jndi:(ldap|rmi|dns)://`,
			References: findings.References{CWE: []string{"CWE-917"}, CVE: []string{"CVE-2021-44228"}},
		},
		{
			Label: "unsafe-deserialization", Domain: findings.DomainCodeSecurity,
			FindingType: "unsafe_deserialization", Severity: findings.SeverityCritical,
			Pattern:    `(pickle\.loads|yaml\.load\(|ObjectInputStream|marshal\.loads)`,
			Exclude:    `Loader\s*=\s*yaml\.(SafeLoader|CSafeLoader)|yaml\.safe_load`,
			References: findings.References{CWE: []string{"CWE-502"}},
		},
		{
			Label: "sql-string-formatting", Domain: findings.DomainCodeSecurity,
			FindingType: "sql_injection", Severity: findings.SeverityCritical,
			Pattern:    `(SELECT|INSERT|UPDATE|DELETE)\b[^;'"]*['"]\s*\+|(f"|%s"|\.format\().*?(SELECT|INSERT|UPDATE|DELETE)\b`,
			References: findings.References{CWE: []string{"CWE-89"}, OWASP: []string{"A03:2021"}},
		},
		{
			Label: "ssrf-suspect-fetch", Domain: findings.DomainCodeSecurity,
			FindingType: "ssrf_suspect", Severity: findings.SeverityHigh,
			Pattern:    `(requests\.get|urllib\.request\.urlopen|http\.Get|fetch)\([^)]*req(uest)?\.(query|params|body|GET|POST)`,
			References: findings.References{CWE: []string{"CWE-918"}},
		},
		{
			Label: "open-redirect", Domain: findings.DomainCodeSecurity,
			FindingType: "open_redirect", Severity: findings.SeverityMedium,
			Pattern:    `(redirect|Redirect)\([^)]*req(uest)?\.(query|params|GET)\[['"]?(next|url|redirect_to)['"]?\]`,
			References: findings.References{CWE: []string{"CWE-601"}},
		},
		{
			Label: "weak-prng", Domain: findings.DomainCodeSecurity,
			FindingType: "weak_prng", Severity: findings.SeverityLow,
			Pattern:    `\b(math/rand|random\.random\(\)|Math\.random\(\))\b.*?(token|password|secret|session)`,
			References: findings.References{CWE: []string{"CWE-338"}},
		},
	}
}
