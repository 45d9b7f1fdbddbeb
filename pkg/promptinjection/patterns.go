// Package promptinjection implements the Prompt Injection Analyzer: a
// jailbreak/instruction-override pattern pass, recursive base64-obfuscation
// unwrapping, Unicode-evasion detection, a sensitive-keyword sweep, and a
// safer-prompt synthesizer. Authored fresh (the example pack carries no
// direct jailbreak-taxonomy reference); structured in the registry/Rule
// idiom used by every other analyzer in this module so its shape is
// grounded even where its content is not.
package promptinjection

import (
	"regexp"

	"github.com/scanforge/engine/pkg/findings"
)

// Additive scoring weights per finding severity. Prompt-injection risk is
// additive rather than confidence-scaled: a single instruction-override
// attempt is already a conclusive signal regardless of how many weaker
// patterns also matched.
const (
	weightCritical = 35.0
	weightHigh     = 20.0
	weightMedium   = 10.0
	weightLow      = 3.0
)

func additiveWeight(s findings.Severity) float64 {
	switch s {
	case findings.SeverityCritical:
		return weightCritical
	case findings.SeverityHigh:
		return weightHigh
	case findings.SeverityMedium:
		return weightMedium
	case findings.SeverityLow:
		return weightLow
	default:
		return 0
	}
}

type patternRule struct {
	label       string
	findingType string
	severity    findings.Severity
	pattern     *regexp.Regexp
}

func catalog() []patternRule {
	return []patternRule{
		// Direct instruction overrides.
		{
			label: "ignore-previous-instructions", findingType: "instruction_override", severity: findings.SeverityCritical,
			pattern: regexp.MustCompile(`(?i)(ignore|disregard|forget|override|bypass)\s+(all\s+|the\s+|any\s+|your\s+)*(previous|prior|above|earlier|original|safety)\s+(instructions?|prompts?|rules?|guidelines?|polic(y|ies)|directives?)`),
		},
		{
			label: "new-directive", findingType: "new_directive", severity: findings.SeverityCritical,
			pattern: regexp.MustCompile(`(?i)((your\s+new|the\s+real|updated)\s+(instructions?|directives?)\s+(are|is|follow)|new\s+directive\s*:)`),
		},
		// Known jailbreak personas.
		{
			label: "dan-jailbreak", findingType: "dan_jailbreak", severity: findings.SeverityCritical,
			pattern: regexp.MustCompile(`(?i)(\bDAN\b.{0,60}(do\s+anything\s+now|no\s+restrictions?|jailbreak)|do\s+anything\s+now|you\s+are\s+now\s+DAN\b)`),
		},
		{
			label: "god-mode", findingType: "god_mode_jailbreak", severity: findings.SeverityCritical,
			pattern: regexp.MustCompile(`(?i)(enable|activate|enter|engage)\s+(god|unrestricted|admin|root)\s*[- ]?mode`),
		},
		{
			label: "developer-mode", findingType: "developer_mode_jailbreak", severity: findings.SeverityCritical,
			pattern: regexp.MustCompile(`(?i)(developer\s+mode\s+(enabled|activated)|(enable|activate|enter)\s+developer\s+mode|simulate\s+developer\s+mode)`),
		},
		// Privilege-escalation phrasing.
		{
			label: "privilege-escalation", findingType: "privilege_escalation", severity: findings.SeverityHigh,
			pattern: regexp.MustCompile(`(?i)(you\s+(now\s+)?have\s+(root|admin|sudo|elevated)\s+(access|privileges?)|grant\s+me\s+(admin|root|sudo)|i\s+am\s+your\s+(developer|creator|administrator))`),
		},
		// Roleplay as an unrestricted model.
		{
			label: "unrestricted-roleplay", findingType: "unrestricted_roleplay", severity: findings.SeverityHigh,
			pattern: regexp.MustCompile(`(?i)((pretend|act\s+as\s+if|imagine)\s+(you\s+(have|had)\s+)?(no|zero|without)\s+(restrictions?|rules?|filters?|limitations?|guidelines?)|roleplay\s+as\s+an?\s+(unrestricted|uncensored|unfiltered))`),
		},
		{
			label: "hypothetical-no-guidelines", findingType: "unrestricted_roleplay", severity: findings.SeverityHigh,
			pattern: regexp.MustCompile(`(?i)in\s+a\s+hypothetical\s+(world|scenario|story)\s+(with\s+|where\s+there\s+are\s+)?no\s+(guidelines?|rules?|restrictions?|ethics)`),
		},
		// System-prompt exfiltration.
		{
			label: "system-prompt-exfiltration", findingType: "system_prompt_exfiltration", severity: findings.SeverityHigh,
			pattern: regexp.MustCompile(`(?i)((reveal|print|show|output|repeat)\s+(your\s+|the\s+|everything\s+)*(system\s+prompt|initial\s+prompt|instructions|above)|repeat\s+everything\s+above|what\s+(is|are)\s+your\s+(system\s+prompt|initial\s+instructions?))`),
		},
		// Data exfiltration.
		{
			label: "data-exfiltration", findingType: "data_exfiltration", severity: findings.SeverityHigh,
			pattern: regexp.MustCompile(`(?i)(send\s+(it|this|the\s+(data|results?|output))\s+to\s+https?://|exfiltrat\w+|dump\s+(all\s+)?(the\s+)?(data(base)?|users?|records?|tables?)|mass\s+data\s+dump)`),
		},
		// Model-token smuggling: ChatML and Llama-style role delimiters,
		// role-name Markdown headers.
		{
			label: "chatml-token-smuggling", findingType: "token_smuggling", severity: findings.SeverityHigh,
			pattern: regexp.MustCompile(`<\|im_(start|end)\|>|<\|(system|user|assistant|endoftext)\|>`),
		},
		{
			label: "llama-token-smuggling", findingType: "token_smuggling", severity: findings.SeverityHigh,
			pattern: regexp.MustCompile(`\[/?INST\]|<<\s*/?SYS\s*>>`),
		},
		{
			label: "role-header-smuggling", findingType: "token_smuggling", severity: findings.SeverityHigh,
			pattern: regexp.MustCompile(`(?m)^#{1,4}\s*(System|Assistant|Human|Tool)\s*:`),
		},
		// Script and template-injection substrings.
		{
			label: "script-injection", findingType: "script_injection", severity: findings.SeverityMedium,
			pattern: regexp.MustCompile(`(?i)(<script[\s>]|javascript\s*:|onerror\s*=)`),
		},
		{
			label: "template-injection", findingType: "template_injection", severity: findings.SeverityMedium,
			pattern: regexp.MustCompile(`\{\{[^}]{1,80}\}\}|\$\{[^}]{1,80}\}|\{%[^%]{1,80}%\}`),
		},
		// Harmful-content synthesis requests.
		{
			label: "harmful-content-request", findingType: "harmful_content_request", severity: findings.SeverityCritical,
			pattern: regexp.MustCompile(`(?i)how\s+to\s+(make|build|create|synthesize|manufacture)\s+(a\s+|an\s+)?(bomb|explosive|weapon|nerve\s+agent|meth(amphetamine)?|fentanyl|poison)`),
		},
		// Hacking-assistance requests.
		{
			label: "hacking-assistance", findingType: "hacking_assistance", severity: findings.SeverityHigh,
			pattern: regexp.MustCompile(`(?i)(write\s+(me\s+)?(a\s+|an\s+|some\s+)?(malware|ransomware|exploit|keylogger|virus|rootkit)|hack\s+into\s+|crack\s+(a\s+|the\s+)?password|bypass\s+(the\s+)?authentication)`),
		},
	}
}

// sensitiveKeywords drives the sensitive-keyword pass: one medium finding
// per distinct keyword present, regardless of occurrence count.
var sensitiveKeywords = map[string]*regexp.Regexp{
	"password":     regexp.MustCompile(`(?i)\bpasswords?\b`),
	"api_key":      regexp.MustCompile(`(?i)\bapi[-_ ]?keys?\b`),
	"secret":       regexp.MustCompile(`(?i)\bsecrets?\b`),
	"token":        regexp.MustCompile(`(?i)\b(access|auth|bearer|session)[-_ ]?tokens?\b`),
	"database_url": regexp.MustCompile(`(?i)\b(database|db)[-_ ]?(url|uri|connection[-_ ]?string)\b`),
	"ssn":          regexp.MustCompile(`(?i)\b(ssn|social\s+security\s+number)\b`),
	"credit_card":  regexp.MustCompile(`(?i)\bcredit[-_ ]?card\b`),
	"cvv":          regexp.MustCompile(`(?i)\bcvv2?\b`),
	"private_key":  regexp.MustCompile(`(?i)\bprivate[-_ ]?keys?\b`),
}
