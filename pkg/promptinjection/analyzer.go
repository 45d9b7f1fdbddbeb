package promptinjection

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/scanforge/engine/pkg/findings"
)

// zeroWidthChars are invisible Unicode characters attackers insert mid-word
// to break naive substring matching (e.g. "ig​nore previous").
var zeroWidthChars = map[rune]bool{
	'​': true, '‌': true, '‍': true, '\uFEFF': true,
}

// Analyzer scans text for prompt-injection and jailbreak attempts.
type Analyzer struct {
	rules []patternRule
}

// New builds an Analyzer with the built-in jailbreak/injection taxonomy.
func New() *Analyzer {
	return &Analyzer{rules: catalog()}
}

// Result bundles the prompt-injection findings with the additive risk
// score.
type Result struct {
	Findings  []findings.Finding
	RiskScore float64
	RiskLevel string
}

// Analyze scans text, its Unicode-normalized form, and up to two layers of
// recursively base64-decoded substrings against the jailbreak taxonomy,
// then deduplicates pattern findings within 50-character windows, runs the
// sensitive-keyword sweep, and additively scores the result.
func (a *Analyzer) Analyze(text, source string) Result {
	var out []findings.Finding

	out = append(out, a.scanLayer(text, source, 0)...)

	normalized, evaded := normalizeForEvasion(text)
	if evaded {
		out = append(out, a.scanLayer(normalized, source, 0)...)
		out = append(out, findings.Finding{
			ID:          findings.NewID("promptinjection", "unicode_evasion", findings.Location{Offset: 0}, source),
			Domain:      findings.DomainPromptInjection,
			Type:        "unicode_evasion",
			Severity:    findings.SeverityMedium,
			Title:       "Unicode evasion characters detected",
			Description: "Zero-width or non-canonical Unicode characters were found interleaved with text, a common technique for evading keyword filters.",
			Confidence:  0.6,
			Tags:        []string{"prompt-injection", "unicode"},
		})
	}

	for _, layer := range decodeObfuscation(text) {
		layerFindings := a.scanLayer(layer.text, source, 0)
		for i := range layerFindings {
			layerFindings[i].Metadata = mergeMeta(layerFindings[i].Metadata, map[string]interface{}{
				"obfuscation_depth": layer.depth,
			})
			layerFindings[i].Tags = append(layerFindings[i].Tags, "obfuscated")
		}
		out = append(out, layerFindings...)
		if len(layerFindings) > 0 {
			out = append(out, findings.Finding{
				ID:          findings.NewID("promptinjection", "obfuscated_injection", findings.Location{Offset: 0}, layer.text),
				Domain:      findings.DomainPromptInjection,
				Type:        "obfuscated_injection",
				Severity:    findings.SeverityCritical,
				Title:       "Obfuscated prompt-injection payload",
				Description: "A base64-encoded substring decoded to text matching the injection taxonomy.",
				Evidence:    truncateEvidence(layer.text, 140),
				Remediation: "Reject or decode-and-rescan encoded blocks before passing user text to a model.",
				Confidence:  0.9,
				References:  findings.References{OWASP: []string{"LLM01"}},
				Tags:        []string{"prompt-injection", "obfuscation"},
			})
		}
	}

	out = dedupByTypeAndOffsetBucket(out)
	out = append(out, sensitiveKeywordFindings(text, source)...)
	score := additiveRiskScore(out)
	return Result{Findings: out, RiskScore: score, RiskLevel: findings.RiskLevel(score)}
}

func (a *Analyzer) scanLayer(text, source string, baseOffset int) []findings.Finding {
	var out []findings.Finding
	for _, rule := range a.rules {
		loc := rule.pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		offset := baseOffset + loc[0]
		location := findings.Location{FilePath: source, Offset: offset}
		out = append(out, findings.Finding{
			ID:          findings.NewID("promptinjection", rule.findingType, location, rule.label),
			Domain:      findings.DomainPromptInjection,
			Type:        rule.findingType,
			Severity:    rule.severity,
			Title:       "Prompt injection pattern: " + strings.ReplaceAll(rule.label, "-", " "),
			Description: "Text matched the " + rule.label + " jailbreak/injection pattern.",
			Location:    location,
			Evidence:    truncateEvidence(text[loc[0]:loc[1]], 140),
			Remediation: "Strip or reject instruction-override and jailbreak phrasing before passing user text to a model.",
			Confidence:  0.8,
			References:  findings.References{OWASP: []string{"LLM01"}},
			Metadata:    map[string]interface{}{"rule": rule.label},
			Tags:        []string{"prompt-injection", rule.findingType},
		})
	}
	return out
}

// sensitiveKeywordFindings emits one medium finding per distinct sensitive
// keyword present in text, independent of the pattern taxonomy. These run
// after window deduplication: two different keywords in the same
// 50-character span are still two findings.
func sensitiveKeywordFindings(text, source string) []findings.Finding {
	var out []findings.Finding
	for name, pattern := range sensitiveKeywords {
		loc := pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		location := findings.Location{FilePath: source, Offset: loc[0]}
		out = append(out, findings.Finding{
			ID:          findings.NewID("promptinjection", "sensitive_keyword", location, name),
			Domain:      findings.DomainPromptInjection,
			Type:        "sensitive_keyword",
			Severity:    findings.SeverityMedium,
			Title:       "Sensitive keyword in prompt: " + name,
			Description: "The prompt references the sensitive term " + name + ", which may be probing for credential or personal-data disclosure.",
			Location:    location,
			Evidence:    text[loc[0]:loc[1]],
			Remediation: "Review whether the prompt legitimately needs to reference this term; redact credentials and identifiers before model calls.",
			Confidence:  0.6,
			Metadata:    map[string]interface{}{"keyword": name},
			Tags:        []string{"prompt-injection", "sensitive-keyword"},
		})
	}
	return findings.SortBySeverityDomainID(out)
}

// normalizeForEvasion strips zero-width characters and applies NFKC
// normalization (folding homoglyphs and compatibility variants to their
// canonical form), returning the cleaned text and whether evasion
// characters were present.
func normalizeForEvasion(text string) (string, bool) {
	evaded := false
	var stripped strings.Builder
	for _, r := range text {
		if zeroWidthChars[r] {
			evaded = true
			continue
		}
		stripped.WriteRune(r)
	}

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFKC)
	result, _, err := transform.String(t, stripped.String())
	if err != nil {
		return stripped.String(), evaded
	}
	if result != stripped.String() {
		evaded = true
	}
	return result, evaded
}

func mergeMeta(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	if base == nil {
		base = make(map[string]interface{}, len(extra))
	}
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// dedupByTypeAndOffsetBucket collapses findings of the same type whose
// offsets fall within the same 50-character bucket, since several rules in
// the same category often match overlapping spans of the same sentence.
func dedupByTypeAndOffsetBucket(fs []findings.Finding) []findings.Finding {
	seen := make(map[string]struct{}, len(fs))
	out := make([]findings.Finding, 0, len(fs))
	for _, f := range fs {
		key := f.Type + "\x00" + itoa(f.Location.Offset/50)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

// additiveRiskScore sums a fixed per-severity weight for every finding,
// clamped to 100.
func additiveRiskScore(fs []findings.Finding) float64 {
	var total float64
	for _, f := range fs {
		total += additiveWeight(f.Severity)
	}
	if total > 100 {
		return 100
	}
	return total
}

func truncateEvidence(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}
