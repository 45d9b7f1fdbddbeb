// Package registry holds the compiled pattern rules shared by every static
// analyzer behind an RWMutex-guarded, domain-grouped, severity-ordered
// store.
package registry

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/scanforge/engine/pkg/findings"
)

// Rule is an immutable pattern plus the metadata needed to turn a match
// into a Finding. Rules are registered once at startup, and a pattern that
// fails to compile aborts the process there rather than surfacing later as
// a silent detection gap.
type Rule struct {
	Label         string
	Domain        findings.Domain
	FindingType   string
	Severity      findings.Severity
	Pattern       *regexp.Regexp
	Exclude       *regexp.Regexp // a line matching Exclude suppresses the rule
	References    findings.References
	MinEntropy    float64 // 0 means no entropy gate
	CaseSensitive bool
	Confidence    float64 // 0 means the analyzer's default
}

// Matches reports whether line triggers the rule: the pattern must match
// and the exclusion pattern, when present, must not. RE2 has no negative
// lookahead, so "http:// but not loopback"-style rules express the negative
// half as a separate Exclude pattern instead.
func (r Rule) Matches(line string) []int {
	m := r.Pattern.FindStringIndex(line)
	if m == nil {
		return nil
	}
	if r.Exclude != nil && r.Exclude.MatchString(line) {
		return nil
	}
	return m
}

// RuleSpec is the compile-time description of a Rule; Compile turns it into
// a registered Rule, failing fatally (via panic, caught by the caller at
// startup) if the pattern does not compile.
type RuleSpec struct {
	Label         string
	Domain        findings.Domain
	FindingType   string
	Severity      findings.Severity
	Pattern       string
	Exclude       string
	References    findings.References
	MinEntropy    float64
	CaseSensitive bool
	Confidence    float64
}

// Registry is the read-mostly store of every compiled rule, grouped by
// domain and kept in severity-descending order so the first match for a
// domain is always the strongest available. It requires no locking once
// startup registration completes, but the mutex is
// kept to allow tests to register fixtures after construction.
type Registry struct {
	mu       sync.RWMutex
	byDomain map[findings.Domain][]Rule
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{byDomain: make(map[findings.Domain][]Rule)}
}

// Register compiles and adds a rule. It panics on pattern-compile failure:
// rule catalogs are built at process startup and a bad regex is a
// programmer error that must fail fast, not surface as a runtime Finding
// gap.
func (r *Registry) Register(spec RuleSpec) {
	pattern := spec.Pattern
	if !spec.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("registry: rule %q failed to compile: %v", spec.Label, err))
	}

	var exclude *regexp.Regexp
	if spec.Exclude != "" {
		ex := spec.Exclude
		if !spec.CaseSensitive {
			ex = "(?i)" + ex
		}
		exclude, err = regexp.Compile(ex)
		if err != nil {
			panic(fmt.Sprintf("registry: rule %q exclusion failed to compile: %v", spec.Label, err))
		}
	}

	rule := Rule{
		Label:         spec.Label,
		Domain:        spec.Domain,
		FindingType:   spec.FindingType,
		Severity:      spec.Severity,
		Pattern:       re,
		Exclude:       exclude,
		References:    spec.References,
		MinEntropy:    spec.MinEntropy,
		CaseSensitive: spec.CaseSensitive,
		Confidence:    spec.Confidence,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byDomain[spec.Domain] = append(r.byDomain[spec.Domain], rule)
	sort.SliceStable(r.byDomain[spec.Domain], func(i, j int) bool {
		return r.byDomain[spec.Domain][i].Severity.Rank() < r.byDomain[spec.Domain][j].Severity.Rank()
	})
}

// RegisterAll registers a batch of rule specs in order.
func (r *Registry) RegisterAll(specs []RuleSpec) {
	for _, s := range specs {
		r.Register(s)
	}
}

// RulesFor returns the rules registered for a domain, severity descending.
// The returned slice is a copy; callers may not mutate the registry through
// it.
func (r *Registry) RulesFor(domain findings.Domain) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.byDomain[domain]
	out := make([]Rule, len(src))
	copy(out, src)
	return out
}

// Iter returns every registered rule across all domains.
func (r *Registry) Iter() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Rule
	for _, rules := range r.byDomain {
		out = append(out, rules...)
	}
	return out
}
