// Package coordinator implements the Scan Coordinator: the engine's single
// entry point, which normalizes input, dispatches to the static analyzers
// or the dynamic Probe Orchestrator, merges and deduplicates findings,
// scores and classifies risk, builds compliance verdicts, seals an audit
// record, and caches the result. A mode-dispatching Engine fans work out
// over an errgroup, guards shared state behind mutexes, and returns one
// unified result; the audit chain and LRU cache live as explicit Engine
// fields rather than package-level singletons, so a process can run more
// than one independently configured Engine.
package coordinator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/scanforge/engine/pkg/audit"
	"github.com/scanforge/engine/pkg/codeanalyzer"
	"github.com/scanforge/engine/pkg/compliance"
	"github.com/scanforge/engine/pkg/config"
	"github.com/scanforge/engine/pkg/entropy"
	"github.com/scanforge/engine/pkg/feeds"
	"github.com/scanforge/engine/pkg/findings"
	"github.com/scanforge/engine/pkg/observability"
	"github.com/scanforge/engine/pkg/orchestrator"
	"github.com/scanforge/engine/pkg/pii"
	"github.com/scanforge/engine/pkg/probes"
	"github.com/scanforge/engine/pkg/promptinjection"
	"github.com/scanforge/engine/pkg/scanresult"
)

// EngineVersion is stamped into every Audit Record so a later reviewer can
// tell which rule/scoring revision produced a given scan.
const EngineVersion = "scanforge-engine/1.0.0"

// Engine is the narrow, caller-owned value in place of global singletons:
// it owns the audit chain, the scan cache, and one instance of every
// analyzer, and every operation is a method on it.
type Engine struct {
	cfg *config.Config

	code   *codeanalyzer.Analyzer
	piiA   *pii.Analyzer
	prompt *promptinjection.Analyzer
	probes *orchestrator.Orchestrator

	compliance *compliance.Matrix
	cveClient  feeds.CVEClient
	depClient  feeds.DependencyClient

	chain *audit.Chain
	cache *resultCache

	obs      *observability.Provider
	slo      *observability.SLOTracker
	timeline *observability.AuditTimeline

	reportFn ReportFunc
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithObservability attaches a tracing/metrics Provider; omit for a
// no-telemetry Engine (DefaultConfig with Enabled: false).
func WithObservability(p *observability.Provider) Option {
	return func(e *Engine) { e.obs = p }
}

// WithSLOTracker attaches an SLOTracker so each Scan's latency and
// success/failure is recorded against an operator-configured target; omit
// for an Engine that does no SLO tracking.
func WithSLOTracker(t *observability.SLOTracker) Option {
	return func(e *Engine) { e.slo = t }
}

// WithAuditTimeline attaches an AuditTimeline so every scan is also
// recorded in a queryable, content-hashed event stream alongside the
// hash-chained audit.Chain; omit for an Engine that does no timeline
// recording.
func WithAuditTimeline(tl *observability.AuditTimeline) Option {
	return func(e *Engine) { e.timeline = tl }
}

// WithCVEClient overrides the default NVD-backed CVE feed client, mainly
// for tests.
func WithCVEClient(c feeds.CVEClient) Option { return func(e *Engine) { e.cveClient = c } }

// WithDependencyClient overrides the default OSV-backed dependency feed
// client, mainly for tests.
func WithDependencyClient(c feeds.DependencyClient) Option {
	return func(e *Engine) { e.depClient = c }
}

// WithAuditSink registers a durable flush target for sealed audit records.
func WithAuditSink(s audit.Sink) Option {
	return func(e *Engine) {
		if e.chain == nil {
			e.chain = audit.NewChain()
		}
		e.chain.AddSink(s)
	}
}

// New builds an Engine from cfg (nil uses config.Load()'s defaults),
// constructing every analyzer and compiling the compliance matrix's CEL
// obligations immediately so a bad rule or expression fails fast at
// construction rather than mid-scan.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Load()
	}

	cache, err := newResultCache(cfg.CacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("coordinator: failed to build result cache: %w", err)
	}

	matrix, err := compliance.New()
	if err != nil {
		return nil, fmt.Errorf("coordinator: failed to build compliance matrix: %w", err)
	}

	probeOpts := []orchestrator.Option{
		orchestrator.WithGlobalDeadline(cfg.GlobalProbeDeadline),
		orchestrator.WithProbeTimeout(cfg.PerRequestTimeout),
	}
	if cfg.Profile != "" {
		profile, err := config.LoadProfile(cfg.ProfilesDir, cfg.Profile)
		if err != nil {
			return nil, fmt.Errorf("coordinator: failed to load scan profile: %w", err)
		}
		probeOpts = append(probeOpts, orchestrator.WithProfile(profile))
	}

	e := &Engine{
		cfg:        cfg,
		code:       codeanalyzer.New(),
		piiA:       pii.New(nil),
		prompt:     promptinjection.New(),
		probes:     orchestrator.New(probeOpts...),
		compliance: matrix,
		chain:      audit.NewChain(),
		cache:      cache,
	}

	if cfg.EnableLiveFeeds {
		e.cveClient = feeds.NewCVEClient()
		e.depClient = feeds.NewDependencyClient()
	} else {
		e.cveClient = feeds.NoopCVEClient{}
		e.depClient = feeds.NoopDependencyClient{}
	}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// fingerprint computes the cryptographic hash of input bytes plus mode and
// path that both the Cache Entry key and the Audit Record's
// InputFingerprint field use.
func fingerprint(input string, mode Mode, path string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s", mode, path, input)
	return hex.EncodeToString(h.Sum(nil))
}

// normalize applies the Coordinator's input normalization: a no-op beyond
// trimming a trailing newline, since every analyzer already tolerates
// arbitrary text and a byte-identical fingerprint matters more than
// cosmetic cleanup.
func normalize(input string) string {
	return input
}

// Scan runs one static or dynamic scan to completion and returns its
// result: validate, normalize, check cache, dispatch analyzers, dedup and
// score findings, assess compliance, seal an audit record, cache, return.
func (e *Engine) Scan(ctx context.Context, input string, mode Mode, path string, useCache bool) (scanresult.ScanResult, error) {
	if err := mode.Validate(); err != nil {
		return scanresult.ScanResult{}, err
	}
	if int64(len(input)) > e.cfg.MaxInputBytes {
		return scanresult.ScanResult{}, ErrInputTooLarge
	}

	start := time.Now()
	if e.obs != nil {
		var endSpan func(error)
		ctx, endSpan = e.obs.TrackOperation(ctx, "coordinator.scan", observability.ScanOperation("", string(mode), path)...)
		defer func() { endSpan(nil) }()
	}

	normalized := normalize(input)
	fp := fingerprint(normalized, mode, path)

	if useCache {
		if cached, ok := e.cache.get(fp); ok {
			return cached, nil
		}
	}

	allFindings, domainScores, err := e.runAnalyzers(ctx, normalized, mode, path)
	if err != nil {
		return scanresult.ScanResult{}, err
	}

	allFindings = findings.SortBySeverityDomainID(collapseByFingerprint(findings.Dedup(allFindings)))
	overall := blendOverall(mode, domainScores)
	riskLevel := findings.RiskLevel(overall)
	verdicts := e.compliance.Assess(allFindings, overall)
	remediations := topRemediations(allFindings, 8)

	record, err := e.seal(fp, mode, allFindings, overall, riskLevel)
	if err != nil {
		return scanresult.ScanResult{}, err
	}

	result := scanresult.ScanResult{
		AuditRecord:        record,
		DomainScores:       domainScores,
		OverallScore:       overall,
		RiskLevel:          riskLevel,
		Findings:           allFindings,
		ComplianceVerdicts: verdicts,
		Remediations:       remediations,
		Duration:           time.Since(start),
	}

	e.cache.put(fp, result)

	if e.obs != nil {
		for domain, severities := range findingCells(allFindings) {
			for severity, n := range severities {
				e.obs.RecordFindings(ctx, domain, severity, n)
			}
		}
	}
	if e.slo != nil {
		e.slo.Record(observability.SLOObservation{
			Operation: "scan",
			Latency:   result.Duration,
			Success:   true,
		})
	}
	if e.timeline != nil {
		e.timeline.Record(observability.TimelineEntry{
			EntryType: observability.EntryTypeScan,
			RunID:     record.ScanID,
			Summary:   fmt.Sprintf("scan completed: mode=%s risk=%s findings=%d", mode, riskLevel, len(allFindings)),
			Details:   map[string]interface{}{"overall_score": overall},
		})
	}

	return result, nil
}

// runAnalyzers dispatches by mode and returns the merged findings plus a
// per-domain score map, fanning the "full" mode's three static analyzers
// out concurrently via errgroup.
func (e *Engine) runAnalyzers(ctx context.Context, input string, mode Mode, path string) ([]findings.Finding, map[string]float64, error) {
	domainScores := make(map[string]float64)

	switch mode {
	case ModeCode:
		res := e.code.Analyze(input, path)
		domainScores["code"] = res.RiskScore
		return res.Findings, domainScores, nil

	case ModePII:
		res := e.piiA.Analyze(ctx, input, path)
		domainScores["pii"] = res.RiskScore
		return res.Findings, domainScores, nil

	case ModePrompt:
		res := e.prompt.Analyze(input, path)
		domainScores["prompt"] = res.RiskScore
		return res.Findings, domainScores, nil

	case ModeDynamic:
		target := path
		if target == "" {
			target = input
		}
		fs := e.probes.Run(ctx, probes.Target{BaseURL: target})
		domainScores["dynamic"] = findings.RiskScore(fs)
		return fs, domainScores, nil

	case ModeFull:
		return e.runFull(ctx, input, path, domainScores)
	}
	return nil, nil, ErrUnknownMode
}

func (e *Engine) runFull(ctx context.Context, input, path string, domainScores map[string]float64) ([]findings.Finding, map[string]float64, error) {
	var (
		mu        sync.Mutex
		codeRes   codeanalyzer.Result
		piiRes    pii.Result
		promptRes promptinjection.Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r := e.code.Analyze(input, path)
		mu.Lock()
		codeRes = r
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		r := e.piiA.Analyze(gctx, input, path)
		mu.Lock()
		piiRes = r
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		r := e.prompt.Analyze(input, path)
		mu.Lock()
		promptRes = r
		mu.Unlock()
		return nil
	})
	_ = g.Wait() // analyzers never return errors; they are bounded by input size only

	domainScores["code"] = codeRes.RiskScore
	domainScores["pii"] = piiRes.RiskScore
	domainScores["prompt"] = promptRes.RiskScore

	var out []findings.Finding
	out = append(out, codeRes.Findings...)
	out = append(out, piiRes.Findings...)
	out = append(out, promptRes.Findings...)
	return out, domainScores, nil
}

// blendOverall computes the overall score: a fixed 0.4/0.3/0.3 blend of
// code/PII/prompt-injection domain scores for "full" mode, or the single
// domain's score otherwise.
func blendOverall(mode Mode, domainScores map[string]float64) float64 {
	var score float64
	switch mode {
	case ModeFull:
		score = 0.4*domainScores["code"] + 0.3*domainScores["pii"] + 0.3*domainScores["prompt"]
	default:
		for _, v := range domainScores {
			score = v
		}
	}
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// collapseByFingerprint drops findings whose (type, evidence-prefix,
// location) fingerprint duplicates an earlier one. Finding ids include the
// producing analyzer, so the same secret surfaced by two analyzers
// survives id-dedup; the fingerprint pass is what collapses those into one
// finding.
func collapseByFingerprint(fs []findings.Finding) []findings.Finding {
	seen := make(map[string]struct{}, len(fs))
	out := make([]findings.Finding, 0, len(fs))
	for _, f := range fs {
		fp := entropy.Fingerprint(f.Type, f.Evidence, f.Location.String())
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, f)
	}
	return out
}

// topRemediations maps each distinct remediation string to the maximum
// severity weight among the findings that cite it, sorts descending, and
// returns at most n.
func topRemediations(fs []findings.Finding, n int) []string {
	maxWeight := make(map[string]float64)
	for _, f := range fs {
		if f.Remediation == "" {
			continue
		}
		if w := f.Severity.Weight(); w > maxWeight[f.Remediation] {
			maxWeight[f.Remediation] = w
		}
	}
	out := make([]string, 0, len(maxWeight))
	for r := range maxWeight {
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if maxWeight[out[i]] != maxWeight[out[j]] {
			return maxWeight[out[i]] > maxWeight[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// seal builds and appends the Audit Record for this scan. A seal failure
// is fatal to the scan: the chain must never fork, so the Coordinator
// returns ErrAuditSealFailed instead of a partial ScanResult.
func (e *Engine) seal(inputFingerprint string, mode Mode, fs []findings.Finding, overall float64, riskLevel string) (audit.Record, error) {
	summary := audit.RecordSummary{
		TotalFindings: len(fs),
		CriticalCount: countSeverity(fs, findings.SeverityCritical),
		HighCount:     countSeverity(fs, findings.SeverityHigh),
		OverallScore:  overall,
		RiskLevel:     riskLevel,
	}
	record, err := e.chain.SealAndAppend(uuid.New().String(), inputFingerprint, string(mode), EngineVersion, summary)
	if err != nil {
		return audit.Record{}, fmt.Errorf("%w: %v", ErrAuditSealFailed, err)
	}
	return record, nil
}

// findingCells groups finding counts by (domain, severity) for the
// findings-volume metric.
func findingCells(fs []findings.Finding) map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, f := range fs {
		domain := string(f.Domain)
		if out[domain] == nil {
			out[domain] = make(map[string]int)
		}
		out[domain][string(f.Severity)]++
	}
	return out
}

func countSeverity(fs []findings.Finding, sev findings.Severity) int {
	n := 0
	for _, f := range fs {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// ScanDependencies parses a manifest and queries the dependency-feed client
// for each package it finds.
func (e *Engine) ScanDependencies(ctx context.Context, manifest string) ([]findings.Finding, error) {
	return e.depClient.Scan(ctx, manifest)
}

// EnrichWithCVE looks up keyword against the CVE feed.
func (e *Engine) EnrichWithCVE(ctx context.Context, keyword string, max int) ([]feeds.CVE, error) {
	return e.cveClient.Lookup(ctx, keyword, max)
}

// Anonymize masks any PII entities the regex backend can find in text,
// returning a copy with each entity replaced by its masked form. It never
// mutates or depends on engine state beyond the entropy-masking routine
// every analyzer already uses.
func (e *Engine) Anonymize(text string) string {
	return pii.Anonymize(text)
}

// CacheStats exposes the scan-result cache's occupancy and hit/miss
// counters.
func (e *Engine) CacheStats() scanresult.CacheStats { return e.cache.stats() }

// AuditLog returns every sealed Audit Record in append order.
func (e *Engine) AuditLog() []audit.Record { return e.chain.Records() }

// AuditChainValid reports whether the audit chain still verifies cleanly
// from genesis to head.
func (e *Engine) AuditChainValid() bool {
	return audit.Verify(e.chain.Records()) == nil
}
