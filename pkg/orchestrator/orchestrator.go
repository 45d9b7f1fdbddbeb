// Package orchestrator implements the Probe Orchestrator: it fans the
// registered dynamic probe modules out over a target with bounded
// concurrency and a global wall-clock deadline, using errgroup.SetLimit
// plus a context deadline so one slow probe can never block the rest.
package orchestrator

import (
	"context"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/scanforge/engine/pkg/config"
	"github.com/scanforge/engine/pkg/findings"
	"github.com/scanforge/engine/pkg/probes"
	"github.com/scanforge/engine/pkg/util/resiliency"
)

const (
	defaultGlobalDeadline  = 300 * time.Second
	defaultPerProbeTimeout = 10 * time.Second
	defaultConcurrency     = 8
)

// Orchestrator runs every registered probe module against a target.
type Orchestrator struct {
	modules        []probes.Module
	globalDeadline time.Duration
	probeTimeout   time.Duration
	concurrency    int
	profile        *config.ScanProfile
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithGlobalDeadline overrides the default 300-second wall-clock budget for
// the whole probe run.
func WithGlobalDeadline(d time.Duration) Option { return func(o *Orchestrator) { o.globalDeadline = d } }

// WithProbeTimeout overrides the default 10-second per-request timeout each
// probe's HTTP client uses.
func WithProbeTimeout(d time.Duration) Option { return func(o *Orchestrator) { o.probeTimeout = d } }

// WithConcurrency overrides how many probe modules may run at once.
func WithConcurrency(n int) Option { return func(o *Orchestrator) { o.concurrency = n } }

// WithProfile gates probe dispatch on a jurisdiction profile's networking
// policy: a target whose hostname the profile disallows (or any target, in
// island mode) is never probed.
func WithProfile(p *config.ScanProfile) Option { return func(o *Orchestrator) { o.profile = p } }

// New builds an Orchestrator over the full built-in probe catalog.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		modules:        probes.All(),
		globalDeadline: defaultGlobalDeadline,
		probeTimeout:   defaultPerProbeTimeout,
		concurrency:    defaultConcurrency,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes every probe module against target under one shared global
// deadline. Individual module failures (panics recovered, errors ignored)
// never abort the run — a target that breaks one probe still gets scanned
// by the other sixteen. Results are concatenated in module-registration
// order without additional sorting; callers that need severity ordering
// should run findings.SortBySeverityDomainID on the result.
func (o *Orchestrator) Run(ctx context.Context, target probes.Target) []findings.Finding {
	if !o.targetAllowed(target.BaseURL) {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, o.globalDeadline)
	defer cancel()

	client := resiliency.NewEnhancedClientWithTimeout(o.probeTimeout)

	results := make([][]findings.Finding, len(o.modules))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, mod := range o.modules {
		i, mod := i, mod
		g.Go(func() error {
			results[i] = runModuleSafely(gctx, mod, client, target)
			return nil
		})
	}
	// Errors are never returned by the goroutines above (runModuleSafely
	// swallows everything), so Wait only blocks until every module
	// finishes or the global deadline fires.
	_ = g.Wait()

	var out []findings.Finding
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// targetAllowed applies the configured profile's networking policy to the
// target before any probe fires. An unparseable target URL fails closed
// when a profile is set: a policy cannot be checked against a hostname
// that cannot be determined.
func (o *Orchestrator) targetAllowed(baseURL string) bool {
	if o.profile == nil {
		return true
	}
	if o.profile.IsIslandMode() {
		return false
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	return o.profile.IsAllowed(u.Hostname())
}

// runModuleSafely recovers from a panicking probe module so that one badly
// behaved module can never take down the whole probe run.
func runModuleSafely(ctx context.Context, mod probes.Module, client probes.HTTPDoer, target probes.Target) (out []findings.Finding) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	select {
	case <-ctx.Done():
		return nil
	default:
	}
	return mod.Run(ctx, client, target)
}
