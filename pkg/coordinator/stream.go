package coordinator

import (
	"context"
	"fmt"

	"github.com/scanforge/engine/pkg/findings"
	"github.com/scanforge/engine/pkg/probes"
	"github.com/scanforge/engine/pkg/scanresult"
)

// streamBufferSize bounds the event channel so a slow consumer applies
// backpressure to the producer rather than letting findings queue up
// unbounded in memory.
const streamBufferSize = 32

// StreamScan runs a scan exactly like Scan, but emits progress/finding
// events as they become available instead of returning one final result.
// The returned channel is closed after exactly one complete or error event;
// a consumer that stops reading lets the producer block on send until ctx
// is cancelled, at which point the producer aborts at its next checkpoint.
func (e *Engine) StreamScan(ctx context.Context, input string, mode Mode, path string) (<-chan ScanEvent, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	if int64(len(input)) > e.cfg.MaxInputBytes {
		return nil, ErrInputTooLarge
	}

	events := make(chan ScanEvent, streamBufferSize)
	go e.streamProduce(ctx, events, input, mode, path)
	return events, nil
}

func (e *Engine) streamProduce(ctx context.Context, events chan<- ScanEvent, input string, mode Mode, path string) {
	defer close(events)

	// Cancellation is checked before attempting the send: with a buffered
	// channel both select cases can be ready at once, and the checkpoint
	// abort must not depend on which one the runtime picks.
	send := func(ev ScanEvent) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !send(progressEvent(10, "scan started")) {
		return
	}

	normalized := normalize(input)
	fp := fingerprint(normalized, mode, path)

	allFindings, domainScores, ok := e.runAnalyzersStreaming(ctx, normalized, mode, path, send)
	if !ok {
		// Terminal error event on cancellation, best-effort: the consumer
		// may already be gone, so never block on this send.
		select {
		case events <- errorEvent("scan cancelled before analysis completed"):
		default:
		}
		return
	}

	allFindings = findings.SortBySeverityDomainID(collapseByFingerprint(findings.Dedup(allFindings)))
	overall := blendOverall(mode, domainScores)
	riskLevel := findings.RiskLevel(overall)

	for _, f := range allFindings {
		if !send(findingEvent(f)) {
			return
		}
	}

	if !send(progressEvent(90, "assessing compliance and sealing audit record")) {
		return
	}

	verdicts := e.compliance.Assess(allFindings, overall)
	remediations := topRemediations(allFindings, 8)

	record, err := e.seal(fp, mode, allFindings, overall, riskLevel)
	if err != nil {
		send(errorEvent(err.Error()))
		return
	}

	result := scanresult.ScanResult{
		AuditRecord:        record,
		DomainScores:       domainScores,
		OverallScore:       overall,
		RiskLevel:          riskLevel,
		Findings:           allFindings,
		ComplianceVerdicts: verdicts,
		Remediations:       remediations,
	}
	e.cache.put(fp, result)

	send(completeEvent(fmt.Sprintf("%d finding(s), overall score %.1f (%s)", len(allFindings), overall, riskLevel)))
}

// runAnalyzersStreaming is runAnalyzers' streaming counterpart: it runs
// static analyzers sequentially rather than fanned out, so the checkpoint
// percentages (30/50/70) land between each one instead of all arriving at
// once, and it returns false the moment a send is cancelled so the caller
// can stop without emitting a misleading complete event.
func (e *Engine) runAnalyzersStreaming(ctx context.Context, input string, mode Mode, path string, send func(ScanEvent) bool) ([]findings.Finding, map[string]float64, bool) {
	domainScores := make(map[string]float64)

	switch mode {
	case ModeCode:
		res := e.code.Analyze(input, path)
		domainScores["code"] = res.RiskScore
		if !send(progressEvent(70, "code analysis complete")) {
			return nil, nil, false
		}
		return res.Findings, domainScores, true

	case ModePII:
		res := e.piiA.Analyze(ctx, input, path)
		domainScores["pii"] = res.RiskScore
		if !send(progressEvent(70, "pii analysis complete")) {
			return nil, nil, false
		}
		return res.Findings, domainScores, true

	case ModePrompt:
		res := e.prompt.Analyze(input, path)
		domainScores["prompt"] = res.RiskScore
		if !send(progressEvent(70, "prompt-injection analysis complete")) {
			return nil, nil, false
		}
		return res.Findings, domainScores, true

	case ModeDynamic:
		target := path
		if target == "" {
			target = input
		}
		fs := e.probes.Run(ctx, probes.Target{BaseURL: target})
		domainScores["dynamic"] = findings.RiskScore(fs)
		if !send(progressEvent(70, "dynamic probe run complete")) {
			return nil, nil, false
		}
		return fs, domainScores, true

	case ModeFull:
		var out []findings.Finding

		codeRes := e.code.Analyze(input, path)
		domainScores["code"] = codeRes.RiskScore
		out = append(out, codeRes.Findings...)
		if !send(progressEvent(30, "code analysis complete")) {
			return nil, nil, false
		}

		piiRes := e.piiA.Analyze(ctx, input, path)
		domainScores["pii"] = piiRes.RiskScore
		out = append(out, piiRes.Findings...)
		if !send(progressEvent(50, "pii analysis complete")) {
			return nil, nil, false
		}

		promptRes := e.prompt.Analyze(input, path)
		domainScores["prompt"] = promptRes.RiskScore
		out = append(out, promptRes.Findings...)
		if !send(progressEvent(70, "prompt-injection analysis complete")) {
			return nil, nil, false
		}

		return out, domainScores, true
	}
	return nil, nil, false
}
