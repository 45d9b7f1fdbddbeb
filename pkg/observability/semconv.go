// Package observability provides scan-domain instrumentation helpers layered
// on top of the generic OpenTelemetry Provider in observability.go.
package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Scan-domain semantic convention attributes, attached to spans and events
// raised by the coordinator, probe orchestrator, and compliance matrix.
var (
	// Scan attributes
	AttrScanID   = attribute.Key("scanengine.scan.id")
	AttrScanMode = attribute.Key("scanengine.scan.mode")
	AttrScanPath = attribute.Key("scanengine.scan.path")

	// Finding attributes
	AttrFindingDomain   = attribute.Key("scanengine.finding.domain")
	AttrFindingSeverity = attribute.Key("scanengine.finding.severity")
	AttrFindingCount    = attribute.Key("scanengine.finding.count")

	// Probe attributes
	AttrProbeName      = attribute.Key("scanengine.probe.name")
	AttrProbeTarget    = attribute.Key("scanengine.probe.target")
	AttrProbeLatencyMs = attribute.Key("scanengine.probe.latency_ms")

	// Compliance attributes
	AttrComplianceFramework = attribute.Key("scanengine.compliance.framework")
	AttrComplianceStatus    = attribute.Key("scanengine.compliance.status")
	AttrComplianceScore     = attribute.Key("scanengine.compliance.score")

	// Feed attributes (CVE / dependency advisory lookups)
	AttrFeedSource    = attribute.Key("scanengine.feed.source")
	AttrFeedQuery     = attribute.Key("scanengine.feed.query")
	AttrFeedResultLen = attribute.Key("scanengine.feed.result_count")
)

// ScanOperation creates attributes describing one coordinator.Scan call.
func ScanOperation(scanID, mode, path string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrScanID.String(scanID),
		AttrScanMode.String(mode),
		AttrScanPath.String(path),
	}
}

// FindingOperation creates attributes summarizing a domain's findings.
func FindingOperation(domain, severity string, count int) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrFindingDomain.String(domain),
		AttrFindingSeverity.String(severity),
		AttrFindingCount.Int(count),
	}
}

// ProbeOperation creates attributes for a single dynamic probe execution.
func ProbeOperation(name, target string, latencyMs float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrProbeName.String(name),
		AttrProbeTarget.String(target),
		AttrProbeLatencyMs.Float64(latencyMs),
	}
}

// ComplianceOperation creates attributes for a single framework verdict.
func ComplianceOperation(framework, status string, score float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrComplianceFramework.String(framework),
		AttrComplianceStatus.String(status),
		AttrComplianceScore.Float64(score),
	}
}

// FeedOperation creates attributes for a CVE or dependency-advisory feed
// lookup.
func FeedOperation(source, query string, resultCount int) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrFeedSource.String(source),
		AttrFeedQuery.String(query),
		AttrFeedResultLen.Int(resultCount),
	}
}

// SpanFromContext extracts the span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanEvent adds an event to the current span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetSpanStatus sets the span status based on error.
func SetSpanStatus(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
	}
}
