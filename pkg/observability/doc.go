// Package observability provides OpenTelemetry tracing and metrics for the
// scanning engine. It implements production-ready observability following
// cloud-native best practices.
//
// # Tracing and metrics
//
// Initialize the provider at application startup:
//
//	p, err := observability.New(ctx, &observability.Config{
//		ServiceName:  "scanforge-engine",
//		OTLPEndpoint: "otel-collector:4317",
//		SampleRate:   0.1, // 10% sampling in production
//	})
//	defer p.Shutdown(ctx)
//
// Wrap an engine operation so it gets a span plus RED metrics:
//
//	ctx, end := p.TrackOperation(ctx, "coordinator.scan", observability.ScanOperation(scanID, mode, path)...)
//	defer end(err)
//
// # SLIs, SLOs, and the audit timeline
//
// SLOTracker and AuditTimeline layer service-level tracking and a
// queryable scan timeline on top of the tracer/meter; SLIs are derived
// from the declared SLO targets rather than registered separately. The
// coordinator package wires an SLOTracker and AuditTimeline into its
// Engine via WithSLOTracker and WithAuditTimeline.
package observability
