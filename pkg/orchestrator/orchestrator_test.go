package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scanforge/engine/pkg/config"
	"github.com/scanforge/engine/pkg/probes"
)

func TestRunCompletesWithinGlobalDeadline(t *testing.T) {
	// A server that 404s everything looks like a hardened target: no probe
	// should produce a finding against it.
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	o := New(WithGlobalDeadline(2*time.Second), WithProbeTimeout(500*time.Millisecond), WithConcurrency(4))

	start := time.Now()
	results := o.Run(context.Background(), probes.Target{BaseURL: srv.URL})
	require.Less(t, time.Since(start), 3*time.Second)
	require.Empty(t, results)
}

func TestRunRefusesTargetOutsideProfileAllowlist(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	profile := &config.ScanProfile{
		Networking: config.NetworkingConfig{
			OutboundMode: "allowlist",
			Allowlist:    []string{"scan-staging.example.com"},
		},
	}
	o := New(WithGlobalDeadline(1*time.Second), WithProfile(profile))

	start := time.Now()
	results := o.Run(context.Background(), probes.Target{BaseURL: srv.URL})
	require.Empty(t, results)
	// The policy check happens before any probe fires, so a refused target
	// returns without consuming the probe deadline.
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRunRefusesAllTargetsInIslandMode(t *testing.T) {
	profile := &config.ScanProfile{Networking: config.NetworkingConfig{IslandMode: true}}
	o := New(WithProfile(profile))
	require.Empty(t, o.Run(context.Background(), probes.Target{BaseURL: "http://example.com"}))
}

func TestRunToleratesUnreachableTarget(t *testing.T) {
	o := New(WithGlobalDeadline(1*time.Second), WithProbeTimeout(200*time.Millisecond), WithConcurrency(4))
	require.NotPanics(t, func() {
		o.Run(context.Background(), probes.Target{BaseURL: "http://127.0.0.1:1"})
	})
}
