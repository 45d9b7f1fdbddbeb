package probes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllReturnsSeventeenModules(t *testing.T) {
	require.Len(t, All(), 17)
}

func TestSQLiModuleFlagsDatabaseErrorSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Error: unclosed quotation mark after the character string"))
	}))
	defer srv.Close()

	m := sqliModule()
	results := m.Run(context.Background(), srv.Client(), Target{BaseURL: srv.URL})
	require.NotEmpty(t, results)
	require.Equal(t, "sql_injection", results[0].Type)
}

func TestXSSModuleFlagsReflectedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>" + r.URL.Query().Get("q") + "</html>"))
	}))
	defer srv.Close()

	m := xssModule()
	results := m.Run(context.Background(), srv.Client(), Target{BaseURL: srv.URL})
	require.NotEmpty(t, results)
	require.Equal(t, "reflected_xss", results[0].Type)
}

func TestLFIModuleFlagsPasswdContents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("root:x:0:0:root:/root:/bin/bash"))
	}))
	defer srv.Close()

	m := lfiModule()
	results := m.Run(context.Background(), srv.Client(), Target{BaseURL: srv.URL})
	require.NotEmpty(t, results)
	require.Equal(t, "path_traversal", results[0].Type)
}

func TestCleanTargetProducesNoFindings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	for _, m := range []Module{sqliModule(), xssModule(), lfiModule(), sstiModule(), rceModule()} {
		results := m.Run(context.Background(), srv.Client(), Target{BaseURL: srv.URL})
		require.Empty(t, results, m.Name)
	}
}

func TestDeadTargetFailsSilently(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	client := &http.Client{Timeout: 50 * time.Millisecond}
	for _, m := range All() {
		require.NotPanics(t, func() {
			m.Run(ctx, client, Target{BaseURL: "http://127.0.0.1:1"})
		})
	}
}
