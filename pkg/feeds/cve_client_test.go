package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPCVEClientLookupParsesNVDResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, r.URL.Query().Has("keywordSearch"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"vulnerabilities": [
				{
					"cve": {
						"id": "CVE-2021-44228",
						"descriptions": [{"lang": "en", "value": "Log4Shell remote code execution."}],
						"metrics": {
							"cvssMetricV31": [{"cvssData": {"baseScore": 10.0, "baseSeverity": "CRITICAL"}}]
						},
						"weaknesses": [{"description": [{"value": "CWE-502"}]}]
					}
				}
			]
		}`))
	}))
	defer srv.Close()

	c := NewCVEClientWithBase(srv.URL)
	cves, err := c.Lookup(context.Background(), "log4j", 10)
	require.NoError(t, err)
	require.Len(t, cves, 1)
	require.Equal(t, "CVE-2021-44228", cves[0].ID)
	require.Equal(t, "CRITICAL", cves[0].Severity)
	require.Equal(t, 10.0, cves[0].CVSSScore)
	require.Contains(t, cves[0].WeaknessIDs, "CWE-502")
}

func TestHTTPCVEClientLookupSwallowsSchemaViolations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer srv.Close()

	c := NewCVEClientWithBase(srv.URL)
	cves, err := c.Lookup(context.Background(), "log4j", 10)
	require.NoError(t, err)
	require.Empty(t, cves)
}

func TestHTTPCVEClientLookupSwallowsNetworkErrors(t *testing.T) {
	c := NewCVEClientWithBase("http://127.0.0.1:1")
	cves, err := c.Lookup(context.Background(), "log4j", 10)
	require.NoError(t, err)
	require.Empty(t, cves)
}

func TestHTTPCVEClientLookupRespectsMax(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"vulnerabilities": [
				{"cve": {"id": "CVE-1"}},
				{"cve": {"id": "CVE-2"}},
				{"cve": {"id": "CVE-3"}}
			]
		}`))
	}))
	defer srv.Close()

	c := NewCVEClientWithBase(srv.URL)
	cves, err := c.Lookup(context.Background(), "x", 2)
	require.NoError(t, err)
	require.Len(t, cves, 2)
}
