package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scanforge/engine/pkg/findings"
)

func TestParseManifestExtractsNameVersionPairs(t *testing.T) {
	manifest := "# a comment\nrequests==2.0.0\nflask>=1.0\n\n// also a comment\nleft-pad@1.3.0"
	entries := parseManifest(manifest)
	require.Len(t, entries, 3)
	require.Equal(t, manifestEntry{name: "requests", version: "2.0.0"}, entries[0])
	require.Equal(t, manifestEntry{name: "flask", version: "1.0"}, entries[1])
	require.Equal(t, manifestEntry{name: "left-pad", version: "1.3.0"}, entries[2])
}

func TestHTTPDependencyClientScanMapsOSVAdvisories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{
			"vulns": [
				{
					"id": "OSV-2021-1",
					"aliases": ["CVE-2021-1", "GHSA-xxxx"],
					"summary": "Example vulnerable dependency.",
					"severity": [{"type": "CVSS_V3", "score": "CVSS:3.1/AV:N/AC:L/HIGH"}]
				}
			]
		}`))
	}))
	defer srv.Close()

	c := NewDependencyClientWithBase(srv.URL, "PyPI")
	fs, err := c.Scan(context.Background(), "requests==2.0.0")
	require.NoError(t, err)
	require.Len(t, fs, 1)
	require.Equal(t, findings.DomainDependency, fs[0].Domain)
	require.Equal(t, findings.SeverityHigh, fs[0].Severity)
	require.Contains(t, fs[0].References.CVE, "CVE-2021-1")
}

func TestHTTPDependencyClientScanSkipsUnparsableLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("query should not be issued for an unparsable manifest line")
	}))
	defer srv.Close()

	c := NewDependencyClientWithBase(srv.URL, "PyPI")
	fs, err := c.Scan(context.Background(), "this is not a manifest line")
	require.NoError(t, err)
	require.Empty(t, fs)
}

func TestHTTPDependencyClientScanSwallowsNetworkErrors(t *testing.T) {
	c := NewDependencyClientWithBase("http://127.0.0.1:1", "PyPI")
	fs, err := c.Scan(context.Background(), "requests==2.0.0")
	require.NoError(t, err)
	require.Empty(t, fs)
}
