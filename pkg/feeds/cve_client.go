package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/time/rate"

	"github.com/scanforge/engine/pkg/util/resiliency"
)

const defaultCVEBase = "https://services.nvd.nist.gov/rest/json/cves/2.0"

// cveResponseSchema is a narrow JSON Schema for the NVD response
// envelope: just enough structure to reject a malformed or unrelated
// payload before the engine tries to decode it into Go structs.
const cveResponseSchema = `{
	"type": "object",
	"properties": {
		"vulnerabilities": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"cve": {
						"type": "object",
						"required": ["id"]
					}
				},
				"required": ["cve"]
			}
		}
	},
	"required": ["vulnerabilities"]
}`

// HTTPCVEClient queries the NVD CVE REST API. It never returns an error
// from Lookup on a network or parse failure: external-feed clients are
// I/O-only and must degrade to an empty result. Outbound requests are
// paced by a rate limiter, since NVD throttles unauthenticated callers to
// roughly five requests per thirty seconds.
type HTTPCVEClient struct {
	baseURL string
	client  probesDoer
	schema  *jsonschema.Schema
	limiter *rate.Limiter
}

// probesDoer is the minimal HTTP interface the feed clients need; satisfied
// by *resiliency.EnhancedClient.
type probesDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewCVEClient builds an HTTPCVEClient against the default NVD endpoint,
// compiling its response-validation schema immediately.
func NewCVEClient() *HTTPCVEClient {
	return NewCVEClientWithBase(defaultCVEBase)
}

// NewCVEClientWithBase builds an HTTPCVEClient against a caller-chosen
// base URL, mainly for tests against a local fixture server.
func NewCVEClientWithBase(base string) *HTTPCVEClient {
	schema := jsonschema.MustCompileString("cve-response.json", cveResponseSchema)
	return &HTTPCVEClient{
		baseURL: base,
		client:  resiliency.NewEnhancedClientWithTimeout(10 * time.Second),
		schema:  schema,
		limiter: rate.NewLimiter(rate.Every(6*time.Second), 5),
	}
}

type nvdResponse struct {
	Vulnerabilities []struct {
		CVE struct {
			ID           string `json:"id"`
			Descriptions []struct {
				Lang  string `json:"lang"`
				Value string `json:"value"`
			} `json:"descriptions"`
			Metrics struct {
				CVSSMetricV31 []nvdCVSSMetric `json:"cvssMetricV31"`
				CVSSMetricV30 []nvdCVSSMetric `json:"cvssMetricV30"`
				CVSSMetricV2  []nvdCVSSMetric `json:"cvssMetricV2"`
			} `json:"metrics"`
			Weaknesses []struct {
				Description []struct {
					Value string `json:"value"`
				} `json:"description"`
			} `json:"weaknesses"`
		} `json:"cve"`
	} `json:"vulnerabilities"`
}

type nvdCVSSMetric struct {
	CVSSData struct {
		BaseScore    float64 `json:"baseScore"`
		BaseSeverity string  `json:"baseSeverity"`
	} `json:"cvssData"`
}

// Lookup queries the CVE feed for keyword and returns up to max records.
// Any network error, non-2xx response, schema-validation failure, or
// decode error yields an empty slice and a nil error: external-feed
// failures never surface to the caller.
func (c *HTTPCVEClient) Lookup(ctx context.Context, keyword string, max int) ([]CVE, error) {
	if max <= 0 {
		max = 20
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil
	}
	reqURL := fmt.Sprintf("%s?keywordSearch=%s&resultsPerPage=%s", c.baseURL, url.QueryEscape(keyword), strconv.Itoa(max))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var raw interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, nil
	}
	if err := c.schema.Validate(raw); err != nil {
		return nil, nil
	}

	reencoded, err := json.Marshal(raw)
	if err != nil {
		return nil, nil
	}
	var parsed nvdResponse
	if err := json.Unmarshal(reencoded, &parsed); err != nil {
		return nil, nil
	}

	out := make([]CVE, 0, len(parsed.Vulnerabilities))
	for _, v := range parsed.Vulnerabilities {
		cve := CVE{ID: v.CVE.ID}
		for _, d := range v.CVE.Descriptions {
			if d.Lang == "en" {
				cve.Description = truncateDescription(d.Value, 280)
				break
			}
		}
		if m := bestCVSSMetric(v.CVE.Metrics.CVSSMetricV31, v.CVE.Metrics.CVSSMetricV30, v.CVE.Metrics.CVSSMetricV2); m != nil {
			cve.CVSSScore = m.CVSSData.BaseScore
			cve.Severity = m.CVSSData.BaseSeverity
		}
		for _, w := range v.CVE.Weaknesses {
			for _, d := range w.Description {
				cve.WeaknessIDs = append(cve.WeaknessIDs, d.Value)
			}
		}
		out = append(out, cve)
		if len(out) >= max {
			break
		}
	}
	return out, nil
}

// bestCVSSMetric prefers the newest CVSS version that has at least one
// entry, matching the NVD response's own v3.1 > v3.0 > v2 priority.
func bestCVSSMetric(versions ...[]nvdCVSSMetric) *nvdCVSSMetric {
	for _, v := range versions {
		if len(v) > 0 {
			return &v[0]
		}
	}
	return nil
}

func truncateDescription(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ CVEClient = (*HTTPCVEClient)(nil)
