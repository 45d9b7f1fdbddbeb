package probes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/scanforge/engine/pkg/findings"
)

func webModules() []Module {
	return []Module{
		xssModule(),
		openRedirectModule(),
		csrfModule(),
		sensitiveDataExposureModule(),
	}
}

func xssModule() Module {
	m := Module{Name: "Reflected Cross-Site Scripting", CWE: []string{"CWE-79"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		payload := `<script>alert(1)</script>`
		url := withQuery(target.BaseURL, "q", payload)
		req, err := newRequest(ctx, http.MethodGet, url, target)
		if err != nil {
			return nil
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil
		}
		body := readBodyLimited(resp)
		contentType := resp.Header.Get("Content-Type")
		if strings.Contains(body, payload) && strings.Contains(contentType, "html") {
			out = append(out, finding(m, "reflected_xss", findings.SeverityHigh, url, "q", payload,
				"An unescaped script payload was reflected verbatim in an HTML response.", 0.8))
		}
		return out
	}
	return m
}

func openRedirectModule() Module {
	m := Module{Name: "Open Redirect", CWE: []string{"CWE-601"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		noRedirectClient := &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
		payload := "https://evil.example.com"
		for _, param := range []string{"next", "redirect", "url", "return_to"} {
			url := withQuery(target.BaseURL, param, payload)
			req, err := newRequest(ctx, http.MethodGet, url, target)
			if err != nil {
				continue
			}
			resp, err := noRedirectClient.Do(req)
			if err != nil {
				continue
			}
			_ = readBodyLimited(resp)
			location := resp.Header.Get("Location")
			if resp.StatusCode >= 300 && resp.StatusCode < 400 && strings.Contains(location, "evil.example.com") {
				out = append(out, finding(m, "open_redirect", findings.SeverityMedium, url, param, location,
					"The server issued a redirect to an attacker-controlled external host supplied via a query parameter.", 0.85))
				break
			}
		}
		return out
	}
	return m
}

func csrfModule() Module {
	m := Module{Name: "Cross-Site Request Forgery", CWE: []string{"CWE-352"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		req, err := newRequest(ctx, http.MethodPost, target.BaseURL, target)
		if err != nil {
			return nil
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil
		}
		_ = readBodyLimited(resp)
		hasCSRFHeader := resp.Header.Get("X-CSRF-Token") != "" || resp.Header.Get("X-XSRF-Token") != ""
		setsCookie := false
		for _, c := range resp.Cookies() {
			if c.SameSite == http.SameSiteNoneMode || c.SameSite == http.SameSiteDefaultMode {
				setsCookie = true
			}
		}
		if resp.StatusCode == http.StatusOK && !hasCSRFHeader && setsCookie {
			out = append(out, finding(m, "csrf", findings.SeverityMedium, target.BaseURL, "", "missing CSRF token, permissive cookie SameSite",
				"A state-changing POST request succeeded without a CSRF token and the session cookie does not restrict cross-site sending.", 0.5))
		}
		return out
	}
	return m
}

func sensitiveDataExposureModule() Module {
	m := Module{Name: "Sensitive Data Exposure", CWE: []string{"CWE-200"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		for _, path := range []string{"/.env", "/.git/config", "/debug/pprof/", "/.aws/credentials", "/config.json.bak"} {
			req, err := newRequest(ctx, http.MethodGet, strings.TrimRight(target.BaseURL, "/")+path, target)
			if err != nil {
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				continue
			}
			body := readBodyLimited(resp)
			if resp.StatusCode == http.StatusOK && len(body) > 0 {
				out = append(out, finding(m, "sensitive_file_exposure", findings.SeverityHigh, req.URL.String(), "", path,
					"A sensitive configuration path is publicly reachable and returned content.", 0.6))
			}
		}
		return out
	}
	return m
}
