package probes

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/scanforge/engine/pkg/findings"
)

func accessModules() []Module {
	return []Module{
		idorModule(),
		massAssignmentModule(),
	}
}

func idorModule() Module {
	m := Module{Name: "Insecure Direct Object Reference / Broken Object-Level Authorization", CWE: []string{"CWE-639"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		// Walking a small window of adjacent numeric ids is enough to reveal
		// whether object ownership is checked at all; a real authorization
		// boundary returns 403/404 uniformly regardless of id.
		var statuses []int
		for _, id := range []string{"1", "2", "3"} {
			url := strings.TrimRight(target.BaseURL, "/") + "/" + id
			req, err := newRequest(ctx, http.MethodGet, url, target)
			if err != nil {
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				continue
			}
			_ = readBodyLimited(resp)
			statuses = append(statuses, resp.StatusCode)
		}
		allOK := len(statuses) == 3
		for _, s := range statuses {
			if s != http.StatusOK {
				allOK = false
			}
		}
		if allOK {
			out = append(out, finding(m, "idor", findings.SeverityHigh, target.BaseURL, "id", "sequential ids 1,2,3 all returned 200",
				"Sequential object ids were all accessible without an ownership or authorization check observed.", 0.5))
		}
		return out
	}
	return m
}

func massAssignmentModule() Module {
	m := Module{Name: "Mass Assignment", CWE: []string{"CWE-915"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		body := []byte(`{"name":"probe","is_admin":true,"role":"admin"}`)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.BaseURL, bytes.NewReader(body))
		if err != nil {
			return nil
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range target.Headers {
			req.Header.Set(k, v)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil
		}
		respBody := readBodyLimited(resp)
		if resp.StatusCode == http.StatusOK && (strings.Contains(respBody, `"is_admin":true`) || strings.Contains(respBody, `"role":"admin"`)) {
			out = append(out, finding(m, "mass_assignment", findings.SeverityHigh, target.BaseURL, "is_admin/role", `{"is_admin":true,"role":"admin"}`,
				"A privileged field submitted in a create/update request was accepted and echoed back unchanged.", 0.6))
		}
		return out
	}
	return m
}
