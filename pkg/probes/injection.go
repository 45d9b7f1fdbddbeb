package probes

import (
	"context"
	"net/http"
	"strings"

	"github.com/scanforge/engine/pkg/findings"
)

func injectionModules() []Module {
	return []Module{
		sqliModule(),
		nosqliModule(),
		sstiModule(),
		rceModule(),
		lfiModule(),
	}
}

// sqliErrorSignatures are fragments of database error messages a successful
// SQL-injection probe commonly surfaces across Postgres, MySQL, and SQLite.
var sqliErrorSignatures = []string{
	"sql syntax", "unclosed quotation mark", "pg_query", "sqlite3.operationalerror",
	"unterminated quoted string", "ORA-01756", "mysql_fetch",
}

func sqliModule() Module {
	m := Module{Name: "SQL Injection", CWE: []string{"CWE-89"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		for _, payload := range []string{`' OR '1'='1`, `1' AND '1'='2`, `';--`} {
			url := withQuery(target.BaseURL, "q", payload)
			req, err := newRequest(ctx, http.MethodGet, url, target)
			if err != nil {
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				continue
			}
			body := strings.ToLower(readBodyLimited(resp))
			for _, sig := range sqliErrorSignatures {
				if strings.Contains(body, strings.ToLower(sig)) {
					out = append(out, finding(m, "sql_injection", findings.SeverityCritical, url, "q", payload,
						"A database error signature appeared in the response after sending a SQL-injection payload.", 0.75))
					break
				}
			}
		}
		return out
	}
	return m
}

func nosqliModule() Module {
	m := Module{Name: "NoSQL Injection", CWE: []string{"CWE-943"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		payload := `{"$ne": null}`
		url := withQuery(target.BaseURL, "q", payload)
		req, err := newRequest(ctx, http.MethodGet, url, target)
		if err != nil {
			return nil
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil
		}
		body := strings.ToLower(readBodyLimited(resp))
		if resp.StatusCode == http.StatusOK && (strings.Contains(body, "\"_id\"") || strings.Contains(body, "mongo")) {
			out = append(out, finding(m, "nosql_injection", findings.SeverityHigh, url, "q", payload,
				"A MongoDB operator payload produced a successful response that appears to enumerate records.", 0.55))
		}
		return out
	}
	return m
}

func sstiModule() Module {
	m := Module{Name: "Server-Side Template Injection", CWE: []string{"CWE-1336"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		payload := "{{7*7}}"
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
		if strings.Contains(body, "49") && !strings.Contains(body, payload) {
			out = append(out, finding(m, "ssti", findings.SeverityCritical, url, "q", payload,
				"A template expression payload was evaluated server-side (7*7 rendered as 49).", 0.8))
		}
		return out
	}
	return m
}

func rceModule() Module {
	m := Module{Name: "Remote Code Execution", CWE: []string{"CWE-78"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		payload := "; id"
		url := withQuery(target.BaseURL, "q", payload)
		req, err := newRequest(ctx, http.MethodGet, url, target)
		if err != nil {
			return nil
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil
		}
		body := strings.ToLower(readBodyLimited(resp))
		if strings.Contains(body, "uid=") && strings.Contains(body, "gid=") {
			out = append(out, finding(m, "rce", findings.SeverityCritical, url, "q", payload,
				"A shell metacharacter payload produced output resembling a Unix `id` command response.", 0.85))
		}
		return out
	}
	return m
}

func lfiModule() Module {
	m := Module{Name: "Local File Inclusion / Path Traversal", CWE: []string{"CWE-22"}}
	m.Run = func(ctx context.Context, client HTTPDoer, target Target) []findings.Finding {
		var out []findings.Finding
		for _, payload := range []string{"../../../../etc/passwd", "....//....//....//etc/passwd"} {
			url := withQuery(target.BaseURL, "file", payload)
			req, err := newRequest(ctx, http.MethodGet, url, target)
			if err != nil {
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				continue
			}
			body := readBodyLimited(resp)
			if strings.Contains(body, "root:x:0:0") {
				out = append(out, finding(m, "path_traversal", findings.SeverityCritical, url, "file", payload,
					"The response body contains the contents of /etc/passwd.", 0.9))
				break
			}
		}
		return out
	}
	return m
}
