package probes

import (
	"io"
	"net/http"
	"net/url"
)

const maxProbeBodyBytes = 65536

func readBodyLimited(resp *http.Response) string {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBodyBytes))
	if err != nil {
		return ""
	}
	return string(body)
}

func withQuery(base, param, value string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set(param, value)
	u.RawQuery = q.Encode()
	return u.String()
}
