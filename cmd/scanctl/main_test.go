package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunWithNoArgsPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"scanctl"}, &stdout, &stderr)
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "Usage:")
}

func TestRunUnknownSubcommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"scanctl", "bogus"}, &stdout, &stderr)
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "unknown subcommand")
}

func TestRunScanFromStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	stdinBackup := stdinReplace(t, `os.system("rm -rf " + user_input)`)
	defer stdinBackup()

	code := Run([]string{"scanctl", "scan", "-mode", "code", "-format", "markdown"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	require.Contains(t, stdout.String(), "# Scan Report")
	require.Contains(t, stdout.String(), "shell_injection")
}

func TestRunAnonymizeFromStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	stdinBackup := stdinReplace(t, "contact me at jane@example.com")
	defer stdinBackup()

	code := Run([]string{"scanctl", "anonymize"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	require.NotContains(t, stdout.String(), "jane@example.com")
}

func TestRunAuditReportsEmptyChain(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"scanctl", "audit"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	require.Contains(t, stdout.String(), "chain_valid")
}

// stdinReplace swaps os.Stdin for a pipe pre-loaded with content, restoring
// the original on the returned cleanup func. Grounded on the need to drive
// Run's "-file -" stdin path without spawning a subprocess.
func stdinReplace(t *testing.T, content string) func() {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(content)
	require.NoError(t, err)
	w.Close()

	original := os.Stdin
	os.Stdin = r
	return func() {
		os.Stdin = original
		r.Close()
	}
}

func TestReadInputFallsBackToStdin(t *testing.T) {
	restore := stdinReplace(t, "hello world")
	defer restore()

	got, err := readInput("-")
	require.NoError(t, err)
	require.Equal(t, "hello world", strings.TrimSpace(got))
}
