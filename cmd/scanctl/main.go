// Command scanctl is the CLI facade over the Unified Scanning Engine: it
// wires pkg/coordinator's Engine to pkg/report's renderer and exposes one
// subcommand per Engine API operation. The full API/auth/UI facade lives
// elsewhere; this is the thin operator tool used to drive the engine
// directly.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/scanforge/engine/pkg/config"
	"github.com/scanforge/engine/pkg/coordinator"
	"github.com/scanforge/engine/pkg/report"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the CLI entrypoint, factored out of main for testability.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(stderr, "Usage: scanctl <scan|stream|deps|cve|anonymize|audit> [flags]")
		return 2
	}

	engine, err := coordinator.New(config.Load(), coordinator.WithReportFunc(report.Generate))
	if err != nil {
		fmt.Fprintf(stderr, "scanctl: failed to build engine: %v\n", err)
		return 1
	}

	switch args[1] {
	case "scan":
		return runScan(engine, args[2:], stdout, stderr)
	case "stream":
		return runStream(engine, args[2:], stdout, stderr)
	case "deps":
		return runDeps(engine, args[2:], stdout, stderr)
	case "cve":
		return runCVE(engine, args[2:], stdout, stderr)
	case "anonymize":
		return runAnonymize(engine, args[2:], stdout, stderr)
	case "audit":
		return runAudit(engine, stdout)
	default:
		fmt.Fprintf(stderr, "scanctl: unknown subcommand %q\n", args[1])
		return 2
	}
}

func readInput(file string) (string, error) {
	if file == "" || file == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(file)
	return string(b), err
}

func runScan(engine *coordinator.Engine, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	mode := fs.String("mode", "full", "scan mode: code|pii|prompt|full|dynamic")
	file := fs.String("file", "-", "input file path, or URL for dynamic mode; - for stdin")
	path := fs.String("path", "", "location label attached to findings (file path or target URL)")
	useCache := fs.Bool("cache", true, "use the scan-result cache")
	format := fs.String("format", "markdown", "output format: markdown|json")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	input, err := readInput(*file)
	if err != nil {
		fmt.Fprintf(stderr, "scanctl: failed to read input: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := engine.Scan(ctx, input, coordinator.Mode(*mode), *path, *useCache)
	if err != nil {
		fmt.Fprintf(stderr, "scanctl: scan failed: %v\n", err)
		return 1
	}

	out, err := engine.Report(result, *format)
	if err != nil {
		fmt.Fprintf(stderr, "scanctl: report failed: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, out)
	return 0
}

func runStream(engine *coordinator.Engine, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stream", flag.ContinueOnError)
	mode := fs.String("mode", "full", "scan mode: code|pii|prompt|full|dynamic")
	file := fs.String("file", "-", "input file path, or URL for dynamic mode; - for stdin")
	path := fs.String("path", "", "location label attached to findings")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	input, err := readInput(*file)
	if err != nil {
		fmt.Fprintf(stderr, "scanctl: failed to read input: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	events, err := engine.StreamScan(ctx, input, coordinator.Mode(*mode), *path)
	if err != nil {
		fmt.Fprintf(stderr, "scanctl: stream failed to start: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	for ev := range events {
		_ = enc.Encode(ev)
	}
	return 0
}

func runDeps(engine *coordinator.Engine, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("deps", flag.ContinueOnError)
	file := fs.String("file", "-", "dependency manifest path; - for stdin")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	manifest, err := readInput(*file)
	if err != nil {
		fmt.Fprintf(stderr, "scanctl: failed to read manifest: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fs2, err := engine.ScanDependencies(ctx, manifest)
	if err != nil {
		fmt.Fprintf(stderr, "scanctl: dependency scan failed: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(fs2)
	return 0
}

func runCVE(engine *coordinator.Engine, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cve", flag.ContinueOnError)
	keyword := fs.String("keyword", "", "keyword to search the CVE feed for")
	max := fs.Int("max", 10, "maximum number of results")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *keyword == "" {
		fmt.Fprintln(stderr, "scanctl: -keyword is required")
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cves, err := engine.EnrichWithCVE(ctx, *keyword, *max)
	if err != nil {
		fmt.Fprintf(stderr, "scanctl: cve lookup failed: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(cves)
	return 0
}

func runAnonymize(engine *coordinator.Engine, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("anonymize", flag.ContinueOnError)
	file := fs.String("file", "-", "input file path; - for stdin")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	input, err := readInput(*file)
	if err != nil {
		fmt.Fprintf(stderr, "scanctl: failed to read input: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, engine.Anonymize(input))
	return 0
}

func runAudit(engine *coordinator.Engine, stdout io.Writer) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(struct {
		ChainValid bool        `json:"chain_valid"`
		CacheStats interface{} `json:"cache_stats"`
		Records    interface{} `json:"records"`
	}{
		ChainValid: engine.AuditChainValid(),
		CacheStats: engine.CacheStats(),
		Records:    engine.AuditLog(),
	})
	return 0
}
