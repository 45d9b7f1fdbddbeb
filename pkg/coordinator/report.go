package coordinator

import (
	"errors"

	"github.com/scanforge/engine/pkg/scanresult"
)

// ErrReportUnconfigured is returned by Engine.Report when no report
// function has been wired via WithReportFunc.
var ErrReportUnconfigured = errors.New("coordinator: no report function configured; pass coordinator.WithReportFunc(report.Generate)")

// ReportFunc renders a ScanResult in the given format. pkg/report.Generate
// satisfies this signature; it is injected via WithReportFunc rather than
// imported directly so pkg/report (which depends on pkg/scanresult) never
// needs to depend on pkg/coordinator. The report renderer is caller-supplied
// state on the Engine value, not a package-level variable.
type ReportFunc func(result scanresult.ScanResult, format string) (string, error)

// WithReportFunc wires the Report Generator's rendering function.
// Callers typically pass report.Generate.
func WithReportFunc(fn ReportFunc) Option {
	return func(e *Engine) { e.reportFn = fn }
}

// Report renders result in format via the Engine's configured report
// function.
func (e *Engine) Report(result scanresult.ScanResult, format string) (string, error) {
	if e.reportFn == nil {
		return "", ErrReportUnconfigured
	}
	return e.reportFn(result, format)
}
