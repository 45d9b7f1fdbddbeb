package coordinator

import "errors"

// The Coordinator never panics or throws into caller code on analysis
// errors; these sentinels are the only error values a Scan/StreamScan
// caller needs to branch on.
var (
	// ErrInputTooLarge is returned synchronously, before any scan work
	// begins, when input exceeds Config.MaxInputBytes.
	ErrInputTooLarge = errors.New("coordinator: input exceeds maximum size")
	// ErrUnknownMode is returned synchronously for an unrecognized Mode.
	ErrUnknownMode = errors.New("coordinator: unknown scan mode")
	// ErrAuditSealFailed is fatal: the chain must never fork, so a sealing
	// failure aborts the scan rather than returning a partial result.
	ErrAuditSealFailed = errors.New("coordinator: audit seal failed")
)
