//go:build property
// +build property

package coordinator

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestFingerprintDeterminism verifies the Cache Entry key / Audit Record
// InputFingerprint hash is a pure function of (input, mode, path).
// Property: fingerprint(x) == fingerprint(x)
func TestFingerprintDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("fingerprint is deterministic", prop.ForAll(
		func(input, path string) bool {
			return fingerprint(input, ModeFull, path) == fingerprint(input, ModeFull, path)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// TestFingerprintSeparatesModes verifies the same input/path pair produces a
// different fingerprint per mode, so the scan-result cache never serves a
// "code" result for a "pii" request.
func TestFingerprintSeparatesModes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	modes := []Mode{ModeCode, ModePII, ModePrompt, ModeFull, ModeDynamic}

	properties.Property("distinct modes never collide for the same input/path", prop.ForAll(
		func(input, path string, i, j int) bool {
			mi, mj := modes[i%len(modes)], modes[j%len(modes)]
			if mi == mj {
				return true
			}
			return fingerprint(input, mi, path) != fingerprint(input, mj, path)
		},
		gen.AnyString(),
		gen.AnyString(),
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
