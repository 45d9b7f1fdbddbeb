//go:build property
// +build property

package audit

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestChainVerifiesForAnyScanSequence seals an arbitrary sequence of
// records and confirms the chain always verifies clean, and that altering
// any single past record breaks verification.
func TestChainVerifiesForAnyScanSequence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("unaltered chains verify; any single alteration breaks them", prop.ForAll(
		func(modes []string, tamperAt int) bool {
			if len(modes) == 0 {
				return true
			}
			c := NewChain()
			for i, m := range modes {
				if _, err := c.SealAndAppend("scan", "fp", m, "test/1.0", RecordSummary{TotalFindings: i}); err != nil {
					return false
				}
			}
			if Verify(c.Records()) != nil {
				return false
			}

			tampered := c.Records()
			idx := tamperAt % len(tampered)
			if idx < 0 {
				idx = -idx
			}
			tampered[idx].Summary.TotalFindings += 1000
			return Verify(tampered) != nil
		},
		gen.SliceOf(gen.OneConstOf("code", "pii", "prompt", "full")),
		gen.Int(),
	))

	properties.TestingRun(t)
}
