package audit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func seal(t *testing.T, c *Chain, scanID string) Record {
	t.Helper()
	r, err := c.SealAndAppend(scanID, "fp-"+scanID, "code", "test/1.0", RecordSummary{TotalFindings: 1})
	require.NoError(t, err)
	return r
}

func TestNewChainStartsAtGenesis(t *testing.T) {
	c := NewChain()
	require.Equal(t, Genesis, c.Head())
	require.Len(t, Genesis, 64)
	require.Empty(t, c.Records())
}

func TestSealAndAppendLinksRecords(t *testing.T) {
	c := NewChain()
	first := seal(t, c, "a")
	second := seal(t, c, "b")

	require.Equal(t, Genesis, first.PreviousHash)
	require.Equal(t, first.Hash, second.PreviousHash)
	require.Equal(t, second.Hash, c.Head())
}

func TestVerifyAcceptsCleanChain(t *testing.T) {
	c := NewChain()
	for _, id := range []string{"a", "b", "c", "d"} {
		seal(t, c, id)
	}
	require.NoError(t, Verify(c.Records()))
}

func TestVerifyDetectsTamperedRecord(t *testing.T) {
	c := NewChain()
	for _, id := range []string{"a", "b", "c"} {
		seal(t, c, id)
	}

	records := c.Records()
	records[1].Summary.TotalFindings = 999
	require.Error(t, Verify(records))
}

func TestTamperingChangesEveryDownstreamHash(t *testing.T) {
	c := NewChain()
	for _, id := range []string{"a", "b", "c"} {
		seal(t, c, id)
	}
	records := c.Records()

	// Rebuild the chain from the altered record forward, the way a forger
	// would have to: every recomputed hash must differ from the original.
	records[0].ScanMode = "pii"
	prev := Genesis
	for i := range records {
		records[i].PreviousHash = prev
		h, err := hashRecord(records[i])
		require.NoError(t, err)
		require.NotEqual(t, c.Records()[i].Hash, h)
		records[i].Hash = h
		prev = h
	}
	require.NotEqual(t, c.Head(), prev)
}

func TestVerifyDetectsBrokenLink(t *testing.T) {
	c := NewChain()
	seal(t, c, "a")
	seal(t, c, "b")

	records := c.Records()
	records[1].PreviousHash = Genesis
	require.Error(t, Verify(records))
}

type recordingSink struct{ records []Record }

func (s *recordingSink) Write(r Record) error {
	s.records = append(s.records, r)
	return nil
}

func TestSinksReceiveEverySealedRecord(t *testing.T) {
	c := NewChain()
	sink := &recordingSink{}
	c.AddSink(sink)

	seal(t, c, "a")
	seal(t, c, "b")

	require.Len(t, sink.records, 2)
	require.Equal(t, c.Records(), sink.records)
}
