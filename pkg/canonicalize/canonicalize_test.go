package canonicalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashIsStableAcrossFieldOrder(t *testing.T) {
	a := map[string]interface{}{"b": 2, "a": 1}
	b := map[string]interface{}{"a": 1, "b": 2}

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	require.Equal(t, ha, hb)
}

func TestHashDiffersForDifferentContent(t *testing.T) {
	ha, err := Hash(map[string]interface{}{"a": 1})
	require.NoError(t, err)
	hb, err := Hash(map[string]interface{}{"a": 2})
	require.NoError(t, err)
	require.NotEqual(t, ha, hb)
}
