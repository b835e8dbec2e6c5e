package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitNoQuery(t *testing.T) {
	base, params := Split("/path")
	require.Equal(t, "/path", base)
	require.Empty(t, params)
}

func TestSplitBasic(t *testing.T) {
	base, params := Split("/path?a=1&b=2")
	require.Equal(t, "/path", base)
	require.Equal(t, "1", params["a"])
	require.Equal(t, "2", params["b"])
}

func TestSplitPairWithoutEqualsMapsToEmptyValue(t *testing.T) {
	_, params := Split("/path?flag")
	v, ok := params["flag"]
	require.True(t, ok)
	require.Equal(t, "", v)
}

func TestSplitPercentDecoding(t *testing.T) {
	_, params := Split("/path?a=hello%20world&b=x%2By")
	require.Equal(t, "hello world", params["a"])
	require.Equal(t, "x+y", params["b"])
}

// Decoding is strictly %XX; a raw '+' is not a form-urlencoded space and
// passes through unchanged.
func TestSplitPlusPassesThroughLiterally(t *testing.T) {
	_, params := Split("/path?a=hello+world")
	require.Equal(t, "hello+world", params["a"])
}

func TestSplitMalformedEscapeDropsOnlyThatPair(t *testing.T) {
	_, params := Split("/path?good=1&bad=%zz")
	require.Equal(t, "1", params["good"])
	require.NotContains(t, params, "bad")
}

func TestSplitEmptyKeyDropped(t *testing.T) {
	_, params := Split("/path?=value")
	require.Empty(t, params)
}

func TestSplitDuplicateKeyLastWins(t *testing.T) {
	_, params := Split("/path?a=1&a=2")
	require.Equal(t, "2", params["a"])
}

func TestSplitBaseIsPrefixOfInput(t *testing.T) {
	target := "/path?a=1"
	base, _ := Split(target)
	require.True(t, len(base) <= len(target))
	require.Equal(t, target[:len(base)], base)
}
