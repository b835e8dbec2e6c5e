package websocket

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCloseCodeAcceptsDefinedProtocolCodes(t *testing.T) {
	defined := []uint16{1000, 1001, 1002, 1003, 1007, 1008, 1009, 1010, 1011}
	for _, code := range defined {
		parsed, err := ParseCloseCode(code)
		require.NoError(t, err, "code=%d", code)
		require.Equal(t, CloseCode(code), parsed)
	}
}

func TestParseCloseCodeRejectsUndefinedCodesInProtocolRange(t *testing.T) {
	undefined := []uint16{1004, 1005, 1006, 1012, 1500, 2999}
	for _, code := range undefined {
		_, err := ParseCloseCode(code)
		require.Error(t, err, "code=%d", code)

		perr, ok := err.(ProtocolError)
		require.True(t, ok)
		require.Equal(t, ErrInvalidCloseCode, perr.Kind)
	}
}

func TestParseCloseCodeAcceptsRegisteredAndPrivateRangesOpaquely(t *testing.T) {
	for _, code := range []uint16{3000, 3500, 3999, 4000, 4500, 4999} {
		parsed, err := ParseCloseCode(code)
		require.NoError(t, err, "code=%d", code)
		require.Equal(t, CloseCode(code), parsed)
	}
}

func TestParseCloseCodeRejectsOutOfRange(t *testing.T) {
	for _, code := range []uint16{0, 500, 999, 5000, 65000} {
		_, err := ParseCloseCode(code)
		require.Error(t, err, "code=%d", code)
	}
}
