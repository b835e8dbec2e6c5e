package websocket

// CloseCode is the parsed, range-classified form of a WebSocket close code.
type CloseCode uint16

// Codes defined by RFC 6455 that this server accepts on a received close
// frame. 1004, 1005, 1006, 1012-2999 are reserved for internal use by the
// protocol (never sent on the wire) and are rejected if a peer sends them.
const (
	CloseNormal            CloseCode = 1000
	CloseGoingAway         CloseCode = 1001
	CloseProtocolError     CloseCode = 1002
	CloseUnacceptedData    CloseCode = 1003
	CloseInconsistentData  CloseCode = 1007
	ClosePolicyViolated    CloseCode = 1008
	CloseTooBig            CloseCode = 1009
	CloseMissingExtension  CloseCode = 1010
	CloseServerError       CloseCode = 1011
)

// ParseCloseCode classifies a raw 16-bit close code into one of the ranges
// described in RFC 6455 §7.4: 1000-2999 must be one of the protocol's
// defined codes, 3000-3999 are IANA-registered and accepted opaquely,
// 4000-4999 are private-use and accepted opaquely. Anything else is
// rejected.
func ParseCloseCode(code uint16) (CloseCode, error) {
	switch {
	case code >= 1000 && code <= 2999:
		switch CloseCode(code) {
		case CloseNormal, CloseGoingAway, CloseProtocolError, CloseUnacceptedData,
			CloseInconsistentData, ClosePolicyViolated, CloseTooBig, CloseMissingExtension, CloseServerError:
			return CloseCode(code), nil
		default:
			return 0, ProtocolError{Kind: ErrInvalidCloseCode, Code: code}
		}
	case code >= 3000 && code <= 4999:
		return CloseCode(code), nil
	default:
		return 0, ProtocolError{Kind: ErrInvalidCloseCode, Code: code}
	}
}
