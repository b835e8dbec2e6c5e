package websocket

import "fmt"

// Error is the union of the two failure classes a connection can report:
// Protocol violations observed on the wire (the peer is told via a Close
// frame before the stream goes down) and Local failures - I/O or a UTF-8
// violation discovered while sending - where the stream is presumed
// unusable and no Close exchange is attempted.
type Error struct {
	Protocol *ProtocolError
	Local    error
}

func (e *Error) Error() string {
	if e.Protocol != nil {
		return fmt.Sprintf("client didn't follow websocket protocol: %s", e.Protocol)
	}
	return fmt.Sprintf("io error while operating on websocket: %s", e.Local)
}

func protocolErr(err ProtocolError) *Error { return &Error{Protocol: &err} }
func localErr(err error) *Error            { return &Error{Local: err} }

// ProtocolErrorKind enumerates the ways a peer can violate RFC 6455 framing
// that this connection detects.
type ProtocolErrorKind int

const (
	ErrControlPayloadTooLarge ProtocolErrorKind = iota
	ErrPayloadTooLarge
	ErrUnmaskedClientMessage
	ErrReservedBitsSet
	ErrInvalidOpcode
	ErrAttemptToStartNewMessageWithoutFin
	ErrContinueWithoutStart
	ErrControlFrameNotFin
	ErrInvalidCloseFrame
	ErrInvalidCloseCode
	ErrInvalidUtf8
)

// ProtocolError carries the offending kind plus whatever numeric or
// underlying context is relevant to it.
type ProtocolError struct {
	Kind   ProtocolErrorKind
	Size   uint64
	Code   uint16
	Opcode byte
	Cause  error
}

func (e ProtocolError) Error() string {
	switch e.Kind {
	case ErrControlPayloadTooLarge:
		return fmt.Sprintf("control frame had a too large payload (allowed: 125, got: %d)", e.Size)
	case ErrPayloadTooLarge:
		return fmt.Sprintf("the payload was too large for this implementation: %d (default max: %d)", e.Size, MaxRecvFrameSize)
	case ErrUnmaskedClientMessage:
		return "client message was not masked"
	case ErrReservedBitsSet:
		return "reserved bits were set when no extension protocol using these bits was negotiated"
	case ErrInvalidOpcode:
		return fmt.Sprintf("received invalid opcode: %#x", e.Opcode)
	case ErrAttemptToStartNewMessageWithoutFin:
		return "attempted to start a new message without finishing an existing one"
	case ErrContinueWithoutStart:
		return "sent continue frame without having started a message"
	case ErrControlFrameNotFin:
		return "sent a control frame without fin bit set"
	case ErrInvalidCloseFrame:
		return "received an invalid close frame"
	case ErrInvalidCloseCode:
		return fmt.Sprintf("invalid close code: %d", e.Code)
	case ErrInvalidUtf8:
		return fmt.Sprintf("sent invalid utf-8: %v", e.Cause)
	default:
		return "unknown websocket protocol error"
	}
}

// closeReason derives the close code this server reflects to the peer for
// a given protocol violation: invalid UTF-8 maps to 1007, an oversized
// payload to 1009, and every other violation to the generic 1002.
func (e ProtocolError) closeReason() CloseCode {
	switch e.Kind {
	case ErrInvalidUtf8:
		return CloseInconsistentData
	case ErrPayloadTooLarge:
		return CloseTooBig
	default:
		return CloseProtocolError
	}
}
