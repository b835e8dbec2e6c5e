package websocket

import (
	"encoding/binary"
	"net"
	"unicode/utf8"

	"github.com/google/uuid"
)

// State is one of the four phases of a connection's close negotiation.
type State int

const (
	StateOpen State = iota
	StateClosingLocal
	StateClosingRemote
	StateClosed
)

// typeLock tracks the in-progress fragmented message, if any.
type typeLockKind int

const (
	lockNone typeLockKind = iota
	lockText
	lockBinary
)

type typeLock struct {
	kind typeLockKind
	buf  []byte
}

// Conn is a WebSocket connection handed to a handler after a successful
// upgrade. It exclusively owns the underlying net.Conn for the rest of the
// session: recv/send are the only ways to touch the wire, and both are
// meant to be driven from a single goroutine, the one the handler runs on.
type Conn struct {
	// ID identifies this session for logging and diagnostics. It has no
	// protocol meaning and never touches the wire.
	ID string

	conn net.Conn

	maxRecvFrameSize uint64
	sendChunkSize    int

	state State
	queue []Message // already-parsed control messages awaiting the caller
}

// Option configures a Conn at construction time.
type Option func(*Conn)

// WithMaxRecvFrameSize overrides the default 1 GiB ceiling on a single
// incoming frame's payload.
func WithMaxRecvFrameSize(n uint64) Option {
	return func(c *Conn) { c.maxRecvFrameSize = n }
}

// WithSendChunkSize overrides the default 10 KiB fragmentation chunk used
// when sending data messages.
func WithSendChunkSize(n int) Option {
	return func(c *Conn) { c.sendChunkSize = n }
}

// NewConn wraps conn as a fresh, Open WebSocket session.
func NewConn(conn net.Conn, opts ...Option) *Conn {
	c := &Conn{
		ID:               uuid.NewString(),
		conn:             conn,
		maxRecvFrameSize: MaxRecvFrameSize,
		sendChunkSize:    SendChunkSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the connection's current phase.
func (c *Conn) State() State { return c.state }

// Send converts msg to a frame (or frame sequence) and writes it to the
// peer. Close payloads are a big-endian code followed by an optional
// reason; an absent Close payload writes an empty close frame.
func (c *Conn) Send(msg Message) error {
	opcode, payload, err := encode(msg)
	if err != nil {
		return localErr(err)
	}
	if err := writeMessage(c.conn, opcode, payload, c.sendChunkSize); err != nil {
		return localErr(err)
	}
	return nil
}

func encode(msg Message) (OpCode, []byte, error) {
	switch msg.Kind {
	case KindText:
		return OpText, []byte(msg.Text), nil
	case KindBytes:
		return OpBinary, msg.Bytes, nil
	case KindPing:
		return OpPing, msg.Ping, nil
	case KindPong:
		return OpPong, msg.Pong, nil
	case KindClose:
		return OpClose, encodeClose(msg.Close), nil
	default:
		return 0, nil, nil
	}
}

func encodeClose(c *Close) []byte {
	if c == nil || !c.HasCode {
		return nil
	}
	payload := make([]byte, 2, 2+len(c.Reason))
	binary.BigEndian.PutUint16(payload, uint16(c.Code))
	payload = append(payload, c.Reason...)
	return payload
}

// Recv returns the next complete message: a finished Text/Bytes message
// reassembled across any continuation frames, an observed Ping/Pong, or a
// Close. On a protocol error, a Close frame carrying a code derived from
// the error is sent, the stream is shut down in both directions, and the
// error is returned. A local I/O error is returned without a Close attempt
// and without closing the stream.
func (c *Conn) Recv() (Message, error) {
	msg, err := c.recvInner()
	if err != nil {
		if wsErr, ok := err.(*Error); ok && wsErr.Protocol != nil {
			c.fail(*wsErr.Protocol)
		}
		return Message{}, err
	}
	return msg, nil
}

func (c *Conn) recvInner() (Message, error) {
	if len(c.queue) > 0 {
		msg := c.queue[0]
		c.queue = c.queue[1:]
		return msg, nil
	}

	var lock typeLock

	for {
		f, err := parseFrame(c.conn, c.maxRecvFrameSize)
		if err != nil {
			return Message{}, err
		}

		switch f.opcode {
		case OpText, OpBinary:
			if lock.kind != lockNone {
				return Message{}, protocolErr(ProtocolError{Kind: ErrAttemptToStartNewMessageWithoutFin})
			}
			if f.fin {
				return finishMessage(f.opcode, f.payload)
			}
			lock.kind = lockKindFor(f.opcode)
			lock.buf = f.payload

		case OpContinue:
			if lock.kind == lockNone {
				return Message{}, protocolErr(ProtocolError{Kind: ErrContinueWithoutStart})
			}
			lock.buf = append(lock.buf, f.payload...)
			if f.fin {
				return finishMessage(opcodeForLock(lock.kind), lock.buf)
			}

		case OpPing:
			if !f.fin {
				return Message{}, protocolErr(ProtocolError{Kind: ErrControlFrameNotFin})
			}
			if err := c.Send(pongMessage(f.payload)); err != nil {
				return Message{}, err
			}
			c.queue = append(c.queue, pingMessage(f.payload))

		case OpPong:
			if !f.fin {
				return Message{}, protocolErr(ProtocolError{Kind: ErrControlFrameNotFin})
			}
			c.queue = append(c.queue, pongMessage(f.payload))

		case OpClose:
			if !f.fin {
				return Message{}, protocolErr(ProtocolError{Kind: ErrControlFrameNotFin})
			}
			cl, err := parseClosePayload(f.payload)
			if err != nil {
				return Message{}, err
			}
			if err := c.recvClose(cl); err != nil {
				return Message{}, localErr(err)
			}
			return closeMessage(cl), nil
		}
	}
}

func lockKindFor(op OpCode) typeLockKind {
	if op == OpBinary {
		return lockBinary
	}
	return lockText
}

func opcodeForLock(kind typeLockKind) OpCode {
	if kind == lockBinary {
		return OpBinary
	}
	return OpText
}

func finishMessage(op OpCode, payload []byte) (Message, error) {
	if op == OpBinary {
		return bytesMessage(payload), nil
	}
	if !utf8.Valid(payload) {
		return Message{}, protocolErr(ProtocolError{Kind: ErrInvalidUtf8})
	}
	return textMessage(string(payload)), nil
}

func parseClosePayload(payload []byte) (*Close, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	if len(payload) < 2 {
		return nil, protocolErr(ProtocolError{Kind: ErrInvalidCloseFrame})
	}

	code := binary.BigEndian.Uint16(payload[:2])
	parsed, err := ParseCloseCode(code)
	if err != nil {
		return nil, protocolErr(err.(ProtocolError))
	}

	reasonBytes := payload[2:]
	if !utf8.Valid(reasonBytes) {
		return nil, protocolErr(ProtocolError{Kind: ErrInvalidUtf8})
	}

	return &Close{Code: parsed, Reason: string(reasonBytes), HasCode: true}, nil
}

// recvClose always reflects an incoming Close with one of the same code
// before shutting the stream down in both directions, then transitions the
// state machine: ClosingLocal -> Closed directly, Open -> Closed via
// ClosingRemote.
func (c *Conn) recvClose(cl *Close) error {
	if c.state != StateClosingLocal {
		c.state = StateClosingRemote
	}

	// A send failure here is swallowed - the peer already said goodbye,
	// and the shutdown below runs regardless.
	_ = c.Send(closeMessage(cl))

	c.state = StateClosed
	return c.conn.Close()
}

// fail is the one path where Send is called to report an error back to the
// peer: its own I/O failures are deliberately ignored, since the
// connection is already being torn down.
func (c *Conn) fail(protoErr ProtocolError) {
	_ = c.Send(closeMessage(&Close{
		Code:    protoErr.closeReason(),
		Reason:  protoErr.Error(),
		HasCode: true,
	}))
	c.state = StateClosed
	_ = c.conn.Close()
}

// Close sends a Close frame (reason may be nil for a bare close) and moves
// the connection to ClosingLocal. The stream stays open: a subsequent Recv
// that observes the peer's Close reflects it, shuts the stream down, and
// moves the connection to Closed.
func (c *Conn) Close(reason *Close) error {
	c.state = StateClosingLocal
	return c.Send(closeMessage(reason))
}
