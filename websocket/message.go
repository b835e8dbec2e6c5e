package websocket

// MessageKind tags which variant of Message is populated.
type MessageKind int

const (
	KindText MessageKind = iota
	KindBytes
	KindClose
	KindPing
	KindPong
)

// Close carries the optional code/reason pair parsed from, or destined
// for, a Close frame's payload.
type Close struct {
	Code   CloseCode
	Reason string
	// HasCode is false when the frame carried no payload at all (a bare
	// close with no code or reason).
	HasCode bool
}

// Message is the reassembled unit handlers exchange with recv/send: a
// complete Text or Binary message, a Close negotiation, or an observed
// Ping/Pong.
type Message struct {
	Kind  MessageKind
	Text  string
	Bytes []byte
	Close *Close
	Ping  []byte
	Pong  []byte
}

func textMessage(s string) Message  { return Message{Kind: KindText, Text: s} }
func bytesMessage(b []byte) Message { return Message{Kind: KindBytes, Bytes: b} }
func pingMessage(b []byte) Message  { return Message{Kind: KindPing, Ping: b} }
func pongMessage(b []byte) Message  { return Message{Kind: KindPong, Pong: b} }
func closeMessage(c *Close) Message { return Message{Kind: KindClose, Close: c} }
