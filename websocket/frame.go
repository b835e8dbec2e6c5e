package websocket

import (
	"encoding/binary"
	"io"
)

// MaxRecvFrameSize is the default ceiling on a single incoming frame's
// payload length; frames larger than this are rejected with
// ErrPayloadTooLarge before the payload is even read.
const MaxRecvFrameSize uint64 = 1 << 30 // 1 GiB

// SendChunkSize is the default ceiling on a single outgoing data frame's
// payload; larger messages are split into continuation frames. This is a
// performance knob, not a correctness property - receivers must accept any
// fragmentation a sender produces.
const SendChunkSize = 10 * 1024 // 10 KiB

// frame is a single parsed WebSocket frame as read from a client: the FIN
// bit, the opcode, and the already-unmasked payload.
type frame struct {
	fin     bool
	opcode  OpCode
	payload []byte
}

// parseFrame reads one frame from r per RFC 6455 §5.2, validating the
// rules a server must enforce on client frames: no RSV bits, a known
// opcode, the MASK bit set, control frames no larger than 125 bytes, and
// the payload length under maxPayload. The payload is unmasked in place
// before it's returned.
func parseFrame(r io.Reader, maxPayload uint64) (*frame, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, localErr(err)
	}

	fin := header[0]&0b1000_0000 != 0
	rsv := header[0] & 0b0111_0000
	if rsv != 0 {
		return nil, protocolErr(ProtocolError{Kind: ErrReservedBitsSet})
	}

	opcode, ok := parseOpcode(header[0] & 0b0000_1111)
	if !ok {
		return nil, protocolErr(ProtocolError{Kind: ErrInvalidOpcode, Opcode: header[0] & 0b0000_1111})
	}

	masked := header[1]&0b1000_0000 != 0
	if !masked {
		return nil, protocolErr(ProtocolError{Kind: ErrUnmaskedClientMessage})
	}

	payloadLen := uint64(header[1] & 0b0111_1111)
	switch payloadLen {
	case 126:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, localErr(err)
		}
		payloadLen = uint64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, localErr(err)
		}
		payloadLen = binary.BigEndian.Uint64(ext[:])
	}

	if opcode.IsControl() && payloadLen > 125 {
		return nil, protocolErr(ProtocolError{Kind: ErrControlPayloadTooLarge, Size: payloadLen})
	}
	if payloadLen > maxPayload {
		return nil, protocolErr(ProtocolError{Kind: ErrPayloadTooLarge, Size: payloadLen})
	}

	var maskKey [4]byte
	if _, err := io.ReadFull(r, maskKey[:]); err != nil {
		return nil, localErr(err)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, localErr(err)
	}
	unmask(payload, maskKey)

	return &frame{fin: fin, opcode: opcode, payload: payload}, nil
}

// unmask XORs payload with key, repeating key as needed. Applying unmask
// twice with the same key is the identity - the same routine masks a
// payload too, there being no difference between the two operations.
func unmask(payload []byte, key [4]byte) {
	for i := range payload {
		payload[i] ^= key[i%4]
	}
}

// writeFrame emits a single, unmasked server->client frame with the given
// FIN bit and opcode.
func writeFrame(w io.Writer, opcode OpCode, payload []byte, fin bool) error {
	header := make([]byte, 2, 10)
	if fin {
		header[0] = 0b1000_0000
	}
	header[0] |= byte(opcode) & 0b0000_1111

	switch n := len(payload); {
	case n < 126:
		header[1] = byte(n)
	case n <= 0xFFFF:
		header[1] = 126
		header = append(header, 0, 0)
		binary.BigEndian.PutUint16(header[2:4], uint16(n))
	default:
		header[1] = 127
		header = append(header, make([]byte, 8)...)
		binary.BigEndian.PutUint64(header[2:10], uint64(n))
	}

	if _, err := w.Write(header); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// writeMessage fragments a data message into chunks of at most chunkSize
// bytes: the first fragment carries opcode, every fragment after it uses
// OpContinue, and only the last fragment sets FIN. A control message (or
// any payload no larger than chunkSize) is always sent as a single
// FIN-set frame with no continuation, since control frames may never be
// fragmented.
func writeMessage(w io.Writer, opcode OpCode, payload []byte, chunkSize int) error {
	if opcode.IsControl() || len(payload) <= chunkSize {
		return writeFrame(w, opcode, payload, true)
	}

	for offset := 0; offset < len(payload); offset += chunkSize {
		end := offset + chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		fin := end == len(payload)

		frameOpcode := opcode
		if offset > 0 {
			frameOpcode = OpContinue
		}

		if err := writeFrame(w, frameOpcode, payload[offset:end], fin); err != nil {
			return err
		}
	}
	return nil
}
