package websocket

import (
	"crypto/sha1"
	"encoding/base64"
	"io"
	"strings"

	"github.com/curol/wisp/header"
	"github.com/curol/wisp/httpcore"
)

// guid is the fixed salt RFC 6455 §1.3 mandates be appended to the client's
// nonce before hashing.
const guid = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// AcceptKey computes Sec-WebSocket-Accept for the given Sec-WebSocket-Key:
// base64(SHA1(key || guid)).
func AcceptKey(key string) string {
	sum := sha1.Sum([]byte(key + guid))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// ValidateUpgrade checks that req carries the headers a WebSocket upgrade
// requires: an Upgrade header equal to "websocket" (case-insensitive) and
// a non-empty Sec-WebSocket-Key. It returns the accept key on success.
func ValidateUpgrade(req *httpcore.Request) (acceptKey string, err error) {
	upgrade, _ := req.Headers.Get("Upgrade")
	if !strings.EqualFold(upgrade, "websocket") {
		return "", &httpcore.ParseError{Kind: httpcore.ErrMissingOrInvalidWebsocketHeader, Header: "Upgrade"}
	}

	key, ok := req.Headers.Get("Sec-WebSocket-Key")
	if !ok || key == "" {
		return "", &httpcore.ParseError{Kind: httpcore.ErrMissingOrInvalidWebsocketHeader, Header: "Sec-WebSocket-Key"}
	}

	return AcceptKey(key), nil
}

// WriteUpgradeResponse emits the 101 Switching Protocols reply through the
// regular HTTP response writer - the WebSocket engine never frames its own
// handshake bytes by hand.
func WriteUpgradeResponse(w io.Writer, acceptKey string) error {
	resp := httpcore.NewResponse(httpcore.StatusSwitchingProtocols)
	resp.Headers = header.New(nil)
	resp.Headers.Set("Sec-WebSocket-Accept", acceptKey)
	resp.Headers.Set("Connection", "Upgrade")
	resp.Headers.Set("Upgrade", "websocket")
	return httpcore.WriteResponse(w, resp)
}
