package httpcore

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequestNoHeadersNoBody(t *testing.T) {
	r := strings.NewReader("GET / HTTP/1.1\r\n\r\n")
	req, err := ParseRequest(r)
	require.NoError(t, err)
	require.Equal(t, GET, req.Method)
	require.Equal(t, "/", req.Route)
	require.Equal(t, 0, req.Headers.Len())
	require.False(t, req.HasBody)
}

func TestParseRequestWithHeadersAndBody(t *testing.T) {
	raw := "POST /echo HTTP/1.1\r\nHost: x\r\nContent-Length: 3\r\n\r\nxyz"
	req, err := ParseRequest(strings.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, POST, req.Method)
	require.Equal(t, "/echo", req.Route)
	require.True(t, req.HasBody)
	require.Equal(t, "xyz", string(req.Body))

	host, ok := req.Headers.Get("Host")
	require.True(t, ok)
	require.Equal(t, "x", host)
}

func TestParseRequestQueryStringSplitIntoParams(t *testing.T) {
	raw := "GET /search?q=hello%20world HTTP/1.1\r\n\r\n"
	req, err := ParseRequest(strings.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, "/search", req.Route)
	v, ok := req.Param("q")
	require.True(t, ok)
	require.Equal(t, "hello world", v)
}

func TestParseRequestRejectsUnsupportedVersion(t *testing.T) {
	raw := "GET / HTTP/1.2\r\n\r\n"
	_, err := ParseRequest(strings.NewReader(raw))
	require.Error(t, err)

	perr, ok := err.(*ParseError)
	require.True(t, ok)
	require.Equal(t, ErrUnsupportedVersion, perr.Kind)
}

func TestParseRequestRejectsUnknownMethod(t *testing.T) {
	raw := "FROB / HTTP/1.1\r\n\r\n"
	_, err := ParseRequest(strings.NewReader(raw))
	require.Error(t, err)

	perr, ok := err.(*ParseError)
	require.True(t, ok)
	require.Equal(t, ErrInvalidMethod, perr.Kind)
}

func TestParseRequestBodyTooShortIsFatal(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\nshort"
	_, err := ParseRequest(strings.NewReader(raw))
	require.Error(t, err)

	perr, ok := err.(*ParseError)
	require.True(t, ok)
	require.Equal(t, ErrBodyTooShort, perr.Kind)
}

func TestWriteResponseStampsContentLength(t *testing.T) {
	resp := NewResponse(StatusOK).Text(StatusOK, "hello")

	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, resp))

	out := buf.String()
	require.Contains(t, out, "HTTP/1.1 200 OK")
	require.Contains(t, out, "Content-Length: 5")
	require.Contains(t, out, "hello")
}

func TestWriteResponseNoBodyOmitsContentLength(t *testing.T) {
	resp := NewResponse(StatusNoContent)

	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, resp))

	require.NotContains(t, buf.String(), "Content-Length")
}

func TestParseThenWriteCarriesRouteIntoBody(t *testing.T) {
	raw := "GET /hello HTTP/1.1\r\nHost: example\r\n\r\n"
	req, err := ParseRequest(strings.NewReader(raw))
	require.NoError(t, err)

	resp := NewResponse(StatusOK).Text(StatusOK, req.Route)

	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, resp))
	require.Contains(t, buf.String(), "/hello")
}
