package httpcore

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/curol/wisp/header"
	"github.com/curol/wisp/query"
)

// version is the only HTTP version this codec accepts, on both the request
// line it parses and the status line it writes.
const version = "HTTP/1.1"

// ParseRequest reads exactly one HTTP/1.1 request off r: the header block
// terminated by CRLF-CRLF, then a Content-Length-delimited body if one was
// advertised. It returns a fully constructed Request or a typed ParseError
// - there is no partially-built result on the error path.
func ParseRequest(r io.Reader) (*Request, error) {
	headerBlock, err := readHeaderBlock(r)
	if err != nil {
		return nil, err
	}
	if len(headerBlock) == 0 {
		return nil, &ParseError{Kind: ErrEmpty}
	}

	lines := strings.Split(string(headerBlock), "\r\n")

	method, target, err := parseRequestLine(lines[0])
	if err != nil {
		return nil, err
	}

	headers := header.New(nil)
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		name, value, found := strings.Cut(line, ": ")
		if !found {
			return nil, &ParseError{Kind: ErrInvalidHeader}
		}
		headers.Set(name, value)
	}

	var body []byte
	hasBody := false
	if n, ok := headers.ContentLength(); ok {
		body, err = readExactly(r, n)
		if err != nil {
			return nil, err
		}
		hasBody = true
	}

	route, queryParams := query.Split(target)

	req := NewRequest(method, target, route, headers, body, hasBody)
	for k, v := range queryParams {
		req.Params[k] = v
	}

	return req, nil
}

// parseRequestLine splits "METHOD SP TARGET SP VERSION" on at most three
// single-space tokens and validates the method and version.
func parseRequestLine(line string) (Method, string, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) == 0 || parts[0] == "" {
		return "", "", &ParseError{Kind: ErrInvalidMethod, Received: ""}
	}

	method, ok := ParseMethod(parts[0])
	if !ok {
		return "", "", &ParseError{Kind: ErrInvalidMethod, Received: parts[0]}
	}

	if len(parts) < 2 || parts[1] == "" {
		return "", "", &ParseError{Kind: ErrNoURI}
	}
	target := parts[1]

	if len(parts) < 3 || parts[2] != version {
		return "", "", &ParseError{Kind: ErrUnsupportedVersion}
	}

	return method, target, nil
}

// readHeaderBlock reads bytes one at a time, maintaining a 4-byte sliding
// window, until the window equals CRLF-CRLF. The bytes preceding the
// delimiter are returned. EOF before the delimiter is seen is an Empty
// error, matching the "no partial request ever escapes" invariant.
func readHeaderBlock(r io.Reader) ([]byte, error) {
	var total []byte
	var window [4]byte
	single := make([]byte, 1)

	for {
		n, err := r.Read(single)
		if n == 0 {
			if err == io.EOF {
				return nil, &ParseError{Kind: ErrEmpty}
			}
			if err != nil {
				return nil, ioErr(err)
			}
			continue
		}

		total = append(total, single[0])
		window[0], window[1], window[2], window[3] = window[1], window[2], window[3], single[0]

		if window == [4]byte{'\r', '\n', '\r', '\n'} {
			return total[:len(total)-4], nil
		}

		if err != nil {
			if err == io.EOF {
				return nil, &ParseError{Kind: ErrEmpty}
			}
			return nil, ioErr(err)
		}
	}
}

// readExactly reads precisely n bytes from r. A short read before n bytes
// have arrived is fatal: BodyTooShort.
func readExactly(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	got, err := io.ReadFull(r, buf)
	if err != nil {
		if got != n {
			return nil, &ParseError{Kind: ErrBodyTooShort, Expected: n, Got: got}
		}
		return nil, ioErr(err)
	}
	return buf, nil
}

// WriteResponse serializes resp onto w. When a body is present its length
// overwrites any existing Content-Length header; when absent, no
// Content-Length header is emitted at all. A trailing CRLF follows the
// body unconditionally - this is non-standard but matches the framing a
// naive client expects from this server, and is preserved deliberately
// rather than "fixed" to match stricter HTTP/1.1 writers.
func WriteResponse(w io.Writer, resp *Response) error {
	headers := resp.Headers.Clone()
	if headers == nil {
		headers = header.New(nil)
	}

	if resp.HasBody {
		headers.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	} else {
		headers.Del("Content-Length")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d %s\r\n", version, resp.Status.Code, resp.Status.Reason)
	for _, k := range sortedKeys(headers) {
		fmt.Fprintf(&b, "%s: %s\r\n", k, headers[k])
	}
	b.WriteString("\r\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if resp.HasBody {
		if _, err := w.Write(resp.Body); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}

func sortedKeys(h header.Map) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
