package httpcore

import (
	"encoding/json"

	"github.com/curol/wisp/header"
)

// Response is the builder-assembled value a handler returns. Content-Length
// is never user-settable; the wire codec stamps it at write time based on
// the body's length.
type Response struct {
	Status  StatusCode
	Headers header.Map
	Body    []byte
	HasBody bool
}

// NewResponse returns an empty, bodiless response with the given status.
func NewResponse(status StatusCode) *Response {
	return &Response{Status: status, Headers: header.New(nil)}
}

// Text sets the body to s and stamps Content-Type: text/plain.
func (r *Response) Text(status StatusCode, s string) *Response {
	r.Status = status
	r.Body = []byte(s)
	r.HasBody = true
	r.Headers.Set("Content-Type", "text/plain; charset=utf-8")
	return r
}

// JSON marshals v and stamps Content-Type: application/json. A marshal
// failure degrades to a 500 with the error text as the body - callers that
// need to observe the error should marshal themselves and call Bytes.
func (r *Response) JSON(status StatusCode, v interface{}) *Response {
	b, err := json.Marshal(v)
	if err != nil {
		r.Status = StatusInternalError
		r.Body = []byte(err.Error())
		r.HasBody = true
		r.Headers.Set("Content-Type", "text/plain; charset=utf-8")
		return r
	}
	r.Status = status
	r.Body = b
	r.HasBody = true
	r.Headers.Set("Content-Type", "application/json")
	return r
}

// Bytes sets the response body verbatim without touching Content-Type.
func (r *Response) Bytes(status StatusCode, b []byte) *Response {
	r.Status = status
	r.Body = b
	r.HasBody = len(b) > 0
	return r
}

// SetHeader sets a response header.
func (r *Response) SetHeader(key, value string) *Response {
	r.Headers.Set(key, value)
	return r
}
