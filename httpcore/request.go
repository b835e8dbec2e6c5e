package httpcore

import "github.com/curol/wisp/header"

// Request is an immutable (except for Params) view of a parsed HTTP
// request. Route never contains "?"; RawRoute always equals
// Route + ("?" + query) when a query string was present.
type Request struct {
	Method   Method
	RawRoute string
	Route    string
	Headers  header.Map
	Body     []byte
	HasBody  bool

	// Params is populated in three stages: query-string pairs, then
	// route-template captures, then middleware-injected values. Keys
	// beginning with "_" are reserved for middleware-injected values.
	Params map[string]string
}

// NewRequest builds a Request with an initialized, empty Params map.
func NewRequest(method Method, rawRoute, route string, headers header.Map, body []byte, hasBody bool) *Request {
	return &Request{
		Method:   method,
		RawRoute: rawRoute,
		Route:    route,
		Headers:  headers,
		Body:     body,
		HasBody:  hasBody,
		Params:   make(map[string]string),
	}
}

// Param returns a param value and whether it was set.
func (r *Request) Param(key string) (string, bool) {
	v, ok := r.Params[key]
	return v, ok
}

// SetParam injects a value into Params, as middleware does.
func (r *Request) SetParam(key, value string) {
	r.Params[key] = value
}
