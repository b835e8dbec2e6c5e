// Package router implements literal-plus-parametric path matching: routes
// are compiled into a static/dynamic table as they are registered, and resolution
// walks that table in registration order, returning the first match.
package router

import (
	"strings"

	"github.com/curol/wisp/httpcore"
	"github.com/curol/wisp/middleware"
)

// Kind tags whether a route's terminal handler speaks plain HTTP or
// upgrades the connection to WebSocket.
type Kind int

const (
	KindHTTP Kind = iota
	KindWebSocket
)

// HTTPHandler produces the response for an ordinary route.
type HTTPHandler[State any] func(state State, req *httpcore.Request) (*httpcore.Response, error)

// WSHandler drives a WebSocket session after a successful upgrade. Conn is
// any type capable of framing messages over the hijacked stream - the
// router package doesn't depend on the websocket engine's concrete type so
// it stays free of that import; server wires the two together.
type WSHandler[State any, Conn any] func(state State, req *httpcore.Request, conn Conn) error

// segment is one compiled path-template component: either a literal that
// must match byte-for-byte, or a capture that binds the request's segment
// under name.
type segment struct {
	literal   string
	isCapture bool
	name      string
}

// Route is one registered (template, method, handler) tuple plus its own
// middleware list and compiled segments. Two routes are distinguished
// purely by insertion order: the registrar is responsible for registering
// more specific templates before more general overlapping ones.
type Route[State any, Conn any] struct {
	Template    string
	Method      httpcore.Method
	Kind        Kind
	HTTP        HTTPHandler[State]
	WS          WSHandler[State, Conn]
	Middlewares []middleware.Middleware[State]

	segments []segment
	dynamic  bool
}

// NewHTTPRoute compiles template and returns a Route wired to an HTTP
// handler.
func NewHTTPRoute[State any, Conn any](method httpcore.Method, template string, handler HTTPHandler[State], mws ...middleware.Middleware[State]) *Route[State, Conn] {
	r := &Route[State, Conn]{Template: template, Method: method, Kind: KindHTTP, HTTP: handler, Middlewares: mws}
	r.compile()
	return r
}

// NewWSRoute compiles template and returns a Route wired to a WebSocket
// handler. The request method for a WebSocket upgrade is always GET.
func NewWSRoute[State any, Conn any](template string, handler WSHandler[State, Conn], mws ...middleware.Middleware[State]) *Route[State, Conn] {
	r := &Route[State, Conn]{Template: template, Method: httpcore.GET, Kind: KindWebSocket, WS: handler, Middlewares: mws}
	r.compile()
	return r
}

// compile classifies the template as static or dynamic: a route is
// dynamic iff at least one segment begins with ":", in which case that
// segment's index and capture name (the text after ":") are recorded.
func (r *Route[State, Conn]) compile() {
	parts := strings.Split(r.Template, "/")
	r.segments = make([]segment, len(parts))
	for i, part := range parts {
		if strings.HasPrefix(part, ":") {
			r.segments[i] = segment{isCapture: true, name: part[1:]}
			r.dynamic = true
		} else {
			r.segments[i] = segment{literal: part}
		}
	}
}

// matches reports whether route segments are compatible with the request
// path's segments, and if so returns the captures produced along the way.
func (r *Route[State, Conn]) matches(requestSegments []string) (captures map[string]string, ok bool) {
	if len(r.segments) != len(requestSegments) {
		return nil, false
	}

	captures = make(map[string]string)
	for i, seg := range r.segments {
		if seg.isCapture {
			captures[seg.name] = requestSegments[i]
			continue
		}
		if seg.literal != requestSegments[i] {
			return nil, false
		}
	}
	return captures, true
}

// Router holds the compiled route table plus the fallback routes every
// resolution ultimately falls back to.
type Router[State any, Conn any] struct {
	routes           []*Route[State, Conn]
	notFound         *Route[State, Conn]
	methodNotAllowed *Route[State, Conn]
}

// New returns a Router with the given not-found and method-not-allowed
// fallbacks. Both are themselves ordinary routes with empty capture sets.
func New[State any, Conn any](notFound, methodNotAllowed *Route[State, Conn]) *Router[State, Conn] {
	return &Router[State, Conn]{notFound: notFound, methodNotAllowed: methodNotAllowed}
}

// Register appends route to the table. Registration order is the match
// order: more specific overlapping templates must be registered first.
func (rt *Router[State, Conn]) Register(route *Route[State, Conn]) {
	rt.routes = append(rt.routes, route)
}

// SetNotFound replaces the route returned when no registered template
// matches the request's path.
func (rt *Router[State, Conn]) SetNotFound(route *Route[State, Conn]) {
	rt.notFound = route
}

// SetMethodNotAllowed replaces the route returned when a request's path
// matches a registered template but its method does not.
func (rt *Router[State, Conn]) SetMethodNotAllowed(route *Route[State, Conn]) {
	rt.methodNotAllowed = route
}

// Resolve walks the table in registration order and returns the first
// route whose path matches request.Route. If that route's method doesn't
// equal the request's, the method-not-allowed fallback is returned
// instead (the path match still short-circuits the search). If nothing
// matches by path, the not-found fallback is returned. On a genuine
// match, request.Params is extended with the route's captures.
func (rt *Router[State, Conn]) Resolve(req *httpcore.Request) *Route[State, Conn] {
	requestSegments := strings.Split(req.Route, "/")

	for _, route := range rt.routes {
		captures, ok := route.matches(requestSegments)
		if !ok {
			continue
		}

		if route.Method != req.Method {
			return rt.methodNotAllowed
		}

		for k, v := range captures {
			req.Params[k] = v
		}
		return route
	}

	return rt.notFound
}
