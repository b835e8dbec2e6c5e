// Package server wires the router, middleware pipeline, and HTTP/WebSocket
// codecs into a running listener: accept a connection, hand it to a fresh
// goroutine, parse, resolve, run the pipeline, dispatch, write.
package server

import (
	"fmt"
	"net"
	"sync/atomic"

	"github.com/curol/wisp/httpcore"
	"github.com/curol/wisp/internal/applog"
	"github.com/curol/wisp/middleware"
	"github.com/curol/wisp/router"
	"github.com/curol/wisp/websocket"
)

// conn is the WebSocket connection type every Server instantiates its
// router with. Handlers never see this alias directly; it exists so the
// server package is the one place that ties router.WSHandler's generic
// Conn parameter to a concrete type.
type conn = *websocket.Conn

// ErrorHandler turns a handler-returned error into the response actually
// written to the client. It must always produce something - there is no
// error path out of an error handler.
type ErrorHandler func(err error) *httpcore.Response

// Inspector observes the final response after dispatch, before it's
// written to the wire. It cannot abort, and must not mutate the response,
// which is written as it stands once the inspector returns - purely for
// things like metrics and structured logging.
type Inspector func(resp *httpcore.Response)

func defaultErrorHandler(err error) *httpcore.Response {
	return httpcore.NewResponse(httpcore.StatusInternalError).
		Text(httpcore.StatusInternalError, err.Error())
}

func defaultNotFound[State any](_ State, _ *httpcore.Request) (*httpcore.Response, error) {
	return httpcore.NewResponse(httpcore.StatusNotFound).Text(httpcore.StatusNotFound, "not found"), nil
}

func defaultMethodNotAllowed[State any](_ State, _ *httpcore.Request) (*httpcore.Response, error) {
	return httpcore.NewResponse(httpcore.StatusMethodNotAllowed).Text(httpcore.StatusMethodNotAllowed, "method not allowed"), nil
}

// Server holds everything a worker needs, cloned by reference into every
// goroutine it spawns: the compiled route table, the state handle, the
// global middleware list, the fallback routes, the error handler, and the
// inspector. None of these are mutated once ListenAndServe is running.
type Server[State any] struct {
	config Config
	state  State
	router *router.Router[State, conn]

	globalMiddlewares []middleware.Middleware[State]
	errorHandler      ErrorHandler
	inspector         Inspector

	log applog.Log

	listener net.Listener
	nextConn atomic.Int64
}

// New returns a Server carrying state, with default fallback routes, a
// default error handler, and a no-op inspector. Register routes and
// middleware, then call ListenAndServe.
func New[State any](state State, options *Config) *Server[State] {
	notFound := router.NewHTTPRoute[State, conn](httpcore.GET, "", defaultNotFound[State])
	methodNotAllowed := router.NewHTTPRoute[State, conn](httpcore.GET, "", defaultMethodNotAllowed[State])

	return &Server[State]{
		config:       NewConfig(options),
		state:        state,
		router:       router.New[State, conn](notFound, methodNotAllowed),
		errorHandler: defaultErrorHandler,
		inspector:    func(*httpcore.Response) {},
		log:          applog.New(),
	}
}

// WithLog overrides the default zap-backed logger, e.g. with
// applog.NewNop() in tests.
func (s *Server[State]) WithLog(log applog.Log) *Server[State] {
	s.log = log
	return s
}

func (s *Server[State]) handle(method httpcore.Method, path string, handler router.HTTPHandler[State], mws ...middleware.Middleware[State]) {
	s.router.Register(router.NewHTTPRoute[State, conn](method, path, handler, mws...))
}

// GET, POST, PUT, DELETE, and PATCH each register an HTTP route under the
// matching method.
func (s *Server[State]) GET(path string, handler router.HTTPHandler[State], mws ...middleware.Middleware[State]) {
	s.handle(httpcore.GET, path, handler, mws...)
}

func (s *Server[State]) POST(path string, handler router.HTTPHandler[State], mws ...middleware.Middleware[State]) {
	s.handle(httpcore.POST, path, handler, mws...)
}

func (s *Server[State]) PUT(path string, handler router.HTTPHandler[State], mws ...middleware.Middleware[State]) {
	s.handle(httpcore.PUT, path, handler, mws...)
}

func (s *Server[State]) DELETE(path string, handler router.HTTPHandler[State], mws ...middleware.Middleware[State]) {
	s.handle(httpcore.DELETE, path, handler, mws...)
}

func (s *Server[State]) PATCH(path string, handler router.HTTPHandler[State], mws ...middleware.Middleware[State]) {
	s.handle(httpcore.PATCH, path, handler, mws...)
}

// WebSocket registers a route whose handler drives an upgraded connection
// instead of returning an HTTP response.
func (s *Server[State]) WebSocket(path string, handler router.WSHandler[State, conn], mws ...middleware.Middleware[State]) {
	s.router.Register(router.NewWSRoute[State, conn](path, handler, mws...))
}

// Use appends a global middleware, run ahead of every route's own on every
// request.
func (s *Server[State]) Use(mw middleware.Middleware[State]) {
	s.globalMiddlewares = append(s.globalMiddlewares, mw)
}

// NotFound replaces the fallback invoked when no route matches the
// request's path.
func (s *Server[State]) NotFound(handler router.HTTPHandler[State], mws ...middleware.Middleware[State]) {
	s.router.SetNotFound(router.NewHTTPRoute[State, conn](httpcore.GET, "", handler, mws...))
}

// MethodNotAllowed replaces the fallback invoked when a route matches by
// path but not by method.
func (s *Server[State]) MethodNotAllowed(handler router.HTTPHandler[State], mws ...middleware.Middleware[State]) {
	s.router.SetMethodNotAllowed(router.NewHTTPRoute[State, conn](httpcore.GET, "", handler, mws...))
}

// OnError replaces the default error handler.
func (s *Server[State]) OnError(h ErrorHandler) {
	s.errorHandler = h
}

// Inspect replaces the default no-op inspector.
func (s *Server[State]) Inspect(i Inspector) {
	s.inspector = i
}

// ListenAndServe binds the configured address and blocks, accepting
// connections until the listener fails. Each accepted connection is
// handed to its own goroutine - Go's scheduler-level stand-in for the
// one-OS-thread-per-connection model this design assumes, since Go does
// not hand out raw OS threads to callers.
func (s *Server[State]) ListenAndServe() error {
	listener, err := net.Listen(s.config.Network, s.config.Address)
	if err != nil {
		s.log.Error("listener", err)
		return err
	}
	s.listener = listener
	defer s.listener.Close()

	for {
		c, err := listener.Accept()
		if err != nil {
			s.log.Error("listener", err)
			return err
		}

		id := s.nextConn.Add(1)
		name := fmt.Sprintf("worker-%d-%s", id, c.RemoteAddr().String())
		go s.serve(name, c)
	}
}
