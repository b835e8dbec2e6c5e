package server

import (
	"net"
	"time"

	"github.com/curol/wisp/httpcore"
	"github.com/curol/wisp/middleware"
	"github.com/curol/wisp/router"
	"github.com/curol/wisp/websocket"
)

// serve runs the full per-connection pipeline described by the server
// loop: parse, resolve, run middleware, dispatch to the matched handler,
// funnel errors through the error handler, inspect, write.
func (s *Server[State]) serve(name string, c net.Conn) {
	defer c.Close()

	if s.config.ReadDeadline != 0 {
		if err := c.SetDeadline(time.Now().Add(s.config.ReadDeadline)); err != nil {
			s.log.Error(name, err)
			return
		}
	}

	s.log.Accepted(name, c.RemoteAddr().String())

	req, err := httpcore.ParseRequest(c)
	if err != nil {
		resp := httpcore.NewResponse(httpcore.StatusBadRequest).Text(httpcore.StatusBadRequest, err.Error())
		s.write(name, c, s.finalize(resp))
		return
	}

	route := s.router.Resolve(req)
	s.log.Request(name, string(req.Method), req.Route)

	mws := make([]middleware.Middleware[State], 0, len(s.globalMiddlewares)+len(route.Middlewares))
	mws = append(mws, s.globalMiddlewares...)
	mws = append(mws, route.Middlewares...)

	if resp, aborted := middleware.Run(mws, s.state, req); aborted {
		s.write(name, c, s.finalize(resp))
		return
	}

	if route.Kind == router.KindWebSocket {
		s.serveWebSocket(name, c, route, req)
		return
	}

	resp, err := route.HTTP(s.state, req)
	if err != nil {
		resp = s.errorHandler(err)
	}
	s.write(name, c, s.finalize(resp))
}

// serveWebSocket performs the upgrade handshake directly on the wire,
// then hands the caller's handler a live Conn. A failed validation gets a
// 400 through the usual finalize/write path; on success the 101 reply,
// written by WriteUpgradeResponse, is the only HTTP output, and the
// inspector and final response write are skipped.
func (s *Server[State]) serveWebSocket(name string, c net.Conn, route *router.Route[State, conn], req *httpcore.Request) {
	acceptKey, err := websocket.ValidateUpgrade(req)
	if err != nil {
		resp := httpcore.NewResponse(httpcore.StatusBadRequest).Text(httpcore.StatusBadRequest, err.Error())
		s.write(name, c, s.finalize(resp))
		return
	}

	if err := websocket.WriteUpgradeResponse(c, acceptKey); err != nil {
		s.log.Error(name, err)
		return
	}

	ws := websocket.NewConn(c)
	s.log.Request(ws.ID, string(req.Method), req.Route)
	if err := route.WS(s.state, req, ws); err != nil {
		s.log.Error(ws.ID, err)
	}
}

func (s *Server[State]) finalize(resp *httpcore.Response) *httpcore.Response {
	s.inspector(resp)
	return resp
}

func (s *Server[State]) write(name string, c net.Conn, resp *httpcore.Response) {
	if err := httpcore.WriteResponse(c, resp); err != nil {
		s.log.Error(name, err)
	}
}
