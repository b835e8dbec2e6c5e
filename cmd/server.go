// Command server is the embedding application demonstrating wisp: an
// atomic hello counter, an echo endpoint, a captured path parameter, an
// auth middleware, a custom not-found fallback, and a WebSocket echo.
package main

import (
	"fmt"
	"sync/atomic"

	"github.com/curol/wisp/httpcore"
	"github.com/curol/wisp/middleware"
	"github.com/curol/wisp/server"
	"github.com/curol/wisp/websocket"
)

// appState is the shared handle every handler receives. hello is mutated
// from concurrent connections, so it's an atomic rather than a plain int.
type appState struct {
	hello atomic.Int64
}

func main() {
	state := &appState{}
	s := server.New(state, &server.Config{Address: ":8080"})

	s.GET("/hello", helloHandler)
	s.POST("/echo", echoHandler)
	s.GET("/person/:id/info", personHandler)
	s.GET("/only/with/auth", authOnlyHandler, requireAuth)
	s.WebSocket("/ws", echoWebSocket)
	s.NotFound(notFoundHandler)

	if err := s.ListenAndServe(); err != nil {
		panic(err)
	}
}

func helloHandler(state *appState, req *httpcore.Request) (*httpcore.Response, error) {
	n := state.hello.Add(1)
	return httpcore.NewResponse(httpcore.StatusOK).Text(httpcore.StatusOK, fmt.Sprintf("Hello %d", n)), nil
}

// echoHandler reflects every request header onto the response and writes
// the body back unchanged.
func echoHandler(state *appState, req *httpcore.Request) (*httpcore.Response, error) {
	resp := httpcore.NewResponse(httpcore.StatusOK).Bytes(httpcore.StatusOK, req.Body)
	for k, v := range req.Headers {
		resp.SetHeader(k, v)
	}
	return resp, nil
}

func personHandler(state *appState, req *httpcore.Request) (*httpcore.Response, error) {
	id, _ := req.Param("id")
	return httpcore.NewResponse(httpcore.StatusOK).Text(httpcore.StatusOK, fmt.Sprintf("Hello Person %s", id)), nil
}

func requireAuth(state *appState, req *httpcore.Request) middleware.Result {
	if _, ok := req.Headers.Get("auth"); !ok {
		return middleware.Abort(httpcore.NewResponse(httpcore.StatusForbidden).Text(httpcore.StatusForbidden, "Not logged in"))
	}
	return middleware.Continue()
}

func authOnlyHandler(state *appState, req *httpcore.Request) (*httpcore.Response, error) {
	return httpcore.NewResponse(httpcore.StatusOK).Text(httpcore.StatusOK, "Requsted by user: user1"), nil
}

func notFoundHandler(state *appState, req *httpcore.Request) (*httpcore.Response, error) {
	return httpcore.NewResponse(httpcore.StatusNotFound).Text(httpcore.StatusNotFound, "nothing here"), nil
}

// echoWebSocket reflects every Text/Bytes message back to the sender and
// exits cleanly once the peer closes.
func echoWebSocket(state *appState, req *httpcore.Request, conn *websocket.Conn) error {
	for {
		msg, err := conn.Recv()
		if err != nil {
			return err
		}
		switch msg.Kind {
		case websocket.KindClose:
			return nil
		case websocket.KindText:
			if err := conn.Send(msg); err != nil {
				return err
			}
		case websocket.KindBytes:
			if err := conn.Send(msg); err != nil {
				return err
			}
		}
	}
}
