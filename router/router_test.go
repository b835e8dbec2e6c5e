package router

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curol/wisp/header"
	"github.com/curol/wisp/httpcore"
)

type nopConn struct{}

func newTestRequest(method httpcore.Method, route string) *httpcore.Request {
	return httpcore.NewRequest(method, route, route, header.New(nil), nil, false)
}

func okHandler(state struct{}, req *httpcore.Request) (*httpcore.Response, error) {
	return httpcore.NewResponse(httpcore.StatusOK), nil
}

func newTestRouter() *Router[struct{}, *nopConn] {
	notFound := NewHTTPRoute[struct{}, *nopConn](httpcore.GET, "", func(struct{}, *httpcore.Request) (*httpcore.Response, error) {
		return httpcore.NewResponse(httpcore.StatusNotFound), nil
	})
	methodNotAllowed := NewHTTPRoute[struct{}, *nopConn](httpcore.GET, "", func(struct{}, *httpcore.Request) (*httpcore.Response, error) {
		return httpcore.NewResponse(httpcore.StatusMethodNotAllowed), nil
	})
	return New[struct{}, *nopConn](notFound, methodNotAllowed)
}

func TestResolveStaticRoute(t *testing.T) {
	rt := newTestRouter()
	route := NewHTTPRoute[struct{}, *nopConn](httpcore.GET, "/hello", okHandler)
	rt.Register(route)

	req := newTestRequest(httpcore.GET, "/hello")
	resolved := rt.Resolve(req)
	require.Same(t, route, resolved)
}

func TestResolveCapturesParametricSegment(t *testing.T) {
	rt := newTestRouter()
	route := NewHTTPRoute[struct{}, *nopConn](httpcore.GET, "/person/:id/info", okHandler)
	rt.Register(route)

	req := newTestRequest(httpcore.GET, "/person/42/info")
	resolved := rt.Resolve(req)
	require.Same(t, route, resolved)

	id, ok := req.Param("id")
	require.True(t, ok)
	require.Equal(t, "42", id)
}

func TestResolveDoesNotMatchDifferentSegmentCount(t *testing.T) {
	rt := newTestRouter()
	route := NewHTTPRoute[struct{}, *nopConn](httpcore.GET, "/person/:id/info", okHandler)
	rt.Register(route)

	for _, path := range []string{"/person/1/info/extra", "/person/1"} {
		req := newTestRequest(httpcore.GET, path)
		resolved := rt.Resolve(req)
		require.Equal(t, httpcore.StatusNotFound.Code, mustStatus(t, resolved))
	}
}

func TestResolveMethodMismatchReturnsMethodNotAllowed(t *testing.T) {
	rt := newTestRouter()
	route := NewHTTPRoute[struct{}, *nopConn](httpcore.GET, "/hello", okHandler)
	rt.Register(route)

	req := newTestRequest(httpcore.POST, "/hello")
	resolved := rt.Resolve(req)
	require.Equal(t, httpcore.StatusMethodNotAllowed.Code, mustStatus(t, resolved))
}

func TestResolveNoMatchReturnsNotFound(t *testing.T) {
	rt := newTestRouter()
	req := newTestRequest(httpcore.GET, "/nowhere")
	resolved := rt.Resolve(req)
	require.Equal(t, httpcore.StatusNotFound.Code, mustStatus(t, resolved))
}

func TestResolveFirstMatchWinsOnOverlap(t *testing.T) {
	rt := newTestRouter()
	specific := NewHTTPRoute[struct{}, *nopConn](httpcore.GET, "/a/fixed", okHandler)
	general := NewHTTPRoute[struct{}, *nopConn](httpcore.GET, "/a/:x", okHandler)
	rt.Register(specific)
	rt.Register(general)

	req := newTestRequest(httpcore.GET, "/a/fixed")
	resolved := rt.Resolve(req)
	require.Same(t, specific, resolved)
}

func mustStatus(t *testing.T, route *Route[struct{}, *nopConn]) int {
	t.Helper()
	resp, err := route.HTTP(struct{}{}, nil)
	require.NoError(t, err)
	return resp.Status.Code
}
