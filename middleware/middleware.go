// Package middleware implements the ordered-composition pipeline every
// request runs through before its handler is invoked: global middlewares
// followed by the matched route's own, stopping at the first Abort.
package middleware

import "github.com/curol/wisp/httpcore"

// Result is what a Middleware returns after observing (and possibly
// mutating) a request: either Continue, letting the pipeline advance, or
// Abort, which short-circuits it and supplies the response.
type Result struct {
	aborted  bool
	response *httpcore.Response
}

// Continue lets the pipeline proceed to the next middleware or handler.
func Continue() Result { return Result{} }

// Abort stops the pipeline; resp becomes the final response and the
// handler is never called.
func Abort(resp *httpcore.Response) Result {
	return Result{aborted: true, response: resp}
}

// Middleware observes, may mutate req.Params, and decides whether the
// pipeline should continue. State is the cheap, shared-ownership handle
// every handler in the same server receives.
type Middleware[State any] func(state State, req *httpcore.Request) Result

// Run executes mws in order against req, returning the first Abort
// response it hits. aborted is false when every middleware continued, meaning
// the caller should proceed to the handler.
func Run[State any](mws []Middleware[State], state State, req *httpcore.Request) (resp *httpcore.Response, aborted bool) {
	for _, mw := range mws {
		result := mw(state, req)
		if result.aborted {
			return result.response, true
		}
	}
	return nil, false
}
