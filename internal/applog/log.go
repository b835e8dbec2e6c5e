// Package applog wraps zap with the small logging surface the server loop
// needs: per-connection status lines and fatal startup errors. Kept as an
// interface, the way the teacher's server package did, so tests can swap in
// a no-op implementation without dragging zap's config into them.
package applog

import (
	"go.uber.org/zap"
)

// Log is the logging surface the server loop depends on.
type Log interface {
	// Accepted records that a connection was accepted and handed to a
	// worker.
	Accepted(workerName, remoteAddr string)
	// Request records the method/route a worker resolved for a
	// connection.
	Request(workerName string, method, route string)
	// Error records a failure associated with a worker: a write error, a
	// handler error, or the accept loop itself returning.
	Error(workerName string, err error)
}

type zapLog struct {
	z *zap.Logger
}

// New returns a production zap.Logger wrapped as a Log.
func New() Log {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return &zapLog{z: z}
}

// NewNop returns a Log that discards everything, for tests.
func NewNop() Log {
	return &zapLog{z: zap.NewNop()}
}

func (l *zapLog) Accepted(workerName, remoteAddr string) {
	l.z.Info("connection accepted", zap.String("worker", workerName), zap.String("remote_addr", remoteAddr))
}

func (l *zapLog) Request(workerName string, method, route string) {
	l.z.Info("request resolved", zap.String("worker", workerName), zap.String("method", method), zap.String("route", route))
}

func (l *zapLog) Error(workerName string, err error) {
	l.z.Error("connection error", zap.String("worker", workerName), zap.Error(err))
}
