// Package server implements the dispatcher side of the remote file-call
// relay (components C6/C7): one goroutine per accepted connection, each
// owning its own receive buffer and its own table of kernel file handles
// opened on behalf of that client.
package server

import (
	"context"
	"net"

	"github.com/sirupsen/logrus"
)

// Server accepts connections and spawns an isolated worker per client.
// Workers never share mutable state with each other, matching spec.md §4.7
// and §5: a slow or stuck client cannot block progress on another.
type Server struct {
	log logrus.FieldLogger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a logger for connect/disconnect and dispatch
// diagnostics. Defaults to logrus's standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) { s.log = log }
}

// New constructs a Server.
func New(opts ...Option) *Server {
	s := &Server{log: logrus.StandardLogger()}
	for _, fn := range opts {
		fn(s)
	}
	return s
}

// Serve accepts connections on ln until ctx is done or Accept fails fatally.
// Each accepted connection is handled in its own goroutine, the Go
// equivalent of the source's process-per-client worker.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return err
			}
		}
		go s.serveConn(conn)
	}
}

// serveConn runs one client's receive-decode-dispatch-encode-send loop
// until the peer closes or a fatal transport/decode error occurs.
func (s *Server) serveConn(conn net.Conn) {
	entry := s.log.WithField("remote", conn.RemoteAddr())
	entry.Info("client connected")

	w := newWorker(conn, entry)
	defer w.close()

	if err := w.run(); err != nil {
		entry.WithError(err).Warn("connection terminated")
		return
	}
	entry.Info("client disconnected")
}
