// Package server answers snapshot requests on the IPC channel.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leandrodaf/midibridge/internal/ipc"
	"github.com/leandrodaf/midibridge/internal/surfacestate"
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

const (
	// DefaultRequestTimeout bounds one round trip so a stalled client cannot
	// hold the only serving slot forever.
	DefaultRequestTimeout = 5 * time.Second

	acceptBackoff = 100 * time.Millisecond

	// maxAcceptFailures consecutive accept errors mean the endpoint is gone.
	maxAcceptFailures = 50
)

// Options configures a Server.
type Options struct {
	// RequestTimeout bounds reading the request byte and writing the reply.
	// Zero means DefaultRequestTimeout; negative disables the deadline.
	RequestTimeout time.Duration
}

// Server serves one connection at a time: read one request byte, reply with
// the serialized state, close.
type Server struct {
	listener ipc.Listener
	state    *surfacestate.Shared
	logger   contracts.Logger
	timeout  time.Duration
	backoff  time.Duration

	closeOnce sync.Once
}

// New builds a Server reading from state. The server takes ownership of listener.
func New(listener ipc.Listener, state *surfacestate.Shared, logger contracts.Logger, opts Options) *Server {
	timeout := opts.RequestTimeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}
	return &Server{
		listener: listener,
		state:    state,
		logger:   logger,
		timeout:  timeout,
		backoff:  acceptBackoff,
	}
}

// Serve accepts and serves connections until ctx is cancelled, then closes
// the listener and returns nil. Failures of a single connection are logged
// and the loop continues. Accept errors are retried with a short backoff;
// after maxAcceptFailures in a row Serve closes the listener and returns an
// error wrapping contracts.ErrConnection.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	s.logger.Info("snapshot server listening", s.logger.Field().String("address", s.listener.Addr()))
	failures := 0
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, ipc.ErrListenerClosed) || ctx.Err() != nil {
				s.logger.Info("snapshot server stopped")
				return nil
			}
			failures++
			if failures >= maxAcceptFailures {
				s.logger.Error("snapshot endpoint unusable; giving up",
					s.logger.Field().Int("consecutive_failures", failures),
					s.logger.Field().Error("error", err))
				s.Close()
				return fmt.Errorf("%w: accept failed %d times in a row: %w", contracts.ErrConnection, failures, err)
			}
			s.logger.Warn("accept failed",
				s.logger.Field().Error("error", err),
				s.logger.Field().String("impact", "clients may fail to connect until the next accept"))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(s.backoff):
			}
			continue
		}
		failures = 0

		requestID := uuid.NewString()
		if err := s.serveConn(conn); err != nil {
			s.logger.Warn("snapshot request failed",
				s.logger.Field().String("request_id", requestID),
				s.logger.Field().Error("error", err))
			continue
		}
		s.logger.Debug("snapshot served", s.logger.Field().String("request_id", requestID))
	}
}

// Close stops the accept loop.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.listener.Close()
	})
	return err
}

func (s *Server) serveConn(conn ipc.Conn) error {
	defer conn.Close()

	if s.timeout > 0 {
		// Synchronous pipe handles cannot take deadlines; they simply block.
		_ = conn.SetDeadline(time.Now().Add(s.timeout))
	}

	var request [1]byte
	if _, err := io.ReadFull(conn, request[:]); err != nil {
		return fmt.Errorf("read request byte: %w", err)
	}

	snapshot := s.state.Serialize()
	if _, err := conn.Write(snapshot); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
