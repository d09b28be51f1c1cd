// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/museum/lib/codec"
	"github.com/bureau-foundation/museum/lib/fault"
)

// ActionFunc processes a socket request for a specific action. The raw
// parameter is the full CBOR request (including the "action" field);
// the handler decodes its own fields from it.
//
// A nil result produces {ok: true}. A non-nil result is marshaled into
// the response's "data" field.
type ActionFunc func(ctx context.Context, raw []byte) (any, error)

// Response is the wire envelope for every socket response.
type Response struct {
	OK    bool             `cbor:"ok"`
	Error string           `cbor:"error,omitempty"`
	Code  fault.Code       `cbor:"code,omitempty"`
	Data  codec.RawMessage `cbor:"data,omitempty"`
}

// SocketServer serves the request-response protocol on a Unix socket.
// Actions are registered with Handle before calling Serve. Unknown
// actions receive a NotFound response.
type SocketServer struct {
	socketPath string
	handlers   map[string]ActionFunc
	logger     *slog.Logger

	// activeConnections tracks in-flight handlers so Serve can wait
	// for them on shutdown.
	activeConnections sync.WaitGroup

	ready chan struct{}
}

// NewSocketServer creates a server that will listen on socketPath. A
// nil logger discards.
func NewSocketServer(socketPath string, logger *slog.Logger) *SocketServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SocketServer{
		socketPath: socketPath,
		handlers:   make(map[string]ActionFunc),
		logger:     logger,
		ready:      make(chan struct{}),
	}
}

// Handle registers a handler for the given action name. Panics if the
// action is already registered.
func (s *SocketServer) Handle(action string, handler ActionFunc) {
	if _, exists := s.handlers[action]; exists {
		panic(fmt.Sprintf("service.SocketServer: duplicate handler for action %q", action))
	}
	s.handlers[action] = handler
}

// Actions returns the registered action names in no particular order.
func (s *SocketServer) Actions() []string {
	actions := make([]string, 0, len(s.handlers))
	for action := range s.handlers {
		actions = append(actions, action)
	}
	return actions
}

// Ready is closed once Serve is accepting connections.
func (s *SocketServer) Ready() <-chan struct{} {
	return s.ready
}

// Serve accepts connections until ctx is cancelled, then stops
// accepting and waits for active handlers to finish.
//
// Any existing socket file at the configured path is removed before
// listening. The socket file is removed on return.
func (s *SocketServer) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			listener.Close()
		case <-stopped:
		}
	}()

	s.logger.Info("socket server listening", "path", s.socketPath)
	close(s.ready)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

// readTimeout is how long we wait for the client to send its request.
const readTimeout = 30 * time.Second

// writeTimeout is how long we wait for the response to be written.
const writeTimeout = 10 * time.Second

// maxRequestSize bounds one CBOR request. Manifests are the largest
// requests and stay far below this.
const maxRequestSize = 1024 * 1024

func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))

	// CBOR is self-delimiting, so one Decode reads exactly one request.
	var raw codec.RawMessage
	if err := codec.NewDecoder(io.LimitReader(conn, maxRequestSize)).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		s.writeError(conn, fault.Invalid("invalid request: %v", err))
		return
	}

	var header struct {
		Action string `cbor:"action"`
	}
	if err := codec.Unmarshal(raw, &header); err != nil {
		s.writeError(conn, fault.Invalid("invalid request: %v", err))
		return
	}
	if header.Action == "" {
		s.writeError(conn, fault.Invalid("missing required field: action"))
		return
	}

	handler, exists := s.handlers[header.Action]
	if !exists {
		s.writeError(conn, fault.Missing("unknown action %q", header.Action))
		return
	}

	result, err := handler(ctx, []byte(raw))
	if err != nil {
		s.logger.Debug("action failed",
			"action", header.Action,
			"code", fault.CodeOf(err),
			"error", err,
		)
		s.writeError(conn, err)
		return
	}

	s.writeSuccess(conn, result)
}

// writeError sends {ok: false, error, code}. Unclassified errors are
// reported as Internal.
func (s *SocketServer) writeError(conn net.Conn, err error) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	response := Response{OK: false, Code: fault.CodeOf(err), Error: err.Error()}
	if writeErr := codec.NewEncoder(conn).Encode(response); writeErr != nil {
		s.logger.Debug("failed to write error response", "error", writeErr)
	}
}

// writeSuccess sends {ok: true} with the marshaled result in "data"
// when there is one.
func (s *SocketServer) writeSuccess(conn net.Conn, result any) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	response := Response{OK: true}
	if result != nil {
		data, err := codec.Marshal(result)
		if err != nil {
			s.writeError(conn, fmt.Errorf("marshaling response: %w", err))
			return
		}
		response.Data = data
	}

	if err := codec.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Debug("failed to write success response", "error", err)
	}
}
