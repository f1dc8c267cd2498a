/*
Package rpc exposes the behavior engine to the shell over JSON-RPC 2.0.

Two transports share one dispatcher: line-delimited JSON on stdio and
text frames on a WebSocket endpoint. Every engine call goes through a
single mutex, so clients on either transport see a consistent engine.

Methods:
  - recordAction: record a UserAction
  - recordRejection: note a dismissed suggestion for an app
  - generateComment: pick commentary for an action
  - shouldShowHelper / shouldShowSystemDialog: pop-up decisions
  - getPredictions / getSortedApps / getDebugInfo: read-only queries
  - initialize / ping: handshake and liveness
*/
package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/khanglvm/retroos-brain/internal/brain"
	"github.com/khanglvm/retroos-brain/internal/version"
)

// maxLineSize bounds a single stdio request.
const maxLineSize = 1 << 20

// Journal receives every action recorded through the server.
type Journal interface {
	Track(action brain.UserAction)
}

// Server dispatches JSON-RPC requests into an engine.
type Server struct {
	engine      *brain.Engine
	mu          sync.Mutex
	journal     Journal
	displayName string
	clock       brain.Clock
	logger      *zap.Logger
	conns       connSet
}

// Option configures a Server.
type Option func(*Server)

// WithJournal copies recorded actions into j.
func WithJournal(j Journal) Option {
	return func(s *Server) { s.journal = j }
}

// WithDisplayName sets the name used when a generateComment call omits one.
func WithDisplayName(name string) Option {
	return func(s *Server) { s.displayName = name }
}

// WithClock sets the clock used to stamp actions sent without a timestamp.
func WithClock(c brain.Clock) Option {
	return func(s *Server) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a server in front of engine.
func NewServer(engine *brain.Engine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		clock:  brain.SystemClock,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve reads line-delimited requests from r and writes one response line
// per request to w. It returns when r is exhausted or ctx is done.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	bw := bufio.NewWriter(w)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if len(line) == 0 {
				continue
			}

			resp := s.Handle(line)
			if resp == nil {
				continue
			}
			if err := writeResponse(bw, resp); err != nil {
				return err
			}
		}
	}
}

func writeResponse(w *bufio.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return w.Flush()
}

// Handle processes one raw request. It returns nil for notifications.
func (s *Server) Handle(data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse(nil, CodeParseError, fmt.Sprintf("invalid JSON-RPC request: %v", err))
	}
	if req.Method == "" {
		return errorResponse(req.ID, CodeInvalidRequest, "missing method")
	}

	s.logger.Debug("rpc request", zap.String("method", req.Method))

	result, rpcErr := s.dispatch(&req)
	if req.ID == nil {
		return nil
	}
	if rpcErr != nil {
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: rpcErr}
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *Server) dispatch(req *Request) (interface{}, *Error) {
	switch req.Method {
	case "initialize":
		return s.handleInitialize()
	case "ping":
		return struct{}{}, nil
	}

	// Everything else touches the engine.
	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Method {
	case "recordAction":
		return s.handleRecordAction(req.Params)
	case "recordRejection":
		return s.handleRecordRejection(req.Params)
	case "generateComment":
		return s.handleGenerateComment(req.Params)
	case "shouldShowHelper":
		return HelperResult{Show: s.engine.ShouldShowHelper()}, nil
	case "shouldShowSystemDialog":
		return s.handleSystemDialog()
	case "getPredictions":
		return PredictionsResult{Predictions: s.engine.GetPredictions()}, nil
	case "getSortedApps":
		return s.handleSortedApps(req.Params)
	case "getDebugInfo":
		return s.engine.DebugInfo(), nil
	default:
		return nil, &Error{Code: CodeMethodNotFound, Message: "Method not found"}
	}
}

func (s *Server) handleInitialize() (interface{}, *Error) {
	return InitializeResult{
		ServerInfo: version.Current(),
		Methods:    Methods(),
	}, nil
}

func errorResponse(id interface{}, code int, msg string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: msg},
	}
}
