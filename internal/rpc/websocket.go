package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// The listener binds to loopback by default and the shell is served from
// an arbitrary origin, so origins are not checked.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// connSet tracks upgraded connections. http.Server.Shutdown does not
// close hijacked connections, so the listener closes them itself.
type connSet struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// add registers conn. It returns false once closeAll has run.
func (c *connSet) add(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	if c.conns == nil {
		c.conns = make(map[*websocket.Conn]struct{})
	}
	c.conns[conn] = struct{}{}
	c.wg.Add(1)
	return true
}

func (c *connSet) remove(conn *websocket.Conn) {
	c.mu.Lock()
	delete(c.conns, conn)
	c.mu.Unlock()
	c.wg.Done()
}

// closeAll closes every tracked connection and waits for their handlers
// to return.
func (c *connSet) closeAll() {
	c.mu.Lock()
	c.closed = true
	for conn := range c.conns {
		_ = conn.Close()
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Handler returns the HTTP handler with the WebSocket endpoint on /ws and
// a liveness check on /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	return mux
}

// ServeWS upgrades the connection and answers one response frame per
// request frame until the client goes away.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	if !s.conns.add(conn) {
		_ = conn.Close()
		return
	}
	defer s.conns.remove(conn)
	defer conn.Close()

	s.logger.Debug("websocket client connected", zap.String("remote", conn.RemoteAddr().String()))

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp := s.Handle(data)
		if resp == nil {
			continue
		}
		out, err := json.Marshal(resp)
		if err != nil {
			s.logger.Warn("failed to marshal response", zap.Error(err))
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			s.logger.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

// ListenAndServe serves Handler on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves Handler on ln until ctx is done. On shutdown the
// listener stops accepting, in-flight HTTP requests drain and open
// WebSocket connections are closed. It returns only after every
// connection handler has returned.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("websocket listener started", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.conns.closeAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.conns.closeAll()
		return err
	}
}
