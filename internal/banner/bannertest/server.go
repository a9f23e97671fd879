// Package bannertest provides an in-process banner WebSocket server for tests.
package bannertest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Server records every text frame it receives.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	frames   [][]byte
	live     map[*websocket.Conn]struct{}
	handlers sync.WaitGroup
}

// NewServer starts a recording server. Call Close when done.
func NewServer() *Server {
	s := &Server{live: make(map[*websocket.Conn]struct{})}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	s.handlers.Add(1)
	defer s.handlers.Done()

	s.mu.Lock()
	s.live[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.live, conn)
		s.mu.Unlock()
		conn.CloseNow()
	}()

	for {
		typ, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		s.mu.Lock()
		s.frames = append(s.frames, data)
		s.mu.Unlock()
	}
}

// URL returns the ws:// address of the server.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.Server.URL, "http")
}

// Frames returns a copy of the frames received so far.
func (s *Server) Frames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]string, len(s.frames))
	for i, f := range s.frames {
		result[i] = string(f)
	}
	return result
}

// WaitFrames polls until n frames have arrived or the timeout expires.
// Returns whatever was received.
func (s *Server) WaitFrames(n int, timeout time.Duration) []string {
	deadline := time.Now().Add(timeout)
	for {
		frames := s.Frames()
		if len(frames) >= n || time.Now().After(deadline) {
			return frames
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (s *Server) liveConns() []*websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	conns := make([]*websocket.Conn, 0, len(s.live))
	for c := range s.live {
		conns = append(conns, c)
	}
	return conns
}

// Drop closes every live connection without a close handshake,
// simulating the plugin going away mid-session.
func (s *Server) Drop() {
	for _, c := range s.liveConns() {
		c.CloseNow()
	}
}

// CloseSessions closes every live connection with a close handshake,
// simulating the plugin shutting down cleanly.
func (s *Server) CloseSessions(code websocket.StatusCode, reason string) {
	for _, c := range s.liveConns() {
		_ = c.Close(code, reason)
	}
}

// Close shuts down the server and waits for connection handlers to exit.
func (s *Server) Close() {
	s.Drop()
	s.Server.Close()
	s.handlers.Wait()
}
