package banner

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/vortideck/bannerctl/internal/banner/bannertest"
)

// mockConn implements the Conn interface for testing.
type mockConn struct {
	mu         sync.Mutex
	written    [][]byte
	types      []websocket.MessageType
	writeErr   error
	closeCalls int
	closeCode  websocket.StatusCode
}

func (m *mockConn) Write(ctx context.Context, typ websocket.MessageType, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = append(m.written, data)
	m.types = append(m.types, typ)
	return nil
}

func (m *mockConn) Close(code websocket.StatusCode, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalls++
	m.closeCode = code
	return nil
}

func (m *mockConn) getWritten() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.written))
	for i, w := range m.written {
		result[i] = string(w)
	}
	return result
}

func TestClient_Send_WritesSingleTextFrame(t *testing.T) {
	t.Parallel()

	conn := &mockConn{}
	client := NewClient(conn)
	defer client.Close()

	payload, err := client.Send(context.Background(), SetBanner{Path: "/tmp/b.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"command":"set_banner","file_path":"/tmp/b.png"}`
	if string(payload) != want {
		t.Errorf("expected payload %s, got %s", want, string(payload))
	}

	written := conn.getWritten()
	if len(written) != 1 {
		t.Fatalf("expected 1 written message, got %d", len(written))
	}
	if written[0] != want {
		t.Errorf("expected frame %s, got %s", want, written[0])
	}
	if conn.types[0] != websocket.MessageText {
		t.Errorf("expected text frame, got %v", conn.types[0])
	}
}

func TestClient_Send_NilCommand(t *testing.T) {
	t.Parallel()

	conn := &mockConn{}
	client := NewClient(conn)

	if _, err := client.Send(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil command")
	}
	if len(conn.getWritten()) != 0 {
		t.Error("nothing should be written for a nil command")
	}
}

func TestClient_Send_WriteErrorIsTransportFailure(t *testing.T) {
	t.Parallel()

	conn := &mockConn{writeErr: errors.New("broken pipe")}
	client := NewClient(conn)

	_, err := client.Send(context.Background(), ShowBanner{})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestClient_Send_AfterClose(t *testing.T) {
	t.Parallel()

	conn := &mockConn{}
	client := NewClient(conn)
	if err := client.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	_, err := client.Send(context.Background(), HideBanner{})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrClosed to be a transport failure, got %v", err)
	}
	if len(conn.getWritten()) != 0 {
		t.Error("nothing should be written after close")
	}
}

func TestClient_Close_Idempotent(t *testing.T) {
	t.Parallel()

	conn := &mockConn{}
	client := NewClient(conn)

	for i := 0; i < 3; i++ {
		if err := client.Close(); err != nil {
			t.Fatalf("close %d: unexpected error: %v", i, err)
		}
	}

	if conn.closeCalls != 1 {
		t.Errorf("expected 1 close on the connection, got %d", conn.closeCalls)
	}
	if conn.closeCode != websocket.StatusNormalClosure {
		t.Errorf("expected normal closure, got %v", conn.closeCode)
	}
}

func TestDial_SendsFramesInOrder(t *testing.T) {
	srv := bannertest.NewServer()
	defer srv.Close()

	ctx := context.Background()
	client, err := Dial(ctx, srv.URL())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	for _, cmd := range []Command{ShowBanner{}, HideBanner{}} {
		if _, err := client.Send(ctx, cmd); err != nil {
			t.Fatalf("send %s failed: %v", cmd.Name(), err)
		}
	}
	if err := client.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}

	frames := srv.WaitFrames(2, 2*time.Second)
	want := []string{`{"command":"show_banner"}`, `{"command":"hide_banner"}`}
	if len(frames) != len(want) {
		t.Fatalf("expected %d frames, got %v", len(want), frames)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d: expected %s, got %s", i, want[i], frames[i])
		}
	}
}

func TestDial_Refused(t *testing.T) {
	// Reserve a port and release it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	client, err := Dial(context.Background(), "ws://"+addr)
	if err == nil {
		client.Close()
		t.Fatal("expected dial to fail")
	}
	if !errors.Is(err, ErrConnectionRefused) {
		t.Errorf("expected ErrConnectionRefused, got %v", err)
	}
}

func TestClient_Done_NilWithoutDial(t *testing.T) {
	t.Parallel()

	client := NewClient(&mockConn{})
	if client.Done() != nil {
		t.Error("expected nil Done channel for a client without a reader")
	}
	if _, err := client.Send(context.Background(), ShowBanner{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_Send_AfterServerGoesAway(t *testing.T) {
	tests := []struct {
		name   string
		goAway func(srv *bannertest.Server)
	}{
		{"dropped", func(srv *bannertest.Server) { srv.Drop() }},
		{"closed cleanly", func(srv *bannertest.Server) {
			srv.CloseSessions(websocket.StatusGoingAway, "plugin unloading")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := bannertest.NewServer()
			defer srv.Close()

			ctx := context.Background()
			client, err := Dial(ctx, srv.URL())
			if err != nil {
				t.Fatalf("dial failed: %v", err)
			}
			defer client.Close()

			if _, err := client.Send(ctx, ShowBanner{}); err != nil {
				t.Fatalf("first send failed: %v", err)
			}
			if frames := srv.WaitFrames(1, 2*time.Second); len(frames) != 1 {
				t.Fatalf("expected 1 frame before the server went away, got %v", frames)
			}

			tt.goAway(srv)

			select {
			case <-client.Done():
			case <-time.After(5 * time.Second):
				t.Fatal("client did not notice the server going away")
			}

			_, err = client.Send(ctx, ShowBanner{})
			if !errors.Is(err, ErrTransport) {
				t.Fatalf("expected ErrTransport after the server went away, got %v", err)
			}
			if frames := srv.Frames(); len(frames) != 1 {
				t.Errorf("expected no frames after the server went away, got %v", frames)
			}
		})
	}
}
