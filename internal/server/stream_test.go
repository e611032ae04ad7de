package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Faultbox/neolithic-site/internal/engine/terrain"
)

func dialStream(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/ws/terrain"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frameMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg frameMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	return msg
}

func TestStreamSendsFramesAfterResize(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialStream(t, ts.URL)
	if err := conn.WriteJSON(clientMessage{Type: "resize", Width: 320, Height: 200}); err != nil {
		t.Fatal(err)
	}

	first := readFrame(t, conn)
	second := readFrame(t, conn)

	if first.Type != "frame" {
		t.Errorf("type = %q, want frame", first.Type)
	}
	if first.Width != 320 || first.Height != 200 {
		t.Errorf("size = %dx%d, want 320x200", first.Width, first.Height)
	}
	if second.Seq <= first.Seq {
		t.Errorf("seq %d then %d, want increasing", first.Seq, second.Seq)
	}
	// 2x2 grid: 8 triangles, 4 points each
	if got := len(first.Path); got != 8*4*2 {
		t.Errorf("len(path) = %d, want %d", got, 8*4*2)
	}
	if first.Stroke.Color != "rgba(180, 180, 180, 0.702)" || first.Stroke.Width != 0.75 {
		t.Errorf("stroke = %+v", first.Stroke)
	}
	for i := 0; i+7 < len(first.Path); i += 8 {
		if first.Path[i] != first.Path[i+6] || first.Path[i+1] != first.Path[i+7] {
			t.Fatalf("triangle at %d is not closed: %v", i/8, first.Path[i:i+8])
		}
	}
}

func TestStreamClampsViewport(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Stream.MaxWidth = 500
	s.cfg.Stream.MaxHeight = 400
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialStream(t, ts.URL)
	if err := conn.WriteJSON(clientMessage{Type: "resize", Width: 10000, Height: 300}); err != nil {
		t.Fatal(err)
	}
	msg := readFrame(t, conn)
	if msg.Width != 500 || msg.Height != 300 {
		t.Errorf("size = %dx%d, want 500x300", msg.Width, msg.Height)
	}
}

func TestStreamFollowsResize(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialStream(t, ts.URL)
	if err := conn.WriteJSON(clientMessage{Type: "resize", Width: 100, Height: 100}); err != nil {
		t.Fatal(err)
	}
	readFrame(t, conn)

	// malformed and unknown messages are ignored
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(clientMessage{Type: "hello"}); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(clientMessage{Type: "resize", Width: 640, Height: 360}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 200; i++ {
		if msg := readFrame(t, conn); msg.Width == 640 && msg.Height == 360 {
			return
		}
	}
	t.Fatal("no frame at the new size")
}

func TestStreamClosesOnServerShutdown(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Server.ShutdownTimeout = time.Second

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, ln) }()

	conn := dialStream(t, "http://"+ln.Addr().String())
	if err := conn.WriteJSON(clientMessage{Type: "resize", Width: 64, Height: 64}); err != nil {
		t.Fatal(err)
	}
	readFrame(t, conn)

	cancel()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				t.Fatal("stream still open after shutdown")
			}
			break
		}
	}

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestPathSurface(t *testing.T) {
	s := &PathSurface{}
	if _, ok := s.Context(); ok {
		t.Fatal("empty surface should have no context")
	}
	s.SetSize(200, 100)
	ctx, ok := s.Context()
	if !ok {
		t.Fatal("sized surface should have a context")
	}

	p := terrain.DefaultParams()
	p.GridX, p.GridZ, p.CellSize = 2, 2, 10
	st := terrain.NewState(p, nil)
	terrain.Step(st, p, ctx, 200, 100)

	if got := len(s.Path()); got != len(st.Mesh.Triangles)*8 {
		t.Errorf("len(Path) = %d, want %d", got, len(st.Mesh.Triangles)*8)
	}
	if s.strokes != 1 {
		t.Errorf("strokes = %d, want 1", s.strokes)
	}

	// the next frame replaces the path
	terrain.Step(st, p, ctx, 200, 100)
	if got := len(s.Path()); got != len(st.Mesh.Triangles)*8 {
		t.Errorf("second frame len(Path) = %d", got)
	}
}

func TestClampViewport(t *testing.T) {
	tests := []struct{ in, max, want int }{
		{-5, 100, 0},
		{0, 100, 0},
		{50, 100, 50},
		{100, 100, 100},
		{101, 100, 100},
	}
	for _, tt := range tests {
		if got := clampViewport(tt.in, tt.max); got != tt.want {
			t.Errorf("clampViewport(%d, %d) = %d, want %d", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestSendFrameDropsWhenBehind(t *testing.T) {
	ss := &streamSession{
		surface: &PathSurface{width: 10, height: 10},
		out:     make(chan frameMessage, 1),
	}
	ss.sendFrame(1)
	ss.sendFrame(2)
	if ss.dropped != 1 {
		t.Errorf("dropped = %d, want 1", ss.dropped)
	}
	if msg := <-ss.out; msg.Seq != 1 {
		t.Errorf("queued seq = %d, want 1", msg.Seq)
	}
}
