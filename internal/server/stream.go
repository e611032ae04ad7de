package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/neolithic-site/internal/engine/terrain"
	"github.com/Faultbox/neolithic-site/pkg/math"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	maxClientMsg = 1024
)

// PathSurface records the path drawn in one frame instead of rasterising
// it. It implements both terrain.Surface and terrain.Context.
type PathSurface struct {
	width, height int
	stroke        terrain.Stroke
	path          []float32
	strokes       int
}

// Size returns the surface dimensions.
func (s *PathSurface) Size() (int, int) { return s.width, s.height }

// SetSize resizes the surface.
func (s *PathSurface) SetSize(width, height int) {
	s.width, s.height = width, height
}

// Context is unavailable until the client reports a non-empty viewport.
func (s *PathSurface) Context() (terrain.Context, bool) {
	if s.width <= 0 || s.height <= 0 {
		return nil, false
	}
	return s, true
}

func (s *PathSurface) Clear(int, int) { s.path = s.path[:0] }

func (s *PathSurface) SetStroke(st terrain.Stroke) { s.stroke = st }

func (s *PathSurface) BeginPath() { s.path = s.path[:0] }

func (s *PathSurface) MoveTo(p math.Vec2) { s.path = append(s.path, float32(p.X), float32(p.Y)) }

func (s *PathSurface) LineTo(p math.Vec2) { s.path = append(s.path, float32(p.X), float32(p.Y)) }

func (s *PathSurface) Stroke() { s.strokes++ }

// Path returns the points of the last frame as x,y pairs.
func (s *PathSurface) Path() []float32 { return s.path }

type strokeMessage struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// frameMessage is one drawn frame sent to the browser. Every triangle is
// four points: its corners and the first corner again.
type frameMessage struct {
	Type   string        `json:"type"`
	Seq    int           `json:"seq"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Stroke strokeMessage `json:"stroke"`
	Path   []float32     `json:"path"`
}

// clientMessage is anything the browser sends.
type clientMessage struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// streamSession is one browser connection with its own renderer.
type streamSession struct {
	conn      *websocket.Conn
	loop      *terrain.TickerLoop
	container *terrain.ResizableContainer
	surface   *PathSurface
	renderer  *terrain.Renderer
	out       chan frameMessage
	log       *zap.Logger

	maxWidth, maxHeight int

	// touched only on the loop goroutine
	dropped int
}

func (s *Server) handleTerrainStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	sess, err := s.newStreamSession(conn)
	if err != nil {
		s.log.Error("starting terrain stream", zap.Error(err))
		_ = conn.Close()
		return
	}
	if err := sess.run(r.Context()); err != nil {
		sess.log.Debug("terrain stream ended", zap.Error(err))
	}
}

func (s *Server) newStreamSession(conn *websocket.Conn) (*streamSession, error) {
	cfg := s.cfg.Stream
	buf := cfg.WriteBuffer
	if buf < 1 {
		buf = 1
	}

	sess := &streamSession{
		conn:      conn,
		loop:      terrain.NewTickerLoop(terrain.FPSInterval(cfg.FPS)),
		container: terrain.NewResizableContainer(0, 0),
		surface:   &PathSurface{},
		out:       make(chan frameMessage, buf),
		log:       s.log.With(zap.String("remote", conn.RemoteAddr().String())),
		maxWidth:  clampDim(cfg.MaxWidth, maxViewport),
		maxHeight: clampDim(cfg.MaxHeight, maxViewport),
	}

	r, err := terrain.NewRenderer(s.params, sess.surface, sess.container, sess.loop,
		terrain.WithFrameHook(sess.sendFrame))
	if err != nil {
		return nil, err
	}
	sess.renderer = r
	return sess, nil
}

// sendFrame runs on the loop goroutine after each drawn frame. When the
// writer falls behind the frame is dropped.
func (ss *streamSession) sendFrame(seq int) {
	w, h := ss.surface.Size()
	path := make([]float32, len(ss.surface.Path()))
	copy(path, ss.surface.Path())

	msg := frameMessage{
		Type:   "frame",
		Seq:    seq,
		Width:  w,
		Height: h,
		Stroke: strokeMessage{Color: ss.surface.stroke.CSS(), Width: ss.surface.stroke.Width},
		Path:   path,
	}
	select {
	case ss.out <- msg:
	default:
		ss.dropped++
	}
}

// run serves the session until the client goes away or ctx is cancelled.
// The renderer is disposed once the loop, reader and writer have all
// stopped.
func (ss *streamSession) run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	ss.log.Debug("terrain stream opened")
	ss.renderer.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return ss.loop.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return ss.readPump(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return ss.writePump(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		_ = ss.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(writeWait))
		_ = ss.conn.Close()
		return nil
	})

	err := g.Wait()
	ss.renderer.Dispose()
	ss.log.Debug("terrain stream closed",
		zap.Int("frames", ss.renderer.Frames()),
		zap.Int("dropped", ss.dropped),
	)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (ss *streamSession) readPump(ctx context.Context) error {
	ss.conn.SetReadLimit(maxClientMsg)
	_ = ss.conn.SetReadDeadline(time.Now().Add(pongWait))
	ss.conn.SetPongHandler(func(string) error {
		return ss.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ss.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading: %w", err)
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			ss.log.Debug("ignoring malformed message", zap.Error(err))
			continue
		}

		switch msg.Type {
		case "resize":
			w := clampViewport(msg.Width, ss.maxWidth)
			h := clampViewport(msg.Height, ss.maxHeight)
			if !ss.loop.Post(func() { ss.container.SetSize(w, h) }) {
				return nil
			}
		default:
			ss.log.Debug("ignoring message", zap.String("type", msg.Type))
		}
	}
}

func (ss *streamSession) writePump(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-ss.out:
			_ = ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ss.conn.WriteJSON(msg); err != nil {
				return fmt.Errorf("writing frame %d: %w", msg.Seq, err)
			}
		case <-ticker.C:
			_ = ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ss.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

// clampViewport limits a client-reported dimension to [0, max]. Zero
// pauses drawing.
func clampViewport(v, max int) int {
	switch {
	case v < 0:
		return 0
	case v > max:
		return max
	}
	return v
}
