package terrain

import "github.com/Faultbox/neolithic-site/pkg/math"

// recordingSurface records every drawing call.
type recordingSurface struct {
	width, height int
	detached      bool // Context reports false while set
	setSizeCalls  int

	calls    int // every Context call
	clears   int
	strokes  int
	moves    []math.Vec2
	lines    []math.Vec2
	lastSize [2]int
	style    Stroke
}

func (s *recordingSurface) Size() (int, int) { return s.width, s.height }

func (s *recordingSurface) SetSize(w, h int) {
	s.width, s.height = w, h
	s.setSizeCalls++
}

func (s *recordingSurface) Context() (Context, bool) {
	if s.detached {
		return nil, false
	}
	return s, true
}

func (s *recordingSurface) Clear(w, h int) {
	s.calls++
	s.clears++
	s.lastSize = [2]int{w, h}
	s.moves = s.moves[:0]
	s.lines = s.lines[:0]
}

func (s *recordingSurface) SetStroke(st Stroke) {
	s.calls++
	s.style = st
}

func (s *recordingSurface) BeginPath() { s.calls++ }

func (s *recordingSurface) MoveTo(p math.Vec2) {
	s.calls++
	s.moves = append(s.moves, p)
}

func (s *recordingSurface) LineTo(p math.Vec2) {
	s.calls++
	s.lines = append(s.lines, p)
}

func (s *recordingSurface) Stroke() {
	s.calls++
	s.strokes++
}

// stubbornScheduler ignores Cancel so tests can fire stale callbacks.
type stubbornScheduler struct {
	callbacks []func()
	cancelled []FrameHandle
}

func (s *stubbornScheduler) ScheduleNext(cb func()) FrameHandle {
	s.callbacks = append(s.callbacks, cb)
	return FrameHandle(len(s.callbacks))
}

func (s *stubbornScheduler) Cancel(h FrameHandle) {
	s.cancelled = append(s.cancelled, h)
}

// fixedSource returns the same value forever.
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

// sequenceSource cycles through values.
type sequenceSource struct {
	values []float64
	i      int
}

func (s *sequenceSource) Float64() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

func smallParams() Params {
	p := DefaultParams()
	p.GridX = 2
	p.GridZ = 2
	p.CellSize = 10
	return p
}
