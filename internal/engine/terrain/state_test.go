package terrain

import (
	"errors"
	gomath "math"
	"math/rand/v2"
	"testing"

	"github.com/Faultbox/neolithic-site/internal/engine/camera"
	"github.com/Faultbox/neolithic-site/pkg/math"
)

func TestStepDrawsClosedTriangles(t *testing.T) {
	p := smallParams()
	s := NewState(p, rand.New(rand.NewPCG(1, 1)))
	surf := &recordingSurface{width: 800, height: 600}

	s = Step(s, p, surf, 800, 600)

	if surf.clears != 1 || surf.strokes != 1 {
		t.Fatalf("clears=%d strokes=%d, want 1 and 1", surf.clears, surf.strokes)
	}
	if surf.lastSize != [2]int{800, 600} {
		t.Errorf("cleared %v, want 800x600", surf.lastSize)
	}
	if len(surf.moves) != 8 || len(surf.lines) != 24 {
		t.Fatalf("moves=%d lines=%d, want 8 and 24", len(surf.moves), len(surf.lines))
	}
	// Every triangle ends where it started.
	for i := range surf.moves {
		if surf.lines[i*3+2] != surf.moves[i] {
			t.Errorf("triangle %d not closed: %v != %v", i, surf.lines[i*3+2], surf.moves[i])
		}
	}
	if surf.style != p.Stroke {
		t.Errorf("stroke = %+v, want %+v", surf.style, p.Stroke)
	}
	if s.Time != p.Speed {
		t.Errorf("time = %v, want %v", s.Time, p.Speed)
	}
}

func TestStepHeightsMatchClosedForm(t *testing.T) {
	p := smallParams()
	s := NewState(p, rand.New(rand.NewPCG(5, 6)))
	surf := &recordingSurface{}

	for range 10 {
		s = Step(s, p, surf, 100, 100)
	}
	if gomath.Abs(s.Time-10*p.Speed) > 1e-15 {
		t.Fatalf("time = %v, want %v", s.Time, 10*p.Speed)
	}
	for i, v := range s.Mesh.Vertices {
		want := p.Wave.Height(s.Mesh.BaseHeights[i], v.X, v.Z, s.Time)
		if v.Y != want {
			t.Errorf("vertex %d: %v, want %v", i, v.Y, want)
		}
	}
}

func TestStepProjectsWithCurrentSize(t *testing.T) {
	p := smallParams()
	s := NewState(p, fixedSource(0.5))
	surf := &recordingSurface{}

	s = Step(s, p, surf, 200, 100)
	small, _ := s.Projected()
	smallCopy := append([]math.Vec2(nil), small...)

	p.Speed = 0 // keep heights identical between frames
	s = Step(s, p, surf, 400, 300)
	large, _ := s.Projected()

	for i := range large {
		dx := large[i].X - smallCopy[i].X
		dy := large[i].Y - smallCopy[i].Y
		if gomath.Abs(dx-100) > 1e-9 || gomath.Abs(dy-100) > 1e-9 {
			t.Errorf("vertex %d shifted by (%v, %v), want (100, 100)", i, dx, dy)
		}
	}
}

func TestStepSkipsTrianglesBehindFocalPlane(t *testing.T) {
	p := smallParams()
	p.Wave.Amplitude = 0
	// Camera sitting just behind the middle row: the front row falls behind
	// the focal plane.
	p.Camera = camera.FixedCamera{
		Position:    math.Vec3{X: 0, Y: 0, Z: 0},
		FocalLength: 5,
	}
	s := NewState(p, fixedSource(0.5))
	surf := &recordingSurface{}

	s = Step(s, p, surf, 100, 100)
	_, visible := s.Projected()

	hidden := 0
	for _, ok := range visible {
		if !ok {
			hidden++
		}
	}
	if hidden != 3 {
		t.Fatalf("%d vertices hidden, want the 3 in the front row", hidden)
	}
	// Only the back row of cells (2 cells, 4 triangles) is drawn.
	if len(surf.moves) != 4 {
		t.Errorf("drew %d triangles, want 4", len(surf.moves))
	}
	for _, pt := range append(surf.moves, surf.lines...) {
		if gomath.IsInf(pt.X, 0) || gomath.IsNaN(pt.X) || gomath.IsInf(pt.Y, 0) || gomath.IsNaN(pt.Y) {
			t.Fatalf("non-finite point %v drawn", pt)
		}
	}
}

func TestStepDefaultCameraCullsNearestRows(t *testing.T) {
	p := DefaultParams()
	// Lowest base heights push the front row below the camera's focal plane.
	s := NewState(p, fixedSource(0))
	surf := &recordingSurface{}

	s = Step(s, p, surf, 1280, 720)
	_, visible := s.Projected()

	for x := 0; x <= p.GridX; x++ {
		if visible[s.Mesh.Index(x, 0)] {
			t.Fatalf("front-row vertex %d is visible, want culled", x)
		}
		if !visible[s.Mesh.Index(x, p.GridZ)] {
			t.Fatalf("back-row vertex %d is hidden, want visible", x)
		}
	}
	total := len(s.Mesh.Triangles)
	if drawn := len(surf.moves); drawn == 0 || drawn > total-2*p.GridX {
		t.Errorf("drew %d of %d triangles, want the front row of cells culled", drawn, total)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
		want   error
	}{
		{"defaults", func(*Params) {}, nil},
		{"negative grid", func(p *Params) { p.GridX = -1 }, ErrInvalidGrid},
		{"negative cell", func(p *Params) { p.CellSize = -4 }, ErrInvalidGrid},
		{"nan cell", func(p *Params) { p.CellSize = gomath.NaN() }, ErrInvalidGrid},
		{"zero focal length", func(p *Params) { p.Camera.FocalLength = 0 }, ErrInvalidFocalLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			err := p.Validate()
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFocalClearance(t *testing.T) {
	p := smallParams()
	if err := p.CheckFocalPlane(); err != nil {
		t.Errorf("small grid should clear the focal plane: %v", err)
	}

	// The full-size background lets the lowest front-row vertices dip
	// behind the focal plane.
	if err := DefaultParams().CheckFocalPlane(); !errors.Is(err, ErrBehindFocalPlane) {
		t.Errorf("got %v, want ErrBehindFocalPlane", err)
	}
}

func TestStrokeCSS(t *testing.T) {
	if got := DefaultParams().Stroke.CSS(); got != "rgba(180, 180, 180, 0.702)" {
		t.Errorf("CSS() = %q", got)
	}
}
