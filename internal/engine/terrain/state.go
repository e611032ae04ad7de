package terrain

import "github.com/Faultbox/neolithic-site/pkg/math"

// State is the animation state carried from one step to the next.
type State struct {
	Mesh *Mesh
	Time float64

	projected []math.Vec2
	visible   []bool
}

// NewState builds a fresh mesh for p at time zero.
func NewState(p Params, rng RandomSource) State {
	return State{Mesh: Generate(p.GridX, p.GridZ, p.CellSize, p.BaseHeightScale, rng)}
}

// Projected returns the screen positions computed by the last Step and
// whether each vertex could be projected.
func (s State) Projected() ([]math.Vec2, []bool) {
	return s.projected, s.visible
}

// Step advances time by p.Speed, recomputes every height, projects every
// vertex onto a width x height surface and strokes the outline of every
// triangle as one path. Triangles with a corner at or behind the focal
// plane are left out; with DefaultParams this culls the rows nearest the
// camera.
func Step(s State, p Params, ctx Context, width, height int) State {
	m := s.Mesh
	s.Time += p.Speed

	Animate(m, s.Time, p.Wave)

	if len(s.projected) != len(m.Vertices) {
		s.projected = make([]math.Vec2, len(m.Vertices))
		s.visible = make([]bool, len(m.Vertices))
	}
	for i, v := range m.Vertices {
		s.projected[i], s.visible[i] = p.Camera.Project(v, width, height)
	}

	ctx.Clear(width, height)
	ctx.SetStroke(p.Stroke)
	ctx.BeginPath()
	for _, tri := range m.Triangles {
		a, b, c := tri[0], tri[1], tri[2]
		if !s.visible[a] || !s.visible[b] || !s.visible[c] {
			continue
		}
		ctx.MoveTo(s.projected[a])
		ctx.LineTo(s.projected[b])
		ctx.LineTo(s.projected[c])
		ctx.LineTo(s.projected[a])
	}
	ctx.Stroke()

	return s
}
