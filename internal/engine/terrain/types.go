// Package terrain generates, animates and draws the wireframe heightmap
// behind the landing page.
package terrain

import (
	"errors"
	"fmt"
	"image/color"
	gomath "math"

	"github.com/Faultbox/neolithic-site/internal/engine/camera"
	"github.com/Faultbox/neolithic-site/pkg/math"
)

var (
	ErrInvalidGrid        = errors.New("terrain: invalid grid")
	ErrInvalidFocalLength = errors.New("terrain: focal length must be positive")
	ErrBehindFocalPlane   = errors.New("terrain: mesh reaches the camera focal plane")
)

// Mesh is a regular heightmap lattice.
//
// Vertices and BaseHeights are row-major by (z, x): the vertex at row z,
// column x has index z*(GridX+1)+x. Vertices[i].Y is always
// BaseHeights[i] plus the wave offset for the current time.
type Mesh struct {
	Vertices    []math.Vec3
	BaseHeights []float64
	Triangles   [][3]int
	GridX       int
	GridZ       int
}

// Index returns the flat vertex index for lattice column x and row z.
func (m *Mesh) Index(x, z int) int {
	return z*(m.GridX+1) + x
}

// Wave is the travelling-wave field added to the base heights.
type Wave struct {
	Amplitude float64
	FreqX     float64
	FreqZ     float64
}

// Height returns base + Amplitude*sin(x*FreqX + t)*sin(z*FreqZ + t).
func (w Wave) Height(base, x, z, t float64) float64 {
	return base + w.Amplitude*gomath.Sin(x*w.FreqX+t)*gomath.Sin(z*w.FreqZ+t)
}

// Stroke describes how wireframe edges are drawn.
type Stroke struct {
	Color color.NRGBA
	Width float64
}

// CSS returns the stroke colour as a CSS rgba() value.
func (s Stroke) CSS() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %.3g)", s.Color.R, s.Color.G, s.Color.B, float64(s.Color.A)/255)
}

// Params holds everything needed to build and animate a terrain.
type Params struct {
	GridX           int
	GridZ           int
	CellSize        float64
	BaseHeightScale float64
	Speed           float64 // time added per step
	Wave            Wave
	Camera          camera.FixedCamera
	Stroke          Stroke
}

// DefaultParams returns the landing page background settings.
func DefaultParams() Params {
	return Params{
		GridX:           40,
		GridZ:           30,
		CellSize:        40,
		BaseHeightScale: 150,
		Speed:           0.0001,
		Wave: Wave{
			Amplitude: 50,
			FreqX:     0.03,
			FreqZ:     0.02,
		},
		Camera: camera.NewFixedCamera(),
		Stroke: Stroke{
			Color: color.NRGBA{R: 180, G: 180, B: 180, A: 179}, // 0.7 alpha
			Width: 0.75,
		},
	}
}

// Validate checks that the grid and camera are usable.
func (p Params) Validate() error {
	if p.GridX < 0 || p.GridZ < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGrid, p.GridX, p.GridZ)
	}
	if p.CellSize < 0 || gomath.IsNaN(p.CellSize) || gomath.IsInf(p.CellSize, 0) {
		return fmt.Errorf("%w: cell size %v", ErrInvalidGrid, p.CellSize)
	}
	if !(p.Camera.FocalLength > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidFocalLength, p.Camera.FocalLength)
	}
	return nil
}

// FocalClearance returns the smallest FocalLength+depth any vertex can
// reach. Heights stay within ±(BaseHeightScale/2 + |Amplitude|) of the
// baseline and the view transform is affine, so the eight corners of that
// box bound every vertex. A value <= 0 means some vertices can fall at or
// behind the focal plane; triangles touching them are skipped while drawing.
func (p Params) FocalClearance() float64 {
	halfX := float64(p.GridX) * p.CellSize / 2
	halfZ := float64(p.GridZ) * p.CellSize / 2
	maxY := gomath.Abs(p.BaseHeightScale)/2 + gomath.Abs(p.Wave.Amplitude)

	clearance := gomath.Inf(1)
	for _, x := range []float64{-halfX, halfX} {
		for _, y := range []float64{-maxY, maxY} {
			for _, z := range []float64{-halfZ, halfZ} {
				d := p.Camera.FocalLength + p.Camera.Depth(math.Vec3{X: x, Y: y, Z: z})
				clearance = gomath.Min(clearance, d)
			}
		}
	}
	return clearance
}

// CheckFocalPlane reports ErrBehindFocalPlane when FocalClearance is not
// positive.
func (p Params) CheckFocalPlane() error {
	if c := p.FocalClearance(); c <= 0 {
		return fmt.Errorf("%w: clearance %.2f", ErrBehindFocalPlane, c)
	}
	return nil
}
