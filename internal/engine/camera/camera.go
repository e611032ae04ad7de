// Package camera projects world-space points onto a 2D drawing surface.
package camera

import (
	gomath "math"

	"github.com/Faultbox/neolithic-site/pkg/math"
)

// FixedCamera is a camera with a fixed position, a pitch about the X axis
// and a yaw about the Y axis. There is no roll.
type FixedCamera struct {
	Position    math.Vec3
	Pitch       float64 // rotation about X, radians
	Yaw         float64 // rotation about Y, radians
	FocalLength float64
}

// NewFixedCamera returns the camera used by the landing page background.
func NewFixedCamera() FixedCamera {
	return FixedCamera{
		Position:    math.Vec3{X: 0, Y: 80, Z: -180},
		Pitch:       gomath.Pi / 5,
		Yaw:         0,
		FocalLength: 400,
	}
}

// View moves a world point into camera space: translate by -Position,
// then pitch, then yaw.
func (c FixedCamera) View(p math.Vec3) math.Vec3 {
	return p.Sub(c.Position).RotateX(c.Pitch).RotateY(c.Yaw)
}

// Perspective applies the perspective divide to a camera-space point and
// centres it on a width x height surface.
//
// The divisor F+z is zero or negative for points at or behind the focal
// plane. Those points have no meaningful screen position, so ok is false
// and the caller must not draw them.
func (c FixedCamera) Perspective(p math.Vec3, width, height int) (math.Vec2, bool) {
	d := c.FocalLength + p.Z
	if d <= 0 {
		return math.Vec2{}, false
	}
	f := c.FocalLength / d
	return math.Vec2{
		X: p.X*f + float64(width)/2,
		Y: p.Y*f + float64(height)/2,
	}, true
}

// Project transforms a world point to screen coordinates.
func (c FixedCamera) Project(p math.Vec3, width, height int) (math.Vec2, bool) {
	return c.Perspective(c.View(p), width, height)
}

// Depth returns the camera-space depth of a world point. A point is
// projectable when FocalLength+Depth > 0.
func (c FixedCamera) Depth(p math.Vec3) float64 {
	return c.View(p).Z
}
