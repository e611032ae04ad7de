package math

import "math"

// Vec3 is a point in world space.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// RotateX rotates v about the X axis by angle radians.
//
//	y' = y*cos(a) - z*sin(a)
//	z' = y*sin(a) + z*cos(a)
func (v Vec3) RotateX(angle float64) Vec3 {
	s, c := math.Sincos(angle)
	return Vec3{
		X: v.X,
		Y: v.Y*c - v.Z*s,
		Z: v.Y*s + v.Z*c,
	}
}

// RotateY rotates v about the Y axis by angle radians.
//
//	x' =  x*cos(a) + z*sin(a)
//	z' = -x*sin(a) + z*cos(a)
func (v Vec3) RotateY(angle float64) Vec3 {
	s, c := math.Sincos(angle)
	return Vec3{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// XY drops the Z component.
func (v Vec3) XY() Vec2 {
	return Vec2{v.X, v.Y}
}
