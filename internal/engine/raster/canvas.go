// Package raster implements the terrain drawing surface on an in-memory
// RGBA image. It backs PNG snapshots, GIF capture and tests.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	gomath "math"

	"golang.org/x/image/vector"

	"github.com/Faultbox/neolithic-site/internal/engine/terrain"
	"github.com/Faultbox/neolithic-site/pkg/math"
)

type segment struct {
	a, b math.Vec2
}

// Canvas is a terrain.Surface and terrain.Context backed by *image.RGBA.
// Paths are stroked by filling one thin quad per segment with an
// anti-aliased vector rasterizer.
type Canvas struct {
	img        *image.RGBA
	rasterizer *vector.Rasterizer
	background color.Color

	stroke terrain.Stroke
	path   []segment
	cur    math.Vec2
	hasCur bool
}

// New creates a canvas. A zero-sized canvas has no drawing context until
// it is resized.
func New(width, height int) *Canvas {
	c := &Canvas{background: color.Transparent}
	c.SetSize(width, height)
	return c
}

// SetBackground sets the colour used by Clear.
func (c *Canvas) SetBackground(bg color.Color) {
	c.background = bg
}

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// SetSize reallocates the backing image. Contents are discarded.
func (c *Canvas) SetSize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	if c.rasterizer == nil {
		c.rasterizer = vector.NewRasterizer(width, height)
	} else {
		c.rasterizer.Reset(width, height)
	}
}

// Context returns the canvas itself, or false while it has no area.
func (c *Canvas) Context() (terrain.Context, bool) {
	w, h := c.Size()
	if w == 0 || h == 0 {
		return nil, false
	}
	return c, true
}

// Clear fills the given area with the background colour.
func (c *Canvas) Clear(width, height int) {
	r := image.Rect(0, 0, width, height).Intersect(c.img.Bounds())
	draw.Draw(c.img, r, image.NewUniform(c.background), image.Point{}, draw.Src)
}

// SetStroke sets the colour and width for the next Stroke.
func (c *Canvas) SetStroke(s terrain.Stroke) {
	c.stroke = s
}

// BeginPath discards the current path.
func (c *Canvas) BeginPath() {
	c.path = c.path[:0]
	c.hasCur = false
}

// MoveTo starts a new sub-path at p.
func (c *Canvas) MoveTo(p math.Vec2) {
	c.cur = p
	c.hasCur = true
}

// LineTo adds a segment from the current point to p.
func (c *Canvas) LineTo(p math.Vec2) {
	if c.hasCur {
		c.path = append(c.path, segment{a: c.cur, b: p})
	}
	c.cur = p
	c.hasCur = true
}

// Stroke draws every segment of the current path.
func (c *Canvas) Stroke() {
	w, h := c.Size()
	if w == 0 || h == 0 || len(c.path) == 0 {
		return
	}

	half := c.stroke.Width / 2
	if half <= 0 {
		half = 0.5
	}

	// segments are clipped just outside the image so far off-screen
	// points never reach the rasterizer
	pad := half + 1
	lo := math.Vec2{X: -pad, Y: -pad}
	hi := math.Vec2{X: float64(w) + pad, Y: float64(h) + pad}

	z := c.rasterizer
	z.Reset(w, h)
	drawn := 0
	for _, s := range c.path {
		if !finite(s.a) || !finite(s.b) {
			continue
		}
		a, b, ok := clipSegment(s.a, s.b, lo, hi)
		if !ok {
			continue
		}
		s = segment{a: a, b: b}
		d := s.b.Sub(s.a)
		if d.Length() == 0 {
			continue
		}
		// Every quad winds the same way, so overlapping edges add up
		// instead of cancelling.
		n := d.Normalize().Perp().Scale(half)
		p0, p1 := s.a.Add(n), s.b.Add(n)
		p2, p3 := s.b.Sub(n), s.a.Sub(n)
		z.MoveTo(float32(p0.X), float32(p0.Y))
		z.LineTo(float32(p1.X), float32(p1.Y))
		z.LineTo(float32(p2.X), float32(p2.Y))
		z.LineTo(float32(p3.X), float32(p3.Y))
		z.ClosePath()
		drawn++
	}
	if drawn == 0 {
		return
	}
	z.DrawOp = draw.Over
	z.Draw(c.img, c.img.Bounds(), image.NewUniform(c.stroke.Color), image.Point{})
}

// Image returns the backing image. It is reused between frames.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Snapshot returns a copy of the current frame.
func (c *Canvas) Snapshot() *image.RGBA {
	cp := image.NewRGBA(c.img.Bounds())
	copy(cp.Pix, c.img.Pix)
	return cp
}

// EncodePNG writes the current frame as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

// clipSegment clips a-b to the rectangle lo-hi (Liang-Barsky). It reports
// false when nothing of the segment is inside.
func clipSegment(a, b, lo, hi math.Vec2) (math.Vec2, math.Vec2, bool) {
	d := b.Sub(a)
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-d.X, a.X - lo.X},
		{d.X, hi.X - a.X},
		{-d.Y, a.Y - lo.Y},
		{d.Y, hi.Y - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = min(t1, r)
		}
	}
	return a.Add(d.Scale(t0)), a.Add(d.Scale(t1)), true
}

func finite(p math.Vec2) bool {
	return !gomath.IsNaN(p.X) && !gomath.IsInf(p.X, 0) && !gomath.IsNaN(p.Y) && !gomath.IsInf(p.Y, 0)
}
