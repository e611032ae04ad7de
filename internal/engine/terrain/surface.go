package terrain

import "github.com/Faultbox/neolithic-site/pkg/math"

// Context is a 2D path-drawing API in the style of an HTML canvas.
type Context interface {
	Clear(width, height int)
	SetStroke(s Stroke)
	BeginPath()
	MoveTo(p math.Vec2)
	LineTo(p math.Vec2)
	Stroke()
}

// Surface is a resizable drawing target. Context reports false while the
// surface cannot be drawn on, in which case the frame is skipped.
type Surface interface {
	Size() (width, height int)
	SetSize(width, height int)
	Context() (Context, bool)
}

// Container is whatever hosts the surface: a window, a browser viewport.
// OnResize registers fn to run when the size changes and returns a func
// that removes it.
type Container interface {
	Size() (width, height int)
	OnResize(fn func()) (detach func())
}

// FixedContainer never resizes.
type FixedContainer struct {
	Width, Height int
}

// Size returns the fixed dimensions.
func (c FixedContainer) Size() (int, int) { return c.Width, c.Height }

// OnResize never calls fn.
func (c FixedContainer) OnResize(func()) func() { return func() {} }

// ResizableContainer is a container whose size is set by its host.
// It is not safe for concurrent use; call SetSize on the renderer's thread.
type ResizableContainer struct {
	width, height int
	nextID        int
	listeners     map[int]func()
}

// NewResizableContainer creates a container with an initial size.
func NewResizableContainer(width, height int) *ResizableContainer {
	return &ResizableContainer{
		width:     width,
		height:    height,
		listeners: make(map[int]func()),
	}
}

// Size returns the current dimensions.
func (c *ResizableContainer) Size() (int, int) { return c.width, c.height }

// SetSize updates the dimensions and notifies every listener.
func (c *ResizableContainer) SetSize(width, height int) {
	c.width, c.height = width, height
	for _, fn := range c.listeners {
		fn()
	}
}

// OnResize registers fn.
func (c *ResizableContainer) OnResize(fn func()) func() {
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() { delete(c.listeners, id) }
}

// Listeners returns how many resize listeners are attached.
func (c *ResizableContainer) Listeners() int {
	return len(c.listeners)
}
