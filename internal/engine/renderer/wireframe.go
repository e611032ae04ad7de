// Package renderer draws terrain paths with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/neolithic-site/internal/engine/shader"
	"github.com/Faultbox/neolithic-site/internal/engine/terrain"
	"github.com/Faultbox/neolithic-site/internal/logger"
	"github.com/Faultbox/neolithic-site/pkg/math"
)

const vertexSrc = `
#version 410 core

layout (location = 0) in vec2 aPos;

uniform mat4 uProjection;

void main() {
	gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
}
`

const fragmentSrc = `
#version 410 core

uniform vec4 uColor;

out vec4 FragColor;

void main() {
	FragColor = uColor;
}
`

// Wireframe is an OpenGL terrain surface. A path is collected as line
// segments in pixel coordinates and drawn with GL_LINES on Stroke.
type Wireframe struct {
	width, height int
	projection    math.Mat4

	program *shader.Program
	vao     uint32
	vbo     uint32
	vboCap  int

	background [4]float32
	color      [4]float32

	verts  []float32
	pen    math.Vec2
	hasPen bool

	log *zap.Logger
}

// NewWireframe initialises OpenGL and builds the line pipeline. It must be
// called after the GL context exists.
func NewWireframe(width, height int) (*Wireframe, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	w := &Wireframe{
		background: [4]float32{0.067, 0.067, 0.067, 1},
		log:        logger.Named("wireframe"),
	}
	w.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	var err error
	w.program, err = shader.Compile(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	gl.GenVertexArrays(1, &w.vao)
	gl.BindVertexArray(w.vao)
	gl.GenBuffers(1, &w.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.MULTISAMPLE)

	w.SetSize(width, height)
	return w, nil
}

// Size returns the surface size in screen coordinates.
func (w *Wireframe) Size() (int, int) { return w.width, w.height }

// SetSize updates the projection to a new surface size.
func (w *Wireframe) SetSize(width, height int) {
	w.width, w.height = width, height
	w.projection = math.ScreenSpace(width, height)
}

// SetViewport sets the GL viewport in framebuffer pixels.
func (w *Wireframe) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Context returns w while the surface has a non-empty size.
func (w *Wireframe) Context() (terrain.Context, bool) {
	if w.width <= 0 || w.height <= 0 {
		return nil, false
	}
	return w, true
}

// Clear fills the framebuffer with the background colour.
func (w *Wireframe) Clear(int, int) {
	c := w.background
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// SetStroke sets the line colour. Core profile only guarantees a line
// width of 1, so widths under one pixel fade the colour instead.
func (w *Wireframe) SetStroke(s terrain.Stroke) {
	alpha := float32(s.Color.A) / 255
	if s.Width > 0 && s.Width < 1 {
		alpha *= float32(s.Width)
	}
	w.color = [4]float32{
		float32(s.Color.R) / 255,
		float32(s.Color.G) / 255,
		float32(s.Color.B) / 255,
		alpha,
	}
}

// BeginPath drops the collected segments.
func (w *Wireframe) BeginPath() {
	w.verts = w.verts[:0]
	w.hasPen = false
}

// MoveTo starts a new subpath at p.
func (w *Wireframe) MoveTo(p math.Vec2) {
	w.pen = p
	w.hasPen = true
}

// LineTo adds a segment from the current point to p.
func (w *Wireframe) LineTo(p math.Vec2) {
	if w.hasPen {
		w.verts = append(w.verts, float32(w.pen.X), float32(w.pen.Y), float32(p.X), float32(p.Y))
	}
	w.pen = p
	w.hasPen = true
}

// Stroke uploads the segments and draws them.
func (w *Wireframe) Stroke() {
	n := len(w.verts) / 2
	if n == 0 {
		return
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)
	size := len(w.verts) * 4
	if size > w.vboCap {
		gl.BufferData(gl.ARRAY_BUFFER, size, unsafe.Pointer(&w.verts[0]), gl.DYNAMIC_DRAW)
		w.vboCap = size
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, unsafe.Pointer(&w.verts[0]))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	w.program.Use()
	gl.UniformMatrix4fv(w.program.Uniform("uProjection"), 1, false, w.projection.Ptr())
	gl.Uniform4f(w.program.Uniform("uColor"), w.color[0], w.color[1], w.color[2], w.color[3])
	gl.LineWidth(1)

	gl.BindVertexArray(w.vao)
	gl.DrawArrays(gl.LINES, 0, int32(n))
	gl.BindVertexArray(0)
}

// ReadPixels reads the back buffer as bottom-up RGBA rows.
func (w *Wireframe) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels
}

// Close frees GL resources.
func (w *Wireframe) Close() {
	w.log.Info("closing wireframe renderer")
	if w.vao != 0 {
		gl.DeleteVertexArrays(1, &w.vao)
	}
	if w.vbo != 0 {
		gl.DeleteBuffers(1, &w.vbo)
	}
	if w.program != nil {
		w.program.Delete()
	}
}
