package terrain

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/neolithic-site/internal/logger"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithRandomSource sets the generator used for base heights.
func WithRandomSource(rng RandomSource) Option {
	return func(r *Renderer) { r.rng = rng }
}

// WithFrameHook registers fn to run after every drawn frame with the
// frame's sequence number, starting at 1.
func WithFrameHook(fn func(seq int)) Option {
	return func(r *Renderer) { r.onFrame = fn }
}

// Renderer drives one terrain animation on a surface, one step per
// scheduler refresh, from Start until Dispose.
//
// A Renderer is not safe for concurrent use. Steps, resize notifications
// and Dispose must all happen on the scheduler's thread.
type Renderer struct {
	params    Params
	state     State
	rng       RandomSource
	surface   Surface
	container Container
	sched     Scheduler
	onFrame   func(seq int)
	log       *zap.Logger

	pending    FrameHandle
	hasPending bool
	detach     func()
	disposed   bool

	frames  int
	skipped int
}

// NewRenderer validates p, builds the mesh, sizes surface to container and
// starts listening for container resizes. Call Start to begin drawing.
func NewRenderer(p Params, surface Surface, container Container, sched Scheduler, opts ...Option) (*Renderer, error) {
	if surface == nil || container == nil || sched == nil {
		return nil, errors.New("terrain: surface, container and scheduler are required")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	r := &Renderer{
		params:    p,
		rng:       DefaultSource(),
		surface:   surface,
		container: container,
		sched:     sched,
		log:       logger.Named("terrain"),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := p.CheckFocalPlane(); err != nil {
		r.log.Warn("some vertices can reach the focal plane and will be culled", zap.Error(err))
	}

	r.state = NewState(p, r.rng)
	r.Resize()
	r.detach = container.OnResize(r.Resize)

	r.log.Debug("renderer created",
		zap.Int("vertices", len(r.state.Mesh.Vertices)),
		zap.Int("triangles", len(r.state.Mesh.Triangles)),
	)
	return r, nil
}

// Start schedules the first step. Calling it again while a step is pending,
// or after Dispose, does nothing.
func (r *Renderer) Start() {
	if r.disposed || r.hasPending {
		return
	}
	r.scheduleNext()
}

// Resize matches the surface to the container. Projection reads the
// surface size every step, so the next frame uses the new size.
func (r *Renderer) Resize() {
	if r.disposed {
		return
	}
	w, h := r.container.Size()
	if sw, sh := r.surface.Size(); sw == w && sh == h {
		return
	}
	r.surface.SetSize(w, h)
	r.log.Debug("surface resized", zap.Int("width", w), zap.Int("height", h))
}

// Dispose cancels the pending step, detaches the resize listener and drops
// the mesh. No step runs afterwards, even if the scheduler fires a stale
// callback. Dispose is idempotent.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	if r.hasPending {
		r.sched.Cancel(r.pending)
		r.hasPending = false
	}
	if r.detach != nil {
		r.detach()
		r.detach = nil
	}
	r.state = State{}
	r.log.Debug("renderer disposed", zap.Int("frames", r.frames), zap.Int("skipped", r.skipped))
}

// Disposed reports whether Dispose has been called.
func (r *Renderer) Disposed() bool { return r.disposed }

// Frames returns the number of frames drawn so far.
func (r *Renderer) Frames() int { return r.frames }

// Skipped returns the number of refreshes skipped because the surface had
// no drawing context.
func (r *Renderer) Skipped() int { return r.skipped }

// State returns the current animation state. It is empty after Dispose.
func (r *Renderer) State() State { return r.state }

func (r *Renderer) scheduleNext() {
	r.pending = r.sched.ScheduleNext(r.step)
	r.hasPending = true
}

func (r *Renderer) step() {
	r.hasPending = false
	if r.disposed {
		return
	}

	if ctx, ok := r.surface.Context(); ok {
		w, h := r.surface.Size()
		r.state = Step(r.state, r.params, ctx, w, h)
		r.frames++
		if r.onFrame != nil {
			r.onFrame(r.frames)
		}
	} else {
		r.skipped++
	}

	// The frame hook may have disposed us.
	if r.disposed {
		return
	}
	r.scheduleNext()
}
