// Package preview shows the terrain animation in a desktop window.
package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/neolithic-site/internal/capture"
	"github.com/Faultbox/neolithic-site/internal/config"
	"github.com/Faultbox/neolithic-site/internal/engine/input"
	"github.com/Faultbox/neolithic-site/internal/engine/renderer"
	"github.com/Faultbox/neolithic-site/internal/engine/terrain"
	"github.com/Faultbox/neolithic-site/internal/engine/window"
	"github.com/Faultbox/neolithic-site/internal/logger"
)

// App owns the window and drives one terrain renderer from the main loop.
type App struct {
	params terrain.Params

	window    *window.Window
	input     *input.Input
	wireframe *renderer.Wireframe
	container *terrain.ResizableContainer
	queue     terrain.FrameQueue
	terrain   *terrain.Renderer
	shots     *capture.Writer

	paused bool
	log    *zap.Logger
}

// New opens the window and creates the renderer.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		params: cfg.Terrain.Params(),
		input:  input.New(),
		shots:  capture.NewWriter(cfg.Capture.OutputDir, cfg.Capture.Prefix),
		log:    logger.Named("preview"),
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Preview.Title,
		Width:      cfg.Preview.Width,
		Height:     cfg.Preview.Height,
		Fullscreen: cfg.Preview.Fullscreen,
		VSync:      cfg.Preview.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The GL context must exist before the wireframe renderer.
	w, h := a.window.Size()
	a.wireframe, err = renderer.NewWireframe(w, h)
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create wireframe renderer: %w", err)
	}
	a.wireframe.SetViewport(a.window.DrawableSize())

	a.container = terrain.NewResizableContainer(w, h)
	if err := a.regenerate(); err != nil {
		a.Close()
		return nil, err
	}

	a.log.Info("preview initialized", zap.Int("width", w), zap.Int("height", h))
	return a, nil
}

// regenerate replaces the renderer with one on a fresh mesh.
func (a *App) regenerate() error {
	if a.terrain != nil {
		a.terrain.Dispose()
	}
	r, err := terrain.NewRenderer(a.params, a.wireframe, a.container, &a.queue)
	if err != nil {
		return fmt.Errorf("failed to create terrain renderer: %w", err)
	}
	a.terrain = r
	a.terrain.Start()
	return nil
}

// Run loops until the window is closed, ESC is pressed or ctx is done.
func (a *App) Run(ctx context.Context) error {
	frames := 0
	fpsTimer := time.Now()

	a.log.Info("starting preview loop")
	for {
		if ctx.Err() != nil {
			return nil
		}

		quit, err := a.handleInput()
		if err != nil {
			return err
		}
		if quit {
			return nil
		}

		if a.paused {
			sdl.Delay(16)
			continue
		}

		a.queue.Fire()
		a.window.SwapBuffers()

		frames++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			a.log.Debug("fps",
				zap.Float64("fps", float64(frames)/elapsed.Seconds()),
				zap.Int("drawn", a.terrain.Frames()),
			)
			frames = 0
			fpsTimer = time.Now()
		}
	}
}

func (a *App) handleInput() (bool, error) {
	for _, ev := range a.input.Poll() {
		switch ev.Action {
		case input.ActionQuit:
			return true, nil
		case input.ActionResize:
			a.wireframe.SetViewport(a.window.DrawableSize())
			a.container.SetSize(a.window.Size())
		case input.ActionPause:
			a.paused = !a.paused
			a.log.Info("pause toggled", zap.Bool("paused", a.paused))
		case input.ActionRegenerate:
			if err := a.regenerate(); err != nil {
				return false, err
			}
			a.log.Info("terrain regenerated")
		case input.ActionScreenshot:
			a.screenshot()
		}
	}
	return false, nil
}

// screenshot draws a frame into the back buffer and saves it.
func (a *App) screenshot() {
	if _, ok := a.wireframe.Context(); !ok {
		return
	}
	st := a.terrain.State()
	p := a.params
	p.Speed = 0
	w, h := a.wireframe.Size()
	terrain.Step(st, p, a.wireframe, w, h)

	dw, dh := a.window.DrawableSize()
	path, err := a.shots.SavePixels(a.wireframe.ReadPixels(dw, dh), dw, dh)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Close disposes the renderer and releases the window.
func (a *App) Close() {
	a.log.Info("closing preview")
	if a.terrain != nil {
		a.terrain.Dispose()
	}
	if a.wireframe != nil {
		a.wireframe.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
