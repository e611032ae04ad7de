package capture

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/Faultbox/neolithic-site/internal/engine/raster"
	"github.com/Faultbox/neolithic-site/internal/engine/terrain"
)

// Options controls an offscreen recording.
type Options struct {
	Width, Height int
	Frames        int
	// GIFStep keeps every Nth drawn frame. Zero keeps only the last one.
	GIFStep    int
	Background color.Color
	Random     terrain.RandomSource
}

// Recording holds the frames kept by Record.
type Recording struct {
	Last   *image.RGBA
	Frames []image.Image
}

// Record runs a renderer on an offscreen canvas for opts.Frames refreshes.
func Record(p terrain.Params, opts Options) (*Recording, error) {
	if opts.Frames < 1 {
		return nil, errors.New("capture: frames must be positive")
	}
	if opts.Width < 1 || opts.Height < 1 {
		return nil, fmt.Errorf("capture: invalid size %dx%d", opts.Width, opts.Height)
	}

	canvas := raster.New(opts.Width, opts.Height)
	if opts.Background != nil {
		canvas.SetBackground(opts.Background)
	}

	rec := &Recording{}
	var queue terrain.FrameQueue
	r, err := terrain.NewRenderer(p, canvas,
		terrain.FixedContainer{Width: opts.Width, Height: opts.Height}, &queue,
		terrain.WithRandomSource(opts.Random),
		terrain.WithFrameHook(func(seq int) {
			if opts.GIFStep > 0 && seq%opts.GIFStep == 0 {
				rec.Frames = append(rec.Frames, canvas.Snapshot())
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	defer r.Dispose()

	r.Start()
	for i := 0; i < opts.Frames; i++ {
		queue.Fire()
	}
	rec.Last = canvas.Snapshot()
	return rec, nil
}

// GIFDelay converts a frame step at the given rate to a GIF delay in
// hundredths of a second. GIF viewers clamp delays under 2.
func GIFDelay(step, fps int) int {
	if fps <= 0 {
		fps = 60
	}
	d := step * 100 / fps
	if d < 2 {
		d = 2
	}
	return d
}

// Save writes the recording: a GIF when frames were kept, otherwise a PNG
// of the last frame.
func (w *Writer) Save(rec *Recording, delay int) (string, error) {
	if len(rec.Frames) > 0 {
		return w.SaveGIF(rec.Frames, delay)
	}
	return w.SavePNG(rec.Last)
}
