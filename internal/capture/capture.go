// Package capture writes rendered terrain frames to disk.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// ErrNoFrames is returned by SaveGIF when there is nothing to encode.
var ErrNoFrames = errors.New("capture: no frames")

// Writer saves frames under OutputDir with timestamped names.
type Writer struct {
	OutputDir string
	Prefix    string

	now func() time.Time
}

// NewWriter creates a writer for dir. An empty prefix becomes "frame".
func NewWriter(dir, prefix string) *Writer {
	if prefix == "" {
		prefix = "frame"
	}
	return &Writer{OutputDir: dir, Prefix: prefix, now: time.Now}
}

// Filename returns the path the next save with extension ext would use.
func (w *Writer) Filename(ext string) string {
	ts := w.now().Format("2006-01-02_15-04-05.000")
	name := fmt.Sprintf("%s_%s.%s", w.Prefix, ts, ext)
	if w.OutputDir != "" {
		name = filepath.Join(w.OutputDir, name)
	}
	return name
}

// SavePNG writes img as a PNG and returns its path.
func (w *Writer) SavePNG(img image.Image) (string, error) {
	return w.save("png", func(f *os.File) error {
		if err := png.Encode(f, img); err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
		return nil
	})
}

// SavePixels writes bottom-up RGBA pixel data, as read back from OpenGL,
// as a PNG.
func (w *Writer) SavePixels(pixels []byte, width, height int) (string, error) {
	img, err := FlipRGBA(pixels, width, height)
	if err != nil {
		return "", err
	}
	return w.SavePNG(img)
}

// SaveGIF writes frames as an endlessly looping GIF. delay is in
// hundredths of a second.
func (w *Writer) SaveGIF(frames []image.Image, delay int) (string, error) {
	if len(frames) == 0 {
		return "", ErrNoFrames
	}

	anim := &gif.GIF{LoopCount: 0}
	pal := GreyPalette()
	for _, f := range frames {
		b := f.Bounds()
		pm := image.NewPaletted(b, pal)
		draw.Draw(pm, b, f, b.Min, draw.Src)
		anim.Image = append(anim.Image, pm)
		anim.Delay = append(anim.Delay, delay)
	}

	return w.save("gif", func(f *os.File) error {
		if err := gif.EncodeAll(f, anim); err != nil {
			return fmt.Errorf("encoding GIF: %w", err)
		}
		return nil
	})
}

func (w *Writer) save(ext string, encode func(*os.File) error) (string, error) {
	if w.OutputDir != "" {
		if err := os.MkdirAll(w.OutputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	name := w.Filename(ext)
	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	return name, nil
}

// FlipRGBA copies bottom-up RGBA rows into a top-down image.
func FlipRGBA(pixels []byte, width, height int) (*image.RGBA, error) {
	if width < 0 || height < 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

// GreyPalette is 256 opaque greys from black to white.
func GreyPalette() color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = color.Gray{Y: uint8(i)}
	}
	return p
}
