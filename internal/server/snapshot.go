package server

import (
	"bytes"
	"image/color"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/neolithic-site/internal/engine/raster"
	"github.com/Faultbox/neolithic-site/internal/engine/terrain"
)

const (
	snapshotWidth     = 1280
	snapshotHeight    = 720
	maxSnapshotWidth  = 1920
	maxSnapshotHeight = 1080
	maxViewport       = 4096
)

// snapshotQuery is the parsed query of GET /api/terrain.png.
type snapshotQuery struct {
	Width  int
	Height int
	Time   float64
}

func parseSnapshotQuery(r *http.Request) snapshotQuery {
	q := r.URL.Query()
	return snapshotQuery{
		Width:  clampDim(intParam(q.Get("w"), snapshotWidth), maxSnapshotWidth),
		Height: clampDim(intParam(q.Get("h"), snapshotHeight), maxSnapshotHeight),
		Time:   floatParam(q.Get("t"), 0),
	}
}

// renderSnapshot draws one frame of a fresh mesh at time t.
func renderSnapshot(p terrain.Params, rng terrain.RandomSource, q snapshotQuery) *raster.Canvas {
	c := raster.New(q.Width, q.Height)
	c.SetBackground(color.Transparent)

	st := terrain.NewState(p, rng)
	st.Time = q.Time
	p.Speed = 0
	terrain.Step(st, p, c, q.Width, q.Height)
	return c
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	q := parseSnapshotQuery(r)
	c := renderSnapshot(s.params, terrain.DefaultSource(), q)

	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		s.log.Error("encoding snapshot", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func floatParam(s string, def float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// clampDim limits a requested dimension to [1, max].
func clampDim(v, max int) int {
	switch {
	case v < 1:
		return 1
	case v > max:
		return max
	}
	return v
}
