package terrain

import (
	"math/rand/v2"

	"github.com/Faultbox/neolithic-site/pkg/math"
)

// RandomSource yields uniform numbers in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// DefaultSource returns the process-wide generator. Runs are not reproducible.
func DefaultSource() RandomSource {
	return globalSource{}
}

// Generate builds a gridX by gridZ lattice centred on the origin in the XZ
// plane. Every vertex gets a base height drawn uniformly from
// [-baseHeightScale/2, baseHeightScale/2), in row-major order. Each cell is
// split into (top-left, bottom-left, top-right) and
// (top-right, bottom-left, bottom-right).
func Generate(gridX, gridZ int, cellSize, baseHeightScale float64, rng RandomSource) *Mesh {
	gridX = max(gridX, 0)
	gridZ = max(gridZ, 0)
	if rng == nil {
		rng = DefaultSource()
	}

	numX := gridX + 1
	numZ := gridZ + 1

	m := &Mesh{
		Vertices:    make([]math.Vec3, 0, numX*numZ),
		BaseHeights: make([]float64, 0, numX*numZ),
		Triangles:   make([][3]int, 0, gridX*gridZ*2),
		GridX:       gridX,
		GridZ:       gridZ,
	}

	offsetX := -(float64(gridX) * cellSize) / 2
	offsetZ := -(float64(gridZ) * cellSize) / 2

	for z := range numZ {
		for x := range numX {
			base := (rng.Float64() - 0.5) * baseHeightScale
			m.Vertices = append(m.Vertices, math.Vec3{
				X: float64(x)*cellSize + offsetX,
				Y: base,
				Z: float64(z)*cellSize + offsetZ,
			})
			m.BaseHeights = append(m.BaseHeights, base)
		}
	}

	for z := range gridZ {
		for x := range gridX {
			topLeft := z*numX + x
			topRight := topLeft + 1
			bottomLeft := (z+1)*numX + x
			bottomRight := bottomLeft + 1
			m.Triangles = append(m.Triangles,
				[3]int{topLeft, bottomLeft, topRight},
				[3]int{topRight, bottomLeft, bottomRight},
			)
		}
	}

	return m
}

// Animate sets every vertex height to its base height plus the wave offset
// at time t. Heights are recomputed from BaseHeights, never accumulated.
func Animate(m *Mesh, t float64, w Wave) {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Y = w.Height(m.BaseHeights[i], v.X, v.Z, t)
	}
}
