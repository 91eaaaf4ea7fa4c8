// Package saliency computes per-pixel visual attention maps and locates the
// focus point, the coordinate with the highest saliency score.
package saliency

import (
	"image"
	"math"
)

// Scorer turns a decoded image into a saliency map of the same dimensions.
type Scorer interface {
	Score(img image.Image) (*Map, error)
}

// Map is a request-scoped grid of non-negative saliency intensities indexed
// as Values[y][x].
type Map struct {
	Values [][]float64
}

// NewMap allocates a zeroed saliency map.
func NewMap(width, height int) *Map {
	values := make([][]float64, height)
	for y := range values {
		values[y] = make([]float64, width)
	}
	return &Map{Values: values}
}

// Width returns the horizontal extent of the map.
func (m *Map) Width() int {
	if len(m.Values) == 0 {
		return 0
	}
	return len(m.Values[0])
}

// Height returns the vertical extent of the map.
func (m *Map) Height() int {
	return len(m.Values)
}

// At returns the intensity at (x, y).
func (m *Map) At(x, y int) float64 {
	return m.Values[y][x]
}

// Peak returns the coordinate of the maximum intensity. The map is scanned in
// row-major order and the first maximum wins on ties, so the result is
// deterministic for a given map.
func (m *Map) Peak() (x, y int) {
	best := math.Inf(-1)
	for py := range m.Values {
		for px, v := range m.Values[py] {
			if v > best {
				best = v
				x, y = px, py
			}
		}
	}
	return x, y
}

// Normalize rescales all intensities into [0, 1]. A flat map is left as-is.
func (m *Map) Normalize() {
	lo, hi := math.Inf(1), math.Inf(-1)
	for y := range m.Values {
		for _, v := range m.Values[y] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if hi <= lo {
		return
	}
	scale := 1 / (hi - lo)
	for y := range m.Values {
		for x, v := range m.Values[y] {
			m.Values[y][x] = (v - lo) * scale
		}
	}
}

// Resize produces a new map of the requested dimensions using bilinear
// interpolation, matching how the scorer maps a downscaled analysis grid back
// onto the original image.
func (m *Map) Resize(width, height int) *Map {
	srcW, srcH := m.Width(), m.Height()
	out := NewMap(width, height)
	if srcW == 0 || srcH == 0 || width == 0 || height == 0 {
		return out
	}
	if srcW == width && srcH == height {
		for y := range m.Values {
			copy(out.Values[y], m.Values[y])
		}
		return out
	}

	xScale := float64(srcW-1) / float64(max(width-1, 1))
	yScale := float64(srcH-1) / float64(max(height-1, 1))

	for y := 0; y < height; y++ {
		sy := float64(y) * yScale
		y0 := int(sy)
		y1 := min(y0+1, srcH-1)
		fy := sy - float64(y0)

		for x := 0; x < width; x++ {
			sx := float64(x) * xScale
			x0 := int(sx)
			x1 := min(x0+1, srcW-1)
			fx := sx - float64(x0)

			top := m.Values[y0][x0]*(1-fx) + m.Values[y0][x1]*fx
			bottom := m.Values[y1][x0]*(1-fx) + m.Values[y1][x1]*fx
			out.Values[y][x] = top*(1-fy) + bottom*fy
		}
	}
	return out
}

// boxFilter3 applies a 3x3 mean filter with replicated borders.
func boxFilter3(src [][]float64) [][]float64 {
	h := len(src)
	w := len(src[0])
	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			var sum float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					ny := clampInt(y+dy, 0, h-1)
					nx := clampInt(x+dx, 0, w-1)
					sum += src[ny][nx]
				}
			}
			out[y][x] = sum / 9
		}
	}
	return out
}

// gaussianBlur applies a separable Gaussian filter with replicated borders.
func gaussianBlur(src [][]float64, sigma float64) [][]float64 {
	if sigma <= 0 {
		return src
	}
	h := len(src)
	w := len(src[0])
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	// Horizontal pass
	tmp := make([][]float64, h)
	for y := 0; y < h; y++ {
		tmp[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				nx := clampInt(x+k, 0, w-1)
				sum += src[y][nx] * kernel[k+radius]
			}
			tmp[y][x] = sum
		}
	}

	// Vertical pass
	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				ny := clampInt(y+k, 0, h-1)
				sum += tmp[ny][x] * kernel[k+radius]
			}
			out[y][x] = sum
		}
	}
	return out
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
