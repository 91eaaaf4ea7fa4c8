package saliency

import (
	"fmt"
	"image"
	"math"

	"github.com/menta2k/focuspoint/internal/errs"
)

// FineGrainedConfig holds tuning parameters for the fine-grained scorer.
type FineGrainedConfig struct {
	ContrastWeight float64
	ColorWeight    float64
	BlurSigma      float64
}

// FineGrained scores saliency from local pixel statistics: the color
// difference against the 8-neighborhood measures edge strength, blended with
// the pixel's own brightness. It trades the global frequency analysis of the
// spectral residual method for purely local contrast.
type FineGrained struct {
	config FineGrainedConfig
}

// NewFineGrained creates a scorer with default weights.
func NewFineGrained() *FineGrained {
	return &FineGrained{
		config: FineGrainedConfig{
			ContrastWeight: 0.7,
			ColorWeight:    0.3,
			BlurSigma:      1.5,
		},
	}
}

// NewFineGrainedWithConfig creates a scorer with custom weights.
func NewFineGrainedWithConfig(config FineGrainedConfig) *FineGrained {
	return &FineGrained{config: config}
}

var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Score computes the saliency map for an image. The result has the same
// dimensions as the input and is deterministic for a given image.
func (f *FineGrained) Score(img image.Image) (*Map, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < MinDimension || height < MinDimension {
		return nil, errs.New(errs.KindSaliency, "score",
			fmt.Sprintf("image too small for saliency analysis: %dx%d (minimum: %d)", width, height, MinDimension))
	}

	raw := make([][]float64, height)
	for y := range raw {
		raw[y] = make([]float64, width)
	}

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			r1, g1, b1, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()

			var edgeStrength float64
			for _, offset := range neighborOffsets {
				nx, ny := x+offset[0], y+offset[1]
				r2, g2, b2, _ := img.At(nx+bounds.Min.X, ny+bounds.Min.Y).RGBA()

				dr := float64(r1) - float64(r2)
				dg := float64(g1) - float64(g2)
				db := float64(b1) - float64(b2)
				edgeStrength += math.Sqrt(dr*dr + dg*dg + db*db)
			}

			// 8 neighbors, 16-bit channels
			edgeStrength /= 8.0 * 65535.0
			brightness := (float64(r1) + float64(g1) + float64(b1)) / (3.0 * 65535.0)

			raw[y][x] = f.config.ContrastWeight*edgeStrength + f.config.ColorWeight*brightness
		}
	}

	m := &Map{Values: gaussianBlur(raw, f.config.BlurSigma)}
	m.Normalize()
	return m, nil
}
