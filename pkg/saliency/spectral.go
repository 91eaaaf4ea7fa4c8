package saliency

import (
	"fmt"
	"image"
	"math"
	"math/cmplx"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/menta2k/focuspoint/internal/errs"
)

// MinDimension is the smallest image side the scorers accept.
const MinDimension = 3

// SpectralConfig holds tuning parameters for the spectral residual scorer.
type SpectralConfig struct {
	// AnalysisSize is the long-side length the image is downscaled to before
	// the frequency analysis. 64 is the size used in the original spectral
	// residual paper.
	AnalysisSize int
	// BlurSigma controls the Gaussian smoothing of the raw saliency map.
	BlurSigma float64
}

// SpectralResidual computes saliency with the spectral residual method:
// the difference between an image's log-amplitude spectrum and its local
// average highlights the "unexpected" frequency content, which corresponds
// to visually salient regions after transforming back to image space.
type SpectralResidual struct {
	config SpectralConfig
}

// NewSpectralResidual creates a scorer with the standard parameters.
func NewSpectralResidual() *SpectralResidual {
	return &SpectralResidual{
		config: SpectralConfig{
			AnalysisSize: 64,
			BlurSigma:    2.5,
		},
	}
}

// NewSpectralResidualWithConfig creates a scorer with custom parameters.
func NewSpectralResidualWithConfig(config SpectralConfig) *SpectralResidual {
	if config.AnalysisSize < MinDimension {
		config.AnalysisSize = 64
	}
	return &SpectralResidual{config: config}
}

// Score computes the saliency map for an image. The result has the same
// dimensions as the input and is deterministic for a given image.
func (s *SpectralResidual) Score(img image.Image) (*Map, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < MinDimension || height < MinDimension {
		return nil, errs.New(errs.KindSaliency, "score",
			fmt.Sprintf("image too small for saliency analysis: %dx%d (minimum: %d)", width, height, MinDimension))
	}

	small := downscale(img, s.config.AnalysisSize)
	gray := grayGrid(small)
	sw := len(gray[0])
	sh := len(gray)

	// Forward transform of the grayscale grid.
	freq := fft2(gray)

	// Log-amplitude spectrum and its phase.
	logAmp := make([][]float64, sh)
	phase := make([][]float64, sh)
	for y := 0; y < sh; y++ {
		logAmp[y] = make([]float64, sw)
		phase[y] = make([]float64, sw)
		for x := 0; x < sw; x++ {
			logAmp[y][x] = math.Log(cmplx.Abs(freq[y][x]) + 1e-12)
			phase[y][x] = cmplx.Phase(freq[y][x])
		}
	}

	// The spectral residual is the log spectrum minus its local average.
	avg := boxFilter3(logAmp)
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			residual := logAmp[y][x] - avg[y][x]
			freq[y][x] = cmplx.Rect(math.Exp(residual), phase[y][x])
		}
	}

	// Back to image space; squared magnitude is the raw saliency.
	spatial := ifft2(freq)
	raw := make([][]float64, sh)
	for y := 0; y < sh; y++ {
		raw[y] = make([]float64, sw)
		for x := 0; x < sw; x++ {
			re := real(spatial[y][x])
			im := imag(spatial[y][x])
			raw[y][x] = re*re + im*im
		}
	}

	smoothed := gaussianBlur(raw, s.config.BlurSigma)

	m := &Map{Values: smoothed}
	m.Normalize()
	return m.Resize(width, height), nil
}

// downscale resizes so the longer side equals size, never upscaling.
func downscale(img image.Image, size int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= size && h <= size {
		return img
	}
	if w >= h {
		return imaging.Resize(img, size, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, size, imaging.Lanczos)
}

// grayGrid converts an image to a float64 luminance grid indexed [y][x].
func grayGrid(img image.Image) [][]float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	grid := make([][]float64, h)
	for y := 0; y < h; y++ {
		grid[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// Rec. 601 luma from 16-bit channels
			grid[y][x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 65535.0
		}
	}
	return grid
}

// fft2 computes a 2D discrete Fourier transform by transforming rows, then
// columns.
func fft2(grid [][]float64) [][]complex128 {
	h := len(grid)
	w := len(grid[0])

	out := make([][]complex128, h)
	rowFFT := fourier.NewCmplxFFT(w)
	row := make([]complex128, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			row[x] = complex(grid[y][x], 0)
		}
		out[y] = rowFFT.Coefficients(nil, row)
	}

	colFFT := fourier.NewCmplxFFT(h)
	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = out[y][x]
		}
		transformed := colFFT.Coefficients(nil, col)
		for y := 0; y < h; y++ {
			out[y][x] = transformed[y]
		}
	}
	return out
}

// ifft2 computes the inverse 2D transform, including the 1/(w*h)
// normalization that fourier.CmplxFFT.Sequence leaves to the caller.
func ifft2(freq [][]complex128) [][]complex128 {
	h := len(freq)
	w := len(freq[0])

	out := make([][]complex128, h)
	for y := range freq {
		out[y] = make([]complex128, w)
		copy(out[y], freq[y])
	}

	colFFT := fourier.NewCmplxFFT(h)
	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = out[y][x]
		}
		restored := colFFT.Sequence(nil, col)
		for y := 0; y < h; y++ {
			out[y][x] = restored[y]
		}
	}

	rowFFT := fourier.NewCmplxFFT(w)
	norm := complex(float64(w)*float64(h), 0)
	for y := 0; y < h; y++ {
		restored := rowFFT.Sequence(nil, out[y])
		for x := 0; x < w; x++ {
			out[y][x] = restored[x] / norm
		}
	}
	return out
}
