// Package focuspoint finds the saliency focus point of an image: the pixel
// coordinate most likely to draw visual attention.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		"github.com/menta2k/focuspoint"
//	)
//
//	func main() {
//		engine := focuspoint.New()
//
//		result, err := engine.FindFocus(context.Background(), "photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Printf("focus at (%d,%d) in %dx%d image\n",
//			result.Focus.X, result.Focus.Y, result.Width, result.Height)
//	}
//
// The package consists of three main components:
//
// 1. Loader (pkg/loader): acquires image bytes from URLs or local paths and decodes them
// 2. Saliency (pkg/saliency): computes per-pixel attention maps and locates the peak
// 3. Crop (pkg/crop): produces crops of a target aspect ratio anchored on the focus point
//
// The default scorer implements the spectral residual method: salient content
// shows up as the difference between an image's log-amplitude spectrum and
// its local average. A purely local edge/contrast scorer is available as an
// alternative. Both are deterministic, so the same image always yields the
// same focus point.
package focuspoint

import (
	"context"
	"image"

	"github.com/menta2k/focuspoint/pkg/loader"
	"github.com/menta2k/focuspoint/pkg/saliency"
	"github.com/menta2k/focuspoint/pkg/types"
)

// Version of the focuspoint library
const Version = "1.0.0"

// Engine combines image loading and saliency scoring behind a single API.
type Engine struct {
	loader *loader.Loader
	scorer saliency.Scorer
}

// New creates an Engine with the default loader and the spectral residual
// scorer.
func New() *Engine {
	return &Engine{
		loader: loader.New(),
		scorer: saliency.NewSpectralResidual(),
	}
}

// NewWithComponents creates an Engine from a custom loader and scorer.
func NewWithComponents(l *loader.Loader, s saliency.Scorer) *Engine {
	return &Engine{
		loader: l,
		scorer: s,
	}
}

// Result is the outcome of a focus computation.
type Result struct {
	Focus  types.Point `json:"focus"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
}

// FindFocus loads the image referenced by source (URL or local path) and
// returns its focus point together with the image dimensions.
func (e *Engine) FindFocus(ctx context.Context, source string) (Result, error) {
	img, err := e.loader.Load(ctx, source)
	if err != nil {
		return Result{}, err
	}
	return e.FindFocusImage(img)
}

// FindFocusImage computes the focus point of an already-decoded image.
func (e *Engine) FindFocusImage(img image.Image) (Result, error) {
	m, err := e.scorer.Score(img)
	if err != nil {
		return Result{}, err
	}

	x, y := m.Peak()
	bounds := img.Bounds()
	return Result{
		Focus:  types.Point{X: x, Y: y},
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// Load exposes the engine's loader for callers that need the decoded image,
// for example to crop around the focus point afterwards.
func (e *Engine) Load(ctx context.Context, source string) (image.Image, error) {
	return e.loader.Load(ctx, source)
}

// LoadWithFormat behaves like Load and additionally reports the decoded
// format name.
func (e *Engine) LoadWithFormat(ctx context.Context, source string) (image.Image, string, error) {
	return e.loader.LoadWithFormat(ctx, source)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
