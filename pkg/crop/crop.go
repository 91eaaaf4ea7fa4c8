// Package crop produces crops of a target aspect ratio anchored on a focus
// point, keeping the most salient part of the image inside the frame.
package crop

import (
	"fmt"
	"image"
	"io"
	"math"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/menta2k/focuspoint/internal/errs"
	"github.com/menta2k/focuspoint/pkg/types"
)

// edgeInset is the minimum normalized distance the crop anchor keeps from
// each image border.
const edgeInset = 0.05

// Box is a crop window with coordinates normalized to [0,1].
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// Around calculates the largest crop window of the target aspect ratio that
// keeps (focusX, focusY) inside, shrunk by zoom. Focus coordinates are
// normalized to [0,1]; zoom of 1 keeps the maximum window.
func Around(focusX, focusY float64, targetWidth, targetHeight, imgWidth, imgHeight int, zoom float64) Box {
	if zoom <= 0 {
		zoom = 1
	}

	r := float64(targetWidth) / float64(targetHeight)

	// An anchor sitting on the image border would collapse the window to
	// zero size; nudge it inward so the crop keeps a usable extent.
	cx := clamp(focusX, edgeInset, 1-edgeInset) * float64(imgWidth)
	cy := clamp(focusY, edgeInset, 1-edgeInset) * float64(imgHeight)

	// Max half extents allowed by image bounds
	halfWMax := math.Min(cx, float64(imgWidth)-cx)
	halfHMax := math.Min(cy, float64(imgHeight)-cy)

	// Width is limited by horizontal bounds AND by vertical bounds scaled by aspect
	maxWidthPx := math.Min(2*halfWMax, r*(2*halfHMax))
	widthPx := maxWidthPx * clamp(zoom, 0.01, 1.0)
	heightPx := widthPx / r

	x0 := clamp(cx-widthPx/2, 0, float64(imgWidth)-widthPx)
	y0 := clamp(cy-heightPx/2, 0, float64(imgHeight)-heightPx)

	return Box{
		X: x0 / float64(imgWidth),
		Y: y0 / float64(imgHeight),
		W: widthPx / float64(imgWidth),
		H: heightPx / float64(imgHeight),
	}
}

// Apply crops the image to the normalized box and resizes to the exact target
// dimensions.
func Apply(img image.Image, box Box, targetWidth, targetHeight int) (image.Image, error) {
	bounds := img.Bounds()
	fw, fh := float64(bounds.Dx()), float64(bounds.Dy())

	x0 := int(clamp(box.X, 0, 1)*fw + 0.5)
	y0 := int(clamp(box.Y, 0, 1)*fh + 0.5)
	x1 := int(clamp(box.X+box.W, 0, 1)*fw + 0.5)
	y1 := int(clamp(box.Y+box.H, 0, 1)*fh + 0.5)

	rect := image.Rect(x0, y0, x1, y1).Add(bounds.Min).Intersect(bounds)
	if rect.Empty() {
		return nil, errs.New(errs.KindValidation, "crop", "empty crop rectangle")
	}

	cropped := imaging.Crop(img, rect)

	if targetWidth > 0 && targetHeight > 0 {
		cropped = imaging.Fill(cropped, targetWidth, targetHeight, imaging.Center, imaging.Lanczos)
	}

	return cropped, nil
}

// Encode writes the image in the requested format. Supported formats are
// jpg/jpeg, png and webp.
func Encode(w io.Writer, img image.Image, spec types.CropSpec) error {
	quality := spec.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	switch strings.ToLower(spec.Format) {
	case "webp":
		opts := &webp.Options{Lossless: spec.Lossless, Quality: float32(quality)}
		return webp.Encode(w, img, opts)
	case "png":
		return imaging.Encode(w, img, imaging.PNG)
	case "", "jpg", "jpeg":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		return errs.New(errs.KindValidation, "encode",
			fmt.Sprintf("unsupported output format: %s", spec.Format))
	}
}

// ContentType returns the MIME type for an output format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "webp":
		return "image/webp"
	case "png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
