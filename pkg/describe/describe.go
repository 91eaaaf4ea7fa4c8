// Package describe produces a short natural-language caption of an image
// using a vision model. It is an optional add-on to the focus pipeline and
// never influences the computed focus point.
package describe

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/menta2k/focuspoint/pkg/client"
)

// DefaultPrompt is the caption prompt sent with the image.
const DefaultPrompt = `Describe this image in one short neutral sentence (20 words or fewer).
Do not guess real identities. Plain text only, no markdown.`

// Image preparation limits for what is sent to the model.
const (
	sendMaxDim  = 1024
	sendQuality = 85
)

// Describer captions images through a VisionClient.
type Describer struct {
	client client.VisionClient
	model  string
	prompt string
}

// New creates a Describer for the given backend and model.
func New(visionClient client.VisionClient, model string) *Describer {
	return &Describer{
		client: visionClient,
		model:  model,
		prompt: DefaultPrompt,
	}
}

// NewWithPrompt creates a Describer with a custom prompt.
func NewWithPrompt(visionClient client.VisionClient, model, prompt string) *Describer {
	return &Describer{
		client: visionClient,
		model:  model,
		prompt: prompt,
	}
}

// Describe captions the image. The image is downscaled and JPEG-encoded
// before being sent to the model.
func (d *Describer) Describe(ctx context.Context, img image.Image) (string, error) {
	imgB64, err := prepareImage(img)
	if err != nil {
		return "", err
	}

	raw, err := d.client.Describe(ctx, d.model, d.prompt, imgB64)
	if err != nil {
		return "", err
	}

	return sanitize(raw), nil
}

// prepareImage downscales and encodes the image to base64 JPEG for the model.
func prepareImage(img image.Image) (string, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > sendMaxDim || h > sendMaxDim {
		if w >= h {
			img = imaging.Resize(img, sendMaxDim, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, sendMaxDim, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: sendQuality}); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// sanitize strips code fences and surrounding quotes models tend to add.
func sanitize(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`\"")

	return strings.TrimSpace(raw)
}
