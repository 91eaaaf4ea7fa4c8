package client

import "context"

// VisionClient is implemented by vision-model backends that can caption an
// image supplied as base64-encoded bytes.
type VisionClient interface {
	Describe(ctx context.Context, model, prompt, imgB64 string) (string, error)
}
