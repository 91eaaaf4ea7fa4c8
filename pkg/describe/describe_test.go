package describe

import (
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"testing"
)

// fakeClient records the request and returns a canned response
type fakeClient struct {
	response string
	err      error

	gotModel  string
	gotPrompt string
	gotB64    string
}

func (f *fakeClient) Describe(_ context.Context, model, prompt, imgB64 string) (string, error) {
	f.gotModel = model
	f.gotPrompt = prompt
	f.gotB64 = imgB64
	return f.response, f.err
}

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 100, 255})
		}
	}
	return img
}

func TestDescribe(t *testing.T) {
	fake := &fakeClient{response: "A gradient pattern on a flat background."}
	d := New(fake, "test-model")

	got, err := d.Describe(context.Background(), createTestImage(100, 80))
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	if got != "A gradient pattern on a flat background." {
		t.Errorf("unexpected description: %q", got)
	}
	if fake.gotModel != "test-model" {
		t.Errorf("expected model test-model, got %q", fake.gotModel)
	}
	if fake.gotPrompt != DefaultPrompt {
		t.Errorf("expected default prompt, got %q", fake.gotPrompt)
	}

	// The image payload must be valid base64
	if _, err := base64.StdEncoding.DecodeString(fake.gotB64); err != nil {
		t.Errorf("image payload is not valid base64: %v", err)
	}
}

func TestDescribeSanitizesResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"plain", "A dog in a park.", "A dog in a park."},
		{"fenced", "```\nA dog in a park.\n```", "A dog in a park."},
		{"quoted", "\"A dog in a park.\"", "A dog in a park."},
		{"padded", "  A dog in a park.  \n", "A dog in a park."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(&fakeClient{response: tt.response}, "m")
			got, err := d.Describe(context.Background(), createTestImage(20, 20))
			if err != nil {
				t.Fatalf("Describe failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribePropagatesError(t *testing.T) {
	wantErr := errors.New("backend down")
	d := New(&fakeClient{err: wantErr}, "m")

	_, err := d.Describe(context.Background(), createTestImage(20, 20))
	if !errors.Is(err, wantErr) {
		t.Errorf("expected backend error, got: %v", err)
	}
}

func TestNewWithPrompt(t *testing.T) {
	fake := &fakeClient{response: "ok"}
	d := NewWithPrompt(fake, "m", "custom prompt")

	if _, err := d.Describe(context.Background(), createTestImage(20, 20)); err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if fake.gotPrompt != "custom prompt" {
		t.Errorf("expected custom prompt, got %q", fake.gotPrompt)
	}
}
