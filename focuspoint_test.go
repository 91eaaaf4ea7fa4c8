package focuspoint

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/focuspoint/internal/errs"
	"github.com/menta2k/focuspoint/pkg/loader"
	"github.com/menta2k/focuspoint/pkg/saliency"
)

// createTestImage creates a flat image with one bright square
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{80, 80, 80, 255})
		}
	}
	for y := height / 4; y < height/2; y++ {
		for x := width / 4; x < width/2; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	return img
}

func writeTestImage(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return path
}

func TestNew(t *testing.T) {
	if New() == nil {
		t.Error("New() returned nil")
	}
}

func TestFindFocusImage(t *testing.T) {
	engine := New()
	img := createTestImage(200, 160)

	result, err := engine.FindFocusImage(img)
	if err != nil {
		t.Fatalf("FindFocusImage failed: %v", err)
	}

	if result.Width != 200 || result.Height != 160 {
		t.Errorf("expected dimensions 200x160, got %dx%d", result.Width, result.Height)
	}
	if result.Focus.X < 0 || result.Focus.X >= result.Width {
		t.Errorf("focus x out of bounds: %d", result.Focus.X)
	}
	if result.Focus.Y < 0 || result.Focus.Y >= result.Height {
		t.Errorf("focus y out of bounds: %d", result.Focus.Y)
	}
}

func TestFindFocusFromPath(t *testing.T) {
	engine := New()
	path := writeTestImage(t, createTestImage(160, 120))

	result, err := engine.FindFocus(context.Background(), path)
	if err != nil {
		t.Fatalf("FindFocus failed: %v", err)
	}

	if result.Width != 160 || result.Height != 120 {
		t.Errorf("expected true image dimensions 160x120, got %dx%d", result.Width, result.Height)
	}
}

func TestFindFocusDeterminism(t *testing.T) {
	engine := New()
	path := writeTestImage(t, createTestImage(180, 140))

	first, err := engine.FindFocus(context.Background(), path)
	if err != nil {
		t.Fatalf("first FindFocus failed: %v", err)
	}
	second, err := engine.FindFocus(context.Background(), path)
	if err != nil {
		t.Fatalf("second FindFocus failed: %v", err)
	}

	if first.Focus != second.Focus {
		t.Errorf("same image produced different focus points: %+v vs %+v", first.Focus, second.Focus)
	}
}

func TestFindFocusMissingPath(t *testing.T) {
	engine := New()

	_, err := engine.FindFocus(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errs.IsKind(err, errs.KindSourceMissing) {
		t.Errorf("expected source_missing kind, got: %v", err)
	}
}

func TestNewWithComponents(t *testing.T) {
	engine := NewWithComponents(loader.New(), saliency.NewFineGrained())

	result, err := engine.FindFocusImage(createTestImage(120, 100))
	if err != nil {
		t.Fatalf("FindFocusImage with fine-grained scorer failed: %v", err)
	}
	if result.Width != 120 || result.Height != 100 {
		t.Errorf("expected dimensions 120x100, got %dx%d", result.Width, result.Height)
	}
}
