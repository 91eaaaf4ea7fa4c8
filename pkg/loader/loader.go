// Package loader acquires image bytes from a remote URL or a local file path
// and decodes them into an image.Image.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/focuspoint/internal/errs"
)

// DefaultFetchTimeout bounds a remote image download end to end.
const DefaultFetchTimeout = 10 * time.Second

const userAgent = "focuspoint/1.0 (+https://github.com/menta2k/focuspoint)"

// Loader fetches and decodes images from URLs and local paths.
type Loader struct {
	client   *http.Client
	maxBytes int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithTimeout overrides the remote fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.client.Timeout = d
	}
}

// WithMaxBytes caps how many response bytes are read from a remote image.
// Zero means no cap.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		l.maxBytes = n
	}
}

// New creates a Loader with the default fetch timeout.
func New(opts ...Option) *Loader {
	l := &Loader{
		client: &http.Client{Timeout: DefaultFetchTimeout},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load dispatches on the source string: http(s) URLs are downloaded, anything
// else is treated as a local file path.
func (l *Loader) Load(ctx context.Context, source string) (image.Image, error) {
	img, _, err := l.LoadWithFormat(ctx, source)
	return img, err
}

// LoadWithFormat behaves like Load and additionally reports the decoded
// format name ("jpeg", "png", "webp", ...).
func (l *Loader) LoadWithFormat(ctx context.Context, source string) (image.Image, string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.LoadURL(ctx, source)
	}
	return l.LoadPath(source)
}

// LoadURL downloads and decodes an image from a remote URL.
func (l *Loader) LoadURL(ctx context.Context, imageURL string) (image.Image, string, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, "", errs.Wrap(errs.KindValidation, "fetch", "invalid URL", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, "", errs.New(errs.KindValidation, "fetch",
			fmt.Sprintf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", errs.Wrap(errs.KindSource, "fetch", "failed to create request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", errs.Wrap(errs.KindSource, "fetch",
			fmt.Sprintf("failed to download image from %s", imageURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", errs.New(errs.KindSource, "fetch",
			fmt.Sprintf("failed to download image: HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") &&
		!strings.HasPrefix(contentType, "application/octet-stream") {
		return nil, "", errs.New(errs.KindDecode, "fetch",
			fmt.Sprintf("URL does not point to an image (Content-Type: %s)", contentType))
	}

	body := io.Reader(resp.Body)
	if l.maxBytes > 0 {
		body = io.LimitReader(resp.Body, l.maxBytes)
	}
	imageData, err := io.ReadAll(body)
	if err != nil {
		return nil, "", errs.Wrap(errs.KindSource, "fetch", "failed to read image data", err)
	}

	return Decode(imageData)
}

// LoadPath reads and decodes an image from the local filesystem.
func (l *Loader) LoadPath(path string) (image.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errs.Wrap(errs.KindSourceMissing, "open",
				fmt.Sprintf("could not load image at path: %s", path), err)
		}
		return nil, "", errs.Wrap(errs.KindSource, "open",
			fmt.Sprintf("could not read image at path: %s", path), err)
	}
	return Decode(data)
}

// Decode turns raw bytes into an image and reports the format name. The
// registered stdlib and x/image decoders are tried first, then an explicit
// WebP fallback.
func Decode(data []byte) (image.Image, string, error) {
	if img, format, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, format, nil
	}

	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, "webp", nil
	}

	return nil, "", errs.New(errs.KindDecode, "decode", "unknown or unsupported image format")
}
