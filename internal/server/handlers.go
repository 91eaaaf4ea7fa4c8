package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/menta2k/focuspoint/internal/errs"
	"github.com/menta2k/focuspoint/pkg/crop"
	"github.com/menta2k/focuspoint/pkg/types"
)

// maxCropSide caps requested crop output dimensions.
const maxCropSide = 4096

func (s *Server) handleFocus(c *gin.Context) {
	source, err := resolveSource(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	img, err := s.engine.Load(c.Request.Context(), source)
	if err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.engine.FindFocusImage(img)
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := types.FocusResponse{
		Focus:  result.Focus,
		Width:  result.Width,
		Height: result.Height,
	}

	// Captioning is best-effort; a describe failure never fails the request.
	if s.describer != nil && c.Query("describe") == "1" {
		description, err := s.describer.Describe(c.Request.Context(), img)
		if err != nil {
			s.logger.Warn("describe failed", "source", source, "error", err)
		} else {
			resp.Description = description
		}
	}

	s.logger.Info("focus computed",
		"source", source,
		"x", resp.Focus.X, "y", resp.Focus.Y,
		"width", resp.Width, "height", resp.Height,
	)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCrop(c *gin.Context) {
	source, err := resolveSource(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	img, sourceFormat, err := s.engine.LoadWithFormat(c.Request.Context(), source)
	if err != nil {
		s.fail(c, err)
		return
	}

	spec, err := resolveCropSpec(c, sourceFormat)
	if err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.engine.FindFocusImage(img)
	if err != nil {
		s.fail(c, err)
		return
	}

	fx := float64(result.Focus.X) / float64(result.Width)
	fy := float64(result.Focus.Y) / float64(result.Height)

	box := crop.Around(fx, fy, spec.Width, spec.Height, result.Width, result.Height, 1.0)
	cropped, err := crop.Apply(img, box, spec.Width, spec.Height)
	if err != nil {
		s.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := crop.Encode(&buf, cropped, spec); err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info("crop computed",
		"source", source,
		"width", spec.Width, "height", spec.Height, "format", spec.Format,
	)
	c.Data(http.StatusOK, crop.ContentType(spec.Format), buf.Bytes())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// resolveSource enforces that exactly one of url/path is supplied.
func resolveSource(c *gin.Context) (string, error) {
	url := c.Query("url")
	path := c.Query("path")

	switch {
	case url == "" && path == "":
		return "", errs.New(errs.KindValidation, "params", "provide either 'url' or 'path' parameter")
	case url != "" && path != "":
		return "", errs.New(errs.KindValidation, "params", "provide only one of 'url' or 'path'")
	case url != "":
		return url, nil
	default:
		return path, nil
	}
}

func resolveCropSpec(c *gin.Context, sourceFormat string) (types.CropSpec, error) {
	width, err := strconv.Atoi(c.Query("width"))
	if err != nil || width < 1 || width > maxCropSide {
		return types.CropSpec{}, errs.New(errs.KindValidation, "params",
			"'width' must be an integer between 1 and "+strconv.Itoa(maxCropSide))
	}
	height, err := strconv.Atoi(c.Query("height"))
	if err != nil || height < 1 || height > maxCropSide {
		return types.CropSpec{}, errs.New(errs.KindValidation, "params",
			"'height' must be an integer between 1 and "+strconv.Itoa(maxCropSide))
	}

	format := c.Query("format")
	if format == "" {
		// Inherit the source format when we can encode it; anything else
		// (gif, bmp, tiff, ...) falls back to JPEG output.
		switch sourceFormat {
		case "jpg", "jpeg", "png", "webp":
			format = sourceFormat
		default:
			format = "jpg"
		}
	}

	quality := 90
	if q := c.Query("quality"); q != "" {
		quality, err = strconv.Atoi(q)
		if err != nil || quality < 1 || quality > 100 {
			return types.CropSpec{}, errs.New(errs.KindValidation, "params",
				"'quality' must be an integer between 1 and 100")
		}
	}

	return types.CropSpec{
		Width:   width,
		Height:  height,
		Format:  format,
		Quality: quality,
	}, nil
}

// fail maps a pipeline error onto an HTTP status and the JSON error body.
func (s *Server) fail(c *gin.Context, err error) {
	status := errs.HTTPStatus(err)
	message := errMessage(err)

	s.logger.Error("request failed",
		"path", c.Request.URL.Path,
		"status", status,
		"error", err,
	)
	c.JSON(status, types.ErrorResponse{Error: message})
}

// errMessage extracts the human-readable message without the kind/op prefix.
func errMessage(err error) string {
	var typed *errs.Error
	if errors.As(err, &typed) {
		return typed.Message
	}
	return err.Error()
}
