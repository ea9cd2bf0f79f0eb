// Package imageio decodes diagram uploads into OpenCV matrices.
package imageio

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pof-predictor/internal/poferrors"
)

// Info describes an encoded image without decoding its pixels.
type Info struct {
	Format string
	Width  int
	Height int
}

// DecodeBase64 returns the raw bytes of a standard base64 payload.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, poferrors.New(poferrors.KindInvalidImage, "image is empty")
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, poferrors.Wrap(poferrors.KindInvalidImage, err, "image is not valid base64")
	}
	if len(data) == 0 {
		return nil, poferrors.New(poferrors.KindInvalidImage, "image is empty")
	}

	return data, nil
}

// Probe reads the image header. Unknown formats and zero-size images are
// InvalidImage.
func Probe(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, poferrors.New(poferrors.KindInvalidImage, "image is empty")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, poferrors.Wrap(poferrors.KindInvalidImage, err, "failed to decode image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, poferrors.Newf(poferrors.KindInvalidImage, "image is %dx%d", cfg.Width, cfg.Height)
	}

	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Decode returns the image as a 3-channel BGR Mat. The caller must Close it.
func Decode(data []byte) (gocv.Mat, Info, error) {
	info, err := Probe(data)
	if err != nil {
		return gocv.NewMat(), Info{}, err
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return mat, Info{}, poferrors.Wrap(poferrors.KindInvalidImage, err, "failed to decode image")
	}
	if mat.Empty() {
		return mat, Info{}, poferrors.Newf(poferrors.KindInvalidImage, "unsupported %s image", info.Format)
	}

	return mat, info, nil
}

// Load reads an image file with a supported extension.
func Load(path string) ([]byte, error) {
	if !IsSupportedFormat(path) {
		return nil, fmt.Errorf("unsupported image format: %s", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return data, nil
}

// SupportedFormats returns the list of supported image file extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tiff", ".tif", ".bmp", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
