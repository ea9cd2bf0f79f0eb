package ocr

import (
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"

	"pof-predictor/internal/logger"
	"pof-predictor/internal/poferrors"
	"pof-predictor/pkg/colorutil"
	"pof-predictor/pkg/geometry"
)

const (
	// OutOfBoundsID is read for nodes whose label band leaves the image.
	OutOfBoundsID = "out of bounds"

	// InvalidID is read when OCR finds nothing usable.
	InvalidID = "invalid"
)

// DefaultUpscale enlarges the binarized label before OCR.
const DefaultUpscale = 3.0

// ReaderConfig tunes label location and binarization.
type ReaderConfig struct {
	Locator LabelLocator
	Band    colorutil.HSVRange
	Upscale float64
}

// DefaultReaderConfig returns the settings for the stock diagram renderer.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Locator: DefaultLocator,
		Band:    colorutil.LabelBand,
		Upscale: DefaultUpscale,
	}
}

// Reader crops, binarizes and reads site labels.
type Reader struct {
	cfg       ReaderConfig
	extractor TextExtractor
}

// NewReader returns a Reader that recognizes text with extractor.
func NewReader(cfg ReaderConfig, extractor TextExtractor) *Reader {
	return &Reader{cfg: cfg, extractor: extractor}
}

// Label is the binarized label band of one node.
type Label struct {
	Region image.Rectangle
	PNG    []byte
}

// Crop locates and binarizes the label of the node in box. It returns nil
// when the label band leaves the image.
func (r *Reader) Crop(img gocv.Mat, box geometry.Box) (*Label, error) {
	node := box.Pixels()
	if node.Empty() {
		return nil, poferrors.Newf(poferrors.KindInvalidImage, "node box %v has no area", node)
	}

	region := r.cfg.Locator.Locate(node)
	if !inside(region, img.Cols(), img.Rows()) {
		logger.Debugf("label region %v outside %dx%d image", region, img.Cols(), img.Rows())
		return nil, nil
	}

	crop := img.Region(region)
	defer crop.Close()

	binary := binarize(crop, r.cfg.Band, r.cfg.Upscale)
	defer binary.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, binary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode label: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory freed by Close.
	data := append([]byte(nil), buf.GetBytes()...)
	return &Label{Region: region, PNG: data}, nil
}

// ReadSiteID reads the label of the node in box. A label band outside the
// image yields OutOfBoundsID and an unreadable label InvalidID, neither as
// an error. Engine failures wrap ErrEngineUnavailable.
func (r *Reader) ReadSiteID(img gocv.Mat, box geometry.Box) (string, error) {
	label, err := r.Crop(img, box)
	if err != nil {
		return "", err
	}
	if label == nil {
		return OutOfBoundsID, nil
	}

	text, err := r.extractor.ExtractText(label.PNG)
	if err != nil {
		return "", err
	}

	return NormalizeSiteID(text), nil
}

// NormalizeSiteID trims OCR output and keeps the token before the first
// '_' or '-'. Empty results become InvalidID.
func NormalizeSiteID(text string) string {
	id := strings.TrimSpace(text)
	if i := strings.IndexAny(id, "_-"); i >= 0 {
		id = id[:i]
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return InvalidID
	}
	return id
}
