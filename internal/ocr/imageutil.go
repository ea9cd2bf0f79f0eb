package ocr

import (
	"image"

	"gocv.io/x/gocv"

	"pof-predictor/pkg/colorutil"
)

// binarize keeps the pixels inside band as white on black and upscales the
// mask for legibility. The caller owns the returned Mat.
func binarize(region gocv.Mat, band colorutil.HSVRange, scale float64) gocv.Mat {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(region, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	lower := gocv.NewScalar(band.Lower[0], band.Lower[1], band.Lower[2], 0)
	upper := gocv.NewScalar(band.Upper[0], band.Upper[1], band.Upper[2], 0)
	gocv.InRangeWithScalar(hsv, lower, upper, &mask)

	scaled := gocv.NewMat()
	gocv.Resize(mask, &scaled, image.Point{}, scale, scale, gocv.InterpolationLinear)
	return scaled
}

// inside reports whether r is non-empty and lies within a cols x rows image.
func inside(r image.Rectangle, cols, rows int) bool {
	return !r.Empty() && r.In(image.Rect(0, 0, cols, rows))
}
