package track

import (
	"image"

	"gocv.io/x/gocv"
)

// FitSize returns the largest size with aspect ratio of src which fits into box.
// Zero box keeps source size. If only one side of box is set the other one is derived from aspect ratio.
func FitSize(src, box image.Point) image.Point {
	if src.X <= 0 || src.Y <= 0 {
		return src
	}
	aspectRatio := float64(src.X) / float64(src.Y)
	switch {
	case box.X <= 0 && box.Y <= 0:
		return src
	case box.Y <= 0:
		return image.Pt(box.X, max(1, int(float64(box.X)/aspectRatio)))
	case box.X <= 0:
		return image.Pt(max(1, int(float64(box.Y)*aspectRatio)), box.Y)
	}
	if float64(box.X)/aspectRatio <= float64(box.Y) {
		return image.Pt(box.X, max(1, int(float64(box.X)/aspectRatio)))
	}
	return image.Pt(max(1, int(float64(box.Y)*aspectRatio)), box.Y)
}

// fitFrame resizes src into dst when box requires it. Returns the matrix which should be processed further.
func fitFrame(src gocv.Mat, dst *gocv.Mat, box image.Point) gocv.Mat {
	size := image.Pt(src.Cols(), src.Rows())
	fitted := FitSize(size, box)
	if fitted == size {
		return src
	}
	gocv.Resize(src, dst, fitted, 0, 0, gocv.InterpolationLinear)
	return *dst
}
