package track

import (
	"image"

	"gocv.io/x/gocv"
)

// Segmenter turns a color frame into a binary mask of target-colored pixels.
// It keeps intermediate matrices between calls, so it is not safe for concurrent use.
type Segmenter struct {
	colors     ColorRange
	lower      gocv.Scalar
	upper      gocv.Scalar
	conversion gocv.ColorConversionCode
	blurSize   image.Point
	iterations int

	kernel  gocv.Mat
	blurred gocv.Mat
	hsv     gocv.Mat
}

// NewSegmenter creates segmenter for the given color range. Order tells how channels of incoming frames are laid out.
func NewSegmenter(colors ColorRange, order ChannelOrder, blurKernel, iterations int) *Segmenter {
	lower, upper := colors.scalars()
	conversion := gocv.ColorBGRToHSV
	if order == RGB {
		conversion = gocv.ColorRGBToHSV
	}
	return &Segmenter{
		colors:     colors,
		lower:      lower,
		upper:      upper,
		conversion: conversion,
		blurSize:   image.Pt(blurKernel, blurKernel),
		iterations: iterations,
		// 3x3 rectangle is what OpenCV uses when no structuring element is given
		kernel:  gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
		blurred: gocv.NewMat(),
		hsv:     gocv.NewMat(),
	}
}

// Range returns target color range
func (s *Segmenter) Range() ColorRange {
	return s.colors
}

// Segment writes mask of the frame into dst: 255 for pixels inside of color range, 0 otherwise.
// Steps: blur, HSV conversion, inclusive range threshold, erosion and then dilation.
func (s *Segmenter) Segment(frame gocv.Mat, dst *gocv.Mat) error {
	if frame.Empty() {
		return ErrEmptyFrame
	}
	gocv.GaussianBlur(frame, &s.blurred, s.blurSize, 0, 0, gocv.BorderDefault)
	gocv.CvtColor(s.blurred, &s.hsv, s.conversion)
	gocv.InRangeWithScalar(s.hsv, s.lower, s.upper, dst)
	// Opening: erosion removes isolated pixels, dilation restores size of surviving regions
	for i := 0; i < s.iterations; i++ {
		gocv.Erode(*dst, dst, s.kernel)
	}
	for i := 0; i < s.iterations; i++ {
		gocv.Dilate(*dst, dst, s.kernel)
	}
	return nil
}

// Close releases native memory
func (s *Segmenter) Close() error {
	if err := s.kernel.Close(); err != nil {
		return err
	}
	if err := s.blurred.Close(); err != nil {
		return err
	}
	return s.hsv.Close()
}
