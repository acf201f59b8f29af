package track

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Pure green is H=60, S=255, V=255 in OpenCV scale: inside of TennisBallGreen
var ballColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}

var maskWhite = color.RGBA{R: 255, G: 255, B: 255, A: 0}

func newBlankFrame(width, height int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)
}

func newBallFrame(width, height int, center image.Point, radius int) gocv.Mat {
	frame := newBlankFrame(width, height)
	gocv.Circle(&frame, center, radius, ballColor, -1)
	return frame
}

func newBlankMask(width, height int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8U)
}

func closeAll(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
