package track

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

const (
	StatusTracking  = "TRACKING ACTIVE"
	StatusSearching = "SEARCHING..."
)

// Annotator draws detection and prediction markers on frames. It holds no tracking state.
type Annotator struct {
	DetectionColor  color.RGBA
	DetectionGlow   color.RGBA
	PredictionColor color.RGBA
	PredictionRing  color.RGBA
	// Radius of prediction marker (in pixels)
	PredictionRadius int
	// Draw coordinates of prediction and detection at the bottom of frame
	ShowCoordinates bool
}

// NewAnnotator creates annotator with orange detections and green predictions
func NewAnnotator() *Annotator {
	return &Annotator{
		DetectionColor:   color.RGBA{R: 252, G: 163, B: 17, A: 0},
		DetectionGlow:    color.RGBA{R: 255, G: 180, B: 50, A: 0},
		PredictionColor:  color.RGBA{R: 0, G: 200, B: 83, A: 0},
		PredictionRing:   color.RGBA{R: 0, G: 220, B: 100, A: 0},
		PredictionRadius: 8,
		ShowCoordinates:  true,
	}
}

// Status returns text describing whether target was detected on frame
func Status(result Result) string {
	if result.Found() {
		return StatusTracking
	}
	return StatusSearching
}

// Annotate draws overlays for the result onto frame
func (annotator *Annotator) Annotate(frame *gocv.Mat, result Result) {
	if frame.Empty() {
		return
	}
	rows := frame.Rows()

	if result.Found() {
		det := result.Detected
		center := det.Center.ImagePoint()
		radius := int(det.Radius)
		gocv.Circle(frame, center, radius, annotator.DetectionColor, 3)
		gocv.Circle(frame, center, radius+5, annotator.DetectionGlow, 1)
		gocv.PutText(frame, "DETECTED", image.Pt(center.X-40, center.Y-radius-20), gocv.FontHersheySimplex, 0.7, annotator.DetectionColor, 2)
	}

	predicted := result.Predicted.ImagePoint()
	gocv.Circle(frame, predicted, annotator.PredictionRadius, annotator.PredictionColor, 2)
	gocv.Circle(frame, predicted, annotator.PredictionRadius+4, annotator.PredictionRing, 1)
	gocv.PutText(frame, "PREDICTED", image.Pt(predicted.X-45, predicted.Y-25), gocv.FontHersheySimplex, 0.6, annotator.PredictionColor, 2)

	statusColor := annotator.DetectionColor
	if result.Found() {
		statusColor = annotator.PredictionColor
	}
	gocv.PutText(frame, Status(result), image.Pt(10, 30), gocv.FontHersheySimplex, 1, statusColor, 2)

	if !annotator.ShowCoordinates {
		return
	}
	gocv.PutText(frame, fmt.Sprintf("Pred: (%d, %d)", predicted.X, predicted.Y), image.Pt(10, rows-40), gocv.FontHersheySimplex, 0.6, annotator.PredictionColor, 2)
	if result.Found() {
		detected := result.Detected.Center.ImagePoint()
		gocv.PutText(frame, fmt.Sprintf("Det: (%d, %d)", detected.X, detected.Y), image.Pt(10, rows-15), gocv.FontHersheySimplex, 0.6, annotator.DetectionColor, 2)
	}
}
