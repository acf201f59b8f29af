package track

import (
	"gocv.io/x/gocv"
)

// Candidate is a single detection on a frame: minimal enclosing circle of a foreground contour.
// Candidates have no identity across frames.
type Candidate struct {
	Center Point
	Radius float64
	// Area enclosed by contour (not by circle)
	Area float64
	// Bounding box of contour
	BBox Rectangle
}

// Extractor selects detection candidate from a binary mask
type Extractor struct {
	// Threshold radius (in pixels). Candidates with radius less or equal are rejected. Default 10.0
	minRadius float64
}

// NewExtractorDefault creates default instance of Extractor
func NewExtractorDefault() *Extractor {
	return &Extractor{
		minRadius: 10.0,
	}
}

// NewExtractor creates new instance of Extractor
func NewExtractor(minRadius float64) *Extractor {
	return &Extractor{
		minRadius: minRadius,
	}
}

// MinRadius returns noise threshold
func (extractor *Extractor) MinRadius() float64 {
	return extractor.minRadius
}

// Candidates returns enclosing circles of external contours ordered by area descending (ties keep extraction order).
// The noise threshold is not applied. If limit is positive at most limit candidates are returned.
func (extractor *Extractor) Candidates(mask gocv.Mat, limit int) []Candidate {
	if mask.Empty() {
		return nil
	}
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	priorityQueue := make(candidateHeap, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		x, y, radius := gocv.MinEnclosingCircle(contour)
		priorityQueue.Push(&rankedCandidate{
			underlying: Candidate{
				Center: Point{X: float64(x), Y: float64(y)},
				Radius: float64(radius),
				Area:   gocv.ContourArea(contour),
				BBox:   NewRectFrom(gocv.BoundingRect(contour)),
			},
			order: i,
		})
	}

	n := priorityQueue.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	candidates := make([]Candidate, 0, n)
	for len(candidates) < n {
		candidates = append(candidates, priorityQueue.Pop().underlying)
	}
	return candidates
}

// Extract picks contour with the largest area and returns its enclosing circle if radius is strictly greater than threshold.
// Second return value is false when mask has no contours or the largest one is treated as noise.
func (extractor *Extractor) Extract(mask gocv.Mat) (Candidate, bool) {
	candidates := extractor.Candidates(mask, 1)
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	return extractor.accept(candidates[0])
}

func (extractor *Extractor) accept(candidate Candidate) (Candidate, bool) {
	if candidate.Radius > extractor.minRadius {
		return candidate, true
	}
	return Candidate{}, false
}
