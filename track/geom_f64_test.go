package track

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	eps = 0.00001
)

func TestEuclideanDistance(t *testing.T) {
	p1 := Point{X: 341, Y: 264}
	p2 := Point{X: 421, Y: 427}
	correctAnswer := 181.57367
	assert.InDelta(t, correctAnswer, euclideanDistance(p1, p2), eps)
	assert.InDelta(t, correctAnswer, p2.DistanceTo(p1), eps)
}

func TestRectangleFromImage(t *testing.T) {
	rect := NewRectFrom(image.Rect(10, 20, 50, 100))
	assert.Equal(t, NewRect(10, 20, 40, 80), rect)
	assert.Equal(t, Point{X: 30, Y: 60}, rect.Center())
}

func TestPointImagePoint(t *testing.T) {
	assert.Equal(t, image.Pt(12, 7), NewPoint(12.9, 7.2).ImagePoint())
	assert.Equal(t, image.Pt(-3, 0), NewPoint(-3.7, 0.4).ImagePoint())
	assert.Equal(t, NewPoint(5, 6), NewPointFrom(image.Pt(5, 6)))
}

func TestPointIsFinite(t *testing.T) {
	assert.True(t, NewPoint(1, 2).IsFinite())
	assert.False(t, NewPoint(math.NaN(), 2).IsFinite())
	assert.False(t, NewPoint(1, math.Inf(-1)).IsFinite())
}
