package track

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, StatusSearching, Status(Result{}))
	assert.Equal(t, StatusTracking, Status(Result{Detected: &Candidate{}}))
}

func TestAnnotateDoesNotTouchState(t *testing.T) {
	pipeline := newTestPipeline(t)
	frame := newBallFrame(200, 200, image.Pt(100, 100), 25)
	defer frame.Close()

	result, err := pipeline.Step(frame)
	require.NoError(t, err)
	require.True(t, result.Found())
	state := pipeline.Last().State

	annotated := frame.Clone()
	defer annotated.Close()
	pipeline.Annotate(&annotated, result)

	assert.Equal(t, state, pipeline.Last().State)
	assert.Equal(t, result, pipeline.Last())

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(frame, annotated, &diff)
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(diff, &gray, gocv.ColorBGRToGray)
	assert.Greater(t, gocv.CountNonZero(gray), 0)
}

func TestAnnotateEmptyFrame(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	assert.NotPanics(t, func() {
		NewAnnotator().Annotate(&empty, Result{})
	})
}
