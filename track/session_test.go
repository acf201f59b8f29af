package track

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type closeTrackingSource struct {
	*MatSource
	closed int
}

func (source *closeTrackingSource) Close() error {
	source.closed++
	return nil
}

func movingBallFrames(n int) []gocv.Mat {
	frames := make([]gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, newBallFrame(160, 100, image.Pt(30+5*i, 50), 20))
	}
	return frames
}

func newSessionPipeline(t *testing.T) *Pipeline {
	t.Helper()
	pipeline, err := NewPipeline(DefaultConfig())
	require.NoError(t, err)
	return pipeline
}

func collect(results *[]Result) ResultFunc {
	return func(result Result) error {
		*results = append(*results, result)
		return nil
	}
}

func TestSessionRunToEnd(t *testing.T) {
	frames := movingBallFrames(4)
	defer closeAll(frames)
	source := &closeTrackingSource{MatSource: NewMatSource(frames...)}

	results := []Result{}
	session := NewSession(source, newSessionPipeline(t), WithSinks(collect(&results)))
	require.NoError(t, session.Run(context.Background()))

	require.Len(t, results, 4)
	for i, result := range results {
		assert.Equal(t, i, result.Frame)
		assert.True(t, result.Found())
	}
	assert.Equal(t, 1, source.closed)
	assert.NoError(t, session.Close())
	assert.Equal(t, 1, source.closed)
}

func TestSessionLoopResetsEstimator(t *testing.T) {
	frames := movingBallFrames(5)
	defer closeAll(frames)

	results := []Result{}
	stopAfter := func(result Result) error {
		results = append(results, result)
		if len(results) == 12 {
			return ErrStopSession
		}
		return nil
	}
	session := NewSession(NewMatSource(frames...), newSessionPipeline(t), WithLoop(true), WithSinks(ResultFunc(stopAfter)))
	require.NoError(t, session.Run(context.Background()))

	require.Len(t, results, 12)
	assert.Equal(t, 2, session.Loops())
	for _, start := range []int{5, 10} {
		assert.Equal(t, 0, results[start].Frame)
		assert.Equal(t, Point{}, results[start].Predicted, "first prediction after loop must come from fresh state")
		assert.NotEqual(t, results[start-1].Session, results[start].Session)
	}
	assert.Equal(t, results[0].Session, results[4].Session)
}

func TestSessionLoopOverEmptySource(t *testing.T) {
	session := NewSession(NewMatSource(), newSessionPipeline(t), WithLoop(true))
	done := make(chan error, 1)
	go func() {
		done <- session.Run(context.Background())
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session spins over empty source")
	}
}

func TestSessionRestartRequest(t *testing.T) {
	frames := movingBallFrames(6)
	defer closeAll(frames)

	results := []Result{}
	sink := func(result Result) error {
		results = append(results, result)
		if len(results) == 3 {
			return ErrRestartSession
		}
		return nil
	}
	session := NewSession(NewMatSource(frames...), newSessionPipeline(t), WithSinks(ResultFunc(sink)))
	require.NoError(t, session.Run(context.Background()))

	// 3 frames, restart, then the whole source
	require.Len(t, results, 9)
	assert.Equal(t, 0, results[3].Frame)
	assert.Equal(t, Point{}, results[3].Predicted)
	assert.Equal(t, 1, session.Loops())
}

func TestSessionCancelled(t *testing.T) {
	frames := movingBallFrames(3)
	defer closeAll(frames)
	source := &closeTrackingSource{MatSource: NewMatSource(frames...)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := []Result{}
	session := NewSession(source, newSessionPipeline(t), WithSinks(collect(&results)))
	err := session.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, results)
	assert.Equal(t, 1, source.closed)
}

func TestSessionFatalErrorReleasesSource(t *testing.T) {
	good := newBallFrame(100, 100, image.Pt(50, 50), 20)
	defer good.Close()
	empty := gocv.NewMat()
	defer empty.Close()
	source := &closeTrackingSource{MatSource: NewMatSource(good, empty)}

	results := []Result{}
	session := NewSession(source, newSessionPipeline(t), WithSinks(collect(&results)))
	err := session.Run(context.Background())
	assert.True(t, errors.Is(err, ErrEmptyFrame))
	assert.Len(t, results, 1)
	assert.Equal(t, 1, source.closed)
}

func TestSessionSinkError(t *testing.T) {
	frames := movingBallFrames(2)
	defer closeAll(frames)
	failure := errors.New("disk is full")

	session := NewSession(NewMatSource(frames...), newSessionPipeline(t), WithSinks(ResultFunc(func(Result) error {
		return failure
	})))
	err := session.Run(context.Background())
	assert.True(t, errors.Is(err, failure))
}

func TestSessionFrameSizeAndObserver(t *testing.T) {
	frames := movingBallFrames(2)
	defer closeAll(frames)

	sizes := []image.Point{}
	sink := sizeSink(func(frame gocv.Mat) {
		sizes = append(sizes, image.Pt(frame.Cols(), frame.Rows()))
	})
	observed := 0
	observer := func(result Result, elapsed time.Duration) {
		observed++
		assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	}
	session := NewSession(NewMatSource(frames...), newSessionPipeline(t),
		WithFrameSize(80, 0),
		WithSinks(sink),
		WithObserver(observer),
		WithAnnotate(false),
	)
	require.NoError(t, session.Run(context.Background()))
	assert.Equal(t, []image.Point{image.Pt(80, 50), image.Pt(80, 50)}, sizes)
	assert.Equal(t, 2, observed)
}

type sizeSink func(frame gocv.Mat)

func (sink sizeSink) Consume(annotated gocv.Mat, _ Result) error {
	sink(annotated)
	return nil
}
