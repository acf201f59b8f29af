package track

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantVelocityPredictWithoutUpdate(t *testing.T) {
	kf := NewConstantVelocityDefault()
	for i := 0; i < 50; i++ {
		p := kf.Predict()
		require.True(t, p.IsFinite())
		assert.Equal(t, Point{}, p)
	}
}

func TestConstantVelocityStaticTarget(t *testing.T) {
	kf := NewConstantVelocityDefault()
	target := Point{X: 50, Y: 50}
	predictions := make([]Point, 0, 10)
	for i := 0; i < 10; i++ {
		predictions = append(predictions, kf.Predict())
		require.NoError(t, kf.Update(target))
	}
	// First prediction is the untouched zero state
	assert.Equal(t, Point{}, predictions[0])
	for i := 2; i < len(predictions); i++ {
		assert.InDelta(t, 50.0, predictions[i].X, 1.0, "frame %d", i)
		assert.InDelta(t, 50.0, predictions[i].Y, 1.0, "frame %d", i)
	}
	state := kf.State()
	assert.InDelta(t, 0.0, state.VX, 0.05)
	assert.InDelta(t, 0.0, state.VY, 0.05)
}

func TestConstantVelocityExtrapolation(t *testing.T) {
	kf := NewConstantVelocityDefault()
	for i := 0; i < 10; i++ {
		kf.Predict()
		require.NoError(t, kf.Update(Point{X: 20 + 5*float64(i), Y: 40}))
	}
	velocity := kf.State().Velocity()
	assert.InDelta(t, 5.0, velocity.X, 0.1)
	assert.InDelta(t, 0.0, velocity.Y, 0.1)

	prev := kf.State().Position()
	for i := 0; i < 5; i++ {
		current := kf.Predict()
		// Without measurements the filter moves by its own velocity estimate
		assert.InDelta(t, velocity.X, current.X-prev.X, 1e-9)
		assert.InDelta(t, velocity.Y, current.Y-prev.Y, 1e-9)
		assert.InDelta(t, 5.0, current.X-prev.X, 0.1)
		prev = current
	}
	assert.InDelta(t, 90.0, prev.X, 0.5)
}

func TestConstantVelocityReset(t *testing.T) {
	kf := NewConstantVelocityDefault()
	for i := 0; i < 10; i++ {
		kf.Predict()
		require.NoError(t, kf.Update(Point{X: 100 + 7*float64(i), Y: 10 * float64(i)}))
	}
	require.NotEqual(t, State{}, kf.State())

	kf.Reset()
	assert.Equal(t, State{}, kf.State())
	assert.Equal(t, Point{}, kf.Predict())

	fresh := NewConstantVelocityDefault()
	fresh.Predict()
	require.NoError(t, kf.Update(Point{X: 30, Y: 30}))
	require.NoError(t, fresh.Update(Point{X: 30, Y: 30}))
	assert.InDelta(t, fresh.State().X, kf.State().X, 1e-9)
	assert.InDelta(t, fresh.State().VX, kf.State().VX, 1e-9)
}

func TestConstantVelocityRejectsNonFinite(t *testing.T) {
	kf := NewConstantVelocityDefault()
	kf.Predict()
	err := kf.Update(Point{X: math.NaN(), Y: 1})
	require.Error(t, err)
	assert.Equal(t, State{}, kf.State())
}

func TestNewEstimator(t *testing.T) {
	cfg := DefaultConfig()
	estimator, err := NewEstimator(cfg)
	require.NoError(t, err)
	assert.IsType(t, &ConstantVelocity{}, estimator)

	cfg.Model = AccelerationModel
	estimator, err = NewEstimator(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Acceleration{}, estimator)

	cfg.Model = MotionModel("particle")
	_, err = NewEstimator(cfg)
	assert.True(t, errors.Is(err, ErrUnknownMotionModel))
}
