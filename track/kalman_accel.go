package track

import (
	"math"

	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// Acceleration is a 2D Kalman filter which treats acceleration as white noise.
// Time step is one frame and there is no control input, so the filter does not drift by itself.
// It implements Estimator interface.
type Acceleration struct {
	stdDevA  float64
	stdDevM  float64
	tracker  *kalman_filter.Kalman2D
	velocity Point
}

// NewAcceleration creates filter. stdDevA is standard deviation of acceleration, measurementNoise is variance of measured position.
func NewAcceleration(stdDevA, measurementNoise float64) *Acceleration {
	estimator := &Acceleration{
		stdDevA: stdDevA,
		stdDevM: math.Sqrt(measurementNoise),
	}
	estimator.Reset()
	return estimator
}

// Reset re-creates underlying filter with zero state
func (estimator *Acceleration) Reset() {
	/* Kalman filter props */
	dt := 1.0
	ux := 0.0
	uy := 0.0
	estimator.tracker = kalman_filter.NewKalman2D(dt, ux, uy, estimator.stdDevA, estimator.stdDevM, estimator.stdDevM)
	estimator.velocity = Point{}
}

// Predict execute Kalman filter's first step and returns projected position
func (estimator *Acceleration) Predict() Point {
	prevX, prevY := estimator.tracker.GetState()
	estimator.tracker.Predict()
	stateX, stateY := estimator.tracker.GetState()
	predicted := Point{X: stateX, Y: stateY}
	if !predicted.IsFinite() {
		estimator.Reset()
		return Point{}
	}
	// With unit time step and no control input the displacement of one prediction is the velocity
	estimator.velocity = Point{X: stateX - prevX, Y: stateY - prevY}
	return predicted
}

// Update execute Kalman filter's second step (evaluate state vector based on Kalman gain)
func (estimator *Acceleration) Update(measurement Point) error {
	if !measurement.IsFinite() {
		return errors.Errorf("measurement (%v, %v) is not finite", measurement.X, measurement.Y)
	}
	err := estimator.tracker.Update(measurement.X, measurement.Y)
	if err != nil {
		return errors.Wrap(err, "Can't update acceleration tracker")
	}
	return nil
}

// State returns filtered position. Velocity is derived from the last prediction step.
func (estimator *Acceleration) State() State {
	stateX, stateY := estimator.tracker.GetState()
	return State{
		X:  stateX,
		Y:  stateY,
		VX: estimator.velocity.X,
		VY: estimator.velocity.Y,
	}
}
