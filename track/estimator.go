package track

import (
	"github.com/pkg/errors"
)

// MotionModel names an Estimator implementation
type MotionModel string

const (
	// ConstantVelocityModel is a linear Kalman filter over [x, y, vx, vy] with unit time step
	ConstantVelocityModel = MotionModel("constant_velocity")
	// AccelerationModel is a Kalman filter driven by white noise acceleration
	AccelerationModel = MotionModel("acceleration")
)

var motionModels = map[MotionModel]struct{}{
	ConstantVelocityModel: {},
	AccelerationModel:     {},
}

// State is the mean of estimator's belief. Covariance is kept inside of estimator.
type State struct {
	X  float64
	Y  float64
	VX float64
	VY float64
}

// Position returns [x, y] part of state
func (state State) Position() Point {
	return Point{X: state.X, Y: state.Y}
}

// Velocity returns [vx, vy] part of state
func (state State) Velocity() Point {
	return Point{X: state.VX, Y: state.VY}
}

// Estimator is the interface for recursive position estimators.
// Predict must be called exactly once per frame and before Update.
type Estimator interface {
	// Predict advances state by one frame and returns projected position
	Predict() Point
	// Update corrects state with measured position
	Update(measurement Point) error
	// Reset drops all accumulated belief and returns estimator to its initial state
	Reset()
	// State returns current mean
	State() State
}

// NewEstimator creates estimator for the configured motion model
func NewEstimator(cfg Config) (Estimator, error) {
	switch cfg.Model {
	case ConstantVelocityModel, "":
		return NewConstantVelocity(cfg.ProcessNoise, cfg.MeasurementNoise, cfg.InitialCovariance), nil
	case AccelerationModel:
		return NewAcceleration(cfg.AccelerationNoise, cfg.MeasurementNoise), nil
	default:
		return nil, errors.Wrapf(ErrUnknownMotionModel, "%q", cfg.Model)
	}
}
