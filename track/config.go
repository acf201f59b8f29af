package track

import (
	"github.com/pkg/errors"
)

// ChannelOrder is the byte order of color channels in incoming frames
type ChannelOrder int

const (
	// BGR is what gocv.VideoCapture produces
	BGR ChannelOrder = iota
	RGB
)

func (order ChannelOrder) String() string {
	switch order {
	case BGR:
		return "bgr"
	case RGB:
		return "rgb"
	default:
		return "unknown"
	}
}

// Config is the configuration surface of the pipeline. It is supplied once per session.
type Config struct {
	// Target color. Default is TennisBallGreen
	Range ColorRange
	// Channel order of incoming frames. Default is BGR
	Order ChannelOrder
	// Candidates with enclosing circle radius less or equal to this value are treated as noise. Default is 10
	MinRadius float64
	// Number of erode iterations followed by the same number of dilate iterations. Default is 2
	MorphIterations int
	// Side of square Gaussian kernel. Must be odd. Default is 11
	BlurKernel int
	// Motion model of estimator. Default is ConstantVelocityModel
	Model MotionModel
	// Scale of diagonal process noise covariance. Default is 0.03
	ProcessNoise float64
	// Scale of diagonal measurement noise covariance. Default is 1.0
	MeasurementNoise float64
	// Scale of diagonal initial error covariance. Default is 1000
	InitialCovariance float64
	// Standard deviation of acceleration for AccelerationModel. Default is 2.0
	AccelerationNoise float64
}

// DefaultConfig returns configuration tuned for a tennis ball
func DefaultConfig() Config {
	return Config{
		Range:             TennisBallGreen,
		Order:             BGR,
		MinRadius:         10,
		MorphIterations:   2,
		BlurKernel:        11,
		Model:             ConstantVelocityModel,
		ProcessNoise:      0.03,
		MeasurementNoise:  1.0,
		InitialCovariance: 1000,
		AccelerationNoise: 2.0,
	}
}

// Validate checks that configuration could be used to build a pipeline
func (cfg Config) Validate() error {
	if err := cfg.Range.Validate(); err != nil {
		return err
	}
	if cfg.Order != BGR && cfg.Order != RGB {
		return errors.Wrapf(ErrInvalidConfig, "channel order %d", cfg.Order)
	}
	if cfg.MinRadius < 0 {
		return errors.Wrapf(ErrInvalidConfig, "min radius %v is negative", cfg.MinRadius)
	}
	if cfg.MorphIterations < 0 {
		return errors.Wrapf(ErrInvalidConfig, "morphological iterations %d is negative", cfg.MorphIterations)
	}
	if cfg.BlurKernel <= 0 || cfg.BlurKernel%2 == 0 {
		return errors.Wrapf(ErrInvalidConfig, "blur kernel %d must be positive and odd", cfg.BlurKernel)
	}
	if cfg.ProcessNoise < 0 || cfg.MeasurementNoise <= 0 || cfg.InitialCovariance < 0 || cfg.AccelerationNoise < 0 {
		return errors.Wrap(ErrInvalidConfig, "noise scales must be non-negative and measurement noise must be positive")
	}
	if _, ok := motionModels[cfg.Model]; !ok {
		return errors.Wrapf(ErrUnknownMotionModel, "%q", cfg.Model)
	}
	return nil
}
