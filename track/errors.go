package track

import "github.com/pkg/errors"

var (
	// ErrSourceUnavailable is returned when a frame source can't be opened or read. It is fatal to a session.
	ErrSourceUnavailable = errors.New("video source unavailable")
	// ErrEmptyFrame is returned when an empty matrix is handed to the pipeline
	ErrEmptyFrame = errors.New("empty frame")
	// ErrInvalidColorRange is returned for HSV bounds outside of OpenCV's scale or with lower > upper
	ErrInvalidColorRange = errors.New("invalid color range")
	// ErrUnknownMotionModel is returned when configuration names a model that doesn't exist
	ErrUnknownMotionModel = errors.New("unknown motion model")
	// ErrInvalidConfig is returned by Config.Validate
	ErrInvalidConfig = errors.New("invalid tracker configuration")

	// ErrStopSession may be returned by a FrameSink to end the session without an error
	ErrStopSession = errors.New("session stopped")
	// ErrRestartSession may be returned by a FrameSink to rewind the source and reset the estimator
	ErrRestartSession = errors.New("session restart requested")
)
