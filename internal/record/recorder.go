// Package record persists per-frame tracking results
package record

import (
	"github.com/LdDl/ball-tracker/track"
	"github.com/pkg/errors"
)

// Recorder stores tracking results
type Recorder interface {
	Record(result track.Result) error
	Close() error
}

// Multi fans results out to several recorders
type Multi []Recorder

// Record implements Recorder. It stops at the first failing recorder.
func (m Multi) Record(result track.Result) error {
	for i, recorder := range m {
		if err := recorder.Record(result); err != nil {
			return errors.Wrapf(err, "recorder %d", i)
		}
	}
	return nil
}

// Close implements Recorder. Every recorder is closed, the first error is returned.
func (m Multi) Close() error {
	var first error
	for i, recorder := range m {
		if err := recorder.Close(); err != nil && first == nil {
			first = errors.Wrapf(err, "recorder %d", i)
		}
	}
	return first
}

// Sink adapts recorder to track.FrameSink
func Sink(recorder Recorder) track.ResultFunc {
	return func(result track.Result) error {
		return recorder.Record(result)
	}
}

type row struct {
	session string
	frame   int
	predX   float64
	predY   float64
	found   bool
	detX    float64
	detY    float64
	radius  float64
}

func newRow(result track.Result) row {
	r := row{
		session: result.Session.String(),
		frame:   result.Frame,
		predX:   result.Predicted.X,
		predY:   result.Predicted.Y,
		found:   result.Found(),
	}
	if r.found {
		r.detX = result.Detected.Center.X
		r.detY = result.Detected.Center.Y
		r.radius = result.Detected.Radius
	}
	return r
}
