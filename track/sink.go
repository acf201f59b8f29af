package track

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// FrameSink consumes processed frames. It may return ErrStopSession or ErrRestartSession to control Session.
type FrameSink interface {
	Consume(annotated gocv.Mat, result Result) error
}

// ResultFunc is an adapter for consumers which don't need frames
type ResultFunc func(result Result) error

// Consume implements FrameSink
func (f ResultFunc) Consume(_ gocv.Mat, result Result) error {
	return f(result)
}

const (
	keyEscape = 27
	keySpace  = 32
)

// WindowSink shows frames in a desktop window.
// Keys: space toggles pause, 'r' restarts session, 'q' and ESC stop it.
type WindowSink struct {
	window *gocv.Window
	// Milliseconds to wait for key press after each frame
	delay  int
	paused bool
}

// NewWindowSink opens window with the given title
func NewWindowSink(title string) *WindowSink {
	return &WindowSink{
		window: gocv.NewWindow(title),
		delay:  1,
	}
}

// Consume implements FrameSink
func (sink *WindowSink) Consume(annotated gocv.Mat, _ Result) error {
	sink.window.IMShow(annotated)
	for {
		delay := sink.delay
		if sink.paused {
			delay = 100
		}
		switch key := sink.window.WaitKey(delay); key {
		case 'q', keyEscape:
			return ErrStopSession
		case 'r':
			sink.paused = false
			return ErrRestartSession
		case keySpace:
			sink.paused = !sink.paused
		}
		if !sink.paused {
			return nil
		}
	}
}

// Close destroys window
func (sink *WindowSink) Close() error {
	return sink.window.Close()
}

// VideoWriterSink writes annotated frames into a video file. File is created on the first frame, when its size is known.
type VideoWriterSink struct {
	path   string
	codec  string
	fps    float64
	writer *gocv.VideoWriter
}

// NewVideoWriterSink creates sink writing Motion JPEG video
func NewVideoWriterSink(path string, fps float64) *VideoWriterSink {
	if fps <= 0 {
		fps = 30
	}
	return &VideoWriterSink{
		path:  path,
		codec: "MJPG",
		fps:   fps,
	}
}

// Consume implements FrameSink
func (sink *VideoWriterSink) Consume(annotated gocv.Mat, _ Result) error {
	if sink.writer == nil {
		writer, err := gocv.VideoWriterFile(sink.path, sink.codec, sink.fps, annotated.Cols(), annotated.Rows(), true)
		if err != nil {
			return errors.Wrapf(err, "Can't create video writer for '%s'", sink.path)
		}
		sink.writer = writer
	}
	if err := sink.writer.Write(annotated); err != nil {
		return errors.Wrapf(err, "Can't write frame into '%s'", sink.path)
	}
	return nil
}

// Close finalizes video file
func (sink *VideoWriterSink) Close() error {
	if sink.writer == nil {
		return nil
	}
	return sink.writer.Close()
}
