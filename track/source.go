package track

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// FrameSource is a sequential supplier of frames
type FrameSource interface {
	// Next reads the next frame into dst. It returns false with nil error at the end of stream.
	Next(dst *gocv.Mat) (bool, error)
	// SeekToStart rewinds source so the next call of Next returns the first frame
	SeekToStart() error
	// Close releases source
	Close() error
}

// VideoSource reads frames from a video file or a camera through gocv.VideoCapture
type VideoSource struct {
	uri     string
	device  bool
	capture *gocv.VideoCapture
	// First frame read during probing. It is handed out by the first Next call
	pending    gocv.Mat
	hasPending bool
}

// OpenVideo opens a video file. A numeric uri which is not an existing file is treated as camera device id.
// Source is validated by reading one frame.
func OpenVideo(uri string) (*VideoSource, error) {
	var capture *gocv.VideoCapture
	var err error
	device := false
	if id, convErr := strconv.Atoi(uri); convErr == nil && !fileExists(uri) {
		device = true
		capture, err = gocv.OpenVideoCapture(id)
	} else {
		capture, err = gocv.OpenVideoCapture(uri)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "can't open '%s': %s", uri, err.Error())
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Wrapf(ErrSourceUnavailable, "can't open '%s'", uri)
	}
	source := &VideoSource{
		uri:     uri,
		device:  device,
		capture: capture,
		pending: gocv.NewMat(),
	}
	if ok := capture.Read(&source.pending); !ok || source.pending.Empty() {
		source.Close()
		return nil, errors.Wrapf(ErrSourceUnavailable, "can't read first frame of '%s'", uri)
	}
	source.hasPending = true
	return source, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// URI returns path or device id source has been opened with
func (source *VideoSource) URI() string {
	return source.uri
}

// IsDevice returns true for cameras
func (source *VideoSource) IsDevice() bool {
	return source.device
}

// FPS returns frame rate reported by container or device. Zero if unknown.
func (source *VideoSource) FPS() float64 {
	fps := source.capture.Get(gocv.VideoCaptureFPS)
	if fps < 0 {
		return 0
	}
	return fps
}

// Size returns frame size reported by container or device
func (source *VideoSource) Size() (int, int) {
	return int(source.capture.Get(gocv.VideoCaptureFrameWidth)), int(source.capture.Get(gocv.VideoCaptureFrameHeight))
}

// Next implements FrameSource. Cameras never reach end of stream: failed read from a device is an error.
func (source *VideoSource) Next(dst *gocv.Mat) (bool, error) {
	if source.hasPending {
		source.hasPending = false
		source.pending.CopyTo(dst)
		return true, nil
	}
	if ok := source.capture.Read(dst); !ok || dst.Empty() {
		if source.device {
			return false, errors.Wrapf(ErrSourceUnavailable, "can't read frame from device %s", source.uri)
		}
		return false, nil
	}
	return true, nil
}

// SeekToStart implements FrameSource. Cameras can't be rewound.
func (source *VideoSource) SeekToStart() error {
	if source.device {
		return errors.Errorf("device %s can't seek", source.uri)
	}
	source.hasPending = false
	source.capture.Set(gocv.VideoCapturePosFrames, 0)
	return nil
}

// Close implements FrameSource
func (source *VideoSource) Close() error {
	if err := source.pending.Close(); err != nil {
		return errors.Wrap(err, "Can't close pending frame")
	}
	return source.capture.Close()
}

// MatSource replays in-memory frames. It doesn't own frames: caller closes them.
type MatSource struct {
	frames   []gocv.Mat
	position int
}

// NewMatSource creates source over the frames
func NewMatSource(frames ...gocv.Mat) *MatSource {
	return &MatSource{
		frames: frames,
	}
}

// Next implements FrameSource
func (source *MatSource) Next(dst *gocv.Mat) (bool, error) {
	if source.position >= len(source.frames) {
		return false, nil
	}
	frame := source.frames[source.position]
	source.position++
	if frame.Empty() {
		return false, errors.Wrapf(ErrEmptyFrame, "frame %d", source.position-1)
	}
	frame.CopyTo(dst)
	return true, nil
}

// SeekToStart implements FrameSource
func (source *MatSource) SeekToStart() error {
	source.position = 0
	return nil
}

// Close implements FrameSource
func (source *MatSource) Close() error {
	return nil
}
