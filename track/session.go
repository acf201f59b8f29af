package track

import (
	"context"
	"image"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// Observer is notified after every committed pipeline step with time spent in it
type Observer func(result Result, elapsed time.Duration)

// Session drives a Pipeline over a FrameSource and hands results to sinks.
// Session owns both source and pipeline and releases them when Run returns.
type Session struct {
	source    FrameSource
	pipeline  *Pipeline
	sinks     []FrameSink
	observers []Observer
	logger    zerolog.Logger

	loop      bool
	annotate  bool
	frameSize image.Point
	fps       float64

	loops  int
	closed bool
}

// Option configures Session
type Option func(*Session)

// WithSinks adds frame consumers. Sinks are called in the given order.
func WithSinks(sinks ...FrameSink) Option {
	return func(s *Session) {
		s.sinks = append(s.sinks, sinks...)
	}
}

// WithObserver adds callback for committed results
func WithObserver(observer Observer) Option {
	return func(s *Session) {
		s.observers = append(s.observers, observer)
	}
}

// WithLoop makes session rewind source and reset estimator at the end of stream
func WithLoop(loop bool) Option {
	return func(s *Session) {
		s.loop = loop
	}
}

// WithFrameSize makes session fit every frame into the box preserving aspect ratio. Zero box keeps source size.
func WithFrameSize(width, height int) Option {
	return func(s *Session) {
		s.frameSize = image.Pt(width, height)
	}
}

// WithFPS limits processing rate. Zero means as fast as possible.
func WithFPS(fps float64) Option {
	return func(s *Session) {
		s.fps = fps
	}
}

// WithLogger sets logger. Session is silent by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithAnnotate turns drawing of overlays before sinks on or off. Default is on.
func WithAnnotate(annotate bool) Option {
	return func(s *Session) {
		s.annotate = annotate
	}
}

// NewSession creates session. It takes ownership of source and pipeline.
func NewSession(source FrameSource, pipeline *Pipeline, options ...Option) *Session {
	s := &Session{
		source:   source,
		pipeline: pipeline,
		logger:   zerolog.Nop(),
		annotate: true,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Pipeline returns underlying pipeline
func (s *Session) Pipeline() *Pipeline {
	return s.pipeline
}

// Loops returns how many times source has been rewound
func (s *Session) Loops() int {
	return s.loops
}

// Run processes frames until end of stream (when looping is off), a sink asks to stop, or ctx is done.
// Context is checked between frames only. Source and pipeline are released before Run returns.
func (s *Session) Run(ctx context.Context) (err error) {
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	frame := gocv.NewMat()
	defer frame.Close()
	fitted := gocv.NewMat()
	defer fitted.Close()

	var pacer *time.Ticker
	if s.fps > 0 {
		pacer = time.NewTicker(time.Duration(float64(time.Second) / s.fps))
		defer pacer.Stop()
	}

	framesInLoop := 0
	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info().Str("session", s.pipeline.Session().String()).Msg("Session has been cancelled")
			return err
		}

		ok, err := s.source.Next(&frame)
		if err != nil {
			return errors.Wrap(err, "Can't read frame")
		}
		if !ok {
			// Looping over a source without frames would spin forever
			if !s.loop || framesInLoop == 0 {
				s.logger.Info().Str("session", s.pipeline.Session().String()).Int("loop", s.loops).Msg("End of stream")
				return nil
			}
			if err := s.rewind(); err != nil {
				return err
			}
			framesInLoop = 0
			continue
		}
		framesInLoop++

		input := frame
		if s.frameSize != (image.Point{}) {
			input = fitFrame(frame, &fitted, s.frameSize)
		}

		start := time.Now()
		result, err := s.pipeline.Step(input)
		elapsed := time.Since(start)
		if err != nil {
			return errors.Wrap(err, "Can't process frame")
		}
		for _, observer := range s.observers {
			observer(result, elapsed)
		}
		s.logger.Debug().
			Str("session", result.Session.String()).
			Int("frame", result.Frame).
			Bool("detected", result.Found()).
			Float64("pred_x", result.Predicted.X).
			Float64("pred_y", result.Predicted.Y).
			Dur("elapsed", elapsed).
			Msg("Frame processed")

		if s.annotate && len(s.sinks) > 0 {
			s.pipeline.Annotate(&input, result)
		}
		restart := false
		for _, sink := range s.sinks {
			err := sink.Consume(input, result)
			if err == nil {
				continue
			}
			if errors.Is(err, ErrStopSession) {
				s.logger.Info().Str("session", result.Session.String()).Int("frame", result.Frame).Msg("Session stopped by sink")
				return nil
			}
			if errors.Is(err, ErrRestartSession) {
				restart = true
				break
			}
			return errors.Wrap(err, "Can't consume frame")
		}
		if restart {
			s.restart()
			framesInLoop = 0
		}

		if pacer != nil {
			select {
			case <-ctx.Done():
			case <-pacer.C:
			}
		}
	}
}

// rewind seeks source to its start and resets estimator
func (s *Session) rewind() error {
	if err := s.source.SeekToStart(); err != nil {
		return errors.Wrap(err, "Can't rewind source")
	}
	s.pipeline.Reset()
	s.loops++
	s.logger.Info().Str("session", s.pipeline.Session().String()).Int("loop", s.loops).Msg("Source rewound, estimator reset")
	return nil
}

// restart behaves like loop. Sources which can't seek only get estimator reset.
func (s *Session) restart() {
	if err := s.source.SeekToStart(); err != nil {
		s.logger.Warn().Err(err).Msg("Can't rewind source on restart")
	}
	s.pipeline.Reset()
	s.loops++
	s.logger.Info().Str("session", s.pipeline.Session().String()).Int("loop", s.loops).Msg("Session restarted")
}

// Close releases source and pipeline. It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	sourceErr := s.source.Close()
	pipelineErr := s.pipeline.Close()
	if sourceErr != nil {
		return errors.Wrap(sourceErr, "Can't close source")
	}
	if pipelineErr != nil {
		return errors.Wrap(pipelineErr, "Can't close pipeline")
	}
	return nil
}
