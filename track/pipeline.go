package track

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Result is the outcome of one pipeline step
type Result struct {
	// Session identifier. Changes on every Reset
	Session uuid.UUID
	// Index of frame within session (starting from zero)
	Frame int
	// Position returned by estimator's prediction. It is defined on every frame
	Predicted Point
	// Detection on this frame. Nil if there is no candidate
	Detected *Candidate
	// Estimator state after the step (after correction when Detected is not nil)
	State State
	// Number of external contours found in mask, including rejected ones
	Contours int
}

// Found returns true if target has been detected on the frame
func (result Result) Found() bool {
	return result.Detected != nil
}

// Innovation returns distance between predicted and detected positions. Second value is false when nothing was detected.
func (result Result) Innovation() (float64, bool) {
	if result.Detected == nil {
		return 0, false
	}
	return result.Predicted.DistanceTo(result.Detected.Center), true
}

// Pipeline is the single per-frame step: segment, extract, predict and (optionally) update.
// Its estimator is the only cross-frame state. Pipeline is not safe for concurrent use.
type Pipeline struct {
	cfg       Config
	segmenter *Segmenter
	extractor *Extractor
	estimator Estimator
	annotator *Annotator

	mask    gocv.Mat
	session uuid.UUID
	frame   int
	last    Result
}

// NewPipeline creates pipeline from configuration
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Can't create pipeline")
	}
	estimator, err := NewEstimator(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create estimator")
	}
	return &Pipeline{
		cfg:       cfg,
		segmenter: NewSegmenter(cfg.Range, cfg.Order, cfg.BlurKernel, cfg.MorphIterations),
		extractor: NewExtractor(cfg.MinRadius),
		estimator: estimator,
		annotator: NewAnnotator(),
		mask:      gocv.NewMat(),
		session:   uuid.New(),
	}, nil
}

// Config returns configuration pipeline has been created with
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Session returns identifier of current tracking session
func (p *Pipeline) Session() uuid.UUID {
	return p.session
}

// Step processes a single frame. Prediction is made on every frame, correction only when a candidate has been found.
func (p *Pipeline) Step(frame gocv.Mat) (Result, error) {
	if err := p.segmenter.Segment(frame, &p.mask); err != nil {
		return Result{}, errors.Wrapf(err, "Can't segment frame %d", p.frame)
	}
	candidates := p.extractor.Candidates(p.mask, 0)

	result := Result{
		Session:   p.session,
		Frame:     p.frame,
		Predicted: p.estimator.Predict(),
		Contours:  len(candidates),
	}
	p.frame++

	if len(candidates) > 0 {
		if candidate, ok := p.extractor.accept(candidates[0]); ok {
			if err := p.estimator.Update(candidate.Center); err != nil {
				return result, errors.Wrapf(err, "Can't update estimator on frame %d", result.Frame)
			}
			result.Detected = &candidate
		}
	}
	result.State = p.estimator.State()
	p.last = result
	return result, nil
}

// Annotate draws overlays for result onto frame
func (p *Pipeline) Annotate(frame *gocv.Mat, result Result) {
	p.annotator.Annotate(frame, result)
}

// Annotator returns annotator so callers can adjust its style
func (p *Pipeline) Annotator() *Annotator {
	return p.annotator
}

// Reset reinstantiates estimator and starts new session. Must be called whenever source jumps (e.g. loops to start).
func (p *Pipeline) Reset() {
	p.estimator.Reset()
	p.session = uuid.New()
	p.frame = 0
	p.last = Result{}
}

// Last returns result of the latest committed step
func (p *Pipeline) Last() Result {
	return p.last
}

// Mask returns mask of the latest step. It is overwritten by the next Step call.
func (p *Pipeline) Mask() gocv.Mat {
	return p.mask
}

// Close releases native memory
func (p *Pipeline) Close() error {
	if err := p.segmenter.Close(); err != nil {
		return errors.Wrap(err, "Can't close segmenter")
	}
	return p.mask.Close()
}
