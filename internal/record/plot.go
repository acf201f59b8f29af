package record

import (
	"image/color"

	"github.com/LdDl/ball-tracker/track"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	predictedColor = color.RGBA{R: 0, G: 200, B: 83, A: 255}
	detectedColor  = color.RGBA{R: 252, G: 163, B: 17, A: 255}
)

// PlotRecorder collects trajectory of the latest session and renders it into PNG on Close.
// Predicted coordinates are drawn as lines, detections as points.
type PlotRecorder struct {
	path    string
	session string

	predX plotter.XYs
	predY plotter.XYs
	detX  plotter.XYs
	detY  plotter.XYs
}

// NewPlotRecorder creates recorder. Image format is derived from path extension.
func NewPlotRecorder(path string) *PlotRecorder {
	return &PlotRecorder{
		path: path,
	}
}

// Record implements Recorder. New session discards samples of the previous one.
func (recorder *PlotRecorder) Record(result track.Result) error {
	session := result.Session.String()
	if session != recorder.session {
		recorder.session = session
		recorder.predX = recorder.predX[:0]
		recorder.predY = recorder.predY[:0]
		recorder.detX = recorder.detX[:0]
		recorder.detY = recorder.detY[:0]
	}
	frame := float64(result.Frame)
	recorder.predX = append(recorder.predX, plotter.XY{X: frame, Y: result.Predicted.X})
	recorder.predY = append(recorder.predY, plotter.XY{X: frame, Y: result.Predicted.Y})
	if result.Found() {
		recorder.detX = append(recorder.detX, plotter.XY{X: frame, Y: result.Detected.Center.X})
		recorder.detY = append(recorder.detY, plotter.XY{X: frame, Y: result.Detected.Center.Y})
	}
	return nil
}

// Samples returns number of recorded frames and number of frames with detection
func (recorder *PlotRecorder) Samples() (int, int) {
	return len(recorder.predX), len(recorder.detX)
}

// Close renders plot. Nothing is written when no frames have been recorded.
func (recorder *PlotRecorder) Close() error {
	if len(recorder.predX) == 0 {
		return nil
	}
	p := plot.New()
	p.Title.Text = "Trajectory of session " + recorder.session
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "position (px)"
	p.Add(plotter.NewGrid())

	if err := addLine(p, recorder.predX, "predicted x", predictedColor, nil); err != nil {
		return err
	}
	if err := addLine(p, recorder.predY, "predicted y", predictedColor, []vg.Length{vg.Points(4), vg.Points(2)}); err != nil {
		return err
	}
	if len(recorder.detX) > 0 {
		if err := addScatter(p, recorder.detX, "detected x", detectedColor); err != nil {
			return err
		}
		if err := addScatter(p, recorder.detY, "detected y", color.RGBA{R: 200, G: 40, B: 40, A: 255}); err != nil {
			return err
		}
	}
	p.Legend.Top = true

	if err := p.Save(10*vg.Inch, 5*vg.Inch, recorder.path); err != nil {
		return errors.Wrapf(err, "Can't save plot '%s'", recorder.path)
	}
	return nil
}

func addLine(p *plot.Plot, xys plotter.XYs, name string, c color.Color, dashes []vg.Length) error {
	line, err := plotter.NewLine(xys)
	if err != nil {
		return errors.Wrapf(err, "Can't create line '%s'", name)
	}
	line.Color = c
	line.Width = vg.Points(1)
	line.Dashes = dashes
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

func addScatter(p *plot.Plot, xys plotter.XYs, name string, c color.Color) error {
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return errors.Wrapf(err, "Can't create scatter '%s'", name)
	}
	scatter.Color = c
	scatter.Radius = vg.Points(2)
	p.Add(scatter)
	p.Legend.Add(name, scatter)
	return nil
}
