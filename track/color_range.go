package track

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// OpenCV scale of 8-bit HSV images: hue is halved to fit a byte.
const (
	MaxHue        = 180.0
	MaxSaturation = 255.0
	MaxValue      = 255.0
)

// HSV is a single hue-saturation-value sample in OpenCV scale
type HSV struct {
	H float64
	S float64
	V float64
}

// ColorRange is an inclusive HSV box. Pixels inside of it are treated as target color.
type ColorRange struct {
	Lower HSV
	Upper HSV
}

// TennisBallGreen is the default range for an optic yellow-green tennis ball
var TennisBallGreen = ColorRange{
	Lower: HSV{H: 29, S: 86, V: 6},
	Upper: HSV{H: 64, S: 255, V: 255},
}

// NewColorRange creates validated color range
func NewColorRange(lower, upper HSV) (ColorRange, error) {
	colors := ColorRange{Lower: lower, Upper: upper}
	if err := colors.Validate(); err != nil {
		return ColorRange{}, err
	}
	return colors, nil
}

// Validate checks that every bound lies in OpenCV's HSV scale and lower bound does not exceed upper one
func (colors ColorRange) Validate() error {
	limits := [3]float64{MaxHue, MaxSaturation, MaxValue}
	names := [3]string{"hue", "saturation", "value"}
	lower := colors.Lower.channels()
	upper := colors.Upper.channels()
	for i := range limits {
		if lower[i] < 0 || upper[i] > limits[i] {
			return errors.Wrapf(ErrInvalidColorRange, "%s bounds [%v, %v] are out of [0, %v]", names[i], lower[i], upper[i], limits[i])
		}
		if lower[i] > upper[i] {
			return errors.Wrapf(ErrInvalidColorRange, "%s lower bound %v is greater than upper bound %v", names[i], lower[i], upper[i])
		}
	}
	return nil
}

// Contains reports whether sample lies inside of the range (bounds included)
func (colors ColorRange) Contains(sample HSV) bool {
	lower := colors.Lower.channels()
	upper := colors.Upper.channels()
	values := sample.channels()
	for i := range values {
		if values[i] < lower[i] || values[i] > upper[i] {
			return false
		}
	}
	return true
}

func (colors ColorRange) scalars() (gocv.Scalar, gocv.Scalar) {
	lb := gocv.NewScalar(colors.Lower.H, colors.Lower.S, colors.Lower.V, 0)
	ub := gocv.NewScalar(colors.Upper.H, colors.Upper.S, colors.Upper.V, 0)
	return lb, ub
}

func (hsv HSV) channels() [3]float64 {
	return [3]float64{hsv.H, hsv.S, hsv.V}
}
