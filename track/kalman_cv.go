package track

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ConstantVelocity is a discrete linear Kalman filter over state [x, y, vx, vy].
// Time step is one frame, observations are position only.
// It implements Estimator interface.
type ConstantVelocity struct {
	processNoise      float64
	measurementNoise  float64
	initialCovariance float64

	// Transition matrix
	F *mat.Dense
	// Measurement matrix
	H *mat.Dense
	// Process noise covariance
	Q *mat.Dense
	// Measurement noise covariance
	R *mat.Dense

	// State vector
	x *mat.VecDense
	// Error covariance
	P *mat.Dense
}

// NewConstantVelocityDefault creates filter with process noise 0.03, unit measurement noise and initial covariance of 1000
func NewConstantVelocityDefault() *ConstantVelocity {
	return NewConstantVelocity(0.03, 1.0, 1000.0)
}

// NewConstantVelocity creates filter with diagonal covariances scaled by given values. State starts at zero.
func NewConstantVelocity(processNoise, measurementNoise, initialCovariance float64) *ConstantVelocity {
	kf := &ConstantVelocity{
		processNoise:      processNoise,
		measurementNoise:  measurementNoise,
		initialCovariance: initialCovariance,
		F: mat.NewDense(4, 4, []float64{
			1, 0, 1, 0,
			0, 1, 0, 1,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}),
		H: mat.NewDense(2, 4, []float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
		}),
		Q: scaledIdentity(4, processNoise),
		R: scaledIdentity(2, measurementNoise),
	}
	kf.Reset()
	return kf
}

// Reset sets state to zero and covariance to its initial value
func (kf *ConstantVelocity) Reset() {
	kf.x = mat.NewVecDense(4, nil)
	kf.P = scaledIdentity(4, kf.initialCovariance)
}

// Predict projects state one frame ahead: x = F*x, P = F*P*F' + Q
func (kf *ConstantVelocity) Predict() Point {
	var x mat.VecDense
	x.MulVec(kf.F, kf.x)

	var fp, p mat.Dense
	fp.Mul(kf.F, kf.P)
	p.Mul(&fp, kf.F.T())
	p.Add(&p, kf.Q)

	kf.x = &x
	kf.P = &p
	if !kf.finite() {
		kf.Reset()
	}
	return Point{X: kf.x.AtVec(0), Y: kf.x.AtVec(1)}
}

// Update corrects state with measured position
func (kf *ConstantVelocity) Update(measurement Point) error {
	if !measurement.IsFinite() {
		return errors.Errorf("measurement (%v, %v) is not finite", measurement.X, measurement.Y)
	}
	z := mat.NewVecDense(2, []float64{measurement.X, measurement.Y})

	// Innovation: y = z - H*x
	var hx, innovation mat.VecDense
	hx.MulVec(kf.H, kf.x)
	innovation.SubVec(z, &hx)

	// Innovation covariance: S = H*P*H' + R
	var pht, s mat.Dense
	pht.Mul(kf.P, kf.H.T())
	s.Mul(kf.H, &pht)
	s.Add(&s, kf.R)

	// Kalman gain: K = P*H'*inv(S)
	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		return errors.Wrap(err, "Can't invert innovation covariance")
	}
	var gain mat.Dense
	gain.Mul(&pht, &sInv)

	// x = x + K*y
	var correction, x mat.VecDense
	correction.MulVec(&gain, &innovation)
	x.AddVec(kf.x, &correction)

	// P = (I - K*H)*P
	var kh, ikh, p mat.Dense
	kh.Mul(&gain, kf.H)
	ikh.Sub(scaledIdentity(4, 1.0), &kh)
	p.Mul(&ikh, kf.P)

	kf.x = &x
	kf.P = &p
	if !kf.finite() {
		kf.Reset()
		return errors.New("filter diverged, state has been reset")
	}
	return nil
}

// State returns current mean of state vector
func (kf *ConstantVelocity) State() State {
	return State{
		X:  kf.x.AtVec(0),
		Y:  kf.x.AtVec(1),
		VX: kf.x.AtVec(2),
		VY: kf.x.AtVec(3),
	}
}

func (kf *ConstantVelocity) finite() bool {
	for i := 0; i < 4; i++ {
		v := kf.x.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		d := kf.P.At(i, i)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return false
		}
	}
	return true
}

func scaledIdentity(n int, scale float64) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, scale)
	}
	return m
}
