package tracker

import (
	"gonum.org/v1/gonum/mat"
)

// KalmanFilter is a constant velocity Kalman filter over an image point.
// The state is (x, y, vx, vy) and measurements are (x, y).
type KalmanFilter struct {
	// state mean as a 4x1 column
	mean *mat.Dense
	// state covariance 4x4
	cov *mat.Dense
	// motionMat is the state transition model
	motionMat *mat.Dense
	// updateMat projects the state into measurement space
	updateMat *mat.Dense
	// processNoise and measureNoise are the Q and R covariances
	processNoise *mat.Dense
	measureNoise *mat.Dense
	initiated    bool
}

// NewKalmanFilter returns a filter with the given process and measurement
// noise variances
func NewKalmanFilter(processVar, measureVar float64) *KalmanFilter {

	motionMat := mat.NewDense(4, 4, []float64{
		1, 0, 1, 0,
		0, 1, 0, 1,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})

	updateMat := mat.NewDense(2, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
	})

	return &KalmanFilter{
		mean:         mat.NewDense(4, 1, nil),
		cov:          mat.NewDense(4, 4, nil),
		motionMat:    motionMat,
		updateMat:    updateMat,
		processNoise: diag(4, processVar),
		measureNoise: diag(2, measureVar),
	}
}

// diag returns an n by n matrix with v on the diagonal
func diag(n int, v float64) *mat.Dense {

	d := mat.NewDense(n, n, nil)

	for i := 0; i < n; i++ {
		d.Set(i, i, v)
	}

	return d
}

// Initiate resets the filter to the measured position with zero velocity
func (kf *KalmanFilter) Initiate(x, y float64) {

	kf.mean = mat.NewDense(4, 1, []float64{x, y, 0, 0})

	// velocity is unknown so starts with a larger variance than position
	kf.cov = mat.NewDense(4, 4, nil)
	kf.cov.Set(0, 0, 10)
	kf.cov.Set(1, 1, 10)
	kf.cov.Set(2, 2, 100)
	kf.cov.Set(3, 3, 100)

	kf.initiated = true
}

// Initiated reports whether the filter has been given a first measurement
func (kf *KalmanFilter) Initiated() bool {
	return kf.initiated
}

// Predict advances the state one frame and returns the predicted position
func (kf *KalmanFilter) Predict() (float64, float64) {

	var mean mat.Dense
	mean.Mul(kf.motionMat, kf.mean)
	kf.mean = &mean

	// P = F P F' + Q
	var fp, cov mat.Dense
	fp.Mul(kf.motionMat, kf.cov)
	cov.Mul(&fp, kf.motionMat.T())
	cov.Add(&cov, kf.processNoise)
	kf.cov = &cov

	return kf.Position()
}

// Update corrects the state with a measured position
func (kf *KalmanFilter) Update(x, y float64) error {

	z := mat.NewDense(2, 1, []float64{x, y})

	// innovation y = z - H x
	var hx, innov mat.Dense
	hx.Mul(kf.updateMat, kf.mean)
	innov.Sub(z, &hx)

	// S = H P H' + R
	var hp, s mat.Dense
	hp.Mul(kf.updateMat, kf.cov)
	s.Mul(&hp, kf.updateMat.T())
	s.Add(&s, kf.measureNoise)

	var sInv mat.Dense

	if err := sInv.Inverse(&s); err != nil {
		return err
	}

	// K = P H' S^-1
	var pht, gain mat.Dense
	pht.Mul(kf.cov, kf.updateMat.T())
	gain.Mul(&pht, &sInv)

	var correction, mean mat.Dense
	correction.Mul(&gain, &innov)
	mean.Add(kf.mean, &correction)
	kf.mean = &mean

	// P = (I - K H) P
	var kh, ikh, cov mat.Dense
	kh.Mul(&gain, kf.updateMat)
	ikh.Sub(diag(4, 1), &kh)
	cov.Mul(&ikh, kf.cov)
	kf.cov = &cov

	return nil
}

// Position returns the current estimated position
func (kf *KalmanFilter) Position() (float64, float64) {
	return kf.mean.At(0, 0), kf.mean.At(1, 0)
}

// Velocity returns the current estimated velocity per frame
func (kf *KalmanFilter) Velocity() (float64, float64) {
	return kf.mean.At(2, 0), kf.mean.At(3, 0)
}
