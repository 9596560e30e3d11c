package tracker

import (
	"github.com/swdee/go-annotrack"
	"gocv.io/x/gocv"
)

const (
	// tldValidScore is the appearance score the flow result must reach to
	// be accepted without re-detection
	tldValidScore = 0.35
	// tldRedetect is the re-detection search radius as a multiple of the
	// template size
	tldRedetect = 2.0
)

// TLDTracker combines short term median flow tracking with an appearance
// template that validates the flow result and re-detects the target around
// the Kalman predicted position when the flow fails or drifts
type TLDTracker struct {
	flow *MedianFlowTracker
	det  *Template
	kf   *KalmanFilter
}

// NewTLD returns an uninitialised Tracking-Learning-Detection tracker
func NewTLD() *TLDTracker {
	return &TLDTracker{
		flow: NewMedianFlow(),
		det:  NewTemplate(),
		kf:   NewKalmanFilter(1, 4),
	}
}

// Init starts tracking box on frame
func (t *TLDTracker) Init(frame gocv.Mat, box annotrack.Box) error {

	p, err := planeFromMat(frame)

	if err != nil {
		return err
	}

	return t.init(p, box)
}

// Update follows the target onto frame
func (t *TLDTracker) Update(frame gocv.Mat) (annotrack.Box, bool) {

	p, err := planeFromMat(frame)

	if err != nil {
		return annotrack.Box{}, false
	}

	return t.update(p)
}

// Close is a no-op as the tracker holds no native resources
func (t *TLDTracker) Close() error {
	return nil
}

func (t *TLDTracker) init(p *plane, box annotrack.Box) error {

	if err := t.flow.init(p, box); err != nil {
		return err
	}

	if err := t.det.init(p, box); err != nil {
		return err
	}

	t.kf.Initiate(box.Center())

	return nil
}

func (t *TLDTracker) update(p *plane) (annotrack.Box, bool) {

	if !t.kf.Initiated() {
		return annotrack.Box{}, false
	}

	px, py := t.kf.Predict()
	box, ok := t.flow.update(p)
	lp, s := t.det.levelPlane(p)

	if !ok || t.det.scoreAt(lp, s, box) < tldValidScore {

		last := t.det.box
		guess := annotrack.NewBox(px-last.W/2, py-last.H/2, last.W, last.H)
		found, score := t.det.searchAround(lp, s, guess, tldRedetect)

		if score < t.det.minScore {
			return annotrack.Box{}, false
		}

		box = found
		t.flow.reset(p, box)
	}

	t.det.learn(lp, s, box)

	// a singular innovation covariance leaves the prediction in place
	_ = t.kf.Update(box.Center())

	return box, true
}
