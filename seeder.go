package annotrack

import (
	"fmt"
	"image/color"
	"log"
	"math/rand"

	"gocv.io/x/gocv"
)

const (
	// DefaultConfThreshold is the minimum detector confidence for a detection
	// to seed an identity
	DefaultConfThreshold = 0.5
	// keyFinishSelect is the key pressed to finish manual box selection
	keyFinishSelect = 's'
)

// Seed is the result of seeding a new tracking session
type Seed struct {
	// Boxes are the initial boxes, one per identity slot
	Boxes []Box
	// Colors are the display colors, one per identity slot
	Colors []color.RGBA
	// Handle is the tracking session with a tracker per identity slot
	Handle *MultiTracker
}

// Seeder obtains the initial set of boxes for a tracking session, either
// from a Detector or from the Operator selecting them by hand, and creates a
// tracker for each box
type Seeder struct {
	factory   TrackerFactory
	kind      string
	detector  Detector
	operator  Operator
	threshold float64
	rng       *rand.Rand
}

// SeederOption configures optional Seeder parameters
type SeederOption func(*Seeder)

// WithDetector seeds sessions from the detector instead of manual selection
func WithDetector(d Detector) SeederOption {
	return func(s *Seeder) {
		s.detector = d
	}
}

// WithThreshold sets the minimum detector confidence
func WithThreshold(t float64) SeederOption {
	return func(s *Seeder) {
		s.threshold = t
	}
}

// WithRand sets the random source used for identity colors
func WithRand(r *rand.Rand) SeederOption {
	return func(s *Seeder) {
		s.rng = r
	}
}

// NewSeeder returns a Seeder creating trackers of the given kind.  The
// operator is used for manual selection when no detector is configured.
func NewSeeder(factory TrackerFactory, kind string, operator Operator,
	opts ...SeederOption) *Seeder {

	s := &Seeder{
		factory:   factory,
		kind:      kind,
		operator:  operator,
		threshold: DefaultConfThreshold,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(rand.Int63()))
	}

	return s
}

// Seed establishes the initial boxes on frame and constructs a tracker for
// each of them inside a new session handle
func (s *Seeder) Seed(frame gocv.Mat) (*Seed, error) {

	// make sure the tracker kind is usable before any interaction with the
	// operator or detector
	if err := s.factory.Validate(s.kind); err != nil {
		return nil, err
	}

	var boxes []Box
	var err error

	if s.detector != nil {
		boxes, err = s.detect(frame)
	} else {
		boxes, err = s.selectBoxes(frame)
	}

	if err != nil {
		return nil, err
	}

	log.Printf("Bounding boxes %v\n", boxes)

	seed := &Seed{
		Boxes:  boxes,
		Colors: make([]color.RGBA, 0, len(boxes)),
		Handle: NewMultiTracker(),
	}

	for i, box := range boxes {

		seed.Colors = append(seed.Colors, RandomColor(s.rng))

		t, err := s.factory.New(s.kind)

		if err != nil {
			if cerr := seed.Handle.Close(); cerr != nil {
				log.Printf("Error closing session trackers: %v\n", cerr)
			}

			return nil, err
		}

		if err := seed.Handle.Add(t, frame, box); err != nil {
			log.Printf("Identity %d will not be tracked: %v\n", i, err)
		}
	}

	return seed, nil
}

// detect runs the detector on the frame and returns the boxes above the
// confidence threshold
func (s *Seeder) detect(frame gocv.Mat) ([]Box, error) {

	// detectors expect RGB channel order
	rgbImg := gocv.NewMat()
	defer rgbImg.Close()
	gocv.CvtColor(frame, &rgbImg, gocv.ColorBGRToRGB)

	dets, err := s.detector.Detect(rgbImg)

	if err != nil {
		return nil, fmt.Errorf("error running detector: %w", err)
	}

	boxes := make([]Box, 0, len(dets))

	for _, det := range dets {

		if det.Score < s.threshold {
			continue
		}

		box, err := NormalizeBox(det.Tuple())

		if err != nil {
			log.Printf("Skipping detection %v: %v\n", det, err)
			continue
		}

		boxes = append(boxes, box)
	}

	return boxes, nil
}

// selectBoxes has the operator draw boxes one at a time until they press the
// finish key
func (s *Seeder) selectBoxes(frame gocv.Mat) ([]Box, error) {

	boxes := make([]Box, 0)

	for {
		box := s.operator.SelectBox(frame)

		if !box.Empty() {
			// manual selections are already (x, y, w, h)
			b, err := NormalizeBox([]float64{box.X, box.Y, box.W, box.H})

			if err != nil {
				return nil, err
			}

			boxes = append(boxes, b)
		}

		log.Println("Press s to quit selecting boxes and start tracking")
		log.Println("Press any other key to select next object")

		if key := s.operator.WaitKey(0); key&0xFF == keyFinishSelect {
			break
		}
	}

	return boxes, nil
}

// RandomColor returns a color with each RGB channel uniform in [0,255]
func RandomColor(rng *rand.Rand) color.RGBA {
	return color.RGBA{
		R: uint8(rng.Intn(256)),
		G: uint8(rng.Intn(256)),
		B: uint8(rng.Intn(256)),
		A: 255,
	}
}
