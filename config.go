package annotrack

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNoVideo is returned when no video source was configured
	ErrNoVideo = errors.New("no video source given")
	// ErrNoModelFile is returned when the detector is enabled without a model
	ErrNoModelFile = errors.New("face detector enabled without a model file")
)

const (
	// DefaultTrackerKind is the tracker algorithm used when none is given
	DefaultTrackerKind = "CSRT"
	// DefaultOutputFile is where the XML annotation is written
	DefaultOutputFile = "output.xml"
	// DefaultDumpFile is where the raw session dump is written
	DefaultDumpFile = "annotation"
	// DefaultLabel is the CVAT label given to every track
	DefaultLabel = "Person"
	// DefaultModelFile is the face detector model loaded when detection is
	// enabled and no model file is given
	DefaultModelFile = "retinaface_r50_v1.onnx"
)

// Config holds the parameters of an annotation run
type Config struct {
	// VideoPath is the video file to annotate
	VideoPath string
	// TrackerKind is the name of the tracker algorithm
	TrackerKind string
	// UseDetector seeds sessions with the face detector instead of manual
	// box selection
	UseDetector bool
	// ModelFile is the face detector model
	ModelFile string
	// ConfThreshold is the minimum detector confidence
	ConfThreshold float64
	// DetectScale is the scale the frame is resized by before detection
	DetectScale float64
	// OutputFile is the XML annotation file written at the end of the run
	OutputFile string
	// DumpFile is the raw session dump written at the end of the run
	DumpFile string
	// Label is the CVAT label given to every track
	Label string
	// WaitDelay is the number of milliseconds to wait for a key press on each
	// frame
	WaitDelay int
	// AutoReseedAfter reseeds the session after this many consecutive frames
	// where tracking failed entirely.  Zero disables automatic reseeding.
	AutoReseedAfter int
	// ColorSeed seeds the random identity colors, zero picks a random seed
	ColorSeed int64
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		TrackerKind:   DefaultTrackerKind,
		UseDetector:   true,
		ModelFile:     DefaultModelFile,
		ConfThreshold: DefaultConfThreshold,
		DetectScale:   1.0,
		OutputFile:    DefaultOutputFile,
		DumpFile:      DefaultDumpFile,
		Label:         DefaultLabel,
		WaitDelay:     1,
	}
}

// Validate checks the configuration is usable.  Tracker kind names are
// checked against the factory so an unsupported name is reported before any
// video is opened.
func (c Config) Validate(factory TrackerFactory) error {

	if c.VideoPath == "" {
		return ErrNoVideo
	}

	if err := factory.Validate(c.TrackerKind); err != nil {
		return err
	}

	if c.UseDetector && c.ModelFile == "" {
		return ErrNoModelFile
	}

	if c.ConfThreshold < 0 || c.ConfThreshold > 1 {
		return fmt.Errorf("confidence threshold must be within [0,1], got %v", c.ConfThreshold)
	}

	if c.DetectScale <= 0 {
		return fmt.Errorf("detector scale must be positive, got %v", c.DetectScale)
	}

	if c.WaitDelay < 1 {
		return fmt.Errorf("key wait delay must be at least 1ms, got %d", c.WaitDelay)
	}

	if c.AutoReseedAfter < 0 {
		return fmt.Errorf("auto reseed frame count must not be negative, got %d", c.AutoReseedAfter)
	}

	if c.OutputFile == "" || c.DumpFile == "" {
		return errors.New("output and dump files must be given")
	}

	return nil
}

// ParseBoolFlag parses the string form of a boolean command line flag such as
// "True" or "False"
func ParseBoolFlag(s string) (bool, error) {

	b, err := strconv.ParseBool(s)

	if err != nil {
		return false, fmt.Errorf("invalid boolean value %q, use True or False", s)
	}

	return b, nil
}
