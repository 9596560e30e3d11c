package tracker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/swdee/go-annotrack"
)

// Constructor creates a new single object tracker
type Constructor func() (annotrack.Tracker, error)

// entry is a registered tracker kind
type entry struct {
	construct Constructor
	// check returns an error if the kind can not currently be constructed,
	// such as when model files are missing
	check func() error
}

// Registry creates trackers by kind name and implements the
// annotrack.TrackerFactory interface
type Registry struct {
	entries map[Kind]entry
}

// NewRegistry returns an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[Kind]entry),
	}
}

// DefaultRegistry returns a Registry with every supported kind.  MIL comes
// from the OpenCV core tracking module, KCF and CSRT from the contrib module
// and the rest are native implementations.  GOTURN runs its Caffe network
// through the OpenCV DNN module.
func DefaultRegistry() *Registry {

	r := NewRegistry()

	r.Register(Boosting, func() (annotrack.Tracker, error) { return NewTemplate(), nil })
	r.Register(MIL, func() (annotrack.Tracker, error) { return NewMIL(), nil })
	r.Register(KCF, func() (annotrack.Tracker, error) { return NewKCF(), nil })
	r.Register(TLD, func() (annotrack.Tracker, error) { return NewTLD(), nil })
	r.Register(MedianFlow, func() (annotrack.Tracker, error) { return NewMedianFlow(), nil })
	r.Register(MOSSE, func() (annotrack.Tracker, error) { return NewMOSSE(), nil })
	r.Register(CSRT, func() (annotrack.Tracker, error) { return NewCSRT(), nil })

	r.RegisterChecked(GOTURN, func() (annotrack.Tracker, error) {
		t, err := NewGOTURN(".")

		if err != nil {
			return nil, err
		}

		return t, nil
	}, func() error {
		return CheckGOTURNModel(".")
	})

	return r
}

// Register adds a tracker kind to the registry, replacing any existing
// constructor for that kind
func (r *Registry) Register(kind Kind, c Constructor) {
	r.entries[kind] = entry{construct: c}
}

// RegisterChecked adds a tracker kind with a check function run before the
// tracker is constructed
func (r *Registry) RegisterChecked(kind Kind, c Constructor, check func() error) {
	r.entries[kind] = entry{construct: c, check: check}
}

// Validate returns an error if trackers of the named kind can not be created
func (r *Registry) Validate(name string) error {
	_, err := r.lookup(name)
	return err
}

// New creates a tracker of the named kind
func (r *Registry) New(name string) (annotrack.Tracker, error) {

	e, err := r.lookup(name)

	if err != nil {
		return nil, err
	}

	t, err := e.construct()

	if err != nil {
		return nil, fmt.Errorf("error creating %s tracker: %w", name, err)
	}

	return t, nil
}

func (r *Registry) lookup(name string) (entry, error) {

	kind, err := ParseKind(name)

	if err != nil {
		return entry{}, err
	}

	e, ok := r.entries[kind]

	if !ok {
		return entry{}, &UnsupportedKindError{Name: name}
	}

	if e.check != nil {
		if err := e.check(); err != nil {
			return entry{}, fmt.Errorf("%s tracker unavailable: %w", name, err)
		}
	}

	return e, nil
}

// goturnFiles are the model files OpenCV loads from the working directory
// when creating a GOTURN tracker
var goturnFiles = []string{"goturn.prototxt", "goturn.caffemodel"}

// CheckGOTURNModel returns an error if the GOTURN model files are not
// present in dir
func CheckGOTURNModel(dir string) error {

	for _, f := range goturnFiles {
		path := filepath.Join(dir, f)

		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("missing GOTURN model file %s: %w", path, err)
		}
	}

	return nil
}
