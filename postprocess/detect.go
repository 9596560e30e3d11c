package postprocess

import "sync"

// BoxRect are the dimensions of the bounding box of a detect object in
// source image pixels
type BoxRect struct {
	Left   float32
	Right  float32
	Top    float32
	Bottom float32
}

// KeyPoint is a landmark location in source image pixels
type KeyPoint struct {
	X, Y float32
}

// DetectResult defines the attributes of a single object detected
type DetectResult struct {
	// Box are the bounding box dimensions of the object location
	Box BoxRect
	// Probability is the confidence score of the object detected
	Probability float32
	// KeyPoints are the landmark locations of the object, if the model
	// produces them
	KeyPoints []KeyPoint
	// ID is a unique ID assigned to the detection result
	ID int64
}

// IDGenerator is a counter for generating the next incremental ID number
type IDGenerator struct {
	id int64
	sync.Mutex
}

// NewIDGenerator returns a counter starting at zero
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GetNext returns the next incremental number
func (id *IDGenerator) GetNext() int64 {
	id.Lock()
	defer id.Unlock()
	id.id++
	return id.id
}
