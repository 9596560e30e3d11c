// Package cvat converts annotation sessions into the CVAT XML track format
package cvat

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/swdee/go-annotrack"
)

const (
	// DefaultLabel is the label given to every track when none is set
	DefaultLabel = "Person"
	// emotionAttr is the name of the attribute carried by every box
	emotionAttr = "Emotion"
	// emotionNeutral is the value of the emotion attribute
	emotionNeutral = "Neutral"
)

// Options are the export parameters
type Options struct {
	// Label is the label given to every track
	Label string
}

// DefaultOptions returns the default export options
func DefaultOptions() Options {
	return Options{
		Label: DefaultLabel,
	}
}

// Annotations is the root element of the XML document
type Annotations struct {
	XMLName xml.Name `xml:"annotations"`
	Tracks  []Track  `xml:"track"`
}

// Track is the path of one identity within one session
type Track struct {
	ID    int    `xml:"id,attr"`
	Label string `xml:"label,attr"`
	Boxes []Box  `xml:"box"`
}

// Box is a single keyed box of a track
type Box struct {
	Frame      int         `xml:"frame,attr"`
	Outside    int         `xml:"outside,attr"`
	Occluded   int         `xml:"occluded,attr"`
	Keyframe   int         `xml:"keyframe,attr"`
	XTL        string      `xml:"xtl,attr"`
	YTL        string      `xml:"ytl,attr"`
	XBR        string      `xml:"xbr,attr"`
	YBR        string      `xml:"ybr,attr"`
	Attributes []Attribute `xml:"attribute"`
}

// Attribute is a named value attached to a box
type Attribute struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Export builds the track document for the sessions in order.  Track IDs
// are numbered across all sessions and identities, a track for an identity
// that never had a box is left out but its ID is still used up.
func Export(sessions []annotrack.Session, opts Options) *Annotations {

	if opts.Label == "" {
		opts.Label = DefaultLabel
	}

	doc := &Annotations{
		Tracks: make([]Track, 0),
	}

	id := 0

	for _, s := range sessions {
		for slot := 0; slot < s.NumIdentities(); slot++ {

			if t, ok := exportTrack(id, s, slot, opts.Label); ok {
				doc.Tracks = append(doc.Tracks, t)
			}

			id++
		}
	}

	return doc
}

// exportTrack builds the track for one identity slot of a session.  Frames
// where the identity is missing are skipped and the track is closed with an
// outside box on the frame after the session, placed at the last box seen.
func exportTrack(id int, s annotrack.Session, slot int, label string) (Track, bool) {

	t := Track{
		ID:    id,
		Label: label,
	}

	var last annotrack.Box
	found := false

	for f, frame := range s.Frames {

		b, ok := frame.At(slot)

		if !ok {
			continue
		}

		keyframe := 0

		if f == 0 {
			keyframe = 1
		}

		t.Boxes = append(t.Boxes, newBox(s.Start+f, 0, keyframe, b))
		last = b
		found = true
	}

	if !found {
		return t, false
	}

	t.Boxes = append(t.Boxes, newBox(s.End(), 1, 1, last))

	return t, true
}

// newBox returns the XML box for b
func newBox(frame, outside, keyframe int, b annotrack.Box) Box {
	return Box{
		Frame:    frame,
		Outside:  outside,
		Occluded: 0,
		Keyframe: keyframe,
		XTL:      coord(b.X),
		YTL:      coord(b.Y),
		XBR:      coord(b.BRX()),
		YBR:      coord(b.BRY()),
		Attributes: []Attribute{
			{Name: emotionAttr, Value: emotionNeutral},
		},
	}
}

// coord formats a coordinate with two decimals
func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// NumBoxes returns the total number of boxes in the document, terminators
// included
func (a *Annotations) NumBoxes() int {

	n := 0

	for _, t := range a.Tracks {
		n += len(t.Boxes)
	}

	return n
}

// Write serializes the document with an XML declaration
func (a *Annotations) Write(w io.Writer) error {

	if _, err := io.WriteString(w, `<?xml version="1.0" encoding="utf-8"?>`+"\n"); err != nil {
		return fmt.Errorf("error writing xml header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("error encoding annotations: %w", err)
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("error writing annotations: %w", err)
	}

	return nil
}

// WriteFile writes the document to the given file
func (a *Annotations) WriteFile(file string) error {

	f, err := os.Create(file)

	if err != nil {
		return fmt.Errorf("error creating annotation file: %w", err)
	}

	if err := a.Write(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// WriteFile exports the sessions and writes the document to the given file
func WriteFile(file string, sessions []annotrack.Session, opts Options) error {
	return Export(sessions, opts).WriteFile(file)
}

// ReadFile parses a document previously written by WriteFile
func ReadFile(file string) (*Annotations, error) {

	data, err := os.ReadFile(file)

	if err != nil {
		return nil, fmt.Errorf("error reading annotation file: %w", err)
	}

	doc := &Annotations{}

	if err := xml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("error decoding annotations: %w", err)
	}

	return doc, nil
}
