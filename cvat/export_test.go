package cvat

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-annotrack"
)

func boxp(x, y, w, h float64) *annotrack.Box {
	b := annotrack.NewBox(x, y, w, h)
	return &b
}

func ids(doc *Annotations) []int {

	out := make([]int, 0, len(doc.Tracks))

	for _, t := range doc.Tracks {
		out = append(out, t.ID)
	}

	return out
}

func TestExportSkipsMissingAndTerminates(t *testing.T) {

	sessions := []annotrack.Session{
		{
			Start: 1,
			Frames: []annotrack.Frame{
				{boxp(10, 20, 30, 40), boxp(100, 100, 10, 10)},
				{boxp(12, 21, 30, 40), nil},
				{},
			},
		},
	}

	doc := Export(sessions, DefaultOptions())

	require.Len(t, doc.Tracks, 2)

	first := doc.Tracks[0]
	assert.Equal(t, 0, first.ID)
	assert.Equal(t, "Person", first.Label)
	require.Len(t, first.Boxes, 3)

	assert.Equal(t, 1, first.Boxes[0].Frame)
	assert.Equal(t, 1, first.Boxes[0].Keyframe)
	assert.Equal(t, 0, first.Boxes[0].Outside)
	assert.Equal(t, "10.00", first.Boxes[0].XTL)
	assert.Equal(t, "60.00", first.Boxes[0].YBR)

	assert.Equal(t, 2, first.Boxes[1].Frame)
	assert.Equal(t, 0, first.Boxes[1].Keyframe)

	// terminator on the frame after the session at the last box seen
	term := first.Boxes[2]
	assert.Equal(t, 4, term.Frame)
	assert.Equal(t, 1, term.Outside)
	assert.Equal(t, 1, term.Keyframe)
	assert.Equal(t, "12.00", term.XTL)
	assert.Equal(t, "21.00", term.YTL)
	assert.Equal(t, "42.00", term.XBR)
	assert.Equal(t, "61.00", term.YBR)

	second := doc.Tracks[1]
	assert.Equal(t, 1, second.ID)
	require.Len(t, second.Boxes, 2)
	assert.Equal(t, 1, second.Boxes[0].Frame)
	assert.Equal(t, 4, second.Boxes[1].Frame)
	assert.Equal(t, "100.00", second.Boxes[1].XTL)

	for _, tr := range doc.Tracks {
		for _, b := range tr.Boxes {
			assert.Equal(t, []Attribute{{Name: "Emotion", Value: "Neutral"}}, b.Attributes)
		}
	}

	assert.Equal(t, 5, doc.NumBoxes())
}

func TestExportTrackResumesAfterGap(t *testing.T) {

	sessions := []annotrack.Session{
		{
			Start: 1,
			Frames: []annotrack.Frame{
				{boxp(10, 10, 20, 20), boxp(50, 50, 10, 10)},
				{boxp(11, 10, 20, 20), nil},
				{boxp(12, 10, 20, 20), boxp(54, 52, 10, 10)},
			},
		},
	}

	doc := Export(sessions, DefaultOptions())
	require.Len(t, doc.Tracks, 2)

	frames := func(tr Track) []int {
		out := make([]int, 0, len(tr.Boxes))

		for _, b := range tr.Boxes {
			out = append(out, b.Frame)
		}

		return out
	}

	if diff := cmp.Diff([]int{1, 2, 3, 4}, frames(doc.Tracks[0])); diff != "" {
		t.Errorf("track 0 frames mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]int{1, 3, 4}, frames(doc.Tracks[1])); diff != "" {
		t.Errorf("track 1 frames mismatch (-want +got):\n%s", diff)
	}

	resumed := doc.Tracks[1].Boxes
	assert.Equal(t, 1, resumed[0].Keyframe)
	assert.Equal(t, 0, resumed[1].Keyframe)

	// terminator takes the box seen after the gap
	term := resumed[2]
	assert.Equal(t, 1, term.Outside)
	assert.Equal(t, 1, term.Keyframe)
	assert.Equal(t, []string{"54.00", "52.00", "64.00", "62.00"},
		[]string{term.XTL, term.YTL, term.XBR, term.YBR})

	assert.Equal(t, "32.00", doc.Tracks[0].Boxes[3].XBR)
}

func TestExportIDsAcrossSessions(t *testing.T) {

	sessions := []annotrack.Session{
		{Start: 1, Frames: []annotrack.Frame{{boxp(0, 0, 5, 5), boxp(10, 0, 5, 5)}}},
		{Start: 2, Frames: []annotrack.Frame{
			{boxp(0, 0, 5, 5), boxp(10, 0, 5, 5), boxp(20, 0, 5, 5)},
			{boxp(1, 0, 5, 5), boxp(11, 0, 5, 5), boxp(21, 0, 5, 5)},
		}},
	}

	doc := Export(sessions, DefaultOptions())

	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, ids(doc)); diff != "" {
		t.Errorf("track ids mismatch (-want +got):\n%s", diff)
	}

	// second session terminators follow its own last frame
	assert.Equal(t, 4, doc.Tracks[4].Boxes[2].Frame)
}

func TestExportNeverPresentIdentityUsesID(t *testing.T) {

	sessions := []annotrack.Session{
		{Start: 1, Frames: []annotrack.Frame{{boxp(0, 0, 5, 5), nil, boxp(9, 9, 5, 5)}}},
	}

	doc := Export(sessions, DefaultOptions())

	if diff := cmp.Diff([]int{0, 2}, ids(doc)); diff != "" {
		t.Errorf("track ids mismatch (-want +got):\n%s", diff)
	}
}

func TestExportEmpty(t *testing.T) {

	tests := []struct {
		name     string
		sessions []annotrack.Session
	}{
		{"no sessions", nil},
		{"zero frame session", []annotrack.Session{{Start: 1}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := Export(tc.sessions, DefaultOptions())
			assert.Empty(t, doc.Tracks)

			var buf bytes.Buffer
			require.NoError(t, doc.Write(&buf))
			assert.Contains(t, buf.String(), "<annotations></annotations>")
		})
	}
}

func TestExportLabel(t *testing.T) {

	sessions := []annotrack.Session{
		{Start: 1, Frames: []annotrack.Frame{{boxp(0, 0, 5, 5)}}},
	}

	doc := Export(sessions, Options{Label: "Face"})
	assert.Equal(t, "Face", doc.Tracks[0].Label)

	doc = Export(sessions, Options{})
	assert.Equal(t, DefaultLabel, doc.Tracks[0].Label)
}

func TestWriteDocument(t *testing.T) {

	sessions := []annotrack.Session{
		{Start: 1, Frames: []annotrack.Frame{{boxp(10, 20, 30, 40)}}},
	}

	expected := `<?xml version="1.0" encoding="utf-8"?>
<annotations>
  <track id="0" label="Person">
    <box frame="1" outside="0" occluded="0" keyframe="1" xtl="10.00" ytl="20.00" xbr="40.00" ybr="60.00">
      <attribute name="Emotion">Neutral</attribute>
    </box>
    <box frame="2" outside="1" occluded="0" keyframe="1" xtl="10.00" ytl="20.00" xbr="40.00" ybr="60.00">
      <attribute name="Emotion">Neutral</attribute>
    </box>
  </track>
</annotations>
`

	var buf bytes.Buffer
	require.NoError(t, Export(sessions, DefaultOptions()).Write(&buf))

	if diff := cmp.Diff(expected, buf.String()); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpRoundTripProducesSameDocument(t *testing.T) {

	sessions := []annotrack.Session{
		{Start: 1, Frames: []annotrack.Frame{
			{boxp(10.25, 20.5, 30, 40), boxp(50, 50, 8, 8)},
			{boxp(11.75, 21, 30, 40), nil},
			{},
		}},
		{Start: 4, Frames: []annotrack.Frame{{boxp(3, 4, 5, 6)}}},
	}

	var dump bytes.Buffer
	require.NoError(t, annotrack.SaveSessions(&dump, sessions))

	loaded, err := annotrack.LoadSessions(&dump)
	require.NoError(t, err)

	var want, got bytes.Buffer
	require.NoError(t, Export(sessions, DefaultOptions()).Write(&want))
	require.NoError(t, Export(loaded, DefaultOptions()).Write(&got))

	assert.Equal(t, want.String(), got.String())
}

func TestWriteReadFile(t *testing.T) {

	sessions := []annotrack.Session{
		{Start: 1, Frames: []annotrack.Frame{{boxp(1, 2, 3, 4)}, {boxp(2, 2, 3, 4)}}},
	}

	file := filepath.Join(t.TempDir(), "output.xml")
	require.NoError(t, WriteFile(file, sessions, DefaultOptions()))

	doc, err := ReadFile(file)
	require.NoError(t, err)

	want := Export(sessions, DefaultOptions())

	if diff := cmp.Diff(want.Tracks, doc.Tracks); diff != "" {
		t.Errorf("tracks mismatch (-want +got):\n%s", diff)
	}
}
