package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-annotrack"
	"github.com/swdee/go-annotrack/cvat"
	"github.com/swdee/go-annotrack/tracker"
)

func TestTrackersCommand(t *testing.T) {

	var buf bytes.Buffer
	trackersCmd.SetOut(&buf)
	defer trackersCmd.SetOut(nil)

	trackersCmd.Run(trackersCmd, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 8)

	assert.Equal(t, "BOOSTING", lines[0])
	assert.Equal(t, "CSRT", lines[7])

	assert.True(t, strings.HasPrefix(lines[5], "GOTURN"))

	// GOTURN is reported unavailable without its model files
	if tracker.CheckGOTURNModel(".") != nil {
		assert.Contains(t, lines[5], "unavailable")
	} else {
		assert.Equal(t, "GOTURN", lines[5])
	}
}

func TestExportCommand(t *testing.T) {

	dir := t.TempDir()

	b := annotrack.NewBox(10, 20, 30, 40)
	sessions := []annotrack.Session{
		{Start: 1, Frames: []annotrack.Frame{{&b}, {&b}}},
	}

	dump := filepath.Join(dir, "annotation")
	require.NoError(t, annotrack.WriteDumpFile(dump, sessions))

	exportDump = dump
	exportOutput = filepath.Join(dir, "output.xml")
	exportLabel = "Face"

	require.NoError(t, runExport(exportCmd, nil))

	doc, err := cvat.ReadFile(exportOutput)
	require.NoError(t, err)

	require.Len(t, doc.Tracks, 1)
	assert.Equal(t, "Face", doc.Tracks[0].Label)
	assert.Len(t, doc.Tracks[0].Boxes, 3)
}

func TestExportCommandMissingDump(t *testing.T) {

	exportDump = filepath.Join(t.TempDir(), "missing")
	exportOutput = filepath.Join(t.TempDir(), "output.xml")

	assert.Error(t, runExport(exportCmd, nil))
}
