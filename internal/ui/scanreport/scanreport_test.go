package scanreport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/shelf/internal/library"
)

func TestRender_Nil(t *testing.T) {
	assert.Empty(t, Render(nil, DefaultMaxExamples))
}

func TestRender_NoChanges(t *testing.T) {
	out := Render(&library.ScanStats{Files: 1200}, DefaultMaxExamples)
	assert.Contains(t, out, "1,200 files scanned")
	assert.Contains(t, out, "No changes")
	assert.NotContains(t, out, "Total")
}

func TestRender_Categories(t *testing.T) {
	out := Render(&library.ScanStats{
		Files:   3,
		Added:   []string{"a.mp3", "b.mp3"},
		Removed: []string{"gone.flac"},
	}, DefaultMaxExamples)

	assert.Contains(t, out, "Added: 2")
	assert.Contains(t, out, "• b.mp3")
	assert.Contains(t, out, "Removed: 1")
	assert.NotContains(t, out, "Updated")
	assert.Contains(t, out, "Total: 2 added, 1 removed, 0 updated")
}

func TestRender_LimitsExamples(t *testing.T) {
	out := Render(&library.ScanStats{
		Updated: []string{"1.mp3", "2.mp3", "3.mp3", "4.mp3", "5.mp3"},
	}, 2)

	assert.Contains(t, out, "• 2.mp3")
	assert.NotContains(t, out, "3.mp3")
	assert.Contains(t, out, "... and 3 more")
}

func TestRender_UnparsedOnly(t *testing.T) {
	out := Render(&library.ScanStats{Unparsed: []string{"broken.ogg"}}, DefaultMaxExamples)
	assert.Contains(t, out, "Without tags: 1")
	assert.NotContains(t, out, "No changes")
}
