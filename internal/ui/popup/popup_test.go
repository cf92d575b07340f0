package popup

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestBox(t *testing.T) {
	box := Box("Title", "line one\nline two", "esc to close", 80)

	assert.Contains(t, box, "Title")
	assert.Contains(t, box, "line two")
	assert.Contains(t, box, "esc to close")
	assert.True(t, strings.HasPrefix(box, "╭"))
}

func TestBox_TruncatesToMaxWidth(t *testing.T) {
	box := Box("", strings.Repeat("x", 100), "", 20)
	for l := range strings.SplitSeq(box, "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(l), 20)
	}
}

func TestOverlay(t *testing.T) {
	base := strings.Repeat(strings.Repeat(".", 10)+"\n", 4) + strings.Repeat(".", 10)
	out := Overlay(base, "ab\ncd", 10, 5)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "..........", lines[0])
	assert.Equal(t, "....ab....", lines[1])
	assert.Equal(t, "....cd....", lines[2])
	assert.Equal(t, "..........", lines[3])
}

func TestOverlay_PadsShortBase(t *testing.T) {
	out := Overlay("", "x", 3, 3)
	assert.Equal(t, []string{"", " x ", ""}, strings.Split(out, "\n"))
}
