package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"gotest.tools/v3/assert"
)

func TestBuildColoredUi_Suppressed(t *testing.T) {
	noColor := color.NoColor
	t.Cleanup(func() { color.NoColor = noColor })
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	u := BuildColoredUi(ColorModeSuppressed, out, errOut)
	u.Output("\x1b[1mbold\x1b[0m text")
	u.Error(Errorf("boom"))

	assert.Equal(t, out.String(), "bold text\n")
	assert.Equal(t, errOut.String(), " ERROR  boom\n")
}

func TestStripAnsi(t *testing.T) {
	assert.Equal(t, StripAnsi("\x1b[31mred\x1b[0m"), "red")
	assert.Equal(t, StripAnsi("plain"), "plain")
}

func TestColorModeFromFlags(t *testing.T) {
	t.Setenv("FORCE_COLOR", "")
	assert.Equal(t, ColorModeFromFlags(false, true), ColorModeSuppressed)
	assert.Equal(t, ColorModeFromFlags(true, false), ColorModeForced)
	assert.Equal(t, ColorModeFromFlags(true, true), ColorModeSuppressed)
	assert.Equal(t, ColorModeFromFlags(false, false), ColorModeUndefined)

	t.Setenv("FORCE_COLOR", "0")
	assert.Equal(t, ColorModeFromFlags(false, false), ColorModeSuppressed)
	t.Setenv("FORCE_COLOR", "true")
	assert.Equal(t, ColorModeFromFlags(false, false), ColorModeForced)
}
