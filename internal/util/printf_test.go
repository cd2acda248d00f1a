package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSprintf(t *testing.T) {
	saved := replacements
	t.Cleanup(func() { replacements = saved })

	replacements = map[string]string{"BOLD": "<b>", "RESET": "</b>"}
	assert.Equal(t, "<b>Foo</b> 2", Sprintf("${BOLD}%s${RESET} %d", "Foo", 2))
	assert.Equal(t, "x", Sprintf("${UNKNOWN}x"))
	assert.Equal(t, "<b>$BOLD", Sprintf("${BOLD}%v", "$BOLD"))
}

func TestSet(t *testing.T) {
	s := SetFromStrings([]string{"a", "b", "a"})
	assert.Equal(t, 2, len(s))
	assert.True(t, s.Includes("a"))
	assert.False(t, s.Includes("c"))
}
