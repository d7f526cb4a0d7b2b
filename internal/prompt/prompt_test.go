package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptsRefuseWithoutTerminal(t *testing.T) {
	if IsInteractive() {
		t.Skip("running attached to a terminal")
	}
	_, err := Huh{}.Confirm("Continue?")
	assert.ErrorIs(t, err, ErrNotInteractive)

	_, err = Huh{}.MultiSelect("Pick", []string{"a", "b"})
	assert.ErrorIs(t, err, ErrNotInteractive)
}
