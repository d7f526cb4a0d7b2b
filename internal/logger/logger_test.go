package logger

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestLevelsWriteToOutput(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("[INFO] installing %s\n", "vim")
	Warn("[WARN] careful\n")
	Plain("raw\n")
	assert.Equal(t, "[INFO] installing vim\n[WARN] careful\nraw\n", buf.String())
}

func TestDebugOnlyWhenEnabled(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	defer SetOutput(&buf)()
	defer Init(false)

	Init(false)
	Debug("[DEBUG] hidden\n")
	assert.Empty(t, buf.String())

	Init(true)
	Debug("[DEBUG] shown\n")
	assert.Equal(t, "[DEBUG] shown\n", buf.String())
}
