package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebug_SuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("hidden %s", "message")
	assert.NotContains(t, buf.String(), "hidden message")
}

func TestDebug_EmittedWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)
	defer SetVerbose(false)

	Debug("visible %s", "message")
	assert.Contains(t, buf.String(), "visible message")
}

func TestWarn_AlwaysEmitted(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("careful: %d", 42)
	assert.Contains(t, buf.String(), "careful: 42")
}
