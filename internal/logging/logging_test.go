package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_InfoLevelHidesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Debug("hidden detail")
	logger.Info("Summary")

	assert.NotContains(t, buf.String(), "hidden detail")
	assert.Contains(t, buf.String(), "Summary")
	assert.Contains(t, buf.String(), "includefix")
}

func TestNew_VerboseShowsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	logger.Debug("per-line detail", "file", "a.c")

	assert.Contains(t, buf.String(), "per-line detail")
	assert.Contains(t, buf.String(), "file=a.c")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().Warn("dropped")
	})
}
