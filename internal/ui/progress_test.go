package ui

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBar_SetNeverMovesBackwards(t *testing.T) {
	bar := NewProgressBarWithWriter("Uploading", io.Discard)

	require.NoError(t, bar.Set(50))
	require.NoError(t, bar.Set(30))
	assert.Equal(t, 50, bar.GetPercentage())

	require.NoError(t, bar.Set(150))
	assert.Equal(t, 100, bar.GetPercentage())
}

func TestSpinner(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinnerWithWriter("Waiting in queue", &buf)

	s.Stop(true)
	assert.Empty(t, buf.String(), "stop before start writes nothing")

	s.Start()
	assert.True(t, s.IsActive())
	s.UpdateMessage("Recognising text")
	s.Stop(false)

	assert.False(t, s.IsActive())
	assert.Contains(t, buf.String(), "Waiting in queue")
	assert.Contains(t, buf.String(), "✗ Recognising text (failed after")
}
