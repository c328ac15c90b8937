package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "2.00 KB", FormatBytes(2048))
	assert.Equal(t, "2.50 MB", FormatBytes(5*mib/2))
	assert.Equal(t, "3.00 GB", FormatBytes(3*gib))
}

func TestFormatBytesPerSecond(t *testing.T) {
	assert.Equal(t, "500 B/sec", FormatBytesPerSecond(500))
	assert.Equal(t, "1.50 KB/sec", FormatBytesPerSecond(1536))
	assert.Equal(t, "5.20 MB/sec", FormatBytesPerSecond(5.2*mib))
	assert.Equal(t, "1.00 GB/sec", FormatBytesPerSecond(gib))
}

func TestUploadSummary(t *testing.T) {
	assert.Equal(t, "2.00 MB in 3.0s (682.67 KB/sec)", UploadSummary(2*mib, 3))
	assert.Equal(t, "10 B in 0.0s (0 B/sec)", UploadSummary(10, 0))
}
