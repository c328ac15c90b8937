package ui

import "fmt"

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

// FormatBytesPerSecond formats a byte rate, e.g. "5.20 MB/sec"
func FormatBytesPerSecond(bytesPerSec float64) string {
	switch {
	case bytesPerSec >= gib:
		return fmt.Sprintf("%.2f GB/sec", bytesPerSec/gib)
	case bytesPerSec >= mib:
		return fmt.Sprintf("%.2f MB/sec", bytesPerSec/mib)
	case bytesPerSec >= kib:
		return fmt.Sprintf("%.2f KB/sec", bytesPerSec/kib)
	}
	return fmt.Sprintf("%.0f B/sec", bytesPerSec)
}

// FormatBytes formats a size, e.g. "2.00 MB"
func FormatBytes(bytes int64) string {
	f := float64(bytes)
	switch {
	case bytes >= gib:
		return fmt.Sprintf("%.2f GB", f/gib)
	case bytes >= mib:
		return fmt.Sprintf("%.2f MB", f/mib)
	case bytes >= kib:
		return fmt.Sprintf("%.2f KB", f/kib)
	}
	return fmt.Sprintf("%d B", bytes)
}

// UploadSummary describes a finished upload, e.g. "2.00 MB in 3.0s (682.67 KB/sec)"
func UploadSummary(bytes int64, elapsedSeconds float64) string {
	rate := 0.0
	if elapsedSeconds > 0 {
		rate = float64(bytes) / elapsedSeconds
	}
	return fmt.Sprintf("%s in %.1fs (%s)", FormatBytes(bytes), elapsedSeconds, FormatBytesPerSecond(rate))
}
