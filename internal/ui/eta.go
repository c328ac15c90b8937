package ui

import (
	"fmt"
	"time"
)

// ETACalculator estimates the remaining upload time from recent byte counts.
// Formula: ETA = (total_bytes - sent_bytes) / rate, where the rate is taken over
// the last maxSamples samples within maxTimeWindow.
type ETACalculator struct {
	samples       []TimestampedProgress
	maxSamples    int
	maxTimeWindow time.Duration
	now           func() time.Time
}

// TimestampedProgress records bytes sent at a specific time
type TimestampedProgress struct {
	Timestamp time.Time
	Bytes     int64
}

// NewETACalculator creates an ETA calculator using the last 10 samples or 30 seconds
func NewETACalculator() *ETACalculator {
	return &ETACalculator{
		maxSamples:    10,
		maxTimeWindow: 30 * time.Second,
		now:           time.Now,
	}
}

// RecordProgress records the number of bytes sent so far
func (e *ETACalculator) RecordProgress(bytesSent int64) {
	now := e.now()
	e.samples = append(e.samples, TimestampedProgress{Timestamp: now, Bytes: bytesSent})

	if len(e.samples) > e.maxSamples {
		e.samples = e.samples[len(e.samples)-e.maxSamples:]
	}

	cutoff := now.Add(-e.maxTimeWindow)
	for len(e.samples) > 2 && e.samples[0].Timestamp.Before(cutoff) {
		e.samples = e.samples[1:]
	}
}

// BytesPerSecond returns the recent send rate; false until two distinct samples exist
func (e *ETACalculator) BytesPerSecond() (float64, bool) {
	if len(e.samples) < 2 {
		return 0, false
	}
	first := e.samples[0]
	last := e.samples[len(e.samples)-1]

	elapsed := last.Timestamp.Sub(first.Timestamp).Seconds()
	delta := last.Bytes - first.Bytes
	if elapsed <= 0 || delta <= 0 {
		return 0, false
	}
	return float64(delta) / elapsed, true
}

// CalculateETA returns the estimated time until totalBytes have been sent
func (e *ETACalculator) CalculateETA(totalBytes int64, sentBytes int64) (time.Duration, bool) {
	if sentBytes >= totalBytes {
		return 0, true
	}
	rate, ok := e.BytesPerSecond()
	if !ok {
		return 0, false
	}
	remaining := float64(totalBytes-sentBytes) / rate
	return time.Duration(remaining * float64(time.Second)), true
}

// Reset clears all recorded samples
func (e *ETACalculator) Reset() {
	e.samples = nil
}

// FormatETA formats an ETA duration as a human-readable string
func FormatETA(eta time.Duration) string {
	if eta < time.Second {
		return "< 1s"
	}

	if eta < time.Minute {
		return eta.Round(time.Second).String()
	}

	if eta < time.Hour {
		minutes := int(eta.Minutes())
		seconds := int(eta.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}

	hours := int(eta.Hours())
	minutes := int(eta.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", hours, minutes)
}

// FormatDuration formats a duration as a human-readable string
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
