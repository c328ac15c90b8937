package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar wraps the progressbar library to show upload percentage with
// a byte rate and ETA suffix
type ProgressBar struct {
	bar         *progressbar.ProgressBar
	description string
	current     int
}

// NewProgressBarWithWriter creates a percentage bar that writes to writer
func NewProgressBarWithWriter(description string, writer io.Writer) *ProgressBar {
	bar := progressbar.NewOptions(
		100,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetWriter(writer),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionEnableColorCodes(false),
	)

	return &ProgressBar{
		bar:         bar,
		description: description,
	}
}

// Set moves the bar to percent; lower values than the current one are ignored
func (p *ProgressBar) Set(percent int) error {
	if percent <= p.current {
		return nil
	}
	if percent > 100 {
		percent = 100
	}
	p.current = percent
	return p.bar.Set(percent)
}

// Describe replaces the text in front of the bar
func (p *ProgressBar) Describe(description string) {
	p.description = description
	p.bar.Describe(description)
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() error {
	return p.bar.Finish()
}

// GetPercentage returns current completion percentage (0-100)
func (p *ProgressBar) GetPercentage() int {
	return p.current
}

// spinnerFrames are drawn in turn while a spinner is active
var spinnerFrames = []string{"|", "/", "-", "\\"}

// Spinner provides visual feedback for operations with unknown duration,
// such as waiting on a background job
type Spinner struct {
	mu          sync.Mutex
	writer      io.Writer
	description string
	startTime   time.Time
	active      bool
	frame       int
}

// NewSpinnerWithWriter creates a spinner that writes to a specific writer
func NewSpinnerWithWriter(description string, writer io.Writer) *Spinner {
	return &Spinner{
		writer:      writer,
		description: description,
		startTime:   time.Now(),
	}
}

// Start begins the spinner
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	s.startTime = time.Now()
	s.drawLocked()
}

// UpdateMessage replaces the description and redraws the spinner line
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.description = message
	if s.active {
		s.frame++
		s.drawLocked()
	}
}

// Stop ends the spinner with a success or failure mark
func (s *Spinner) Stop(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	elapsed := time.Since(s.startTime)

	mark := "✓"
	verb := "completed in"
	if !success {
		mark = "✗"
		verb = "failed after"
	}
	_, _ = fmt.Fprintf(s.writer, "\r\033[K%s %s (%s %s)\n", mark, s.description, verb, FormatDuration(elapsed))
}

// IsActive returns whether the spinner is currently running
func (s *Spinner) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Spinner) drawLocked() {
	frame := spinnerFrames[s.frame%len(spinnerFrames)]
	elapsed := time.Since(s.startTime).Round(time.Second)
	_, _ = fmt.Fprintf(s.writer, "\r\033[K%s %s (%v elapsed)", frame, s.description, elapsed)
}
