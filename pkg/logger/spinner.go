package logger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Spinner represents an animated spinner for long-running operations
type Spinner struct {
	mu       sync.Mutex
	active   bool
	message  string
	frames   []string
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
}

// Spinner frames
var (
	SpinnerDots = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	SpinnerLine = []string{"-", "\\", "|", "/"}
)

var (
	spinnerColor  = color.New(color.FgCyan)
	progressColor = color.New(color.FgGreen)
)

// NewSpinner creates a new spinner with the default frames
func NewSpinner(message string) *Spinner {
	return NewSpinnerWithFrames(message, SpinnerDots)
}

// NewSpinnerWithFrames creates a new spinner with custom frames
func NewSpinnerWithFrames(message string, frames []string) *Spinner {
	return &Spinner{
		message:  message,
		frames:   frames,
		interval: 100 * time.Millisecond,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start starts the spinner animation
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		width := 0
		for i := 0; ; i++ {
			s.mu.Lock()
			message := s.message
			s.mu.Unlock()

			frame := paint(spinnerColor, s.frames[i%len(s.frames)])
			fmt.Fprintf(console, "\r%s %s", frame, message)
			if len(message) > width {
				width = len(message)
			}

			select {
			case <-s.stopChan:
				// Clear the line
				fmt.Fprintf(console, "\r%s\r", strings.Repeat(" ", width+10))
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop stops the spinner and waits for the line to be cleared
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	close(s.stopChan)
	<-s.done
}

// Success stops the spinner and shows a success message
func (s *Spinner) Success(message string) {
	s.Stop()
	Success(message)
}

// Error stops the spinner and shows an error message
func (s *Spinner) Error(message string) {
	s.Stop()
	Error(message)
}

// WithSpinner runs a function with a spinner
func WithSpinner(message string, fn func() error) error {
	spinner := NewSpinner(message)
	spinner.Start()

	err := fn()

	if err != nil {
		spinner.Error(fmt.Sprintf("%s failed: %v", message, err))
	} else {
		spinner.Success(fmt.Sprintf("%s completed", message))
	}

	return err
}

// ProgressBar represents a simple progress bar. It is safe for concurrent
// increments.
type ProgressBar struct {
	mu      sync.Mutex
	total   int
	current int
	width   int
	message string
}

// NewProgressBar creates a new progress bar
func NewProgressBar(total int, message string) *ProgressBar {
	return &ProgressBar{
		total:   total,
		width:   40,
		message: message,
	}
}

// Update sets the progress to current
func (p *ProgressBar) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = current
	p.draw()
}

// Increment increments the progress bar by 1
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	p.draw()
}

// Current returns the progress count
func (p *ProgressBar) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.Update(p.total)
	fmt.Fprintln(console)
}

func (p *ProgressBar) draw() {
	percent := 1.0
	if p.total > 0 {
		percent = float64(p.current) / float64(p.total)
	}
	if percent > 1 {
		percent = 1
	}
	filled := int(percent * float64(p.width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)
	fmt.Fprintf(console, "\r%s: [%s] %3.0f%%", p.message, paint(progressColor, bar), percent*100)
}
