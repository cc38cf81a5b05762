// Package progress renders terminal progress bars for long-running
// workers, one bar per worker with step messages and timing.
package progress

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Bar tracks one worker's position in its current cycle. It uses mutex
// locking to handle concurrent updates from the worker and the renderer.
type Bar struct {
	total            int64
	current          int64
	width            int
	mu               sync.Mutex
	lastUpdate       time.Time
	message          string
	stepMessage      string
	stepStart        time.Time
	overallStart     time.Time
	overallDurations []time.Duration
}

// NewBar creates a progress bar with a total value to track progress
// against, a width in characters for the visual bar, and a message
// describing the overall operation.
func NewBar(total int64, width int, message string) *Bar {
	return &Bar{
		total:            total,
		width:            width,
		lastUpdate:       time.Now(),
		message:          message,
		stepStart:        time.Now(),
		overallStart:     time.Now(),
		overallDurations: []time.Duration{},
	}
}

// SetTotal updates the total value that represents 100% progress.
func (b *Bar) SetTotal(total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total = total
}

// SetStepMessage updates the current step description and moves the bar
// to the given position, resetting the step timer.
func (b *Bar) SetStepMessage(message string, progress int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stepMessage = message
	b.stepStart = time.Now()

	b.current = progress
	if b.current > b.total {
		b.current = b.total
	}
}

// String generates the visual progress bar with percentage complete,
// current step message and duration, overall duration and ETA.
// Updates are rate-limited to 100ms to prevent screen flicker.
func (b *Bar) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if time.Since(b.lastUpdate) < 100*time.Millisecond {
		return ""
	}

	b.lastUpdate = time.Now()

	percent := float64(b.current) / float64(b.total)
	filled := int(percent * float64(b.width))
	bar := strings.Repeat("=", filled) + strings.Repeat("-", b.width-filled)

	stepDuration := time.Since(b.stepStart).Round(time.Second)
	overallDuration := time.Since(b.overallStart).Round(time.Second)

	return fmt.Sprintf("\r%s [%s] %.1f%% | %s (%s) | Overall: %s (ETA: %s)",
		b.message, bar, percent*100, b.stepMessage, stepDuration,
		overallDuration, b.calculateETA())
}

// calculateETA estimates completion time from previous cycle durations.
// Returns "0s" until at least one cycle has finished.
func (b *Bar) calculateETA() string {
	if len(b.overallDurations) == 0 {
		return "0s"
	}

	var totalDuration time.Duration
	for _, duration := range b.overallDurations {
		totalDuration += duration
	}

	eta := totalDuration / time.Duration(len(b.overallDurations))

	return eta.Round(time.Second).String()
}

// Reset prepares the bar for a new cycle by storing the finished cycle's
// duration for ETA calculation and resetting counters and timers. A
// rolling window of ten durations feeds the estimate.
func (b *Bar) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.overallDurations) >= 10 {
		b.overallDurations = b.overallDurations[1:]
	}

	b.overallDurations = append(b.overallDurations, time.Since(b.overallStart))

	b.current = 0
	b.lastUpdate = time.Now()
	b.stepMessage = ""
	b.stepStart = time.Now()
	b.overallStart = time.Now()
}
