package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Renderer redraws a group of progress bars in place on the terminal.
type Renderer struct {
	bars     []*Bar
	output   io.Writer
	stopChan chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
}

// NewRenderer creates a renderer for the given bars, writing to stdout.
func NewRenderer(bars []*Bar) *Renderer {
	return &Renderer{
		bars:     bars,
		output:   os.Stdout,
		stopChan: make(chan struct{}),
	}
}

// Render redraws the bars every 100ms until Stop is called. Run it in
// its own goroutine.
func (r *Renderer) Render() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.draw()
		}
	}
}

// Stop ends rendering and clears the bar lines so leftover bars do not
// clutter the terminal.
func (r *Renderer) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)

		r.mu.Lock()
		defer r.mu.Unlock()

		for range r.bars {
			_, _ = fmt.Fprint(r.output, "\033[1A\033[K")
		}
	})
}

func (r *Renderer) draw() {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Clear previous lines using ANSI escape codes
	for range r.bars {
		_, _ = fmt.Fprint(r.output, "\033[1A\033[K")
	}

	for _, bar := range r.bars {
		_, _ = fmt.Fprintln(r.output, bar.String())
	}
}
