package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// ProgressReporter reports progress for long-running operations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

const progressBarWidth = 30

// SimpleProgress is a single-line progress bar redrawn with a carriage
// return. It is safe for concurrent use.
type SimpleProgress struct {
	mu      sync.Mutex
	label   string
	unit    string
	total   int64
	current int64
	started time.Time
	now     func() time.Time
	writer  io.Writer
}

// NewProgressReporter creates a progress bar for items, labelled label,
// writing to w. A nil w writes to os.Stderr and an empty label reads
// "Progress".
func NewProgressReporter(w io.Writer, label string) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	if label == "" {
		label = "Progress"
	}
	return &SimpleProgress{
		label:  label,
		unit:   "items",
		now:    time.Now,
		writer: w,
	}
}

// Start resets the bar for total items.
func (p *SimpleProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = p.now()
	p.render()
}

// Update sets the number of completed items. Values past the total are
// clamped.
func (p *SimpleProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = min(current, p.total)
	p.render()
}

// Finish draws the completed bar and ends the line.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	if p.total > 0 {
		fmt.Fprintln(p.writer)
	}
}

// Error ends the bar with an error line.
func (p *SimpleProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ Error: %v\n", err)
}

func (p *SimpleProgress) render() {
	if p.total <= 0 {
		return
	}

	frac := float64(p.current) / float64(p.total)
	filled := int(frac * progressBarWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)

	line := fmt.Sprintf("\r%s: [%s] %5.1f%% (%s/%s)",
		p.label, bar, frac*100, humanize.Comma(p.current), humanize.Comma(p.total))

	elapsed := p.now().Sub(p.started)
	if elapsed > 0 && p.current > 0 {
		rate := float64(p.current) / elapsed.Seconds()
		line += fmt.Sprintf(" %s %s/s", humanize.FormatFloat("#,###.#", rate), p.unit)
		if p.current < p.total {
			eta := time.Duration(float64(p.total-p.current) / rate * float64(time.Second))
			line += " eta " + eta.Round(time.Second).String()
		}
	}

	fmt.Fprint(p.writer, line)
}
