// Package progress reports progress of long extraction and generation runs.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives step-by-step progress.
type Reporter interface {
	Start(total int, label string)
	Update(current int, message string)
	Finish()
}

// New returns a LineReporter on CI, and a TerminalReporter otherwise.
func New() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return NewLineReporter(os.Stderr)
	}
	return &TerminalReporter{out: os.Stderr}
}

// TerminalReporter draws a progress bar.
type TerminalReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int, label string) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar == nil {
		return
	}
	r.bar.Describe(message)
	_ = r.bar.Set(current)
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// LineReporter prints one line per step, suitable for CI logs.
type LineReporter struct {
	w     io.Writer
	total int
	label string
}

func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{w: w}
}

func (r *LineReporter) Start(total int, label string) {
	r.total, r.label = total, label
	fmt.Fprintf(r.w, "%s: %d steps\n", label, total)
}

func (r *LineReporter) Update(current int, message string) {
	fmt.Fprintf(r.w, "[%d/%d] %s\n", current, r.total, message)
}

func (r *LineReporter) Finish() {
	fmt.Fprintf(r.w, "%s: done\n", r.label)
}

// Silent discards progress.
type Silent struct{}

func (Silent) Start(int, string)  {}
func (Silent) Update(int, string) {}
func (Silent) Finish()            {}
