package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar shows completed test files with passed and failed test counts
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a progress bar over count files writing to stderr
func NewProgressBar(count int) *ProgressBar {
	return NewProgressBarWithWriter(count, os.Stderr)
}

// NewProgressBarWithWriter creates a progress bar writing to w
func NewProgressBarWithWriter(count int, w io.Writer) *ProgressBar {
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar}
}

func describe(passed, failed int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}

// Update moves the bar to completed files and refreshes the test counts
func (p *ProgressBar) Update(completed, passed, failed int) {
	p.bar.Set(completed)
	p.bar.Describe(describe(passed, failed))
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}

// StatusProgress reports run progress in the footer of a Browser
type StatusProgress struct {
	browser *Browser
	total   int
}

// NewStatusProgress creates a StatusProgress over total files
func NewStatusProgress(b *Browser, total int) *StatusProgress {
	return &StatusProgress{browser: b, total: total}
}

// Update shows the counts in the footer. Safe from any goroutine.
func (p *StatusProgress) Update(completed, passed, failed int) {
	status := statusLine(completed, p.total, passed, failed)
	p.browser.Dispatch(func() { p.browser.SetStatus(status) })
}

// Finish is a no-op; the final status is set once results are saved
func (p *StatusProgress) Finish() {}

func statusLine(completed, total, passed, failed int) string {
	return fmt.Sprintf("[cyan]Running[white] %d/%d files | [green]passed: %d[white] | [red]failed: %d[white]", completed, total, passed, failed)
}
