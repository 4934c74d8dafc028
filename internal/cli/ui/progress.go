package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/conduit-lang/derivewhere/internal/compiler/build"
)

// ProgressBar represents a simple progress bar for determinate operations
type ProgressBar struct {
	writer  io.Writer
	total   int
	current int
	width   int
	message string
	noColor bool
}

// ProgressBarOptions configures progress bar behavior
type ProgressBarOptions struct {
	Total   int
	Width   int // Default: 40
	Message string
	NoColor bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar(w io.Writer, opts ProgressBarOptions) *ProgressBar {
	width := opts.Width
	if width == 0 {
		width = 40
	}

	return &ProgressBar{
		writer:  w,
		total:   opts.Total,
		width:   width,
		message: opts.Message,
		noColor: opts.NoColor,
	}
}

// Add increments the progress by the given amount
func (p *ProgressBar) Add(n int) {
	p.current = min(p.current+n, p.total)
	p.render()
}

// Step advances by one and shows message next to the bar
func (p *ProgressBar) Step(message string) {
	p.message = message
	p.Add(1)
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

func (p *ProgressBar) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.current) / float64(p.total)
	filledWidth := int(float64(p.width) * percent)

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if p.noColor {
		cyan.DisableColor()
		gray.DisableColor()
	}

	var bar strings.Builder
	bar.WriteString("[")
	cyan.Fprint(&bar, strings.Repeat("█", filledWidth))
	gray.Fprint(&bar, strings.Repeat("░", p.width-filledWidth))
	bar.WriteString("]")

	message := ""
	if p.message != "" {
		message = " " + p.message
	}

	// \033[K clears what a longer previous message left behind
	fmt.Fprintf(p.writer, "\r%s %3d%%%s\033[K", bar.String(), int(percent*100), message)
}

// BuildProgress returns a build.Options Progress callback driving a bar
// over total files
func BuildProgress(w io.Writer, total int, noColor bool) (func(*build.FileResult), *ProgressBar) {
	bar := NewProgressBar(w, ProgressBarOptions{Total: total, NoColor: noColor})
	return func(f *build.FileResult) {
		bar.Step(filepath.Base(f.Source))
	}, bar
}

// BuildSummary renders the outcome of a run: diagnostics first, then the
// counts
func BuildSummary(w io.Writer, result *build.Result, noColor bool) {
	WriteDiagnostics(w, result.Diagnostics(), noColor)

	var written, cached, failed, impls int
	for _, f := range result.Files {
		switch {
		case len(f.Diagnostics) > 0:
			failed++
		case f.Cached:
			cached++
		case f.Written:
			written++
		}
		impls += f.Impls
	}

	kv := NewKeyValueTable(w, noColor)
	kv.AddRow("Files", fmt.Sprintf("%d", len(result.Files)))
	kv.AddRow("Written", fmt.Sprintf("%d", written))
	kv.AddRow("Up to date", fmt.Sprintf("%d", cached))
	if failed > 0 {
		kv.AddRow("Failed", fmt.Sprintf("%d", failed))
	}
	kv.AddRow("Impls", fmt.Sprintf("%d", impls))
	kv.AddRow("Duration", result.Duration.Round(time.Millisecond).String())
	kv.Render()
}
