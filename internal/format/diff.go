package format

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines kept around each change
const contextLines = 3

// LineKind tells whether a diff line is kept, added or removed
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
)

// Line is one line of a hunk
type Line struct {
	Kind LineKind
	Text string
}

// Hunk is a run of changes with its surrounding context. Starts are 1-based;
// a side with no lines starts at the line before the hunk.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// DiffResult represents the difference between a file on disk and freshly
// generated code
type DiffResult struct {
	Existing string
	Updated  string
	Changed  bool
	Added    int
	Removed  int
	Hunks    []Hunk
}

// op is a diff line with the number of old and new lines before it
type op struct {
	Line
	oldBefore int
	newBefore int
}

// Diff compares the file on disk with the generated code line by line
func Diff(existing, updated string) *DiffResult {
	result := &DiffResult{
		Existing: existing,
		Updated:  updated,
		Changed:  existing != updated,
	}
	if !result.Changed {
		return result
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(existing, updated)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var ops []op
	var oldN, newN int
	for _, d := range diffs {
		for _, text := range splitLines(d.Text) {
			o := op{Line: Line{Text: text}, oldBefore: oldN, newBefore: newN}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				o.Kind = LineContext
				oldN++
				newN++
			case diffmatchpatch.DiffDelete:
				o.Kind = LineRemoved
				result.Removed++
				oldN++
			case diffmatchpatch.DiffInsert:
				o.Kind = LineAdded
				result.Added++
				newN++
			}
			ops = append(ops, o)
		}
	}

	result.Hunks = groupHunks(ops)
	return result
}

// splitLines splits text into lines without their terminators. A blank
// line is kept as an empty string.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\n")
	}
	return lines
}

// groupHunks merges changes whose context would overlap into one hunk
func groupHunks(ops []op) []Hunk {
	var hunks []Hunk
	for i := 0; i < len(ops); {
		if ops[i].Kind == LineContext {
			i++
			continue
		}

		last := i
		for j := i + 1; j < len(ops); j++ {
			if ops[j].Kind == LineContext {
				continue
			}
			if j-last-1 > 2*contextLines {
				break
			}
			last = j
		}
		start := max(0, i-contextLines)
		end := min(len(ops), last+contextLines+1)

		h := Hunk{OldStart: ops[start].oldBefore, NewStart: ops[start].newBefore}
		for _, o := range ops[start:end] {
			h.Lines = append(h.Lines, o.Line)
			if o.Kind != LineAdded {
				h.OldCount++
			}
			if o.Kind != LineRemoved {
				h.NewCount++
			}
		}
		if h.OldCount > 0 {
			h.OldStart++
		}
		if h.NewCount > 0 {
			h.NewStart++
		}
		hunks = append(hunks, h)
		i = end
	}
	return hunks
}

// Header returns the `@@ -a,b +c,d @@` line of the hunk
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%s +%s @@", hunkRange(h.OldStart, h.OldCount), hunkRange(h.NewStart, h.NewCount))
}

func hunkRange(start, count int) string {
	if count == 1 {
		return fmt.Sprint(start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

func (l Line) prefix() string {
	switch l.Kind {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// String returns a human-readable diff with color highlighting
func (d *DiffResult) String() string {
	if !d.Changed {
		return color.GreenString("Up to date")
	}

	var buf bytes.Buffer
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	for _, h := range d.Hunks {
		cyan.Fprintln(&buf, h.Header())
		for _, line := range h.Lines {
			switch line.Kind {
			case LineAdded:
				green.Fprintf(&buf, "+%s\n", line.Text)
			case LineRemoved:
				red.Fprintf(&buf, "-%s\n", line.Text)
			default:
				fmt.Fprintf(&buf, " %s\n", line.Text)
			}
		}
	}

	return buf.String()
}

// UnifiedDiff returns the changes in unified diff format
func (d *DiffResult) UnifiedDiff(filename string) string {
	if !d.Changed {
		return ""
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- a/%s\n", filename)
	fmt.Fprintf(&buf, "+++ b/%s\n", filename)

	for _, h := range d.Hunks {
		buf.WriteString(h.Header())
		buf.WriteByte('\n')
		for _, line := range h.Lines {
			buf.WriteString(line.prefix())
			buf.WriteString(line.Text)
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// Stats returns statistics about the changes
func (d *DiffResult) Stats() string {
	if !d.Changed {
		return "No changes"
	}
	return fmt.Sprintf("%d added, %d removed", d.Added, d.Removed)
}
