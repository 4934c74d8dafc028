// Package format re-indents generated Rust source. Generators emit one
// statement or arm per line without indentation; the formatter derives the
// indentation from bracket nesting.
package format

import (
	"bytes"
	"strings"
)

// Formatter formats generated Rust source
type Formatter struct {
	config *Config
	buf    *bytes.Buffer
	indent int

	// hangs holds the depth of every open match arm whose expression
	// continues on the next line. Each adds one level of indentation.
	hangs []int
}

// New creates a new Formatter with the given configuration
func New(config *Config) *Formatter {
	if config == nil {
		config = DefaultConfig()
	}
	return &Formatter{
		config: config,
		buf:    new(bytes.Buffer),
		indent: 0,
	}
}

// Format re-indents source. Leading and trailing whitespace of every line is
// replaced, runs of blank lines collapse to one and the result ends with a
// single newline.
func (f *Formatter) Format(source string) string {
	f.buf.Reset()
	f.indent = 0
	f.hangs = f.hangs[:0]

	unit := f.config.unit()
	blank := false

	for _, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			blank = f.buf.Len() > 0
			continue
		}
		if blank {
			f.buf.WriteString("\n")
			blank = false
		}

		opens, leading := scanLine(line)

		depth := f.indent - leading
		if depth < 0 {
			depth = 0
		}
		f.buf.WriteString(strings.Repeat(unit, depth+len(f.hangs)))
		f.buf.WriteString(line)
		f.buf.WriteString("\n")

		f.indent += opens
		if f.indent < 0 {
			f.indent = 0
		}

		// A continuation ends once its brackets are closed again
		for len(f.hangs) > 0 && f.indent <= f.hangs[len(f.hangs)-1] {
			f.hangs = f.hangs[:len(f.hangs)-1]
		}
		if strings.HasSuffix(line, "=>") {
			f.hangs = append(f.hangs, f.indent)
		}
	}

	return f.buf.String()
}

// scanLine returns the net change in bracket depth caused by line and the
// number of closing brackets it starts with. Brackets inside string and
// character literals and after a line comment are ignored.
func scanLine(line string) (net, leading int) {
	counting := true
	var quote byte

	for i := 0; i < len(line); i++ {
		c := line[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"':
			quote = c
			counting = false
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return net, leading
			}
			counting = false
		case '{', '(', '[':
			net++
			counting = false
		case '}', ')', ']':
			net--
			if counting {
				leading++
			}
		case ' ', '\t', ',', ';':
		default:
			counting = false
		}
	}

	return net, leading
}
