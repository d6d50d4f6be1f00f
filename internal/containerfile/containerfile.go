package containerfile

import (
	"fmt"
	"io"
	"strings"
)

// Containerfile is an ordered sequence of instructions. It is built by
// appending and rendered once; the zero value is ready to use.
type Containerfile struct {
	instrs []Instr
}

// New returns a Containerfile holding instrs.
func New(instrs ...Instr) *Containerfile {
	return &Containerfile{instrs: append([]Instr(nil), instrs...)}
}

// Push appends instructions in order.
func (c *Containerfile) Push(instrs ...Instr) {
	c.instrs = append(c.instrs, instrs...)
}

// Len returns the number of instructions.
func (c *Containerfile) Len() int {
	return len(c.instrs)
}

// Instrs returns a copy of the instruction sequence.
func (c *Containerfile) Instrs() []Instr {
	return append([]Instr(nil), c.instrs...)
}

// Escape scans the leading parser directives and returns the document
// escape character. The first escape directive wins; without one the
// result is DefaultEscape. A directive that follows any other instruction
// is an error wrapping ErrMisplacedDirective.
func (c *Containerfile) Escape() (rune, error) {
	escape := DefaultEscape
	seenEscape := false
	leading := true
	for i, in := range c.instrs {
		d, ok := in.(Directive)
		if !ok {
			leading = false
			continue
		}
		if !leading {
			return 0, fmt.Errorf("%w: %s directive at position %d", ErrMisplacedDirective, d.Kind, i)
		}
		if d.Kind == DirectiveEscape && !seenEscape {
			r, err := d.escapeRune()
			if err != nil {
				return 0, err
			}
			escape = r
			seenEscape = true
		}
	}
	return escape, nil
}

// Render returns the document text, one instruction per line, each line
// terminated by a newline. An empty document is an error wrapping ErrEmpty.
func (c *Containerfile) Render() (string, error) {
	if len(c.instrs) == 0 {
		return "", emptyf("containerfile has no instructions")
	}
	escape, err := c.Escape()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, in := range c.instrs {
		if err := render(&b, in, escape); err != nil {
			return "", fmt.Errorf("instruction %d: %w", i, err)
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// WriteTo renders the document and writes it to w. Nothing is written if
// rendering fails.
func (c *Containerfile) WriteTo(w io.Writer) (int64, error) {
	s, err := c.Render()
	if err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, s)
	return int64(n), err
}
