package lines

import (
	"errors"
	"iter"
	"strings"
)

// ErrExhausted is returned by Peek and Next once every line has been consumed.
var ErrExhausted = errors.New("lines: no lines remaining")

// Cursor is a sequential reader over lines with a single line of lookahead.
// Lines are pulled from the source only when needed.
type Cursor struct {
	next     func() (string, bool)
	stop     func()
	buf      string
	buffered bool
	done     bool
	consumed int
}

// New wraps a pull function. next reports false once the source is drained.
func New(next func() (string, bool)) *Cursor {
	return &Cursor{next: next}
}

// FromSlice returns a cursor over a fixed list of lines.
func FromSlice(lines []string) *Cursor {
	i := 0
	return New(func() (string, bool) {
		if i >= len(lines) {
			return "", false
		}
		line := lines[i]
		i++
		return line, true
	})
}

// FromSeq returns a cursor over a lazily produced sequence. Call Close if the
// cursor may be abandoned before the sequence is drained.
func FromSeq(seq iter.Seq[string]) *Cursor {
	next, stop := iter.Pull(seq)
	c := New(next)
	c.stop = stop
	return c
}

// FromText splits text on line feeds and strips trailing whitespace from each
// line as it is read.
func FromText(text string) *Cursor {
	return FromSeq(func(yield func(string) bool) {
		for line := range strings.Lines(text) {
			if !yield(strings.TrimRight(line, " \t\r\n")) {
				return
			}
		}
	})
}

// fill makes sure the lookahead slot holds a line, if one is left.
func (c *Cursor) fill() bool {
	if c.buffered {
		return true
	}
	if c.done {
		return false
	}
	line, ok := c.next()
	if !ok {
		c.done = true
		return false
	}
	c.buf = line
	c.buffered = true
	return true
}

// Peek returns the next line without consuming it.
func (c *Cursor) Peek() (string, error) {
	if !c.fill() {
		return "", ErrExhausted
	}
	return c.buf, nil
}

// Next returns the next line and advances past it.
func (c *Cursor) Next() (string, error) {
	if !c.fill() {
		return "", ErrExhausted
	}
	line := c.buf
	c.buf = ""
	c.buffered = false
	c.consumed++
	return line, nil
}

// HasNext reports whether another line is available.
func (c *Cursor) HasNext() bool {
	return c.fill()
}

// Consumed returns how many lines Next has handed out.
func (c *Cursor) Consumed() int {
	return c.consumed
}

// Close releases the underlying sequence, if any. It is safe to call twice.
func (c *Cursor) Close() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	c.done = true
	c.buffered = false
}
