package repl

import (
	"bufio"
	"errors"
	"io"
	"unicode/utf8"
)

// MaxLineBytes is the default number of bytes of a line that a LineReader
// keeps.
const MaxLineBytes = 1 << 20

// Line is one line of input.
type Line struct {
	// Text is the line without its terminator, cut to the reader's limit.
	Text string
	// Runes is the length of the whole line in runes.
	Runes int
	// Truncated is whether Text is shorter than the line.
	Truncated bool
}

// LineReader reads lines of any length while holding at most a fixed number
// of bytes of each one.
type LineReader struct {
	br  *bufio.Reader
	max int
}

// NewLineReader creates a LineReader keeping at most max bytes of each line.
// If max is not positive, the limit is MaxLineBytes.
func NewLineReader(r io.Reader, max int) *LineReader {
	if max <= 0 {
		max = MaxLineBytes
	}
	return &LineReader{br: bufio.NewReader(r), max: max}
}

// Next reads the next line. Bytes beyond the limit are counted and dropped.
// At the end of input, the error is io.EOF.
func (lr *LineReader) Next() (Line, error) {
	var (
		b    []byte
		line Line
		read bool
	)
	for {
		chunk, more, err := lr.br.ReadLine()
		if err != nil {
			if read && errors.Is(err, io.EOF) {
				break
			}
			return Line{}, err
		}
		read = true
		line.Runes += utf8.RuneCount(chunk)
		room := lr.max - len(b)
		if len(chunk) > room {
			chunk = chunk[:room]
			line.Truncated = true
		}
		b = append(b, chunk...)
		if !more {
			break
		}
	}
	line.Text = string(b)
	return line, nil
}
