// Package lines implements line-ending normalization for text artifacts.
// All of LF, CR and CRLF in the input are rewritten to a single configured
// separator; everything else passes through untouched.
package lines

import (
	"bytes"
	"io"
	"runtime"
)

// Separators
var (
	LF   = []byte{'\n'}
	CRLF = []byte{'\r', '\n'}
)

// Native returns the line separator of the running platform
func Native() []byte {
	if runtime.GOOS == "windows" {
		return CRLF
	}
	return LF
}

// Writer rewrites line endings on the fly. A trailing CR is held back
// until the next write decides whether it starts a CRLF pair, so chunk
// boundaries inside CRLF sequences are handled correctly. Callers must
// Flush (or Close) after the final write.
type Writer struct {
	w         io.Writer
	sep       []byte
	pendingCR bool
}

// NewWriter creates a normalizing writer emitting the given separator
func NewWriter(w io.Writer, sep []byte) *Writer {
	return &Writer{w: w, sep: sep}
}

// Write implements io.Writer
func (lw *Writer) Write(p []byte) (int, error) {
	for i := 0; i < len(p); i++ {
		c := p[i]
		if lw.pendingCR {
			lw.pendingCR = false
			// CR already consumed; a following LF belongs to the same line end
			if err := lw.writeSep(); err != nil {
				return i, err
			}
			if c == '\n' {
				continue
			}
		}
		switch c {
		case '\r':
			lw.pendingCR = true
		case '\n':
			if err := lw.writeSep(); err != nil {
				return i, err
			}
		default:
			if err := lw.writeByte(c); err != nil {
				return i, err
			}
		}
	}
	return len(p), nil
}

// Flush emits a held-back CR as a line ending
func (lw *Writer) Flush() error {
	if lw.pendingCR {
		lw.pendingCR = false
		return lw.writeSep()
	}
	return nil
}

// Close flushes pending state and closes the underlying writer if it is
// an io.Closer
func (lw *Writer) Close() error {
	if err := lw.Flush(); err != nil {
		return err
	}
	if c, ok := lw.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (lw *Writer) writeSep() error {
	_, err := lw.w.Write(lw.sep)
	return err
}

func (lw *Writer) writeByte(c byte) error {
	_, err := lw.w.Write([]byte{c})
	return err
}

// Normalize rewrites all line endings in data to the given separator
func Normalize(data, sep []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(data))
	lw := NewWriter(&buf, sep)
	lw.Write(data) // buffer writes cannot fail
	lw.Flush()
	return buf.Bytes()
}
