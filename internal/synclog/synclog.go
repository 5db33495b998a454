// Package synclog writes the vault-sync action log: one timestamped line
// per filesystem mutation, in the order the mutations happened.
package synclog

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log appends action lines to a writer. Safe for concurrent use.
type Log struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a log writing to w
func New(w io.Writer) *Log {
	return &Log{w: w}
}

// NewFile creates a log appending to a rotating file
func NewFile(path string) *Log {
	return New(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		Compress:   true,
	})
}

// Discard creates a log that drops everything
func Discard() *Log {
	return New(io.Discard)
}

// Printf appends one timestamped action line, e.g.
// "2006-01-02 15:04:05 A file:///var/www/site/index.html"
func (l *Log) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		fmt.Sprintf(format, args...))
}

// Close closes the underlying writer if it is an io.Closer
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
