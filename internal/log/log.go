// Package log provides a leveled logger for podsh's internal diagnostics.
//
// It is never used for the shell's user-visible status-line protocol,
// which is written directly with fmt.Fprintf to match an exact wire
// format; this package exists purely for operator-facing noise about
// line reading and pipeline launches.
package log

import (
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"
)

// New creates a Logger instance that writes to w, prefixing every line
// with prefix.
func New(w io.Writer, prefix string) *Logger {
	return &Logger{
		std: log.New(
			w,
			prefix,
			log.Ldate|log.Ltime|log.Lmicroseconds|log.LUTC|log.Lmsgprefix,
		),
	}
}

// Logger writes leveled, caller-tagged lines to an io.Writer. Logger is
// thread-safe; it guarantees to serialize access to the underlying Writer.
type Logger struct {
	std *log.Logger

	// debug enables Debugf output. Off by default; the shell only turns it
	// on when the PODSH_DEBUG environment variable is set.
	debug bool
}

// WithDebug returns a copy of l with Debugf output enabled or disabled.
func (l Logger) WithDebug(enabled bool) *Logger {
	l.debug = enabled
	return &l
}

// Errorf prints an error log-level message.
func (l *Logger) Errorf(msg string, args ...interface{}) {
	file, line := caller(2)
	l.std.Printf("[ERROR] %s:%d --- %s", file, line, fmt.Sprintf(msg, args...))
}

// Warnf prints a warn log-level message.
func (l *Logger) Warnf(msg string, args ...interface{}) {
	file, line := caller(2)
	l.std.Printf("[WARN] %s:%d --- %s", file, line, fmt.Sprintf(msg, args...))
}

// Infof prints an info log-level message.
func (l *Logger) Infof(msg string, args ...interface{}) {
	file, line := caller(2)
	l.std.Printf("[INFO] %s:%d --- %s", file, line, fmt.Sprintf(msg, args...))
}

// Debugf prints a debug log-level message, if debug output is enabled.
func (l *Logger) Debugf(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	file, line := caller(2)
	l.std.Printf("[DEBUG] %s:%d --- %s", file, line, fmt.Sprintf(msg, args...))
}

func caller(depth int) (string, int) {
	_, file, line, ok := runtime.Caller(depth)
	parts := strings.Split(file, "/")

	// Shorten file if it consists of more than 3 parts.
	if len(parts) > 3 {
		file = strings.Join(parts[len(parts)-3:], "/")
	}
	if !ok {
		file = "???"
		line = 0
	}
	return file, line
}
