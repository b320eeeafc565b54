// Package logging holds the process logger and a few printf-style helpers.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. Components that accept a logger are handed
// L (or a child of it) by the application wiring.
var L = New(os.Stderr)

// New returns a logger writing to w with the keystore prefix.
func New(w io.Writer) *clog.Logger {
	return clog.NewWithOptions(w, clog.Options{
		Prefix:          "dalkeystore",
		ReportTimestamp: true,
	})
}

// Discard returns a logger that drops everything.
func Discard() *clog.Logger { return clog.New(io.Discard) }

// SetLevel parses name (debug, info, warn, error) and applies it to L.
func SetLevel(name string) error {
	lvl, err := clog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return fmt.Errorf("log level %q: %w", name, err)
	}
	L.SetLevel(lvl)
	return nil
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...any) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...any) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...any) {
	L.Error(fmt.Sprintf(format, v...))
}
