// Package ui prints transync's console output: tagged log lines on stderr
// and the progress bars of the status table.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	infoTag    = color.New(color.FgBlue).Sprint("[INFO]")
	successTag = color.New(color.FgGreen).Sprint("[OK]")
	warnTag    = color.New(color.FgYellow, color.Bold).Sprint("[WARN]")
	errorTag   = color.New(color.FgRed).Sprint("[ERROR]")
)

// Logger writes one tagged line per message.
type Logger struct {
	out io.Writer
}

// New returns a Logger writing to w. A nil w means os.Stderr.
func New(w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{out: w}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return &Logger{out: io.Discard}
}

// Writer returns the underlying writer, for tables and headers.
func (l *Logger) Writer() io.Writer {
	return l.out
}

func (l *Logger) Info(format string, args ...any) {
	l.line(infoTag, format, args...)
}

func (l *Logger) Success(format string, args ...any) {
	l.line(successTag, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.line(warnTag, format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.line(errorTag, format, args...)
}

func (l *Logger) line(tag, format string, args ...any) {
	if l == nil {
		return
	}
	fmt.Fprintf(l.out, tag+" "+format+"\n", args...)
}

// Header prints a section title followed by a rule.
func (l *Logger) Header(title string) {
	fmt.Fprintf(l.out, "\n%s\n%s\n", color.BlueString(title), strings.Repeat("─", 60))
}

// ProgressBar renders percent (clamped to 0..100) as a bar of the given
// width followed by the right-aligned percentage. Red below 50, yellow below
// 100, green at 100.
func ProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	paint := color.RedString
	switch {
	case percent >= 100:
		paint = color.GreenString
	case percent >= 50:
		paint = color.YellowString
	}
	return fmt.Sprintf("%s %3d%%", paint("%s", bar), percent)
}
