// Package output provides consistent CLI output formatting: status lines
// prefixed with an icon, a progress bar drawn only on a real terminal, plus
// a JSON mode for the machine-readable command shapes commands expose via
// --json.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Writer provides formatted output for the CLI.
type Writer struct {
	out      io.Writer
	isTTY    bool
	jsonMode bool
}

// New creates a Writer that auto-detects whether out is a terminal.
func New(out io.Writer) *Writer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{out: out, isTTY: isTTY}
}

// NewJSON creates a Writer in JSON mode: Success/Warning/Error become no-ops
// and callers use JSON to emit the single structured payload.
func NewJSON(out io.Writer) *Writer {
	w := New(out)
	w.jsonMode = true
	return w
}

// Status prints a status message with an icon, skipped entirely in JSON mode.
func (w *Writer) Status(icon, msg string) {
	if w.jsonMode {
		return
	}
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (w *Writer) Success(msg string) { w.Status("✅", msg) }

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) { w.Status("⚠️ ", msg) }

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message to the writer's stream (stdout or stderr,
// caller's choice of which Writer to hold).
func (w *Writer) Error(msg string) { w.Status("❌", msg) }

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Code prints a code block, indented two spaces per line.
func (w *Writer) Code(content string) {
	if w.jsonMode {
		return
	}
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	if w.jsonMode {
		return
	}
	_, _ = fmt.Fprintln(w.out)
}

// JSON marshals v and writes it indented by two spaces, used by the machine
// output shapes (search hits, navigator steps, trees).
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Progress prints an in-place progress bar; a no-op when not attached to a
// terminal, since carriage-return redraws make no sense in a log file or
// piped output.
func (w *Writer) Progress(current, total int, msg string) {
	if !w.isTTY || w.jsonMode || total <= 0 {
		return
	}
	pct := float64(current) / float64(total) * 100
	bar := renderProgressBar(current, total, 30)
	_, _ = fmt.Fprintf(w.out, "\r[%s] %.0f%% %s", bar, pct, msg)
	if current >= total {
		_, _ = fmt.Fprintln(w.out)
	}
}

// ProgressDone completes a progress line with a newline.
func (w *Writer) ProgressDone() {
	if !w.isTTY || w.jsonMode {
		return
	}
	_, _ = fmt.Fprintln(w.out)
}

func renderProgressBar(current, total, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}
	pct := float64(current) / float64(total)
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
