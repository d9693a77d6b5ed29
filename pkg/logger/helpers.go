package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Icons and symbols for different log types
const (
	IconSuccess = "✅"
	IconError   = "❌"
	IconWarning = "⚠️"
	IconRocket  = "🚀"
	IconConfig  = "⚙️"
	IconTime    = "⏱️"
	IconFolder  = "📁"
	IconFile    = "📄"
	IconRefresh = "🔄"
	IconChart   = "📊"
	IconDot     = "•"
	IconArrow   = "→"
)

var (
	sectionColor = color.New(color.FgCyan, color.Bold)
	lineColor    = color.New(color.FgCyan)
	subColor     = color.New(color.FgHiBlack)
	keyColor     = color.New(color.FgCyan)
	headerColor  = color.New(color.Bold)
)

// console is where the helpers print. Tests swap it for a buffer.
var console io.Writer = os.Stdout

// paint applies c unless colors are disabled
func paint(c *color.Color, s string) string {
	if !colorEnabled() {
		return s
	}
	return c.Sprint(s)
}

// Success logs a success message with a green checkmark
func Success(args ...interface{}) {
	defaultLogger.Info(IconSuccess + " " + fmt.Sprint(args...))
}

// Successf logs a formatted success message
func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Progress logs a progress message with a refresh icon
func Progress(args ...interface{}) {
	defaultLogger.Info(IconRefresh + " " + fmt.Sprint(args...))
}

// Progressf logs a formatted progress message
func Progressf(format string, args ...interface{}) {
	Progress(fmt.Sprintf(format, args...))
}

// LogSection creates a visual section separator
func LogSection(title string) {
	line := strings.Repeat("=", 50)
	fmt.Fprintln(console, paint(lineColor, line))
	fmt.Fprintln(console, paint(sectionColor, title))
	fmt.Fprintln(console, paint(lineColor, line))
}

// LogSubSection creates a visual subsection separator
func LogSubSection(title string) {
	line := strings.Repeat("-", 40)
	fmt.Fprintln(console, paint(subColor, line))
	fmt.Fprintln(console, paint(subColor, title))
	fmt.Fprintln(console, paint(subColor, line))
}

// LogList logs a list of items with bullets
func LogList(title string, items []string) {
	Info(title)
	for _, item := range items {
		fmt.Fprintf(console, "  %s %s\n", IconDot, item)
	}
}

// LogKeyValue logs a key-value pair with nice formatting
func LogKeyValue(key string, value interface{}) {
	fmt.Fprintf(console, "%s %v\n", paint(keyColor, key+":"), value)
}

// Table represents a simple table for logging
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		rows:    [][]string{},
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Rows returns the number of data rows
func (t *Table) Rows() int {
	return len(t.rows)
}

// Print prints the table to the console
func (t *Table) Print() {
	t.Fprint(console)
}

// Fprint writes the table to w
func (t *Table) Fprint(w io.Writer) {
	if len(t.headers) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}

	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Padding is computed before coloring so escape codes don't skew widths
	for i, h := range t.headers {
		fmt.Fprint(w, paint(headerColor, fmt.Sprintf("%-*s", widths[i], h))+"  ")
	}
	fmt.Fprintln(w)

	for i := range t.headers {
		fmt.Fprint(w, strings.Repeat("-", widths[i])+"  ")
	}
	fmt.Fprintln(w)

	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(w, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w)
	}
}
